package profile

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Fields are the top-level keys of a parsed model reply
type Fields map[string]json.RawMessage

// FieldError reports a reply key that is missing, mistyped or out of range
type FieldError struct {
	Key    string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %q: %s", e.Key, e.Reason)
}

func missing(key string) error {
	return &FieldError{Key: key, Reason: "required key is missing"}
}

// raw returns the value of key, treating JSON null as absent
func (f Fields) raw(key string) (json.RawMessage, bool) {
	v, ok := f[key]
	if !ok {
		return nil, false
	}
	if bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
		return nil, false
	}
	return v, true
}

// String returns a required string value
func (f Fields) String(key string) (string, error) {
	v, ok := f.raw(key)
	if !ok {
		return "", missing(key)
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", &FieldError{Key: key, Reason: "expected a string"}
	}
	if s == "" {
		return "", &FieldError{Key: key, Reason: "must not be empty"}
	}
	return s, nil
}

// Number returns a required numeric value
func (f Fields) Number(key string) (float64, error) {
	v, ok := f.raw(key)
	if !ok {
		return 0, missing(key)
	}
	var n float64
	if err := json.Unmarshal(v, &n); err != nil {
		return 0, &FieldError{Key: key, Reason: "expected a number"}
	}
	return n, nil
}
