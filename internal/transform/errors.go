package transform

import (
	"context"
	"errors"
	"fmt"

	"github.com/ipcctiled/transform-api/internal/llm"
)

// Kind distinguishes validation failure subkinds
type Kind string

const (
	KindMissingField Kind = "missing_field"
	KindInvalidValue Kind = "invalid_value"
	KindInvalidBody  Kind = "invalid_body"
	KindBodyTooLarge Kind = "body_too_large"
)

// ValidationError reports a malformed client request. It is raised before any provider call.
type ValidationError struct {
	Field   string
	Kind    Kind
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// MethodNotAllowedError reports a request made with a verb other than POST
type MethodNotAllowedError struct {
	Method string
}

func (e *MethodNotAllowedError) Error() string {
	return "Method not allowed. Use POST."
}

// ProviderError reports a failed, timed out or empty provider call
type ProviderError struct {
	Provider string
	err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.err)
}

func (e *ProviderError) Unwrap() error {
	return e.err
}

// NewProviderError wraps a provider failure
func NewProviderError(provider string, err error) error {
	return &ProviderError{Provider: provider, err: err}
}

// Empty reports whether the provider answered without content
func (e *ProviderError) Empty() bool {
	return errors.Is(e.err, llm.ErrEmptyOutput)
}

// Timeout reports whether the provider call ran past its deadline
func (e *ProviderError) Timeout() bool {
	return errors.Is(e.err, context.DeadlineExceeded)
}

// MalformedModelOutputError reports a reply that is not JSON or lacks a required key
type MalformedModelOutputError struct {
	// Raw is the completion text as received
	Raw string
	err error
}

func (e *MalformedModelOutputError) Error() string {
	return fmt.Sprintf("malformed model output: %v", e.err)
}

func (e *MalformedModelOutputError) Unwrap() error {
	return e.err
}

// NewMalformedOutputError wraps a parsing or key-check failure
func NewMalformedOutputError(raw string, err error) error {
	return &MalformedModelOutputError{Raw: raw, err: err}
}

// IsValidation returns true if err is a client validation failure
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsMethodNotAllowed returns true if err rejects the request verb
func IsMethodNotAllowed(err error) bool {
	var m *MethodNotAllowedError
	return errors.As(err, &m)
}

// IsProvider returns true if err is a provider failure
func IsProvider(err error) bool {
	var p *ProviderError
	return errors.As(err, &p)
}

// IsMalformedOutput returns true if the model replied with unusable content
func IsMalformedOutput(err error) bool {
	var m *MalformedModelOutputError
	return errors.As(err, &m)
}

// ErrorKind returns a short label for err, used in logs and metrics
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case IsValidation(err):
		return "validation"
	case IsMethodNotAllowed(err):
		return "method_not_allowed"
	case IsProvider(err):
		return "provider"
	case IsMalformedOutput(err):
		return "malformed_output"
	default:
		return "internal"
	}
}
