package transform

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ipcctiled/transform-api/internal/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON names so messages match the request body
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Client-facing messages, kept stable for existing front ends
const (
	msgMissingField  = "Missing text or type"
	msgInvalidBody   = "Request body must be a JSON object"
	msgInvalidFormat = "Invalid %s"
)

// DecodeRequest parses a request body. Anything other than a JSON object with correctly
// typed fields is an invalid_body ValidationError.
func DecodeRequest(body []byte) (models.TransformRequest, error) {
	var req models.TransformRequest

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return req, &ValidationError{Kind: KindInvalidBody, Message: msgInvalidBody}
	}
	if err := json.Unmarshal(trimmed, &req); err != nil {
		field := ""
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			field = typeErr.Field
		}
		return req, &ValidationError{Field: field, Kind: KindInvalidBody, Message: msgInvalidBody}
	}
	return req, nil
}

// ValidateRequest checks text, feature and patternStatus in that order and reports the
// first failure
func ValidateRequest(req models.TransformRequest) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{Kind: KindInvalidBody, Message: err.Error()}
	}

	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return &ValidationError{Field: fe.Field(), Kind: KindMissingField, Message: msgMissingField}
	default:
		return &ValidationError{
			Field:   fe.Field(),
			Kind:    KindInvalidValue,
			Message: fmt.Sprintf(msgInvalidFormat, fe.Field()),
		}
	}
}
