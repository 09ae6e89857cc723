package transform

import (
	"errors"
	"testing"

	"github.com/ipcctiled/transform-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     models.TransformRequest
		field   string
		kind    Kind
		message string
	}{
		{"missing text", models.TransformRequest{Feature: "vocab"}, "text", KindMissingField, "Missing text or type"},
		{"missing feature", models.TransformRequest{Text: "x"}, "feature", KindMissingField, "Missing text or type"},
		{"missing both reports text", models.TransformRequest{}, "text", KindMissingField, "Missing text or type"},
		{"unknown feature", models.TransformRequest{Text: "x", Feature: "tone"}, "feature", KindInvalidValue, "Invalid feature"},
		{"feature is case sensitive", models.TransformRequest{Text: "x", Feature: "Vocab"}, "feature", KindInvalidValue, "Invalid feature"},
		{"unknown pattern status", models.TransformRequest{Text: "x", Feature: "modality", PatternStatus: "kept"}, "patternStatus", KindInvalidValue, "Invalid patternStatus"},
		{"feature checked before status", models.TransformRequest{Text: "x", Feature: "tone", PatternStatus: "kept"}, "feature", KindInvalidValue, "Invalid feature"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequest(tt.req)
			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "expected ValidationError, got %v", err)
			assert.Equal(t, tt.field, ve.Field)
			assert.Equal(t, tt.kind, ve.Kind)
			assert.Equal(t, tt.message, ve.Error())
		})
	}
}

func TestValidateRequestAccepts(t *testing.T) {
	for _, f := range models.Features {
		assert.NoError(t, ValidateRequest(models.TransformRequest{Text: "x", Feature: f}))
		for _, s := range models.PatternStatuses {
			assert.NoError(t, ValidateRequest(models.TransformRequest{Text: "x", Feature: f, PatternStatus: s}))
		}
	}
}

func TestDecodeRequest(t *testing.T) {
	req, err := DecodeRequest([]byte(`{"text":"Sea level will rise.","feature":"vocab","patternStatus":"omitted","abc_original":"X:1","extra":true}`))
	require.NoError(t, err)
	assert.Equal(t, "Sea level will rise.", req.Text)
	assert.Equal(t, models.FeatureVocab, req.Feature)
	assert.Equal(t, models.PatternOmitted, req.PatternStatus)
	assert.Equal(t, "X:1", req.BaselineMelody)

	req, err = DecodeRequest([]byte(`{"text":null,"feature":"vocab"}`))
	require.NoError(t, err)
	assert.True(t, IsValidation(ValidateRequest(req)), "null text is missing")

	for _, body := range []string{``, `null`, `[]`, `"text"`, `{"text":`, `{"text":5,"feature":"vocab"}`} {
		_, err := DecodeRequest([]byte(body))
		var ve *ValidationError
		require.True(t, errors.As(err, &ve), "body %q", body)
		assert.Equal(t, KindInvalidBody, ve.Kind, "body %q", body)
	}
}
