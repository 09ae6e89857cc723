package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
)

const (
	// HTTP status code threshold for considering a request successful
	successStatusCodeThreshold = http.StatusBadRequest
)

// SentryMetrics records measurements as Sentry performance spans
type SentryMetrics struct {
	enabled bool
}

// NewSentryMetrics creates a new Sentry metrics client
func NewSentryMetrics(enabled bool) *SentryMetrics {
	return &SentryMetrics{enabled: enabled}
}

// RecordAPIRequest records API request metrics
func (m *SentryMetrics) RecordAPIRequest(ctx context.Context, endpoint string, statusCode int, duration time.Duration) {
	if !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "api.request")
	defer span.Finish()

	span.SetTag("endpoint", endpoint)
	span.SetTag("status_code", fmt.Sprintf("%d", statusCode))
	span.SetTag("success", fmt.Sprintf("%t", statusCode < successStatusCodeThreshold))

	span.SetData("duration_ms", duration.Milliseconds())
	span.SetData("endpoint", endpoint)
	span.SetData("status_code", statusCode)

	if statusCode < successStatusCodeThreshold {
		span.Status = sentry.SpanStatusOK
	} else {
		span.Status = sentry.SpanStatusInternalError
	}

	span.Description = fmt.Sprintf("API Request: %s", endpoint)
}

// RecordTransform records one transform outcome, with token usage on the enclosing transaction
func (m *SentryMetrics) RecordTransform(ctx context.Context, o Outcome) {
	if !m.enabled {
		return
	}

	if transaction := sentry.TransactionFromContext(ctx); transaction != nil {
		transaction.SetTag("transform.profile", o.Profile)
		transaction.SetTag("transform.result", o.Result())
		transaction.SetData("llm.total_tokens", o.TotalTokens)
		transaction.SetData("llm.input_tokens", o.InputTokens)
		transaction.SetData("llm.output_tokens", o.OutputTokens)
	}

	span := sentry.StartSpan(ctx, "transform.request")
	defer span.Finish()

	span.SetTag("profile", o.Profile)
	span.SetTag("feature", o.Feature)
	span.SetTag("pattern_status", o.PatternStatus)
	span.SetTag("provider", o.Provider)
	span.SetTag("model", o.Model)
	span.SetTag("stage", o.Stage)
	span.SetTag("success", fmt.Sprintf("%t", o.Success()))

	span.SetData("duration_ms", o.Duration.Milliseconds())
	span.SetData("total_tokens", o.TotalTokens)
	if !o.Success() {
		span.SetData("error_kind", o.ErrorKind)
	}

	if o.Success() {
		span.Status = sentry.SpanStatusOK
	} else {
		span.Status = sentry.SpanStatusInternalError
	}

	span.Description = fmt.Sprintf("Transform: %s/%s", o.Profile, o.Feature)
}
