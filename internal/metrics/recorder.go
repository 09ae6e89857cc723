package metrics

import (
	"context"
	"time"
)

// Outcome describes one finished transform request
type Outcome struct {
	Profile       string
	Feature       string
	PatternStatus string
	Provider      string
	Model         string
	// Stage is the last stage reached, or the step that failed
	Stage string
	// ErrorKind is empty on success
	ErrorKind string
	Duration  time.Duration

	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// Success reports whether the request produced a response body
func (o Outcome) Success() bool {
	return o.ErrorKind == ""
}

// Result returns "success" or the error kind
func (o Outcome) Result() string {
	if o.Success() {
		return "success"
	}
	return o.ErrorKind
}

// Recorder receives request and transform measurements
type Recorder interface {
	RecordAPIRequest(ctx context.Context, endpoint string, statusCode int, duration time.Duration)
	RecordTransform(ctx context.Context, o Outcome)
}

// Nop discards everything
type Nop struct{}

func (Nop) RecordAPIRequest(context.Context, string, int, time.Duration) {}
func (Nop) RecordTransform(context.Context, Outcome)                     {}

// Multi fans every measurement out to each recorder
type Multi []Recorder

func (m Multi) RecordAPIRequest(ctx context.Context, endpoint string, statusCode int, duration time.Duration) {
	for _, r := range m {
		r.RecordAPIRequest(ctx, endpoint, statusCode, duration)
	}
}

func (m Multi) RecordTransform(ctx context.Context, o Outcome) {
	for _, r := range m {
		r.RecordTransform(ctx, o)
	}
}
