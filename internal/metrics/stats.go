package metrics

import (
	"context"
	"sync"
	"time"
)

// Stats keeps in-process counters for the runtime metrics endpoint
type Stats struct {
	mu         sync.Mutex
	requests   int64
	serverErrs int64
	transforms map[string]map[string]int64
	tokens     int64
	latency    time.Duration
}

// NewStats creates an empty counter set
func NewStats() *Stats {
	return &Stats{transforms: make(map[string]map[string]int64)}
}

func (s *Stats) RecordAPIRequest(_ context.Context, _ string, statusCode int, _ time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests++
	if statusCode >= httpStatusServerError {
		s.serverErrs++
	}
}

func (s *Stats) RecordTransform(_ context.Context, o Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byResult, ok := s.transforms[o.Profile]
	if !ok {
		byResult = make(map[string]int64)
		s.transforms[o.Profile] = byResult
	}
	byResult[o.Result()]++
	s.tokens += o.TotalTokens
	if o.Success() {
		s.latency += o.Duration
	}
}

// Snapshot returns a copy of the counters, shaped for JSON
func (s *Stats) Snapshot() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	transforms := make(map[string]map[string]int64, len(s.transforms))
	var succeeded int64
	for profile, byResult := range s.transforms {
		cp := make(map[string]int64, len(byResult))
		for k, v := range byResult {
			cp[k] = v
		}
		transforms[profile] = cp
		succeeded += byResult["success"]
	}

	avgMs := int64(0)
	if succeeded > 0 {
		avgMs = s.latency.Milliseconds() / succeeded
	}

	return map[string]any{
		"requests_total":           s.requests,
		"server_errors_total":      s.serverErrs,
		"transforms":               transforms,
		"tokens_total":             s.tokens,
		"avg_transform_latency_ms": avgMs,
	}
}
