package transform

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ipcctiled/transform-api/internal/llm"
	"github.com/ipcctiled/transform-api/internal/logger"
	"github.com/ipcctiled/transform-api/internal/metrics"
	"github.com/ipcctiled/transform-api/internal/models"
	"github.com/ipcctiled/transform-api/internal/observability"
	"github.com/ipcctiled/transform-api/internal/profile"
	"github.com/ipcctiled/transform-api/internal/prompt"
)

// Sampling settings for every provider call
const (
	Temperature    = 0.3
	TopP           = 0.85
	DefaultTimeout = 30 * time.Second

	previewChars = 200
)

// Tracer receives one record per provider call
type Tracer interface {
	RecordGeneration(ctx context.Context, rec observability.GenerationRecord)
}

// Options configure a Service
type Options struct {
	Model    string
	Policy   profile.RangePolicy
	Timeout  time.Duration
	Recorder metrics.Recorder
	Tracer   Tracer
}

// Service runs the transform pipeline: validate, compose, generate, enforce
type Service struct {
	provider llm.Provider
	builder  *prompt.Builder
	model    string
	policy   profile.RangePolicy
	timeout  time.Duration
	recorder metrics.Recorder
	tracer   Tracer
}

// NewService creates a service around one provider handle
func NewService(provider llm.Provider, builder *prompt.Builder, opts Options) *Service {
	s := &Service{
		provider: provider,
		builder:  builder,
		model:    opts.Model,
		policy:   opts.Policy,
		timeout:  opts.Timeout,
		recorder: opts.Recorder,
		tracer:   opts.Tracer,
	}
	if s.policy == "" {
		s.policy = profile.PolicyReject
	}
	if s.timeout <= 0 {
		s.timeout = DefaultTimeout
	}
	if s.recorder == nil {
		s.recorder = metrics.Nop{}
	}
	return s
}

// ProviderName returns the name of the injected provider
func (s *Service) ProviderName() string {
	return s.provider.Name()
}

// Model returns the configured model identifier
func (s *Service) Model() string {
	return s.model
}

// Policy returns the active range policy
func (s *Service) Policy() profile.RangePolicy {
	return s.policy
}

// Transform handles one request for profile p and returns the profile's response body.
// Invalid input fails before the provider is contacted.
func (s *Service) Transform(ctx context.Context, req models.TransformRequest, p profile.Profile) (body any, err error) {
	start := time.Now()
	r := newRun()

	outcome := metrics.Outcome{
		Profile:       string(p.Name()),
		Feature:       string(req.Feature),
		PatternStatus: string(req.PatternStatus.OrDefault()),
		Provider:      s.provider.Name(),
		Model:         s.model,
	}
	defer func() {
		outcome.Duration = time.Since(start)
		outcome.Stage = string(r.stage)
		if r.stage == StageFailed {
			outcome.Stage = string(r.failedAt)
		}
		outcome.ErrorKind = ErrorKind(err)
		s.recorder.RecordTransform(ctx, outcome)
	}()

	if verr := ValidateRequest(req); verr != nil {
		return nil, r.fail(verr)
	}
	req = req.Normalized()
	r.advance(StageValidated)

	instruction, cerr := s.builder.Compose(req, p)
	if cerr != nil {
		return nil, r.fail(fmt.Errorf("compose instruction: %w", cerr))
	}
	r.advance(StagePrompted)

	fields := logger.Fields{
		"profile":        string(p.Name()),
		"feature":        string(req.Feature),
		"pattern_status": string(req.PatternStatus),
		"provider":       s.provider.Name(),
		"model":          s.model,
	}

	genStart := time.Now()
	gen, gerr := s.generate(ctx, instruction, p)
	s.trace(ctx, p, req, instruction, gen, gerr, genStart)
	if gerr != nil {
		perr := NewProviderError(s.provider.Name(), gerr)
		logger.Error("Provider call failed", perr, fields)
		return nil, r.fail(perr)
	}
	logger.LogGenerationRequest(ctx, s.provider.Name(), s.model, time.Since(genStart), map[string]interface{}{
		"input_tokens":  gen.Usage.InputTokens,
		"output_tokens": gen.Usage.OutputTokens,
		"total_tokens":  gen.Usage.TotalTokens,
	}, logger.Fields{
		"profile": string(p.Name()),
		"cost":    observability.FormatCost(observability.CalculateCost(s.provider.Name(), s.model, gen.Usage)),
	})
	outcome.InputTokens = gen.Usage.InputTokens
	outcome.OutputTokens = gen.Usage.OutputTokens
	outcome.TotalTokens = gen.Usage.TotalTokens
	r.advance(StageGenerated)

	body, eerr := Enforce(gen.RawOutput, p, s.policy)
	if eerr != nil {
		fields["raw_preview"] = preview(gen.RawOutput)
		logger.Error("Model output rejected", eerr, fields)
		return nil, r.fail(eerr)
	}
	r.advance(StageParsed)

	logger.Debug("Transform completed", fields)
	r.advance(StageResponded)
	return body, nil
}

// generate makes the single provider call, bounded by the configured timeout
func (s *Service) generate(ctx context.Context, instruction string, p profile.Profile) (*llm.GenerationResponse, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.provider.Generate(callCtx, &llm.GenerationRequest{
		Model:      s.model,
		InputArray: llm.UserMessage(instruction),
		OutputSchema: &llm.OutputSchema{
			Name:        "transform_" + string(p.Name()),
			Description: "Transformed sentence with the " + string(p.Name()) + " profile keys",
			Schema:      p.Schema(),
		},
		Temperature:     Temperature,
		TopP:            TopP,
		MaxOutputTokens: p.MaxOutputTokens(),
	})
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) && !errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s: %w", context.DeadlineExceeded, s.timeout, err)
		}
		return nil, err
	}
	if resp == nil || strings.TrimSpace(resp.RawOutput) == "" {
		return nil, llm.ErrEmptyOutput
	}
	return resp, nil
}

func (s *Service) trace(
	ctx context.Context,
	p profile.Profile,
	req models.TransformRequest,
	instruction string,
	gen *llm.GenerationResponse,
	err error,
	start time.Time,
) {
	if s.tracer == nil {
		return
	}

	rec := observability.GenerationRecord{
		Name:     "transform." + string(p.Name()),
		Provider: s.provider.Name(),
		Model:    s.model,
		Input:    instruction,
		Start:    start,
		End:      time.Now(),
		Err:      err,
		Metadata: map[string]any{
			"profile":        string(p.Name()),
			"feature":        string(req.Feature),
			"pattern_status": string(req.PatternStatus),
		},
	}
	if gen != nil {
		rec.Output = gen.RawOutput
		rec.Usage = gen.Usage
	}
	s.tracer.RecordGeneration(ctx, rec)
}

// preview cuts s to previewChars runes for logging
func preview(s string) string {
	if utf8.RuneCountInString(s) <= previewChars {
		return s
	}
	return string([]rune(s)[:previewChars]) + "..."
}
