package llm

import (
	"context"
	"errors"
)

// ErrEmptyOutput is returned when the model answered without any output text
var ErrEmptyOutput = errors.New("model returned no output text")

// ErrIncompleteOutput is returned when the model stopped before finishing its reply,
// usually because it hit the output token cap
var ErrIncompleteOutput = errors.New("model output incomplete")

// Provider defines the interface for LLM providers
// All providers MUST support structured output (JSON Schema) so the reply can be decoded
type Provider interface {
	// Generate sends one instruction and returns the model's raw text reply
	Generate(ctx context.Context, request *GenerationRequest) (*GenerationResponse, error)

	// Name returns the provider name (e.g., "openai", "gemini", "ollama")
	Name() string
}

// GenerationRequest contains all parameters needed for generation
type GenerationRequest struct {
	Model        string
	SystemPrompt string
	InputArray   []map[string]any
	// Structured output schema - REQUIRED for reliable JSON parsing
	OutputSchema *OutputSchema

	Temperature     float64
	TopP            float64
	MaxOutputTokens int
}

// OutputSchema defines the expected JSON output structure
type OutputSchema struct {
	Name        string
	Description string
	Schema      map[string]any // JSON Schema object
}

// Usage is the token accounting reported by a provider
type Usage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
	TotalTokens  int64 `json:"total_tokens"`
}

// GenerationResponse contains the result from the LLM
type GenerationResponse struct {
	RawOutput string `json:"-"` // Raw JSON text output, decoded by the caller
	Usage     Usage  `json:"usage"`
	Model     string `json:"model,omitempty"`
}

// UserMessage builds a single-entry input array
func UserMessage(content string) []map[string]any {
	return []map[string]any{{"role": userRole, "content": content}}
}
