package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	ollama "github.com/ollama/ollama/api"
)

const providerNameOllama = "ollama"

// chatClient is the part of the ollama client the provider uses
type chatClient interface {
	Chat(ctx context.Context, req *ollama.ChatRequest, fn ollama.ChatResponseFunc) error
}

// OllamaProvider implements the Provider interface against a local Ollama server
type OllamaProvider struct {
	client chatClient
}

// NewOllamaProvider creates a provider for the Ollama server at host.
// An empty host falls back to OLLAMA_HOST and the library default.
func NewOllamaProvider(host string) (*OllamaProvider, error) {
	if host == "" {
		client, err := ollama.ClientFromEnvironment()
		if err != nil {
			return nil, fmt.Errorf("could not create ollama client: %w", err)
		}
		return &OllamaProvider{client: client}, nil
	}

	base, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama host %q: %w", host, err)
	}
	return &OllamaProvider{client: ollama.NewClient(base, http.DefaultClient)}, nil
}

// Name returns the provider name
func (p *OllamaProvider) Name() string {
	return providerNameOllama
}

// Generate runs a single non-streaming chat completion
func (p *OllamaProvider) Generate(ctx context.Context, request *GenerationRequest) (*GenerationResponse, error) {
	startTime := time.Now()
	log.Printf("🎵 OLLAMA GENERATION REQUEST STARTED (Model: %s)", request.Model)

	transaction := sentry.StartTransaction(ctx, "ollama.generate")
	defer transaction.Finish()

	transaction.SetTag("model", request.Model)
	transaction.SetTag("provider", providerNameOllama)

	req, err := p.buildChatRequest(request)
	if err != nil {
		transaction.SetTag("success", "false")
		return nil, err
	}

	var content strings.Builder
	var final ollama.ChatResponse
	respFunc := func(res ollama.ChatResponse) error {
		content.WriteString(res.Message.Content)
		if res.Done {
			final = res
		}
		return nil
	}

	span := transaction.StartChild("ollama.api_call")
	err = p.client.Chat(ctx, req, respFunc)
	apiDuration := time.Since(startTime)
	span.Finish()

	if err != nil {
		log.Printf("❌ OLLAMA REQUEST FAILED after %v: %v", apiDuration, err)
		transaction.SetTag("success", "false")
		sentry.CaptureException(err)
		return nil, fmt.Errorf("ollama chat failed: %w", err)
	}

	textOutput := strings.TrimSpace(content.String())
	log.Printf("⏱️  OLLAMA API CALL COMPLETED in %v (output_length=%d)", apiDuration, len(textOutput))

	if textOutput == "" {
		transaction.SetTag("success", "false")
		return nil, fmt.Errorf("ollama: %w", ErrEmptyOutput)
	}

	transaction.SetTag("success", "true")
	return &GenerationResponse{
		RawOutput: textOutput,
		Model:     request.Model,
		Usage: Usage{
			InputTokens:  int64(final.PromptEvalCount),
			OutputTokens: int64(final.EvalCount),
			TotalTokens:  int64(final.PromptEvalCount + final.EvalCount),
		},
	}, nil
}

func (p *OllamaProvider) buildChatRequest(request *GenerationRequest) (*ollama.ChatRequest, error) {
	var messages []ollama.Message
	if request.SystemPrompt != "" {
		messages = append(messages, ollama.Message{Role: systemRole, Content: request.SystemPrompt})
	}
	for _, item := range request.InputArray {
		role, hasRole := item["role"].(string)
		content, hasContent := item["content"].(string)
		if !hasRole || !hasContent {
			log.Printf("⚠️  Skipping invalid input item (missing role or content): %v", item)
			continue
		}
		if role == developerRole {
			role = systemRole
		}
		messages = append(messages, ollama.Message{Role: role, Content: content})
	}

	stream := false
	req := &ollama.ChatRequest{
		Model:    request.Model,
		Messages: messages,
		Stream:   &stream,
		Options:  map[string]any{},
	}

	if request.Temperature > 0 {
		req.Options["temperature"] = request.Temperature
	}
	if request.TopP > 0 {
		req.Options["top_p"] = request.TopP
	}
	if request.MaxOutputTokens > 0 {
		req.Options["num_predict"] = request.MaxOutputTokens
	}

	if request.OutputSchema != nil {
		format, err := json.Marshal(request.OutputSchema.Schema)
		if err != nil {
			return nil, fmt.Errorf("encode ollama format schema: %w", err)
		}
		req.Format = format
	}

	return req, nil
}
