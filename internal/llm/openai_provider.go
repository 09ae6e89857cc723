package llm

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/getsentry/sentry-go"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
)

const (
	// Role constants
	userRole      = "user"
	developerRole = "developer"
	systemRole    = "system"

	// Provider name
	providerNameOpenAI = "openai"

	// Logging limits
	maxOutputTrunc = 200

	// Reasoning tokens count against max_output_tokens, so reasoning models get this much on
	// top of the reply budget
	reasoningTokenHeadroom = 1024
)

// Reasoning models reject temperature and top_p; they get the lowest reasoning effort instead
var modelsWithReasoning = map[string]bool{
	"gpt-5":        true,
	"gpt-5-mini":   true,
	"gpt-5-nano":   true,
	"gpt-5.1":      true,
	"gpt-5.1-mini": true,
	"gpt-5.1-nano": true,
}

// supportsReasoning reports whether model belongs to the GPT-5 family or the o-series
func supportsReasoning(model string) bool {
	return modelsWithReasoning[model] || strings.HasPrefix(model, "o")
}

// OpenAIProvider implements the Provider interface using OpenAI's Responses API
type OpenAIProvider struct {
	client *openai.Client
}

// NewOpenAIProvider creates a new OpenAI provider. Each Generate is a single HTTP attempt;
// the SDK's automatic retries are turned off.
func NewOpenAIProvider(apiKey string, opts ...option.RequestOption) *OpenAIProvider {
	defaults := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	client := openai.NewClient(append(defaults, opts...)...)
	return &OpenAIProvider{
		client: &client,
	}
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return providerNameOpenAI
}

// Generate implements non-streaming generation using OpenAI's Responses API
func (p *OpenAIProvider) Generate(ctx context.Context, request *GenerationRequest) (*GenerationResponse, error) {
	startTime := time.Now()
	log.Printf("🎵 OPENAI GENERATION REQUEST STARTED (Model: %s)", request.Model)

	transaction := sentry.StartTransaction(ctx, "openai.generate")
	defer transaction.Finish()

	transaction.SetTag("model", request.Model)
	transaction.SetTag("provider", providerNameOpenAI)

	params := p.buildRequestParams(request)

	span := transaction.StartChild("openai.api_call")
	resp, err := p.client.Responses.New(ctx, params)
	apiDuration := time.Since(startTime)
	span.Finish()

	if err != nil {
		log.Printf("❌ OPENAI REQUEST FAILED after %v: %v", apiDuration, err)
		transaction.SetTag("success", "false")
		sentry.CaptureException(err)
		return nil, fmt.Errorf("openai request failed: %w", err)
	}

	log.Printf("⏱️  OPENAI API CALL COMPLETED in %v", apiDuration)

	result, err := p.processResponse(resp, transaction)
	if err != nil {
		transaction.SetTag("success", "false")
		return nil, err
	}

	transaction.SetTag("success", "true")
	return result, nil
}

// buildRequestParams converts GenerationRequest to OpenAI-specific ResponseNewParams
func (p *OpenAIProvider) buildRequestParams(request *GenerationRequest) responses.ResponseNewParams {
	inputItems := responses.ResponseInputParam{}

	for _, item := range request.InputArray {
		role, hasRole := item["role"].(string)
		content, hasContent := item["content"].(string)

		if !hasRole || !hasContent {
			log.Printf("⚠️  Skipping invalid input item (missing role or content): %v", item)
			continue
		}

		var roleEnum responses.EasyInputMessageRole
		switch role {
		case developerRole, systemRole:
			roleEnum = responses.EasyInputMessageRoleDeveloper
		default:
			roleEnum = responses.EasyInputMessageRoleUser
		}

		inputItems = append(inputItems,
			responses.ResponseInputItemParamOfMessage(content, roleEnum),
		)
	}

	params := responses.ResponseNewParams{
		Model: request.Model,
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: inputItems,
		},
	}

	if request.SystemPrompt != "" {
		params.Instructions = openai.String(request.SystemPrompt)
	}
	if supportsReasoning(request.Model) {
		params.Reasoning = shared.ReasoningParam{Effort: responses.ReasoningEffortLow}
		if request.Temperature > 0 || request.TopP > 0 {
			log.Printf("⚠️  %s is a reasoning model, sampling settings not sent", request.Model)
		}
	} else {
		if request.Temperature > 0 {
			params.Temperature = openai.Float(request.Temperature)
		}
		if request.TopP > 0 {
			params.TopP = openai.Float(request.TopP)
		}
	}
	if request.MaxOutputTokens > 0 {
		maxTokens := int64(request.MaxOutputTokens)
		if params.Reasoning.Effort != "" {
			maxTokens += reasoningTokenHeadroom
		}
		params.MaxOutputTokens = openai.Int(maxTokens)
	}

	if request.OutputSchema != nil {
		format := responses.ResponseFormatTextConfigParamOfJSONSchema(
			request.OutputSchema.Name,
			StrictSchema(request.OutputSchema.Schema),
		)
		if format.OfJSONSchema != nil {
			format.OfJSONSchema.Strict = openai.Bool(true)
			if request.OutputSchema.Description != "" {
				format.OfJSONSchema.Description = openai.String(request.OutputSchema.Description)
			}
		}
		params.Text = responses.ResponseTextConfigParam{Format: format}
		log.Printf("📋 JSON SCHEMA CONFIGURED: %s", request.OutputSchema.Name)
	}

	return params
}

// processResponse extracts the JSON text output from the response
func (p *OpenAIProvider) processResponse(resp *responses.Response, transaction *sentry.Span) (*GenerationResponse, error) {
	span := transaction.StartChild("process_response_json")
	defer span.Finish()

	textOutput := strings.TrimSpace(resp.OutputText())
	log.Printf("📥 OPENAI JSON RESPONSE: status=%s output_length=%d, output_items=%d, tokens=%d",
		resp.Status, len(textOutput), len(resp.Output), resp.Usage.TotalTokens)

	// A missing status is treated as completed
	if resp.Status != "" && resp.Status != responses.ResponseStatusCompleted {
		log.Printf("⚠️  OPENAI RESPONSE NOT COMPLETED: status=%s reason=%s preview=%s",
			resp.Status, resp.IncompleteDetails.Reason, truncate(textOutput, maxOutputTrunc))
		return nil, fmt.Errorf("openai: %w (status %s, reason %q)",
			ErrIncompleteOutput, resp.Status, resp.IncompleteDetails.Reason)
	}

	if textOutput == "" {
		return nil, fmt.Errorf("openai: %w", ErrEmptyOutput)
	}

	p.logUsageStats(resp.Usage)

	return &GenerationResponse{
		RawOutput: textOutput,
		Model:     string(resp.Model),
		Usage: Usage{
			InputTokens:  resp.Usage.InputTokens,
			OutputTokens: resp.Usage.OutputTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
	}, nil
}

// logUsageStats logs token usage statistics
func (p *OpenAIProvider) logUsageStats(usage responses.ResponseUsage) {
	log.Printf("📊 USAGE: input=%d, output=%d, total=%d",
		usage.InputTokens, usage.OutputTokens, usage.TotalTokens)
}

// truncate cuts a string to maxLen runes
func truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	return string([]rune(s)[:maxLen]) + "..."
}
