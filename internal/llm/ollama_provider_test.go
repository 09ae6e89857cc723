package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	ollama "github.com/ollama/ollama/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChatClient struct {
	lastRequest *ollama.ChatRequest
	replies     []ollama.ChatResponse
	err         error
}

func (f *fakeChatClient) Chat(_ context.Context, req *ollama.ChatRequest, fn ollama.ChatResponseFunc) error {
	f.lastRequest = req
	if f.err != nil {
		return f.err
	}
	for _, r := range f.replies {
		if err := fn(r); err != nil {
			return err
		}
	}
	return nil
}

func TestOllamaProvider_Generate(t *testing.T) {
	final := ollama.ChatResponse{Message: ollama.Message{Content: `"NGO"}`}, Done: true}
	final.PromptEvalCount = 40
	final.EvalCount = 12

	fake := &fakeChatClient{replies: []ollama.ChatResponse{
		{Message: ollama.Message{Content: `{"sentence":"x","actor":`}},
		final,
	}}
	provider := &OllamaProvider{client: fake}

	resp, err := provider.Generate(context.Background(), &GenerationRequest{
		Model:           "llama3",
		SystemPrompt:    "be brief",
		InputArray:      UserMessage("rewrite"),
		Temperature:     0.3,
		TopP:            0.85,
		MaxOutputTokens: 180,
		OutputSchema:    &OutputSchema{Name: "base", Schema: map[string]any{"type": "object"}},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"sentence":"x","actor":"NGO"}`, resp.RawOutput)
	assert.Equal(t, int64(52), resp.Usage.TotalTokens)

	req := fake.lastRequest
	require.NotNil(t, req)
	require.NotNil(t, req.Stream)
	assert.False(t, *req.Stream)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, "system", req.Messages[0].Role)
	assert.Equal(t, 0.3, req.Options["temperature"])
	assert.Equal(t, 0.85, req.Options["top_p"])
	assert.Equal(t, 180, req.Options["num_predict"])

	var format map[string]any
	require.NoError(t, json.Unmarshal(req.Format, &format))
	assert.Equal(t, "object", format["type"])
}

func TestOllamaProvider_Errors(t *testing.T) {
	provider := &OllamaProvider{client: &fakeChatClient{err: errors.New("connection refused")}}
	_, err := provider.Generate(context.Background(), &GenerationRequest{Model: "llama3", InputArray: UserMessage("x")})
	assert.ErrorContains(t, err, "connection refused")

	provider = &OllamaProvider{client: &fakeChatClient{replies: []ollama.ChatResponse{{Done: true}}}}
	_, err = provider.Generate(context.Background(), &GenerationRequest{Model: "llama3", InputArray: UserMessage("x")})
	assert.ErrorIs(t, err, ErrEmptyOutput)
}

func TestNewOllamaProvider(t *testing.T) {
	p, err := NewOllamaProvider("http://127.0.0.1:11434")
	require.NoError(t, err)
	assert.Equal(t, "ollama", p.Name())

	_, err = NewOllamaProvider("://bad")
	assert.Error(t, err)
}
