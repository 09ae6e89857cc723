package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestStrictSchema(t *testing.T) {
	in := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"nested": map[string]any{
				"type":       "object",
				"properties": map[string]any{"a": map[string]any{"type": "string"}},
			},
			"b": map[string]any{"type": "number"},
		},
	}

	out := StrictSchema(in)
	assert.Equal(t, false, out["additionalProperties"])
	nested := out["properties"].(map[string]any)["nested"].(map[string]any)
	assert.Equal(t, false, nested["additionalProperties"])
	_, hasOnNumber := out["properties"].(map[string]any)["b"].(map[string]any)["additionalProperties"]
	assert.False(t, hasOnNumber)

	_, mutated := in["additionalProperties"]
	assert.False(t, mutated, "input schema must not be modified")
	assert.Nil(t, StrictSchema(nil))
}

func TestToGeminiSchema(t *testing.T) {
	s := toGeminiSchema(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"actor": map[string]any{"type": "string", "enum": []string{"NGO", "media"}},
			"tempo": map[string]any{"type": "number", "minimum": 60, "maximum": 120},
			"tags":  map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		},
		"required": []string{"actor", "tempo"},
	})

	require.NotNil(t, s)
	assert.Equal(t, genai.TypeObject, s.Type)
	assert.Equal(t, []string{"NGO", "media"}, s.Properties["actor"].Enum)
	assert.Equal(t, 60.0, *s.Properties["tempo"].Minimum)
	assert.Equal(t, genai.TypeArray, s.Properties["tags"].Type)
	assert.Equal(t, genai.TypeString, s.Properties["tags"].Items.Type)
	assert.Equal(t, []string{"actor", "tempo"}, s.Required)
	assert.Nil(t, toGeminiSchema(nil))
}
