package llm

import (
	"google.golang.org/genai"
)

// StrictSchema returns a copy of schema with additionalProperties disabled on every object.
// OpenAI strict mode requires it, and every property must then be listed in required.
func StrictSchema(schema map[string]any) map[string]any {
	if schema == nil {
		return nil
	}
	out := make(map[string]any, len(schema)+1)
	for k, v := range schema {
		switch val := v.(type) {
		case map[string]any:
			out[k] = StrictSchema(val)
		default:
			out[k] = val
		}
	}
	if props, ok := out["properties"].(map[string]any); ok {
		for name, prop := range props {
			if m, ok := prop.(map[string]any); ok {
				props[name] = StrictSchema(m)
			}
		}
	}
	if out["type"] == "object" {
		out["additionalProperties"] = false
	}
	return out
}

// toGeminiSchema converts a JSON schema map to Gemini's schema type.
// Only the keywords the response schemas use are carried over.
func toGeminiSchema(schema map[string]any) *genai.Schema {
	if schema == nil {
		return nil
	}

	s := &genai.Schema{}
	switch schema["type"] {
	case "object":
		s.Type = genai.TypeObject
	case "array":
		s.Type = genai.TypeArray
	case "string":
		s.Type = genai.TypeString
	case "number":
		s.Type = genai.TypeNumber
	case "integer":
		s.Type = genai.TypeInteger
	case "boolean":
		s.Type = genai.TypeBoolean
	}

	if desc, ok := schema["description"].(string); ok {
		s.Description = desc
	}
	if enum, ok := schema["enum"].([]string); ok {
		s.Enum = enum
	}
	if minimum, ok := asFloat(schema["minimum"]); ok {
		s.Minimum = genai.Ptr(minimum)
	}
	if maximum, ok := asFloat(schema["maximum"]); ok {
		s.Maximum = genai.Ptr(maximum)
	}
	if items, ok := schema["items"].(map[string]any); ok {
		s.Items = toGeminiSchema(items)
	}
	if props, ok := schema["properties"].(map[string]any); ok {
		s.Properties = make(map[string]*genai.Schema, len(props))
		for name, prop := range props {
			if m, ok := prop.(map[string]any); ok {
				s.Properties[name] = toGeminiSchema(m)
			}
		}
	}
	if required, ok := schema["required"].([]string); ok {
		s.Required = required
	}

	return s
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
