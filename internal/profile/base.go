package profile

import "github.com/ipcctiled/transform-api/internal/models"

const baseMaxOutputTokens = 180

const baseOutputDirective = `Respond with ONLY valid JSON (no explanations, no extra text), exactly in this format:
{"sentence": "transformed sentence", "actor": "NGO|ministry|lobby|media|government|industry"}`

type baseProfile struct{}

func (baseProfile) Name() Name { return Base }

func (baseProfile) MaxOutputTokens() int { return baseMaxOutputTokens }

func (baseProfile) ParameterGuide() string { return "" }

func (baseProfile) OutputDirective() string { return baseOutputDirective }

func (baseProfile) Schema() map[string]any {
	return objectSchema(map[string]any{
		"sentence": stringProperty("The transformed sentence"),
		"actor":    actorProperty(),
	}, "sentence", "actor")
}

func (baseProfile) Decode(fields Fields, policy RangePolicy) (*Result, error) {
	sentence, actor, err := decodeSentence(fields, "sentence", "actor", policy)
	if err != nil {
		return nil, err
	}
	return &Result{Sentence: sentence, Actor: actor}, nil
}

func (baseProfile) Response(res *Result) any {
	return models.BaseResponse{
		Success:  true,
		Sentence: res.Sentence,
		Actor:    res.Actor,
	}
}

// decodeSentence reads the sentence and actor keys every profile requires
func decodeSentence(fields Fields, sentenceKey, actorKey string, policy RangePolicy) (string, string, error) {
	sentence, err := fields.String(sentenceKey)
	if err != nil {
		return "", "", err
	}
	actor, err := fields.String(actorKey)
	if err != nil {
		return "", "", err
	}
	actor, err = checkActor(actorKey, actor, policy)
	if err != nil {
		return "", "", err
	}
	return sentence, actor, nil
}

func objectSchema(properties map[string]any, required ...string) map[string]any {
	return map[string]any{
		"type":                 "object",
		"properties":           properties,
		"required":             required,
		"additionalProperties": false,
	}
}

func stringProperty(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

func numberProperty(description string, minimum, maximum float64) map[string]any {
	return map[string]any{
		"type":        "number",
		"description": description,
		"minimum":     minimum,
		"maximum":     maximum,
	}
}

func actorProperty() map[string]any {
	return map[string]any{
		"type":        "string",
		"description": "Institutional voice the sentence sounds like",
		"enum":        models.ActorCategories,
	}
}
