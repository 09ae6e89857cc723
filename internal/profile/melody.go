package profile

import "github.com/ipcctiled/transform-api/internal/models"

const melodyMaxOutputTokens = 400

const melodyParameterGuide = `Musical mapping (apply the row that matches the change you made):
- The baseline melody, when given, is the starting point. Change it in proportion to the linguistic change.
- modality, certainty increased: shift toward a major key and a faster tempo.
- modality, certainty decreased: shift toward a minor key and a slower tempo.
- vocab: keep the rhythm and contour, vary intervals and ornamentation.
- transitivity, agency foregrounded: lead in a higher register with a wider range.
- transitivity, agency backgrounded: move to a lower register with a narrower range.
- pattern maintained: keep the key of the baseline melody.
- pattern changed: modulate to a closely related key.
- pattern omitted: use a modal or ambiguous key and a narrow range.
- tempo is always between 60 and 120 BPM.`

const melodyOutputDirective = `Respond with ONLY valid JSON (no explanations, no extra text), exactly in this format:
{"sentence": "transformed sentence", "actor": "NGO|ministry|lobby|media|government|industry", "abc": "transformed melody in ABC notation", "key": "short key token, e.g. C or Am", "tempo": number between 60 and 120, "range": "short pitch range token, e.g. C4-G5"}`

type melodyProfile struct{}

func (melodyProfile) Name() Name { return Melody }

func (melodyProfile) MaxOutputTokens() int { return melodyMaxOutputTokens }

func (melodyProfile) ParameterGuide() string { return melodyParameterGuide }

func (melodyProfile) OutputDirective() string { return melodyOutputDirective }

func (melodyProfile) Schema() map[string]any {
	return objectSchema(map[string]any{
		"sentence": stringProperty("The transformed sentence"),
		"actor":    actorProperty(),
		"abc":      stringProperty("Transformed melody in ABC notation"),
		"key":      stringProperty("Musical key, e.g. C or Am"),
		"tempo":    numberProperty("Tempo in BPM", TempoMin, TempoMax),
		"range":    stringProperty("Pitch range, e.g. C4-G5"),
	}, "sentence", "actor", "abc", "key", "tempo", "range")
}

func (melodyProfile) Decode(fields Fields, policy RangePolicy) (*Result, error) {
	sentence, actor, err := decodeSentence(fields, "sentence", "actor", policy)
	if err != nil {
		return nil, err
	}

	var m MelodyParams
	if m.ABC, err = fields.String("abc"); err != nil {
		return nil, err
	}
	if m.Key, err = fields.String("key"); err != nil {
		return nil, err
	}
	tempo, err := fields.Number("tempo")
	if err != nil {
		return nil, err
	}
	if m.Tempo, err = within("tempo", tempo, TempoMin, TempoMax, policy); err != nil {
		return nil, err
	}
	if m.Range, err = fields.String("range"); err != nil {
		return nil, err
	}

	return &Result{Sentence: sentence, Actor: actor, Melody: &m}, nil
}

func (melodyProfile) Response(res *Result) any {
	resp := models.MelodyResponse{
		Success:  true,
		Sentence: res.Sentence,
		Actor:    res.Actor,
	}
	if res.Melody != nil {
		resp.ABC = res.Melody.ABC
		resp.Key = res.Melody.Key
		resp.Tempo = res.Melody.Tempo
		resp.Range = res.Melody.Range
	}
	return resp
}
