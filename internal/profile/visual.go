package profile

import "github.com/ipcctiled/transform-api/internal/models"

const visualMaxOutputTokens = 220

var visualParameterGuide = `Visual mapping (choose values consistent with the change you made):
- segments, between 0.5 and 4.0: more grammatical restructuring (transitivity) means more segments; a light vocabulary change stays near 0.5.
- hue, whole degrees between 0 and 360: certainty increased moves toward warm hues (0-60), certainty decreased toward cool hues (180-260), vocabulary changes shift the hue moderately.
- speed, between 0.001 and 0.02: a stronger change in modality means a faster speed.
- noiseScale by pattern status: ` + noiseScaleMapping() + "."

var visualOutputDirective = `Respond with ONLY valid JSON (no explanations, no extra text), exactly in this format:
{"text": "transformed sentence", "actorGuess": "NGO|ministry|lobby|media|government|industry", "segments": number between 0.5 and 4.0, "hue": whole number between 0 and 360, "speed": number between 0.001 and 0.02, "noiseScale": ` + noiseScaleChoices("|") + "}"

type visualProfile struct {
	version int
}

func (visualProfile) Name() Name { return Visual }

func (visualProfile) MaxOutputTokens() int { return visualMaxOutputTokens }

func (visualProfile) ParameterGuide() string { return visualParameterGuide }

func (visualProfile) OutputDirective() string { return visualOutputDirective }

func (visualProfile) Schema() map[string]any {
	return objectSchema(map[string]any{
		"text":       stringProperty("The transformed sentence"),
		"actorGuess": actorProperty(),
		"segments":   numberProperty("Number of tiled segments", SegmentsMin, SegmentsMax),
		"hue":        numberProperty("Hue in whole degrees", HueMin, HueMax),
		"speed":      numberProperty("Animation speed", SpeedMin, SpeedMax),
		"noiseScale": map[string]any{
			"type":        "number",
			"description": "Noise scale keyed by pattern status",
			"enum":        noiseScaleSteps,
		},
	}, "text", "actorGuess", "segments", "hue", "speed", "noiseScale")
}

func (visualProfile) Decode(fields Fields, policy RangePolicy) (*Result, error) {
	text, actor, err := decodeSentence(fields, "text", "actorGuess", policy)
	if err != nil {
		return nil, err
	}

	var v models.VisualParams
	if v.Segments, err = fields.Number("segments"); err != nil {
		return nil, err
	}
	if v.Segments, err = within("segments", v.Segments, SegmentsMin, SegmentsMax, policy); err != nil {
		return nil, err
	}
	if v.Hue, err = fields.Number("hue"); err != nil {
		return nil, err
	}
	if v.Hue, err = checkHue(v.Hue, policy); err != nil {
		return nil, err
	}
	if v.Speed, err = fields.Number("speed"); err != nil {
		return nil, err
	}
	if v.Speed, err = within("speed", v.Speed, SpeedMin, SpeedMax, policy); err != nil {
		return nil, err
	}
	if v.NoiseScale, err = fields.Number("noiseScale"); err != nil {
		return nil, err
	}
	if v.NoiseScale, err = checkNoiseScale(v.NoiseScale, policy); err != nil {
		return nil, err
	}

	return &Result{Sentence: text, Actor: actor, Visual: &v}, nil
}

func (p visualProfile) Response(res *Result) any {
	resp := models.VisualResponse{
		Version:    p.version,
		Text:       res.Sentence,
		ActorGuess: res.Actor,
	}
	if res.Visual != nil {
		resp.Segments = res.Visual.Segments
		resp.Hue = res.Visual.Hue
		resp.Speed = res.Visual.Speed
		resp.NoiseScale = res.Visual.NoiseScale
	}
	return resp
}
