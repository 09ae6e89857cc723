package profile

import (
	"encoding/json"
	"testing"

	"github.com/ipcctiled/transform-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldsOf(t *testing.T, raw string) Fields {
	t.Helper()
	var f Fields
	require.NoError(t, json.Unmarshal([]byte(raw), &f))
	return f
}

func TestNew(t *testing.T) {
	for _, name := range []string{"base", "melody", "visual", " Visual "} {
		p, err := New(name, DefaultOptions())
		require.NoError(t, err, name)
		assert.NotEmpty(t, p.OutputDirective())
		assert.Positive(t, p.MaxOutputTokens())
	}

	_, err := New("poster", DefaultOptions())
	assert.Error(t, err)
}

func TestAll(t *testing.T) {
	all := All(DefaultOptions())
	assert.Len(t, all, 3)
	for name, p := range all {
		assert.Equal(t, name, p.Name())
	}
}

func TestBaseProfile_Decode(t *testing.T) {
	p := baseProfile{}

	res, err := p.Decode(fieldsOf(t, `{"sentence":"Rewritten.","actor":"NGO","extra":1}`), PolicyReject)
	require.NoError(t, err)
	assert.Equal(t, models.BaseResponse{Success: true, Sentence: "Rewritten.", Actor: "NGO"}, p.Response(res))

	tests := []struct {
		name string
		raw  string
		key  string
	}{
		{"missing sentence", `{"actor":"NGO"}`, "sentence"},
		{"null sentence", `{"sentence":null,"actor":"NGO"}`, "sentence"},
		{"missing actor", `{"sentence":"x"}`, "actor"},
		{"actor is a number", `{"sentence":"x","actor":3}`, "actor"},
		{"empty sentence", `{"sentence":"","actor":"NGO"}`, "sentence"},
		{"unknown actor", `{"sentence":"x","actor":"blogger"}`, "actor"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Decode(fieldsOf(t, tt.raw), PolicyReject)
			var fe *FieldError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.key, fe.Key)
		})
	}
}

func TestBaseProfile_UnknownActorPassesOutsideReject(t *testing.T) {
	res, err := baseProfile{}.Decode(fieldsOf(t, `{"sentence":"x","actor":"blogger"}`), PolicyPassthrough)
	require.NoError(t, err)
	assert.Equal(t, "blogger", res.Actor)
}

func TestMelodyProfile_Decode(t *testing.T) {
	p := melodyProfile{}
	raw := `{"sentence":"s","actor":"media","abc":"X:1\nK:C\nCDEF|","key":"C","tempo":96,"range":"C4-G5"}`

	res, err := p.Decode(fieldsOf(t, raw), PolicyReject)
	require.NoError(t, err)
	resp, ok := p.Response(res).(models.MelodyResponse)
	require.True(t, ok)
	assert.True(t, resp.Success)
	assert.Equal(t, "X:1\nK:C\nCDEF|", resp.ABC)
	assert.Equal(t, 96.0, resp.Tempo)
	assert.Equal(t, "C4-G5", resp.Range)

	_, err = p.Decode(fieldsOf(t, `{"sentence":"s","actor":"media","abc":"x","key":"C","range":"C4-G5"}`), PolicyReject)
	assert.Error(t, err, "tempo is required")

	_, err = p.Decode(fieldsOf(t, `{"sentence":"s","actor":"media","abc":"x","key":"C","tempo":"fast","range":"C4-G5"}`), PolicyReject)
	assert.Error(t, err, "tempo must be numeric")
}

func TestMelodyProfile_TempoPolicy(t *testing.T) {
	raw := `{"sentence":"s","actor":"media","abc":"x","key":"C","tempo":150,"range":"C4-G5"}`
	p := melodyProfile{}

	_, err := p.Decode(fieldsOf(t, raw), PolicyReject)
	assert.Error(t, err)

	res, err := p.Decode(fieldsOf(t, raw), PolicyClamp)
	require.NoError(t, err)
	assert.Equal(t, 120.0, res.Melody.Tempo)

	res, err = p.Decode(fieldsOf(t, raw), PolicyPassthrough)
	require.NoError(t, err)
	assert.Equal(t, 150.0, res.Melody.Tempo)
}

func TestVisualProfile_Decode(t *testing.T) {
	p := visualProfile{version: 3}
	raw := `{"text":"t","actorGuess":"ministry","segments":1.5,"hue":210,"speed":0.01,"noiseScale":0.05}`

	res, err := p.Decode(fieldsOf(t, raw), PolicyReject)
	require.NoError(t, err)
	assert.Equal(t, models.VisualResponse{
		Version:    3,
		Text:       "t",
		ActorGuess: "ministry",
		Segments:   1.5,
		Hue:        210,
		Speed:      0.01,
		NoiseScale: 0.05,
	}, p.Response(res))
}

func TestVisualProfile_RangePolicies(t *testing.T) {
	raw := `{"text":"t","actorGuess":"lobby","segments":9,"hue":400.4,"speed":0.0001,"noiseScale":0.07}`
	p := visualProfile{version: 1}

	tests := []struct {
		policy RangePolicy
		want   *models.VisualParams
	}{
		{PolicyReject, nil},
		{PolicyClamp, &models.VisualParams{Segments: 4, Hue: 360, Speed: 0.001, NoiseScale: 0.05}},
		{PolicyPassthrough, &models.VisualParams{Segments: 9, Hue: 400.4, Speed: 0.0001, NoiseScale: 0.07}},
	}
	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			res, err := p.Decode(fieldsOf(t, raw), tt.policy)
			if tt.want == nil {
				var fe *FieldError
				require.ErrorAs(t, err, &fe)
				assert.Equal(t, "segments", fe.Key)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, *tt.want, *res.Visual)
		})
	}
}

func TestCheckHue(t *testing.T) {
	_, err := checkHue(120.5, PolicyReject)
	assert.Error(t, err)

	v, err := checkHue(120.5, PolicyClamp)
	require.NoError(t, err)
	assert.Equal(t, 121.0, v)

	v, err = checkHue(0, PolicyReject)
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)
}

func TestCheckNoiseScale(t *testing.T) {
	for _, step := range NoiseScaleByStatus {
		v, err := checkNoiseScale(step, PolicyReject)
		require.NoError(t, err)
		assert.Equal(t, step, v)
	}

	v, err := checkNoiseScale(0.09, PolicyClamp)
	require.NoError(t, err)
	assert.Equal(t, 0.10, v)

	_, err = checkNoiseScale(0.02, PolicyReject)
	assert.Error(t, err)
}

func TestNoiseScaleTableIsSingleSource(t *testing.T) {
	assert.Equal(t, []float64{0.01, 0.05, 0.10}, noiseScaleSteps)
	assert.Equal(t, "0.01|0.05|0.10", noiseScaleChoices("|"))

	visual := All(Options{VisualVersion: 1})[Visual]
	assert.Contains(t, visual.ParameterGuide(), "maintained = 0.01, changed = 0.05, omitted = 0.10.")
	assert.Contains(t, visual.OutputDirective(), `"noiseScale": 0.01|0.05|0.10}`)
	assert.Equal(t, noiseScaleSteps, visual.Schema()["properties"].(map[string]any)["noiseScale"].(map[string]any)["enum"])

	_, err := checkNoiseScale(0.02, PolicyReject)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "0.01, 0.05, 0.10")
}

func TestParseRangePolicy(t *testing.T) {
	p, err := ParseRangePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyReject, p)

	p, err = ParseRangePolicy("CLAMP")
	require.NoError(t, err)
	assert.Equal(t, PolicyClamp, p)

	_, err = ParseRangePolicy("ignore")
	assert.Error(t, err)
}

func TestSchemasRequireEveryKey(t *testing.T) {
	for name, p := range All(DefaultOptions()) {
		schema := p.Schema()
		props, ok := schema["properties"].(map[string]any)
		require.True(t, ok, name)
		required, ok := schema["required"].([]string)
		require.True(t, ok, name)
		assert.Len(t, required, len(props), "profile %s", name)
	}
}
