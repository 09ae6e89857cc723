package prompt

import (
	"strings"
	"testing"

	"github.com/ipcctiled/transform-api/internal/models"
	"github.com/ipcctiled/transform-api/internal/profile"
)

const sampleSentence = "Human influence has likely increased the chance of compound extreme events since the 1950s"

func mustBuilder(t *testing.T) *Builder {
	t.Helper()
	b, err := NewPromptBuilder()
	if err != nil {
		t.Fatalf("NewPromptBuilder() returned error: %v", err)
	}
	return b
}

func mustProfile(t *testing.T, name profile.Name) profile.Profile {
	t.Helper()
	p, err := profile.New(string(name), profile.DefaultOptions())
	if err != nil {
		t.Fatalf("profile.New(%s) returned error: %v", name, err)
	}
	return p
}

func TestComposeContainsDirectives(t *testing.T) {
	b := mustBuilder(t)
	d, _ := LoadDirectives()

	req := models.TransformRequest{
		Text:          sampleSentence,
		Feature:       models.FeatureModality,
		PatternStatus: models.PatternMaintained,
	}
	got, err := b.Compose(req, mustProfile(t, profile.Base))
	if err != nil {
		t.Fatalf("Compose() returned error: %v", err)
	}

	modality, _ := d.Feature(models.FeatureModality)
	maintained, _ := d.Pattern(models.PatternMaintained)
	for _, want := range []string{sampleSentence, modality, maintained, d.Preamble()} {
		if !strings.Contains(got, want) {
			t.Errorf("Compose() missing %q", want)
		}
	}
	if !strings.HasSuffix(got, mustProfile(t, profile.Base).OutputDirective()) {
		t.Error("Compose() should end with the output directive")
	}
}

func TestComposeOmittedPattern(t *testing.T) {
	b := mustBuilder(t)
	got, err := b.Compose(models.TransformRequest{
		Text:          sampleSentence,
		Feature:       models.FeatureVocab,
		PatternStatus: models.PatternOmitted,
	}, mustProfile(t, profile.Base))
	if err != nil {
		t.Fatalf("Compose() returned error: %v", err)
	}

	if !strings.Contains(got, "Pattern status: omitted") {
		t.Error("Compose() should name the omitted status")
	}
	if !strings.Contains(got, "Remove all explicit IPCC likelihood and confidence expressions") {
		t.Error("Compose() should instruct removal of calibrated language")
	}
	if !strings.Contains(got, "Do not replace them with alternative probability or uncertainty terms") {
		t.Error("Compose() should forbid substitute uncertainty terms")
	}
}

func TestComposeDefaultPatternIsMaintained(t *testing.T) {
	b := mustBuilder(t)
	p := mustProfile(t, profile.Visual)

	withDefault, err := b.Compose(models.TransformRequest{Text: sampleSentence, Feature: models.FeatureTransitivity}, p)
	if err != nil {
		t.Fatalf("Compose() returned error: %v", err)
	}
	explicit, _ := b.Compose(models.TransformRequest{
		Text:          sampleSentence,
		Feature:       models.FeatureTransitivity,
		PatternStatus: models.PatternMaintained,
	}, p)

	if withDefault != explicit {
		t.Error("omitting patternStatus should compose the same payload as maintained")
	}
}

func TestComposeIsDeterministic(t *testing.T) {
	b := mustBuilder(t)
	for _, name := range profile.Names {
		p := mustProfile(t, name)
		for _, f := range models.Features {
			for _, s := range models.PatternStatuses {
				req := models.TransformRequest{Text: sampleSentence, Feature: f, PatternStatus: s, BaselineMelody: "X:1\nK:C\nCDEF|"}
				first, _ := b.Compose(req, p)
				second, _ := b.Compose(req, p)
				if first != second {
					t.Errorf("Compose(%s, %s, %s) is not deterministic", name, f, s)
				}
			}
		}
	}
}

func TestComposeFeatureAndPatternAreIndependent(t *testing.T) {
	b := mustBuilder(t)
	d, _ := LoadDirectives()
	p := mustProfile(t, profile.Base)

	for _, f := range models.Features {
		for _, s := range models.PatternStatuses {
			got, _ := b.Compose(models.TransformRequest{Text: sampleSentence, Feature: f, PatternStatus: s}, p)
			featureText, _ := d.Feature(f)
			patternText, _ := d.Pattern(s)
			if !strings.Contains(got, featureText) || !strings.Contains(got, patternText) {
				t.Errorf("Compose(%s, %s) should carry both directives", f, s)
			}
			for _, other := range models.PatternStatuses {
				if other == s {
					continue
				}
				otherText, _ := d.Pattern(other)
				if strings.Contains(got, otherText) {
					t.Errorf("Compose(%s, %s) leaked the %s directive", f, s, other)
				}
			}
		}
	}
}

func TestComposeProfileSections(t *testing.T) {
	b := mustBuilder(t)
	req := models.TransformRequest{
		Text:           sampleSentence,
		Feature:        models.FeatureModality,
		BaselineMelody: "X:1\nK:G\nGABc|",
	}

	base, _ := b.Compose(req, mustProfile(t, profile.Base))
	if strings.Contains(base, "Baseline melody") || strings.Contains(base, "mapping") {
		t.Error("base profile should not include melody or parameter sections")
	}

	melody, _ := b.Compose(req, mustProfile(t, profile.Melody))
	if !strings.Contains(melody, "Baseline melody (ABC notation):\nX:1\nK:G\nGABc|") {
		t.Error("melody profile should include the baseline melody")
	}
	if !strings.Contains(melody, "major key and a faster tempo") {
		t.Error("melody profile should include the musical mapping")
	}
	if !strings.Contains(melody, `"tempo": number between 60 and 120`) {
		t.Error("melody profile should name the tempo range")
	}

	visual, _ := b.Compose(req, mustProfile(t, profile.Visual))
	if strings.Contains(visual, "Baseline melody") {
		t.Error("visual profile should ignore the baseline melody")
	}
	if !strings.Contains(visual, "omitted = 0.10") {
		t.Error("visual profile should map omitted to noiseScale 0.10")
	}
}

func TestComposeUnknownFeature(t *testing.T) {
	b := mustBuilder(t)
	if _, err := b.Compose(models.TransformRequest{Text: "x", Feature: "tone"}, mustProfile(t, profile.Base)); err == nil {
		t.Error("Compose() should reject an unknown feature")
	}
}
