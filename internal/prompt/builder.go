package prompt

import (
	"fmt"
	"strings"

	"github.com/ipcctiled/transform-api/internal/models"
	"github.com/ipcctiled/transform-api/internal/profile"
)

const closingInstruction = "Produce the transformed sentence."

// Builder composes the instruction sent to the language model
type Builder struct {
	directives *Directives
}

// NewPromptBuilder creates a builder over the embedded directive tables
func NewPromptBuilder() (*Builder, error) {
	d, err := LoadDirectives()
	if err != nil {
		return nil, err
	}
	return &Builder{directives: d}, nil
}

// Compose builds the instruction for one request. It has no side effects: the same request
// and profile always produce the same string.
func (b *Builder) Compose(req models.TransformRequest, p profile.Profile) (string, error) {
	status := req.PatternStatus.OrDefault()

	featureText, ok := b.directives.Feature(req.Feature)
	if !ok {
		return "", fmt.Errorf("no directive for feature %q", req.Feature)
	}
	patternText, ok := b.directives.Pattern(status)
	if !ok {
		return "", fmt.Errorf("no directive for pattern status %q", status)
	}

	sections := []string{
		b.directives.Preamble(),
		"Original statement:\n\"" + req.Text + "\"",
		"Feature to change: " + string(req.Feature) + "\nFeature instruction:\n" + featureText,
		"Pattern status: " + string(status) + "\nPattern instruction:\n" + patternText,
	}

	if p.Name() == profile.Melody && strings.TrimSpace(req.BaselineMelody) != "" {
		sections = append(sections, "Baseline melody (ABC notation):\n"+strings.TrimSpace(req.BaselineMelody))
	}
	if guide := p.ParameterGuide(); guide != "" {
		sections = append(sections, guide)
	}

	sections = append(sections, closingInstruction, p.OutputDirective())

	return strings.Join(sections, "\n\n"), nil
}
