package prompt

import (
	"fmt"
	"strings"
	"sync"

	"github.com/ipcctiled/transform-api/internal/models"
	"github.com/ipcctiled/transform-api/pkg/embedded"
)

// Directives are the fixed instruction tables, one entry per feature and per pattern status.
// They are read from the embedded files once and never modified.
type Directives struct {
	preamble string
	features map[models.Feature]string
	patterns map[models.PatternStatus]string
}

var (
	loadOnce   sync.Once
	loaded     *Directives
	errLoading error
)

// LoadDirectives returns the process-wide directive tables
func LoadDirectives() (*Directives, error) {
	loadOnce.Do(func() {
		loaded, errLoading = readDirectives()
	})
	return loaded, errLoading
}

func readDirectives() (*Directives, error) {
	d := &Directives{
		preamble: strings.TrimSpace(string(embedded.PreambleTxt)),
		features: make(map[models.Feature]string, len(models.Features)),
		patterns: make(map[models.PatternStatus]string, len(models.PatternStatuses)),
	}

	for _, f := range models.Features {
		data, err := embedded.FeatureDirectives.ReadFile("data/features/" + string(f) + ".txt")
		if err != nil {
			return nil, fmt.Errorf("load feature directive %s: %w", f, err)
		}
		d.features[f] = strings.TrimSpace(string(data))
	}

	for _, s := range models.PatternStatuses {
		data, err := embedded.PatternDirectives.ReadFile("data/patterns/" + string(s) + ".txt")
		if err != nil {
			return nil, fmt.Errorf("load pattern directive %s: %w", s, err)
		}
		d.patterns[s] = strings.TrimSpace(string(data))
	}

	return d, nil
}

// Preamble returns the role-framing text
func (d *Directives) Preamble() string {
	return d.preamble
}

// Feature returns the directive for f
func (d *Directives) Feature(f models.Feature) (string, bool) {
	text, ok := d.features[f]
	return text, ok
}

// Pattern returns the directive for s; an empty status selects the default
func (d *Directives) Pattern(s models.PatternStatus) (string, bool) {
	text, ok := d.patterns[s.OrDefault()]
	return text, ok
}
