// Package compare shows how a transformed sentence differs from its source.
package compare

import (
	"regexp"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Op is the kind of a diff segment
type Op string

const (
	OpEqual  Op = "equal"
	OpInsert Op = "insert"
	OpDelete Op = "delete"
)

// Segment is a run of words that were kept, added or removed
type Segment struct {
	Op   Op
	Text string
}

// Diff is a word-level comparison of two sentences
type Diff struct {
	Segments []Segment
	Added    int
	Removed  int
	Kept     int
}

// Private use area, so mapped words never collide with real text
const firstWordRune = 0xE000

// Words diffs source and transformed word by word. Whitespace differences are ignored.
func Words(source, transformed string) Diff {
	index := map[string]rune{}
	var vocab []string
	encode := func(s string) []rune {
		words := strings.Fields(s)
		out := make([]rune, len(words))
		for i, w := range words {
			r, ok := index[w]
			if !ok {
				r = rune(firstWordRune + len(vocab))
				index[w] = r
				vocab = append(vocab, w)
			}
			out[i] = r
		}
		return out
	}

	a, b := encode(source), encode(transformed)
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMainRunes(a, b, false)

	var d Diff
	for _, diff := range diffs {
		runes := []rune(diff.Text)
		words := make([]string, len(runes))
		for i, r := range runes {
			words[i] = vocab[r-firstWordRune]
		}

		seg := Segment{Text: strings.Join(words, " ")}
		switch diff.Type {
		case diffmatchpatch.DiffInsert:
			seg.Op = OpInsert
			d.Added += len(words)
		case diffmatchpatch.DiffDelete:
			seg.Op = OpDelete
			d.Removed += len(words)
		default:
			seg.Op = OpEqual
			d.Kept += len(words)
		}
		if seg.Text != "" {
			d.Segments = append(d.Segments, seg)
		}
	}
	return d
}

// Changed reports whether any word was added or removed
func (d Diff) Changed() bool {
	return d.Added > 0 || d.Removed > 0
}

// Inline renders the diff as [-removed-] {+added+} markup
func (d Diff) Inline() string {
	parts := make([]string, 0, len(d.Segments))
	for _, s := range d.Segments {
		switch s.Op {
		case OpInsert:
			parts = append(parts, "{+"+s.Text+"+}")
		case OpDelete:
			parts = append(parts, "[-"+s.Text+"-]")
		default:
			parts = append(parts, s.Text)
		}
	}
	return strings.Join(parts, " ")
}

// ANSI colors for terminal output
const (
	redColor   = "\033[31m"
	greenColor = "\033[32m"
	resetColor = "\033[0m"
)

// Colored renders the diff with removed words in red and added words in green
func (d Diff) Colored() string {
	parts := make([]string, 0, len(d.Segments))
	for _, s := range d.Segments {
		switch s.Op {
		case OpInsert:
			parts = append(parts, greenColor+s.Text+resetColor)
		case OpDelete:
			parts = append(parts, redColor+s.Text+resetColor)
		default:
			parts = append(parts, s.Text)
		}
	}
	return strings.Join(parts, " ")
}

// IPCC calibrated likelihood and confidence expressions, longest first
var calibratedTerms = []string{
	"about as likely as not",
	"exceptionally unlikely",
	"extremely unlikely",
	"virtually certain",
	"very high confidence",
	"very low confidence",
	"extremely likely",
	"medium confidence",
	"high confidence",
	"low confidence",
	"very unlikely",
	"very likely",
	"more likely than not",
	"unlikely",
	"likely",
}

var calibratedPattern = func() *regexp.Regexp {
	quoted := make([]string, len(calibratedTerms))
	for i, t := range calibratedTerms {
		quoted[i] = regexp.QuoteMeta(t)
	}
	return regexp.MustCompile(`(?i)\b(` + strings.Join(quoted, "|") + `)\b`)
}()

// CalibratedTerms returns the calibrated-language expressions found in text, lower-cased,
// in order of appearance
func CalibratedTerms(text string) []string {
	matches := calibratedPattern.FindAllString(text, -1)
	for i, m := range matches {
		matches[i] = strings.ToLower(m)
	}
	return matches
}
