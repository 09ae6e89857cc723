package compare

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWords(t *testing.T) {
	d := Words(
		"Human influence has likely increased the chance of compound extreme events",
		"Human influence has certainly increased the chance of compound extreme events",
	)
	assert.True(t, d.Changed())
	assert.Equal(t, 1, d.Added)
	assert.Equal(t, 1, d.Removed)
	assert.Equal(t, 9, d.Kept)
	assert.Equal(t,
		"Human influence has [-likely-] {+certainly+} increased the chance of compound extreme events",
		d.Inline(),
	)
}

func TestWordsIdentical(t *testing.T) {
	d := Words("a  b c", "a b\tc")
	assert.False(t, d.Changed())
	assert.Equal(t, []Segment{{Op: OpEqual, Text: "a b c"}}, d.Segments)
}

func TestWordsEmpty(t *testing.T) {
	d := Words("", "new words")
	assert.Equal(t, 2, d.Added)
	assert.Equal(t, "{+new words+}", d.Inline())

	assert.Empty(t, Words("", "").Segments)
}

func TestColored(t *testing.T) {
	d := Words("old", "new")
	assert.Contains(t, d.Colored(), redColor+"old"+resetColor)
	assert.Contains(t, d.Colored(), greenColor+"new"+resetColor)
}

func TestCalibratedTerms(t *testing.T) {
	assert.Equal(t,
		[]string{"very likely", "high confidence"},
		CalibratedTerms("It is Very likely, with high confidence, that warming continues."),
	)
	assert.Equal(t, []string{"unlikely"}, CalibratedTerms("Collapse is unlikely this century."))
	assert.Empty(t, CalibratedTerms("Warming has increased the chance of extremes."))
}
