package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_EmptyInput(t *testing.T) {
	c := New(1000, 10)

	assert.Nil(t, c.Split("", 1, 0))
	assert.Nil(t, c.Split("   \n\t  ", 1, 0))
}

func TestSplit_ShortInputSingleChunk(t *testing.T) {
	c := New(1000, 10)
	text := "  Hello world. This is a short document.  "

	pieces := c.Split(text, 1, 0)

	require.Len(t, pieces, 1)
	assert.Equal(t, strings.TrimSpace(text), pieces[0].Content)
	assert.Equal(t, 1, pieces[0].Page)
	assert.Equal(t, 2, pieces[0].Start)
	assert.Equal(t, 2+len(strings.TrimSpace(text)), pieces[0].End)
}

func TestSplit_NoTerminalPunctuation(t *testing.T) {
	c := New(1000, 10)

	pieces := c.Split("just a fragment without an ending", 3, 0)

	require.Len(t, pieces, 1)
	assert.Equal(t, "just a fragment without an ending", pieces[0].Content)
	assert.Equal(t, 3, pieces[0].Page)
}

func TestSplit_ClosesAtSentenceBoundaries(t *testing.T) {
	c := New(40, 0)
	text := "One two three four five. Six seven eight nine ten. Eleven twelve thirteen fourteen fifteen."

	pieces := c.Split(text, 1, 0)

	require.Len(t, pieces, 3)
	assert.Equal(t, "One two three four five.", pieces[0].Content)
	assert.Equal(t, "Six seven eight nine ten.", pieces[1].Content)
	assert.Equal(t, "Eleven twelve thirteen fourteen fifteen.", pieces[2].Content)
}

func TestSplit_TrailingOverlapSeedsNextChunk(t *testing.T) {
	c := New(30, 50)
	text := "Alpha beta gamma delta. Epsilon zeta eta theta."

	pieces := c.Split(text, 1, 0)

	require.Len(t, pieces, 2)
	assert.Equal(t, "Alpha beta gamma delta.", pieces[0].Content)
	// Second chunk starts with the last 50% of the first chunk's words.
	assert.True(t, strings.HasPrefix(pieces[1].Content, "gamma delta."), "got %q", pieces[1].Content)
	assert.True(t, strings.HasSuffix(pieces[1].Content, "Epsilon zeta eta theta."))
}

func TestSplit_OffsetsMonotonic(t *testing.T) {
	c := New(50, 10)
	var sb strings.Builder
	for i := 0; i < 30; i++ {
		sb.WriteString("The quick brown fox jumps over the lazy dog. ")
	}

	pieces := c.Split(sb.String(), 1, 0)

	require.Greater(t, len(pieces), 1)
	for i := 1; i < len(pieces); i++ {
		assert.GreaterOrEqual(t, pieces[i].Start, pieces[i-1].Start)
		assert.GreaterOrEqual(t, pieces[i].End, pieces[i-1].End)
	}
	for _, p := range pieces {
		assert.Less(t, p.Start, p.End)
	}
}

func TestSplit_BaseShiftsOffsets(t *testing.T) {
	c := New(1000, 10)

	pieces := c.Split("Page two text.", 2, 100)

	require.Len(t, pieces, 1)
	assert.Equal(t, 100, pieces[0].Start)
	assert.Equal(t, 114, pieces[0].End)
	assert.Equal(t, 2, pieces[0].Page)
}

func TestSplit_OversizedSentenceKeptWhole(t *testing.T) {
	c := New(20, 10)
	long := "This single sentence is far longer than the twenty character budget."

	pieces := c.Split(long, 1, 0)

	require.Len(t, pieces, 1)
	assert.Equal(t, long, pieces[0].Content)
}

func TestSplit_EverySentenceSurvivesInOrder(t *testing.T) {
	c := New(60, 10)
	sentences := []string{
		"First things first.",
		"Second sentence follows!",
		"Third one asks a question?",
		"Fourth keeps going.",
		"Fifth wraps it up.",
	}
	text := strings.Join(sentences, " ")

	pieces := c.Split(text, 1, 0)
	require.NotEmpty(t, pieces)

	var joined strings.Builder
	for _, p := range pieces {
		joined.WriteString(p.Content)
		joined.WriteString(" ")
	}
	all := joined.String()

	last := -1
	for _, s := range sentences {
		idx := strings.Index(all[last+1:], s)
		require.GreaterOrEqual(t, idx, 0, "sentence %q missing after position %d", s, last)
		last += 1 + idx
	}
}

func TestNew_Defaults(t *testing.T) {
	c := New(0, -5)

	assert.Equal(t, DefaultChunkSize, c.size)
	assert.Equal(t, DefaultOverlapPercent, c.overlapPercent)
}
