package chunk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wordCount struct{}

func (wordCount) Count(text string) int { return len(strings.Fields(text)) }

func TestMarkdownSplitterSplitsByHeading(t *testing.T) {
	splitter, err := NewMarkdownSplitter(8, wordCount{})
	require.NoError(t, err)

	doc := "# First\n\nAlpha beta gamma delta epsilon.\n\n# Second\n\nZeta eta theta iota kappa."
	segments, err := splitter.Split(doc)
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(segments), 2)
	joined := strings.Join(segments, "\n")
	assert.Contains(t, joined, "Alpha beta gamma")
	assert.Contains(t, joined, "Zeta eta theta")
}

func TestMarkdownSplitterRejectsEmptyInput(t *testing.T) {
	splitter, err := NewMarkdownSplitter(10, wordCount{})
	require.NoError(t, err)

	_, err = splitter.Split("  \n ")
	var segErr *SegmentationError
	assert.ErrorAs(t, err, &segErr)
}

func TestNewMarkdownSplitterRejectsBadBudget(t *testing.T) {
	_, err := NewMarkdownSplitter(0, wordCount{})
	assert.Error(t, err)
}

func TestRecursiveSplitterRespectsBudget(t *testing.T) {
	splitter, err := NewRecursiveSplitter(6, wordCount{})
	require.NoError(t, err)

	text := "one two three four five six\n\nseven eight nine ten eleven twelve\n\nthirteen fourteen"
	segments, err := splitter.Split(text)
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(segments), 2)
	for _, seg := range segments {
		assert.LessOrEqual(t, len(strings.Fields(seg)), 6, "segment over budget: %q", seg)
	}
}

func TestRecursiveSplitterRejectsEmptyInput(t *testing.T) {
	splitter, err := NewRecursiveSplitter(10, wordCount{})
	require.NoError(t, err)

	_, err = splitter.Split("")
	var segErr *SegmentationError
	assert.ErrorAs(t, err, &segErr)
}
