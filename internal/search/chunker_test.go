package search

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitPagesWindowsAndOverlap(t *testing.T) {
	pages := []PageText{{PageNumber: 1, Text: "abcdefghij"}}

	passages := SplitPages(pages, 4, 1)

	require.Len(t, passages, 4)
	assert.Equal(t, "abcd", passages[0].Content)
	assert.Equal(t, "defg", passages[1].Content)
	assert.Equal(t, "ghij", passages[2].Content)
	assert.Equal(t, "j", passages[3].Content)
	for i, p := range passages {
		assert.Equal(t, i, p.Index)
		assert.Equal(t, 1, p.PageNumber)
	}
}

func TestSplitPagesNeverSpansPages(t *testing.T) {
	pages := []PageText{
		{PageNumber: 1, Text: strings.Repeat("a", 5)},
		{PageNumber: 2, Text: strings.Repeat("b", 5)},
	}

	passages := SplitPages(pages, 8, 2)

	require.Len(t, passages, 2)
	assert.Equal(t, "aaaaa", passages[0].Content)
	assert.Equal(t, 1, passages[0].PageNumber)
	assert.Equal(t, "bbbbb", passages[1].Content)
	assert.Equal(t, 2, passages[1].PageNumber)

	// Ordinals keep counting across pages.
	assert.Equal(t, 0, passages[0].Index)
	assert.Equal(t, 1, passages[1].Index)
}

func TestSplitPagesSkipsBlankWindows(t *testing.T) {
	pages := []PageText{{PageNumber: 3, Text: "ab        "}}

	passages := SplitPages(pages, 4, 0)

	require.Len(t, passages, 1)
	assert.Equal(t, "ab", passages[0].Content)
	assert.Equal(t, 0, passages[0].Index)
}

func TestSplitPagesGuardsBadParameters(t *testing.T) {
	pages := []PageText{{PageNumber: 1, Text: strings.Repeat("x", 600)}}

	// Zero size falls back to the default window; overlap >= size is clamped
	// so the loop always advances.
	passages := SplitPages(pages, 0, 0)
	assert.NotEmpty(t, passages)

	passages = SplitPages(pages, 10, 10)
	assert.NotEmpty(t, passages)
}
