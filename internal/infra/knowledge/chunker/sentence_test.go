package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChunkEmptyInput(t *testing.T) {
	c := NewSentenceChunker(1000, 2)
	require.Nil(t, c.Chunk(""))
	require.Nil(t, c.Chunk("   \n\t  "))
}

func TestChunkSingleShortText(t *testing.T) {
	c := NewSentenceChunker(1000, 2)
	out := c.Chunk("Employees may request a monitor. Approval takes three days.")
	require.Len(t, out, 1)
	require.Equal(t, 0, out[0].Index)
	require.Equal(t, "Employees may request a monitor. Approval takes three days.", out[0].Content)
	require.Greater(t, out[0].TokenCount, 0)
}

func TestChunkNeverProducesEmptyChunks(t *testing.T) {
	c := NewSentenceChunker(50, 1)
	text := "One sentence here. Another sentence follows! A third one? And a fourth. Plus a fifth sentence to overflow."
	out := c.Chunk(text)
	require.NotEmpty(t, out)
	for i, chunk := range out {
		require.Equal(t, i, chunk.Index)
		require.NotEmpty(t, strings.TrimSpace(chunk.Content))
		require.Greater(t, chunk.TokenCount, 0)
	}
}

func TestChunkKeepsOversizedSentenceWhole(t *testing.T) {
	c := NewSentenceChunker(50, 0)
	long := strings.Repeat("word ", 40) + "end."
	out := c.Chunk(long)
	require.Len(t, out, 1)
	require.Contains(t, out[0].Content, "end.")
}

func TestChunkOverlapSeedsNextChunk(t *testing.T) {
	c := NewSentenceChunker(60, 1)
	text := "First sentence is here. Second sentence is right here. Third sentence closes it."
	out := c.Chunk(text)
	require.GreaterOrEqual(t, len(out), 2)
	// each chunk after the first starts with the previous chunk's last sentence
	for i := 1; i < len(out); i++ {
		prev := splitSentences(out[i-1].Content)
		require.NotEmpty(t, prev)
		require.True(t, strings.HasPrefix(out[i].Content, prev[len(prev)-1]),
			"chunk %d should start with the tail of chunk %d", i, i-1)
	}
}

func TestChunkZeroOverlapDoesNotRepeat(t *testing.T) {
	c := NewSentenceChunker(30, 0)
	text := "Alpha sentence one. Beta sentence two. Gamma sentence three."
	out := c.Chunk(text)
	require.GreaterOrEqual(t, len(out), 2)
	seen := make(map[string]struct{})
	for _, chunk := range out {
		_, dup := seen[chunk.Content]
		require.False(t, dup, "chunk content repeated: %s", chunk.Content)
		seen[chunk.Content] = struct{}{}
	}
}

func TestChunkIsDeterministic(t *testing.T) {
	c := NewSentenceChunker(80, 2)
	text := "Sentence a. Sentence b. Sentence c. Sentence d. Sentence e. Sentence f."
	require.Equal(t, c.Chunk(text), c.Chunk(text))
}

func TestSplitSentencesKeepsTerminators(t *testing.T) {
	sentences := splitSentences("Is it broken? Yes! Fix it.")
	require.Equal(t, []string{"Is it broken?", "Yes!", "Fix it."}, sentences)
}

func TestSplitSentencesTrailingFragment(t *testing.T) {
	sentences := splitSentences("Complete sentence. trailing fragment without terminator")
	require.Len(t, sentences, 2)
	require.Equal(t, "trailing fragment without terminator", sentences[1])
}
