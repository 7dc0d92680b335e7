package chunker

import (
	"strings"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"

	knowledge "github.com/elchin/deskhelp/internal/domain/knowledge"
)

const tokenEncoding = "cl100k_base"

// SentenceChunker splits text on sentence boundaries and greedily packs
// sentences into chunks bounded by a character budget, seeding each new chunk
// with the tail sentences of the previous one to preserve context.
type SentenceChunker struct {
	MaxChars         int
	OverlapSentences int
	encoder          *tiktoken.Tiktoken
}

// NewSentenceChunker constructs a chunker with defaults of 1000 chars and a
// two sentence overlap.
func NewSentenceChunker(maxChars, overlapSentences int) *SentenceChunker {
	if maxChars <= 0 {
		maxChars = 1000
	}
	if overlapSentences < 0 {
		overlapSentences = 0
	}
	encoder, err := tiktoken.GetEncoding(tokenEncoding)
	if err != nil {
		// Token counts degrade to an estimate; chunk boundaries are
		// unaffected since they are character based.
		encoder = nil
	}
	return &SentenceChunker{
		MaxChars:         maxChars,
		OverlapSentences: overlapSentences,
		encoder:          encoder,
	}
}

// Chunk produces a finite ordered sequence of non-empty chunks. A single
// sentence longer than the budget is kept whole, never truncated.
func (c *SentenceChunker) Chunk(text string) []knowledge.ChunkCandidate {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var (
		out     []knowledge.ChunkCandidate
		current []string
		length  int
	)
	emit := func() {
		content := strings.TrimSpace(strings.Join(current, " "))
		if content == "" {
			return
		}
		out = append(out, knowledge.ChunkCandidate{
			Index:      len(out),
			Content:    content,
			TokenCount: c.countTokens(content),
		})
	}

	for _, sentence := range sentences {
		if length > 0 && length+len(sentence)+1 > c.MaxChars {
			emit()
			current = overlapTail(current, c.OverlapSentences)
			length = joinedLength(current)
		}
		current = append(current, sentence)
		length += len(sentence)
		if len(current) > 1 {
			length++
		}
	}
	emit()
	return out
}

func (c *SentenceChunker) countTokens(text string) int {
	if c.encoder != nil {
		return len(c.encoder.Encode(text, nil, nil))
	}
	// rough fallback: ~4 runes per token, at least one
	tokens := utf8.RuneCountInString(text) / 4
	if tokens < 1 {
		tokens = 1
	}
	return tokens
}

// splitSentences cuts text after '.', '!', or '?', discarding empty
// fragments. Terminators stay attached to their sentence.
func splitSentences(text string) []string {
	var (
		sentences []string
		builder   strings.Builder
	)
	flush := func() {
		sentence := strings.TrimSpace(builder.String())
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
		builder.Reset()
	}
	for _, r := range text {
		builder.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			flush()
		}
	}
	flush()
	return sentences
}

func overlapTail(sentences []string, overlap int) []string {
	if overlap <= 0 || len(sentences) == 0 {
		return nil
	}
	if len(sentences) <= overlap {
		overlap = len(sentences)
	}
	tail := make([]string, overlap)
	copy(tail, sentences[len(sentences)-overlap:])
	return tail
}

func joinedLength(sentences []string) int {
	length := 0
	for i, s := range sentences {
		length += len(s)
		if i > 0 {
			length++
		}
	}
	return length
}

var _ knowledge.Chunker = (*SentenceChunker)(nil)
