package qa

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"
)

const extractiveCharBudget = 450

const groundedSystemPrompt = "You are a workplace support assistant. Answer the question using ONLY the supplied document context. " +
	"If the context does not contain the answer, say explicitly that the documentation does not cover it and suggest contacting the relevant department. " +
	"Answer in the language of the question."

// Composer turns ranked chunks into an answer, degrading from LLM synthesis
// to extractive text when the provider is unavailable.
type Composer struct {
	llm    ChatCompleter
	logger *slog.Logger
}

// NewComposer constructs a Composer. A nil ChatCompleter is valid and forces
// the extractive path.
func NewComposer(llm ChatCompleter, logger *slog.Logger) *Composer {
	return &Composer{llm: llm, logger: logger.With("component", "qa.composer")}
}

// Compose produces a grounded answer for the question from ranked chunks.
// Provider errors never propagate: the extractive fallback always yields text.
func (c *Composer) Compose(ctx context.Context, question string, ranked []ScoredChunk) string {
	if len(ranked) == 0 {
		return noContextAnswer(question)
	}
	if c.llm != nil {
		answer, err := c.llm.Chat(ctx, []ChatMessage{
			{Role: "system", Content: groundedSystemPrompt},
			{Role: "system", Content: "Context:\n" + contextBlock(ranked)},
			{Role: "user", Content: question},
		})
		if err == nil && strings.TrimSpace(answer) != "" {
			return strings.TrimSpace(answer)
		}
		if err != nil {
			c.logger.Warn("llm compose failed, using extractive answer", "error", err)
		}
	}
	return extractiveAnswer(question, ranked)
}

func contextBlock(ranked []ScoredChunk) string {
	var builder strings.Builder
	for i, sc := range ranked {
		title := sc.DocumentTitle
		if title == "" {
			title = sc.Chunk.DocumentID.String()
		}
		builder.WriteString(fmt.Sprintf("[%d] %s:\n%s\n\n", i+1, title, sc.Chunk.Content))
	}
	return builder.String()
}

// extractiveAnswer concatenates the most relevant chunk text up to a fixed
// character budget, optionally led by a topic sentence keyed off the question.
func extractiveAnswer(question string, ranked []ScoredChunk) string {
	var builder strings.Builder
	if lead := topicLead(question); lead != "" {
		builder.WriteString(lead)
		builder.WriteString(" ")
	}
	builder.WriteString("Based on documentation: ")
	used := 0
	for _, sc := range ranked {
		text := strings.TrimSpace(sc.Chunk.Content)
		if text == "" {
			continue
		}
		remaining := extractiveCharBudget - used
		if remaining <= 0 {
			break
		}
		if len(text) > remaining {
			text = strings.TrimSpace(cutAtRune(text, remaining)) + "..."
		}
		if used > 0 {
			builder.WriteString(" ")
		}
		builder.WriteString(text)
		used += len(text)
	}
	return builder.String()
}

func topicLead(question string) string {
	folded := FoldText(question)
	switch {
	case containsAny(folded, "hardware", "monitor", "ekran", "printer", "laptop", "komputer"):
		return "For hardware matters:"
	case containsAny(folded, "vpn", "network", "sebeke", "internet", "baglanti"):
		return "For network connectivity:"
	case containsAny(folded, "password", "parol", "sifre", "login", "giris"):
		return "For account access:"
	default:
		return ""
	}
}

func noContextAnswer(question string) string {
	folded := FoldText(question)
	if containsAny(folded, "mezuniyyet", "vacation", "leave", "maas", "salary") {
		return "No documentation is available for this question yet. Please contact the HR department for assistance."
	}
	return "No documentation is available for this question yet. Please contact the appropriate department for assistance."
}

// cutAtRune shortens text to at most max bytes, backing up so that a
// multi-byte rune is never split.
func cutAtRune(text string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(text) <= max {
		return text
	}
	for max > 0 && !utf8.RuneStart(text[max]) {
		max--
	}
	return text[:max]
}

func containsAny(text string, terms ...string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}
