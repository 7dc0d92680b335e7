package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	knowledge "github.com/elchin/deskhelp/internal/domain/knowledge"
	"github.com/elchin/deskhelp/internal/infra/llm/chatgpt"
)

// ChatGPTEmbedder calls an OpenAI-compatible embeddings API.
type ChatGPTEmbedder struct {
	client *chatgpt.Client
	model  string
	logger *slog.Logger
}

// NewChatGPTEmbedder constructs an embedder backed by the chatgpt client.
func NewChatGPTEmbedder(client *chatgpt.Client, model string, logger *slog.Logger) *ChatGPTEmbedder {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatGPTEmbedder{
		client: client,
		model:  strings.TrimSpace(model),
		logger: logger.With("component", "ai.embedder"),
	}
}

// Embed requests embeddings for the given texts, order preserving.
func (e *ChatGPTEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	resp, err := e.client.CreateEmbedding(ctx, chatgpt.EmbeddingRequest{
		Model: e.model,
		Input: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: expected %d got %d", len(texts), len(resp.Data))
	}
	out := make([][]float32, len(texts))
	for _, item := range resp.Data {
		if item.Index < 0 || item.Index >= len(out) {
			return nil, fmt.Errorf("embedding index %d out of range", item.Index)
		}
		vec := make([]float32, len(item.Embedding))
		copy(vec, item.Embedding)
		out[item.Index] = vec
	}
	return out, nil
}

var _ knowledge.Embedder = (*ChatGPTEmbedder)(nil)
