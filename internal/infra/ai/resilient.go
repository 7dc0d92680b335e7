package ai

import (
	"context"
	"hash/fnv"
	"log/slog"

	knowledge "github.com/elchin/deskhelp/internal/domain/knowledge"
)

// ResilientEmbedder wraps a primary embedder and degrades to deterministic
// pseudo-random vectors when the provider is unreachable. The degraded
// vectors keep the dimension and cardinality downstream code expects but
// carry no semantic signal, so similarity stays below the QA threshold and
// the keyword fallback takes over. Every call retries the primary fresh, so
// the system recovers on its own once the provider returns.
type ResilientEmbedder struct {
	primary knowledge.Embedder
	dim     int
	logger  *slog.Logger
}

// NewResilientEmbedder constructs the wrapper. A nil primary means the
// provider is not configured at all; degradation is then permanent.
func NewResilientEmbedder(primary knowledge.Embedder, dim int, logger *slog.Logger) *ResilientEmbedder {
	if dim <= 0 {
		dim = 1536
	}
	return &ResilientEmbedder{
		primary: primary,
		dim:     dim,
		logger:  logger.With("component", "ai.embedder.resilient"),
	}
}

// Embed attempts the primary provider and falls back to hash-derived vectors
// on any error. It never fails and never returns a zero vector.
func (e *ResilientEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if e.primary != nil {
		vectors, err := e.primary.Embed(ctx, texts)
		if err == nil && len(vectors) == len(texts) {
			return vectors, nil
		}
		e.logger.Warn("embedding provider unavailable, using degraded vectors", "error", err, "texts", len(texts))
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = degradedVector(text, e.dim)
	}
	return vectors, nil
}

// degradedVector hashes the text into small pseudo-random values in
// [-0.1, 0.1] excluding zero. The signs are balanced so the cosine similarity
// of two unrelated degraded vectors hovers near zero and stays under the
// semantic threshold; an all-positive vector would score ~0.75 against any
// other and produce spurious semantic hits.
func degradedVector(text string, dim int) []float32 {
	vector := make([]float32, dim)
	hash := fnv.New64a()
	_, _ = hash.Write([]byte(text))
	seed := hash.Sum64()
	for j := 0; j < dim; j++ {
		seed = seed*1099511628211 + 1469598103934665603
		value := float32(seed%997+1) / 9970.0
		if seed&1 == 0 {
			value = -value
		}
		vector[j] = value
	}
	return vector
}

var _ knowledge.Embedder = (*ResilientEmbedder)(nil)
