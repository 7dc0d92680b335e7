package qa

import (
	"math"
	"sort"

	"github.com/elchin/deskhelp/internal/domain/knowledge"
)

// CosineSimilarity returns dot(a,b)/(|a|*|b|). Mismatched lengths or a zero
// magnitude vector yield 0, never NaN.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

// Rank scores every chunk against the query vector, keeps those at or above
// threshold, sorts descending, and truncates to limit. An empty result is the
// designed trigger for the keyword fallback, not an error.
func Rank(query []float32, chunks []knowledge.Chunk, titles map[string]string, limit int, threshold float64) []ScoredChunk {
	if limit <= 0 {
		limit = 5
	}
	scored := make([]ScoredChunk, 0, len(chunks))
	for _, chunk := range chunks {
		sim := CosineSimilarity(query, chunk.Embedding)
		if math.IsNaN(sim) {
			sim = 0
		}
		if sim < threshold {
			continue
		}
		scored = append(scored, ScoredChunk{
			Chunk:         chunk,
			DocumentTitle: titles[chunk.DocumentID.String()],
			Similarity:    sim,
		})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Similarity != scored[j].Similarity {
			return scored[i].Similarity > scored[j].Similarity
		}
		// deterministic tie-break
		return scored[i].Chunk.ID.String() < scored[j].Chunk.ID.String()
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}
