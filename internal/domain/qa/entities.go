package qa

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/elchin/deskhelp/internal/domain/knowledge"
)

// AskRequest contains the question payload.
type AskRequest struct {
	Question   string
	Department string
	UserID     string
}

// Source captures retrieval metadata returned to the client.
type Source struct {
	DocumentID    uuid.UUID `json:"documentId"`
	DocumentTitle string    `json:"documentTitle"`
	ChunkExcerpt  string    `json:"chunkExcerpt"`
	Similarity    float64   `json:"similarity"`
}

// Result is the terminal output of the fallback ladder. Every path through
// the orchestrator produces one; confidence is always within [0,100].
type Result struct {
	Answer         string   `json:"answer"`
	Confidence     int      `json:"confidence"`
	Sources        []Source `json:"sources"`
	ResponseTimeMs int64    `json:"responseTime"`
}

// HistoryRecord is the persisted form of a Result.
type HistoryRecord struct {
	ID             uuid.UUID   `json:"id"`
	UserID         string      `json:"userId"`
	Question       string      `json:"question"`
	Answer         string      `json:"answer"`
	ResponseTimeMs int64       `json:"responseTime"`
	Confidence     int         `json:"confidence"`
	Department     string      `json:"department"`
	SourceIDs      []uuid.UUID `json:"sources"`
	CreatedAt      time.Time   `json:"createdAt"`
}

// ScoredChunk pairs a chunk with its relevance for the current question. The
// same shape carries true cosine similarities and floored keyword scores, so
// every rung of the ladder feeds the composer identically.
type ScoredChunk struct {
	Chunk         knowledge.Chunk
	DocumentTitle string
	Similarity    float64
}

// ChatMessage mirrors a simplified chat payload.
type ChatMessage struct {
	Role    string
	Content string
}

// ChatCompleter generates answers for a question and context.
type ChatCompleter interface {
	Chat(ctx context.Context, messages []ChatMessage) (string, error)
}

// HistoryRepository persists question/answer exchanges.
type HistoryRepository interface {
	Append(ctx context.Context, rec HistoryRecord) error
	ListByUser(ctx context.Context, userID string, limit int) ([]HistoryRecord, error)
}
