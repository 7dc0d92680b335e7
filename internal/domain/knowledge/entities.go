package knowledge

import (
	"time"

	"github.com/google/uuid"
)

// DocumentStatus tracks ingestion progress.
type DocumentStatus string

const (
	DocumentStatusPending    DocumentStatus = "pending"
	DocumentStatusProcessing DocumentStatus = "processing"
	DocumentStatusProcessed  DocumentStatus = "processed"
	DocumentStatusFailed     DocumentStatus = "failed"
)

// Document is the scoping unit for retrieval: questions tagged with a
// department only search chunks belonging to that department's documents.
type Document struct {
	ID            uuid.UUID      `json:"id"`
	Title         string         `json:"title"`
	Department    string         `json:"department"`
	AccessRole    string         `json:"accessRole"`
	Version       int            `json:"version"`
	Status        DocumentStatus `json:"status"`
	FailureReason *string        `json:"failureReason,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// FileObject stores uploaded blob metadata.
type FileObject struct {
	ID         uuid.UUID `json:"id"`
	DocumentID uuid.UUID `json:"documentId"`
	StorageKey string    `json:"storageKey"`
	SizeBytes  int64     `json:"sizeBytes"`
	MimeType   string    `json:"mimeType"`
	ETag       string    `json:"etag"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Chunk is an embedded slice of a document. A chunk whose embedding is empty
// or mismatched never crashes similarity computation; it scores zero.
type Chunk struct {
	ID         uuid.UUID `json:"id"`
	DocumentID uuid.UUID `json:"documentId"`
	ChunkIndex int       `json:"chunkIndex"`
	Content    string    `json:"content"`
	TokenCount int       `json:"tokenCount"`
	Embedding  []float32 `json:"embedding"`
	CreatedAt  time.Time `json:"createdAt"`
}

// DocumentFilter restricts document lookups.
type DocumentFilter struct {
	DocumentIDs []uuid.UUID
	Departments []string
	Statuses    []DocumentStatus
}
