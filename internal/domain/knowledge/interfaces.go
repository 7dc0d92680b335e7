package knowledge

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// ObjectStorage abstracts blob storage (MinIO/S3/R2/local).
type ObjectStorage interface {
	Put(ctx context.Context, key string, data []byte, mimeType string) (StoredObject, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// StoredObject captures persisted blob metadata.
type StoredObject struct {
	Key      string
	Size     int64
	MimeType string
	ETag     string
}

// Embedder produces one fixed-length vector per input text, order preserving.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Chunker splits raw text into bounded, overlapping segments.
type Chunker interface {
	Chunk(text string) []ChunkCandidate
}

// ChunkCandidate is produced by the chunker before embedding.
type ChunkCandidate struct {
	Index      int
	Content    string
	TokenCount int
}

// DocumentRepository persists document metadata.
type DocumentRepository interface {
	Create(ctx context.Context, doc Document) error
	UpdateStatus(ctx context.Context, docID uuid.UUID, status DocumentStatus, failureReason *string) error
	Get(ctx context.Context, docID uuid.UUID) (Document, bool, error)
	List(ctx context.Context, filter DocumentFilter) ([]Document, error)
}

// FileObjectRepository persists uploaded file metadata.
type FileObjectRepository interface {
	Create(ctx context.Context, file FileObject) error
	FindByDocument(ctx context.Context, docID uuid.UUID) (FileObject, bool, error)
}

// ChunkRepository stores embedded chunks.
type ChunkRepository interface {
	InsertBatch(ctx context.Context, chunks []Chunk) error
	ListByDocuments(ctx context.Context, docIDs []uuid.UUID) ([]Chunk, error)
	DeleteByDocument(ctx context.Context, docID uuid.UUID) error
}

// JobQueue enqueues background processing tasks.
type JobQueue interface {
	Enqueue(ctx context.Context, name string, payload any) error
}
