package knowledge

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/elchin/deskhelp/pkg/errors"
)

// Config drives ingestion limits.
type Config struct {
	MaxFileBytes int64
	VectorDim    int
}

// Service owns the document ingestion pipeline: store blob, chunk, embed,
// persist chunks.
type Service struct {
	cfg      Config
	docs     DocumentRepository
	files    FileObjectRepository
	chunks   ChunkRepository
	storage  ObjectStorage
	embedder Embedder
	chunker  Chunker
	queue    JobQueue
	logger   *slog.Logger
}

// NewService constructs a Service.
func NewService(cfg Config, docs DocumentRepository, files FileObjectRepository, chunks ChunkRepository, storage ObjectStorage, embedder Embedder, chunker Chunker, queue JobQueue, logger *slog.Logger) *Service {
	return &Service{
		cfg:      cfg,
		docs:     docs,
		files:    files,
		chunks:   chunks,
		storage:  storage,
		embedder: embedder,
		chunker:  chunker,
		queue:    queue,
		logger:   logger.With("component", "knowledge.service"),
	}
}

// UploadRequest captures a multipart submission.
type UploadRequest struct {
	Filename   string
	Title      string
	Department string
	AccessRole string
	MimeType   string
	Content    []byte
}

// UploadResponse reports ingestion results.
type UploadResponse struct {
	DocumentID    uuid.UUID `json:"documentId"`
	ChunksCreated int       `json:"chunksCreated"`
	TotalTokens   int       `json:"totalTokens"`
}

// Upload persists the document, stores the blob, and runs the chunk+embed
// pipeline synchronously so the caller learns how many chunks were created.
func (s *Service) Upload(ctx context.Context, req UploadRequest) (UploadResponse, error) {
	if len(req.Content) == 0 {
		return UploadResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "file content cannot be empty", nil)
	}
	if s.cfg.MaxFileBytes > 0 && int64(len(req.Content)) > s.cfg.MaxFileBytes {
		return UploadResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "file exceeds maximum allowed size", nil)
	}
	filename := strings.TrimSpace(req.Filename)
	if filename == "" {
		filename = "document.txt"
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = filename
	}
	now := time.Now()
	doc := Document{
		ID:         uuid.New(),
		Title:      title,
		Department: normalizeDepartment(req.Department),
		AccessRole: strings.TrimSpace(req.AccessRole),
		Version:    1,
		Status:     DocumentStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.docs.Create(ctx, doc); err != nil {
		return UploadResponse{}, apperrors.Wrap(apperrors.CodeStorageError, "failed to persist document", err)
	}

	mime := req.MimeType
	if mime == "" {
		mime = http.DetectContentType(req.Content)
	}
	storageKey := fmt.Sprintf("documents/%s/%s", doc.ID.String(), sanitizeFilename(filename))
	obj, err := s.storage.Put(ctx, storageKey, req.Content, mime)
	if err != nil {
		return UploadResponse{}, apperrors.Wrap(apperrors.CodeStorageError, "failed to store file", err)
	}
	file := FileObject{
		ID:         uuid.New(),
		DocumentID: doc.ID,
		StorageKey: obj.Key,
		SizeBytes:  obj.Size,
		MimeType:   obj.MimeType,
		ETag:       obj.ETag,
		CreatedAt:  now,
	}
	if err := s.files.Create(ctx, file); err != nil {
		return UploadResponse{}, apperrors.Wrap(apperrors.CodeStorageError, "failed to persist file metadata", err)
	}

	stats, err := s.ProcessDocument(ctx, doc.ID)
	if err != nil {
		return UploadResponse{}, err
	}
	return UploadResponse{
		DocumentID:    doc.ID,
		ChunksCreated: stats.ChunksCreated,
		TotalTokens:   stats.TotalTokens,
	}, nil
}

// IngestStats summarizes a processing run.
type IngestStats struct {
	ChunksCreated int
	TotalTokens   int
}

// ProcessDocument extracts, chunks, embeds, and stores chunks. It is safe to
// re-run: existing chunks are replaced.
func (s *Service) ProcessDocument(ctx context.Context, docID uuid.UUID) (IngestStats, error) {
	s.logger.Info("process_document start", "document_id", docID)
	doc, found, err := s.docs.Get(ctx, docID)
	if err != nil {
		return IngestStats{}, apperrors.Wrap(apperrors.CodeStorageError, "failed to load document", err)
	}
	if !found {
		return IngestStats{}, apperrors.Wrap(apperrors.CodeNotFound, "document not found", nil)
	}
	if doc.Status == DocumentStatusProcessing {
		return IngestStats{}, apperrors.Wrap(apperrors.CodeIngestionError, "document is already being processed", nil)
	}
	if err := s.docs.UpdateStatus(ctx, docID, DocumentStatusProcessing, nil); err != nil {
		return IngestStats{}, apperrors.Wrap(apperrors.CodeStorageError, "failed to update status", err)
	}

	file, found, err := s.files.FindByDocument(ctx, docID)
	if err != nil {
		return IngestStats{}, apperrors.Wrap(apperrors.CodeStorageError, "failed to load file metadata", err)
	}
	if !found {
		reason := "file not found for document"
		_ = s.docs.UpdateStatus(ctx, docID, DocumentStatusFailed, &reason)
		return IngestStats{}, apperrors.Wrap(apperrors.CodeNotFound, reason, nil)
	}

	reader, err := s.storage.Get(ctx, file.StorageKey)
	if err != nil {
		_ = s.docs.UpdateStatus(ctx, docID, DocumentStatusFailed, ptrString("failed to read storage"))
		return IngestStats{}, apperrors.Wrap(apperrors.CodeStorageError, "failed to fetch stored file", err)
	}
	defer reader.Close()
	raw, err := io.ReadAll(reader)
	if err != nil {
		_ = s.docs.UpdateStatus(ctx, docID, DocumentStatusFailed, ptrString("failed to read storage"))
		return IngestStats{}, apperrors.Wrap(apperrors.CodeStorageError, "failed to read stored file", err)
	}

	candidates := s.chunker.Chunk(string(raw))
	if len(candidates) == 0 {
		reason := "no content to process"
		_ = s.docs.UpdateStatus(ctx, docID, DocumentStatusFailed, &reason)
		return IngestStats{}, apperrors.Wrap(apperrors.CodeInvalidInput, reason, nil)
	}

	texts := make([]string, 0, len(candidates))
	for _, c := range candidates {
		texts = append(texts, c.Content)
	}
	embeddings, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		_ = s.docs.UpdateStatus(ctx, docID, DocumentStatusFailed, ptrString("embedding failed"))
		return IngestStats{}, apperrors.Wrap(apperrors.CodeEmbeddingError, "failed to embed chunks", err)
	}
	if len(embeddings) != len(candidates) {
		_ = s.docs.UpdateStatus(ctx, docID, DocumentStatusFailed, ptrString("embedding count mismatch"))
		return IngestStats{}, apperrors.Wrap(apperrors.CodeEmbeddingError, "embedding count mismatch", nil)
	}

	now := time.Now()
	totalTokens := 0
	chunks := make([]Chunk, 0, len(candidates))
	for i, c := range candidates {
		embedding := make([]float32, len(embeddings[i]))
		copy(embedding, embeddings[i])
		totalTokens += c.TokenCount
		chunks = append(chunks, Chunk{
			ID:         uuid.New(),
			DocumentID: docID,
			ChunkIndex: c.Index,
			Content:    c.Content,
			TokenCount: c.TokenCount,
			Embedding:  embedding,
			CreatedAt:  now,
		})
	}
	if err := s.chunks.DeleteByDocument(ctx, docID); err != nil {
		s.logger.Warn("failed to clear previous chunks", "document_id", docID, "error", err)
	}
	if err := s.chunks.InsertBatch(ctx, chunks); err != nil {
		_ = s.docs.UpdateStatus(ctx, docID, DocumentStatusFailed, ptrString("persisting chunks failed"))
		return IngestStats{}, apperrors.Wrap(apperrors.CodeStorageError, "failed to persist chunks", err)
	}
	if err := s.docs.UpdateStatus(ctx, docID, DocumentStatusProcessed, nil); err != nil {
		return IngestStats{}, apperrors.Wrap(apperrors.CodeStorageError, "failed to finalize document", err)
	}
	s.logger.Info("process_document complete", "document_id", docID, "chunks", len(chunks), "tokens", totalTokens)
	return IngestStats{ChunksCreated: len(chunks), TotalTokens: totalTokens}, nil
}

// RequestReprocess enqueues a background re-run of the pipeline, used after a
// provider outage left a document failed or degraded.
func (s *Service) RequestReprocess(ctx context.Context, docID uuid.UUID) error {
	_, found, err := s.docs.Get(ctx, docID)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeStorageError, "failed to load document", err)
	}
	if !found {
		return apperrors.Wrap(apperrors.CodeNotFound, "document not found", nil)
	}
	if s.queue == nil {
		_, err := s.ProcessDocument(ctx, docID)
		return err
	}
	payload := map[string]any{"document_id": docID.String()}
	if err := s.queue.Enqueue(ctx, "process_document", payload); err != nil {
		return apperrors.Wrap(apperrors.CodeIngestionError, "failed to enqueue reprocess job", err)
	}
	return nil
}

// HandleJob dispatches queue jobs owned by this domain.
func (s *Service) HandleJob(ctx context.Context, name string, payload map[string]any) {
	switch name {
	case "process_document":
		raw, _ := payload["document_id"].(string)
		docID, err := uuid.Parse(raw)
		if err != nil {
			s.logger.Warn("process_document job with invalid document id", "raw", raw)
			return
		}
		if _, err := s.ProcessDocument(ctx, docID); err != nil {
			s.logger.Warn("background processing failed", "document_id", docID, "error", err)
		}
	default:
		s.logger.Warn("unknown job", "name", name)
	}
}

// ListDocuments returns documents matching the filter.
func (s *Service) ListDocuments(ctx context.Context, filter DocumentFilter) ([]Document, error) {
	return s.docs.List(ctx, filter)
}

// GetDocument fetches a single document.
func (s *Service) GetDocument(ctx context.Context, docID uuid.UUID) (Document, error) {
	doc, found, err := s.docs.Get(ctx, docID)
	if err != nil {
		return Document{}, apperrors.Wrap(apperrors.CodeStorageError, "failed to fetch document", err)
	}
	if !found {
		return Document{}, apperrors.Wrap(apperrors.CodeNotFound, "document not found", nil)
	}
	return doc, nil
}

func normalizeDepartment(dept string) string {
	return strings.ToLower(strings.TrimSpace(dept))
}

func sanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, " ", "_")
	if name == "" {
		return "file"
	}
	return name
}

func ptrString(val string) *string {
	return &val
}
