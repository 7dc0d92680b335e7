package repo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	knowledge "github.com/elchin/deskhelp/internal/domain/knowledge"
)

// MemoryDocumentRepository is an in-memory document store used when Postgres
// is not configured.
type MemoryDocumentRepository struct {
	mu   sync.RWMutex
	data map[uuid.UUID]knowledge.Document
}

// NewMemoryDocumentRepository constructs the repository.
func NewMemoryDocumentRepository() *MemoryDocumentRepository {
	return &MemoryDocumentRepository{data: make(map[uuid.UUID]knowledge.Document)}
}

func (r *MemoryDocumentRepository) Create(_ context.Context, doc knowledge.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[doc.ID] = doc
	return nil
}

func (r *MemoryDocumentRepository) UpdateStatus(_ context.Context, docID uuid.UUID, status knowledge.DocumentStatus, failureReason *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.data[docID]
	if !ok {
		return nil
	}
	doc.Status = status
	doc.FailureReason = failureReason
	doc.UpdatedAt = time.Now()
	r.data[docID] = doc
	return nil
}

func (r *MemoryDocumentRepository) Get(_ context.Context, docID uuid.UUID) (knowledge.Document, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.data[docID]
	return doc, ok, nil
}

func (r *MemoryDocumentRepository) List(_ context.Context, filter knowledge.DocumentFilter) ([]knowledge.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]knowledge.Document, 0)
	for _, doc := range r.data {
		if !matchesFilter(doc, filter) {
			continue
		}
		out = append(out, doc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func matchesFilter(doc knowledge.Document, filter knowledge.DocumentFilter) bool {
	if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, doc.Status) {
		return false
	}
	if len(filter.Departments) > 0 && !containsString(filter.Departments, doc.Department) {
		return false
	}
	if len(filter.DocumentIDs) > 0 && !containsID(filter.DocumentIDs, doc.ID) {
		return false
	}
	return true
}

func containsStatus(statuses []knowledge.DocumentStatus, status knowledge.DocumentStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

func containsString(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

var _ knowledge.DocumentRepository = (*MemoryDocumentRepository)(nil)

// MemoryFileRepository stores uploaded file metadata in memory.
type MemoryFileRepository struct {
	mu   sync.RWMutex
	data map[uuid.UUID]knowledge.FileObject
}

// NewMemoryFileRepository constructs the repository.
func NewMemoryFileRepository() *MemoryFileRepository {
	return &MemoryFileRepository{data: make(map[uuid.UUID]knowledge.FileObject)}
}

func (r *MemoryFileRepository) Create(_ context.Context, file knowledge.FileObject) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[file.ID] = file
	return nil
}

func (r *MemoryFileRepository) FindByDocument(_ context.Context, docID uuid.UUID) (knowledge.FileObject, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, file := range r.data {
		if file.DocumentID == docID {
			return file, true, nil
		}
	}
	return knowledge.FileObject{}, false, nil
}

var _ knowledge.FileObjectRepository = (*MemoryFileRepository)(nil)

// MemoryChunkRepository stores chunks in memory.
type MemoryChunkRepository struct {
	mu   sync.RWMutex
	data map[uuid.UUID]knowledge.Chunk
}

// NewMemoryChunkRepository constructs the repository.
func NewMemoryChunkRepository() *MemoryChunkRepository {
	return &MemoryChunkRepository{data: make(map[uuid.UUID]knowledge.Chunk)}
}

func (r *MemoryChunkRepository) InsertBatch(_ context.Context, chunks []knowledge.Chunk) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, chunk := range chunks {
		r.data[chunk.ID] = chunk
	}
	return nil
}

func (r *MemoryChunkRepository) ListByDocuments(_ context.Context, docIDs []uuid.UUID) ([]knowledge.Chunk, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	wanted := make(map[uuid.UUID]struct{}, len(docIDs))
	for _, id := range docIDs {
		wanted[id] = struct{}{}
	}
	out := make([]knowledge.Chunk, 0)
	for _, chunk := range r.data {
		if _, ok := wanted[chunk.DocumentID]; ok {
			out = append(out, chunk)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DocumentID != out[j].DocumentID {
			return out[i].DocumentID.String() < out[j].DocumentID.String()
		}
		return out[i].ChunkIndex < out[j].ChunkIndex
	})
	return out, nil
}

func (r *MemoryChunkRepository) DeleteByDocument(_ context.Context, docID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, chunk := range r.data {
		if chunk.DocumentID == docID {
			delete(r.data, id)
		}
	}
	return nil
}

var _ knowledge.ChunkRepository = (*MemoryChunkRepository)(nil)
