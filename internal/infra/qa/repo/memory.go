package repo

import (
	"context"
	"sort"
	"sync"

	qa "github.com/elchin/deskhelp/internal/domain/qa"
)

// MemoryHistoryRepository keeps QA history in memory.
type MemoryHistoryRepository struct {
	mu      sync.RWMutex
	records []qa.HistoryRecord
}

// NewMemoryHistoryRepository constructs the repository.
func NewMemoryHistoryRepository() *MemoryHistoryRepository {
	return &MemoryHistoryRepository{}
}

func (r *MemoryHistoryRepository) Append(_ context.Context, rec qa.HistoryRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return nil
}

func (r *MemoryHistoryRepository) ListByUser(_ context.Context, userID string, limit int) ([]qa.HistoryRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]qa.HistoryRecord, 0, limit)
	for _, rec := range r.records {
		if userID != "" && rec.UserID != userID {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var _ qa.HistoryRepository = (*MemoryHistoryRepository)(nil)
