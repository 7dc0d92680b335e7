package repo

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	tickets "github.com/elchin/deskhelp/internal/domain/tickets"
)

// MemoryTicketRepository keeps tickets in memory.
type MemoryTicketRepository struct {
	mu   sync.RWMutex
	data map[uuid.UUID]tickets.Ticket
}

// NewMemoryTicketRepository constructs the repository.
func NewMemoryTicketRepository() *MemoryTicketRepository {
	return &MemoryTicketRepository{data: make(map[uuid.UUID]tickets.Ticket)}
}

func (r *MemoryTicketRepository) Create(_ context.Context, ticket tickets.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[ticket.ID] = ticket
	return nil
}

func (r *MemoryTicketRepository) Get(_ context.Context, id uuid.UUID) (tickets.Ticket, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ticket, ok := r.data[id]
	return ticket, ok, nil
}

func (r *MemoryTicketRepository) List(_ context.Context, limit int) ([]tickets.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]tickets.Ticket, 0, len(r.data))
	for _, ticket := range r.data {
		out = append(out, ticket)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var _ tickets.TicketRepository = (*MemoryTicketRepository)(nil)

// MemoryRuleRepository keeps routing rules in memory. Useful in tests and
// when running without Postgres; rules can be seeded at construction.
type MemoryRuleRepository struct {
	mu   sync.RWMutex
	data map[uuid.UUID]tickets.RoutingRule
}

// NewMemoryRuleRepository constructs the repository with optional seed rules.
func NewMemoryRuleRepository(seed ...tickets.RoutingRule) *MemoryRuleRepository {
	repo := &MemoryRuleRepository{data: make(map[uuid.UUID]tickets.RoutingRule)}
	for _, rule := range seed {
		if rule.ID == uuid.Nil {
			rule.ID = uuid.New()
		}
		repo.data[rule.ID] = rule
	}
	return repo
}

func (r *MemoryRuleRepository) ListActive(_ context.Context) ([]tickets.RoutingRule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]tickets.RoutingRule, 0, len(r.data))
	for _, rule := range r.data {
		if rule.IsActive {
			out = append(out, rule)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Priority > out[j].Priority })
	return out, nil
}

func (r *MemoryRuleRepository) Get(_ context.Context, id uuid.UUID) (tickets.RoutingRule, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rule, ok := r.data[id]
	return rule, ok, nil
}

func (r *MemoryRuleRepository) UpdateAccuracy(_ context.Context, id uuid.UUID, accuracy int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rule, ok := r.data[id]
	if !ok {
		return nil
	}
	rule.Accuracy = accuracy
	r.data[id] = rule
	return nil
}

var _ tickets.RuleRepository = (*MemoryRuleRepository)(nil)
