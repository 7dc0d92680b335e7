package tickets

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Departments a ticket can be routed to.
const (
	DepartmentHR      = "HR"
	DepartmentIT      = "IT"
	DepartmentFinance = "Finance"
	DepartmentGeneral = "General"
)

// TicketStatus tracks the ticket lifecycle.
type TicketStatus string

const (
	TicketStatusOpen     TicketStatus = "open"
	TicketStatusResolved TicketStatus = "resolved"
)

// Ticket is a user support request routed to a department.
type Ticket struct {
	ID         uuid.UUID    `json:"id"`
	Subject    string       `json:"subject"`
	Body       string       `json:"body"`
	Department string       `json:"department"`
	Status     TicketStatus `json:"status"`
	CreatedBy  string       `json:"createdBy"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

// RoutingRule matches ticket text against comma-separated keywords. Accuracy
// is an online estimate nudged by confirmed outcomes, not a recomputed
// average.
type RoutingRule struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Keywords   string    `json:"keywords"`
	Department string    `json:"department"`
	Priority   int       `json:"priority"`
	IsActive   bool      `json:"isActive"`
	Accuracy   int       `json:"accuracy"`
	CreatedAt  time.Time `json:"createdAt"`
}

// RoutingResult reports where a ticket was routed and why.
type RoutingResult struct {
	Department  string     `json:"department"`
	Confidence  int        `json:"confidence"`
	MatchedRule *uuid.UUID `json:"matchedRule,omitempty"`
	Reasoning   string     `json:"reasoning"`
}

// ReplySuggestion is a tone-varied draft response for an agent.
type ReplySuggestion struct {
	Tone       string  `json:"tone"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// TicketRepository persists tickets.
type TicketRepository interface {
	Create(ctx context.Context, ticket Ticket) error
	Get(ctx context.Context, id uuid.UUID) (Ticket, bool, error)
	List(ctx context.Context, limit int) ([]Ticket, error)
}

// RuleRepository persists routing rules.
type RuleRepository interface {
	ListActive(ctx context.Context) ([]RoutingRule, error)
	Get(ctx context.Context, id uuid.UUID) (RoutingRule, bool, error)
	UpdateAccuracy(ctx context.Context, id uuid.UUID, accuracy int) error
}
