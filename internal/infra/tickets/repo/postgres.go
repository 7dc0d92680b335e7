package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	tickets "github.com/elchin/deskhelp/internal/domain/tickets"
)

// PostgresTicketRepository persists tickets in Postgres.
type PostgresTicketRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresTicketRepository constructs the repository.
func NewPostgresTicketRepository(pool *pgxpool.Pool) *PostgresTicketRepository {
	return &PostgresTicketRepository{pool: pool}
}

func (r *PostgresTicketRepository) Create(ctx context.Context, ticket tickets.Ticket) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO tickets (id, subject, body, department, status, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, ticket.ID, ticket.Subject, ticket.Body, ticket.Department, ticket.Status, ticket.CreatedBy, ticket.CreatedAt, ticket.UpdatedAt)
	return err
}

func (r *PostgresTicketRepository) Get(ctx context.Context, id uuid.UUID) (tickets.Ticket, bool, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, subject, body, department, status, created_by, created_at, updated_at
		FROM tickets
		WHERE id = $1
		LIMIT 1
	`, id)
	var ticket tickets.Ticket
	if err := row.Scan(&ticket.ID, &ticket.Subject, &ticket.Body, &ticket.Department, &ticket.Status, &ticket.CreatedBy, &ticket.CreatedAt, &ticket.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return tickets.Ticket{}, false, nil
		}
		return tickets.Ticket{}, false, err
	}
	return ticket, true, nil
}

func (r *PostgresTicketRepository) List(ctx context.Context, limit int) ([]tickets.Ticket, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, subject, body, department, status, created_by, created_at, updated_at
		FROM tickets
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []tickets.Ticket
	for rows.Next() {
		var ticket tickets.Ticket
		if err := rows.Scan(&ticket.ID, &ticket.Subject, &ticket.Body, &ticket.Department, &ticket.Status, &ticket.CreatedBy, &ticket.CreatedAt, &ticket.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, ticket)
	}
	return out, rows.Err()
}

var _ tickets.TicketRepository = (*PostgresTicketRepository)(nil)

// PostgresRuleRepository persists routing rules in Postgres.
type PostgresRuleRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRuleRepository constructs the repository.
func NewPostgresRuleRepository(pool *pgxpool.Pool) *PostgresRuleRepository {
	return &PostgresRuleRepository{pool: pool}
}

func (r *PostgresRuleRepository) ListActive(ctx context.Context) ([]tickets.RoutingRule, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, keywords, department, priority, is_active, accuracy, created_at
		FROM routing_rules
		WHERE is_active = TRUE
		ORDER BY priority DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []tickets.RoutingRule
	for rows.Next() {
		var rule tickets.RoutingRule
		if err := rows.Scan(&rule.ID, &rule.Name, &rule.Keywords, &rule.Department, &rule.Priority, &rule.IsActive, &rule.Accuracy, &rule.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rule)
	}
	return out, rows.Err()
}

func (r *PostgresRuleRepository) Get(ctx context.Context, id uuid.UUID) (tickets.RoutingRule, bool, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, keywords, department, priority, is_active, accuracy, created_at
		FROM routing_rules
		WHERE id = $1
		LIMIT 1
	`, id)
	var rule tickets.RoutingRule
	if err := row.Scan(&rule.ID, &rule.Name, &rule.Keywords, &rule.Department, &rule.Priority, &rule.IsActive, &rule.Accuracy, &rule.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return tickets.RoutingRule{}, false, nil
		}
		return tickets.RoutingRule{}, false, err
	}
	return rule, true, nil
}

func (r *PostgresRuleRepository) UpdateAccuracy(ctx context.Context, id uuid.UUID, accuracy int) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE routing_rules
		SET accuracy = $1
		WHERE id = $2
	`, accuracy, id)
	return err
}

var _ tickets.RuleRepository = (*PostgresRuleRepository)(nil)
