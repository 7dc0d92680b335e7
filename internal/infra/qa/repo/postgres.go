package repo

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	qa "github.com/elchin/deskhelp/internal/domain/qa"
)

// PostgresHistoryRepository persists QA history in Postgres. Source document
// ids are serialized as a JSON array.
type PostgresHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresHistoryRepository constructs the repository.
func NewPostgresHistoryRepository(pool *pgxpool.Pool) *PostgresHistoryRepository {
	return &PostgresHistoryRepository{pool: pool}
}

func (r *PostgresHistoryRepository) Append(ctx context.Context, rec qa.HistoryRecord) error {
	sources, err := json.Marshal(rec.SourceIDs)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO qa_history (id, user_id, question, answer, response_time_ms, confidence, department, sources, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, rec.ID, rec.UserID, rec.Question, rec.Answer, rec.ResponseTimeMs, rec.Confidence, rec.Department, sources, rec.CreatedAt)
	return err
}

func (r *PostgresHistoryRepository) ListByUser(ctx context.Context, userID string, limit int) ([]qa.HistoryRecord, error) {
	query := `
		SELECT id, user_id, question, answer, response_time_ms, confidence, department, sources, created_at
		FROM qa_history
	`
	args := []any{}
	if userID != "" {
		query += ` WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`
		args = append(args, userID, limit)
	} else {
		query += ` ORDER BY created_at DESC LIMIT $1`
		args = append(args, limit)
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []qa.HistoryRecord
	for rows.Next() {
		var rec qa.HistoryRecord
		var sources []byte
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Question, &rec.Answer, &rec.ResponseTimeMs, &rec.Confidence, &rec.Department, &sources, &rec.CreatedAt); err != nil {
			return nil, err
		}
		if len(sources) > 0 {
			var ids []uuid.UUID
			if err := json.Unmarshal(sources, &ids); err == nil {
				rec.SourceIDs = ids
			}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

var _ qa.HistoryRepository = (*PostgresHistoryRepository)(nil)
