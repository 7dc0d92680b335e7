package repo

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	knowledge "github.com/elchin/deskhelp/internal/domain/knowledge"
)

// PostgresDocumentRepository persists documents in Postgres.
type PostgresDocumentRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresDocumentRepository constructs the repository.
func NewPostgresDocumentRepository(pool *pgxpool.Pool) *PostgresDocumentRepository {
	return &PostgresDocumentRepository{pool: pool}
}

func (r *PostgresDocumentRepository) Create(ctx context.Context, doc knowledge.Document) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO documents (id, title, department, access_role, version, status, failure_reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, doc.ID, doc.Title, doc.Department, doc.AccessRole, doc.Version, doc.Status, doc.FailureReason, doc.CreatedAt, doc.UpdatedAt)
	return err
}

func (r *PostgresDocumentRepository) UpdateStatus(ctx context.Context, docID uuid.UUID, status knowledge.DocumentStatus, failureReason *string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE documents
		SET status = $1, failure_reason = $2, updated_at = NOW()
		WHERE id = $3
	`, status, failureReason, docID)
	return err
}

func (r *PostgresDocumentRepository) Get(ctx context.Context, docID uuid.UUID) (knowledge.Document, bool, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, title, department, access_role, version, status, failure_reason, created_at, updated_at
		FROM documents
		WHERE id = $1
		LIMIT 1
	`, docID)
	doc, err := scanDocument(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return knowledge.Document{}, false, nil
		}
		return knowledge.Document{}, false, err
	}
	return doc, true, nil
}

func (r *PostgresDocumentRepository) List(ctx context.Context, filter knowledge.DocumentFilter) ([]knowledge.Document, error) {
	query := `
		SELECT id, title, department, access_role, version, status, failure_reason, created_at, updated_at
		FROM documents
		WHERE 1=1
	`
	args := []any{}
	argPos := 1
	if len(filter.Statuses) > 0 {
		query += ` AND status = ANY($` + strconv.Itoa(argPos) + `)`
		args = append(args, filter.Statuses)
		argPos++
	}
	if len(filter.Departments) > 0 {
		query += ` AND department = ANY($` + strconv.Itoa(argPos) + `)`
		args = append(args, filter.Departments)
		argPos++
	}
	if len(filter.DocumentIDs) > 0 {
		query += ` AND id = ANY($` + strconv.Itoa(argPos) + `)`
		args = append(args, filter.DocumentIDs)
		argPos++
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []knowledge.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (knowledge.Document, error) {
	var doc knowledge.Document
	var failureReason *string
	if err := row.Scan(&doc.ID, &doc.Title, &doc.Department, &doc.AccessRole, &doc.Version, &doc.Status, &failureReason, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		return knowledge.Document{}, err
	}
	doc.FailureReason = failureReason
	return doc, nil
}

var _ knowledge.DocumentRepository = (*PostgresDocumentRepository)(nil)

// PostgresFileRepository persists uploaded file metadata.
type PostgresFileRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresFileRepository constructs the repository.
func NewPostgresFileRepository(pool *pgxpool.Pool) *PostgresFileRepository {
	return &PostgresFileRepository{pool: pool}
}

func (r *PostgresFileRepository) Create(ctx context.Context, file knowledge.FileObject) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO file_objects (id, document_id, storage_key, size_bytes, mime_type, etag, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, file.ID, file.DocumentID, file.StorageKey, file.SizeBytes, file.MimeType, file.ETag, file.CreatedAt)
	return err
}

func (r *PostgresFileRepository) FindByDocument(ctx context.Context, docID uuid.UUID) (knowledge.FileObject, bool, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, document_id, storage_key, size_bytes, mime_type, etag, created_at
		FROM file_objects
		WHERE document_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, docID)
	var file knowledge.FileObject
	if err := row.Scan(&file.ID, &file.DocumentID, &file.StorageKey, &file.SizeBytes, &file.MimeType, &file.ETag, &file.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return knowledge.FileObject{}, false, nil
		}
		return knowledge.FileObject{}, false, err
	}
	return file, true, nil
}

var _ knowledge.FileObjectRepository = (*PostgresFileRepository)(nil)

// PostgresChunkRepository stores embedded chunks with a pgvector column.
type PostgresChunkRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresChunkRepository constructs the repository.
func NewPostgresChunkRepository(pool *pgxpool.Pool) *PostgresChunkRepository {
	return &PostgresChunkRepository{pool: pool}
}

func (r *PostgresChunkRepository) InsertBatch(ctx context.Context, chunks []knowledge.Chunk) error {
	batch := &pgx.Batch{}
	for _, chunk := range chunks {
		batch.Queue(`
			INSERT INTO document_chunks (id, document_id, chunk_index, content, token_count, embedding, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, chunk.ID, chunk.DocumentID, chunk.ChunkIndex, chunk.Content, chunk.TokenCount, pgvector.NewVector(chunk.Embedding), chunk.CreatedAt)
	}
	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()
	for range chunks {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return nil
}

func (r *PostgresChunkRepository) ListByDocuments(ctx context.Context, docIDs []uuid.UUID) ([]knowledge.Chunk, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, document_id, chunk_index, content, token_count, embedding, created_at
		FROM document_chunks
		WHERE document_id = ANY($1)
		ORDER BY document_id, chunk_index
	`, docIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []knowledge.Chunk
	for rows.Next() {
		var chunk knowledge.Chunk
		var embedding pgvector.Vector
		if err := rows.Scan(&chunk.ID, &chunk.DocumentID, &chunk.ChunkIndex, &chunk.Content, &chunk.TokenCount, &embedding, &chunk.CreatedAt); err != nil {
			return nil, err
		}
		chunk.Embedding = embedding.Slice()
		chunks = append(chunks, chunk)
	}
	return chunks, rows.Err()
}

func (r *PostgresChunkRepository) DeleteByDocument(ctx context.Context, docID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM document_chunks WHERE document_id = $1`, docID)
	return err
}

var _ knowledge.ChunkRepository = (*PostgresChunkRepository)(nil)
