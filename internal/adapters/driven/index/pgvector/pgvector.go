// Package pgvector implements the vector index port on PostgreSQL with
// the pgvector extension.
package pgvector

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgv "github.com/pgvector/pgvector-go"

	"github.com/juralis/juralis-core/internal/core/domain"
	"github.com/juralis/juralis-core/internal/core/ports/driven"
)

// Ensure Index implements VectorIndex
var _ driven.VectorIndex = (*Index)(nil)

// Index stores one row per document with its embedding. Upserts replace
// the row in place, so re-ingestion never duplicates.
type Index struct {
	pool       *pgxpool.Pool
	dimensions int
}

// Config holds PostgreSQL connection settings.
type Config struct {
	ConnString string
	Dimensions int
}

// New connects to PostgreSQL and verifies the connection.
func New(ctx context.Context, cfg Config) (*Index, error) {
	pool, err := pgxpool.New(ctx, cfg.ConnString)
	if err != nil {
		return nil, fmt.Errorf("pgvector: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pgvector: ping: %w", err)
	}
	return &Index{pool: pool, dimensions: cfg.Dimensions}, nil
}

// Init creates the extension, table and indexes. All statements are
// IF NOT EXISTS so concurrent initialization is safe.
func (x *Index) Init(ctx context.Context) error {
	if x.dimensions <= 0 {
		return fmt.Errorf("pgvector: invalid dimensions %d", x.dimensions)
	}
	query := fmt.Sprintf(`
	CREATE EXTENSION IF NOT EXISTS vector;

	CREATE TABLE IF NOT EXISTS legal_documents (
		id        TEXT PRIMARY KEY,
		title     TEXT NOT NULL,
		content   TEXT NOT NULL,
		doc_type  TEXT,
		doc_date  TEXT,
		url       TEXT,
		metadata  JSONB NOT NULL DEFAULT '{}',
		embedding vector(%d)
	);

	CREATE INDEX IF NOT EXISTS idx_legal_documents_embedding
		ON legal_documents USING ivfflat (embedding vector_cosine_ops)
		WITH (lists = 100);

	CREATE INDEX IF NOT EXISTS idx_legal_documents_type ON legal_documents(doc_type);
	CREATE INDEX IF NOT EXISTS idx_legal_documents_date ON legal_documents(doc_date);
	`, x.dimensions)

	if _, err := x.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("pgvector: init schema: %w", err)
	}
	return nil
}

// Upsert writes one document row keyed by its ID.
func (x *Index) Upsert(ctx context.Context, point *domain.IndexedPoint) error {
	if err := point.Document.Validate(); err != nil {
		return fmt.Errorf("pgvector: %w", err)
	}
	d := point.Document
	query := `
	INSERT INTO legal_documents (id, title, content, doc_type, doc_date, url, metadata, embedding)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (id) DO UPDATE SET
		title     = EXCLUDED.title,
		content   = EXCLUDED.content,
		doc_type  = EXCLUDED.doc_type,
		doc_date  = EXCLUDED.doc_date,
		url       = EXCLUDED.url,
		metadata  = EXCLUDED.metadata,
		embedding = EXCLUDED.embedding
	`
	_, err := x.pool.Exec(ctx, query,
		d.ID, d.Title, d.Content, d.Type, d.Date, d.URL, d.Metadata, pgv.NewVector(point.Vector))
	if err != nil {
		return fmt.Errorf("pgvector: upsert %s: %w", d.ID, err)
	}
	return nil
}

// buildSearchQuery assembles the similarity query with all filters
// pushed into the WHERE clause as positional parameters.
func buildSearchQuery(vector []float32, opts domain.SearchOptions) (string, []any) {
	var (
		where []string
		args  []any
	)
	args = append(args, pgv.NewVector(vector))

	addFilter := func(clause string, value any) {
		args = append(args, value)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}

	if opts.Type != "" {
		addFilter("doc_type = $%d", opts.Type)
	}
	if opts.Source != "" {
		addFilter("metadata->>'source' = $%d", opts.Source)
	}
	if opts.DateStart != "" {
		addFilter("doc_date >= $%d", opts.DateStart)
	}
	if opts.DateEnd != "" {
		addFilter("doc_date <= $%d", opts.DateEnd)
	}
	if len(opts.Domains) > 0 {
		addFilter("metadata->'domains' ?| $%d", opts.Domains)
	}

	query := `
	SELECT id, title, content, doc_type, doc_date, url, metadata,
	       1 - (embedding <=> $1) AS score
	FROM legal_documents
	WHERE embedding IS NOT NULL`
	if len(where) > 0 {
		query += " AND " + strings.Join(where, " AND ")
	}
	args = append(args, opts.Limit)
	query += fmt.Sprintf(" ORDER BY score DESC, id ASC LIMIT $%d", len(args))

	return query, args
}

// Search ranks rows by cosine similarity with all filters pushed into
// the WHERE clause. Ordering is descending score, ascending ID.
func (x *Index) Search(ctx context.Context, vector []float32, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	query, args := buildSearchQuery(vector, opts.Normalize())

	rows, err := x.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgvector: search: %w", err)
	}
	defer rows.Close()

	var results []domain.SearchResult
	for rows.Next() {
		var (
			doc   domain.Document
			score float64
		)
		if err := rows.Scan(&doc.ID, &doc.Title, &doc.Content, &doc.Type, &doc.Date, &doc.URL, &doc.Metadata, &score); err != nil {
			return nil, fmt.Errorf("pgvector: scan: %w", err)
		}
		results = append(results, domain.SearchResult{Document: &doc, Score: score})
	}
	return results, rows.Err()
}

// Get retrieves one document by its ID.
func (x *Index) Get(ctx context.Context, id string) (*domain.Document, error) {
	query := `
	SELECT id, title, content, doc_type, doc_date, url, metadata
	FROM legal_documents WHERE id = $1`

	var doc domain.Document
	err := x.pool.QueryRow(ctx, query, id).Scan(
		&doc.ID, &doc.Title, &doc.Content, &doc.Type, &doc.Date, &doc.URL, &doc.Metadata)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pgvector: get %s: %w", id, err)
	}
	return &doc, nil
}

// Ping checks the backend is reachable.
func (x *Index) Ping(ctx context.Context) error {
	return x.pool.Ping(ctx)
}

// Close releases the connection pool.
func (x *Index) Close() error {
	x.pool.Close()
	return nil
}
