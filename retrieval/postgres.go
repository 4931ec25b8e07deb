package retrieval

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// PostgresStore queries the langchain-style documents table (content,
// metadata jsonb, embedding vector) directly over pgvector.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Search(ctx context.Context, embedding []float32, limit int) ([]Document, error) {
	if s.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if len(embedding) == 0 {
		return nil, fmt.Errorf("embedding is empty")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}

	rows, err := s.pool.Query(ctx, `
        SELECT content, metadata
        FROM documents
        ORDER BY embedding <=> $1::vector
        LIMIT $2
    `, pgvector.NewVector(embedding), limit)
	if err != nil {
		return nil, fmt.Errorf("query similar documents: %w", err)
	}
	defer rows.Close()

	docs := make([]Document, 0, limit)
	for rows.Next() {
		var doc Document
		if scanErr := rows.Scan(&doc.PageContent, &doc.Metadata); scanErr != nil {
			return nil, fmt.Errorf("scan similar document: %w", scanErr)
		}
		docs = append(docs, doc)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return docs, nil
}

var _ Store = (*PostgresStore)(nil)
