// Package retrieval provides nearest-neighbour document search against the
// article index. Documents are read-only here: indexing is owned by the CMS
// side and never happens in this service.
package retrieval

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/thenewhumanitarian/chat-service/config"
	"github.com/thenewhumanitarian/chat-service/embeddings"
)

// Document is a retrieved article fragment. Immutable once returned.
type Document struct {
	PageContent string
	Metadata    map[string]any
}

// Store performs a similarity search over indexed documents.
type Store interface {
	Search(ctx context.Context, embedding []float32, limit int) ([]Document, error)
}

// NewStore picks a store backend from configuration. A direct Postgres
// connection wins over the Supabase REST API when both are configured; when
// neither is, it returns nil and callers degrade to ungrounded chat.
func NewStore(ctx context.Context, cfg config.Config) (Store, error) {
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("create postgres pool: %w", err)
		}
		return NewPostgresStore(pool), nil
	}

	if cfg.SupabaseURL != "" && cfg.SupabaseKey != "" {
		return NewSupabaseStore(cfg.SupabaseURL, cfg.SupabaseKey), nil
	}

	return nil, nil
}

// Retriever embeds a query and returns its nearest documents. The consulted
// documents are the explicit return value; nothing is captured on the side.
type Retriever struct {
	embedder embeddings.Embedder
	store    Store
	topK     int
}

func NewRetriever(embedder embeddings.Embedder, store Store, topK int) *Retriever {
	return &Retriever{embedder: embedder, store: store, topK: topK}
}

func (r *Retriever) Retrieve(ctx context.Context, query string) ([]Document, error) {
	if r.embedder == nil {
		return nil, fmt.Errorf("embedder is not configured")
	}
	if r.store == nil {
		return nil, fmt.Errorf("vector store is not configured")
	}

	embedding, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(embedding) == 0 {
		return nil, fmt.Errorf("embedder returned an empty vector")
	}

	docs, err := r.store.Search(ctx, embedding, r.topK)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	return docs, nil
}
