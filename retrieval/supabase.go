package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// SupabaseStore calls the match_documents RPC exposed by a Supabase project
// through PostgREST, the same function the CMS-side indexer provisions.
type SupabaseStore struct {
	baseURL string
	key     string
	client  *http.Client
}

type supabaseMatchRequest struct {
	QueryEmbedding []float32 `json:"query_embedding"`
	MatchCount     int       `json:"match_count"`
}

type supabaseMatchRow struct {
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
}

func NewSupabaseStore(baseURL, key string) *SupabaseStore {
	return &SupabaseStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		key:     key,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (s *SupabaseStore) Search(ctx context.Context, embedding []float32, limit int) ([]Document, error) {
	if len(embedding) == 0 {
		return nil, fmt.Errorf("embedding is empty")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}

	body, err := json.Marshal(supabaseMatchRequest{
		QueryEmbedding: embedding,
		MatchCount:     limit,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal match_documents request: %w", err)
	}

	url := s.baseURL + "/rest/v1/rpc/match_documents"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create match_documents request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", s.key)
	req.Header.Set("Authorization", "Bearer "+s.key)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call supabase match_documents: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, fmt.Errorf("read supabase error body: %w", readErr)
		}
		if len(data) > 0 {
			return nil, fmt.Errorf("supabase match_documents error: %s", string(data))
		}
		return nil, fmt.Errorf("supabase match_documents returned status %s", resp.Status)
	}

	var rows []supabaseMatchRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode match_documents response: %w", err)
	}

	docs := make([]Document, len(rows))
	for i, row := range rows {
		docs[i] = Document{
			PageContent: row.Content,
			Metadata:    row.Metadata,
		}
	}

	return docs, nil
}

var _ Store = (*SupabaseStore)(nil)
