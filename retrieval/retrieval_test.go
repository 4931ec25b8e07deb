package retrieval_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/thenewhumanitarian/chat-service/embeddings"
	"github.com/thenewhumanitarian/chat-service/retrieval"
)

type stubEmbedder struct {
	vector []float32
	err    error
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.vector, nil
}

var _ embeddings.Embedder = (*stubEmbedder)(nil)

type stubStore struct {
	docs      []retrieval.Document
	err       error
	gotVector []float32
	gotLimit  int
}

func (s *stubStore) Search(ctx context.Context, embedding []float32, limit int) ([]retrieval.Document, error) {
	s.gotVector = embedding
	s.gotLimit = limit
	if s.err != nil {
		return nil, s.err
	}
	return s.docs, nil
}

var _ retrieval.Store = (*stubStore)(nil)

func TestRetrieverEmbedsAndSearches(t *testing.T) {
	store := &stubStore{docs: []retrieval.Document{{PageContent: "match"}}}
	retriever := retrieval.NewRetriever(&stubEmbedder{vector: []float32{1, 2, 3}}, store, 6)

	docs, err := retriever.Retrieve(context.Background(), "question")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 1 || docs[0].PageContent != "match" {
		t.Fatalf("unexpected documents: %+v", docs)
	}
	if store.gotLimit != 6 {
		t.Fatalf("expected top-6 search, got %d", store.gotLimit)
	}
	if len(store.gotVector) != 3 {
		t.Fatalf("expected query embedding to reach the store, got %v", store.gotVector)
	}
}

func TestRetrieverRejectsEmptyEmbedding(t *testing.T) {
	retriever := retrieval.NewRetriever(&stubEmbedder{}, &stubStore{}, 6)
	if _, err := retriever.Retrieve(context.Background(), "question"); err == nil {
		t.Fatal("expected error for empty embedding")
	}
}

func TestRetrieverSurfacesEmbedderFailure(t *testing.T) {
	retriever := retrieval.NewRetriever(&stubEmbedder{err: errors.New("down")}, &stubStore{}, 6)
	if _, err := retriever.Retrieve(context.Background(), "question"); err == nil {
		t.Fatal("expected embedder failure to surface")
	}
}

func TestSupabaseStoreSearch(t *testing.T) {
	var gotAuth, gotAPIKey, gotPath string
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotAPIKey = r.Header.Get("apikey")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{
				"content":  "Article body.",
				"metadata": map[string]any{"url": "/node/7", "title": "Seven"},
			},
		})
	}))
	defer server.Close()

	store := retrieval.NewSupabaseStore(server.URL, "service-role-key")

	docs, err := store.Search(context.Background(), []float32{0.5, 0.5}, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/rest/v1/rpc/match_documents" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if gotAuth != "Bearer service-role-key" || gotAPIKey != "service-role-key" {
		t.Fatalf("missing supabase credentials: auth=%q apikey=%q", gotAuth, gotAPIKey)
	}
	if gotBody["match_count"] != float64(6) {
		t.Fatalf("unexpected match_count: %v", gotBody["match_count"])
	}
	if len(docs) != 1 || docs[0].PageContent != "Article body." {
		t.Fatalf("unexpected documents: %+v", docs)
	}
	if docs[0].Metadata["url"] != "/node/7" {
		t.Fatalf("metadata lost in translation: %+v", docs[0].Metadata)
	}
}

func TestSupabaseStoreSurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"invalid api key"}`))
	}))
	defer server.Close()

	store := retrieval.NewSupabaseStore(server.URL, "wrong")
	if _, err := store.Search(context.Background(), []float32{1}, 6); err == nil {
		t.Fatal("expected error from API failure")
	}
}
