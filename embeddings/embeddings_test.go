package embeddings_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/thenewhumanitarian/chat-service/embeddings"
)

func TestNewEmbedderSelectsByProvider(t *testing.T) {
	if e := embeddings.NewEmbedder(embeddings.Options{Provider: "openai", Model: "text-embedding-3-small", OpenAIAPIKey: "test"}); e == nil {
		t.Fatal("expected openai embedder")
	}
	if e := embeddings.NewEmbedder(embeddings.Options{Provider: "custom", Model: "nomic-embed-text"}); e == nil {
		t.Fatal("expected fallback embedder")
	}
}

func TestOllamaEmbed(t *testing.T) {
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embeddings" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]any{"embedding": []float64{0.25, -0.5}})
	}))
	defer server.Close()

	embedder := embeddings.NewEmbedder(embeddings.Options{
		Provider:   "ollama",
		Model:      "nomic-embed-text",
		OllamaHost: server.URL,
	})

	vec, err := embedder.Embed(context.Background(), "some article text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vec) != 2 || vec[0] != 0.25 || vec[1] != -0.5 {
		t.Fatalf("unexpected vector: %v", vec)
	}
	if gotBody["model"] != "nomic-embed-text" || gotBody["prompt"] != "some article text" {
		t.Fatalf("unexpected request body: %v", gotBody)
	}
}

func TestOllamaEmbedSurfacesError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"error": "model not loaded"})
	}))
	defer server.Close()

	embedder := embeddings.NewEmbedder(embeddings.Options{Provider: "ollama", Model: "x", OllamaHost: server.URL})

	if _, err := embedder.Embed(context.Background(), "text"); err == nil {
		t.Fatal("expected error payload to surface")
	}
}
