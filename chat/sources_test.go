package chat

import (
	"fmt"
	"testing"

	"github.com/thenewhumanitarian/chat-service/retrieval"
)

func TestExtractSourcesDeduplicatesByURL(t *testing.T) {
	docs := []retrieval.Document{
		{Metadata: map[string]any{"url": "/node/1", "title": "First"}},
		{Metadata: map[string]any{"url": "/node/2", "title": "Second"}},
		{Metadata: map[string]any{"url": "/node/1", "title": "Duplicate of first"}},
	}

	sources := ExtractSources(docs)
	if len(sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(sources))
	}
	if sources[0].URL != "/node/1" || sources[0].Label != "First" {
		t.Fatalf("first occurrence must win: %+v", sources[0])
	}
	if sources[1].URL != "/node/2" {
		t.Fatalf("order must be preserved: %+v", sources[1])
	}
}

func TestExtractSourcesSkipsDocumentsWithoutURL(t *testing.T) {
	docs := []retrieval.Document{
		{Metadata: map[string]any{"title": "No link"}},
		{Metadata: nil},
		{Metadata: map[string]any{"url": "/node/3"}},
	}

	sources := ExtractSources(docs)
	if len(sources) != 1 {
		t.Fatalf("expected 1 source, got %d", len(sources))
	}
	if sources[0].URL != "/node/3" {
		t.Fatalf("unexpected source: %+v", sources[0])
	}
}

func TestExtractSourcesLabelFallsBackToURL(t *testing.T) {
	docs := []retrieval.Document{
		{Metadata: map[string]any{"url": "/node/4"}},
	}

	sources := ExtractSources(docs)
	if sources[0].Label != "/node/4" {
		t.Fatalf("expected url as label, got %q", sources[0].Label)
	}
}

func TestExtractSourcesCapsAtEight(t *testing.T) {
	docs := make([]retrieval.Document, 12)
	for i := range docs {
		docs[i] = retrieval.Document{Metadata: map[string]any{"url": fmt.Sprintf("/node/%d", i)}}
	}

	sources := ExtractSources(docs)
	if len(sources) != 8 {
		t.Fatalf("expected 8 sources, got %d", len(sources))
	}
	for i, src := range sources {
		if src.URL != fmt.Sprintf("/node/%d", i) {
			t.Fatalf("expected retrieval order, got %q at %d", src.URL, i)
		}
	}
}

func TestExtractSourcesEmptyInput(t *testing.T) {
	if got := ExtractSources(nil); len(got) != 0 {
		t.Fatalf("expected no sources, got %d", len(got))
	}
}
