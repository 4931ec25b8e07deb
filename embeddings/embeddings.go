package embeddings

import "context"

// Embedder converts text into a vector for similarity search.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Options selects and configures an embedding client.
type Options struct {
	Provider string
	Model    string

	OllamaHost    string
	OpenAIAPIKey  string
	OpenAIBaseURL string
}

// NewEmbedder returns an embedding client for the given options. As with
// chat clients, anything that is not "openai" resolves to Ollama.
func NewEmbedder(opts Options) Embedder {
	if opts.Provider == "openai" {
		return NewOpenAIEmbedder(opts)
	}
	return NewOllamaEmbedder(opts)
}
