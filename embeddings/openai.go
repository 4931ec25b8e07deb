package embeddings

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

type openAIEmbedder struct {
	client *openai.Client
	model  string
}

func NewOpenAIEmbedder(opts Options) Embedder {
	cfg := openai.DefaultConfig(opts.OpenAIAPIKey)
	if opts.OpenAIBaseURL != "" {
		cfg.BaseURL = opts.OpenAIBaseURL
	}

	return &openAIEmbedder{
		client: openai.NewClientWithConfig(cfg),
		model:  opts.Model,
	}
}

func (e *openAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(e.model),
		Input: []string{text},
	})
	if err != nil {
		return nil, fmt.Errorf("create openai embedding: %w", err)
	}

	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("openai embedding response contained no vectors")
	}

	return resp.Data[0].Embedding, nil
}

var _ Embedder = (*openAIEmbedder)(nil)
