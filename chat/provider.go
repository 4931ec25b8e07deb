package chat

import (
	"github.com/thenewhumanitarian/chat-service/config"
	"github.com/thenewhumanitarian/chat-service/embeddings"
	"github.com/thenewhumanitarian/chat-service/llm"
)

const fallbackChatModel = "llama3"

// ProviderConfig is the resolved model selection for a single request. It is
// the single source of truth for which models run and for the meta block
// echoed back to the caller.
type ProviderConfig struct {
	Provider   string
	ChatModel  string
	EmbedModel string
}

// SelectProvider resolves caller settings against environment defaults.
// Explicit settings win for provider and chat model; the embedding model
// always comes from the environment because Settings has no field for it.
// Provider values other than "openai" resolve to Ollama, never to an error.
func SelectProvider(cfg config.Config, settings Settings) ProviderConfig {
	provider := cfg.Provider
	chatModel := cfg.OllamaModel

	if settings.Provider != "" {
		provider = settings.Provider
		chatModel = settings.Model
		if chatModel == "" {
			chatModel = fallbackChatModel
		}
	}

	if provider == config.ProviderOpenAI {
		resolved := ProviderConfig{
			Provider:   config.ProviderOpenAI,
			ChatModel:  cfg.OpenAIModel,
			EmbedModel: cfg.OpenAIEmbedModel,
		}
		if settings.Provider != "" && settings.Model != "" {
			resolved.ChatModel = settings.Model
		}
		return resolved
	}

	return ProviderConfig{
		Provider:   config.ProviderOllama,
		ChatModel:  chatModel,
		EmbedModel: cfg.OllamaEmbedModel,
	}
}

// newClients builds the live chat and embedding handles for a resolved
// provider. Clients are cheap stateless request issuers; a fresh pair per
// request keeps ai_settings overrides isolated.
func newClients(cfg config.Config, resolved ProviderConfig) (llm.Client, embeddings.Embedder) {
	chatClient := llm.NewClient(llm.Options{
		Provider:     resolved.Provider,
		Model:        resolved.ChatModel,
		OllamaHost:   cfg.OllamaHost,
		OpenAIAPIKey: cfg.OpenAIAPIKey,
	})

	embedder := embeddings.NewEmbedder(embeddings.Options{
		Provider:     resolved.Provider,
		Model:        resolved.EmbedModel,
		OllamaHost:   cfg.OllamaHost,
		OpenAIAPIKey: cfg.OpenAIAPIKey,
	})

	return chatClient, embedder
}
