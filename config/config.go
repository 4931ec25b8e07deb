package config

import "os"

const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

// Config carries every environment-driven setting the service recognises.
// It is loaded once at startup and passed by value into each component; no
// other package reads the environment directly.
type Config struct {
	Provider string

	OpenAIAPIKey     string
	OpenAIModel      string
	OpenAIEmbedModel string

	OllamaHost       string
	OllamaModel      string
	OllamaEmbedModel string

	SupabaseURL string
	SupabaseKey string
	DatabaseURL string

	ServiceAPIKey string
	Port          string
	Environment   string
}

func Load() Config {
	return Config{
		Provider:         getEnv("PROVIDER", ProviderOllama),
		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:      getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIEmbedModel: getEnv("OPENAI_EMBED_MODEL", "text-embedding-3-small"),
		OllamaHost:       getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OllamaModel:      getEnv("OLLAMA_MODEL", "llama3"),
		OllamaEmbedModel: getEnv("OLLAMA_EMBED_MODEL", "nomic-embed-text"),
		SupabaseURL:      getEnv("SUPABASE_URL", ""),
		SupabaseKey:      getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		ServiceAPIKey:    getEnv("SERVICE_API_KEY", ""),
		Port:             getEnv("PORT", "8787"),
		Environment:      getEnv("NODE_ENV", "development"),
	}
}

// Production reports whether response bodies should withhold error detail.
func (c Config) Production() bool {
	return c.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
