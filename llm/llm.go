package llm

import "context"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single conversation turn. Roles are passed through to the
// underlying provider unchanged; an invalid role is the provider's problem.
type Message struct {
	Role    string
	Content string
}

// chatTemperature is fixed for every provider; the service does not expose
// sampling controls to callers.
const chatTemperature = 0.2

// Client produces model output for an ordered message sequence.
//
// GenerateStream delivers the response as successive text fragments through
// fn. The stream is single-pass and forward-only: fn returning an error, or
// ctx being cancelled, aborts the in-flight model call rather than draining
// it.
type Client interface {
	Generate(ctx context.Context, messages []Message) (string, error)
	GenerateStream(ctx context.Context, messages []Message, fn func(chunk string) error) error
}

// Options selects and configures a chat client.
type Options struct {
	Provider string
	Model    string

	OllamaHost    string
	OpenAIAPIKey  string
	OpenAIBaseURL string
}

// NewClient returns a chat client for the given options. Provider values
// other than "openai" fall through to Ollama; unknown names are not an
// error.
func NewClient(opts Options) Client {
	if opts.Provider == "openai" {
		return NewOpenAIClient(opts)
	}
	return NewOllamaClient(opts)
}
