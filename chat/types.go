package chat

import "github.com/thenewhumanitarian/chat-service/llm"

// Settings are per-request model overrides passed along by the CMS. They
// carry no embedding-model field, so the embedding model always resolves
// from the environment.
type Settings struct {
	Provider string
	Model    string
}

// Request is one inbound chat question with its surrounding state.
type Request struct {
	Message         string
	History         []llm.Message
	DatabaseContext string
	Settings        Settings
}

// Source is a citable article derived from a retrieved document. URL is the
// deduplication key.
type Source struct {
	ID    any
	URL   string
	Label string
}

type Response struct {
	Message  string
	Sources  []Source
	Provider string
	Model    string
}
