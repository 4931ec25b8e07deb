package chat

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/thenewhumanitarian/chat-service/config"
	"github.com/thenewhumanitarian/chat-service/embeddings"
	"github.com/thenewhumanitarian/chat-service/llm"
	"github.com/thenewhumanitarian/chat-service/retrieval"
)

// retrievalTopK is the number of nearest documents consulted per question.
const retrievalTopK = 6

type contextMode int

const (
	modeDirect contextMode = iota
	modeSupplied
	modeRetrieval
)

type clientFactory func(config.Config, ProviderConfig) (llm.Client, embeddings.Embedder)

// Service runs the chat pipeline: provider selection, context resolution,
// prompt assembly, model invocation and source extraction. It holds no
// per-request state; the store handle is the only long-lived dependency.
type Service struct {
	cfg     config.Config
	store   retrieval.Store
	logger  *log.Logger
	clients clientFactory
}

// NewService builds the pipeline. store may be nil, in which case requests
// without caller-supplied context degrade to ungrounded chat.
func NewService(cfg config.Config, store retrieval.Store, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}

	return &Service{
		cfg:     cfg,
		store:   store,
		logger:  logger,
		clients: newClients,
	}
}

// Chat answers a question synchronously, returning the full response text
// together with extracted sources and the resolved provider metadata.
func (s *Service) Chat(ctx context.Context, req Request) (Response, error) {
	return s.run(ctx, req, nil)
}

// ChatStream answers a question as a sequence of text fragments delivered
// through streamFn. No sources or metadata accompany the stream; callers
// that need them use Chat.
func (s *Service) ChatStream(ctx context.Context, req Request, streamFn func(chunk string) error) error {
	_, err := s.run(ctx, req, streamFn)
	return err
}

func (s *Service) run(ctx context.Context, req Request, streamFn func(string) error) (Response, error) {
	question := strings.TrimSpace(req.Message)
	if question == "" {
		return Response{}, fmt.Errorf("message cannot be empty")
	}

	resolved := SelectProvider(s.cfg, req.Settings)
	chatClient, embedder := s.clients(s.cfg, resolved)

	// Explicit context always wins over retrieval; retrieval is a
	// fallback; absence of both degrades to ungrounded chat.
	var docs []retrieval.Document
	var systemPrompt string

	switch s.resolveMode(req) {
	case modeSupplied:
		s.logger.Printf("using caller-supplied context (%d chars), skipping retrieval", len(req.DatabaseContext))
		systemPrompt = suppliedSystemPrompt(req.DatabaseContext)
	case modeRetrieval:
		retriever := retrieval.NewRetriever(embedder, s.store, retrievalTopK)
		retrieved, err := retriever.Retrieve(ctx, question)
		if err != nil {
			return Response{}, fmt.Errorf("retrieve context: %w", err)
		}
		docs = retrieved
		systemPrompt = retrievalSystemPrompt(formatDocs(docs))
	default:
		s.logger.Printf("no context available, answering directly with %s/%s", resolved.Provider, resolved.ChatModel)
		systemPrompt = directPrompt
	}

	messages := buildMessages(systemPrompt, req.History, question)

	var answer string
	if streamFn != nil {
		if err := chatClient.GenerateStream(ctx, messages, streamFn); err != nil {
			return Response{}, fmt.Errorf("llm stream generate: %w", err)
		}
	} else {
		generated, err := chatClient.Generate(ctx, messages)
		if err != nil {
			return Response{}, fmt.Errorf("llm generate: %w", err)
		}
		answer = generated
	}

	return Response{
		Message:  answer,
		Sources:  ExtractSources(docs),
		Provider: resolved.Provider,
		Model:    resolved.ChatModel,
	}, nil
}

func (s *Service) resolveMode(req Request) contextMode {
	if strings.TrimSpace(req.DatabaseContext) != "" {
		return modeSupplied
	}
	if s.store != nil {
		return modeRetrieval
	}
	return modeDirect
}
