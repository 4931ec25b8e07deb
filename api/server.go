package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/thenewhumanitarian/chat-service/chat"
	"github.com/thenewhumanitarian/chat-service/config"
	"github.com/thenewhumanitarian/chat-service/llm"
)

// ChatService is the pipeline the HTTP layer drives.
type ChatService interface {
	Chat(ctx context.Context, req chat.Request) (chat.Response, error)
	ChatStream(ctx context.Context, req chat.Request, fn func(chunk string) error) error
}

// Server exposes the chat pipeline over HTTP for the CMS.
type Server struct {
	cfg     config.Config
	svc     ChatService
	logger  *log.Logger
	handler http.Handler
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type aiSettings struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

type chatRequest struct {
	Message             string        `json:"message"`
	ConversationHistory []chatMessage `json:"conversation_history"`
	DatabaseContext     string        `json:"database_context"`
	AISettings          aiSettings    `json:"ai_settings"`
}

type sourcePayload struct {
	ID    any    `json:"id,omitempty"`
	URL   string `json:"url"`
	Label string `json:"label"`
}

type chatContext struct {
	RelevantArticles []sourcePayload `json:"relevant_articles"`
}

type chatMeta struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

type chatResponse struct {
	Message string      `json:"message"`
	Context chatContext `json:"context"`
	Meta    chatMeta    `json:"meta"`
}

type healthResponse struct {
	OK                bool   `json:"ok"`
	Provider          string `json:"provider"`
	Port              int    `json:"port"`
	DefaultModel      string `json:"default_model"`
	DefaultEmbedModel string `json:"default_embed_model"`
	Environment       string `json:"environment"`
	Timestamp         string `json:"timestamp"`
}

type reindexStats struct {
	NumAdded   int `json:"numAdded"`
	NumUpdated int `json:"numUpdated"`
	NumDeleted int `json:"numDeleted"`
	NumSkipped int `json:"numSkipped"`
}

type reindexResponse struct {
	OK        bool         `json:"ok"`
	Stats     reindexStats `json:"stats"`
	Message   string       `json:"message"`
	Timestamp string       `json:"timestamp"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// New constructs a Server that serves the HTTP API using the provided
// configuration and pipeline.
func New(cfg config.Config, svc ChatService, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}

	s := &Server{cfg: cfg, svc: svc, logger: logger}
	s.handler = s.withRequestID(s.withCORS(s.routes()))
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/chat", s.handleChat)
	mux.HandleFunc("/api/chat-stream", s.handleChatStream)
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/reindex", s.handleReindex)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, r, http.MethodGet)
		return
	}

	port, _ := strconv.Atoi(s.cfg.Port)
	s.writeJSON(w, http.StatusOK, healthResponse{
		OK:                true,
		Provider:          s.cfg.Provider,
		Port:              port,
		DefaultModel:      s.cfg.OllamaModel,
		DefaultEmbedModel: s.cfg.OllamaEmbedModel,
		Environment:       s.cfg.Environment,
		Timestamp:         time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReindex(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w, r, http.MethodPost)
		return
	}
	if !s.authorized(r) {
		s.unauthorized(w, r)
		return
	}

	// Indexing is owned by the CMS side; this endpoint acknowledges the
	// call so the CMS integration can be wired up ahead of it.
	s.writeJSON(w, http.StatusOK, reindexResponse{
		OK:        true,
		Stats:     reindexStats{},
		Message:   "Reindex endpoint ready for implementation",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	req, ok := s.prepareChat(w, r)
	if !ok {
		return
	}

	resp, err := s.svc.Chat(r.Context(), req)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, fmt.Errorf("chat failed: %w", err))
		return
	}

	s.writeJSON(w, http.StatusOK, transformChatResponse(resp))
}

func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request) {
	req, ok := s.prepareChat(w, r)
	if !ok {
		return
	}

	flusher, _ := w.(http.Flusher)
	wrote := false

	err := s.svc.ChatStream(r.Context(), req, func(chunk string) error {
		if !wrote {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.Header().Set("Cache-Control", "no-cache")
			wrote = true
		}
		if _, writeErr := io.WriteString(w, chunk); writeErr != nil {
			return writeErr
		}
		if flusher != nil {
			flusher.Flush()
		}
		return nil
	})
	if err != nil {
		if wrote {
			// Flushed fragments cannot be unsent; truncation is the
			// error signal the caller sees.
			s.logger.Printf("[%s] stream truncated: %v", requestID(r.Context()), err)
			return
		}
		s.writeError(w, r, http.StatusInternalServerError, fmt.Errorf("chat stream failed: %w", err))
	}
}

// prepareChat runs the shared pre-pipeline checks for both chat endpoints:
// method, bearer token, body shape and message presence. Auth is checked
// before anything else touches the request.
func (s *Server) prepareChat(w http.ResponseWriter, r *http.Request) (chat.Request, bool) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w, r, http.MethodPost)
		return chat.Request{}, false
	}
	if !s.authorized(r) {
		s.unauthorized(w, r)
		return chat.Request{}, false
	}

	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return chat.Request{}, false
	}

	if strings.TrimSpace(req.Message) == "" {
		s.writeError(w, r, http.StatusBadRequest, fmt.Errorf("Invalid message"))
		return chat.Request{}, false
	}

	history := make([]llm.Message, len(req.ConversationHistory))
	for i, turn := range req.ConversationHistory {
		history[i] = llm.Message{Role: turn.Role, Content: turn.Content}
	}

	return chat.Request{
		Message:         req.Message,
		History:         history,
		DatabaseContext: req.DatabaseContext,
		Settings: chat.Settings{
			Provider: req.AISettings.Provider,
			Model:    req.AISettings.Model,
		},
	}, true
}

// authorized compares the bearer token against the shared secret. With no
// secret configured the check is skipped entirely; the service is open by
// default and deployments are expected to set SERVICE_API_KEY.
func (s *Server) authorized(r *http.Request) bool {
	if s.cfg.ServiceAPIKey == "" {
		return true
	}
	return r.Header.Get("Authorization") == "Bearer "+s.cfg.ServiceAPIKey
}

func (s *Server) unauthorized(w http.ResponseWriter, r *http.Request) {
	s.logger.Printf("[%s] unauthorised request", requestID(r.Context()))
	s.writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorised"})
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed string) {
	w.Header().Set("Allow", allowed)
	s.writeError(w, r, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed, use %s", allowed))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Printf("encode response: %v", err)
	}
}

// writeError logs the full failure and masks server-side detail from
// response bodies in production.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	s.logger.Printf("[%s] api error (%d): %v", requestID(r.Context()), status, err)

	message := err.Error()
	if status >= http.StatusInternalServerError && s.cfg.Production() {
		message = "Server error"
	}
	s.writeJSON(w, status, errorResponse{Error: message})
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if err == io.EOF {
			return nil
		}
		return err
	}

	if dec.More() {
		return fmt.Errorf("request body must contain a single JSON object")
	}

	return nil
}

func transformChatResponse(resp chat.Response) chatResponse {
	articles := make([]sourcePayload, len(resp.Sources))
	for i, src := range resp.Sources {
		articles[i] = sourcePayload{
			ID:    src.ID,
			URL:   src.URL,
			Label: src.Label,
		}
	}

	return chatResponse{
		Message: resp.Message,
		Context: chatContext{RelevantArticles: articles},
		Meta: chatMeta{
			Provider: resp.Provider,
			Model:    resp.Model,
		},
	}
}
