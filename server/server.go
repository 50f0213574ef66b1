// Package server exposes the chat relay over HTTP.
//
// It is a thin mapping of the relay's operations onto request/response
// semantics: typed JSON schemas per endpoint, validated before dispatch, and
// an SSE response mode for /chat. No business logic lives here.
package server

import (
	"net/http"

	"github.com/rs/zerolog"

	"chatrelay"
)

// Server carries the handler dependencies. Use New to construct one and
// Handler to obtain the routed http.Handler.
type Server struct {
	relay  *chatrelay.Relay
	store  *chatrelay.Store
	logger zerolog.Logger
}

// New creates a Server backed by the given store and provider.
func New(store *chatrelay.Store, provider chatrelay.Provider, logger zerolog.Logger) *Server {
	return &Server{
		relay:  chatrelay.NewRelay(provider, store),
		store:  store,
		logger: logger,
	}
}

// Handler returns the fully routed handler, wrapped in CORS and request
// logging middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("POST /create-session", s.handleCreateSession)
	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("POST /clear-backend-history", s.handleClearHistory)
	return s.logRequests(cors(mux))
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	id := s.store.Create()
	s.logger.Info().Str("session_id", id).Msg("session created")
	writeJSON(w, http.StatusOK, createSessionResponse{Status: "success", SessionID: id})
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	var req clearHistoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	// Unknown sessions clear to the same observable state as known ones, so
	// the response is success either way.
	s.store.Clear(req.SessionID)
	s.logger.Info().Str("session_id", req.SessionID).Msg("history cleared")
	writeJSON(w, http.StatusOK, clearHistoryResponse{
		Status:  "success",
		Message: "Backend chat history cleared for this session.",
	})
}
