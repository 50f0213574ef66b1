package server

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Request schemas, one per endpoint. Fields mirror the wire contract exactly.

type chatRequest struct {
	SessionID    string   `json:"session_id"`
	Prompt       string   `json:"prompt"`
	SystemPrompt string   `json:"system_prompt,omitempty"`
	Temperature  *float64 `json:"temperature,omitempty"`
	ModelID      string   `json:"model_id,omitempty"`
}

type clearHistoryRequest struct {
	SessionID string `json:"session_id"`
}

// Response schemas.

type createSessionResponse struct {
	Status    string `json:"status"`
	SessionID string `json:"session_id"`
}

type clearHistoryResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// SSE event payloads for /chat. Per request, zero or more chunk events are
// followed by exactly one terminal event — final or error, never both.

type chunkEvent struct {
	TextChunk string `json:"text_chunk"`
	IsFinal   bool   `json:"is_final"`
}

type finalEvent struct {
	FullResponse string `json:"full_response"`
	IsFinal      bool   `json:"is_final"`
}

type errorEvent struct {
	Error   string `json:"error"`
	IsFinal bool   `json:"is_final"`
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("decode request: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Status: "error", Message: msg})
}
