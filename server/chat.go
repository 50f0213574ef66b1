package server

import (
	"net/http"

	"chatrelay"
)

// handleChat runs one chat turn and streams the response.
//
// Missing required fields and out-of-range parameters are rejected with a
// plain 400 before any upstream call. Once validation passes the response commits to the event-stream media
// type: zero or more text_chunk events followed by exactly one terminal event,
// full_response on success or error on failure. Fragments already written
// before a mid-stream failure are not retracted.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}
	if req.Prompt == "" {
		writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}
	if req.Temperature != nil && (*req.Temperature < 0 || *req.Temperature > 2) {
		writeError(w, http.StatusBadRequest, "temperature must be in [0, 2]")
		return
	}

	sse, err := newSSEWriter(w)
	if err != nil {
		s.logger.Error().Err(err).Msg("cannot stream chat response")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	params := chatrelay.ChatParams{
		SessionID:    req.SessionID,
		Prompt:       req.Prompt,
		SystemPrompt: req.SystemPrompt,
		Model:        req.ModelID,
		Temperature:  req.Temperature,
	}

	// Client disconnects cancel r.Context(), which aborts the upstream call.
	var writeErr error
	reply, err := s.relay.Chat(r.Context(), params, func(delta string) {
		if writeErr != nil {
			return
		}
		writeErr = sse.send(chunkEvent{TextChunk: delta, IsFinal: false})
	})
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", req.SessionID).Msg("chat turn failed")
		_ = sse.send(errorEvent{Error: err.Error(), IsFinal: true})
		return
	}
	if writeErr != nil {
		// Client went away mid-stream; nothing left to tell it.
		s.logger.Warn().Err(writeErr).Str("session_id", req.SessionID).Msg("client disconnected mid-stream")
		return
	}

	s.logger.Info().
		Str("session_id", req.SessionID).
		Str("stop_reason", string(reply.StopReason)).
		Int("input_tokens", reply.Usage.InputTokens).
		Int("output_tokens", reply.Usage.OutputTokens).
		Int("response_len", len(reply.Text)).
		Msg("chat turn completed")

	_ = sse.send(finalEvent{FullResponse: reply.Text, IsFinal: true})
}
