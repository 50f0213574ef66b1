package chatrelay

import (
	"context"
	"fmt"
	"io"
)

// Relay orchestrates one chat turn between the Store and a Provider.
type Relay struct {
	provider Provider
	store    *Store
}

// NewRelay creates a new Relay with the given provider and session store.
func NewRelay(provider Provider, store *Store) *Relay {
	return &Relay{provider: provider, store: store}
}

// ChatParams carries one chat turn's input. SystemPrompt overrides any
// persisted system turn for this call only; it is never written back to the
// session. Model and Temperature fall back to provider defaults when unset.
type ChatParams struct {
	SessionID    string
	Prompt       string
	SystemPrompt string
	Model        string
	Temperature  *float64
}

// Chat runs a single chat turn: it loads the session transcript, invokes the
// provider, forwards each text delta to onDelta as it arrives, and commits the
// user and assistant turns to the store once the stream completes.
//
// Nothing is committed on failure — neither the user turn nor the assistant
// turn — so a client retry does not duplicate history. Deltas already
// forwarded before a mid-stream failure stand; the returned Reply carries the
// partial text alongside the error.
func (r *Relay) Chat(ctx context.Context, params ChatParams, onDelta func(delta string)) (Reply, error) {
	if params.SessionID == "" {
		return Reply{}, fmt.Errorf("session_id is required: %w", ErrValidation)
	}
	if params.Prompt == "" {
		return Reply{}, fmt.Errorf("prompt is required: %w", ErrValidation)
	}

	req, err := r.buildRequest(params)
	if err != nil {
		return Reply{}, err
	}

	stream, err := r.provider.Stream(ctx, req)
	if err != nil {
		return Reply{}, err
	}
	defer stream.Close()

	// Drain the stream, forwarding deltas to the handler if set.
	var streamErr error
	for {
		evt, err := stream.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			streamErr = err
			break
		}
		if td, ok := evt.(EventTextDelta); ok && onDelta != nil {
			onDelta(td.Delta)
		}
	}

	// Get the assembled reply (partial or complete).
	reply, replyErr := stream.Reply()
	if replyErr != nil {
		if streamErr != nil {
			return Reply{}, streamErr
		}
		return Reply{}, replyErr
	}
	if streamErr != nil {
		return reply, streamErr
	}

	r.store.Append(params.SessionID,
		UserTurn(params.Prompt),
		AssistantTurn(reply.Text),
	)
	return reply, nil
}

// buildRequest assembles the provider request from the stored transcript and
// per-call parameters. A call-scoped SystemPrompt suppresses any persisted
// system turn; otherwise the first persisted system turn becomes the request's
// system prompt. System turns never travel in Request.Turns.
func (r *Relay) buildRequest(params ChatParams) (Request, error) {
	transcript := r.store.Transcript(params.SessionID)

	systemPrompt := params.SystemPrompt
	turns := make([]Turn, 0, len(transcript)+1)
	for _, t := range transcript {
		if t.Role == RoleSystem {
			if systemPrompt == "" {
				systemPrompt = t.Text
			}
			continue
		}
		turns = append(turns, t)
	}
	turns = append(turns, UserTurn(params.Prompt))

	req := Request{
		Model:        params.Model,
		SystemPrompt: systemPrompt,
		Turns:        turns,
		Temperature:  params.Temperature,
	}
	if err := req.Validate(); err != nil {
		return Request{}, err
	}
	return req, nil
}
