package chatrelay

import "context"

// Provider is a strategy pattern interface for upstream LLM inference APIs.
type Provider interface {
	Stream(ctx context.Context, req Request) (Stream, error)
}
