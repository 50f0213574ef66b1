// Package mock provides test doubles for chatrelay interfaces using function
// fields.
package mock

import (
	"context"

	"chatrelay"
)

// Interface compliance check.
var _ chatrelay.Provider = (*Provider)(nil)

// Provider is a test double for chatrelay.Provider.
// Set StreamFn before calling Stream.
type Provider struct {
	StreamFn func(ctx context.Context, req chatrelay.Request) (chatrelay.Stream, error)
}

// Stream delegates to StreamFn.
func (p *Provider) Stream(ctx context.Context, req chatrelay.Request) (chatrelay.Stream, error) {
	return p.StreamFn(ctx, req)
}
