package mock

import "chatrelay"

// Interface compliance check.
var _ chatrelay.Stream = (*Stream)(nil)

// Stream is a test double for chatrelay.Stream.
// Set the function fields for the methods you need. NextFn and ReplyFn panic
// when nil to catch missing setup. CloseFn and StateFn are nil-safe (no-op and
// zero value) because test code commonly calls defer stream.Close() and these
// methods rarely need custom behavior.
type Stream struct {
	NextFn  func() (chatrelay.Event, error)
	StateFn func() chatrelay.StreamState
	ReplyFn func() (chatrelay.Reply, error)
	CloseFn func() error
}

// Next delegates to NextFn.
func (s *Stream) Next() (chatrelay.Event, error) {
	return s.NextFn()
}

// State delegates to StateFn. Returns StreamStateNew when StateFn is nil.
func (s *Stream) State() chatrelay.StreamState {
	if s.StateFn == nil {
		return chatrelay.StreamStateNew
	}
	return s.StateFn()
}

// Reply delegates to ReplyFn.
func (s *Stream) Reply() (chatrelay.Reply, error) {
	return s.ReplyFn()
}

// Close delegates to CloseFn. Returns nil when CloseFn is not set.
func (s *Stream) Close() error {
	if s.CloseFn == nil {
		return nil
	}
	return s.CloseFn()
}
