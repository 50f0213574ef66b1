package chatrelay

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store owns the process-wide mapping from session ID to transcript.
// It is safe for concurrent use; a single RWMutex guards the whole map, which
// is sufficient for the workload's modest scale. Concurrent chats against the
// same session may interleave their commits — a documented limitation.
//
// Unknown session IDs are tolerated everywhere: reads see an empty transcript
// and appends auto-create the session. This keeps the relay usable after
// client-side state loss, at the cost of silently losing history.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// Create generates a fresh session ID, initializes an empty transcript and
// returns the ID. IDs are UUIDv4: collisions are negligible.
func (s *Store) Create() string {
	id := uuid.NewString()
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = &Session{ID: id, CreatedAt: now, UpdatedAt: now}
	return id
}

// Transcript returns a copy of the session's transcript, most recent turn
// last. An unknown ID yields an empty transcript, not an error.
func (s *Store) Transcript(id string) []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok || len(sess.Turns) == 0 {
		return nil
	}
	out := make([]Turn, len(sess.Turns))
	copy(out, sess.Turns)
	return out
}

// Append adds turns to the end of the session's transcript, auto-creating the
// session if it does not exist.
func (s *Store) Append(id string, turns ...Turn) {
	if len(turns) == 0 {
		return
	}
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		sess = &Session{ID: id, CreatedAt: now}
		s.sessions[id] = sess
	}
	sess.Turns = append(sess.Turns, turns...)
	sess.UpdatedAt = now
}

// Clear resets the session's transcript to empty. An unknown ID is a no-op.
func (s *Store) Clear(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[id]; ok {
		sess.Turns = nil
		sess.UpdatedAt = time.Now()
	}
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
