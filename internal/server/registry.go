package server

import (
	"errors"
	"sync"

	"github.com/danielpatrickdp/trait-interview/internal/interview"
)

var (
	errUnknownSession  = errors.New("unknown session")
	errTooManySessions = errors.New("too many active sessions")
)

// registry holds live sessions by ID. Sessions are independent; the
// registry lock only guards the map.
type registry struct {
	mu       sync.RWMutex
	limit    int
	sessions map[string]*interview.Session
}

func newRegistry(limit int) *registry {
	return &registry{limit: limit, sessions: make(map[string]*interview.Session)}
}

func (r *registry) add(s *interview.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.limit > 0 && len(r.sessions) >= r.limit {
		return errTooManySessions
	}
	r.sessions[s.ID()] = s
	return nil
}

func (r *registry) get(id string) (*interview.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, errUnknownSession
	}
	return s, nil
}

func (r *registry) remove(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

func (r *registry) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
