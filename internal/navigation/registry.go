package navigation

import (
	"sync"
)

// Registry hands out one Session per user so single-flight applies per caller.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	build    func(userKey string) (*Session, error)
}

func NewRegistry(build func(userKey string) (*Session, error)) *Registry {
	return &Registry{sessions: map[string]*Session{}, build: build}
}

func (r *Registry) For(userKey string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[userKey]; ok {
		return s, nil
	}
	s, err := r.build(userKey)
	if err != nil {
		return nil, err
	}
	r.sessions[userKey] = s
	return s, nil
}

// Lookup returns the user's session without creating one.
func (r *Registry) Lookup(userKey string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[userKey]
	return s, ok
}
