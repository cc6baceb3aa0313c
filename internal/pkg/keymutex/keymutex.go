// Package keymutex serializes work per string key. Waiters for one key are served in
// arrival order; different keys never block each other.
package keymutex

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

type entry struct {
	sem  *semaphore.Weighted
	refs int
}

type Mutex struct {
	mu      sync.Mutex
	entries map[string]*entry

	// observe, when set, receives how long each acquisition waited.
	observe func(key string, waited time.Duration)
}

type Option func(*Mutex)

// WithWaitObserver reports queue wait time per acquisition, e.g. to a histogram.
func WithWaitObserver(fn func(key string, waited time.Duration)) Option {
	return func(m *Mutex) { m.observe = fn }
}

func New(opts ...Option) *Mutex {
	m := &Mutex{entries: make(map[string]*entry)}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Lock blocks until the key is free or ctx is done. The returned release must be called
// exactly once; extra calls are ignored.
func (m *Mutex) Lock(ctx context.Context, key string) (func(), error) {
	m.mu.Lock()
	e := m.entries[key]
	if e == nil {
		e = &entry{sem: semaphore.NewWeighted(1)}
		m.entries[key] = e
	}
	e.refs++
	m.mu.Unlock()

	start := time.Now()
	if err := e.sem.Acquire(ctx, 1); err != nil {
		m.drop(key, e)
		return nil, err
	}
	if m.observe != nil {
		m.observe(key, time.Since(start))
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			e.sem.Release(1)
			m.drop(key, e)
		})
	}, nil
}

func (m *Mutex) drop(key string, e *entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.refs--
	if e.refs <= 0 && m.entries[key] == e {
		delete(m.entries, key)
	}
}

// size is the number of keys currently held or awaited.
func (m *Mutex) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Held reports whether anyone holds or waits for key.
func (m *Mutex) Held(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[key]
	return ok
}
