package session

import (
	"errors"
	"sync"
)

// ErrSessionNotFound is returned for lookups of unknown session ids.
var ErrSessionNotFound = errors.New("session not found")

// LocationReporter accepts a client-supplied position fix.
type LocationReporter interface {
	Report(lat, lon float64) bool
}

// Entry groups a session with its session-scoped collaborators. Close,
// when non-nil, releases background work tied to the session lifetime,
// such as a pending geolocation probe.
type Entry struct {
	Session  *Session
	Location LocationReporter
	Close    func()
}

// Registry tracks live sessions by id.
type Registry struct {
	mu    sync.RWMutex
	items map[string]Entry
}

// NewRegistry bootstraps an empty in-memory registry.
func NewRegistry() *Registry {
	return &Registry{items: make(map[string]Entry)}
}

// Add records a session entry.
func (r *Registry) Add(e Entry) {
	r.mu.Lock()
	r.items[e.Session.ID()] = e
	r.mu.Unlock()
}

// Remove evicts a session entry and returns it so the caller can run
// its Close hook.
func (r *Registry) Remove(id string) (Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.items[id]
	if !ok {
		return Entry{}, ErrSessionNotFound
	}
	delete(r.items, id)
	return e, nil
}

// Get retrieves a session entry by identifier.
func (r *Registry) Get(id string) (Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.items[id]
	if !ok {
		return Entry{}, ErrSessionNotFound
	}
	return e, nil
}
