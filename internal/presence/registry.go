// Package presence tracks which identities currently hold a live connection.
// The registry is in-memory only and is rebuilt from live connections after a restart.
package presence

import (
	"slices"
	"sync"

	"github.com/samber/lo"

	"dmrelay/internal/model"
)

// Handle is one live bidirectional connection.
type Handle interface {
	// ID is unique per connection for the lifetime of the process.
	ID() string
	// Push queues an event without blocking and reports whether it was accepted.
	Push(event model.OutboundEvent) bool
}

// Registry maps identity -> connection handle, at most one handle per identity.
type Registry struct {
	mu       sync.RWMutex
	sessions map[int64]Handle
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[int64]Handle)}
}

// Bind maps the identity to the handle, replacing any handle bound before.
func (r *Registry) Bind(identity int64, h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[identity] = h
}

// Unbind removes every entry pointing at the handle and returns the identities removed.
// The registry is keyed by identity, so this scans by value.
func (r *Registry) Unbind(h Handle) []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed []int64
	for identity, bound := range r.sessions {
		if bound.ID() == h.ID() {
			delete(r.sessions, identity)
			removed = append(removed, identity)
		}
	}
	slices.Sort(removed)
	return removed
}

// Lookup returns the handle currently bound to the identity.
func (r *Registry) Lookup(identity int64) (Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.sessions[identity]
	return h, ok
}

// Snapshot returns the online identities in ascending order.
func (r *Registry) Snapshot() []int64 {
	r.mu.RLock()
	online := lo.Keys(r.sessions)
	r.mu.RUnlock()

	slices.Sort(online)
	return online
}

// IsOnline reports whether the identity has a bound handle.
func (r *Registry) IsOnline(identity int64) bool {
	_, ok := r.Lookup(identity)
	return ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
