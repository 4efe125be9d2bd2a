package events

import "sync"

// Registry is the set of live subscribers. All methods are safe for
// concurrent use; Snapshot returns a copy so callers iterate without the lock.
type Registry struct {
	mu   sync.Mutex
	subs map[Subscriber]struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{subs: make(map[Subscriber]struct{})}
}

// Add inserts s. Adding a subscriber that is already present is a no-op.
func (r *Registry) Add(s Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs[s] = struct{}{}
}

// Remove deletes s and reports whether it was present. It is safe to call
// from both the disconnect path and the broadcast failure path.
func (r *Registry) Remove(s Subscriber) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.subs[s]
	delete(r.subs, s)
	return ok
}

// Snapshot returns the current members in no particular order.
func (r *Registry) Snapshot() []Subscriber {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Subscriber, 0, len(r.subs))
	for s := range r.subs {
		out = append(out, s)
	}
	return out
}

// Len returns the number of registered subscribers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}

// CloseAll empties the registry and closes every member. Used at shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	subs := make([]Subscriber, 0, len(r.subs))
	for s := range r.subs {
		subs = append(subs, s)
	}
	r.subs = make(map[Subscriber]struct{})
	r.mu.Unlock()

	for _, s := range subs {
		_ = s.Close()
	}
}
