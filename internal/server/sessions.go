package server

import (
	"sort"
	"sync"

	"ledgerdesk/internal/wizard"
)

// session pairs one wizard machine with the lock that serializes API access
// to it. The machine itself is single-writer and synchronous; the HTTP façade
// is the concurrent entry point, so every draft operation holds the session
// lock from lookup through response building.
type session struct {
	mu      sync.Mutex
	machine *wizard.Machine
}

// sessionRegistry tracks the open draft sessions, keyed by draft id. The
// registry lock guards the map only; per-draft serialization is the session
// lock's job.
type sessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*session
}

func newSessionRegistry() *sessionRegistry {
	return &sessionRegistry{sessions: map[string]*session{}}
}

func (r *sessionRegistry) put(id string, m *wizard.Machine) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id] = &session{machine: m}
}

func (r *sessionRegistry) get(id string) (*session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

func (r *sessionRegistry) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

func (r *sessionRegistry) ids() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
