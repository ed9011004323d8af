package db

import (
	"database/sql"
	"sync"

	"github.com/google/uuid"

	"sqldeck/pkg/config"
)

// Handle is the server-side runtime entity for one open connection: the live
// pool plus the original config, retained so per-database scoped pools can be
// opened later. Callers only ever see the ID.
type Handle struct {
	ID   string
	Type config.Engine
	DB   *sql.DB
	Cfg  config.ConnectionConfig
}

// Registry owns every live Handle, keyed by an opaque identifier. It is
// constructed by the composition root and passed by reference; all methods
// are safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	handles map[string]*Handle
}

func NewRegistry() *Registry {
	return &Registry{handles: make(map[string]*Handle)}
}

// Register stores h under a freshly generated identifier and returns it.
// Identifiers are random UUIDs, so concurrent calls cannot collide.
func (r *Registry) Register(h *Handle) string {
	id := uuid.NewString()
	r.mu.Lock()
	h.ID = id
	r.handles[id] = h
	r.mu.Unlock()
	return id
}

// Get looks up a handle by identifier.
func (r *Registry) Get(id string) (*Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handles[id]
	return h, ok
}

// Remove deletes and returns the handle for id, or nil if it is absent.
// Removing an unknown identifier is a no-op.
func (r *Registry) Remove(id string) *Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	h := r.handles[id]
	delete(r.handles, id)
	return h
}

// Drain atomically empties the registry and returns every handle it held,
// for bulk teardown at shutdown.
func (r *Registry) Drain() []*Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Handle, 0, len(r.handles))
	for _, h := range r.handles {
		out = append(out, h)
	}
	r.handles = make(map[string]*Handle)
	return out
}

// Len reports the number of live handles.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handles)
}
