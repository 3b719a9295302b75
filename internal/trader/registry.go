package trader

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"mosquito/internal/store"
)

// Registry tracks the uuids of orders the exchange has accepted. It is owned
// by a single adapter; callers needing cross-adapter visibility aggregate
// the registries explicitly. Entries are appended only after the exchange
// confirmed the order.
type Registry struct {
	mu     sync.Mutex
	orders []string
	store  *store.Store
}

// NewRegistry returns a registry persisting through st on every append.
// A nil store keeps the registry in memory only.
func NewRegistry(st *store.Store) *Registry {
	return &Registry{store: st}
}

// LoadRegistry restores a persisted registry, or an empty one when no
// snapshot exists yet.
func LoadRegistry(st *store.Store) (*Registry, error) {
	r := NewRegistry(st)
	if st == nil {
		return r, nil
	}
	orders, ok, err := st.LoadOrders()
	if err != nil {
		return nil, err
	}
	if ok {
		r.orders = orders
	}
	return r, nil
}

// Add records an accepted order. The id must be a well-formed uuid; the
// exchange confirms orders by uuid only.
func (r *Registry) Add(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid order id %q: %w", id, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders = append(r.orders, id)
	if r.store != nil {
		return r.store.SaveOrders(r.orders)
	}
	return nil
}

// List returns a copy of the recorded order ids in append order.
func (r *Registry) List() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.orders))
	copy(out, r.orders)
	return out
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.orders)
}
