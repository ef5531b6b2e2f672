package cart

import (
	"context"
	"sync"

	"github.com/arkicoffee/storefront-backend/pkg/logger"
	"github.com/arkicoffee/storefront-backend/pkg/metrics"
)

// Registry owns the per-session cart stores. A store is created and
// rehydrated on first touch, then lives for the process lifetime. Last write
// wins across tabs sharing a session; there is no cross-tab merge.
type Registry struct {
	persister Persister
	logg      *logger.Logger
	metrics   *metrics.StorefrontMetrics

	mu     sync.Mutex
	stores map[string]*storeEntry
}

// storeEntry defers store construction out of the registry lock: rehydration
// does persister I/O, and one slow session must not stall every other cart.
type storeEntry struct {
	once  sync.Once
	store *Store
}

// NewRegistry builds a registry backed by the given persister.
func NewRegistry(persister Persister, logg *logger.Logger, m *metrics.StorefrontMetrics) *Registry {
	if persister == nil {
		persister = NopPersister{}
	}
	return &Registry{
		persister: persister,
		logg:      logg,
		metrics:   m,
		stores:    map[string]*storeEntry{},
	}
}

// Get returns the cart store for the session, creating it on first use. The
// registry lock covers only the map; the rehydrating constructor runs under
// the entry's own once so concurrent callers for the same session still share
// one store.
func (r *Registry) Get(ctx context.Context, sessionID string) *Store {
	r.mu.Lock()
	entry, ok := r.stores[sessionID]
	if !ok {
		entry = &storeEntry{}
		r.stores[sessionID] = entry
		r.metrics.SetActiveSessions(len(r.stores))
	}
	r.mu.Unlock()

	entry.once.Do(func() {
		entry.store = NewStore(ctx, sessionID, r.persister, r.logg)
	})
	return entry.store
}

// Len reports how many session stores are held in memory.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}
