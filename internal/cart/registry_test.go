package cart

import (
	"context"
	"testing"
	"time"

	"github.com/arkicoffee/storefront-backend/pkg/enums"
)

// stalledLoadPersister blocks Load for one session until released, so tests
// can hold a rehydration open while other sessions are served.
type stalledLoadPersister struct {
	session string
	started chan struct{}
	release chan struct{}
}

func (p *stalledLoadPersister) Save(context.Context, string, Snapshot) error { return nil }

func (p *stalledLoadPersister) Load(_ context.Context, sessionID string) (Snapshot, bool, error) {
	if sessionID == p.session {
		close(p.started)
		<-p.release
	}
	return Snapshot{}, false, nil
}

func TestRegistryReturnsSameStorePerSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	registry := NewRegistry(nil, nil, nil)

	first := registry.Get(ctx, "s1")
	second := registry.Get(ctx, "s1")
	other := registry.Get(ctx, "s2")

	if first != second {
		t.Fatal("expected the same store instance for one session")
	}
	if first == other {
		t.Fatal("sessions must not share a store")
	}
	if registry.Len() != 2 {
		t.Fatalf("expected 2 stores got %d", registry.Len())
	}
}

func TestRegistryRehydratesOnFirstTouchOnly(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	persister := NewMemoryPersister()
	seed := Snapshot{Items: []LineItem{
		{Product: testProduct("a", "25"), Quantity: 2, Grind: enums.GrindWholeBean},
	}}
	if err := persister.Save(ctx, "s1", seed); err != nil {
		t.Fatalf("seed snapshot: %v", err)
	}

	registry := NewRegistry(persister, nil, nil)

	store := registry.Get(ctx, "s1")
	if store.ItemCount() != 2 {
		t.Fatalf("expected rehydrated count 2 got %d", store.ItemCount())
	}

	// A later, stale snapshot must not be re-read: in-memory state wins for
	// the rest of the process lifetime.
	if err := persister.Save(ctx, "s1", Snapshot{}); err != nil {
		t.Fatalf("overwrite snapshot: %v", err)
	}
	if got := registry.Get(ctx, "s1").ItemCount(); got != 2 {
		t.Fatalf("store rehydrated twice, count now %d", got)
	}
}

func TestRegistrySlowRehydrationDoesNotBlockOtherSessions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	persister := &stalledLoadPersister{
		session: "slow",
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	registry := NewRegistry(persister, nil, nil)

	slowDone := make(chan *Store, 1)
	go func() {
		slowDone <- registry.Get(ctx, "slow")
	}()
	<-persister.started

	fastDone := make(chan *Store, 1)
	go func() {
		fastDone <- registry.Get(ctx, "fast")
	}()

	select {
	case store := <-fastDone:
		if store == nil {
			t.Fatal("expected a store for the fast session")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("another session's rehydration stalled this one")
	}

	close(persister.release)
	select {
	case store := <-slowDone:
		if store == nil {
			t.Fatal("expected a store for the slow session")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("slow session never finished rehydrating")
	}
}
