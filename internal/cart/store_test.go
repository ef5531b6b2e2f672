package cart

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/arkicoffee/storefront-backend/internal/catalog"
	"github.com/arkicoffee/storefront-backend/pkg/enums"
	pkgerrors "github.com/arkicoffee/storefront-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

func testProduct(id, price string) catalog.Product {
	return catalog.Product{
		ID:      id,
		Slug:    id,
		Name:    "Coffee " + id,
		Price:   decimal.RequireFromString(price),
		Origin:  "Ethiopia",
		InStock: true,
	}
}

// recordingPersister signals every save so tests can wait for the
// fire-and-forget persistence goroutine.
type recordingPersister struct {
	saves chan Snapshot
	snap  Snapshot
	ok    bool
	err   error
}

func newRecordingPersister() *recordingPersister {
	return &recordingPersister{saves: make(chan Snapshot, 32)}
}

func (r *recordingPersister) Save(_ context.Context, _ string, snap Snapshot) error {
	r.saves <- snap
	return nil
}

func (r *recordingPersister) Load(context.Context, string) (Snapshot, bool, error) {
	return r.snap, r.ok, r.err
}

func waitForSave(t *testing.T, p *recordingPersister) Snapshot {
	t.Helper()
	select {
	case snap := <-p.saves:
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for persist")
		return Snapshot{}
	}
}

func TestStoreAddItemAppendsNewLine(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore(ctx, "s1", nil, nil)

	if err := store.AddItem(ctx, testProduct("a", "25"), 2, enums.GrindWholeBean); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if err := store.AddItem(ctx, testProduct("b", "19"), 1, enums.GrindNone); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	items := store.Items()
	if len(items) != 2 {
		t.Fatalf("expected 2 lines got %d", len(items))
	}
	if items[0].Product.ID != "a" || items[1].Product.ID != "b" {
		t.Fatalf("insertion order not preserved: %v", items)
	}
	if store.ItemCount() != 3 {
		t.Fatalf("expected item count 3 got %d", store.ItemCount())
	}
}

func TestStoreAddItemMergesByProductID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore(ctx, "s1", nil, nil)

	if err := store.AddItem(ctx, testProduct("a", "25"), 2, enums.GrindWholeBean); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	// Same coffee, different grind: quantities accumulate on the one line and
	// the grind is overwritten.
	if err := store.AddItem(ctx, testProduct("a", "25"), 3, enums.GrindEspresso); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	items := store.Items()
	if len(items) != 1 {
		t.Fatalf("expected single merged line got %d", len(items))
	}
	if items[0].Quantity != 5 {
		t.Fatalf("expected quantity 5 got %d", items[0].Quantity)
	}
	if items[0].Grind != enums.GrindEspresso {
		t.Fatalf("expected latest grind, got %q", items[0].Grind)
	}
}

func TestStoreAddItemClampsMergedQuantity(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore(ctx, "s1", nil, nil)

	if err := store.AddItem(ctx, testProduct("a", "25"), 60, enums.GrindNone); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if err := store.AddItem(ctx, testProduct("a", "25"), 60, enums.GrindNone); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	items := store.Items()
	if items[0].Quantity != MaxQuantity {
		t.Fatalf("expected clamp to %d got %d", MaxQuantity, items[0].Quantity)
	}
}

func TestStoreAddItemValidation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore(ctx, "s1", nil, nil)

	cases := []struct {
		name     string
		product  catalog.Product
		quantity int
		grind    enums.Grind
	}{
		{"missing id", testProduct("", "25"), 1, enums.GrindNone},
		{"zero price", testProduct("a", "0"), 1, enums.GrindNone},
		{"negative price", testProduct("a", "-5"), 1, enums.GrindNone},
		{"zero quantity", testProduct("a", "25"), 0, enums.GrindNone},
		{"invalid grind", testProduct("a", "25"), 1, enums.Grind("turkish")},
	}
	for _, tc := range cases {
		err := store.AddItem(ctx, tc.product, tc.quantity, tc.grind)
		if err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		var coded *pkgerrors.Error
		if !errors.As(err, &coded) || coded.Code() != pkgerrors.CodeValidation {
			t.Fatalf("%s: expected validation error got %v", tc.name, err)
		}
	}
	if !store.IsEmpty() {
		t.Fatal("rejected adds must not mutate the cart")
	}
}

func TestStoreUpdateQuantityClamps(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore(ctx, "s1", nil, nil)
	if err := store.AddItem(ctx, testProduct("a", "25"), 5, enums.GrindNone); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	store.UpdateQuantity(ctx, "a", 500)
	if got := store.Items()[0].Quantity; got != MaxQuantity {
		t.Fatalf("expected %d got %d", MaxQuantity, got)
	}

	// Decrementing below 1 floors at 1, it never removes the line.
	store.UpdateQuantity(ctx, "a", 0)
	items := store.Items()
	if len(items) != 1 || items[0].Quantity != MinQuantity {
		t.Fatalf("expected floor at %d, got %v", MinQuantity, items)
	}

	store.UpdateQuantity(ctx, "a", -10)
	if got := store.Items()[0].Quantity; got != MinQuantity {
		t.Fatalf("expected floor at %d got %d", MinQuantity, got)
	}
}

func TestStoreUpdateQuantityMissingIDIsNoOp(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore(ctx, "s1", nil, nil)
	if err := store.AddItem(ctx, testProduct("a", "25"), 2, enums.GrindNone); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	store.UpdateQuantity(ctx, "ghost", 7)

	items := store.Items()
	if len(items) != 1 || items[0].Quantity != 2 {
		t.Fatalf("no-op update changed the cart: %v", items)
	}
}

func TestStoreRemoveItemIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore(ctx, "s1", nil, nil)
	if err := store.AddItem(ctx, testProduct("a", "25"), 9, enums.GrindNone); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if err := store.AddItem(ctx, testProduct("b", "19"), 1, enums.GrindNone); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	// Removal drops the whole line regardless of quantity.
	store.RemoveItem(ctx, "a")
	store.RemoveItem(ctx, "a")
	store.RemoveItem(ctx, "never-existed")

	items := store.Items()
	if len(items) != 1 || items[0].Product.ID != "b" {
		t.Fatalf("expected only b to remain, got %v", items)
	}
}

func TestStoreClear(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore(ctx, "s1", nil, nil)
	if err := store.AddItem(ctx, testProduct("a", "25"), 3, enums.GrindNone); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	store.Clear(ctx)

	if !store.IsEmpty() {
		t.Fatal("expected empty cart after clear")
	}
	if store.ItemCount() != 0 {
		t.Fatalf("expected count 0 got %d", store.ItemCount())
	}
	if !store.TotalPrice().IsZero() {
		t.Fatalf("expected zero total got %s", store.TotalPrice())
	}
}

func TestStoreEmptyCartDerivedState(t *testing.T) {
	t.Parallel()

	store := NewStore(context.Background(), "s1", nil, nil)

	if !store.IsEmpty() {
		t.Fatal("new cart should be empty")
	}
	if store.ItemCount() != 0 {
		t.Fatalf("expected count 0 got %d", store.ItemCount())
	}
	if !store.TotalPrice().IsZero() {
		t.Fatalf("expected zero total got %s", store.TotalPrice())
	}
	if len(store.Items()) != 0 {
		t.Fatal("expected no items")
	}
}

func TestStoreTotalPriceRandomized(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))

	for run := 0; run < 25; run++ {
		store := NewStore(ctx, "s1", nil, nil)
		lines := 1 + rng.Intn(20)
		want := decimal.Zero
		count := 0

		for i := 0; i < lines; i++ {
			price := decimal.NewFromInt(int64(1 + rng.Intn(200))).
				Add(decimal.New(int64(rng.Intn(100)), -2))
			quantity := 1 + rng.Intn(MaxQuantity)
			id := fmt.Sprintf("p%d", i)

			if err := store.AddItem(ctx, testProduct(id, price.String()), quantity, enums.GrindNone); err != nil {
				t.Fatalf("AddItem: %v", err)
			}
			want = want.Add(price.Mul(decimal.NewFromInt(int64(quantity))))
			count += quantity
		}

		if got := store.TotalPrice(); !got.Equal(want) {
			t.Fatalf("run %d: expected total %s got %s", run, want, got)
		}
		if got := store.ItemCount(); got != count {
			t.Fatalf("run %d: expected count %d got %d", run, count, got)
		}
	}
}

func TestStoreSubscribeAndUnsubscribe(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore(ctx, "s1", nil, nil)

	var notified [][]LineItem
	unsubscribe := store.Subscribe(func(items []LineItem) {
		notified = append(notified, items)
	})

	if err := store.AddItem(ctx, testProduct("a", "25"), 1, enums.GrindNone); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	store.UpdateQuantity(ctx, "a", 4)

	if len(notified) != 2 {
		t.Fatalf("expected 2 notifications got %d", len(notified))
	}
	if last := notified[1]; len(last) != 1 || last[0].Quantity != 4 {
		t.Fatalf("notification should carry current items, got %v", last)
	}

	unsubscribe()
	store.RemoveItem(ctx, "a")

	if len(notified) != 2 {
		t.Fatalf("unsubscribed callback still invoked, got %d notifications", len(notified))
	}
}

func TestStoreMutationsPersistFireAndForget(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	persister := newRecordingPersister()
	store := NewStore(ctx, "s1", persister, nil)

	if err := store.AddItem(ctx, testProduct("a", "25"), 2, enums.GrindFilter); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	snap := waitForSave(t, persister)
	if len(snap.Items) != 1 || snap.Items[0].Product.ID != "a" || snap.Items[0].Grind != enums.GrindFilter {
		t.Fatalf("unexpected persisted snapshot: %v", snap.Items)
	}

	store.Clear(ctx)
	snap = waitForSave(t, persister)
	if len(snap.Items) != 0 {
		t.Fatalf("expected cleared snapshot, got %v", snap.Items)
	}
}

// gatedPersister stalls its first Save until released, recording snapshots in
// completion order.
type gatedPersister struct {
	release chan struct{}

	mu    sync.Mutex
	calls int
	last  *Snapshot
}

func (g *gatedPersister) Save(_ context.Context, _ string, snap Snapshot) error {
	g.mu.Lock()
	g.calls++
	first := g.calls == 1
	g.mu.Unlock()
	if first {
		<-g.release
	}
	g.mu.Lock()
	g.last = &snap
	g.mu.Unlock()
	return nil
}

func (g *gatedPersister) Load(context.Context, string) (Snapshot, bool, error) {
	return Snapshot{}, false, nil
}

func (g *gatedPersister) lastSnapshot() *Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last
}

func TestStorePersistedSnapshotSurvivesSlowSave(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	persister := &gatedPersister{release: make(chan struct{})}
	store := NewStore(ctx, "s1", persister, nil)

	// The add's save stalls; the removal must still win durably, otherwise a
	// removed item resurrects on the next rehydration.
	if err := store.AddItem(ctx, testProduct("a", "25"), 1, enums.GrindNone); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	store.RemoveItem(ctx, "a")
	close(persister.release)

	deadline := time.Now().Add(2 * time.Second)
	for {
		if snap := persister.lastSnapshot(); snap != nil && len(snap.Items) == 0 {
			return
		}
		if time.Now().After(deadline) {
			snap := persister.lastSnapshot()
			t.Fatalf("durable state is stale: in-memory cart is empty but last persisted snapshot is %+v", snap)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestStoreRehydratesFromPersister(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	persister := &recordingPersister{
		saves: make(chan Snapshot, 32),
		snap: Snapshot{Items: []LineItem{
			{Product: testProduct("a", "25"), Quantity: 3, Grind: enums.GrindWholeBean},
		}},
		ok: true,
	}

	store := NewStore(ctx, "s1", persister, nil)

	items := store.Items()
	if len(items) != 1 || items[0].Quantity != 3 || items[0].Grind != enums.GrindWholeBean {
		t.Fatalf("rehydration mismatch: %v", items)
	}
	if !store.TotalPrice().Equal(decimal.NewFromInt(75)) {
		t.Fatalf("expected total 75 got %s", store.TotalPrice())
	}
}

func TestStoreLoadFailureStartsEmpty(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	persister := &recordingPersister{
		saves: make(chan Snapshot, 32),
		err:   errors.New("backend down"),
	}

	store := NewStore(ctx, "s1", persister, nil)

	if !store.IsEmpty() {
		t.Fatal("expected empty cart after failed rehydration")
	}
	// The cart keeps working; in-memory state is authoritative.
	if err := store.AddItem(ctx, testProduct("a", "25"), 1, enums.GrindNone); err != nil {
		t.Fatalf("AddItem after failed load: %v", err)
	}
}

func TestStoreEndToEndScenario(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore(ctx, "s1", nil, nil)
	policy := DefaultPolicy()

	a := testProduct("yirgacheffe-natural", "25")
	b := testProduct("espresso-blend-no1", "19")

	if err := store.AddItem(ctx, a, 2, enums.GrindWholeBean); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if err := store.AddItem(ctx, b, 1, enums.GrindEspresso); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if err := store.AddItem(ctx, a, 1, enums.GrindFilter); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	store.RemoveItem(ctx, b.ID)

	if got := store.ItemCount(); got != 3 {
		t.Fatalf("expected count 3 got %d", got)
	}
	if got := store.TotalPrice(); !got.Equal(decimal.NewFromInt(75)) {
		t.Fatalf("expected total 75 got %s", got)
	}

	quote, err := policy.QuoteItems(store.Items())
	if err != nil {
		t.Fatalf("QuoteItems: %v", err)
	}
	if !quote.Shipping.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("expected shipping 20 got %s", quote.Shipping)
	}
	if !quote.Total.Equal(decimal.NewFromInt(95)) {
		t.Fatalf("expected total 95 got %s", quote.Total)
	}
	if !quote.AmountToFreeShipping.Equal(decimal.NewFromInt(75)) {
		t.Fatalf("expected 75 to free shipping got %s", quote.AmountToFreeShipping)
	}
}
