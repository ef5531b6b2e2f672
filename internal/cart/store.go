package cart

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/arkicoffee/storefront-backend/internal/catalog"
	"github.com/arkicoffee/storefront-backend/pkg/enums"
	pkgerrors "github.com/arkicoffee/storefront-backend/pkg/errors"
	"github.com/arkicoffee/storefront-backend/pkg/logger"
	"github.com/shopspring/decimal"
)

// Quantity bounds for a single line item. Updates outside the range clamp,
// they never drop the line or error.
const (
	MinQuantity = 1
	MaxQuantity = 99
)

const persistTimeout = 5 * time.Second

// LineItem is one row in the cart: a product snapshot, its quantity and an
// optional grind variant. The snapshot keeps totals stable even if the
// catalog price changes after the item was added.
type LineItem struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
	Grind    enums.Grind     `json:"grind,omitempty"`
}

// Subtotal returns price * quantity for the line.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.Product.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Store is the single source of truth for one session's cart. Line items are
// unique by product id and keep insertion order; mutations complete
// synchronously and never wait on persistence.
type Store struct {
	sessionID string
	persister Persister
	logg      *logger.Logger

	mu      sync.Mutex
	items   []LineItem
	subs    map[int]func([]LineItem)
	nextSub int

	// Saves are serialized through a single writer per store: pendingSave
	// holds the newest snapshot, saving reports whether a writer goroutine
	// is draining it. Without this a slow early Save could land after a
	// fast later one and resurrect removed items on rehydration.
	saveMu      sync.Mutex
	pendingSave *Snapshot
	saving      bool
}

// NewStore builds a cart for the given session and rehydrates it from the
// persister exactly once. A failed load is non-fatal: the cart starts empty
// and in-memory state is authoritative from then on.
func NewStore(ctx context.Context, sessionID string, persister Persister, logg *logger.Logger) *Store {
	if persister == nil {
		persister = NopPersister{}
	}
	s := &Store{
		sessionID: sessionID,
		persister: persister,
		logg:      logg,
		subs:      map[int]func([]LineItem){},
	}

	snap, ok, err := persister.Load(ctx, sessionID)
	if err != nil {
		s.warn(ctx, "cart.rehydrate_failed", err)
		return s
	}
	if ok {
		s.items = cloneItems(snap.Items)
	}
	return s
}

// AddItem merges the product into the cart. An existing line for the same
// product id accumulates quantity (clamped to MaxQuantity) and takes the
// latest grind; otherwise a new line is appended. Line identity is product id
// only — re-adding the same coffee with a different grind does not open a
// second line. That mirrors the storefront UI; see DESIGN.md before changing
// it, since keyed-by-grind carts price differently.
func (s *Store) AddItem(ctx context.Context, product catalog.Product, quantity int, grind enums.Grind) error {
	if strings.TrimSpace(product.ID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if !product.Price.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "product price must be positive")
	}
	if quantity < MinQuantity {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if !grind.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid grind")
	}

	s.mu.Lock()
	merged := false
	for i := range s.items {
		if s.items[i].Product.ID == product.ID {
			s.items[i].Quantity = clampQuantity(s.items[i].Quantity + quantity)
			s.items[i].Grind = grind
			merged = true
			break
		}
	}
	if !merged {
		s.items = append(s.items, LineItem{
			Product:  product,
			Quantity: clampQuantity(quantity),
			Grind:    grind,
		})
	}
	items := cloneItems(s.items)
	s.mu.Unlock()

	s.afterMutation(ctx, items)
	return nil
}

// UpdateQuantity sets the quantity for an existing line, clamped into
// [MinQuantity, MaxQuantity]. Decrementing below 1 floors at 1 — removal is
// an explicit separate action. Unknown product ids are a silent no-op so
// double-clicked UI buttons stay idempotent.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int) {
	s.mu.Lock()
	found := false
	for i := range s.items {
		if s.items[i].Product.ID == productID {
			s.items[i].Quantity = clampQuantity(quantity)
			found = true
			break
		}
	}
	if !found {
		s.mu.Unlock()
		return
	}
	items := cloneItems(s.items)
	s.mu.Unlock()

	s.afterMutation(ctx, items)
}

// RemoveItem deletes the line with the given product id regardless of its
// quantity. Removing an absent id is a no-op.
func (s *Store) RemoveItem(ctx context.Context, productID string) {
	s.mu.Lock()
	idx := -1
	for i := range s.items {
		if s.items[i].Product.ID == productID {
			idx = i
			break
		}
	}
	if idx == -1 {
		s.mu.Unlock()
		return
	}
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	items := cloneItems(s.items)
	s.mu.Unlock()

	s.afterMutation(ctx, items)
}

// Clear empties the cart. Invoked after checkout submission.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.items = nil
	items := cloneItems(s.items)
	s.mu.Unlock()

	s.afterMutation(ctx, items)
}

// Items returns a copy of the line-item sequence in insertion order.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneItems(s.items)
}

// ItemCount returns the sum of quantities across all lines.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, item := range s.items {
		count += item.Quantity
	}
	return count
}

// TotalPrice returns the sum of price * quantity across all lines, priced
// from the stored snapshots.
func (s *Store) TotalPrice() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, item := range s.items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// IsEmpty reports whether the cart has no line items. Checkout is disabled
// for empty carts.
func (s *Store) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items) == 0
}

// Subscribe registers a callback invoked after every successful mutation with
// a copy of the current line items. The returned func unsubscribes.
func (s *Store) Subscribe(fn func([]LineItem)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Snapshot returns the serializable state of the cart.
func (s *Store) Snapshot() Snapshot {
	return Snapshot{Items: s.Items()}
}

// afterMutation notifies subscribers synchronously on the mutating goroutine,
// then persists fire-and-forget. In-memory state stays authoritative when the
// persister fails.
func (s *Store) afterMutation(ctx context.Context, items []LineItem) {
	s.mu.Lock()
	subs := make([]func([]LineItem), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(cloneItems(items))
	}

	s.persist(ctx, Snapshot{Items: items})
}

// persist hands the snapshot to the store's writer goroutine, starting one if
// none is running. Rapid mutations coalesce: only the newest snapshot in the
// slot is written, and writes never interleave, so the last persisted state
// always matches the last mutation.
func (s *Store) persist(ctx context.Context, snap Snapshot) {
	s.saveMu.Lock()
	s.pendingSave = &snap
	if s.saving {
		s.saveMu.Unlock()
		return
	}
	s.saving = true
	s.saveMu.Unlock()

	saveCtx := context.WithoutCancel(ctx)
	go func() {
		for {
			s.saveMu.Lock()
			next := s.pendingSave
			s.pendingSave = nil
			if next == nil {
				s.saving = false
				s.saveMu.Unlock()
				return
			}
			s.saveMu.Unlock()

			persistCtx, cancel := context.WithTimeout(saveCtx, persistTimeout)
			if err := s.persister.Save(persistCtx, s.sessionID, *next); err != nil {
				s.warn(persistCtx, "cart.persist_failed", err)
			}
			cancel()
		}
	}()
}

func (s *Store) warn(ctx context.Context, msg string, err error) {
	if s.logg == nil {
		return
	}
	ctx = s.logg.WithFields(ctx, map[string]any{
		"session_id": s.sessionID,
		"error":      err.Error(),
	})
	s.logg.Warn(ctx, msg)
}

func clampQuantity(quantity int) int {
	if quantity < MinQuantity {
		return MinQuantity
	}
	if quantity > MaxQuantity {
		return MaxQuantity
	}
	return quantity
}

func cloneItems(items []LineItem) []LineItem {
	if len(items) == 0 {
		return nil
	}
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}
