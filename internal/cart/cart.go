// Package cart holds the shopper's cart: the authoritative list of line items
// for a session, mirrored to storage after every change and broadcast to
// subscribers as event.CartUpdated snapshots.
package cart

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/domain"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/event"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/persist"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/storage"
)

// UIHooks are optional presentation callbacks fired after Add. Nil fields are
// skipped.
type UIHooks struct {
	ShowToast    func(message string)
	OpenMiniCart func()
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithHooks sets the UI hooks fired after Add.
func WithHooks(h UIHooks) Option {
	return func(s *Store) { s.hooks = h }
}

// Store is the cart. It is safe for concurrent use; subscribers are called
// outside the lock with a copy of the items.
type Store struct {
	mu    sync.Mutex
	items []domain.CartItem

	list    *persist.List[domain.CartItem]
	emitter *event.Emitter[event.CartUpdated]
	hooks   UIHooks
	logger  *slog.Logger
}

// New creates a cart backed by store and hydrates it from the cart_items key.
// Persisted items with a non-positive quantity are dropped and duplicate ids
// are merged.
func New(ctx context.Context, store storage.Storage, opts ...Option) *Store {
	s := &Store{logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	s.list = persist.NewList[domain.CartItem](store, storage.KeyCartItems, s.logger)
	s.emitter = event.NewEmitter[event.CartUpdated](event.NameCartUpdated, s.logger)
	s.items = hydrate(s.list.Load(ctx))
	return s
}

func hydrate(loaded []domain.CartItem) []domain.CartItem {
	items := make([]domain.CartItem, 0, len(loaded))
	for _, it := range loaded {
		if it.ID == "" || it.Quantity <= 0 {
			continue
		}
		if i := indexOf(items, it.ID); i >= 0 {
			items[i].Quantity = domain.AddUnits(items[i].Quantity, it.Quantity)
			continue
		}
		items = append(items, it)
	}
	return items
}

func indexOf(items []domain.CartItem, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

// Subscribe registers fn for cartUpdated events and returns its unsubscribe func.
func (s *Store) Subscribe(fn event.Handler[event.CartUpdated]) func() {
	return s.emitter.Subscribe(fn)
}

// Add puts quantity units of p in the cart, merging with an existing line for
// the same id. A quantity below 1 counts as 1 and a merged quantity stops at
// math.MaxInt. A product without an id is ignored.
func (s *Store) Add(ctx context.Context, p domain.Product, quantity int, note string) persist.Outcome {
	if quantity <= 0 {
		quantity = 1
	}
	p.ID = domain.NormalizeID(p.ID)
	if p.ID == "" {
		return persist.Outcome{}
	}

	out := s.mutate(ctx, func(items []domain.CartItem) []domain.CartItem {
		if i := indexOf(items, p.ID); i >= 0 {
			items[i].Quantity = domain.AddUnits(items[i].Quantity, quantity)
			if note != "" {
				items[i].Note = note
			}
			return items
		}
		return append(items, domain.NewCartItem(p, quantity, note))
	})

	if s.hooks.ShowToast != nil {
		s.hooks.ShowToast(fmt.Sprintf("%s agregado al carrito", p.Name))
	}
	if s.hooks.OpenMiniCart != nil {
		s.hooks.OpenMiniCart()
	}
	return out
}

// AddRaw normalizes an external product payload and adds it.
func (s *Store) AddRaw(ctx context.Context, raw map[string]any, quantity int, note string) (persist.Outcome, error) {
	p, err := domain.NormalizeProduct(raw)
	if err != nil {
		return persist.Outcome{}, err
	}
	return s.Add(ctx, p, quantity, note), nil
}

// Remove deletes the line for id. Removing an absent id still persists and
// notifies.
func (s *Store) Remove(ctx context.Context, id any) persist.Outcome {
	key := domain.NormalizeID(id)
	return s.mutate(ctx, func(items []domain.CartItem) []domain.CartItem {
		if i := indexOf(items, key); i >= 0 {
			return append(items[:i], items[i+1:]...)
		}
		return items
	})
}

// UpdateQuantity sets the quantity for id. A quantity of zero or less removes
// the line. No upper bound is applied; stock is checked at checkout.
func (s *Store) UpdateQuantity(ctx context.Context, id any, quantity int) persist.Outcome {
	if quantity <= 0 {
		return s.Remove(ctx, id)
	}
	key := domain.NormalizeID(id)
	return s.mutate(ctx, func(items []domain.CartItem) []domain.CartItem {
		if i := indexOf(items, key); i >= 0 {
			items[i].Quantity = quantity
		}
		return items
	})
}

// UpdateNote replaces the note on the line for id.
func (s *Store) UpdateNote(ctx context.Context, id any, note string) persist.Outcome {
	key := domain.NormalizeID(id)
	return s.mutate(ctx, func(items []domain.CartItem) []domain.CartItem {
		if i := indexOf(items, key); i >= 0 {
			items[i].Note = note
		}
		return items
	})
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) persist.Outcome {
	return s.mutate(ctx, func([]domain.CartItem) []domain.CartItem {
		return []domain.CartItem{}
	})
}

// Items returns a copy of the current lines.
func (s *Store) Items() []domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Item returns the line for id.
func (s *Store) Item(id any) (domain.CartItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexOf(s.items, domain.NormalizeID(id)); i >= 0 {
		return s.items[i], true
	}
	return domain.CartItem{}, false
}

// Subtotal is the sum of price times quantity over all lines.
func (s *Store) Subtotal() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return subtotal(s.items)
}

// Total is the subtotal minus discount, never below zero.
func (s *Store) Total(discount int64) int64 {
	return domain.ApplyDiscount(s.Subtotal(), discount)
}

// Count is the number of units in the cart.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return count(s.items)
}

// IsEmpty reports whether the cart has no lines.
func (s *Store) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items) == 0
}

// Snapshot returns the current state as a cartUpdated payload.
func (s *Store) Snapshot() event.CartUpdated {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eventLocked()
}

// mutate applies fn under the lock, persists the result while still holding
// it so storage never lags memory, then notifies subscribers.
func (s *Store) mutate(ctx context.Context, fn func([]domain.CartItem) []domain.CartItem) persist.Outcome {
	s.mu.Lock()
	s.items = fn(s.items)
	out := s.list.Save(ctx, s.snapshotLocked())
	ev := s.eventLocked()
	s.mu.Unlock()

	s.emitter.Emit(ctx, ev)
	return out
}

func (s *Store) snapshotLocked() []domain.CartItem {
	out := make([]domain.CartItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) eventLocked() event.CartUpdated {
	return event.CartUpdated{
		Count: count(s.items),
		Total: subtotal(s.items),
		Items: s.snapshotLocked(),
	}
}

func subtotal(items []domain.CartItem) int64 {
	var sum int64
	for _, it := range items {
		sum = domain.AddAmounts(sum, it.LineTotal())
	}
	return sum
}

func count(items []domain.CartItem) int {
	n := 0
	for _, it := range items {
		n = domain.AddUnits(n, it.Quantity)
	}
	return n
}
