// Package wishlist holds the shopper's favorited products, persisted under the
// wishlist key and broadcast as event.WishlistUpdated snapshots.
package wishlist

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/cart"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/domain"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/event"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/persist"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/storage"
	apperrors "github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/errors"
)

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

// WithClock overrides the time source used for AddedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Store is the wishlist. At most one entry exists per product id.
type Store struct {
	mu    sync.Mutex
	items []domain.WishlistItem

	list    *persist.List[domain.WishlistItem]
	emitter *event.Emitter[event.WishlistUpdated]
	now     func() time.Time
	logger  *slog.Logger
}

// New creates a wishlist backed by store and hydrates it from the wishlist key.
func New(ctx context.Context, store storage.Storage, opts ...Option) *Store {
	s := &Store{
		logger: slog.Default(),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	s.list = persist.NewList[domain.WishlistItem](store, storage.KeyWishlist, s.logger)
	s.emitter = event.NewEmitter[event.WishlistUpdated](event.NameWishlistUpdated, s.logger)

	for _, it := range s.list.Load(ctx) {
		it.ID = domain.NormalizeID(it.ID)
		if it.ID == "" || indexOf(s.items, it.ID) >= 0 {
			continue
		}
		s.items = append(s.items, it)
	}
	return s
}

func indexOf(items []domain.WishlistItem, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

// Subscribe registers fn for wishlistUpdated events.
func (s *Store) Subscribe(fn event.Handler[event.WishlistUpdated]) func() {
	return s.emitter.Subscribe(fn)
}

// Add favorites p. It returns false when p is already in the wishlist, in
// which case nothing is written or emitted.
func (s *Store) Add(ctx context.Context, p domain.Product) (bool, persist.Outcome) {
	id := domain.NormalizeID(p.ID)
	if id == "" {
		return false, persist.Outcome{}
	}
	p.ID = id

	s.mu.Lock()
	if indexOf(s.items, id) >= 0 {
		s.mu.Unlock()
		return false, persist.Ok
	}
	s.items = append(s.items, domain.NewWishlistItem(p, s.now()))
	out, ev := s.commitLocked(ctx)
	s.mu.Unlock()

	s.emitter.Emit(ctx, ev)
	return true, out
}

// Remove unfavorites id. Absent ids are ignored but still persisted and
// notified, matching the cart.
func (s *Store) Remove(ctx context.Context, id any) persist.Outcome {
	key := domain.NormalizeID(id)

	s.mu.Lock()
	if i := indexOf(s.items, key); i >= 0 {
		s.items = append(s.items[:i], s.items[i+1:]...)
	}
	out, ev := s.commitLocked(ctx)
	s.mu.Unlock()

	s.emitter.Emit(ctx, ev)
	return out
}

// Toggle adds p when absent and removes it when present. It returns whether p
// is in the wishlist afterwards.
func (s *Store) Toggle(ctx context.Context, p domain.Product) (bool, persist.Outcome) {
	id := domain.NormalizeID(p.ID)
	if id == "" {
		return false, persist.Outcome{}
	}
	p.ID = id

	s.mu.Lock()
	in := false
	if i := indexOf(s.items, id); i >= 0 {
		s.items = append(s.items[:i], s.items[i+1:]...)
	} else {
		s.items = append(s.items, domain.NewWishlistItem(p, s.now()))
		in = true
	}
	out, ev := s.commitLocked(ctx)
	s.mu.Unlock()

	s.emitter.Emit(ctx, ev)
	return in, out
}

// IsInWishlist compares ids loosely, so 7 and "7" match.
func (s *Store) IsInWishlist(id any) bool {
	key := domain.NormalizeID(id)
	if key == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return indexOf(s.items, key) >= 0
}

// Clear empties the wishlist.
func (s *Store) Clear(ctx context.Context) persist.Outcome {
	s.mu.Lock()
	s.items = nil
	out, ev := s.commitLocked(ctx)
	s.mu.Unlock()

	s.emitter.Emit(ctx, ev)
	return out
}

// Items returns a copy of the entries in insertion order.
func (s *Store) Items() []domain.WishlistItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Count returns the number of entries.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Snapshot returns the current state as a wishlistUpdated payload.
func (s *Store) Snapshot() event.WishlistUpdated {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.snapshotLocked()
	return event.WishlistUpdated{Items: items, Count: len(items)}
}

// MoveToCart adds the entry for id to c with quantity 1 and removes it from
// the wishlist.
func (s *Store) MoveToCart(ctx context.Context, id any, c *cart.Store) (persist.Outcome, error) {
	key := domain.NormalizeID(id)

	s.mu.Lock()
	i := indexOf(s.items, key)
	if i < 0 {
		s.mu.Unlock()
		return persist.Outcome{}, apperrors.NotFound("El producto no está en la lista de deseos")
	}
	p := s.items[i].Product()
	s.mu.Unlock()

	cartOut := c.Add(ctx, p, 1, "")
	out := s.Remove(ctx, key)
	if !cartOut.Persisted {
		return cartOut, nil
	}
	return out, nil
}

func (s *Store) commitLocked(ctx context.Context) (persist.Outcome, event.WishlistUpdated) {
	items := s.snapshotLocked()
	out := s.list.Save(ctx, items)
	return out, event.WishlistUpdated{Items: s.snapshotLocked(), Count: len(items)}
}

func (s *Store) snapshotLocked() []domain.WishlistItem {
	out := make([]domain.WishlistItem, len(s.items))
	copy(out, s.items)
	return out
}
