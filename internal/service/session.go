package service

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/cart"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/event"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/persist"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/storage"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/wishlist"
	apperrors "github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/errors"
)

// DefaultIdleTTL is how long an unused session stays cached before it is
// dropped and later rehydrated from storage.
const DefaultIdleTTL = 30 * time.Minute

// Session holds the cart and wishlist of one shopper.
type Session struct {
	Owner    string
	Cart     *cart.Store
	Wishlist *wishlist.Store

	// mu serializes service operations on this session so a mutation and the
	// snapshot returned for it are taken together.
	mu       sync.Mutex
	lastUsed time.Time
}

// OwnerForUser is the session owner key of an authenticated user.
func OwnerForUser(userID string) string {
	return "user:" + userID
}

// OwnerForGuest is the session owner key of an anonymous shopper.
func OwnerForGuest(id string) string {
	return "guest:" + id
}

// SessionService keeps one cart and wishlist per owner, persisted under the
// owner's namespace of the shared storage. Stores are built on first use and
// cached until they sit idle longer than the idle TTL.
type SessionService struct {
	catalog  *CatalogService
	store    storage.Storage
	producer *event.Producer
	logger   *slog.Logger
	idleTTL  time.Duration
	now      func() time.Time

	mu        sync.Mutex
	sessions  map[string]*Session
	lastSweep time.Time
}

// SessionOption configures a SessionService.
type SessionOption func(*SessionService)

// WithIdleTTL sets how long an unused session stays cached. Zero or less keeps
// DefaultIdleTTL.
func WithIdleTTL(d time.Duration) SessionOption {
	return func(s *SessionService) {
		if d > 0 {
			s.idleTTL = d
		}
	}
}

// WithClock replaces the time source used for idle eviction.
func WithClock(now func() time.Time) SessionOption {
	return func(s *SessionService) { s.now = now }
}

// NewSessionService creates a session service over store.
func NewSessionService(catalog *CatalogService, store storage.Storage, producer *event.Producer, logger *slog.Logger, opts ...SessionOption) *SessionService {
	s := &SessionService{
		catalog:  catalog,
		store:    store,
		producer: producer,
		logger:   logger,
		idleTTL:  DefaultIdleTTL,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.lastSweep = s.now()
	return s
}

// Cached reports how many sessions are held in memory.
func (s *SessionService) Cached() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Get returns the session of owner, hydrating it from storage the first time
// or after it was evicted for being idle.
func (s *SessionService) Get(ctx context.Context, owner string) (*Session, error) {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return nil, apperrors.Unauthorized("Debes identificarte para usar el carrito")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.sweepLocked(now)
	if sess, ok := s.sessions[owner]; ok {
		sess.lastUsed = now
		return sess, nil
	}

	ns := storage.Namespaced(s.store, owner)
	l := s.logger.With(slog.String("owner", owner))
	sess := &Session{
		Owner:    owner,
		Cart:     cart.New(ctx, ns, cart.WithLogger(l)),
		Wishlist: wishlist.New(ctx, ns, wishlist.WithLogger(l)),
		lastUsed: now,
	}
	if s.producer.Enabled() {
		sess.Cart.Subscribe(s.producer.CartSubscriber(owner))
		sess.Wishlist.Subscribe(s.producer.WishlistSubscriber(owner))
	}
	s.sessions[owner] = sess
	return sess, nil
}

// sweepLocked drops sessions unused for longer than the idle TTL. It runs at
// most once per TTL/2 so lookups stay cheap.
func (s *SessionService) sweepLocked(now time.Time) {
	if now.Sub(s.lastSweep) < s.idleTTL/2 {
		return
	}
	s.lastSweep = now
	for owner, sess := range s.sessions {
		if now.Sub(sess.lastUsed) > s.idleTTL {
			delete(s.sessions, owner)
		}
	}
}

// lock returns the session of owner with its operation lock held.
func (s *SessionService) lock(ctx context.Context, owner string) (*Session, error) {
	sess, err := s.Get(ctx, owner)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	return sess, nil
}

// Cart returns the cart snapshot of owner.
func (s *SessionService) Cart(ctx context.Context, owner string) (event.CartUpdated, error) {
	sess, err := s.lock(ctx, owner)
	if err != nil {
		return event.CartUpdated{}, err
	}
	defer sess.mu.Unlock()
	return sess.Cart.Snapshot(), nil
}

// AddToCart adds a catalog product to the cart of owner. The line is built
// from the catalog, so price and name cannot be supplied by the caller.
func (s *SessionService) AddToCart(ctx context.Context, owner, productID string, quantity int, note string) (event.CartUpdated, persist.Outcome, error) {
	sess, err := s.lock(ctx, owner)
	if err != nil {
		return event.CartUpdated{}, persist.Outcome{}, err
	}
	defer sess.mu.Unlock()
	p, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return event.CartUpdated{}, persist.Outcome{}, err
	}
	out := sess.Cart.Add(ctx, *p, quantity, strings.TrimSpace(note))
	return sess.Cart.Snapshot(), out, nil
}

// UpdateCartItem changes the quantity and/or note of a cart line. A nil
// argument leaves that field alone; a quantity of zero or less removes the line.
func (s *SessionService) UpdateCartItem(ctx context.Context, owner, productID string, quantity *int, note *string) (event.CartUpdated, persist.Outcome, error) {
	sess, err := s.lock(ctx, owner)
	if err != nil {
		return event.CartUpdated{}, persist.Outcome{}, err
	}
	defer sess.mu.Unlock()
	if _, ok := sess.Cart.Item(productID); !ok {
		return event.CartUpdated{}, persist.Outcome{}, apperrors.NotFound("El producto no está en el carrito")
	}

	out := persist.Ok
	if note != nil {
		out = sess.Cart.UpdateNote(ctx, productID, strings.TrimSpace(*note))
	}
	if quantity != nil {
		out = sess.Cart.UpdateQuantity(ctx, productID, *quantity)
	}
	return sess.Cart.Snapshot(), out, nil
}

// RemoveFromCart removes a line. Removing a missing line is not an error.
func (s *SessionService) RemoveFromCart(ctx context.Context, owner, productID string) (event.CartUpdated, persist.Outcome, error) {
	sess, err := s.lock(ctx, owner)
	if err != nil {
		return event.CartUpdated{}, persist.Outcome{}, err
	}
	defer sess.mu.Unlock()
	out := sess.Cart.Remove(ctx, productID)
	return sess.Cart.Snapshot(), out, nil
}

// ClearCart empties the cart of owner.
func (s *SessionService) ClearCart(ctx context.Context, owner string) (event.CartUpdated, persist.Outcome, error) {
	sess, err := s.lock(ctx, owner)
	if err != nil {
		return event.CartUpdated{}, persist.Outcome{}, err
	}
	defer sess.mu.Unlock()
	out := sess.Cart.Clear(ctx)
	return sess.Cart.Snapshot(), out, nil
}

// Wishlist returns the wishlist snapshot of owner.
func (s *SessionService) Wishlist(ctx context.Context, owner string) (event.WishlistUpdated, error) {
	sess, err := s.lock(ctx, owner)
	if err != nil {
		return event.WishlistUpdated{}, err
	}
	defer sess.mu.Unlock()
	return sess.Wishlist.Snapshot(), nil
}

// ToggleWishlist adds a catalog product to the wishlist of owner or removes
// it when already present. It reports whether the product ended up in the list.
func (s *SessionService) ToggleWishlist(ctx context.Context, owner, productID string) (bool, event.WishlistUpdated, persist.Outcome, error) {
	sess, err := s.lock(ctx, owner)
	if err != nil {
		return false, event.WishlistUpdated{}, persist.Outcome{}, err
	}
	defer sess.mu.Unlock()
	if sess.Wishlist.IsInWishlist(productID) {
		out := sess.Wishlist.Remove(ctx, productID)
		return false, sess.Wishlist.Snapshot(), out, nil
	}
	p, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return false, event.WishlistUpdated{}, persist.Outcome{}, err
	}
	in, out := sess.Wishlist.Toggle(ctx, *p)
	return in, sess.Wishlist.Snapshot(), out, nil
}

// RemoveFromWishlist removes an entry. Removing a missing entry is not an error.
func (s *SessionService) RemoveFromWishlist(ctx context.Context, owner, productID string) (event.WishlistUpdated, persist.Outcome, error) {
	sess, err := s.lock(ctx, owner)
	if err != nil {
		return event.WishlistUpdated{}, persist.Outcome{}, err
	}
	defer sess.mu.Unlock()
	out := sess.Wishlist.Remove(ctx, productID)
	return sess.Wishlist.Snapshot(), out, nil
}

// ClearWishlist empties the wishlist of owner.
func (s *SessionService) ClearWishlist(ctx context.Context, owner string) (event.WishlistUpdated, persist.Outcome, error) {
	sess, err := s.lock(ctx, owner)
	if err != nil {
		return event.WishlistUpdated{}, persist.Outcome{}, err
	}
	defer sess.mu.Unlock()
	out := sess.Wishlist.Clear(ctx)
	return sess.Wishlist.Snapshot(), out, nil
}

// MoveToCart moves a wishlist entry into the cart with quantity 1.
func (s *SessionService) MoveToCart(ctx context.Context, owner, productID string) (event.CartUpdated, persist.Outcome, error) {
	sess, err := s.lock(ctx, owner)
	if err != nil {
		return event.CartUpdated{}, persist.Outcome{}, err
	}
	defer sess.mu.Unlock()
	out, err := sess.Wishlist.MoveToCart(ctx, productID, sess.Cart)
	if err != nil {
		return event.CartUpdated{}, persist.Outcome{}, err
	}
	return sess.Cart.Snapshot(), out, nil
}
