package wishlist

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/cart"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/domain"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/event"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/storage"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/storage/memory"
	apperrors "github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/errors"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/logger"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) (*Store, *memory.Storage) {
	t.Helper()
	mem := memory.New()
	s := New(context.Background(), mem,
		WithLogger(logger.Discard()),
		WithClock(func() time.Time { return fixedNow }),
	)
	return s, mem
}

var zapatilla = domain.Product{ID: "7", Name: "Zapatilla", Price: 39990, OriginalPrice: 49990, Discount: 20, Brand: "Andes"}

func TestStore_ToggleScenario(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	in, out := s.Toggle(ctx, zapatilla)
	assert.True(t, in)
	assert.True(t, out.Persisted)
	assert.True(t, s.IsInWishlist(7))
	assert.True(t, s.IsInWishlist("7"))

	in, _ = s.Toggle(ctx, zapatilla)
	assert.False(t, in)
	assert.False(t, s.IsInWishlist("7"))
	assert.Equal(t, 0, s.Count())
}

func TestStore_AddRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestStore(t)

	notified := 0
	s.Subscribe(func(context.Context, event.WishlistUpdated) { notified++ })

	added, _ := s.Add(ctx, zapatilla)
	assert.True(t, added)
	added, _ = s.Add(ctx, domain.Product{ID: "7", Name: "Otra"})
	assert.False(t, added)

	assert.Equal(t, 1, s.Count())
	assert.Equal(t, 1, notified)

	raw, _, _ := mem.Get(ctx, storage.KeyWishlist)
	var stored []domain.WishlistItem
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	require.Len(t, stored, 1)
	assert.Equal(t, "Zapatilla", stored[0].Name)
	assert.Equal(t, int64(49990), stored[0].OriginalPrice)
	assert.True(t, fixedNow.Equal(stored[0].AddedAt))
}

func TestStore_AddWithoutID(t *testing.T) {
	s, _ := newTestStore(t)
	added, _ := s.Add(context.Background(), domain.Product{Name: "Sin id"})
	assert.False(t, added)
	assert.False(t, s.IsInWishlist(""))
}

func TestStore_RemoveAndClear(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestStore(t)
	s.Add(ctx, zapatilla)
	s.Add(ctx, domain.Product{ID: "8", Name: "Mochila", Price: 25990})

	s.Remove(ctx, 7.0)
	assert.Equal(t, []string{"8"}, ids(s.Items()))

	s.Remove(ctx, "nope")
	assert.Equal(t, 1, s.Count())

	s.Clear(ctx)
	assert.Equal(t, 0, s.Count())
	raw, _, _ := mem.Get(ctx, storage.KeyWishlist)
	assert.Equal(t, "[]", raw)
}

func TestStore_EventCarriesItemsAndCount(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	var last event.WishlistUpdated
	s.Subscribe(func(_ context.Context, e event.WishlistUpdated) { last = e })

	s.Add(ctx, zapatilla)
	s.Add(ctx, domain.Product{ID: "8", Name: "Mochila"})

	assert.Equal(t, 2, last.Count)
	assert.Equal(t, []string{"7", "8"}, ids(last.Items))
	assert.Equal(t, last, s.Snapshot())
}

func TestStore_QuotaExceededKeepsMemoryState(t *testing.T) {
	ctx := context.Background()
	mem := memory.NewWithQuota(10)
	s := New(ctx, mem, WithLogger(logger.Discard()))

	in, out := s.Toggle(ctx, zapatilla)
	assert.True(t, in)
	assert.False(t, out.Persisted)
	assert.True(t, s.IsInWishlist("7"))
}

func TestNew_HydratesWithoutDuplicates(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	require.NoError(t, mem.Set(ctx, storage.KeyWishlist,
		`[{"id":"1","name":"A","price":10,"added_at":"2026-01-01T00:00:00Z"},{"id":"1","name":"A2","price":10,"added_at":"2026-01-02T00:00:00Z"},{"id":"2","name":"B","price":20,"added_at":"2026-01-03T00:00:00Z"}]`))

	s := New(ctx, mem, WithLogger(logger.Discard()))
	items := s.Items()
	assert.Equal(t, []string{"1", "2"}, ids(items))
	assert.Equal(t, "A", items[0].Name)
}

func TestStore_MoveToCart(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestStore(t)
	c := cart.New(ctx, mem, cart.WithLogger(logger.Discard()))

	s.Add(ctx, zapatilla)

	_, err := s.MoveToCart(ctx, 7, c)
	require.NoError(t, err)

	assert.False(t, s.IsInWishlist("7"))
	item, ok := c.Item("7")
	require.True(t, ok)
	assert.Equal(t, 1, item.Quantity)
	assert.Equal(t, int64(39990), item.Price)

	_, err = s.MoveToCart(ctx, 7, c)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func ids(items []domain.WishlistItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}
