package apiclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/domain"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/storage"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/storage/memory"
	apperrors "github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/errors"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/httpclient"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/logger"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time          { return f.t }
func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *memory.Storage, *fakeClock) {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)

	mem := memory.New()
	clock := &fakeClock{t: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)}
	c := New(server.URL+"/", mem, WithLogger(logger.Discard()), WithClock(clock.Now))
	return c, mem, clock
}

func TestRequest_UnwrapsDataEnvelope(t *testing.T) {
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/things", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		_, _ = w.Write([]byte(`{"data":{"name":"ok"}}`))
	})

	var out struct{ Name string }
	require.NoError(t, c.Get(context.Background(), "/api/things", &out))
	assert.Equal(t, "ok", out.Name)
}

func TestRequest_PlainBodyAndEmptyResponse(t *testing.T) {
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, `{"quantity":3}`, string(body))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		_, _ = w.Write([]byte(`{"quantity":3}`))
	})
	ctx := context.Background()

	var out map[string]int
	require.NoError(t, c.Put(ctx, "/x", map[string]int{"quantity": 3}, &out))
	assert.Equal(t, 3, out["quantity"])
	require.NoError(t, c.Patch(ctx, "/x", map[string]int{"quantity": 3}, nil))
	require.NoError(t, c.Delete(ctx, "/x", &out))
}

func TestRequest_InjectsBearerToken(t *testing.T) {
	var auth atomic.Value
	c, mem, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		auth.Store(r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{}`))
	})
	ctx := context.Background()

	require.NoError(t, c.Get(ctx, "/a", nil))
	assert.Equal(t, "", auth.Load())

	require.NoError(t, mem.Set(ctx, storage.KeyAuthToken, "tok-123"))
	require.NoError(t, c.Get(ctx, "/a", nil))
	assert.Equal(t, "Bearer tok-123", auth.Load())
}

func TestRequest_ErrorCarriesServerMessage(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantMsg    string
		wantTarget error
	}{
		{"structured", http.StatusNotFound, `{"error":{"code":"NOT_FOUND","message":"Producto no encontrado"}}`, "Producto no encontrado", apperrors.ErrNotFound},
		{"top level message", http.StatusBadRequest, `{"message":"Faltan campos requeridos"}`, "Faltan campos requeridos", apperrors.ErrInvalidInput},
		{"error string", http.StatusUnauthorized, `{"error":"Credenciales inválidas"}`, "Credenciales inválidas", apperrors.ErrUnauthorized},
		{"no body", http.StatusBadGateway, ``, "Error HTTP 502", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			err := c.Get(context.Background(), "/fail", nil)
			require.Error(t, err)

			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.wantMsg, appErr.Message)
			assert.Equal(t, tt.status, appErr.Status)
			if tt.wantTarget != nil {
				assert.ErrorIs(t, err, tt.wantTarget)
			}
		})
	}
}

func TestRequest_NoRetryOnServerError(t *testing.T) {
	var calls atomic.Int32
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	require.Error(t, c.Get(context.Background(), "/boom", nil))
	assert.Equal(t, int32(1), calls.Load())
}

func TestDefaultHTTPConfig_BoundsEachRequest(t *testing.T) {
	cfg := DefaultHTTPConfig()
	assert.Equal(t, 15*time.Second, cfg.Timeout)
	assert.Zero(t, cfg.MaxRetries)

	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	t.Cleanup(server.Close)
	t.Cleanup(func() { close(release) })

	cfg.Timeout = 50 * time.Millisecond
	c := New(server.URL, memory.New(), WithDoer(httpclient.New(cfg)), WithLogger(logger.Discard()))

	start := time.Now()
	err := c.Get(context.Background(), "/api/products", nil)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestRequest_CircuitBreakerKeepsServerMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"code":"SERVICE_UNAVAILABLE","message":"Servicio no disponible"}}`))
	}))
	defer server.Close()

	cb := httpclient.NewCircuitBreakerClient(
		httpclient.New(DefaultHTTPConfig()),
		httpclient.DefaultCircuitBreakerConfig("apiclient-test"),
		logger.Discard(),
	)
	c := New(server.URL, memory.New(), WithDoer(cb), WithLogger(logger.Discard()))

	err := c.Get(context.Background(), "/x", nil)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Servicio no disponible", appErr.Message)
}

func TestUpload_SendsMultipart(t *testing.T) {
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Polera", r.FormValue("name"))
		f, hdr, err := r.FormFile("image")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "polera.png", hdr.Filename)
		assert.Equal(t, "PNGDATA", string(data))
		_, _ = w.Write([]byte(`{"data":{"url":"/uploads/polera.png"}}`))
	})

	var out struct {
		URL string `json:"url"`
	}
	err := c.Upload(context.Background(), "/api/admin/uploads",
		map[string]string{"name": "Polera"},
		[]File{{Field: "image", Filename: "polera.png", Content: strings.NewReader("PNGDATA")}},
		&out,
	)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/polera.png", out.URL)
}

const productsBody = `{"data":[
	{"id":1,"nombre":"Polera","precio":"$12.990","imagen":"/img/polera.jpg"},
	{"product_id":"p2","name":"Gorro","price":5990},
	{"name":"Sin id","price":1}
]}`

func TestGetProducts_CachesForFiveMinutes(t *testing.T) {
	var calls atomic.Int32
	c, _, clock := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(productsBody))
	})
	ctx := context.Background()

	products, err := c.GetProducts(ctx, false)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, domain.Product{ID: "1", Name: "Polera", Price: 12990, ImageURL: "/img/polera.jpg", Active: true}, products[0])
	assert.Equal(t, "p2", products[1].ID)

	clock.Advance(4*time.Minute + 59*time.Second)
	_, err = c.GetProducts(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())

	clock.Advance(time.Second)
	_, err = c.GetProducts(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGetProducts_ForceRefreshBypassesCache(t *testing.T) {
	var calls atomic.Int32
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(productsBody))
	})
	ctx := context.Background()

	_, _ = c.GetProducts(ctx, false)
	_, _ = c.GetProducts(ctx, true)
	_, _ = c.GetProducts(ctx, false)
	assert.Equal(t, int32(2), calls.Load())

	c.InvalidateCache()
	_, _ = c.GetProducts(ctx, false)
	assert.Equal(t, int32(3), calls.Load())
}

func TestGetProducts_ErrorIsNotCached(t *testing.T) {
	var calls atomic.Int32
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(productsBody))
	})
	ctx := context.Background()

	_, err := c.GetProducts(ctx, false)
	require.Error(t, err)
	products, err := c.GetProducts(ctx, false)
	require.NoError(t, err)
	assert.Len(t, products, 2)
}

func TestGetProducts_ReturnsCopies(t *testing.T) {
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(productsBody))
	})
	ctx := context.Background()

	first, _ := c.GetProducts(ctx, false)
	first[0].Name = "mutated"
	second, _ := c.GetProducts(ctx, false)
	assert.Equal(t, "Polera", second[0].Name)
}

func TestSearchProductsAndProduct(t *testing.T) {
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/products":
			assert.Equal(t, "poleras", r.URL.Query().Get("category"))
			assert.Equal(t, "10000", r.URL.Query().Get("max_price"))
			_, _ = w.Write([]byte(productsBody))
		case "/api/products/home-featured":
			_, _ = w.Write([]byte(`{"data":[{"id":"f1","name":"Destacado","price":100}]}`))
		case "/api/products/p2":
			_, _ = w.Write([]byte(`{"data":{"id":"p2","name":"Gorro","price":5990}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	found, err := c.SearchProducts(ctx, domain.ProductFilter{CategoryID: "poleras", MaxPrice: 10000})
	require.NoError(t, err)
	assert.Len(t, found, 2)

	featured, err := c.GetFeaturedProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, "f1", featured[0].ID)

	p, err := c.GetProduct(ctx, "p2")
	require.NoError(t, err)
	assert.Equal(t, int64(5990), p.Price)
}
