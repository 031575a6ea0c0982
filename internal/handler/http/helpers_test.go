package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/auth"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/event"
	paymock "github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/payment/mock"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/repository/memory"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/service"
	storemem "github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/storage/memory"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/health"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/httputil"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/logger"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/middleware"
)

const gatewayURL = "http://localhost:8080/mock-webpay"

type testServer struct {
	router http.Handler
	store  *storemem.Storage
	tokens *auth.TokenManager
	orders *memory.OrderRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	l := logger.Discard()
	seed := memory.Seed(time.Now())

	products := memory.NewProductRepository(seed.Products)
	categories := memory.NewCategoryRepository(seed.Categories)
	suppliers := memory.NewSupplierRepository(seed.Suppliers)
	users := memory.NewUserRepository()
	transactions := memory.NewTransactionRepository()
	orders := memory.NewOrderRepository()
	discounts := memory.NewDiscountRepository(seed.Codes)
	notices := memory.NewNoticeRepository(seed.Notices)
	inventory := memory.NewInventoryRepository()

	tokens := auth.NewTokenManager("handler-test-secret", time.Hour)
	producer := event.NewProducer(nil, l)
	store := storemem.New()

	authSvc := service.NewAuthService(users, tokens, l).WithCost(bcrypt.MinCost)
	require.NoError(t, authSvc.SeedAccounts(context.Background(), service.DefaultAccounts))

	catalog := service.NewCatalogService(products, categories)
	discountSvc := service.NewDiscountService(discounts, l)
	checkout := service.NewCheckoutService(service.CheckoutRepos{
		Products:     products,
		Transactions: transactions,
		Orders:       orders,
		Inventory:    inventory,
	}, discountSvc, paymock.NewProvider(), producer, gatewayURL, l)

	svcs := Services{
		Auth:      authSvc,
		Catalog:   catalog,
		Discounts: discountSvc,
		Notices:   service.NewNoticeService(notices),
		Checkout:  checkout,
		Admin: service.NewAdminService(service.AdminRepos{
			Products:     products,
			Categories:   categories,
			Suppliers:    suppliers,
			Users:        users,
			Orders:       orders,
			Transactions: transactions,
			Discounts:    discounts,
			Notices:      notices,
			Inventory:    inventory,
		}),
		Sessions: service.NewSessionService(catalog, store, producer, l),
	}

	router := NewRouter(svcs, health.NewHandler(), l, Options{
		Tokens:        tokens.Validator(),
		CORS:          middleware.DefaultCORSConfig(),
		PprofCIDRs:    []string{"127.0.0.0/8"},
		CatalogMaxAge: 60,
	})
	return &testServer{router: router, store: store, tokens: tokens, orders: orders}
}

type requestOption func(*http.Request)

func withGuest(id string) requestOption {
	return func(r *http.Request) { r.Header.Set("X-User-ID", id) }
}

func withToken(token string) requestOption {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func (s *testServer) do(t *testing.T, method, path string, body any, opts ...requestOption) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, opt := range opts {
		opt(req)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) doRaw(t *testing.T, method, path, contentType, body string, opts ...requestOption) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	for _, opt := range opts {
		opt(req)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var session struct {
		Token string `json:"token"`
	}
	decodeData(t, rec, &session)
	require.NotEmpty(t, session.Token)
	return session.Token
}

// decodeData unwraps the {"data": ...} envelope into dst.
func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, dst), rec.Body.String())
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) *httputil.ErrorResponse {
	t.Helper()
	var resp httputil.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	require.NotNil(t, resp.Error, rec.Body.String())
	return resp.Error
}
