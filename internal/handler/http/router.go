package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/domain"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/service"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/health"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/middleware"
)

const serviceName = "storefront"

// Services groups the application services the router exposes.
type Services struct {
	Auth      *service.AuthService
	Catalog   *service.CatalogService
	Discounts *service.DiscountService
	Notices   *service.NoticeService
	Checkout  *service.CheckoutService
	Admin     *service.AdminService
	Sessions  *service.SessionService
}

// Options carries the router settings that come from configuration.
type Options struct {
	Tokens     middleware.TokenValidator
	CORS       middleware.CORSConfig
	PprofCIDRs []string
	// CatalogMaxAge is the Cache-Control max-age, in seconds, of catalog reads.
	CatalogMaxAge int
	// AuthRateLimit throttles login and registration per client address.
	AuthRateLimit middleware.RateLimitConfig
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(svc Services, healthHandler *health.Handler, logger *slog.Logger, opts Options) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(serviceName))
	r.Use(middleware.Tracing(serviceName))
	r.Use(middleware.CORS(opts.CORS))
	r.Use(middleware.OptionalAuth(opts.Tokens))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, opts.PprofCIDRs, logger)

	catalogHandler := NewCatalogHandler(svc.Catalog, svc.Notices, svc.Discounts, logger)
	authHandler := NewAuthHandler(svc.Auth, logger)
	checkoutHandler := NewCheckoutHandler(svc.Checkout, logger)
	adminHandler := NewAdminHandler(svc.Admin, logger)
	sessionHandler := NewSessionHandler(svc.Sessions, svc.Checkout, logger)

	// Mock payment gateway page (HTML form posts)
	r.Get("/mock-webpay", checkoutHandler.GatewayPage)
	r.Post("/mock-webpay", checkoutHandler.GatewayDecision)

	r.Route("/api", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(opts.AuthRateLimit, logger))
			r.Post("/auth/login", authHandler.Login)
			r.Post("/auth/register", authHandler.Register)
		})
		r.With(middleware.Auth(opts.Tokens)).Get("/auth/me", authHandler.Me)

		r.Group(func(r chi.Router) {
			r.Use(middleware.CacheControl(opts.CatalogMaxAge))
			r.Get("/products", catalogHandler.ListProducts)
			r.Get("/products/home-featured", catalogHandler.Featured)
			r.Get("/products/{id}", catalogHandler.GetProduct)
			r.Get("/categories", catalogHandler.Categories)
		})

		r.Get("/notices/active", catalogHandler.ActiveNotices)
		r.Get("/discount-codes/validate", catalogHandler.ValidateDiscountCode)

		r.Post("/transactions", checkoutHandler.CreateTransaction)
		r.Get("/transactions/{id}", checkoutHandler.GetTransaction)
		r.Post("/webpay/create", checkoutHandler.CreateWebpay)
		r.Post("/webpay/commit", checkoutHandler.CommitWebpay)
		r.With(middleware.Auth(opts.Tokens)).Get("/orders", checkoutHandler.MyOrders)

		r.Route("/cart", func(r chi.Router) {
			r.Use(SessionOwner)

			r.Get("/", sessionHandler.GetCart)
			r.Delete("/", sessionHandler.ClearCart)
			r.Post("/items", sessionHandler.AddCartItem)
			r.Put("/items/{id}", sessionHandler.UpdateCartItem)
			r.Delete("/items/{id}", sessionHandler.RemoveCartItem)
			r.Post("/checkout", sessionHandler.Checkout)
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Use(SessionOwner)

			r.Get("/", sessionHandler.GetWishlist)
			r.Delete("/", sessionHandler.ClearWishlist)
			r.Post("/toggle", sessionHandler.ToggleWishlist)
			r.Delete("/{id}", sessionHandler.RemoveWishlistItem)
			r.Post("/{id}/move-to-cart", sessionHandler.MoveToCart)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.Auth(opts.Tokens))
			r.Use(middleware.RequireRole(domain.RoleAdmin))

			r.Get("/products", adminHandler.Products)
			r.Get("/categories", adminHandler.Categories)
			r.Get("/suppliers", adminHandler.Suppliers)
			r.Get("/orders", adminHandler.Orders)
			r.Get("/transactions", adminHandler.Transactions)
			r.Get("/discount-codes", adminHandler.DiscountCodes)
			r.Get("/notices", adminHandler.Notices)
			r.Get("/inventory-history", adminHandler.InventoryHistory)
			r.Get("/stats", adminHandler.Stats)
		})
	})

	return r
}
