package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/service"
	apperrors "github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/errors"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/httputil"
)

// CatalogHandler serves the public catalog, notices and discount lookups.
type CatalogHandler struct {
	catalog   *service.CatalogService
	notices   *service.NoticeService
	discounts *service.DiscountService
	logger    *slog.Logger
}

// NewCatalogHandler creates a new catalog HTTP handler.
func NewCatalogHandler(catalog *service.CatalogService, notices *service.NoticeService, discounts *service.DiscountService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, notices: notices, discounts: discounts, logger: logger}
}

// ListProducts handles GET /api/products
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	minPrice, err := priceParam(q.Get("min_price"), "min_price")
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	maxPrice, err := priceParam(q.Get("max_price"), "max_price")
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	products, err := h.catalog.ListProducts(r.Context(), service.ProductQuery{
		Category: q.Get("category"),
		Search:   q.Get("search"),
		MinPrice: minPrice,
		MaxPrice: maxPrice,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, products)
}

// Featured handles GET /api/products/home-featured
func (h *CatalogHandler) Featured(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.Featured(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, products)
}

// GetProduct handles GET /api/products/{id}
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, p)
}

// Categories handles GET /api/categories
func (h *CatalogHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.Categories(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, categories)
}

// ActiveNotices handles GET /api/notices/active
func (h *CatalogHandler) ActiveNotices(w http.ResponseWriter, r *http.Request) {
	notices, err := h.notices.Active(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, notices)
}

// ValidateDiscountCode handles GET /api/discount-codes/validate?code=&subtotal=
// An unusable code is still a 200: the body says why it does not apply.
func (h *CatalogHandler) ValidateDiscountCode(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	subtotal, err := priceParam(q.Get("subtotal"), "subtotal")
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	v, err := h.discounts.Validate(r.Context(), q.Get("code"), subtotal)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, v)
}

// priceParam parses an optional non-negative CLP amount.
func priceParam(raw, name string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return 0, apperrors.InvalidInput("El parámetro " + name + " debe ser un monto válido")
	}
	return v, nil
}
