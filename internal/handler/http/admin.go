package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/service"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/httputil"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/pagination"
)

// AdminHandler serves the read-only admin listings. Routes are mounted
// behind Auth and RequireRole("admin").
type AdminHandler struct {
	service *service.AdminService
	logger  *slog.Logger
}

// NewAdminHandler creates a new admin HTTP handler.
func NewAdminHandler(svc *service.AdminService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{service: svc, logger: logger}
}

// Products handles GET /api/admin/products
func (h *AdminHandler) Products(w http.ResponseWriter, r *http.Request) {
	writeList(w, r, h.logger, h.service.Products)
}

// Categories handles GET /api/admin/categories
func (h *AdminHandler) Categories(w http.ResponseWriter, r *http.Request) {
	writeList(w, r, h.logger, h.service.Categories)
}

// Suppliers handles GET /api/admin/suppliers
func (h *AdminHandler) Suppliers(w http.ResponseWriter, r *http.Request) {
	writeList(w, r, h.logger, h.service.Suppliers)
}

// Transactions handles GET /api/admin/transactions
func (h *AdminHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	writeList(w, r, h.logger, h.service.Transactions)
}

// DiscountCodes handles GET /api/admin/discount-codes
func (h *AdminHandler) DiscountCodes(w http.ResponseWriter, r *http.Request) {
	writeList(w, r, h.logger, h.service.DiscountCodes)
}

// Notices handles GET /api/admin/notices
func (h *AdminHandler) Notices(w http.ResponseWriter, r *http.Request) {
	writeList(w, r, h.logger, h.service.Notices)
}

// Orders handles GET /api/admin/orders?page=&per_page=
func (h *AdminHandler) Orders(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.Orders(r.Context(), pagination.FromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, page)
}

// InventoryHistory handles GET /api/admin/inventory-history?product_id=
func (h *AdminHandler) InventoryHistory(w http.ResponseWriter, r *http.Request) {
	movements, err := h.service.InventoryHistory(r.Context(), r.URL.Query().Get("product_id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, movements)
}

// Stats handles GET /api/admin/stats
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, stats)
}

func writeList[T any](w http.ResponseWriter, r *http.Request, l *slog.Logger, list func(context.Context) ([]T, error)) {
	items, err := list(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, l)
		return
	}
	if items == nil {
		items = []T{}
	}
	httputil.WriteData(w, http.StatusOK, items)
}
