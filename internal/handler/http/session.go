package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/domain"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/event"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/persist"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/service"
	apperrors "github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/errors"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/httputil"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/middleware"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/validator"
)

const unsavedWarning = "No se pudieron guardar los cambios; se mantienen solo en esta sesión"

// SessionHandler exposes the per-shopper cart and wishlist. The owner is
// resolved by SessionOwner.
type SessionHandler struct {
	sessions *service.SessionService
	checkout *service.CheckoutService
	logger   *slog.Logger
}

// NewSessionHandler creates a new cart and wishlist HTTP handler.
func NewSessionHandler(sessions *service.SessionService, checkout *service.CheckoutService, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{sessions: sessions, checkout: checkout, logger: logger}
}

// --- Request DTOs ---

// AddCartItemRequest is the JSON request body for adding a product to the cart.
// A missing or non-positive quantity adds one unit.
type AddCartItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity"`
	Note      string `json:"note" validate:"max=300"`
}

// UpdateCartItemRequest is the JSON request body for editing a cart line.
// Omitted fields are left unchanged.
type UpdateCartItemRequest struct {
	Quantity *int    `json:"quantity"`
	Note     *string `json:"note" validate:"omitempty,max=300"`
}

// ToggleWishlistRequest is the JSON request body for toggling a wishlist entry.
type ToggleWishlistRequest struct {
	ProductID string `json:"product_id" validate:"required"`
}

// CartCheckoutRequest is the JSON request body for checking out the cart.
type CartCheckoutRequest struct {
	Customer     domain.Customer `json:"customer" validate:"required"`
	DiscountCode string          `json:"discount_code,omitempty"`
}

// --- Response DTOs ---

type cartResponse struct {
	event.CartUpdated
	Persisted bool   `json:"persisted"`
	Warning   string `json:"warning,omitempty"`
}

type wishlistResponse struct {
	event.WishlistUpdated
	InWishlist *bool  `json:"in_wishlist,omitempty"`
	Persisted  bool   `json:"persisted"`
	Warning    string `json:"warning,omitempty"`
}

func newCartResponse(c event.CartUpdated, out persist.Outcome) cartResponse {
	resp := cartResponse{CartUpdated: c, Persisted: out.Persisted}
	if !out.Persisted {
		resp.Warning = unsavedWarning
	}
	return resp
}

func newWishlistResponse(wl event.WishlistUpdated, out persist.Outcome) wishlistResponse {
	resp := wishlistResponse{WishlistUpdated: wl, Persisted: out.Persisted}
	if !out.Persisted {
		resp.Warning = unsavedWarning
	}
	return resp
}

// --- Cart handlers ---

// GetCart handles GET /api/cart
func (h *SessionHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.sessions.Cart(r.Context(), ownerFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, c)
}

// AddCartItem handles POST /api/cart/items
func (h *SessionHandler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req AddCartItemRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	c, out, err := h.sessions.AddToCart(r.Context(), ownerFromContext(r.Context()), req.ProductID, req.Quantity, req.Note)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, newCartResponse(c, out))
}

// UpdateCartItem handles PUT /api/cart/items/{id}
func (h *SessionHandler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var req UpdateCartItemRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}
	if req.Quantity == nil && req.Note == nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("Debes indicar la cantidad o la nota"), h.logger)
		return
	}

	c, out, err := h.sessions.UpdateCartItem(r.Context(), ownerFromContext(r.Context()), chi.URLParam(r, "id"), req.Quantity, req.Note)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, newCartResponse(c, out))
}

// RemoveCartItem handles DELETE /api/cart/items/{id}
func (h *SessionHandler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	c, out, err := h.sessions.RemoveFromCart(r.Context(), ownerFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, newCartResponse(c, out))
}

// ClearCart handles DELETE /api/cart
func (h *SessionHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	c, out, err := h.sessions.ClearCart(r.Context(), ownerFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, newCartResponse(c, out))
}

// Checkout handles POST /api/cart/checkout. It opens a transaction for the
// current cart lines; the cart itself is left untouched.
func (h *SessionHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CartCheckoutRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	c, err := h.sessions.Cart(r.Context(), ownerFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if len(c.Items) == 0 {
		httputil.WriteError(w, r, apperrors.InvalidInput("El carrito está vacío"), h.logger)
		return
	}

	tx, err := h.checkout.CreateTransaction(r.Context(), middleware.UserIDFromContext(r.Context()), domain.CheckoutRequest{
		Customer:     req.Customer,
		Items:        domain.CheckoutItemsFromCart(c.Items),
		DiscountCode: req.DiscountCode,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, tx)
}

// --- Wishlist handlers ---

// GetWishlist handles GET /api/wishlist
func (h *SessionHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	wl, err := h.sessions.Wishlist(r.Context(), ownerFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, wl)
}

// ToggleWishlist handles POST /api/wishlist/toggle
func (h *SessionHandler) ToggleWishlist(w http.ResponseWriter, r *http.Request) {
	var req ToggleWishlistRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	in, wl, out, err := h.sessions.ToggleWishlist(r.Context(), ownerFromContext(r.Context()), req.ProductID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	resp := newWishlistResponse(wl, out)
	resp.InWishlist = &in
	httputil.WriteData(w, http.StatusOK, resp)
}

// RemoveWishlistItem handles DELETE /api/wishlist/{id}
func (h *SessionHandler) RemoveWishlistItem(w http.ResponseWriter, r *http.Request) {
	wl, out, err := h.sessions.RemoveFromWishlist(r.Context(), ownerFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, newWishlistResponse(wl, out))
}

// ClearWishlist handles DELETE /api/wishlist
func (h *SessionHandler) ClearWishlist(w http.ResponseWriter, r *http.Request) {
	wl, out, err := h.sessions.ClearWishlist(r.Context(), ownerFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, newWishlistResponse(wl, out))
}

// MoveToCart handles POST /api/wishlist/{id}/move-to-cart
func (h *SessionHandler) MoveToCart(w http.ResponseWriter, r *http.Request) {
	c, out, err := h.sessions.MoveToCart(r.Context(), ownerFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, newCartResponse(c, out))
}
