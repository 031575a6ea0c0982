package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/domain"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/service"
	apperrors "github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/errors"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/httputil"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/middleware"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/validator"
)

// CheckoutHandler handles transactions, the webpay flow and the mock gateway page.
type CheckoutHandler struct {
	service *service.CheckoutService
	logger  *slog.Logger
}

// NewCheckoutHandler creates a new checkout HTTP handler.
func NewCheckoutHandler(svc *service.CheckoutService, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{service: svc, logger: logger}
}

// --- Request DTOs ---

// CreateWebpayRequest is the JSON request body for opening a payment session.
type CreateWebpayRequest struct {
	TransactionID string `json:"transaction_id" validate:"required"`
	ReturnURL     string `json:"return_url" validate:"omitempty,url"`
}

// CommitWebpayRequest is the JSON request body for settling a payment session.
type CommitWebpayRequest struct {
	Token string `json:"token" validate:"required"`
}

// --- Handlers ---

// CreateTransaction handles POST /api/transactions
func (h *CheckoutHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req domain.CheckoutRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	tx, err := h.service.CreateTransaction(r.Context(), middleware.UserIDFromContext(r.Context()), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, tx)
}

// GetTransaction handles GET /api/transactions/{id}
func (h *CheckoutHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := h.service.GetTransaction(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, tx)
}

// CreateWebpay handles POST /api/webpay/create
func (h *CheckoutHandler) CreateWebpay(w http.ResponseWriter, r *http.Request) {
	var req CreateWebpayRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	init, err := h.service.CreateWebpay(r.Context(), req.TransactionID, req.ReturnURL)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, init)
}

// CommitWebpay handles POST /api/webpay/commit
func (h *CheckoutHandler) CommitWebpay(w http.ResponseWriter, r *http.Request) {
	var req CommitWebpayRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	res, err := h.service.CommitWebpay(r.Context(), req.Token)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, res)
}

// MyOrders handles GET /api/orders
func (h *CheckoutHandler) MyOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.OrdersForUser(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, orders)
}

// GatewayPage handles GET /mock-webpay?token_ws=
func (h *CheckoutHandler) GatewayPage(w http.ResponseWriter, r *http.Request) {
	token := gatewayToken(r)
	tx, err := h.service.GatewayTransaction(r.Context(), token)
	if err != nil {
		h.renderGatewayError(w, r, err)
		return
	}
	if tx.Status != domain.TransactionStatusAwaitingPayment {
		h.renderGatewayError(w, r, apperrors.Conflict("La transacción no tiene un pago pendiente"))
		return
	}

	renderPage(w, http.StatusOK, gatewayTmpl, newGatewayView(token, tx))
}

// GatewayDecision handles POST /mock-webpay with token_ws and decision=approve|reject.
// The shopper is redirected to the return URL when the transaction has one.
func (h *CheckoutHandler) GatewayDecision(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderGatewayError(w, r, apperrors.InvalidInput("Formulario inválido"))
		return
	}
	token := gatewayToken(r)
	decision := r.PostFormValue("decision")
	if decision != "approve" && decision != "reject" {
		h.renderGatewayError(w, r, apperrors.InvalidInput("Decisión inválida"))
		return
	}

	approved := decision == "approve"
	redirect, err := h.service.Decide(r.Context(), token, approved)
	if err != nil {
		h.renderGatewayError(w, r, err)
		return
	}
	if redirect != "" {
		http.Redirect(w, r, redirect, http.StatusSeeOther)
		return
	}

	renderPage(w, http.StatusOK, decisionTmpl, decisionView{Token: token, Approved: approved})
}

func (h *CheckoutHandler) renderGatewayError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatus(err)
	message := apperrors.GenericMessage
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Status < http.StatusInternalServerError {
		message = appErr.Message
	} else {
		h.logger.ErrorContext(r.Context(), "mock gateway error",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
		)
	}
	renderPage(w, status, errorTmpl, errorView{Message: message})
}

// gatewayToken reads token_ws from the form or query string.
func gatewayToken(r *http.Request) string {
	if t := r.FormValue("token_ws"); t != "" {
		return t
	}
	return r.URL.Query().Get("token")
}
