package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/domain"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/event"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/payment"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/repository"
	apperrors "github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/errors"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/tracing"
)

const tracerName = "github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/service"

// CheckoutRepos groups the repositories the checkout flow writes to.
type CheckoutRepos struct {
	Products     repository.ProductRepository
	Transactions repository.TransactionRepository
	Orders       repository.OrderRepository
	Inventory    repository.InventoryRepository
}

// CheckoutService runs the transaction and mock webpay flow: a transaction is
// priced from the catalog, a gateway session is opened for it, and committing
// the session charges the provider and turns the transaction into an order.
type CheckoutService struct {
	repos      CheckoutRepos
	discounts  *DiscountService
	provider   payment.Provider
	producer   *event.Producer
	gatewayURL string
	logger     *slog.Logger
	now        func() time.Time

	// commitMu serializes commits so a token is charged at most once.
	commitMu sync.Mutex
}

// NewCheckoutService creates a checkout service. gatewayURL is the address of
// the mock webpay page returned by CreateWebpay.
func NewCheckoutService(
	repos CheckoutRepos,
	discounts *DiscountService,
	prov payment.Provider,
	producer *event.Producer,
	gatewayURL string,
	logger *slog.Logger,
) *CheckoutService {
	return &CheckoutService{
		repos:      repos,
		discounts:  discounts,
		provider:   prov,
		producer:   producer,
		gatewayURL: gatewayURL,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// CreateTransaction prices req against the catalog and stores a pending
// transaction. Client-side prices are ignored. Stock is checked here, not when
// items are added to the cart.
func (s *CheckoutService) CreateTransaction(ctx context.Context, userID string, req domain.CheckoutRequest) (_ *domain.Transaction, err error) {
	ctx, span := tracing.Tracer(tracerName).Start(ctx, "checkout.create_transaction")
	defer func() { tracing.End(span, err) }()

	if len(req.Items) == 0 {
		return nil, apperrors.InvalidInput("El carrito está vacío")
	}

	lines, err := mergeLines(req.Items)
	if err != nil {
		return nil, err
	}

	items := make([]domain.OrderItem, 0, len(lines))
	for _, line := range lines {
		p, err := s.repos.Products.GetByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.NotFound(fmt.Sprintf("Producto %s no encontrado", line.ProductID))
			}
			return nil, fmt.Errorf("get product %s: %w", line.ProductID, err)
		}
		if !p.Active {
			return nil, apperrors.InvalidInput(fmt.Sprintf("%s ya no está disponible", p.Name))
		}
		if !p.InStock(line.Quantity) {
			return nil, apperrors.Conflict(fmt.Sprintf("Stock insuficiente para %s (disponible: %d)", p.Name, p.Stock))
		}
		items = append(items, domain.OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  line.Quantity,
			Note:      strings.TrimSpace(line.Note),
		})
	}

	subtotal := domain.SumItems(items)
	var discount int64
	code := domain.NormalizeCode(req.DiscountCode)
	if code != "" {
		v, err := s.discounts.Resolve(ctx, code, subtotal)
		if err != nil {
			return nil, err
		}
		discount = v.DiscountAmount
	}

	now := s.now()
	tx := &domain.Transaction{
		ID:           uuid.New().String(),
		BuyOrder:     "BO-" + strings.ToUpper(uuid.New().String()[:8]),
		UserID:       userID,
		Customer:     req.Customer,
		Items:        items,
		Subtotal:     subtotal,
		Discount:     discount,
		Total:        domain.ApplyDiscount(subtotal, discount),
		DiscountCode: code,
		Status:       domain.TransactionStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repos.Transactions.Create(ctx, tx); err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	s.logger.InfoContext(ctx, "transaction created",
		slog.String("transaction_id", tx.ID),
		slog.String("buy_order", tx.BuyOrder),
		slog.Int64("total", tx.Total),
	)
	return tx, nil
}

// GetTransaction returns the transaction with id.
func (s *CheckoutService) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	return s.repos.Transactions.GetByID(ctx, id)
}

// CreateWebpay opens a gateway session for a transaction. Calling it again
// before the commit replaces the token.
func (s *CheckoutService) CreateWebpay(ctx context.Context, transactionID, returnURL string) (*domain.WebpayInit, error) {
	if strings.TrimSpace(transactionID) == "" {
		return nil, apperrors.InvalidInput("El id de la transacción es requerido")
	}
	if returnURL != "" {
		u, err := url.Parse(returnURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, apperrors.InvalidInput("URL de retorno inválida")
		}
	}

	tx, err := s.repos.Transactions.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if tx.Closed() {
		return nil, apperrors.Conflict("La transacción ya fue procesada")
	}

	tx.Token = strings.ReplaceAll(uuid.New().String(), "-", "")
	tx.ReturnURL = returnURL
	tx.Decision = ""
	tx.Status = domain.TransactionStatusAwaitingPayment
	tx.UpdatedAt = s.now()
	if err := s.repos.Transactions.Update(ctx, tx); err != nil {
		return nil, fmt.Errorf("update transaction for webpay: %w", err)
	}

	s.logger.InfoContext(ctx, "webpay session created", slog.String("transaction_id", tx.ID))
	return &domain.WebpayInit{Token: tx.Token, URL: s.gatewayURL}, nil
}

// GatewayTransaction returns the transaction behind a gateway token.
func (s *CheckoutService) GatewayTransaction(ctx context.Context, token string) (*domain.Transaction, error) {
	if strings.TrimSpace(token) == "" {
		return nil, apperrors.InvalidInput("Token requerido")
	}
	return s.repos.Transactions.GetByToken(ctx, token)
}

// Decide records the shopper's choice on the gateway page and returns where to
// send them next: the return URL with token_ws appended, or "" when the
// transaction has none.
func (s *CheckoutService) Decide(ctx context.Context, token string, approve bool) (string, error) {
	tx, err := s.GatewayTransaction(ctx, token)
	if err != nil {
		return "", err
	}
	if tx.Status != domain.TransactionStatusAwaitingPayment {
		return "", apperrors.Conflict("La transacción no tiene un pago pendiente")
	}

	tx.Decision = domain.DecisionRejected
	if approve {
		tx.Decision = domain.DecisionApproved
	}
	tx.UpdatedAt = s.now()
	if err := s.repos.Transactions.Update(ctx, tx); err != nil {
		return "", fmt.Errorf("record gateway decision: %w", err)
	}

	if tx.ReturnURL == "" {
		return "", nil
	}
	u, err := url.Parse(tx.ReturnURL)
	if err != nil {
		return "", fmt.Errorf("parse return url: %w", err)
	}
	q := u.Query()
	q.Set("token_ws", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// CommitWebpay settles a gateway session. A rejected decision or a declined
// charge closes the transaction as rejected; otherwise stock is taken, the
// discount code is consumed and an order is created. Committing a settled
// token again returns the same result.
func (s *CheckoutService) CommitWebpay(ctx context.Context, token string) (_ *domain.WebpayResult, err error) {
	ctx, span := tracing.Tracer(tracerName).Start(ctx, "checkout.commit_webpay")
	defer func() { tracing.End(span, err) }()

	if strings.TrimSpace(token) == "" {
		return nil, apperrors.InvalidInput("Token requerido")
	}

	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	tx, err := s.repos.Transactions.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if tx.Closed() {
		return s.result(ctx, tx)
	}
	if tx.Status != domain.TransactionStatusAwaitingPayment {
		return nil, apperrors.Conflict("La transacción no tiene un pago iniciado")
	}

	if tx.Decision == domain.DecisionRejected {
		return s.reject(ctx, tx, "Pago rechazado en la pasarela")
	}

	charge, err := s.provider.Charge(ctx, &payment.ChargeInput{
		Amount:      tx.Total,
		BuyOrder:    tx.BuyOrder,
		Description: fmt.Sprintf("Compra %s", tx.BuyOrder),
		Metadata:    map[string]string{"transaction_id": tx.ID},
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "payment provider error",
			slog.String("transaction_id", tx.ID),
			slog.String("provider", s.provider.Name()),
			slog.String("error", err.Error()),
		)
		return s.reject(ctx, tx, "No se pudo procesar el pago")
	}
	if !charge.Succeeded() {
		return s.reject(ctx, tx, charge.FailureReason)
	}
	tx.PaymentID = charge.ProviderPaymentID

	if err := s.takeStock(ctx, tx); err != nil {
		s.refund(ctx, tx)
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Status < 500 {
			return s.reject(ctx, tx, appErr.Message)
		}
		return nil, err
	}

	if tx.DiscountCode != "" {
		if err := s.discounts.Redeem(ctx, tx.DiscountCode); err != nil {
			s.logger.ErrorContext(ctx, "failed to redeem discount code",
				slog.String("transaction_id", tx.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	order := &domain.Order{
		ID:            uuid.New().String(),
		TransactionID: tx.ID,
		UserID:        tx.UserID,
		Customer:      tx.Customer,
		Items:         tx.Items,
		Subtotal:      tx.Subtotal,
		Discount:      tx.Discount,
		Total:         tx.Total,
		Status:        domain.OrderStatusConfirmed,
		PaymentID:     tx.PaymentID,
		CreatedAt:     s.now(),
	}
	if err := s.repos.Orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	tx.Status = domain.TransactionStatusPaid
	tx.OrderID = order.ID
	tx.UpdatedAt = s.now()
	if err := s.repos.Transactions.Update(ctx, tx); err != nil {
		return nil, fmt.Errorf("mark transaction paid: %w", err)
	}

	if err := s.producer.PublishOrderCreated(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.created event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "webpay committed",
		slog.String("transaction_id", tx.ID),
		slog.Int("order_number", order.Number),
		slog.Int64("total", order.Total),
	)
	return resultOf(tx, order), nil
}

// OrdersForUser returns the orders placed by userID, newest first.
func (s *CheckoutService) OrdersForUser(ctx context.Context, userID string) ([]domain.Order, error) {
	orders, err := s.repos.Orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user orders: %w", err)
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}

// takeStock decrements stock for every line and records the movements. On a
// failure the lines already taken are put back.
func (s *CheckoutService) takeStock(ctx context.Context, tx *domain.Transaction) error {
	taken := make([]domain.OrderItem, 0, len(tx.Items))
	for _, item := range tx.Items {
		after, err := s.repos.Products.AdjustStock(ctx, item.ProductID, -item.Quantity)
		if err != nil {
			s.restoreStock(ctx, taken)
			return err
		}
		taken = append(taken, item)

		m := &domain.InventoryMovement{
			ID:          uuid.New().String(),
			ProductID:   item.ProductID,
			ProductName: item.Name,
			Change:      -item.Quantity,
			StockAfter:  after,
			Reason:      domain.MovementSale,
			Reference:   tx.BuyOrder,
			CreatedAt:   s.now(),
		}
		if err := s.repos.Inventory.Record(ctx, m); err != nil {
			s.logger.ErrorContext(ctx, "failed to record inventory movement",
				slog.String("product_id", item.ProductID),
				slog.String("error", err.Error()),
			)
		}
	}
	return nil
}

func (s *CheckoutService) restoreStock(ctx context.Context, items []domain.OrderItem) {
	for _, item := range items {
		if _, err := s.repos.Products.AdjustStock(ctx, item.ProductID, item.Quantity); err != nil {
			s.logger.ErrorContext(ctx, "failed to restore stock",
				slog.String("product_id", item.ProductID),
				slog.Int("quantity", item.Quantity),
				slog.String("error", err.Error()),
			)
		}
	}
}

func (s *CheckoutService) refund(ctx context.Context, tx *domain.Transaction) {
	res, err := s.provider.Refund(ctx, &payment.RefundInput{
		ProviderPaymentID: tx.PaymentID,
		Amount:            tx.Total,
		Reason:            "stock unavailable at commit",
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "refund failed",
			slog.String("transaction_id", tx.ID),
			slog.String("error", err.Error()),
		)
		return
	}
	s.logger.WarnContext(ctx, "charge refunded",
		slog.String("transaction_id", tx.ID),
		slog.String("refund_id", res.ProviderRefundID),
	)
}

func (s *CheckoutService) reject(ctx context.Context, tx *domain.Transaction, reason string) (*domain.WebpayResult, error) {
	tx.Status = domain.TransactionStatusRejected
	tx.Failure = reason
	tx.UpdatedAt = s.now()
	if err := s.repos.Transactions.Update(ctx, tx); err != nil {
		return nil, fmt.Errorf("mark transaction rejected: %w", err)
	}
	s.logger.WarnContext(ctx, "webpay rejected",
		slog.String("transaction_id", tx.ID),
		slog.String("reason", reason),
	)
	return resultOf(tx, nil), nil
}

func (s *CheckoutService) result(ctx context.Context, tx *domain.Transaction) (*domain.WebpayResult, error) {
	if tx.OrderID == "" {
		return resultOf(tx, nil), nil
	}
	order, err := s.repos.Orders.GetByID(ctx, tx.OrderID)
	if err != nil {
		return nil, fmt.Errorf("get order for transaction: %w", err)
	}
	return resultOf(tx, order), nil
}

func resultOf(tx *domain.Transaction, order *domain.Order) *domain.WebpayResult {
	return &domain.WebpayResult{
		Status:        tx.Status,
		TransactionID: tx.ID,
		BuyOrder:      tx.BuyOrder,
		Amount:        tx.Total,
		Reason:        tx.Failure,
		Order:         order,
	}
}

// mergeLines folds repeated product ids into one line.
func mergeLines(in []domain.CheckoutItem) ([]domain.CheckoutItem, error) {
	out := make([]domain.CheckoutItem, 0, len(in))
	index := make(map[string]int, len(in))
	for _, item := range in {
		id := domain.NormalizeID(item.ProductID)
		if id == "" {
			return nil, apperrors.InvalidInput("Cada producto debe tener un id")
		}
		if item.Quantity <= 0 {
			return nil, apperrors.InvalidInput(fmt.Sprintf("Cantidad inválida para el producto %s", id))
		}
		if i, ok := index[id]; ok {
			out[i].Quantity += item.Quantity
			continue
		}
		item.ProductID = id
		index[id] = len(out)
		out = append(out, item)
	}
	return out, nil
}
