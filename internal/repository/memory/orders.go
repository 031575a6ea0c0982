package memory

import (
	"context"
	"sync"

	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/domain"
	apperrors "github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/errors"
)

// FirstOrderNumber is the number given to the first order.
const FirstOrderNumber = 1001

// TransactionRepository implements repository.TransactionRepository.
type TransactionRepository struct {
	mu  sync.RWMutex
	txs []domain.Transaction
}

// NewTransactionRepository creates an empty transaction repository.
func NewTransactionRepository() *TransactionRepository {
	return &TransactionRepository{}
}

// Create stores t.
func (r *TransactionRepository) Create(_ context.Context, t *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.txs = append(r.txs, cloneTransaction(*t))
	return nil
}

// GetByID returns the transaction with id.
func (r *TransactionRepository) GetByID(_ context.Context, id string) (*domain.Transaction, error) {
	return r.find(func(t *domain.Transaction) bool { return t.ID == id })
}

// GetByToken returns the transaction holding payment token.
func (r *TransactionRepository) GetByToken(_ context.Context, token string) (*domain.Transaction, error) {
	if token == "" {
		return nil, apperrors.NotFound("Transacción no encontrada")
	}
	return r.find(func(t *domain.Transaction) bool { return t.Token == token })
}

func (r *TransactionRepository) find(match func(*domain.Transaction) bool) (*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.txs {
		if match(&r.txs[i]) {
			t := cloneTransaction(r.txs[i])
			return &t, nil
		}
	}
	return nil, apperrors.NotFound("Transacción no encontrada")
}

// Update replaces the stored transaction with the same id.
func (r *TransactionRepository) Update(_ context.Context, t *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.txs {
		if r.txs[i].ID == t.ID {
			r.txs[i] = cloneTransaction(*t)
			return nil
		}
	}
	return apperrors.NotFound("Transacción no encontrada")
}

// List returns transactions newest first.
func (r *TransactionRepository) List(_ context.Context) ([]domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Transaction, 0, len(r.txs))
	for i := len(r.txs) - 1; i >= 0; i-- {
		out = append(out, cloneTransaction(r.txs[i]))
	}
	return out, nil
}

func cloneTransaction(t domain.Transaction) domain.Transaction {
	t.Items = append([]domain.OrderItem(nil), t.Items...)
	return t
}

// OrderRepository implements repository.OrderRepository.
type OrderRepository struct {
	mu     sync.RWMutex
	orders []domain.Order
	next   int
}

// NewOrderRepository creates an empty order repository.
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{next: FirstOrderNumber}
}

// Create numbers and stores o.
func (r *OrderRepository) Create(_ context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o.Number = r.next
	r.next++
	stored := *o
	stored.Items = append([]domain.OrderItem(nil), o.Items...)
	r.orders = append(r.orders, stored)
	return nil
}

// List returns a page of orders, newest first, and the total count.
func (r *OrderRepository) List(_ context.Context, offset, limit int) ([]domain.Order, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := len(r.orders)
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = total
	}
	out := make([]domain.Order, 0, min(limit, total))
	for i := total - 1 - offset; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.orders[i])
	}
	return out, total, nil
}

// ListByUser returns the orders placed by userID, newest first.
func (r *OrderRepository) ListByUser(_ context.Context, userID string) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Order
	for i := len(r.orders) - 1; i >= 0; i-- {
		if r.orders[i].UserID == userID {
			out = append(out, r.orders[i])
		}
	}
	return out, nil
}

// GetByID returns the order with id.
func (r *OrderRepository) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.orders {
		if r.orders[i].ID == id {
			o := r.orders[i]
			o.Items = append([]domain.OrderItem(nil), o.Items...)
			return &o, nil
		}
	}
	return nil, apperrors.NotFound("Pedido no encontrado")
}
