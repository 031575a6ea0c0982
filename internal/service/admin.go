package service

import (
	"context"
	"fmt"

	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/domain"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/repository"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/pagination"
)

// LowStockThreshold is the stock at or below which an active product is
// reported as running low.
const LowStockThreshold = 5

// AdminRepos groups the repositories the admin panel reads.
type AdminRepos struct {
	Products     repository.ProductRepository
	Categories   repository.CategoryRepository
	Suppliers    repository.SupplierRepository
	Users        repository.UserRepository
	Orders       repository.OrderRepository
	Transactions repository.TransactionRepository
	Discounts    repository.DiscountRepository
	Notices      repository.NoticeRepository
	Inventory    repository.InventoryRepository
}

// Stats is the admin dashboard summary.
type Stats struct {
	Products            int   `json:"products"`
	ActiveProducts      int   `json:"active_products"`
	LowStock            int   `json:"low_stock"`
	OutOfStock          int   `json:"out_of_stock"`
	Users               int   `json:"users"`
	Orders              int   `json:"orders"`
	Revenue             int64 `json:"revenue"`
	PendingTransactions int   `json:"pending_transactions"`
	RejectedPayments    int   `json:"rejected_payments"`
}

// AdminService exposes read-only admin listings.
type AdminService struct {
	repos AdminRepos
}

// NewAdminService creates an admin service.
func NewAdminService(repos AdminRepos) *AdminService {
	return &AdminService{repos: repos}
}

// Products returns every product, inactive ones included.
func (s *AdminService) Products(ctx context.Context) ([]domain.Product, error) {
	return s.repos.Products.List(ctx, domain.ProductFilter{})
}

// Categories returns every category.
func (s *AdminService) Categories(ctx context.Context) ([]domain.Category, error) {
	return s.repos.Categories.List(ctx)
}

// Suppliers returns every supplier.
func (s *AdminService) Suppliers(ctx context.Context) ([]domain.Supplier, error) {
	return s.repos.Suppliers.List(ctx)
}

// Orders returns one page of orders, newest first.
func (s *AdminService) Orders(ctx context.Context, params pagination.Params) (pagination.Result[domain.Order], error) {
	orders, total, err := s.repos.Orders.List(ctx, params.Offset(), params.PerPage)
	if err != nil {
		return pagination.Result[domain.Order]{}, fmt.Errorf("list orders: %w", err)
	}
	return pagination.NewResult(orders, total, params), nil
}

// Transactions returns every transaction.
func (s *AdminService) Transactions(ctx context.Context) ([]domain.Transaction, error) {
	return s.repos.Transactions.List(ctx)
}

// DiscountCodes returns every discount code.
func (s *AdminService) DiscountCodes(ctx context.Context) ([]domain.DiscountCode, error) {
	return s.repos.Discounts.List(ctx)
}

// Notices returns every notice, expired ones included.
func (s *AdminService) Notices(ctx context.Context) ([]domain.Notice, error) {
	return s.repos.Notices.List(ctx)
}

// InventoryHistory returns the stock movements of productID, or of every
// product when productID is empty.
func (s *AdminService) InventoryHistory(ctx context.Context, productID string) ([]domain.InventoryMovement, error) {
	return s.repos.Inventory.List(ctx, domain.NormalizeID(productID))
}

// Stats computes the dashboard summary.
func (s *AdminService) Stats(ctx context.Context) (*Stats, error) {
	var st Stats

	products, err := s.repos.Products.List(ctx, domain.ProductFilter{})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	st.Products = len(products)
	for _, p := range products {
		if !p.Active {
			continue
		}
		st.ActiveProducts++
		switch {
		case p.Stock <= 0:
			st.OutOfStock++
		case p.Stock <= LowStockThreshold:
			st.LowStock++
		}
	}

	if st.Users, err = s.repos.Users.Count(ctx); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	orders, total, err := s.repos.Orders.List(ctx, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	st.Orders = total
	for _, o := range orders {
		st.Revenue += o.Total
	}

	txs, err := s.repos.Transactions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	for _, t := range txs {
		switch t.Status {
		case domain.TransactionStatusPending, domain.TransactionStatusAwaitingPayment:
			st.PendingTransactions++
		case domain.TransactionStatusRejected:
			st.RejectedPayments++
		}
	}
	return &st, nil
}
