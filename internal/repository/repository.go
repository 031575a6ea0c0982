// Package repository defines the storage interfaces of the mock backend. The
// memory package keeps seeded in-process arrays; postgres backs the catalog.
package repository

import (
	"context"

	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/domain"
)

// ProductRepository reads the catalog and moves stock.
type ProductRepository interface {
	List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	Featured(ctx context.Context, limit int) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	// AdjustStock adds delta to the product stock and returns the new value.
	// A result below zero fails with a conflict and leaves stock unchanged.
	AdjustStock(ctx context.Context, id string, delta int) (int, error)
}

// CategoryRepository lists product categories.
type CategoryRepository interface {
	List(ctx context.Context) ([]domain.Category, error)
}

// SupplierRepository lists suppliers.
type SupplierRepository interface {
	List(ctx context.Context) ([]domain.Supplier, error)
}

// UserRepository stores accounts.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Count(ctx context.Context) (int, error)
}

// TransactionRepository stores checkout attempts.
type TransactionRepository interface {
	Create(ctx context.Context, t *domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	GetByToken(ctx context.Context, token string) (*domain.Transaction, error)
	Update(ctx context.Context, t *domain.Transaction) error
	List(ctx context.Context) ([]domain.Transaction, error)
}

// OrderRepository stores paid orders.
type OrderRepository interface {
	// Create assigns the next order number and stores o.
	Create(ctx context.Context, o *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, offset, limit int) ([]domain.Order, int, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
}

// DiscountRepository stores discount codes.
type DiscountRepository interface {
	GetByCode(ctx context.Context, code string) (*domain.DiscountCode, error)
	List(ctx context.Context) ([]domain.DiscountCode, error)
	// IncrementUses records one redemption of code.
	IncrementUses(ctx context.Context, code string) error
}

// NoticeRepository stores storefront banners.
type NoticeRepository interface {
	List(ctx context.Context) ([]domain.Notice, error)
}

// InventoryRepository records stock movements.
type InventoryRepository interface {
	Record(ctx context.Context, m *domain.InventoryMovement) error
	List(ctx context.Context, productID string) ([]domain.InventoryMovement, error)
}
