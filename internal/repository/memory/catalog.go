// Package memory implements the repositories over in-process slices guarded
// by RWMutexes. Data lives for the lifetime of the server process.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/domain"
	apperrors "github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/errors"
)

// ProductRepository implements repository.ProductRepository.
type ProductRepository struct {
	mu       sync.RWMutex
	products []domain.Product
}

// NewProductRepository creates a product repository holding a copy of products.
func NewProductRepository(products []domain.Product) *ProductRepository {
	cp := make([]domain.Product, len(products))
	copy(cp, products)
	return &ProductRepository{products: cp}
}

// List returns products matching filter in catalog order.
func (r *ProductRepository) List(_ context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]domain.Product, 0, len(r.products))
	for _, p := range r.products {
		if f.OnlyActive && !p.Active {
			continue
		}
		if f.CategoryID != "" && p.CategoryID != f.CategoryID {
			continue
		}
		if f.MinPrice > 0 && p.Price < f.MinPrice {
			continue
		}
		if f.MaxPrice > 0 && p.Price > f.MaxPrice {
			continue
		}
		if search != "" && !matches(p, search) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func matches(p domain.Product, search string) bool {
	return strings.Contains(strings.ToLower(p.Name), search) ||
		strings.Contains(strings.ToLower(p.Description), search) ||
		strings.Contains(strings.ToLower(p.Brand), search)
}

// Featured returns up to limit active featured products.
func (r *ProductRepository) Featured(_ context.Context, limit int) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Product, 0, limit)
	for _, p := range r.products {
		if !p.Featured || !p.Active {
			continue
		}
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, p)
	}
	return out, nil
}

// GetByID returns the product with id.
func (r *ProductRepository) GetByID(_ context.Context, id string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id = domain.NormalizeID(id)
	for i := range r.products {
		if r.products[i].ID == id {
			p := r.products[i]
			return &p, nil
		}
	}
	return nil, apperrors.NotFound("Producto no encontrado")
}

// AdjustStock adds delta to the stock of id.
func (r *ProductRepository) AdjustStock(_ context.Context, id string, delta int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id = domain.NormalizeID(id)
	for i := range r.products {
		if r.products[i].ID != id {
			continue
		}
		next := r.products[i].Stock + delta
		if next < 0 {
			return r.products[i].Stock, apperrors.Conflict(fmt.Sprintf("Stock insuficiente para %s", r.products[i].Name))
		}
		r.products[i].Stock = next
		r.products[i].UpdatedAt = time.Now().UTC()
		return next, nil
	}
	return 0, apperrors.NotFound("Producto no encontrado")
}

// CategoryRepository implements repository.CategoryRepository.
type CategoryRepository struct {
	mu         sync.RWMutex
	categories []domain.Category
}

// NewCategoryRepository creates a category repository.
func NewCategoryRepository(categories []domain.Category) *CategoryRepository {
	cp := make([]domain.Category, len(categories))
	copy(cp, categories)
	return &CategoryRepository{categories: cp}
}

// List returns every category.
func (r *CategoryRepository) List(_ context.Context) ([]domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Category, len(r.categories))
	copy(out, r.categories)
	return out, nil
}

// SupplierRepository implements repository.SupplierRepository.
type SupplierRepository struct {
	mu        sync.RWMutex
	suppliers []domain.Supplier
}

// NewSupplierRepository creates a supplier repository.
func NewSupplierRepository(suppliers []domain.Supplier) *SupplierRepository {
	cp := make([]domain.Supplier, len(suppliers))
	copy(cp, suppliers)
	return &SupplierRepository{suppliers: cp}
}

// List returns every supplier.
func (r *SupplierRepository) List(_ context.Context) ([]domain.Supplier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Supplier, len(r.suppliers))
	copy(out, r.suppliers)
	return out, nil
}
