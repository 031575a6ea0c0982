package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/domain"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/repository"
	apperrors "github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/errors"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/slug"
)

// FeaturedLimit caps the home page product strip.
const FeaturedLimit = 8

// ProductQuery holds the public catalog filters. Category accepts a category
// id, slug or name.
type ProductQuery struct {
	Category string
	Search   string
	MinPrice int64
	MaxPrice int64
}

// CatalogService serves the public catalog.
type CatalogService struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
}

// NewCatalogService creates a catalog service.
func NewCatalogService(products repository.ProductRepository, categories repository.CategoryRepository) *CatalogService {
	return &CatalogService{products: products, categories: categories}
}

// ListProducts returns the active products matching q. An unknown category
// yields an empty list.
func (s *CatalogService) ListProducts(ctx context.Context, q ProductQuery) ([]domain.Product, error) {
	if q.MinPrice < 0 || q.MaxPrice < 0 {
		return nil, apperrors.InvalidInput("Los precios no pueden ser negativos")
	}
	if q.MaxPrice > 0 && q.MinPrice > q.MaxPrice {
		return nil, apperrors.InvalidInput("El precio mínimo no puede ser mayor al máximo")
	}

	filter := domain.ProductFilter{
		Search:     strings.TrimSpace(q.Search),
		MinPrice:   q.MinPrice,
		MaxPrice:   q.MaxPrice,
		OnlyActive: true,
	}
	if q.Category != "" {
		id, ok, err := s.resolveCategory(ctx, q.Category)
		if err != nil {
			return nil, err
		}
		if !ok {
			return []domain.Product{}, nil
		}
		filter.CategoryID = id
	}

	products, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// Featured returns the home page products.
func (s *CatalogService) Featured(ctx context.Context) ([]domain.Product, error) {
	products, err := s.products.Featured(ctx, FeaturedLimit)
	if err != nil {
		return nil, fmt.Errorf("list featured products: %w", err)
	}
	return products, nil
}

// GetProduct returns an active product.
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	id = domain.NormalizeID(id)
	if id == "" {
		return nil, apperrors.InvalidInput("El id del producto es requerido")
	}
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.Active {
		return nil, apperrors.NotFound("Producto no encontrado")
	}
	return p, nil
}

// Categories returns the active categories.
func (s *CatalogService) Categories(ctx context.Context) ([]domain.Category, error) {
	all, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	out := make([]domain.Category, 0, len(all))
	for _, c := range all {
		if c.Active {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *CatalogService) resolveCategory(ctx context.Context, ref string) (string, bool, error) {
	ref = strings.TrimSpace(ref)
	all, err := s.categories.List(ctx)
	if err != nil {
		return "", false, fmt.Errorf("list categories: %w", err)
	}
	for _, c := range all {
		if c.ID == ref || slug.Matches(c.Slug, ref) || slug.Matches(c.Name, ref) {
			return c.ID, true, nil
		}
	}
	return "", false, nil
}
