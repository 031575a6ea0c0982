package apiclient

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/domain"
)

// GetProducts returns the catalog. The list is cached for ProductsCacheTTL;
// forceRefresh skips the cache and stores the fresh result.
func (c *Client) GetProducts(ctx context.Context, forceRefresh bool) ([]domain.Product, error) {
	if forceRefresh {
		cacheRequests.WithLabelValues(productsCacheKey, "bypass").Inc()
	} else if v, ok := c.cache.get(productsCacheKey, c.now(), ProductsCacheTTL); ok {
		cacheRequests.WithLabelValues(productsCacheKey, "hit").Inc()
		return copyProducts(v.([]domain.Product)), nil
	} else {
		cacheRequests.WithLabelValues(productsCacheKey, "miss").Inc()
	}

	products, err := c.fetchProducts(ctx, "/api/products")
	if err != nil {
		return nil, err
	}
	c.cache.set(productsCacheKey, products, c.now())
	return copyProducts(products), nil
}

// InvalidateCache drops every cached response.
func (c *Client) InvalidateCache() {
	c.cache.clear()
}

// SearchProducts queries the catalog with filters. Results are not cached.
func (c *Client) SearchProducts(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	q := url.Values{}
	if f.CategoryID != "" {
		q.Set("category", f.CategoryID)
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.MinPrice > 0 {
		q.Set("min_price", strconv.FormatInt(f.MinPrice, 10))
	}
	if f.MaxPrice > 0 {
		q.Set("max_price", strconv.FormatInt(f.MaxPrice, 10))
	}
	path := "/api/products"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	return c.fetchProducts(ctx, path)
}

// GetFeaturedProducts returns the products shown on the home page.
func (c *Client) GetFeaturedProducts(ctx context.Context) ([]domain.Product, error) {
	return c.fetchProducts(ctx, "/api/products/home-featured")
}

// GetProduct returns one product by id.
func (c *Client) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	var raw map[string]any
	if err := c.Get(ctx, "/api/products/"+url.PathEscape(id), &raw); err != nil {
		return domain.Product{}, err
	}
	return domain.NormalizeProduct(raw)
}

// fetchProducts decodes a product array through the normalization boundary.
// Entries that cannot be normalized are logged and skipped.
func (c *Client) fetchProducts(ctx context.Context, path string) ([]domain.Product, error) {
	var raw []map[string]any
	if err := c.Get(ctx, path, &raw); err != nil {
		return nil, err
	}

	products := make([]domain.Product, 0, len(raw))
	for _, r := range raw {
		p, err := domain.NormalizeProduct(r)
		if err != nil {
			c.logger.WarnContext(ctx, "skipping malformed product",
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
			continue
		}
		products = append(products, p)
	}
	return products, nil
}

func copyProducts(in []domain.Product) []domain.Product {
	out := make([]domain.Product, len(in))
	copy(out, in)
	return out
}
