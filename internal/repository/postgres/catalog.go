// Package postgres backs the catalog (products and categories) with
// PostgreSQL through pgx. Everything else the mock backend stores stays in
// memory.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/domain"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/database"
	apperrors "github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/errors"
)

const productColumns = `id, name, description, price, original_price, discount, image_url, brand, ` +
	`COALESCE(category_id, ''), supplier_id, stock, featured, active, created_at, updated_at`

// ProductRepository implements repository.ProductRepository using PostgreSQL.
type ProductRepository struct {
	db database.DBTX
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(db database.DBTX) *ProductRepository {
	return &ProductRepository{db: db}
}

// List returns products matching the filter ordered by creation time.
func (r *ProductRepository) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	var (
		conditions []string
		args       []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.OnlyActive {
		conditions = append(conditions, "active = TRUE")
	}
	if f.CategoryID != "" {
		conditions = append(conditions, "category_id = "+arg(f.CategoryID))
	}
	if f.Search != "" {
		p := arg("%" + f.Search + "%")
		conditions = append(conditions, fmt.Sprintf("(name ILIKE %s OR description ILIKE %s OR brand ILIKE %s)", p, p, p))
	}
	if f.MinPrice > 0 {
		conditions = append(conditions, "price >= "+arg(f.MinPrice))
	}
	if f.MaxPrice > 0 {
		conditions = append(conditions, "price <= "+arg(f.MaxPrice))
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}
	query := fmt.Sprintf(`SELECT %s FROM products %s ORDER BY created_at ASC, id ASC`, productColumns, where)

	ctx, end := database.TraceQuery(ctx, "ListProducts", query)
	rows, err := r.db.Query(ctx, query, args...)
	end(err)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return scanProducts(rows)
}

// Featured returns up to limit active featured products.
func (r *ProductRepository) Featured(ctx context.Context, limit int) ([]domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE featured AND active ORDER BY created_at ASC, id ASC LIMIT $1`, productColumns)

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list featured products: %w", err)
	}
	return scanProducts(rows)
}

// GetByID retrieves a product by its ID.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1`, productColumns)

	p, err := scanProduct(r.db.QueryRow(ctx, query, domain.NormalizeID(id)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("Producto no encontrado")
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// AdjustStock adds delta to the stock of id in a single conditional update.
func (r *ProductRepository) AdjustStock(ctx context.Context, id string, delta int) (int, error) {
	query := `
		UPDATE products
		SET stock = stock + $1, updated_at = NOW()
		WHERE id = $2 AND stock + $1 >= 0
		RETURNING stock`

	ctx, end := database.TraceQuery(ctx, "AdjustStock", query)
	var stock int
	err := r.db.QueryRow(ctx, query, delta, id).Scan(&stock)
	end(err)
	if errors.Is(err, pgx.ErrNoRows) {
		// Either the product does not exist or the stock would go negative.
		p, getErr := r.GetByID(ctx, id)
		if getErr != nil {
			return 0, getErr
		}
		return p.Stock, apperrors.Conflict(fmt.Sprintf("Stock insuficiente para %s", p.Name))
	}
	if err != nil {
		return 0, fmt.Errorf("adjust stock: %w", err)
	}
	return stock, nil
}

// Upsert inserts p or replaces the stored row with the same id.
func (r *ProductRepository) Upsert(ctx context.Context, p *domain.Product) error {
	query := `
		INSERT INTO products (id, name, description, price, original_price, discount, image_url, brand,
		                      category_id, supplier_id, stock, featured, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, description = EXCLUDED.description, price = EXCLUDED.price,
			original_price = EXCLUDED.original_price, discount = EXCLUDED.discount,
			image_url = EXCLUDED.image_url, brand = EXCLUDED.brand, category_id = EXCLUDED.category_id,
			supplier_id = EXCLUDED.supplier_id, stock = EXCLUDED.stock, featured = EXCLUDED.featured,
			active = EXCLUDED.active, updated_at = EXCLUDED.updated_at`

	_, err := r.db.Exec(ctx, query,
		p.ID, p.Name, p.Description, p.Price, p.OriginalPrice, p.Discount, p.ImageURL, p.Brand,
		p.CategoryID, p.SupplierID, p.Stock, p.Featured, p.Active, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert product %s: %w", p.ID, err)
	}
	return nil
}

func scanProducts(rows pgx.Rows) ([]domain.Product, error) {
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}
	return products, nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.OriginalPrice,
		&p.Discount,
		&p.ImageURL,
		&p.Brand,
		&p.CategoryID,
		&p.SupplierID,
		&p.Stock,
		&p.Featured,
		&p.Active,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CategoryRepository implements repository.CategoryRepository using PostgreSQL.
type CategoryRepository struct {
	db database.DBTX
}

// NewCategoryRepository creates a new PostgreSQL-backed category repository.
func NewCategoryRepository(db database.DBTX) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// List returns every category by name.
func (r *CategoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, slug, description, active FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.Active); err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category rows: %w", err)
	}
	return categories, nil
}

// Upsert inserts c or replaces the stored row with the same id.
func (r *CategoryRepository) Upsert(ctx context.Context, c *domain.Category) error {
	query := `
		INSERT INTO categories (id, name, slug, description, active)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, slug = EXCLUDED.slug,
			description = EXCLUDED.description, active = EXCLUDED.active`

	if _, err := r.db.Exec(ctx, query, c.ID, c.Name, c.Slug, c.Description, c.Active); err != nil {
		return fmt.Errorf("upsert category %s: %w", c.ID, err)
	}
	return nil
}
