package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/domain"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/database"
	apperrors "github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/errors"
)

var productCols = []string{
	"id", "name", "description", "price", "original_price", "discount", "image_url", "brand",
	"category_id", "supplier_id", "stock", "featured", "active", "created_at", "updated_at",
}

func newProductTestFixture(t *testing.T) (*ProductRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewProductRepository(mock), mock
}

func productRow(rows *pgxmock.Rows, id, name string, price int64, stock int) *pgxmock.Rows {
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	return rows.AddRow(id, name, "", price, int64(0), 0, "", "Cumbre", "cat-accesorios", "sup-outdoor", stock, true, true, now, now)
}

func TestProductRepository_List_BuildsFilters(t *testing.T) {
	repo, mock := newProductTestFixture(t)

	rows := productRow(pgxmock.NewRows(productCols), "4", "Mochila", 34990, 15)
	mock.ExpectQuery(`SELECT .+ FROM products WHERE active = TRUE AND category_id = \$1 AND \(name ILIKE \$2 OR description ILIKE \$2 OR brand ILIKE \$2\) AND price <= \$3`).
		WithArgs("cat-accesorios", "%mochi%", int64(40000)).
		WillReturnRows(rows)

	got, err := repo.List(context.Background(), domain.ProductFilter{
		OnlyActive: true,
		CategoryID: "cat-accesorios",
		Search:     "mochi",
		MaxPrice:   40000,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Mochila", got[0].Name)
	assert.Equal(t, int64(34990), got[0].Price)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_List_EmptyIsNotNil(t *testing.T) {
	repo, mock := newProductTestFixture(t)

	mock.ExpectQuery(`SELECT .+ FROM products ORDER BY`).
		WillReturnRows(pgxmock.NewRows(productCols))

	got, err := repo.List(context.Background(), domain.ProductFilter{})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestProductRepository_List_QueryError(t *testing.T) {
	repo, mock := newProductTestFixture(t)

	mock.ExpectQuery(`SELECT .+ FROM products`).WillReturnError(errors.New("connection refused"))

	_, err := repo.List(context.Background(), domain.ProductFilter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list products")
}

func TestProductRepository_Featured(t *testing.T) {
	repo, mock := newProductTestFixture(t)

	rows := productRow(pgxmock.NewRows(productCols), "1", "Polera", 12990, 40)
	productRow(rows, "3", "Jockey", 9990, 60)
	mock.ExpectQuery(`WHERE featured AND active .+ LIMIT \$1`).WithArgs(8).WillReturnRows(rows)

	got, err := repo.Featured(context.Background(), 8)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_GetByID(t *testing.T) {
	repo, mock := newProductTestFixture(t)

	mock.ExpectQuery(`FROM products WHERE id = \$1`).
		WithArgs("4").
		WillReturnRows(productRow(pgxmock.NewRows(productCols), "4", "Mochila", 34990, 15))
	mock.ExpectQuery(`FROM products WHERE id = \$1`).
		WithArgs("999").
		WillReturnError(pgx.ErrNoRows)

	p, err := repo.GetByID(context.Background(), " 4 ")
	require.NoError(t, err)
	assert.Equal(t, 15, p.Stock)

	_, err = repo.GetByID(context.Background(), "999")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_AdjustStock(t *testing.T) {
	repo, mock := newProductTestFixture(t)

	mock.ExpectQuery(`(?s)UPDATE products\s+SET stock = stock \+ \$1`).
		WithArgs(-2, "4").
		WillReturnRows(pgxmock.NewRows([]string{"stock"}).AddRow(13))

	stock, err := repo.AdjustStock(context.Background(), "4", -2)
	require.NoError(t, err)
	assert.Equal(t, 13, stock)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_AdjustStock_Insufficient(t *testing.T) {
	repo, mock := newProductTestFixture(t)

	mock.ExpectQuery(`UPDATE products`).
		WithArgs(-20, "4").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`FROM products WHERE id = \$1`).
		WithArgs("4").
		WillReturnRows(productRow(pgxmock.NewRows(productCols), "4", "Mochila", 34990, 15))

	stock, err := repo.AdjustStock(context.Background(), "4", -20)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Equal(t, 15, stock)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_Upsert(t *testing.T) {
	repo, mock := newProductTestFixture(t)

	mock.ExpectExec(`(?s)INSERT INTO products .+ON CONFLICT \(id\) DO UPDATE`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Upsert(context.Background(), &domain.Product{ID: "1", Name: "Polera", Price: 12990}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepository(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewCategoryRepository(mock)

	mock.ExpectQuery(`SELECT id, name, slug, description, active FROM categories`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "slug", "description", "active"}).
			AddRow("cat-hogar", "Hogar", "hogar", "", true))
	mock.ExpectExec(`INSERT INTO categories`).
		WithArgs("cat-ropa", "Ropa", "ropa", "", true).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	got, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "hogar", got[0].Slug)

	require.NoError(t, repo.Upsert(context.Background(), &domain.Category{ID: "cat-ropa", Name: "Ropa", Slug: "ropa", Active: true}))
	assert.NoError(t, mock.ExpectationsWereMet())
}
