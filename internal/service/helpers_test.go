package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/auth"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/domain"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/event"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/payment"
	paymock "github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/payment/mock"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/repository/memory"
	pkgkafka "github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/kafka"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/logger"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	products     *memory.ProductRepository
	categories   *memory.CategoryRepository
	suppliers    *memory.SupplierRepository
	users        *memory.UserRepository
	transactions *memory.TransactionRepository
	orders       *memory.OrderRepository
	discountRepo *memory.DiscountRepository
	notices      *memory.NoticeRepository
	inventory    *memory.InventoryRepository

	auth      *AuthService
	catalog   *CatalogService
	discounts *DiscountService
	checkout  *CheckoutService
	admin     *AdminService
	pub       *mockPublisher
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, topic string, e *pkgkafka.Event) error {
	args := m.Called(ctx, topic, e)
	return args.Error(0)
}

func newFixture(t *testing.T, prov payment.Provider) *fixture {
	t.Helper()
	seed := memory.Seed(testNow)
	l := logger.Discard()

	f := &fixture{
		products:     memory.NewProductRepository(seed.Products),
		categories:   memory.NewCategoryRepository(seed.Categories),
		suppliers:    memory.NewSupplierRepository(seed.Suppliers),
		users:        memory.NewUserRepository(),
		transactions: memory.NewTransactionRepository(),
		orders:       memory.NewOrderRepository(),
		discountRepo: memory.NewDiscountRepository(seed.Codes),
		notices:      memory.NewNoticeRepository(seed.Notices),
		inventory:    memory.NewInventoryRepository(),
		pub:          new(mockPublisher),
	}
	if prov == nil {
		prov = paymock.NewProvider()
	}

	f.auth = NewAuthService(f.users, auth.NewTokenManager("test-secret", time.Hour), l)
	f.auth.cost = bcrypt.MinCost
	f.catalog = NewCatalogService(f.products, f.categories)
	f.discounts = NewDiscountService(f.discountRepo, l)
	f.discounts.now = func() time.Time { return testNow }
	f.checkout = NewCheckoutService(CheckoutRepos{
		Products:     f.products,
		Transactions: f.transactions,
		Orders:       f.orders,
		Inventory:    f.inventory,
	}, f.discounts, prov, event.NewProducer(f.pub, l), "http://localhost:8080/mock-webpay", l)
	f.checkout.now = func() time.Time { return testNow }
	f.admin = NewAdminService(AdminRepos{
		Products:     f.products,
		Categories:   f.categories,
		Suppliers:    f.suppliers,
		Users:        f.users,
		Orders:       f.orders,
		Transactions: f.transactions,
		Discounts:    f.discountRepo,
		Notices:      f.notices,
		Inventory:    f.inventory,
	})
	return f
}

func testCustomer() domain.Customer {
	return domain.Customer{Name: "Ana Pérez", Email: "ana@correo.cl", Address: "Av. Providencia 1234", City: "Santiago"}
}

func mustStock(t *testing.T, f *fixture, id string) int {
	t.Helper()
	p, err := f.products.GetByID(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}
