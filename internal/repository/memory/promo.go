package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/domain"
	apperrors "github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/errors"
)

// DiscountRepository implements repository.DiscountRepository.
type DiscountRepository struct {
	mu    sync.RWMutex
	codes []domain.DiscountCode
}

// NewDiscountRepository creates a discount repository holding codes.
func NewDiscountRepository(codes []domain.DiscountCode) *DiscountRepository {
	cp := make([]domain.DiscountCode, len(codes))
	copy(cp, codes)
	for i := range cp {
		cp[i].Code = domain.NormalizeCode(cp[i].Code)
	}
	return &DiscountRepository{codes: cp}
}

// GetByCode looks a code up case-insensitively.
func (r *DiscountRepository) GetByCode(_ context.Context, code string) (*domain.DiscountCode, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	code = domain.NormalizeCode(code)
	for i := range r.codes {
		if r.codes[i].Code == code {
			c := r.codes[i]
			return &c, nil
		}
	}
	return nil, apperrors.NotFound("Código de descuento no encontrado")
}

// List returns every code.
func (r *DiscountRepository) List(_ context.Context) ([]domain.DiscountCode, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.DiscountCode, len(r.codes))
	copy(out, r.codes)
	return out, nil
}

// IncrementUses records one redemption.
func (r *DiscountRepository) IncrementUses(_ context.Context, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	code = domain.NormalizeCode(code)
	for i := range r.codes {
		if r.codes[i].Code == code {
			r.codes[i].Uses++
			return nil
		}
	}
	return apperrors.NotFound("Código de descuento no encontrado")
}

// NoticeRepository implements repository.NoticeRepository.
type NoticeRepository struct {
	mu      sync.RWMutex
	notices []domain.Notice
}

// NewNoticeRepository creates a notice repository.
func NewNoticeRepository(notices []domain.Notice) *NoticeRepository {
	cp := make([]domain.Notice, len(notices))
	copy(cp, notices)
	return &NoticeRepository{notices: cp}
}

// List returns every notice by descending priority.
func (r *NoticeRepository) List(_ context.Context) ([]domain.Notice, error) {
	r.mu.RLock()
	out := make([]domain.Notice, len(r.notices))
	copy(out, r.notices)
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority > out[j].Priority })
	return out, nil
}

// InventoryRepository implements repository.InventoryRepository.
type InventoryRepository struct {
	mu        sync.RWMutex
	movements []domain.InventoryMovement
}

// NewInventoryRepository creates an empty movement log.
func NewInventoryRepository() *InventoryRepository {
	return &InventoryRepository{}
}

// Record appends m.
func (r *InventoryRepository) Record(_ context.Context, m *domain.InventoryMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	r.movements = append(r.movements, *m)
	return nil
}

// List returns movements newest first, optionally for one product.
func (r *InventoryRepository) List(_ context.Context, productID string) ([]domain.InventoryMovement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.InventoryMovement, 0, len(r.movements))
	for i := len(r.movements) - 1; i >= 0; i-- {
		if productID != "" && r.movements[i].ProductID != productID {
			continue
		}
		out = append(out, r.movements[i])
	}
	return out, nil
}
