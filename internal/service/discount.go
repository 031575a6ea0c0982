package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/domain"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/repository"
	apperrors "github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/errors"
)

// DiscountService validates and redeems discount codes.
type DiscountService struct {
	repo   repository.DiscountRepository
	logger *slog.Logger
	now    func() time.Time
}

// NewDiscountService creates a discount service.
func NewDiscountService(repo repository.DiscountRepository, logger *slog.Logger) *DiscountService {
	return &DiscountService{
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Validate checks code against subtotal. A code that does not apply is not an
// error: the result says why in Message.
func (s *DiscountService) Validate(ctx context.Context, code string, subtotal int64) (*domain.DiscountValidation, error) {
	code = domain.NormalizeCode(code)
	if code == "" {
		return nil, apperrors.InvalidInput("Debes ingresar un código de descuento")
	}
	if subtotal < 0 {
		return nil, apperrors.InvalidInput("Subtotal inválido")
	}

	dc, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return invalid(code, "Código de descuento no válido"), nil
		}
		return nil, fmt.Errorf("get discount code: %w", err)
	}

	now := s.now()
	switch {
	case !dc.Active:
		return invalid(code, "El código no está activo"), nil
	case dc.StartsAt != nil && now.Before(*dc.StartsAt):
		return invalid(code, "El código aún no está vigente"), nil
	case dc.ExpiresAt != nil && now.After(*dc.ExpiresAt):
		return invalid(code, "El código ha expirado"), nil
	case dc.MaxUses > 0 && dc.Uses >= dc.MaxUses:
		return invalid(code, "El código alcanzó su límite de usos"), nil
	case dc.MinOrderAmount > 0 && subtotal < dc.MinOrderAmount:
		return invalid(code, fmt.Sprintf("El monto mínimo para este código es %s", domain.FormatCLP(dc.MinOrderAmount))), nil
	}

	return &domain.DiscountValidation{
		Valid:          true,
		Code:           dc.Code,
		Type:           dc.Type,
		Value:          dc.Value,
		DiscountAmount: dc.Amount(subtotal),
		Message:        "Código aplicado",
	}, nil
}

// Resolve is Validate for checkout: a code that does not apply is an input error.
func (s *DiscountService) Resolve(ctx context.Context, code string, subtotal int64) (*domain.DiscountValidation, error) {
	v, err := s.Validate(ctx, code, subtotal)
	if err != nil {
		return nil, err
	}
	if !v.Valid {
		return nil, apperrors.InvalidInput(v.Message)
	}
	return v, nil
}

// Redeem records one use of code.
func (s *DiscountService) Redeem(ctx context.Context, code string) error {
	if err := s.repo.IncrementUses(ctx, domain.NormalizeCode(code)); err != nil {
		return fmt.Errorf("redeem discount code: %w", err)
	}
	s.logger.InfoContext(ctx, "discount code redeemed", slog.String("code", code))
	return nil
}

// List returns every code.
func (s *DiscountService) List(ctx context.Context) ([]domain.DiscountCode, error) {
	return s.repo.List(ctx)
}

func invalid(code, message string) *domain.DiscountValidation {
	return &domain.DiscountValidation{Valid: false, Code: code, Message: message}
}
