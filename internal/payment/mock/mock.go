// Package mock is the development payment provider behind /mock-webpay.
package mock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/payment"
)

// Option configures a Provider.
type Option func(*Provider)

// WithLatency makes every call wait d (or until ctx is done).
func WithLatency(d time.Duration) Option {
	return func(p *Provider) { p.latency = d }
}

// WithChargeLimit declines charges above limit. Zero means no limit.
func WithChargeLimit(limit int64) Option {
	return func(p *Provider) { p.limit = limit }
}

// Provider approves every charge within its limit.
type Provider struct {
	latency time.Duration
	limit   int64
}

// NewProvider creates a mock provider.
func NewProvider(opts ...Option) *Provider {
	p := &Provider{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns "mock".
func (p *Provider) Name() string {
	return "mock"
}

// Charge approves the charge unless the amount is not positive or exceeds the limit.
func (p *Provider) Charge(ctx context.Context, in *payment.ChargeInput) (*payment.ChargeResult, error) {
	if err := p.wait(ctx); err != nil {
		return nil, err
	}
	switch {
	case in.Amount <= 0:
		return &payment.ChargeResult{Status: payment.StatusFailed, FailureReason: "Monto inválido"}, nil
	case p.limit > 0 && in.Amount > p.limit:
		return &payment.ChargeResult{
			Status:        payment.StatusFailed,
			FailureReason: fmt.Sprintf("Monto excede el límite de %d", p.limit),
		}, nil
	}
	return &payment.ChargeResult{
		ProviderPaymentID: "mock_pay_" + uuid.New().String(),
		Status:            payment.StatusSucceeded,
	}, nil
}

// Refund always succeeds.
func (p *Provider) Refund(ctx context.Context, _ *payment.RefundInput) (*payment.RefundResult, error) {
	if err := p.wait(ctx); err != nil {
		return nil, err
	}
	return &payment.RefundResult{
		ProviderRefundID: "mock_ref_" + uuid.New().String(),
		Status:           payment.StatusSucceeded,
	}, nil
}

func (p *Provider) wait(ctx context.Context) error {
	if p.latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(p.latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
