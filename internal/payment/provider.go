// Package payment defines the charge/refund boundary used by the webpay
// commit step.
package payment

import "context"

// Charge statuses reported by a Provider.
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// ChargeInput holds the parameters of a charge. Amounts are in CLP.
type ChargeInput struct {
	Amount      int64
	BuyOrder    string
	Description string
	Metadata    map[string]string
}

// ChargeResult is what the provider answered for a charge.
type ChargeResult struct {
	ProviderPaymentID string
	Status            string
	FailureReason     string
}

// Succeeded reports whether the charge went through.
func (r *ChargeResult) Succeeded() bool {
	return r != nil && r.Status == StatusSucceeded
}

// RefundInput holds the parameters of a refund.
type RefundInput struct {
	ProviderPaymentID string
	Amount            int64
	Reason            string
}

// RefundResult is what the provider answered for a refund.
type RefundResult struct {
	ProviderRefundID string
	Status           string
	FailureReason    string
}

// Provider is a payment provider integration.
type Provider interface {
	Name() string
	Charge(ctx context.Context, input *ChargeInput) (*ChargeResult, error)
	Refund(ctx context.Context, input *RefundInput) (*RefundResult, error)
}
