package domain

import (
	"strings"
	"time"
)

// Discount code type constants.
const (
	DiscountTypePercentage  = "percentage"
	DiscountTypeFixedAmount = "fixed_amount"
)

// DiscountCode is a promotional code redeemable at checkout.
type DiscountCode struct {
	ID             string     `json:"id"`
	Code           string     `json:"code"`
	Description    string     `json:"description,omitempty"`
	Type           string     `json:"type"`
	Value          int64      `json:"value"`
	MinOrderAmount int64      `json:"min_order_amount"`
	MaxDiscount    int64      `json:"max_discount,omitempty"`
	MaxUses        int        `json:"max_uses"`
	Uses           int        `json:"uses"`
	Active         bool       `json:"active"`
	StartsAt       *time.Time `json:"starts_at,omitempty"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
}

// NormalizeCode canonicalizes a user-typed code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Amount returns the discount the code grants on subtotal. Percentage values
// are whole percents (15 = 15%). The result never exceeds subtotal.
func (d *DiscountCode) Amount(subtotal int64) int64 {
	var amount int64
	switch d.Type {
	case DiscountTypePercentage:
		amount = subtotal * d.Value / 100
		if d.MaxDiscount > 0 && amount > d.MaxDiscount {
			amount = d.MaxDiscount
		}
	case DiscountTypeFixedAmount:
		amount = d.Value
	}
	if amount > subtotal {
		amount = subtotal
	}
	if amount < 0 {
		return 0
	}
	return amount
}

// DiscountValidation is the answer to "can this code be used on this subtotal".
type DiscountValidation struct {
	Valid          bool   `json:"valid"`
	Code           string `json:"code"`
	Type           string `json:"type,omitempty"`
	Value          int64  `json:"value,omitempty"`
	DiscountAmount int64  `json:"discount_amount"`
	Message        string `json:"message"`
}

// Notice is a storefront banner shown while active and inside its window.
type Notice struct {
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	Message  string     `json:"message"`
	Type     string     `json:"type"`
	Priority int        `json:"priority"`
	Active   bool       `json:"active"`
	StartsAt *time.Time `json:"starts_at,omitempty"`
	EndsAt   *time.Time `json:"ends_at,omitempty"`
}

// VisibleAt reports whether the notice should be shown at t.
func (n *Notice) VisibleAt(t time.Time) bool {
	if !n.Active {
		return false
	}
	if n.StartsAt != nil && t.Before(*n.StartsAt) {
		return false
	}
	if n.EndsAt != nil && t.After(*n.EndsAt) {
		return false
	}
	return true
}

// Inventory movement reasons.
const (
	MovementSale       = "sale"
	MovementRestock    = "restock"
	MovementAdjustment = "adjustment"
)

// InventoryMovement records a stock change for a product.
type InventoryMovement struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product_name"`
	Change      int       `json:"change"`
	StockAfter  int       `json:"stock_after"`
	Reason      string    `json:"reason"`
	Reference   string    `json:"reference,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
