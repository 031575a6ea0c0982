package domain

import "time"

// Transaction status constants. A transaction starts pending, moves to
// awaiting_payment once a gateway session exists, and ends paid, rejected or
// canceled.
const (
	TransactionStatusPending         = "pending"
	TransactionStatusAwaitingPayment = "awaiting_payment"
	TransactionStatusPaid            = "paid"
	TransactionStatusRejected        = "rejected"
	TransactionStatusCanceled        = "canceled"
)

// Decisions taken on the mock payment gateway page.
const (
	DecisionApproved = "approved"
	DecisionRejected = "rejected"
)

// Order status constants.
const (
	OrderStatusConfirmed = "confirmed"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCanceled  = "canceled"
)

// Customer holds the buyer details captured at checkout.
type Customer struct {
	Name    string `json:"name" validate:"required,notblank,min=2,max=120"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone,omitempty" validate:"omitempty,max=30"`
	Address string `json:"address" validate:"required,notblank,min=5,max=300"`
	City    string `json:"city,omitempty" validate:"omitempty,max=120"`
}

// OrderItem is a priced line of a transaction or order. Prices are taken from
// the catalog at checkout, never from the client.
type OrderItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
	Note      string `json:"note,omitempty"`
}

// LineTotal returns price times quantity, saturating instead of overflowing.
func (i OrderItem) LineTotal() int64 {
	return LineAmount(i.Price, i.Quantity)
}

// Transaction is a checkout attempt awaiting payment.
type Transaction struct {
	ID           string      `json:"id"`
	BuyOrder     string      `json:"buy_order"`
	UserID       string      `json:"user_id,omitempty"`
	Customer     Customer    `json:"customer"`
	Items        []OrderItem `json:"items"`
	Subtotal     int64       `json:"subtotal"`
	Discount     int64       `json:"discount"`
	Total        int64       `json:"total"`
	DiscountCode string      `json:"discount_code,omitempty"`
	Status       string      `json:"status"`
	Token        string      `json:"token,omitempty"`
	ReturnURL    string      `json:"return_url,omitempty"`
	Decision     string      `json:"decision,omitempty"`
	PaymentID    string      `json:"payment_id,omitempty"`
	Failure      string      `json:"failure_reason,omitempty"`
	OrderID      string      `json:"order_id,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// Closed reports whether the transaction reached a final status.
func (t *Transaction) Closed() bool {
	switch t.Status {
	case TransactionStatusPaid, TransactionStatusRejected, TransactionStatusCanceled:
		return true
	}
	return false
}

// Order is a paid transaction.
type Order struct {
	ID            string      `json:"id"`
	Number        int         `json:"number"`
	TransactionID string      `json:"transaction_id"`
	UserID        string      `json:"user_id,omitempty"`
	Customer      Customer    `json:"customer"`
	Items         []OrderItem `json:"items"`
	Subtotal      int64       `json:"subtotal"`
	Discount      int64       `json:"discount"`
	Total         int64       `json:"total"`
	Status        string      `json:"status"`
	PaymentID     string      `json:"payment_id"`
	CreatedAt     time.Time   `json:"created_at"`
}

// SumItems returns the sum of the line totals.
func SumItems(items []OrderItem) int64 {
	var total int64
	for _, item := range items {
		total = AddAmounts(total, item.LineTotal())
	}
	return total
}

// ApplyDiscount subtracts discount from subtotal without going below zero.
func ApplyDiscount(subtotal, discount int64) int64 {
	if discount <= 0 {
		return subtotal
	}
	if total := subtotal - discount; total > 0 {
		return total
	}
	return 0
}
