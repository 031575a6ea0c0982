package domain

// CheckoutItem is a cart line as sent by the shopper. Only the id, quantity
// and note are trusted; name and price are looked up in the catalog.
type CheckoutItem struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
	Note      string `json:"note,omitempty" validate:"omitempty,max=300"`
}

// CheckoutRequest is the body of POST /api/transactions.
type CheckoutRequest struct {
	Customer     Customer       `json:"customer" validate:"required"`
	Items        []CheckoutItem `json:"items" validate:"required,min=1,dive"`
	DiscountCode string         `json:"discount_code,omitempty"`
}

// CheckoutItemsFromCart converts cart lines into checkout lines.
func CheckoutItemsFromCart(items []CartItem) []CheckoutItem {
	out := make([]CheckoutItem, 0, len(items))
	for _, it := range items {
		out = append(out, CheckoutItem{ProductID: it.ID, Quantity: it.Quantity, Note: it.Note})
	}
	return out
}

// WebpayInit is returned when a payment session is opened: the shopper is
// sent to URL with Token.
type WebpayInit struct {
	Token string `json:"token"`
	URL   string `json:"url"`
}

// WebpayResult is the outcome of committing a payment session.
type WebpayResult struct {
	Status        string `json:"status"`
	TransactionID string `json:"transaction_id"`
	BuyOrder      string `json:"buy_order"`
	Amount        int64  `json:"amount"`
	Reason        string `json:"reason,omitempty"`
	Order         *Order `json:"order,omitempty"`
}

// Approved reports whether the payment went through.
func (r *WebpayResult) Approved() bool {
	return r.Status == TransactionStatusPaid
}
