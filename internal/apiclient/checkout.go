package apiclient

import (
	"context"
	"net/url"
	"strconv"

	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/domain"
)

// CreateTransaction opens a checkout for the given lines.
func (c *Client) CreateTransaction(ctx context.Context, req domain.CheckoutRequest) (*domain.Transaction, error) {
	var tx domain.Transaction
	if err := c.Post(ctx, "/api/transactions", req, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

// CreateWebpay opens a payment session for a transaction. returnURL is where
// the gateway sends the shopper back to.
func (c *Client) CreateWebpay(ctx context.Context, transactionID, returnURL string) (*domain.WebpayInit, error) {
	body := map[string]string{"transaction_id": transactionID, "return_url": returnURL}
	var init domain.WebpayInit
	if err := c.Post(ctx, "/api/webpay/create", body, &init); err != nil {
		return nil, err
	}
	return &init, nil
}

// CommitWebpay confirms a payment session and returns its outcome.
func (c *Client) CommitWebpay(ctx context.Context, token string) (*domain.WebpayResult, error) {
	var res domain.WebpayResult
	if err := c.Post(ctx, "/api/webpay/commit", map[string]string{"token": token}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ActiveNotices returns the banners currently visible.
func (c *Client) ActiveNotices(ctx context.Context) ([]domain.Notice, error) {
	var notices []domain.Notice
	if err := c.Get(ctx, "/api/notices/active", &notices); err != nil {
		return nil, err
	}
	return notices, nil
}

// ValidateDiscountCode asks whether code applies to subtotal.
func (c *Client) ValidateDiscountCode(ctx context.Context, code string, subtotal int64) (*domain.DiscountValidation, error) {
	q := url.Values{}
	q.Set("code", code)
	q.Set("subtotal", strconv.FormatInt(subtotal, 10))

	var v domain.DiscountValidation
	if err := c.Get(ctx, "/api/discount-codes/validate?"+q.Encode(), &v); err != nil {
		return nil, err
	}
	return &v, nil
}
