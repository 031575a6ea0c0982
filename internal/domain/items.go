package domain

import "time"

// CartItem is one line item in a cart. Quantity is always at least 1 and a
// cart never holds two items with the same ID.
type CartItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	ImageURL string `json:"image_url,omitempty"`
	Quantity int    `json:"quantity"`
	Note     string `json:"note,omitempty"`
}

// LineTotal returns price times quantity, saturating instead of overflowing.
func (i CartItem) LineTotal() int64 {
	return LineAmount(i.Price, i.Quantity)
}

// NewCartItem builds a line item for p.
func NewCartItem(p Product, quantity int, note string) CartItem {
	return CartItem{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		ImageURL: p.ImageURL,
		Quantity: quantity,
		Note:     note,
	}
}

// WishlistItem is a favorited product.
type WishlistItem struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Price         int64     `json:"price"`
	OriginalPrice int64     `json:"original_price,omitempty"`
	Discount      int       `json:"discount,omitempty"`
	ImageURL      string    `json:"image_url,omitempty"`
	Brand         string    `json:"brand,omitempty"`
	AddedAt       time.Time `json:"added_at"`
}

// NewWishlistItem builds a wishlist entry for p added at the given time.
func NewWishlistItem(p Product, addedAt time.Time) WishlistItem {
	return WishlistItem{
		ID:            p.ID,
		Name:          p.Name,
		Price:         p.Price,
		OriginalPrice: p.OriginalPrice,
		Discount:      p.Discount,
		ImageURL:      p.ImageURL,
		Brand:         p.Brand,
		AddedAt:       addedAt,
	}
}

// Product converts the entry back into a catalog product, e.g. to move it to the cart.
func (w WishlistItem) Product() Product {
	return Product{
		ID:            w.ID,
		Name:          w.Name,
		Price:         w.Price,
		OriginalPrice: w.OriginalPrice,
		Discount:      w.Discount,
		ImageURL:      w.ImageURL,
		Brand:         w.Brand,
		Active:        true,
	}
}
