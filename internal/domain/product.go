package domain

import "time"

// Product is the canonical catalog entity. Every external product shape is
// mapped onto it by NormalizeProduct before it reaches a store.
type Product struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	Price         int64     `json:"price"`
	OriginalPrice int64     `json:"original_price,omitempty"`
	Discount      int       `json:"discount,omitempty"`
	ImageURL      string    `json:"image_url,omitempty"`
	Brand         string    `json:"brand,omitempty"`
	CategoryID    string    `json:"category_id,omitempty"`
	SupplierID    string    `json:"supplier_id,omitempty"`
	Stock         int       `json:"stock"`
	Featured      bool      `json:"featured"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// InStock reports whether quantity units can be sold.
func (p *Product) InStock(quantity int) bool {
	return p.Stock >= quantity
}

// Category groups products in the storefront navigation.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	Active      bool   `json:"active"`
}

// Supplier provides stock for one or more products.
type Supplier struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Contact string `json:"contact,omitempty"`
	Active  bool   `json:"active"`
}

// ProductFilter narrows catalog listings. Zero values mean "no filter".
type ProductFilter struct {
	CategoryID string
	Search     string
	MinPrice   int64
	MaxPrice   int64
	OnlyActive bool
}
