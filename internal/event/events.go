package event

import "github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/domain"

// Event names as seen by subscribers.
const (
	NameCartUpdated     = "cartUpdated"
	NameWishlistUpdated = "wishlistUpdated"
)

// CartUpdated is the cart snapshot sent after every cart mutation. Count is
// the sum of quantities and Total the subtotal before discounts.
type CartUpdated struct {
	Count int               `json:"count"`
	Total int64             `json:"total"`
	Items []domain.CartItem `json:"items"`
}

// WishlistUpdated is the wishlist snapshot sent after every wishlist mutation.
type WishlistUpdated struct {
	Items []domain.WishlistItem `json:"items"`
	Count int                   `json:"count"`
}
