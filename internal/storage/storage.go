// Package storage defines the persistent key-value storage the cart and
// wishlist stores mirror their state into, plus the fixed keys the storefront
// uses. Values are opaque strings; most are JSON documents.
package storage

import (
	"context"
	"errors"
)

// Fixed storage keys. Every value is JSON except KeyAuthToken and KeyTheme,
// which hold raw strings.
const (
	KeyCartItems           = "cart_items"
	KeyWishlist            = "wishlist"
	KeyAuthToken           = "auth_token"
	KeyAuthUser            = "auth_user"
	KeyTheme               = "theme"
	KeyCookieConsent       = "cookie_consent"
	KeyPWAInstallDismissed = "pwaInstallDismissed"
)

// ErrQuotaExceeded is returned by a backend that refuses a write for lack of space.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// Storage is a string key-value store. Get reports ok=false for a missing key.
// Remove of a missing key is not an error.
type Storage interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Namespaced prefixes every key with prefix + ":" so several users can share
// one backend without seeing each other's cart.
func Namespaced(s Storage, prefix string) Storage {
	if prefix == "" {
		return s
	}
	return &namespaced{inner: s, prefix: prefix + ":"}
}

type namespaced struct {
	inner  Storage
	prefix string
}

func (n *namespaced) Get(ctx context.Context, key string) (string, bool, error) {
	return n.inner.Get(ctx, n.prefix+key)
}

func (n *namespaced) Set(ctx context.Context, key, value string) error {
	return n.inner.Set(ctx, n.prefix+key, value)
}

func (n *namespaced) Remove(ctx context.Context, key string) error {
	return n.inner.Remove(ctx, n.prefix+key)
}
