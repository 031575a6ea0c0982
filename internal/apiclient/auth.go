package apiclient

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/domain"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/storage"
)

// LoginInput is the body of POST /api/auth/login.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterInput is the body of POST /api/auth/register.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
}

// Login authenticates and stores the session token and user.
func (c *Client) Login(ctx context.Context, in LoginInput) (*domain.Session, error) {
	var session domain.Session
	if err := c.Post(ctx, "/api/auth/login", in, &session); err != nil {
		return nil, err
	}
	if err := c.saveSession(ctx, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Register creates an account and stores the returned session.
func (c *Client) Register(ctx context.Context, in RegisterInput) (*domain.Session, error) {
	var session domain.Session
	if err := c.Post(ctx, "/api/auth/register", in, &session); err != nil {
		return nil, err
	}
	if err := c.saveSession(ctx, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Logout forgets the stored session.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.store.Remove(ctx, storage.KeyAuthToken); err != nil {
		return fmt.Errorf("remove auth token: %w", err)
	}
	if err := c.store.Remove(ctx, storage.KeyAuthUser); err != nil {
		return fmt.Errorf("remove auth user: %w", err)
	}
	return nil
}

// CurrentUser returns the stored user, if any.
func (c *Client) CurrentUser(ctx context.Context) (*domain.User, bool) {
	raw, ok, err := c.store.Get(ctx, storage.KeyAuthUser)
	if err != nil || !ok {
		return nil, false
	}
	var u domain.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, false
	}
	return &u, true
}

// IsAuthenticated reports whether a token is stored.
func (c *Client) IsAuthenticated(ctx context.Context) bool {
	token, ok, err := c.store.Get(ctx, storage.KeyAuthToken)
	return err == nil && ok && token != ""
}

func (c *Client) saveSession(ctx context.Context, s *domain.Session) error {
	if err := c.store.Set(ctx, storage.KeyAuthToken, s.Token); err != nil {
		return fmt.Errorf("store auth token: %w", err)
	}
	if s.User == nil {
		return nil
	}
	data, err := json.Marshal(s.User)
	if err != nil {
		return fmt.Errorf("encode auth user: %w", err)
	}
	if err := c.store.Set(ctx, storage.KeyAuthUser, string(data)); err != nil {
		return fmt.Errorf("store auth user: %w", err)
	}
	return nil
}
