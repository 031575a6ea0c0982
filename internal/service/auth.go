package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/auth"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/domain"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/repository"
	apperrors "github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/errors"
)

// bcryptCost is the cost factor for bcrypt password hashing.
const bcryptCost = 12

const minPasswordLength = 6

// LoginInput is the body of a login request.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterInput is the body of a registration request.
type RegisterInput struct {
	Name     string `json:"name" validate:"required,min=2,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone,omitempty" validate:"omitempty,max=30"`
}

// SeedAccount is an account created at startup.
type SeedAccount struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// DefaultAccounts are the development accounts the mock backend starts with.
var DefaultAccounts = []SeedAccount{
	{Name: "Administrador", Email: "admin@tienda.cl", Password: "admin123", Role: domain.RoleAdmin},
	{Name: "Cliente Demo", Email: "cliente@tienda.cl", Password: "cliente123", Role: domain.RoleCustomer},
}

// AuthService registers and authenticates storefront accounts.
type AuthService struct {
	users  repository.UserRepository
	tokens *auth.TokenManager
	logger *slog.Logger
	cost   int
}

// NewAuthService creates an auth service.
func NewAuthService(users repository.UserRepository, tokens *auth.TokenManager, logger *slog.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, logger: logger, cost: bcryptCost}
}

// WithCost sets the bcrypt cost of new password hashes. Out-of-range values
// are ignored.
func (s *AuthService) WithCost(cost int) *AuthService {
	if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
		s.cost = cost
	}
	return s
}

// Register creates a customer account and opens a session for it.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.Session, error) {
	in.Email = normalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, apperrors.InvalidInput("El nombre es requerido")
	}
	if in.Email == "" {
		return nil, apperrors.InvalidInput("El email es requerido")
	}
	if len(in.Password) < minPasswordLength {
		return nil, apperrors.InvalidInput(fmt.Sprintf("La contraseña debe tener al menos %d caracteres", minPasswordLength))
	}

	user, err := s.create(ctx, in.Name, in.Email, in.Password, strings.TrimSpace(in.Phone), domain.RoleCustomer)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)
	return s.session(user)
}

// Login checks credentials and opens a session.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*domain.Session, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, apperrors.InvalidInput("Email y contraseña son requeridos")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Unauthorized("Credenciales inválidas")
		}
		return nil, fmt.Errorf("get user for login: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, apperrors.Unauthorized("Credenciales inválidas")
	}

	s.logger.InfoContext(ctx, "user logged in", slog.String("user_id", user.ID))
	return s.session(user)
}

// GetUser returns the account with id.
func (s *AuthService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// SeedAccounts creates accounts that do not exist yet. Existing emails are
// left untouched.
func (s *AuthService) SeedAccounts(ctx context.Context, accounts []SeedAccount) error {
	for _, a := range accounts {
		_, err := s.users.GetByEmail(ctx, normalizeEmail(a.Email))
		if err == nil {
			continue
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("look up seed account %s: %w", a.Email, err)
		}
		if _, err := s.create(ctx, a.Name, normalizeEmail(a.Email), a.Password, "", a.Role); err != nil {
			return fmt.Errorf("seed account %s: %w", a.Email, err)
		}
		s.logger.InfoContext(ctx, "seeded account", slog.String("email", a.Email), slog.String("role", a.Role))
	}
	return nil
}

func (s *AuthService) create(ctx context.Context, name, email, password, phone, role string) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &domain.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Phone:        phone,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) session(u *domain.User) (*domain.Session, error) {
	token, err := s.tokens.Generate(u)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &domain.Session{Token: token, User: u}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
