package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/vinodjarare/shopgraph/internal/auth"
	"github.com/vinodjarare/shopgraph/internal/models"
	"github.com/vinodjarare/shopgraph/internal/store"
)

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	CreateUser(ctx context.Context, address, email, password string) (models.User, error)
	Login(ctx context.Context, email, password string) (models.AuthPayload, error)
	GetUserByID(ctx context.Context, id string) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
}

// UserService provides business logic for signup, login and user lookups.
type UserService struct {
	users  store.UserStore
	hasher *auth.PasswordHasher
	tokens *auth.TokenManager

	dummyOnce sync.Once
	dummyHash string
}

// NewUserService creates a new UserService.
func NewUserService(users store.UserStore, hasher *auth.PasswordHasher, tokens *auth.TokenManager) *UserService {
	return &UserService{users: users, hasher: hasher, tokens: tokens}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser registers a new user. The returned user never carries the password hash.
func (s *UserService) CreateUser(ctx context.Context, address, email, password string) (models.User, error) {
	email = normalizeEmail(email)
	address = strings.ToLower(strings.TrimSpace(address))

	switch {
	case address == "":
		return models.User{}, fmt.Errorf("%w: address is required", models.ErrValidation)
	case email == "" || !strings.Contains(email, "@"):
		return models.User{}, fmt.Errorf("%w: a valid email is required", models.ErrValidation)
	case password == "":
		return models.User{}, fmt.Errorf("%w: password is required", models.ErrValidation)
	}

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return models.User{}, fmt.Errorf("user %s: %w", email, models.ErrAlreadyExists)
	} else if !errors.Is(err, models.ErrNotFound) {
		return models.User{}, err
	}

	hash, err := s.hasher.HashPassword(password)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{Address: address, Email: email, PasswordHash: hash}
	if err := s.users.CreateUser(ctx, &user); err != nil {
		return models.User{}, err
	}

	user.PasswordHash = ""
	return user, nil
}

// Login verifies credentials and issues a session token.
// A missing user and a wrong password fail identically.
func (s *UserService) Login(ctx context.Context, email, password string) (models.AuthPayload, error) {
	user, err := s.users.GetCredentials(ctx, normalizeEmail(email))
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			return models.AuthPayload{}, err
		}
		// Burn the same bcrypt time as a real comparison.
		s.hasher.VerifyPassword(password, s.placeholderHash())
		return models.AuthPayload{}, models.ErrInvalidCredentials
	}

	if !s.hasher.VerifyPassword(password, user.PasswordHash) {
		return models.AuthPayload{}, models.ErrInvalidCredentials
	}

	token, err := s.tokens.IssueToken(user.ID, user.Email)
	if err != nil {
		return models.AuthPayload{}, err
	}

	// Don't send the password hash to the client
	user.PasswordHash = ""
	return models.AuthPayload{Token: token, User: user}, nil
}

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(ctx context.Context, id string) (models.User, error) {
	return s.users.GetUserByID(ctx, id)
}

// ListUsers returns every user.
func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.users.ListUsers(ctx)
}

func (s *UserService) placeholderHash() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.HashPassword("placeholder-password")
	})
	return s.dummyHash
}
