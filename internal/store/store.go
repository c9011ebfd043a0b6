// Package store defines the persistence contracts for users and products.
// Implementations live in the sqlite and mongodb subpackages; both report
// missing records as models.ErrNotFound and unique-index violations as
// models.ErrAlreadyExists.
package store

import (
	"context"

	"github.com/vinodjarare/shopgraph/internal/models"
)

// UserStore persists user accounts.
type UserStore interface {
	// CreateUser inserts user, assigning ID and timestamps.
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (models.User, error)
	// GetUserByEmail never populates PasswordHash.
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	// GetCredentials returns the user with PasswordHash populated.
	GetCredentials(ctx context.Context, email string) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	CountUsers(ctx context.Context) (int, error)
}

// ProductStore persists products. Every read joins the owner.
type ProductStore interface {
	// CreateProduct inserts product, assigning ID and timestamps.
	CreateProduct(ctx context.Context, product *models.Product) error
	// UpdateProduct overwrites name, price and quantity and bumps UpdatedAt.
	UpdateProduct(ctx context.Context, product *models.Product) error
	GetProductByID(ctx context.Context, id string) (models.Product, error)
	GetProductByName(ctx context.Context, name string) (models.Product, error)
	CountProducts(ctx context.Context) (int, error)
	ListProductsByOwner(ctx context.Context, ownerID string) ([]models.Product, error)
	// SearchProducts returns one page of products whose name contains q.Search,
	// newest first, plus the total number of matches.
	SearchProducts(ctx context.Context, q models.ProductQuery) ([]models.Product, int, error)
}

// Store is a complete backend.
type Store interface {
	UserStore
	ProductStore
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
