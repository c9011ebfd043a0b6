package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/vinodjarare/shopgraph/internal/models"
	"github.com/vinodjarare/shopgraph/internal/store"
)

// Product event actions published on the live feed.
const (
	ProductCreated = "product.created"
	ProductUpdated = "product.updated"
)

// ProductEventPublisher receives product changes after they are stored.
type ProductEventPublisher interface {
	PublishProductEvent(action string, product models.Product)
}

// ProductServiceProvider defines the interface for product services.
type ProductServiceProvider interface {
	AddProduct(ctx context.Context, actor models.User, input models.ProductInput) (models.Product, error)
	UpdateProduct(ctx context.Context, actor models.User, id string, input models.ProductInput) (models.Product, error)
	GetProduct(ctx context.Context, id string) (models.Product, error)
	CountProducts(ctx context.Context) (int, error)
	ListProductsByOwner(ctx context.Context, ownerID string) ([]models.Product, error)
	SearchProducts(ctx context.Context, q models.ProductQuery) (models.ProductPage, error)
}

// ProductService provides business logic for the product catalog.
type ProductService struct {
	products         store.ProductStore
	publisher        ProductEventPublisher
	enforceOwnership bool
}

// NewProductService creates a new ProductService. publisher may be nil.
func NewProductService(products store.ProductStore, publisher ProductEventPublisher, enforceOwnership bool) *ProductService {
	return &ProductService{products: products, publisher: publisher, enforceOwnership: enforceOwnership}
}

// normalizeInput lower-cases the name and checks the field ranges.
func normalizeInput(input models.ProductInput) (models.ProductInput, error) {
	input.Name = strings.ToLower(strings.TrimSpace(input.Name))
	switch {
	case input.Name == "":
		return input, fmt.Errorf("%w: product name is required", models.ErrValidation)
	case input.Price <= 0:
		return input, fmt.Errorf("%w: price must be positive", models.ErrValidation)
	case input.Quantity < 0:
		return input, fmt.Errorf("%w: quantity cannot be negative", models.ErrValidation)
	}
	return input, nil
}

// ensureNameFree fails with ErrAlreadyExists if another product already uses name.
func (s *ProductService) ensureNameFree(ctx context.Context, name, exceptID string) error {
	existing, err := s.products.GetProductByName(ctx, name)
	if err == nil {
		if existing.ID == exceptID {
			return nil
		}
		return fmt.Errorf("product %s: %w", name, models.ErrAlreadyExists)
	}
	if errors.Is(err, models.ErrNotFound) {
		return nil
	}
	return err
}

// AddProduct creates a product owned by actor.
func (s *ProductService) AddProduct(ctx context.Context, actor models.User, input models.ProductInput) (models.Product, error) {
	input, err := normalizeInput(input)
	if err != nil {
		return models.Product{}, err
	}
	if err := s.ensureNameFree(ctx, input.Name, ""); err != nil {
		return models.Product{}, err
	}

	product := models.Product{
		Name:     input.Name,
		Price:    input.Price,
		Quantity: input.Quantity,
		OwnerID:  actor.ID,
	}
	if err := s.products.CreateProduct(ctx, &product); err != nil {
		return models.Product{}, err
	}

	owner := actor
	owner.PasswordHash = ""
	product.Owner = &owner

	s.publish(ProductCreated, product)
	return product, nil
}

// UpdateProduct overwrites name, price and quantity of an existing product.
func (s *ProductService) UpdateProduct(ctx context.Context, actor models.User, id string, input models.ProductInput) (models.Product, error) {
	input, err := normalizeInput(input)
	if err != nil {
		return models.Product{}, err
	}

	product, err := s.products.GetProductByID(ctx, id)
	if err != nil {
		return models.Product{}, err
	}
	if s.enforceOwnership && product.OwnerID != actor.ID {
		return models.Product{}, fmt.Errorf("product %s is owned by another user: %w", id, models.ErrUnauthorized)
	}
	if input.Name != product.Name {
		if err := s.ensureNameFree(ctx, input.Name, product.ID); err != nil {
			return models.Product{}, err
		}
	}

	product.Name = input.Name
	product.Price = input.Price
	product.Quantity = input.Quantity
	if err := s.products.UpdateProduct(ctx, &product); err != nil {
		return models.Product{}, err
	}

	s.publish(ProductUpdated, product)
	return product, nil
}

// GetProduct retrieves a single product with its owner.
func (s *ProductService) GetProduct(ctx context.Context, id string) (models.Product, error) {
	return s.products.GetProductByID(ctx, id)
}

// CountProducts returns the total number of products.
func (s *ProductService) CountProducts(ctx context.Context) (int, error) {
	return s.products.CountProducts(ctx)
}

// ListProductsByOwner returns the products owned by ownerID.
func (s *ProductService) ListProductsByOwner(ctx context.Context, ownerID string) ([]models.Product, error) {
	return s.products.ListProductsByOwner(ctx, ownerID)
}

// SearchProducts returns one page of the name-filtered listing, newest first.
// Page and limit are not clamped, only required to be positive. The search
// text is matched as sent, whitespace included.
func (s *ProductService) SearchProducts(ctx context.Context, q models.ProductQuery) (models.ProductPage, error) {
	if q.Limit < 1 {
		return models.ProductPage{}, fmt.Errorf("%w: limit must be at least 1", models.ErrValidation)
	}
	if q.Page < 1 {
		return models.ProductPage{}, fmt.Errorf("%w: page must be at least 1", models.ErrValidation)
	}

	products, total, err := s.products.SearchProducts(ctx, q)
	if err != nil {
		return models.ProductPage{}, err
	}
	return models.NewProductPage(products, total, q), nil
}

func (s *ProductService) publish(action string, product models.Product) {
	if s.publisher == nil {
		return
	}
	s.publisher.PublishProductEvent(action, product)
	log.Debug().Str("action", action).Str("product_id", product.ID).Msg("Published product event")
}
