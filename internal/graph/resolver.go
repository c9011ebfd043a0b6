package graph

import (
	"time"

	"github.com/vinodjarare/shopgraph/internal/services"
)

// OperationRecorder receives the outcome of every resolver call.
type OperationRecorder interface {
	RecordOperation(operation, outcome string, duration time.Duration)
}

// Resolver is the root resolver for all GraphQL queries and mutations.
type Resolver struct {
	users    services.UserServiceProvider
	products services.ProductServiceProvider
	recorder OperationRecorder
}

// NewResolver creates a new Resolver. recorder may be nil.
func NewResolver(users services.UserServiceProvider, products services.ProductServiceProvider, recorder OperationRecorder) *Resolver {
	return &Resolver{users: users, products: products, recorder: recorder}
}
