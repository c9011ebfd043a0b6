package graph

import (
	"context"
	"time"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/vinodjarare/shopgraph/internal/models"
)

func (r *Resolver) Product(ctx context.Context, args struct{ ID graphql.ID }) (_ *productResolver, err error) {
	defer r.observe(ctx, opProduct, time.Now(), &err)

	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	product, err := r.products.GetProduct(ctx, string(args.ID))
	if err != nil {
		return nil, err
	}
	return &productResolver{product: product}, nil
}

func (r *Resolver) ProductCount(ctx context.Context) (_ int32, err error) {
	defer r.observe(ctx, opProductCount, time.Now(), &err)

	count, err := r.products.CountProducts(ctx)
	if err != nil {
		return 0, err
	}
	return int32(count), nil
}

func (r *Resolver) Users(ctx context.Context) (_ []*userResolver, err error) {
	defer r.observe(ctx, opUsers, time.Now(), &err)

	users, err := r.users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	return usersToResolvers(users), nil
}

// User resolves the caller's own record; the id argument is accepted but not
// consulted, so reads stay scoped to the acting user.
func (r *Resolver) User(ctx context.Context, args struct{ ID graphql.ID }) (_ *userResolver, err error) {
	defer r.observe(ctx, opUser, time.Now(), &err)

	actor, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	user, err := r.users.GetUserByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return &userResolver{user: user}, nil
}

// ProductsByUser lists the caller's products. Like User, it ignores userId.
func (r *Resolver) ProductsByUser(ctx context.Context, args struct{ UserID graphql.ID }) (_ []*productResolver, err error) {
	defer r.observe(ctx, opProductsByUser, time.Now(), &err)

	actor, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	products, err := r.products.ListProductsByOwner(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return productsToResolvers(products), nil
}

type productsArgs struct {
	Limit  int32
	Page   int32
	Search *string
}

func (r *Resolver) Products(ctx context.Context, args productsArgs) (_ *paginationResolver, err error) {
	defer r.observe(ctx, opProducts, time.Now(), &err)

	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	q := models.ProductQuery{Page: int(args.Page), Limit: int(args.Limit)}
	if args.Search != nil {
		q.Search = *args.Search
	}
	page, err := r.products.SearchProducts(ctx, q)
	if err != nil {
		return nil, err
	}
	return &paginationResolver{page: page}, nil
}
