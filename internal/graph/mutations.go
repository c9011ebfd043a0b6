package graph

import (
	"context"
	"time"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/vinodjarare/shopgraph/internal/models"
)

type productArgs struct {
	Name     string
	Price    float64
	Quantity int32
}

func (a productArgs) input() models.ProductInput {
	return models.ProductInput{Name: a.Name, Price: a.Price, Quantity: int(a.Quantity)}
}

func (r *Resolver) AddProduct(ctx context.Context, args productArgs) (_ *productResolver, err error) {
	defer r.observe(ctx, opAddProduct, time.Now(), &err)

	actor, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	product, err := r.products.AddProduct(ctx, actor, args.input())
	if err != nil {
		return nil, err
	}
	return &productResolver{product: product}, nil
}

type updateProductArgs struct {
	ID       graphql.ID
	Name     string
	Price    float64
	Quantity int32
}

func (r *Resolver) UpdateProduct(ctx context.Context, args updateProductArgs) (_ *productResolver, err error) {
	defer r.observe(ctx, opUpdateProduct, time.Now(), &err)

	actor, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	product, err := r.products.UpdateProduct(ctx, actor, string(args.ID), productArgs{Name: args.Name, Price: args.Price, Quantity: args.Quantity}.input())
	if err != nil {
		return nil, err
	}
	return &productResolver{product: product}, nil
}

func (r *Resolver) CreateUser(ctx context.Context, args struct {
	Address  string
	Email    string
	Password string
}) (_ *userResolver, err error) {
	defer r.observe(ctx, opCreateUser, time.Now(), &err)

	user, err := r.users.CreateUser(ctx, args.Address, args.Email, args.Password)
	if err != nil {
		return nil, err
	}
	return &userResolver{user: user}, nil
}

func (r *Resolver) Login(ctx context.Context, args struct {
	Email    string
	Password string
}) (_ *authPayloadResolver, err error) {
	defer r.observe(ctx, opLogin, time.Now(), &err)

	payload, err := r.users.Login(ctx, args.Email, args.Password)
	if err != nil {
		return nil, err
	}
	return &authPayloadResolver{payload: payload}, nil
}
