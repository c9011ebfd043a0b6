package graph

import (
	graphql "github.com/graph-gophers/graphql-go"
	"github.com/vinodjarare/shopgraph/internal/models"
)

type userResolver struct {
	user models.User
}

func (r *userResolver) ID() graphql.ID { return graphql.ID(r.user.ID) }
func (r *userResolver) Address() string { return r.user.Address }
func (r *userResolver) Email() string { return r.user.Email }
func (r *userResolver) CreatedAt() DateTime { return DateTime{r.user.CreatedAt} }
func (r *userResolver) UpdatedAt() DateTime { return DateTime{r.user.UpdatedAt} }

func usersToResolvers(users []models.User) []*userResolver {
	out := make([]*userResolver, 0, len(users))
	for _, u := range users {
		out = append(out, &userResolver{user: u})
	}
	return out
}

type productResolver struct {
	product models.Product
}

func (r *productResolver) ID() *graphql.ID {
	id := graphql.ID(r.product.ID)
	return &id
}

func (r *productResolver) Name() string { return r.product.Name }
func (r *productResolver) Price() float64 { return r.product.Price }

func (r *productResolver) Quantity() *int32 {
	q := int32(r.product.Quantity)
	return &q
}

// Owner is non-null in the schema; every read path joins it.
func (r *productResolver) Owner() *userResolver {
	if r.product.Owner == nil {
		return &userResolver{user: models.User{ID: r.product.OwnerID}}
	}
	return &userResolver{user: *r.product.Owner}
}

func (r *productResolver) CreatedAt() DateTime { return DateTime{r.product.CreatedAt} }
func (r *productResolver) UpdatedAt() DateTime { return DateTime{r.product.UpdatedAt} }

func productsToResolvers(products []models.Product) []*productResolver {
	out := make([]*productResolver, 0, len(products))
	for _, p := range products {
		out = append(out, &productResolver{product: p})
	}
	return out
}

type paginationResolver struct {
	page models.ProductPage
}

func (r *paginationResolver) Products() []*productResolver { return productsToResolvers(r.page.Products) }
func (r *paginationResolver) Total() int32 { return int32(r.page.Total) }
func (r *paginationResolver) Limit() int32 { return int32(r.page.Limit) }
func (r *paginationResolver) Page() int32 { return int32(r.page.Page) }
func (r *paginationResolver) TotalPages() int32 { return int32(r.page.TotalPages) }
func (r *paginationResolver) HasNextPage() bool { return r.page.HasNextPage }
func (r *paginationResolver) HasPrevPage() bool { return r.page.HasPrevPage }
func (r *paginationResolver) NextPage() *int32 { return optionalInt32(r.page.NextPage) }
func (r *paginationResolver) PrevPage() *int32 { return optionalInt32(r.page.PrevPage) }

func optionalInt32(v *int) *int32 {
	if v == nil {
		return nil
	}
	out := int32(*v)
	return &out
}

type authPayloadResolver struct {
	payload models.AuthPayload
}

func (r *authPayloadResolver) Token() *string {
	return &r.payload.Token
}

func (r *authPayloadResolver) User() *userResolver {
	return &userResolver{user: r.payload.User}
}
