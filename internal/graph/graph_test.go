package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vinodjarare/shopgraph/internal/auth"
	"github.com/vinodjarare/shopgraph/internal/database"
	"github.com/vinodjarare/shopgraph/internal/models"
	"github.com/vinodjarare/shopgraph/internal/services"
	"github.com/vinodjarare/shopgraph/internal/store/sqlite"
	"golang.org/x/crypto/bcrypt"
)

type recordedOp struct {
	operation string
	outcome   string
}

type fakeRecorder struct {
	mu  sync.Mutex
	ops []recordedOp
}

func (r *fakeRecorder) RecordOperation(operation, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, recordedOp{operation, outcome})
}

type testEnv struct {
	schema   *graphql.Schema
	users    *services.UserService
	tokens   *auth.TokenManager
	recorder *fakeRecorder
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "graph.db"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	st := sqlite.New(db)
	t.Cleanup(func() { st.Close(context.Background()) })

	tokens := auth.NewTokenManager("graph-secret", time.Hour)
	users := services.NewUserService(st, auth.NewPasswordHasher(bcrypt.MinCost), tokens)
	products := services.NewProductService(st, nil, false)
	recorder := &fakeRecorder{}

	schema, err := NewSchema(NewResolver(users, products, recorder))
	require.NoError(t, err)
	return &testEnv{schema: schema, users: users, tokens: tokens, recorder: recorder}
}

type gqlError struct {
	Message    string                 `json:"message"`
	Extensions map[string]interface{} `json:"extensions"`
}

// exec runs query as user (nil for anonymous) and decodes data into out.
func (e *testEnv) exec(t *testing.T, user *models.User, query string, vars map[string]interface{}, out interface{}) []gqlError {
	t.Helper()
	ctx := context.Background()
	if user != nil {
		ctx = auth.WithUser(ctx, user)
	}
	resp := e.schema.Exec(ctx, query, "", vars)

	var errs []gqlError
	if len(resp.Errors) > 0 {
		raw, err := json.Marshal(resp.Errors)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &errs))
	}
	if out != nil && len(resp.Data) > 0 {
		require.NoError(t, json.Unmarshal(resp.Data, out))
	}
	return errs
}

func (e *testEnv) signup(t *testing.T, email string) models.User {
	t.Helper()
	u, err := e.users.CreateUser(context.Background(), "1 Main St", email, "password")
	require.NoError(t, err)
	return u
}

func TestCreateUser(t *testing.T) {
	env := newTestEnv(t)
	const mutation = `mutation($email: String!) {
		createUser(address: "221B Baker St", email: $email, password: "hunter2") { id email address createdAt }
	}`

	var data struct {
		CreateUser map[string]interface{} `json:"createUser"`
	}
	errs := env.exec(t, nil, mutation, map[string]interface{}{"email": "Holmes@Example.com"}, &data)
	require.Empty(t, errs)
	assert.Equal(t, "holmes@example.com", data.CreateUser["email"])
	assert.NotEmpty(t, data.CreateUser["id"])
	assert.NotContains(t, data.CreateUser, "password")

	errs = env.exec(t, nil, mutation, map[string]interface{}{"email": "HOLMES@example.com"}, nil)
	require.Len(t, errs, 1)
	assert.Equal(t, "User already exists", errs[0].Message)
	assert.Equal(t, CodeAlreadyExists, errs[0].Extensions["code"])
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	user := env.signup(t, "watson@example.com")
	const mutation = `mutation($email: String!, $password: String!) {
		login(email: $email, password: $password) { token user { id email } }
	}`

	var data struct {
		Login struct {
			Token string `json:"token"`
			User  struct {
				ID    string `json:"id"`
				Email string `json:"email"`
			} `json:"user"`
		} `json:"login"`
	}
	errs := env.exec(t, nil, mutation, map[string]interface{}{"email": "watson@example.com", "password": "password"}, &data)
	require.Empty(t, errs)
	assert.Equal(t, user.ID, data.Login.User.ID)

	claims, err := env.tokens.VerifyToken(data.Login.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.Subject)

	wrongPassword := env.exec(t, nil, mutation, map[string]interface{}{"email": "watson@example.com", "password": "nope"}, nil)
	unknownEmail := env.exec(t, nil, mutation, map[string]interface{}{"email": "nobody@example.com", "password": "password"}, nil)
	require.Len(t, wrongPassword, 1)
	require.Len(t, unknownEmail, 1)
	assert.Equal(t, wrongPassword[0], unknownEmail[0])
	assert.Equal(t, CodeInvalidCredentials, wrongPassword[0].Extensions["code"])
}

func TestAddProduct_RequiresUser(t *testing.T) {
	env := newTestEnv(t)
	const mutation = `mutation { addProduct(name: "lamp", price: 9.5, quantity: 3) { id name owner { id email } } }`

	errs := env.exec(t, nil, mutation, nil, nil)
	require.Len(t, errs, 1)
	assert.Equal(t, "You don't have permission to add a product", errs[0].Message)
	assert.Equal(t, CodeUnauthorized, errs[0].Extensions["code"])

	owner := env.signup(t, "owner@example.com")
	var data struct {
		AddProduct struct {
			ID    string `json:"id"`
			Name  string `json:"name"`
			Owner struct {
				ID    string `json:"id"`
				Email string `json:"email"`
			} `json:"owner"`
		} `json:"addProduct"`
	}
	errs = env.exec(t, &owner, mutation, nil, &data)
	require.Empty(t, errs)
	assert.Equal(t, "lamp", data.AddProduct.Name)
	assert.Equal(t, owner.ID, data.AddProduct.Owner.ID)
	assert.Equal(t, "owner@example.com", data.AddProduct.Owner.Email)
}

func TestUpdateProduct(t *testing.T) {
	env := newTestEnv(t)
	owner := env.signup(t, "owner@example.com")

	var created struct {
		AddProduct struct {
			ID string `json:"id"`
		} `json:"addProduct"`
	}
	require.Empty(t, env.exec(t, &owner, `mutation { addProduct(name: "chair", price: 40, quantity: 4) { id } }`, nil, &created))

	const mutation = `mutation($id: ID!) {
		updateProduct(id: $id, name: "stool", price: 15.25, quantity: 0) { id name price quantity owner { id } }
	}`
	var data struct {
		UpdateProduct struct {
			Name     string  `json:"name"`
			Price    float64 `json:"price"`
			Quantity int     `json:"quantity"`
			Owner    struct {
				ID string `json:"id"`
			} `json:"owner"`
		} `json:"updateProduct"`
	}
	errs := env.exec(t, &owner, mutation, map[string]interface{}{"id": created.AddProduct.ID}, &data)
	require.Empty(t, errs)
	assert.Equal(t, "stool", data.UpdateProduct.Name)
	assert.Equal(t, 15.25, data.UpdateProduct.Price)
	assert.Equal(t, 0, data.UpdateProduct.Quantity)
	assert.Equal(t, owner.ID, data.UpdateProduct.Owner.ID)

	errs = env.exec(t, &owner, mutation, map[string]interface{}{"id": "missing"}, nil)
	require.Len(t, errs, 1)
	assert.Equal(t, "Product not found", errs[0].Message)
	assert.Equal(t, CodeNotFound, errs[0].Extensions["code"])
}

func TestProducts_Pagination(t *testing.T) {
	env := newTestEnv(t)
	owner := env.signup(t, "owner@example.com")
	for i := 1; i <= 15; i++ {
		errs := env.exec(t, &owner, fmt.Sprintf(`mutation { addProduct(name: "widget-%d", price: 1, quantity: 1) { id } }`, i), nil, nil)
		require.Empty(t, errs)
	}

	const query = `query($limit: Int!, $page: Int!, $search: String) {
		products(limit: $limit, page: $page, search: $search) {
			products { name owner { email } }
			total limit page totalPages hasNextPage hasPrevPage nextPage prevPage
		}
	}`
	type page struct {
		Products []struct {
			Name  string `json:"name"`
			Owner struct {
				Email string `json:"email"`
			} `json:"owner"`
		} `json:"products"`
		Total       int  `json:"total"`
		Limit       int  `json:"limit"`
		Page        int  `json:"page"`
		TotalPages  int  `json:"totalPages"`
		HasNextPage bool `json:"hasNextPage"`
		HasPrevPage bool `json:"hasPrevPage"`
		NextPage    *int `json:"nextPage"`
		PrevPage    *int `json:"prevPage"`
	}

	var first struct {
		Products page `json:"products"`
	}
	errs := env.exec(t, &owner, query, map[string]interface{}{"limit": 10.0, "page": 1.0, "search": ""}, &first)
	require.Empty(t, errs)
	require.Len(t, first.Products.Products, 10)
	assert.Equal(t, "widget-15", first.Products.Products[0].Name)
	assert.Equal(t, "owner@example.com", first.Products.Products[0].Owner.Email)
	assert.Equal(t, 15, first.Products.Total)
	assert.True(t, first.Products.HasNextPage)
	assert.False(t, first.Products.HasPrevPage)
	require.NotNil(t, first.Products.NextPage)
	assert.Equal(t, 2, *first.Products.NextPage)
	assert.Nil(t, first.Products.PrevPage)

	var second struct {
		Products page `json:"products"`
	}
	errs = env.exec(t, &owner, query, map[string]interface{}{"limit": 10.0, "page": 2.0, "search": "widget"}, &second)
	require.Empty(t, errs)
	assert.Len(t, second.Products.Products, 5)
	assert.Equal(t, 2, second.Products.Page)
	assert.Equal(t, 2, second.Products.TotalPages)
	assert.False(t, second.Products.HasNextPage)
	assert.True(t, second.Products.HasPrevPage)
	assert.Nil(t, second.Products.NextPage)

	errs = env.exec(t, &owner, query, map[string]interface{}{"limit": 0.0, "page": 1.0}, nil)
	require.Len(t, errs, 1)
	assert.Equal(t, CodeValidation, errs[0].Extensions["code"])

	errs = env.exec(t, nil, query, map[string]interface{}{"limit": 10.0, "page": 1.0}, nil)
	require.Len(t, errs, 1)
	assert.Equal(t, CodeUnauthorized, errs[0].Extensions["code"])
}

func TestProducts_SearchMatchesWhitespace(t *testing.T) {
	env := newTestEnv(t)
	owner := env.signup(t, "owner@example.com")
	require.Empty(t, env.exec(t, &owner, `mutation { addProduct(name: "red lamp", price: 1, quantity: 1) { id } }`, nil, nil))
	require.Empty(t, env.exec(t, &owner, `mutation { addProduct(name: "bluelamp", price: 1, quantity: 1) { id } }`, nil, nil))

	var data struct {
		Products struct {
			Total    int `json:"total"`
			Products []struct {
				Name string `json:"name"`
			} `json:"products"`
		} `json:"products"`
	}
	errs := env.exec(t, &owner, `{ products(limit: 10, page: 1, search: " ") { total products { name } } }`, nil, &data)
	require.Empty(t, errs)
	assert.Equal(t, 1, data.Products.Total)
	require.Len(t, data.Products.Products, 1)
	assert.Equal(t, "red lamp", data.Products.Products[0].Name)
}

func TestCallerScopedQueries(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup(t, "alice@example.com")
	bob := env.signup(t, "bob@example.com")
	require.Empty(t, env.exec(t, &alice, `mutation { addProduct(name: "kettle", price: 20, quantity: 1) { id } }`, nil, nil))
	require.Empty(t, env.exec(t, &bob, `mutation { addProduct(name: "toaster", price: 30, quantity: 1) { id } }`, nil, nil))

	var data struct {
		User struct {
			Email string `json:"email"`
		} `json:"user"`
		ProductsByUser []struct {
			Name string `json:"name"`
		} `json:"productsByUser"`
	}
	errs := env.exec(t, &alice, `query($id: ID!) {
		user(id: $id) { email }
		productsByUser(userId: $id) { name }
	}`, map[string]interface{}{"id": bob.ID}, &data)
	require.Empty(t, errs)
	assert.Equal(t, "alice@example.com", data.User.Email)
	require.Len(t, data.ProductsByUser, 1)
	assert.Equal(t, "kettle", data.ProductsByUser[0].Name)
}

func TestPublicQueries(t *testing.T) {
	env := newTestEnv(t)
	owner := env.signup(t, "owner@example.com")
	env.signup(t, "other@example.com")
	require.Empty(t, env.exec(t, &owner, `mutation { addProduct(name: "mug", price: 5, quantity: 10) { id } }`, nil, nil))

	var data struct {
		ProductCount int `json:"productCount"`
		Users        []struct {
			Email string `json:"email"`
		} `json:"users"`
	}
	errs := env.exec(t, nil, `{ productCount users { email } }`, nil, &data)
	require.Empty(t, errs)
	assert.Equal(t, 1, data.ProductCount)
	assert.Len(t, data.Users, 2)
}

func TestProduct_RequiresUser(t *testing.T) {
	env := newTestEnv(t)
	owner := env.signup(t, "owner@example.com")
	var created struct {
		AddProduct struct {
			ID string `json:"id"`
		} `json:"addProduct"`
	}
	require.Empty(t, env.exec(t, &owner, `mutation { addProduct(name: "pen", price: 2, quantity: 50) { id } }`, nil, &created))

	const query = `query($id: ID!) { product(id: $id) { name owner { email } } }`
	vars := map[string]interface{}{"id": created.AddProduct.ID}

	errs := env.exec(t, nil, query, vars, nil)
	require.Len(t, errs, 1)
	assert.Equal(t, CodeUnauthorized, errs[0].Extensions["code"])

	var data struct {
		Product struct {
			Name  string `json:"name"`
			Owner struct {
				Email string `json:"email"`
			} `json:"owner"`
		} `json:"product"`
	}
	require.Empty(t, env.exec(t, &owner, query, vars, &data))
	assert.Equal(t, "pen", data.Product.Name)
	assert.Equal(t, "owner@example.com", data.Product.Owner.Email)
}

func TestObserveRecordsOutcome(t *testing.T) {
	env := newTestEnv(t)
	env.exec(t, nil, `{ productCount }`, nil, nil)
	env.exec(t, nil, `{ user(id: "x") { id } }`, nil, nil)

	assert.Equal(t, []recordedOp{
		{"productCount", "ok"},
		{"user", CodeUnauthorized},
	}, env.recorder.ops)
}

func TestSanitize(t *testing.T) {
	t.Parallel()
	tests := []struct {
		err  error
		want Error
	}{
		{fmt.Errorf("insert: %w", models.ErrAlreadyExists), Error{"Product already exists", CodeAlreadyExists}},
		{models.ErrInvalidToken, Error{"Invalid token", CodeInvalidToken}},
		{fmt.Errorf("%w: price must be positive", models.ErrValidation), Error{"validation failed: price must be positive", CodeValidation}},
		{fmt.Errorf("disk I/O error at /var/lib/shop.db"), Error{"internal server error", CodeInternal}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, *opAddProduct.sanitize(tt.err))
	}
}
