package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vinodjarare/shopgraph/internal/auth"
	"github.com/vinodjarare/shopgraph/internal/database"
	"github.com/vinodjarare/shopgraph/internal/models"
	"github.com/vinodjarare/shopgraph/internal/store/sqlite"
	"golang.org/x/crypto/bcrypt"
)

// recordingPublisher captures published product events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) PublishProductEvent(action string, product models.Product) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, action+":"+product.Name)
}

type fixture struct {
	store     *sqlite.Store
	tokens    *auth.TokenManager
	users     *UserService
	products  *ProductService
	publisher *recordingPublisher
}

func newFixture(t *testing.T, enforceOwnership bool) *fixture {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "services.db"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	st := sqlite.New(db)
	t.Cleanup(func() { st.Close(context.Background()) })

	tokens := auth.NewTokenManager("test-secret", time.Hour)
	publisher := &recordingPublisher{}
	return &fixture{
		store:     st,
		tokens:    tokens,
		users:     NewUserService(st, auth.NewPasswordHasher(bcrypt.MinCost), tokens),
		products:  NewProductService(st, publisher, enforceOwnership),
		publisher: publisher,
	}
}

func (f *fixture) signup(t *testing.T, email string) models.User {
	t.Helper()
	u, err := f.users.CreateUser(context.Background(), "1 Main St", email, "password")
	require.NoError(t, err)
	return u
}
