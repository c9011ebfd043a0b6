// Package app wires configuration, storage, services and the HTTP server
// into a runnable process.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"github.com/vinodjarare/shopgraph/internal/api"
	apimw "github.com/vinodjarare/shopgraph/internal/api/middleware"
	"github.com/vinodjarare/shopgraph/internal/auth"
	"github.com/vinodjarare/shopgraph/internal/config"
	"github.com/vinodjarare/shopgraph/internal/database"
	"github.com/vinodjarare/shopgraph/internal/graph"
	"github.com/vinodjarare/shopgraph/internal/metrics"
	"github.com/vinodjarare/shopgraph/internal/monitoring"
	"github.com/vinodjarare/shopgraph/internal/services"
	"github.com/vinodjarare/shopgraph/internal/store"
	"github.com/vinodjarare/shopgraph/internal/store/mongodb"
	"github.com/vinodjarare/shopgraph/internal/store/sqlite"
	"github.com/vinodjarare/shopgraph/internal/websocket"
	"golang.org/x/time/rate"
)

const (
	connectTimeout  = 10 * time.Second
	shutdownTimeout = 5 * time.Second
)

// App is a fully wired server.
type App struct {
	cfg       *config.Config
	store     store.Store
	hub       *websocket.Hub
	scheduler *monitoring.Scheduler
	limiter   *apimw.RateLimiter
	server    *http.Server
}

// New opens the store and builds every component from cfg.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	st, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	hub := websocket.NewHub(collector)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	userService := services.NewUserService(st, auth.NewPasswordHasher(cfg.BcryptCost), tokens)
	productService := services.NewProductService(st, hub, cfg.EnforceProductOwnership)

	schema, err := graph.NewSchema(graph.NewResolver(userService, productService, collector))
	if err != nil {
		st.Close(ctx)
		return nil, fmt.Errorf("failed to parse GraphQL schema: %w", err)
	}

	scheduler, err := monitoring.NewScheduler(cfg.StatsSchedule, st, collector)
	if err != nil {
		st.Close(ctx)
		return nil, err
	}

	limiter := apimw.NewRateLimiter(apimw.RateLimiterConfig{
		Rate:  rate.Limit(cfg.RateLimitRPS),
		Burst: cfg.RateLimitBurst,
	})

	router := api.NewRouter(api.RouterConfig{
		AllowedOrigins: cfg.AllowedOrigins,
		Schema:         schema,
		Auth:           auth.NewContextResolver(tokens, userService),
		Hub:            hub,
		Store:          st,
		Metrics:        metrics.Handler(reg),
		RateLimiter:    limiter,
	})

	return &App{
		cfg:       cfg,
		store:     st,
		hub:       hub,
		scheduler: scheduler,
		limiter:   limiter,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Run serves until ctx is cancelled or the listener fails, then shuts
// everything down.
func (a *App) Run(ctx context.Context) error {
	go a.hub.Run()
	a.scheduler.Start()

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Int("port", a.cfg.ServerPort).Msg("Server starting")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server...")
	case err := <-serveErr:
		runErr = fmt.Errorf("server failed: %w", err)
	}

	a.scheduler.Stop()
	a.limiter.Stop()
	a.hub.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	if err := a.store.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Failed to close store")
	}

	log.Info().Msg("Server exiting")
	return runErr
}

// OpenStore connects to the configured backend and prepares its schema:
// goose migrations for SQLite, indexes for MongoDB.
func OpenStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if cfg.UsesMongo() {
		ctx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()

		st, err := mongodb.Connect(ctx, cfg.DatabaseURL, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		if err := st.EnsureIndexes(ctx); err != nil {
			st.Close(ctx)
			return nil, err
		}
		return st, nil
	}

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	log.Info().Str("path", cfg.DatabaseURL).Msg("Opened SQLite database")
	return sqlite.New(db), nil
}
