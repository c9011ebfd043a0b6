package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	graphql "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"
	"github.com/vinodjarare/shopgraph/internal/api/handlers"
	apimw "github.com/vinodjarare/shopgraph/internal/api/middleware"
	"github.com/vinodjarare/shopgraph/internal/auth"
	"github.com/vinodjarare/shopgraph/internal/websocket"
)

// RouterConfig carries everything the router serves.
type RouterConfig struct {
	AllowedOrigins []string
	Schema         *graphql.Schema
	Auth           *auth.ContextResolver
	Hub            *websocket.Hub
	Store          handlers.Pinger
	Metrics        http.Handler
	RateLimiter    *apimw.RateLimiter // optional
}

// NewRouter creates and configures a new Chi router.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apimw.RequestLogger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: !allowsAnyOrigin(cfg.AllowedOrigins),
		MaxAge:           300,
	}))

	healthHandler := handlers.NewHealthHandler(cfg.Store)
	wsHandler := handlers.NewWebSocketHandler(cfg.Hub, originChecker(cfg.AllowedOrigins))

	r.Get("/", healthHandler.Welcome)
	r.Get("/healthz", healthHandler.Health)
	r.Method(http.MethodGet, "/metrics", cfg.Metrics)

	r.Group(func(r chi.Router) {
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Middleware)
		}
		r.Use(cfg.Auth.Middleware)

		r.Method(http.MethodPost, "/graphql", &relay.Handler{Schema: cfg.Schema})
		r.Get("/ws", wsHandler.Serve)
	})

	return r
}

func allowsAnyOrigin(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}

// originChecker applies the CORS origin list to websocket upgrades.
func originChecker(origins []string) func(r *http.Request) bool {
	if len(origins) == 0 || allowsAnyOrigin(origins) {
		return nil
	}
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || allowed[origin]
	}
}
