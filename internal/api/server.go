// Package api provides the HTTP API server and handlers for the Bookhaven server.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/bookhaven/bookhaven-server/internal/kv"
	"github.com/bookhaven/bookhaven-server/internal/store/sqlite"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store           *sqlite.Store
	kv              *kv.Store
	services        *Services
	router          *chi.Mux
	api             huma.API
	logger          *slog.Logger
	authRateLimiter *RateLimiter
}

// NewServer creates a new HTTP server with all routes configured.
// metricsHandler may be nil to disable the /metrics endpoint.
func NewServer(st *sqlite.Store, kvStore *kv.Store, services *Services, metricsHandler http.Handler, logger *slog.Logger) *Server {
	s := &Server{
		store:           st,
		kv:              kvStore,
		services:        services,
		router:          chi.NewRouter(),
		logger:          logger,
		authRateLimiter: NewRateLimiter(20, time.Minute, 10),
	}

	s.setupMiddleware()

	humaConfig := huma.DefaultConfig("Bookhaven API", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerBookRoutes()
	s.registerAuthorRoutes()
	s.registerUserRoutes()

	if metricsHandler != nil {
		s.router.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Auth endpoints get per-IP rate limiting; everything else is open.
	s.router.Use(PathPrefixMiddleware("/api/v1/auth/", RateLimitMiddleware(s.authRateLimiter, s.logger)))
}
