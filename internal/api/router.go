package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"smishguard/internal/api/handlers"
	apimiddleware "smishguard/internal/api/middleware"
	"smishguard/internal/config"
	"smishguard/internal/infrastructure/cache"
	"smishguard/pkg/logger"
)

// Router holds dependencies for the API router
type Router struct {
	config   config.Config
	handlers *handlers.Handlers
	redis    *cache.RedisStore
	logger   *logger.Logger
}

// NewRouter creates a new Router instance
func NewRouter(cfg config.Config, h *handlers.Handlers, redis *cache.RedisStore, log *logger.Logger) *Router {
	return &Router{
		config:   cfg,
		handlers: h,
		redis:    redis,
		logger:   log.WithComponent("router"),
	}
}

// Setup sets up the Chi router with all routes and middleware
func (r *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Core middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(apimiddleware.Logger(r.logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(30 * time.Second))

	// CORS
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   r.config.CORS.AllowedOrigins,
		AllowedMethods:   r.config.CORS.AllowedMethods,
		AllowedHeaders:   r.config.CORS.AllowedHeaders,
		AllowCredentials: r.config.CORS.AllowCredentials,
		MaxAge:           r.config.CORS.MaxAge,
	}))

	// Rate limiting requires Redis for the shared counters
	if r.config.RateLimit.Enabled && r.redis != nil {
		router.Use(apimiddleware.RateLimiter(r.redis, r.config.RateLimit))
	}

	// Health checks
	router.Get("/health", r.handlers.Health.Check)
	router.Get("/ready", r.handlers.Health.Ready)

	router.Route("/api/v1", func(api chi.Router) {
		// Message analysis endpoints
		api.Route("/messages", func(msg chi.Router) {
			msg.Post("/analyze", r.handlers.Analyze.Analyze)
			msg.Post("/analyze/batch", r.handlers.Analyze.AnalyzeBatch)
			msg.Post("/check-url", r.handlers.Analyze.CheckURL)
		})

		// Sender pack management
		api.Route("/packs", func(packs chi.Router) {
			packs.Post("/", r.handlers.Packs.Upload)
			packs.Get("/active", r.handlers.Packs.Active)
		})

		// User override rules
		api.Route("/rules", func(rules chi.Router) {
			rules.Get("/", r.handlers.Rules.List)
			rules.Post("/", r.handlers.Rules.Add)
			rules.Delete("/{id}", r.handlers.Rules.Delete)
		})
	})

	return router
}
