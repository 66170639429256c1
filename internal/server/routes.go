package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/scoutdesk/scoutdesk/internal/handler"
	"github.com/scoutdesk/scoutdesk/internal/middleware"
)

// Handlers groups the HTTP handlers mounted by NewRouter.
type Handlers struct {
	Health        *handler.HealthHandler
	Metrics       *handler.MetricsHandler
	Auth          *handler.AuthHandler
	Companies     *handler.CompanyHandler
	Lists         *handler.ListHandler
	SavedSearches *handler.SavedSearchHandler
}

// RouterConfig carries middleware configuration for NewRouter.
type RouterConfig struct {
	Logger   *slog.Logger
	Verifier middleware.TokenVerifier

	// RateLimit configures per-user limits. A nil Limiter disables them.
	RateLimit middleware.RateLimitConfig
	// IPLimiter guards signup and login. Nil disables it.
	IPLimiter *middleware.IPRateLimiter

	Security   middleware.SecurityConfig
	CORS       middleware.CORSConfig
	PrintStack bool
}

// NewRouter configures the chi router with all routes and middleware.
func NewRouter(h Handlers, cfg RouterConfig) *chi.Mux {
	base := handler.New()
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recoverer(cfg.Logger, cfg.PrintStack))
	r.Use(middleware.Security(cfg.Security))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.MaxBodySize(cfg.Security.MaxRequestBodySize))

	// Probes and metrics (no auth required)
	r.Get("/health", h.Health.Health)
	r.Get("/readyz", h.Health.Readyz)
	r.Get("/metrics", h.Metrics.Metrics)

	authCfg := middleware.AuthConfig{
		Logger:   cfg.Logger,
		Verifier: cfg.Verifier,
	}

	rl := cfg.RateLimit
	rl.Logger = cfg.Logger
	userLimit, enrichLimit := passthrough, passthrough
	if rl.Limiter != nil {
		userLimit = middleware.RateLimitUser(rl)
		enrichLimit = middleware.RateLimitEnrich(rl)
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.RateLimitIP(cfg.Logger, cfg.IPLimiter)).Post("/signup", h.Auth.Signup)
			r.With(middleware.RateLimitIP(cfg.Logger, cfg.IPLimiter)).Post("/login", h.Auth.Login)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(authCfg))
				r.Use(userLimit)
				r.Get("/me", h.Auth.GetMe)
				r.Patch("/me", h.Auth.UpdateMe)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(authCfg))
			r.Use(userLimit)

			r.Route("/companies", func(r chi.Router) {
				r.Get("/", h.Companies.List)
				r.Get("/{id}", h.Companies.Get)
				r.With(enrichLimit).Post("/{id}/enrich", h.Companies.Enrich)
				r.Post("/{id}/notes", h.Companies.AddNote)
			})

			r.Route("/lists", func(r chi.Router) {
				r.Get("/", h.Lists.List)
				r.Post("/", h.Lists.Create)
				r.Post("/add", h.Lists.Add)
				r.Post("/remove", h.Lists.Remove)
				r.Delete("/{id}", h.Lists.Delete)
			})

			r.Route("/saved-searches", func(r chi.Router) {
				r.Get("/", h.SavedSearches.List)
				r.Post("/", h.SavedSearches.Create)
				r.Delete("/{id}", h.SavedSearches.Delete)
			})
		})
	})

	// 404 and 405 handlers
	r.NotFound(base.NotFound)
	r.MethodNotAllowed(base.MethodNotAllowed)

	return r
}

func passthrough(next http.Handler) http.Handler { return next }
