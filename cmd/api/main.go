// Package main is the entrypoint for the Scoutdesk API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/joho/godotenv"

	"github.com/scoutdesk/scoutdesk/internal/auth"
	"github.com/scoutdesk/scoutdesk/internal/cache"
	"github.com/scoutdesk/scoutdesk/internal/config"
	"github.com/scoutdesk/scoutdesk/internal/enrichment"
	"github.com/scoutdesk/scoutdesk/internal/handler"
	"github.com/scoutdesk/scoutdesk/internal/metrics"
	"github.com/scoutdesk/scoutdesk/internal/middleware"
	"github.com/scoutdesk/scoutdesk/internal/repository"
	"github.com/scoutdesk/scoutdesk/internal/server"
	"github.com/scoutdesk/scoutdesk/internal/service"
)

func main() {
	ctx := context.Background()

	// A missing .env is fine; the process environment wins either way.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to read .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	// Initialize database
	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database")

	// Initialize cache
	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		repo.Close()
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to Redis")

	// Enrichment pipeline
	generator, err := enrichment.NewGeminiGenerator(ctx, enrichment.GeminiConfig{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		Timeout: cfg.ModelTimeout,
	})
	if err != nil {
		cacheClient.Close()
		repo.Close()
		logger.Error("failed to create model client", "error", err)
		os.Exit(1)
	}

	recorder := metrics.NewInMemory()
	enricher := enrichment.NewEnricher(
		repo,
		enrichment.NewReader(cfg.ReaderBaseURL, cfg.ReaderAPIKey, cfg.ReaderTimeout),
		generator,
		enrichment.Options{
			MaxContentChars: cfg.EnrichMaxContentChars,
			Metrics:         recorder,
			Logger:          logger,
		},
	)

	// Initialize services
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiry)
	authService := service.NewAuthService(repo, auth.NewHasher(auth.DefaultParams()), tokens, recorder, logger)
	companyService := service.NewCompanyService(
		repo,
		cache.NewCompanyCache(cacheClient, cfg.CompanyCacheTTL),
		enricher,
		recorder,
		logger,
	)
	listService := service.NewListService(repo)
	savedSearchService := service.NewSavedSearchService(repo)

	// Initialize handlers and router
	handlers := server.Handlers{
		Health:        handler.NewHealthHandler(repo, cacheClient, logger),
		Metrics:       handler.NewMetricsHandler(recorder),
		Auth:          handler.NewAuthHandler(authService, logger),
		Companies:     handler.NewCompanyHandler(companyService, logger),
		Lists:         handler.NewListHandler(listService, logger),
		SavedSearches: handler.NewSavedSearchHandler(savedSearchService, logger),
	}

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()
	if len(corsCfg.AllowedOrigins) == 0 && cfg.IsDevelopment() {
		corsCfg.AllowedOrigins = []string{"*"}
	}

	var ipLimiter *middleware.IPRateLimiter
	if cfg.RateLimitAuthEnabled {
		ipLimiter = middleware.NewIPRateLimiter(cfg.RateLimitAuthRPS, cfg.RateLimitAuthBurst)
	}

	router := server.NewRouter(handlers, server.RouterConfig{
		Logger:   logger,
		Verifier: tokens,
		RateLimit: middleware.RateLimitConfig{
			Limiter:     cacheClient,
			APIEnabled:  cfg.RateLimitAPIEnabled,
			APIRPM:      cfg.RateLimitAPIRPM,
			APIBurst:    cfg.RateLimitAPIBurst,
			EnrichRPM:   cfg.RateLimitEnrichRPM,
			EnrichBurst: cfg.RateLimitEnrichBurst,
		},
		IPLimiter: ipLimiter,
		Security: middleware.SecurityConfig{
			IsDevelopment:      cfg.IsDevelopment(),
			MaxRequestBodySize: cfg.MaxRequestBodySize,
		},
		CORS:       corsCfg,
		PrintStack: cfg.IsDevelopment(),
	})

	srv := server.New(router, server.Config{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	// Registered first, closed last.
	srv.OnShutdown("postgres", func(context.Context) error {
		repo.Close()
		return nil
	})
	srv.OnShutdown("redis", func(context.Context) error {
		return cacheClient.Close()
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"model", cfg.GeminiModel,
		"reader", redactURL(cfg.ReaderBaseURL),
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h).With("service", "scoutdesk-api")
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

// redactURL strips the password from a connection URL, keeping the username.
func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

// sanitizeError replaces any secret URLs echoed back in a driver error.
func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
