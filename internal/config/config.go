// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// minProductionSecretLength is the shortest JWT secret accepted in production.
const minProductionSecretLength = 32

// ErrWeakJWTSecret is returned when production runs with a short signing secret.
var ErrWeakJWTSecret = errors.New("JWT_SECRET must be at least 32 bytes in production")

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// Cache (Redis)
	RedisURL        string        `env:"REDIS_URL,required"`
	CompanyCacheTTL time.Duration `env:"COMPANY_CACHE_TTL" envDefault:"10m"`

	// Bearer tokens
	JWTSecret string        `env:"JWT_SECRET,required"`
	JWTExpiry time.Duration `env:"JWT_EXPIRY" envDefault:"168h"`

	// Enrichment: reader service and generative model
	GeminiAPIKey          string        `env:"GEMINI_API_KEY,required"`
	GeminiModel           string        `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	ReaderBaseURL         string        `env:"READER_BASE_URL" envDefault:"https://r.jina.ai/"`
	ReaderAPIKey          string        `env:"READER_API_KEY" envDefault:""`
	ReaderTimeout         time.Duration `env:"READER_TIMEOUT" envDefault:"90s"`
	ModelTimeout          time.Duration `env:"MODEL_TIMEOUT" envDefault:"120s"`
	EnrichMaxContentChars int           `env:"ENRICH_MAX_CONTENT_CHARS" envDefault:"15000"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts. WriteTimeout covers a full enrichment round trip.
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"180s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Rate limiting
	RateLimitAPIEnabled   bool `env:"RATE_LIMIT_API_ENABLED" envDefault:"true"`
	RateLimitAPIRPM       int  `env:"RATE_LIMIT_API_RPM" envDefault:"120"`
	RateLimitAPIBurst     int  `env:"RATE_LIMIT_API_BURST" envDefault:"30"`
	RateLimitEnrichRPM    int  `env:"RATE_LIMIT_ENRICH_RPM" envDefault:"10"`
	RateLimitEnrichBurst  int  `env:"RATE_LIMIT_ENRICH_BURST" envDefault:"3"`
	RateLimitAuthEnabled  bool `env:"RATE_LIMIT_AUTH_ENABLED" envDefault:"true"`
	RateLimitAuthRPS      int  `env:"RATE_LIMIT_AUTH_RPS" envDefault:"5"`
	RateLimitAuthBurst    int  `env:"RATE_LIMIT_AUTH_BURST" envDefault:"10"`

	// CORS configuration
	// Comma-separated list of allowed origins (e.g., "https://example.com,https://app.example.com")
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:""`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// Validate checks cross-field constraints env tags cannot express.
func (c *Config) Validate() error {
	if c.IsProduction() && len(c.JWTSecret) < minProductionSecretLength {
		return ErrWeakJWTSecret
	}
	if c.JWTExpiry <= 0 {
		return fmt.Errorf("JWT_EXPIRY must be positive, got %s", c.JWTExpiry)
	}
	if c.EnrichMaxContentChars <= 0 {
		return fmt.Errorf("ENRICH_MAX_CONTENT_CHARS must be positive, got %d", c.EnrichMaxContentChars)
	}
	return nil
}

// Load parses environment variables and returns a Config.
// Returns an error if required variables are missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
