package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/scoutdesk/scoutdesk/internal/auth"
	"github.com/scoutdesk/scoutdesk/internal/cache"
)

// Limiter checks per-user token buckets. Implemented by cache.Cache.
type Limiter interface {
	CheckUserRateLimit(ctx context.Context, userID string, ratePerMinute, burst int) (*cache.RateLimitResult, error)
	CheckEnrichRateLimit(ctx context.Context, userID string, ratePerMinute, burst int) (*cache.RateLimitResult, error)
}

// RateLimitConfig holds configuration for rate limiting middleware.
type RateLimitConfig struct {
	Logger  *slog.Logger
	Limiter Limiter

	// Per-user limit on every authenticated route
	APIEnabled bool
	APIRPM     int
	APIBurst   int

	// Per-user limit on enrichment, applied on top of the API limit
	EnrichRPM   int
	EnrichBurst int
}

type checkFunc func(ctx context.Context, userID string, ratePerMinute, burst int) (*cache.RateLimitResult, error)

// RateLimitUser returns middleware that rate limits requests per user.
// Must be applied after Auth middleware.
func RateLimitUser(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return userLimit(cfg, "api", cfg.APIRPM, cfg.APIBurst, cfg.Limiter.CheckUserRateLimit)
}

// RateLimitEnrich returns middleware that bounds enrichment calls per user.
// Must be applied after Auth middleware.
func RateLimitEnrich(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return userLimit(cfg, "enrich", cfg.EnrichRPM, cfg.EnrichBurst, cfg.Limiter.CheckEnrichRateLimit)
}

func userLimit(cfg RateLimitConfig, kind string, rpm, burst int, check checkFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.APIEnabled || rpm <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			userID := auth.UserIDFromContext(r.Context())
			if userID == "" {
				// Auth did not run; nothing to key on.
				next.ServeHTTP(w, r)
				return
			}

			result, err := check(r.Context(), userID, rpm, burst)
			if err != nil {
				cfg.Logger.Error("rate limit check failed",
					slog.String("error", err.Error()),
					slog.String("type", kind),
					slog.String("user_id", userID),
				)
				// Fail open - allow request
				next.ServeHTTP(w, r)
				return
			}

			setRateLimitHeaders(w, rpm, result.Remaining, result.ResetAt)

			if !result.Allowed {
				cfg.Logger.Warn("rate limit exceeded",
					slog.String("user_id", userID),
					slog.String("type", kind),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.Int64("retry_after_seconds", retryAfterSeconds(result.RetryAfter)),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeRateLimitError(w, result.RetryAfter)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// IPRateLimiter keeps an in-process token bucket per client IP.
// Idle buckets are swept periodically.
type IPRateLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*ipBucket
	limit     rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type ipBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const ipBucketIdleTTL = 10 * time.Minute

// NewIPRateLimiter creates a limiter allowing rps requests per second with the given burst.
func NewIPRateLimiter(rps, burst int) *IPRateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &IPRateLimiter{
		buckets: make(map[string]*ipBucket),
		limit:   rate.Limit(rps),
		burst:   burst,
		idleTTL: ipBucketIdleTTL,
		now:     time.Now,
	}
}

// Allow consumes one token for ip. When denied, it returns how long until
// the next token is available.
func (l *IPRateLimiter) Allow(ip string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	b, ok := l.buckets[ip]
	if !ok {
		b = &ipBucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[ip] = b
	}
	b.lastSeen = now

	res := b.limiter.ReserveN(now, 1)
	if !res.OK() {
		return false, time.Second
	}
	delay := res.DelayFrom(now)
	if delay == 0 {
		return true, 0
	}
	res.CancelAt(now)
	return false, delay
}

func (l *IPRateLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.idleTTL {
		return
	}
	for ip, b := range l.buckets {
		if now.Sub(b.lastSeen) > l.idleTTL {
			delete(l.buckets, ip)
		}
	}
	l.lastSweep = now
}

// RateLimitIP returns middleware that rate limits requests per client IP.
// Used on the unauthenticated signup and login endpoints.
func RateLimitIP(logger *slog.Logger, limiter *IPRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil {
				next.ServeHTTP(w, r)
				return
			}

			ip := clientIP(r)
			allowed, retryAfter := limiter.Allow(ip)
			if !allowed {
				logger.Warn("rate limit exceeded",
					slog.String("type", "auth"),
					slog.String("ip", ip),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.Int64("retry_after_seconds", retryAfterSeconds(retryAfter)),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeRateLimitError(w, retryAfter)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// setRateLimitHeaders sets standard rate limit response headers.
func setRateLimitHeaders(w http.ResponseWriter, limit int, remaining int64, resetAt time.Time) {
	if limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))
	}
}

// writeRateLimitError writes a 429 Too Many Requests response with Retry-After.
func writeRateLimitError(w http.ResponseWriter, retryAfter time.Duration) {
	secs := retryAfterSeconds(retryAfter)
	w.Header().Set("Retry-After", strconv.FormatInt(secs, 10))
	writeError(w, http.StatusTooManyRequests, codeRateLimited,
		fmt.Sprintf("Rate limit exceeded. Retry after %d seconds.", secs))
}

// retryAfterSeconds rounds up to whole seconds, minimum one.
func retryAfterSeconds(d time.Duration) int64 {
	secs := int64(math.Ceil(d.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return secs
}

// clientIP returns the host part of RemoteAddr. RealIP middleware upstream
// has already applied X-Forwarded-For / X-Real-IP.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
