package ratelimit

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tendant/simple-crm/pkg/auth"
	"github.com/tendant/simple-crm/pkg/errors"
)

// Config holds rate limiting configuration
type Config struct {
	Enabled bool `env:"RATELIMIT_ENABLED" env-default:"true"`

	// Sign-in attempts per client IP
	LoginCapacity   int     `env:"RATELIMIT_LOGIN_CAPACITY" env-default:"10"`
	LoginRefillRate float64 `env:"RATELIMIT_LOGIN_REFILL_RATE" env-default:"0.1667"`

	// Requests per signed-in user
	PerUserCapacity   int     `env:"RATELIMIT_PER_USER_CAPACITY" env-default:"200"`
	PerUserRefillRate float64 `env:"RATELIMIT_PER_USER_REFILL_RATE" env-default:"3.33"`

	BucketTTL time.Duration `env:"RATELIMIT_BUCKET_TTL" env-default:"1h"`
}

// DefaultConfig allows 10 sign-in attempts per minute per IP and 200
// requests per minute per user.
func DefaultConfig() Config {
	return Config{
		Enabled:           true,
		LoginCapacity:     10,
		LoginRefillRate:   10.0 / 60.0,
		PerUserCapacity:   200,
		PerUserRefillRate: 200.0 / 60.0,
		BucketTTL:         time.Hour,
	}
}

// Middleware holds the rate limiting middleware state
type Middleware struct {
	config       Config
	loginLimiter *RateLimiter
	userLimiter  *RateLimiter
}

func NewMiddleware(config Config) *Middleware {
	return &Middleware{
		config:       config,
		loginLimiter: NewRateLimiter(config.LoginCapacity, config.LoginRefillRate, config.BucketTTL),
		userLimiter:  NewRateLimiter(config.PerUserCapacity, config.PerUserRefillRate, config.BucketTTL),
	}
}

// Run sweeps idle buckets until ctx is done.
func (m *Middleware) Run(ctx context.Context) {
	go m.loginLimiter.Run(ctx)
	m.userLimiter.Run(ctx)
}

// LoginHandler limits requests per client IP. It guards the public sign-in
// routes.
func (m *Middleware) LoginHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.config.Enabled {
			ip := clientIP(r)
			if !m.loginLimiter.Allow(ip) {
				m.rateLimitExceeded(w, r, "login", ip)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// UserHandler limits requests per acting user. It must run after
// auth.ActorMiddleware.
func (m *Middleware) UserHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.config.Enabled {
			if user, ok := auth.UserFromContext(r.Context()); ok {
				key := user.ID.String()
				if !m.userLimiter.Allow(key) {
					m.rateLimitExceeded(w, r, "user", key)
					return
				}
				w.Header().Set("X-RateLimit-Limit-User", strconv.Itoa(m.config.PerUserCapacity))
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) rateLimitExceeded(w http.ResponseWriter, r *http.Request, limitType, key string) {
	slog.Warn("Rate limit exceeded",
		"type", limitType,
		"key", key,
		"path", r.URL.Path,
		"method", r.Method,
	)
	w.Header().Set("Retry-After", "60")
	errors.Render(w, r, errors.New(errors.ErrCodeRateLimited, "too many requests").WithDetail("type", limitType))
}

// clientIP prefers the first X-Forwarded-For entry, then X-Real-IP, then
// the connection address.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func (m *Middleware) GetStats() map[string]Stats {
	return map[string]Stats{
		"login": m.loginLimiter.GetStats(),
		"user":  m.userLimiter.GetStats(),
	}
}
