package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/taskly/task-tracker/internal/api/metrics"
)

// RateLimitConfig bounds requests per client IP over a window.
type RateLimitConfig struct {
	Window      time.Duration
	MaxRequests int
	// Store overrides the in-process token bucket, e.g. with the Redis store
	// when several instances share one budget.
	Store echomiddleware.RateLimiterStore
	// SkipPrefixes are request path prefixes that are never limited.
	SkipPrefixes []string
}

// NewMemoryStore spreads MaxRequests evenly over Window with a burst of
// MaxRequests, which approximates the fixed window of the shared store.
func NewMemoryStore(window time.Duration, maxRequests int) echomiddleware.RateLimiterStore {
	return echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(maxRequests) / window.Seconds()),
		Burst:     maxRequests,
		ExpiresIn: window,
	})
}

const rateLimitMessage = "too many requests from this IP, please try again later"

// RateLimit answers 429 once a client IP exceeds its budget.
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	store := cfg.Store
	if store == nil {
		store = NewMemoryStore(cfg.Window, cfg.MaxRequests)
	}

	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			for _, prefix := range cfg.SkipPrefixes {
				if strings.HasPrefix(path, prefix) {
					return true
				}
			}
			return false
		},
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			metrics.RateLimitedTotal.Inc()
			return echo.NewHTTPError(http.StatusTooManyRequests, rateLimitMessage)
		},
	})
}
