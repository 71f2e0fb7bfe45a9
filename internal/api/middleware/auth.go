package middleware

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/taskly/task-tracker/internal/api/metrics"
	"github.com/taskly/task-tracker/internal/core/domain"
	"github.com/taskly/task-tracker/internal/core/ports"
)

// IdentityKey is the echo context key holding the verified domain.Identity.
const IdentityKey = "identity"

var errMissingBearer = errors.New("missing or malformed authorization header")

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively.
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// Auth verifies the bearer token and stores the identity on the context.
// Every failure returns domain.ErrUnauthorized so clients see one uniform
// message; the specific cause is only logged and counted.
func Auth(verifier ports.TokenVerifier, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				metrics.TokenRejectionsTotal.WithLabelValues("missing").Inc()
				log.Debug().Err(errMissingBearer).Str("path", c.Path()).Msg("request rejected")
				return domain.ErrUnauthorized
			}

			identity, err := verifier.Verify(token)
			if err != nil {
				reason := domain.RejectionReason(err)
				metrics.TokenRejectionsTotal.WithLabelValues(reason).Inc()
				log.Debug().Err(err).Str("reason", reason).Str("path", c.Path()).Msg("request rejected")
				return domain.ErrUnauthorized
			}

			c.Set(IdentityKey, identity)
			return next(c)
		}
	}
}
