package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/taskly/task-tracker/internal/core/domain"
	"github.com/taskly/task-tracker/internal/core/service"
)

func runAuth(t *testing.T, header string, verifier *service.TokenService) (echo.Context, bool, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	err := Auth(verifier, zerolog.Nop())(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})(c)
	return c, called, err
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	tokens := service.NewTokenService("secret", time.Hour)
	want := domain.Identity{UserID: 42, Username: "alice"}
	signed, err := tokens.Issue(want)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	for _, scheme := range []string{"Bearer ", "bearer ", "BEARER "} {
		c, called, err := runAuth(t, scheme+signed, tokens)
		if err != nil {
			t.Fatalf("%q: handler error: %v", scheme, err)
		}
		if !called {
			t.Fatalf("%q: next not called", scheme)
		}
		got, ok := c.Get(IdentityKey).(domain.Identity)
		if !ok || got != want {
			t.Fatalf("%q: identity not set: %+v", scheme, c.Get(IdentityKey))
		}
	}
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	tokens := service.NewTokenService("secret", time.Hour)
	foreign, _ := service.NewTokenService("other", time.Hour).Issue(domain.Identity{UserID: 1, Username: "x"})

	cases := map[string]string{
		"missing header": "",
		"wrong scheme":   "Basic abc",
		"no token":       "Bearer ",
		"garbage token":  "Bearer not-a-token",
		"wrong secret":   "Bearer " + foreign,
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			_, called, err := runAuth(t, header, tokens)
			if called {
				t.Fatalf("next must not be called")
			}
			if !errors.Is(err, domain.ErrUnauthorized) {
				t.Fatalf("expected ErrUnauthorized, got %v", err)
			}
			if err != domain.ErrUnauthorized {
				t.Fatalf("the cause must not leak to the client, got %v", err)
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	cases := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer  abc ", "abc", true},
		{"Bearer", "", false},
		{"Token abc", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		token, ok := BearerToken(tc.header)
		if token != tc.token || ok != tc.ok {
			t.Errorf("BearerToken(%q) = %q, %v; want %q, %v", tc.header, token, ok, tc.token, tc.ok)
		}
	}
}
