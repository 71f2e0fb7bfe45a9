package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskly/task-tracker/internal/core/domain"
	"github.com/taskly/task-tracker/internal/core/ports"
	"github.com/taskly/task-tracker/internal/core/validation"
	"github.com/taskly/task-tracker/internal/infrastructure/db/memory"
)

func newTestAuthService(t *testing.T) (*AuthService, *memory.UserRepository, *TokenService) {
	t.Helper()
	repo := memory.NewUserRepository()
	tokens := NewTokenService("secret", time.Hour)
	svc := NewAuthService(repo, NewBcryptHasher(bcrypt.MinCost), tokens, validation.New(), zerolog.Nop())
	return svc, repo, tokens
}

func TestAuthService_Register_Success(t *testing.T) {
	svc, repo, tokens := newTestAuthService(t)

	res, err := svc.Register(context.Background(), ports.RegisterInput{Username: "alice", Password: "secret123"})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if res.User.UserID <= 0 || res.User.Username != "alice" {
		t.Fatalf("unexpected identity: %+v", res.User)
	}
	if res.Token == "" {
		t.Fatalf("expected token, got empty")
	}

	identity, err := tokens.Verify(res.Token)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if identity != res.User {
		t.Fatalf("token identity %+v, want %+v", identity, res.User)
	}

	stored, err := repo.FindByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("user not stored: %v", err)
	}
	if stored.PasswordHash == "secret123" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc, repo, _ := newTestAuthService(t)

	cases := []struct {
		name  string
		in    ports.RegisterInput
		field string
	}{
		{"missing username", ports.RegisterInput{Password: "secret123"}, "username"},
		{"short username", ports.RegisterInput{Username: "ab", Password: "secret123"}, "username"},
		{"short password", ports.RegisterInput{Username: "alice", Password: "12345"}, "password"},
		{"missing password", ports.RegisterInput{Username: "alice"}, "password"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tc.in)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			var ve *domain.ValidationError
			if !errors.As(err, &ve) || ve.Field != tc.field {
				t.Fatalf("expected validation error on %q, got %v", tc.field, err)
			}
		})
	}

	if repo.Count() != 0 {
		t.Fatalf("invalid registrations must not create users, got %d", repo.Count())
	}
}

func TestAuthService_Register_PasswordTooLong(t *testing.T) {
	svc, _, _ := newTestAuthService(t)

	_, err := svc.Register(context.Background(), ports.RegisterInput{Username: "alice", Password: strings.Repeat("x", 73)})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	svc, repo, _ := newTestAuthService(t)

	if _, err := svc.Register(context.Background(), ports.RegisterInput{Username: "bob", Password: "password1"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, err := svc.Register(context.Background(), ports.RegisterInput{Username: "bob", Password: "password2"}); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
	if repo.Count() != 1 {
		t.Fatalf("expected exactly one user, got %d", repo.Count())
	}
}

// racingUserRepo reports no existing user on lookup but rejects the insert,
// as a store does when another registration commits in between.
type racingUserRepo struct {
	*memory.UserRepository
}

func (r racingUserRepo) FindByUsername(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (r racingUserRepo) Create(context.Context, *domain.User) (*domain.User, error) {
	return nil, domain.ErrUserExists
}

func TestAuthService_Register_LostRace(t *testing.T) {
	repo := racingUserRepo{memory.NewUserRepository()}
	svc := NewAuthService(repo, NewBcryptHasher(bcrypt.MinCost), NewTokenService("secret", time.Hour), validation.New(), zerolog.Nop())

	_, err := svc.Register(context.Background(), ports.RegisterInput{Username: "bob", Password: "password1"})
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	svc, _, _ := newTestAuthService(t)

	reg, err := svc.Register(context.Background(), ports.RegisterInput{Username: "carol", Password: "s3cret!"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	res, err := svc.Login(context.Background(), ports.LoginInput{Username: "carol", Password: "s3cret!"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if res.Token == "" {
		t.Fatalf("expected token, got empty")
	}
	if res.User != reg.User {
		t.Fatalf("login identity %+v, want %+v", res.User, reg.User)
	}
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	svc, _, _ := newTestAuthService(t)

	if _, err := svc.Register(context.Background(), ports.RegisterInput{Username: "dave", Password: "correct-horse"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	_, wrongPassword := svc.Login(context.Background(), ports.LoginInput{Username: "dave", Password: "battery-staple"})
	_, unknownUser := svc.Login(context.Background(), ports.LoginInput{Username: "nobody", Password: "correct-horse"})

	for _, err := range []error{wrongPassword, unknownUser} {
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	}
	if wrongPassword.Error() != unknownUser.Error() {
		t.Fatalf("failures must be indistinguishable: %q vs %q", wrongPassword, unknownUser)
	}
}

func TestAuthService_Login_MissingFields(t *testing.T) {
	svc, _, _ := newTestAuthService(t)

	if _, err := svc.Login(context.Background(), ports.LoginInput{Username: "erin"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAuthService_WhoAmI(t *testing.T) {
	svc, _, _ := newTestAuthService(t)

	reg, err := svc.Register(context.Background(), ports.RegisterInput{Username: "frank", Password: "password"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	identity, err := svc.WhoAmI(context.Background(), reg.Token)
	if err != nil {
		t.Fatalf("WhoAmI failed: %v", err)
	}
	if identity != reg.User {
		t.Fatalf("identity %+v, want %+v", identity, reg.User)
	}

	if _, err := svc.WhoAmI(context.Background(), "garbage"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestAuthService_Refresh(t *testing.T) {
	svc, _, tokens := newTestAuthService(t)

	reg, err := svc.Register(context.Background(), ports.RegisterInput{Username: "grace", Password: "password"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	fresh, err := svc.Refresh(context.Background(), reg.Token)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if fresh == reg.Token {
		t.Fatalf("expected a new token")
	}
	identity, err := tokens.Verify(fresh)
	if err != nil || identity != reg.User {
		t.Fatalf("refreshed token identity %+v (err %v), want %+v", identity, err, reg.User)
	}
}

func TestAuthService_Refresh_Expired(t *testing.T) {
	svc, _, tokens := newTestAuthService(t)

	issuedAt := time.Now().Add(-2 * time.Hour)
	tokens.now = func() time.Time { return issuedAt }
	stale, err := tokens.Issue(domain.Identity{UserID: 1, Username: "henry"})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	tokens.now = time.Now

	if _, err := svc.Refresh(context.Background(), stale); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}
