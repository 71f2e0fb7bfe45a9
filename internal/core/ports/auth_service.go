package ports

import (
	"context"

	"github.com/taskly/task-tracker/internal/core/domain"
)

// RegisterInput carries the credentials of a new account.
type RegisterInput struct {
	Username string `validate:"required,min=3"`
	Password string `validate:"required,min=6"`
}

// LoginInput carries the credentials of an existing account.
type LoginInput struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

// AuthResult is returned by a successful registration or login.
type AuthResult struct {
	User  domain.Identity
	Token string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, in LoginInput) (*AuthResult, error)
	WhoAmI(ctx context.Context, token string) (domain.Identity, error)
	Refresh(ctx context.Context, token string) (string, error)
}
