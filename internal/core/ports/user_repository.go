package ports

import (
	"context"

	"github.com/taskly/task-tracker/internal/core/domain"
)

// UserRepository persists accounts. Implementations must enforce username
// uniqueness themselves and report a violation as domain.ErrUserExists.
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}
