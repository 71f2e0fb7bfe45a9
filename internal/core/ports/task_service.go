package ports

import (
	"context"

	"github.com/taskly/task-tracker/internal/core/domain"
)

// CreateTaskInput is the payload of a new task. Empty description or
// deadline strings are stored as null.
type CreateTaskInput struct {
	Task        string  `validate:"required,max=200"`
	Description *string `validate:"omitempty,max=500"`
	Deadline    *string `validate:"omitempty,calendar_date"`
}

// UpdateTaskInput is a partial update; only present fields are applied.
type UpdateTaskInput struct {
	Task        domain.Optional[string]
	Description domain.Optional[string]
	Deadline    domain.Optional[string]
	Completed   domain.Optional[bool]
}

// TaskService exposes owner-scoped task use cases. userID always comes from
// the verified session, never from the payload.
type TaskService interface {
	List(ctx context.Context, userID int64) ([]*domain.Task, error)
	Get(ctx context.Context, userID, taskID int64) (*domain.Task, error)
	Create(ctx context.Context, userID int64, in CreateTaskInput) (*domain.Task, error)
	Update(ctx context.Context, userID, taskID int64, in UpdateTaskInput) (*domain.Task, error)
	Delete(ctx context.Context, userID, taskID int64) error
}
