package ports

import (
	"context"

	"github.com/taskly/task-tracker/internal/core/domain"
)

// TaskMutation edits a loaded task in place. Returning an error aborts the
// update without persisting anything.
type TaskMutation func(task *domain.Task) error

// TaskRepository persists tasks. Every lookup is scoped by owner: a task that
// exists but belongs to someone else is reported as domain.ErrTaskNotFound.
type TaskRepository interface {
	// ListByOwner returns the owner's tasks ordered as domain.CompareTasks.
	ListByOwner(ctx context.Context, userID int64) ([]*domain.Task, error)
	FindByID(ctx context.Context, userID, taskID int64) (*domain.Task, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	// Update loads the owned task, applies mutate and persists the result as
	// a single unit.
	Update(ctx context.Context, userID, taskID int64, mutate TaskMutation) (*domain.Task, error)
	Delete(ctx context.Context, userID, taskID int64) error
}
