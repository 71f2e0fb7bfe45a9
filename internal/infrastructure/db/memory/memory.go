// Package memory provides process-local implementations of the user and
// task repositories. They back STORE_DRIVER=memory for local development and
// are used throughout the tests; nothing is persisted across restarts.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/taskly/task-tracker/internal/core/domain"
	"github.com/taskly/task-tracker/internal/core/ports"
)

// UserRepository is an in-memory ports.UserRepository.
type UserRepository struct {
	mu     sync.RWMutex
	nextID int64
	byName map[string]*domain.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{byName: make(map[string]*domain.User)}
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[user.Username]; exists {
		return nil, domain.ErrUserExists
	}
	r.nextID++
	clone := *user
	clone.ID = r.nextID
	r.byName[clone.Username] = &clone

	out := clone
	return &out, nil
}

func (r *UserRepository) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byName[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

// Count returns the number of stored users.
func (r *UserRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byName)
}

// TaskRepository is an in-memory ports.TaskRepository.
type TaskRepository struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]*domain.Task
}

func NewTaskRepository() *TaskRepository {
	return &TaskRepository{byID: make(map[int64]*domain.Task)}
}

func (r *TaskRepository) ListByOwner(_ context.Context, userID int64) ([]*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tasks := make([]*domain.Task, 0)
	for _, t := range r.byID {
		if t.UserID == userID {
			tasks = append(tasks, cloneTask(t))
		}
	}
	slices.SortFunc(tasks, domain.CompareTasks)
	return tasks, nil
}

func (r *TaskRepository) FindByID(_ context.Context, userID, taskID int64) (*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, err := r.owned(userID, taskID)
	if err != nil {
		return nil, err
	}
	return cloneTask(t), nil
}

func (r *TaskRepository) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	stored := cloneTask(task)
	stored.ID = r.nextID
	r.byID[stored.ID] = stored
	return cloneTask(stored), nil
}

// Update holds the write lock for the whole read-modify-write.
func (r *TaskRepository) Update(_ context.Context, userID, taskID int64, mutate ports.TaskMutation) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, err := r.owned(userID, taskID)
	if err != nil {
		return nil, err
	}

	working := cloneTask(current)
	if err := mutate(working); err != nil {
		return nil, err
	}
	working.ID, working.UserID, working.CreatedAt = current.ID, current.UserID, current.CreatedAt
	r.byID[taskID] = working
	return cloneTask(working), nil
}

func (r *TaskRepository) Delete(_ context.Context, userID, taskID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.owned(userID, taskID); err != nil {
		return err
	}
	delete(r.byID, taskID)
	return nil
}

// Count returns the number of stored tasks across all owners.
func (r *TaskRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// owned must be called with r.mu held.
func (r *TaskRepository) owned(userID, taskID int64) (*domain.Task, error) {
	t, ok := r.byID[taskID]
	if !ok || t.UserID != userID {
		return nil, domain.ErrTaskNotFound
	}
	return t, nil
}

func cloneTask(t *domain.Task) *domain.Task {
	clone := *t
	if t.Description != nil {
		d := *t.Description
		clone.Description = &d
	}
	if t.Deadline != nil {
		d := *t.Deadline
		clone.Deadline = &d
	}
	return &clone
}
