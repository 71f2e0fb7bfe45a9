package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskly/task-tracker/internal/api/metrics"
	"github.com/taskly/task-tracker/internal/core/domain"
	"github.com/taskly/task-tracker/internal/core/ports"
	"github.com/taskly/task-tracker/internal/core/validation"
)

type TaskService struct {
	repo     ports.TaskRepository
	validate *validation.Validator
	logger   zerolog.Logger
	now      func() time.Time
}

func NewTaskService(repo ports.TaskRepository, validate *validation.Validator, logger zerolog.Logger) *TaskService {
	return &TaskService{repo: repo, validate: validate, logger: logger, now: time.Now}
}

// List returns the caller's tasks; an owner with no tasks gets an empty slice.
func (s *TaskService) List(ctx context.Context, userID int64) ([]*domain.Task, error) {
	tasks, err := s.repo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}
	return tasks, nil
}

func (s *TaskService) Get(ctx context.Context, userID, taskID int64) (*domain.Task, error) {
	task, err := s.repo.FindByID(ctx, userID, taskID)
	if err != nil {
		return nil, fmt.Errorf("get task %d: %w", taskID, err)
	}
	return task, nil
}

// Create validates input and stores a new, uncompleted task owned by userID.
func (s *TaskService) Create(ctx context.Context, userID int64, in ports.CreateTaskInput) (*domain.Task, error) {
	if err := s.validate.Validate(in); err != nil {
		return nil, err
	}

	deadline, err := optionalDate(in.Deadline)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC().Truncate(domain.TimestampPrecision)
	task, err := s.repo.Create(ctx, &domain.Task{
		UserID:      userID,
		Task:        in.Task,
		Description: optionalText(in.Description),
		Deadline:    deadline,
		Completed:   false,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to create task")
		return nil, fmt.Errorf("create task: %w", err)
	}

	metrics.TaskMutationsTotal.WithLabelValues("create").Inc()
	s.logger.Info().Int64("task_id", task.ID).Int64("user_id", userID).Msg("task created")
	return task, nil
}

// Update applies the present fields of in and always refreshes UpdatedAt.
func (s *TaskService) Update(ctx context.Context, userID, taskID int64, in ports.UpdateTaskInput) (*domain.Task, error) {
	if err := s.validate.Validate(in); err != nil {
		return nil, err
	}

	task, err := s.repo.Update(ctx, userID, taskID, func(t *domain.Task) error {
		if err := applyUpdate(t, in); err != nil {
			return err
		}
		t.Touch(s.now())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update task %d: %w", taskID, err)
	}

	metrics.TaskMutationsTotal.WithLabelValues("update").Inc()
	s.logger.Info().Int64("task_id", taskID).Int64("user_id", userID).Msg("task updated")
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, userID, taskID int64) error {
	if err := s.repo.Delete(ctx, userID, taskID); err != nil {
		return fmt.Errorf("delete task %d: %w", taskID, err)
	}

	metrics.TaskMutationsTotal.WithLabelValues("delete").Inc()
	s.logger.Info().Int64("task_id", taskID).Int64("user_id", userID).Msg("task deleted")
	return nil
}

func applyUpdate(t *domain.Task, in ports.UpdateTaskInput) error {
	if title, ok := in.Task.Get(); ok {
		t.Task = title
	}

	if in.Description.Present() {
		desc, _ := in.Description.Get()
		t.Description = optionalText(&desc)
	}

	if in.Deadline.Present() {
		raw, _ := in.Deadline.Get()
		deadline, err := optionalDate(&raw)
		if err != nil {
			return err
		}
		t.Deadline = deadline
	}

	if completed, ok := in.Completed.Get(); ok {
		t.Completed = completed
	}
	return nil
}

// optionalText maps nil and "" to a stored null.
func optionalText(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}

func optionalDate(s *string) (*domain.Date, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	d, err := domain.ParseDate(*s)
	if err != nil {
		return nil, domain.NewValidationError("deadline", "deadline must be a valid date in YYYY-MM-DD format")
	}
	return &d, nil
}
