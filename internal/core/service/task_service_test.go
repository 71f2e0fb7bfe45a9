package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskly/task-tracker/internal/core/domain"
	"github.com/taskly/task-tracker/internal/core/ports"
	"github.com/taskly/task-tracker/internal/core/validation"
	"github.com/taskly/task-tracker/internal/infrastructure/db/memory"
)

func newTestTaskService(t *testing.T) *TaskService {
	t.Helper()
	return NewTaskService(memory.NewTaskRepository(), validation.New(), zerolog.Nop())
}

func strPtr(s string) *string { return &s }

// stepClock returns a clock that advances one second per call.
func stepClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}

func TestTaskService_CreateAndGet(t *testing.T) {
	svc := newTestTaskService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, ports.CreateTaskInput{
		Task:        "Buy milk",
		Description: strPtr("2 liters"),
		Deadline:    strPtr("2024-12-25"),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.ID <= 0 || created.UserID != 1 {
		t.Fatalf("unexpected ids: %+v", created)
	}
	if created.Completed {
		t.Fatalf("new task must not be completed")
	}
	if !created.CreatedAt.Equal(created.UpdatedAt) {
		t.Fatalf("created_at %v and updated_at %v must match on create", created.CreatedAt, created.UpdatedAt)
	}

	got, err := svc.Get(ctx, 1, created.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.Task != "Buy milk" || got.Description == nil || *got.Description != "2 liters" {
		t.Fatalf("unexpected task: %+v", got)
	}
	if got.Deadline == nil || got.Deadline.String() != "2024-12-25" {
		t.Fatalf("unexpected deadline: %v", got.Deadline)
	}
}

func TestTaskService_Create_EmptyOptionalsStoredAsNull(t *testing.T) {
	svc := newTestTaskService(t)

	task, err := svc.Create(context.Background(), 1, ports.CreateTaskInput{
		Task:        "No extras",
		Description: strPtr(""),
		Deadline:    strPtr(""),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if task.Description != nil || task.Deadline != nil {
		t.Fatalf("expected null description and deadline, got %+v", task)
	}
}

func TestTaskService_Create_Validation(t *testing.T) {
	svc := newTestTaskService(t)

	cases := []struct {
		name string
		in   ports.CreateTaskInput
	}{
		{"missing title", ports.CreateTaskInput{}},
		{"bad deadline", ports.CreateTaskInput{Task: "x", Deadline: strPtr("2024-02-30")}},
		{"deadline format", ports.CreateTaskInput{Task: "x", Deadline: strPtr("25/12/2024")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), 1, tc.in); !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestTaskService_List_EmptyAndOrdered(t *testing.T) {
	svc := newTestTaskService(t)
	svc.now = stepClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	tasks, err := svc.List(ctx, 1)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if tasks == nil || len(tasks) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", tasks)
	}

	inputs := []ports.CreateTaskInput{
		{Task: "no deadline, oldest"},
		{Task: "late", Deadline: strPtr("2025-06-01")},
		{Task: "early", Deadline: strPtr("2025-01-01")},
		{Task: "no deadline, newest"},
	}
	for _, in := range inputs {
		if _, err := svc.Create(ctx, 1, in); err != nil {
			t.Fatalf("Create(%q) returned error: %v", in.Task, err)
		}
	}

	tasks, err = svc.List(ctx, 1)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	want := []string{"early", "late", "no deadline, newest", "no deadline, oldest"}
	if len(tasks) != len(want) {
		t.Fatalf("expected %d tasks, got %d", len(want), len(tasks))
	}
	for i, title := range want {
		if tasks[i].Task != title {
			t.Fatalf("position %d: got %q, want %q", i, tasks[i].Task, title)
		}
	}
}

func TestTaskService_OwnerIsolation(t *testing.T) {
	svc := newTestTaskService(t)
	ctx := context.Background()

	task, err := svc.Create(ctx, 1, ports.CreateTaskInput{Task: "private"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if _, err := svc.Get(ctx, 2, task.ID); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("Get by other user: expected ErrTaskNotFound, got %v", err)
	}
	if _, err := svc.Update(ctx, 2, task.ID, ports.UpdateTaskInput{Completed: domain.Some(true)}); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("Update by other user: expected ErrTaskNotFound, got %v", err)
	}
	if err := svc.Delete(ctx, 2, task.ID); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("Delete by other user: expected ErrTaskNotFound, got %v", err)
	}
	if others, _ := svc.List(ctx, 2); len(others) != 0 {
		t.Fatalf("other user must see no tasks, got %d", len(others))
	}

	still, err := svc.Get(ctx, 1, task.ID)
	if err != nil || still.Completed {
		t.Fatalf("owner's task must be untouched: %+v, %v", still, err)
	}
}

func TestTaskService_Update_Partial(t *testing.T) {
	svc := newTestTaskService(t)
	svc.now = stepClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, ports.CreateTaskInput{
		Task:        "Write report",
		Description: strPtr("quarterly"),
		Deadline:    strPtr("2024-03-31"),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	updated, err := svc.Update(ctx, 1, created.ID, ports.UpdateTaskInput{Completed: domain.Some(true)})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if !updated.Completed {
		t.Fatalf("expected completed")
	}
	if updated.Task != "Write report" || *updated.Description != "quarterly" || updated.Deadline.String() != "2024-03-31" {
		t.Fatalf("absent fields must be kept: %+v", updated)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("created_at changed: %v -> %v", created.CreatedAt, updated.CreatedAt)
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Fatalf("updated_at must advance: %v -> %v", created.UpdatedAt, updated.UpdatedAt)
	}

	cleared, err := svc.Update(ctx, 1, created.ID, ports.UpdateTaskInput{
		Description: domain.Null[string](),
		Deadline:    domain.Null[string](),
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if cleared.Description != nil || cleared.Deadline != nil {
		t.Fatalf("expected cleared fields, got %+v", cleared)
	}
	if !cleared.Completed {
		t.Fatalf("completed must be kept")
	}
}

func TestTaskService_Update_EmptyBodyStillTouches(t *testing.T) {
	svc := newTestTaskService(t)
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, ports.CreateTaskInput{Task: "idle"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	updated, err := svc.Update(ctx, 1, created.ID, ports.UpdateTaskInput{})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Fatalf("updated_at must advance even with a frozen clock: %v -> %v", created.UpdatedAt, updated.UpdatedAt)
	}
}

func TestTaskService_Update_Validation(t *testing.T) {
	svc := newTestTaskService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, ports.CreateTaskInput{Task: "keep me"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	cases := []struct {
		name string
		in   ports.UpdateTaskInput
	}{
		{"empty title", ports.UpdateTaskInput{Task: domain.Some("")}},
		{"null title", ports.UpdateTaskInput{Task: domain.Null[string]()}},
		{"null completed", ports.UpdateTaskInput{Completed: domain.Null[bool]()}},
		{"bad deadline", ports.UpdateTaskInput{Deadline: domain.Some("2024-13-01")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Update(ctx, 1, created.ID, tc.in); !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}

	got, _ := svc.Get(ctx, 1, created.ID)
	if got.Task != "keep me" || !got.UpdatedAt.Equal(created.UpdatedAt) {
		t.Fatalf("rejected updates must not modify the task: %+v", got)
	}
}

func TestTaskService_Delete(t *testing.T) {
	svc := newTestTaskService(t)
	ctx := context.Background()

	task, err := svc.Create(ctx, 1, ports.CreateTaskInput{Task: "temporary"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if err := svc.Delete(ctx, 1, task.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := svc.Get(ctx, 1, task.ID); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound after delete, got %v", err)
	}
	if err := svc.Delete(ctx, 1, task.ID); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("second delete: expected ErrTaskNotFound, got %v", err)
	}
}
