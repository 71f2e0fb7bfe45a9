package handler

import (
	"github.com/taskly/task-tracker/internal/core/domain"
	"github.com/taskly/task-tracker/internal/core/ports"
)

func (r createTaskRequest) toInput() ports.CreateTaskInput {
	return ports.CreateTaskInput{
		Task:        r.Task,
		Description: r.Description,
		Deadline:    r.Deadline,
	}
}

func (r updateTaskRequest) toInput() ports.UpdateTaskInput {
	return ports.UpdateTaskInput{
		Task:        r.Task,
		Description: r.Description,
		Deadline:    r.Deadline,
		Completed:   r.Completed,
	}
}

func toTaskResponse(t *domain.Task) taskResponse {
	return taskResponse{
		ID:          t.ID,
		UserID:      t.UserID,
		Task:        t.Task,
		Description: t.Description,
		Deadline:    t.Deadline,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt.UTC(),
		UpdatedAt:   t.UpdatedAt.UTC(),
	}
}

func toTaskListResponse(tasks []*domain.Task) listTasksResponse {
	out := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskResponse(t))
	}
	return listTasksResponse{Tasks: out}
}
