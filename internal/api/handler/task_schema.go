package handler

import (
	"time"

	"github.com/taskly/task-tracker/internal/core/domain"
)

type createTaskRequest struct {
	Task        string  `json:"task" example:"Buy milk"`
	Description *string `json:"description" example:"2 liters"`
	Deadline    *string `json:"deadline" example:"2024-12-25"`
}

// updateTaskRequest keeps absent, null and set fields apart; only the fields
// present in the body are applied.
type updateTaskRequest struct {
	Task        domain.Optional[string] `json:"task" swaggertype:"string" example:"Buy oat milk"`
	Description domain.Optional[string] `json:"description" swaggertype:"string"`
	Deadline    domain.Optional[string] `json:"deadline" swaggertype:"string" example:"2024-12-31"`
	Completed   domain.Optional[bool]   `json:"completed" swaggertype:"boolean" example:"true"`
}

type taskResponse struct {
	ID          int64        `json:"id" example:"1"`
	UserID      int64        `json:"user_id" example:"1"`
	Task        string       `json:"task" example:"Buy milk"`
	Description *string      `json:"description" example:"2 liters"`
	Deadline    *domain.Date `json:"deadline" swaggertype:"string" example:"2024-12-25"`
	Completed   bool         `json:"completed" example:"false"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

type listTasksResponse struct {
	Tasks []taskResponse `json:"tasks"`
}
