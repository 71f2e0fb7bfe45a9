package handler

// ErrorResponse is the JSON envelope of every error the API returns.
type ErrorResponse struct {
	Error string `json:"error" example:"task not found"`
	Field string `json:"field,omitempty" example:"deadline"`
}
