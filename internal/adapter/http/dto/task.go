package dto

type TaskItem struct {
	ID          uint64   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Completed   bool     `json:"completed"`
	Priority    string   `json:"priority"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags,omitempty"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

type CreateTaskRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description *string  `json:"description"`
	Priority    *string  `json:"priority"`
	Category    *string  `json:"category"`
	Tags        []string `json:"tags"`
}

type UpdateTaskRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Completed   *bool     `json:"completed"`
	Priority    *string   `json:"priority"`
	Category    *string   `json:"category"`
	Tags        *[]string `json:"tags"`
}
