package ports

import (
	"context"

	"taskdeck/internal/core/domain"
)

// TaskRepository owns the canonical task collection for every owner. All
// operations are scoped by the owner key: an id that exists under a
// different owner behaves exactly like a missing id
// (domain.ErrTaskNotFound).
type TaskRepository interface {
	// Create assigns the id and timestamps and stores the task.
	Create(ctx context.Context, owner string, in domain.CreateTaskInput) (domain.Task, error)
	Get(ctx context.Context, owner string, id uint64) (domain.Task, error)
	// List returns every live task for the owner in id-ascending order.
	List(ctx context.Context, owner string) ([]domain.Task, error)
	// Update applies the patch atomically: a validation failure on any
	// supplied field leaves the task unchanged.
	Update(ctx context.Context, owner string, id uint64, patch domain.TaskPatch) (domain.Task, error)
	// Delete reports whether a removal occurred.
	Delete(ctx context.Context, owner string, id uint64) (bool, error)
	// Find returns the owner's tasks passing the filter, id-ascending.
	Find(ctx context.Context, owner string, filter domain.TaskFilter) ([]domain.Task, error)
}

type TaskService interface {
	CreateTask(ctx context.Context, owner string, in domain.CreateTaskInput) (domain.Task, error)
	GetTask(ctx context.Context, owner string, id uint64) (domain.Task, error)
	ListTasks(ctx context.Context, owner string) ([]domain.Task, error)
	UpdateTask(ctx context.Context, owner string, id uint64, patch domain.TaskPatch) (domain.Task, error)
	DeleteTask(ctx context.Context, owner string, id uint64) (bool, error)
	ToggleCompletion(ctx context.Context, owner string, id uint64) (domain.Task, error)
	SearchTasks(ctx context.Context, owner string, query string) ([]domain.Task, error)
	FilterTasks(ctx context.Context, owner string, filter domain.TaskFilter) ([]domain.Task, error)
}
