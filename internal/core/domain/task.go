package domain

import "time"

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

type Category string

const (
	CategoryGeneral  Category = "GENERAL"
	CategoryWork     Category = "WORK"
	CategoryPersonal Category = "PERSONAL"
)

const (
	TitleMaxLen       = 50
	DescriptionMaxLen = 200
	TagMaxLen         = 50
)

type Task struct {
	ID          uint64
	OwnerID     string
	Title       string
	Description string
	Completed   bool
	Priority    Priority
	Category    Category
	Tags        []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Clone returns an independent copy of the task. Repositories hand out
// clones so callers can never mutate stored state through a shared slice.
func (t Task) Clone() Task {
	out := t
	if t.Tags != nil {
		out.Tags = append([]string(nil), t.Tags...)
	}
	return out
}

// CreateTaskInput carries the caller-supplied fields of a new task.
// Identity, timestamps and completion state are assigned by the repository.
type CreateTaskInput struct {
	Title       string
	Description string
	Priority    Priority
	Category    Category
	Tags        []string
}

// TaskPatch is a partial update. A nil pointer means "leave the field
// unchanged"; every supplied field is validated before any of them is
// applied.
type TaskPatch struct {
	Title       *string
	Description *string
	Completed   *bool
	Priority    *Priority
	Category    *Category
	Tags        *[]string
}

// IsZero reports whether the patch touches no field at all.
func (p TaskPatch) IsZero() bool {
	return p.Title == nil &&
		p.Description == nil &&
		p.Completed == nil &&
		p.Priority == nil &&
		p.Category == nil &&
		p.Tags == nil
}
