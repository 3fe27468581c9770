package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"taskdeck/internal/adapter/memory"
	"taskdeck/internal/core/domain"
	"taskdeck/internal/core/ports"
)

const snapshotVersion = "1.0"

// snapshotDoc is the on-disk shape. Enum fields are stored as their string
// values and timestamps as RFC 3339.
type snapshotDoc struct {
	Version     string       `json:"version"`
	LastUpdated string       `json:"last_updated"`
	Tasks       []taskRecord `json:"tasks"`
}

type taskRecord struct {
	ID          uint64   `json:"id"`
	OwnerID     string   `json:"owner_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Completed   bool     `json:"completed"`
	Priority    string   `json:"priority"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags,omitempty"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

// TaskRepository keeps the working set in a memory repository and writes a
// full JSON snapshot after every successful mutation. A load failure
// degrades to an empty store with a logged warning; a save failure rolls the
// working set back and is returned to the caller, so a failed mutation is
// never observable.
type TaskRepository struct {
	mu   sync.Mutex
	mem  *memory.TaskRepository
	path string
}

var _ ports.TaskRepository = (*TaskRepository)(nil)

func NewTaskRepository(path string) (*TaskRepository, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	r := &TaskRepository{
		mem:  memory.NewTaskRepository(),
		path: path,
	}
	r.load()
	return r, nil
}

func (r *TaskRepository) load() {
	b, err := os.ReadFile(r.path)
	if err != nil {
		if !os.IsNotExist(err) {
			zap.L().Warn("could not read task snapshot, starting empty",
				zap.String("path", r.path), zap.Error(err))
		}
		return
	}

	var doc snapshotDoc
	if err := json.Unmarshal(b, &doc); err != nil {
		zap.L().Warn("could not parse task snapshot, starting empty",
			zap.String("path", r.path), zap.Error(err))
		return
	}

	tasks := make([]domain.Task, 0, len(doc.Tasks))
	for i, rec := range doc.Tasks {
		t, err := decodeRecord(rec)
		if err != nil {
			zap.L().Warn("invalid task in snapshot, starting empty",
				zap.String("path", r.path), zap.Int("index", i), zap.Error(err))
			return
		}
		tasks = append(tasks, t)
	}
	r.mem.Restore(tasks)
}

func decodeRecord(rec taskRecord) (domain.Task, error) {
	if rec.ID < 1 {
		return domain.Task{}, fmt.Errorf("id %d is not positive", rec.ID)
	}
	priority, err := domain.ParsePriority(rec.Priority)
	if err != nil {
		return domain.Task{}, err
	}
	category, err := domain.ParseCategory(rec.Category)
	if err != nil {
		return domain.Task{}, err
	}
	createdAt, err := time.Parse(time.RFC3339, rec.CreatedAt)
	if err != nil {
		return domain.Task{}, fmt.Errorf("created_at: %w", err)
	}
	updatedAt := createdAt
	if rec.UpdatedAt != "" {
		updatedAt, err = time.Parse(time.RFC3339, rec.UpdatedAt)
		if err != nil {
			return domain.Task{}, fmt.Errorf("updated_at: %w", err)
		}
	}

	return domain.Task{
		ID:          rec.ID,
		OwnerID:     rec.OwnerID,
		Title:       rec.Title,
		Description: rec.Description,
		Completed:   rec.Completed,
		Priority:    priority,
		Category:    category,
		Tags:        rec.Tags,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}

func encodeRecord(t domain.Task) taskRecord {
	return taskRecord{
		ID:          t.ID,
		OwnerID:     t.OwnerID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		Priority:    string(t.Priority),
		Category:    string(t.Category),
		Tags:        t.Tags,
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   t.UpdatedAt.Format(time.RFC3339),
	}
}

func (r *TaskRepository) save() error {
	tasks := r.mem.Snapshot()
	doc := snapshotDoc{
		Version:     snapshotVersion,
		LastUpdated: time.Now().Format(time.RFC3339),
		Tasks:       make([]taskRecord, 0, len(tasks)),
	}
	for _, t := range tasks {
		doc.Tasks = append(doc.Tasks, encodeRecord(t))
	}

	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode task snapshot: %w", err)
	}
	if err := os.WriteFile(r.path, b, 0o644); err != nil {
		return fmt.Errorf("write task snapshot: %w", err)
	}
	return nil
}

func (r *TaskRepository) Create(ctx context.Context, owner string, in domain.CreateTaskInput) (domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.mem.Snapshot()
	t, err := r.mem.Create(ctx, owner, in)
	if err != nil {
		return domain.Task{}, err
	}
	if err := r.save(); err != nil {
		r.mem.Restore(prev)
		return domain.Task{}, err
	}
	return t, nil
}

func (r *TaskRepository) Get(ctx context.Context, owner string, id uint64) (domain.Task, error) {
	return r.mem.Get(ctx, owner, id)
}

func (r *TaskRepository) List(ctx context.Context, owner string) ([]domain.Task, error) {
	return r.mem.List(ctx, owner)
}

func (r *TaskRepository) Update(ctx context.Context, owner string, id uint64, patch domain.TaskPatch) (domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.mem.Snapshot()
	t, err := r.mem.Update(ctx, owner, id, patch)
	if err != nil {
		return domain.Task{}, err
	}
	if err := r.save(); err != nil {
		r.mem.Restore(prev)
		return domain.Task{}, err
	}
	return t, nil
}

func (r *TaskRepository) Delete(ctx context.Context, owner string, id uint64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.mem.Snapshot()
	removed, err := r.mem.Delete(ctx, owner, id)
	if err != nil || !removed {
		return removed, err
	}
	if err := r.save(); err != nil {
		r.mem.Restore(prev)
		return false, err
	}
	return true, nil
}

func (r *TaskRepository) Find(ctx context.Context, owner string, filter domain.TaskFilter) ([]domain.Task, error) {
	return r.mem.Find(ctx, owner, filter)
}
