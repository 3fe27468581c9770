package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"taskdeck/internal/core/domain"
	"taskdeck/internal/core/ports"
)

// ownerState is one tenant's view: an insertion-ordered collection plus a
// monotonic id counter. The counter never decreases, even across deletes.
type ownerState struct {
	tasks  []domain.Task
	nextID uint64
}

// TaskRepository keeps every owner's tasks in process memory. All reads
// return clones so callers cannot reach into the stored collection.
type TaskRepository struct {
	mu     sync.RWMutex
	owners map[string]*ownerState
}

var _ ports.TaskRepository = (*TaskRepository)(nil)

func NewTaskRepository() *TaskRepository {
	return &TaskRepository{owners: make(map[string]*ownerState)}
}

func (r *TaskRepository) state(owner string) *ownerState {
	st, ok := r.owners[owner]
	if !ok {
		st = &ownerState{nextID: 1}
		r.owners[owner] = st
	}
	return st
}

func (r *TaskRepository) Create(ctx context.Context, owner string, in domain.CreateTaskInput) (domain.Task, error) {
	_ = ctx

	t, err := domain.NewTask(owner, in, time.Now())
	if err != nil {
		return domain.Task{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	st := r.state(owner)
	t.ID = st.nextID
	st.nextID++
	st.tasks = append(st.tasks, t)

	return t.Clone(), nil
}

func (r *TaskRepository) Get(ctx context.Context, owner string, id uint64) (domain.Task, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	st, ok := r.owners[owner]
	if !ok {
		return domain.Task{}, domain.ErrTaskNotFound
	}
	for _, t := range st.tasks {
		if t.ID == id {
			return t.Clone(), nil
		}
	}
	return domain.Task{}, domain.ErrTaskNotFound
}

func (r *TaskRepository) List(ctx context.Context, owner string) ([]domain.Task, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	st, ok := r.owners[owner]
	if !ok {
		return []domain.Task{}, nil
	}
	out := make([]domain.Task, 0, len(st.tasks))
	for _, t := range st.tasks {
		out = append(out, t.Clone())
	}
	return out, nil
}

func (r *TaskRepository) Update(ctx context.Context, owner string, id uint64, patch domain.TaskPatch) (domain.Task, error) {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.owners[owner]
	if !ok {
		return domain.Task{}, domain.ErrTaskNotFound
	}
	for i := range st.tasks {
		if st.tasks[i].ID != id {
			continue
		}
		// Patch a copy first so a validation failure leaves the stored
		// task untouched.
		t := st.tasks[i].Clone()
		if err := domain.ApplyPatch(&t, patch, time.Now()); err != nil {
			return domain.Task{}, err
		}
		st.tasks[i] = t
		return t.Clone(), nil
	}
	return domain.Task{}, domain.ErrTaskNotFound
}

func (r *TaskRepository) Delete(ctx context.Context, owner string, id uint64) (bool, error) {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.owners[owner]
	if !ok {
		return false, nil
	}
	for i := range st.tasks {
		if st.tasks[i].ID == id {
			st.tasks = append(st.tasks[:i], st.tasks[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *TaskRepository) Find(ctx context.Context, owner string, filter domain.TaskFilter) ([]domain.Task, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	st, ok := r.owners[owner]
	if !ok {
		return []domain.Task{}, nil
	}
	out := make([]domain.Task, 0, len(st.tasks))
	for _, t := range st.tasks {
		if filter.Matches(t) {
			out = append(out, t.Clone())
		}
	}
	return out, nil
}

// Snapshot returns a clone of every task across all owners, id-ascending
// within each owner. Used by the file adapter to persist the full state.
func (r *TaskRepository) Snapshot() []domain.Task {
	r.mu.RLock()
	defer r.mu.RUnlock()

	owners := make([]string, 0, len(r.owners))
	for owner := range r.owners {
		owners = append(owners, owner)
	}
	sort.Strings(owners)

	var out []domain.Task
	for _, owner := range owners {
		for _, t := range r.owners[owner].tasks {
			out = append(out, t.Clone())
		}
	}
	return out
}

// Restore replaces the repository state with the given tasks and
// reconstructs each owner's id counter as max(id)+1 so assignment stays
// monotonic across restarts.
func (r *TaskRepository) Restore(tasks []domain.Task) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.owners = make(map[string]*ownerState)
	for _, t := range tasks {
		st := r.state(t.OwnerID)
		st.tasks = append(st.tasks, t.Clone())
		if t.ID >= st.nextID {
			st.nextID = t.ID + 1
		}
	}
	for _, st := range r.owners {
		sort.Slice(st.tasks, func(i, j int) bool { return st.tasks[i].ID < st.tasks[j].ID })
	}
}
