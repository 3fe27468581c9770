package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"taskdeck/internal/app/cache"
	"taskdeck/internal/core/domain"
	"taskdeck/internal/core/ports"
)

const (
	opList   = "list"
	opSearch = "search"
	opFilter = "filter"
)

type TaskService struct {
	taskRepository ports.TaskRepository
	queryCache     *cache.QueryCache
}

// NewTaskService builds the service. queryCache may be nil to disable
// read caching.
func NewTaskService(taskRepository ports.TaskRepository, queryCache *cache.QueryCache) *TaskService {
	return &TaskService{
		taskRepository: taskRepository,
		queryCache:     queryCache,
	}
}

var _ ports.TaskService = (*TaskService)(nil)

func (s *TaskService) CreateTask(ctx context.Context, owner string, in domain.CreateTaskInput) (domain.Task, error) {
	t, err := s.taskRepository.Create(ctx, owner, in)
	if err != nil {
		return domain.Task{}, err
	}
	s.queryCache.InvalidateOwner(owner)
	return t, nil
}

func (s *TaskService) GetTask(ctx context.Context, owner string, id uint64) (domain.Task, error) {
	return s.taskRepository.Get(ctx, owner, id)
}

func (s *TaskService) ListTasks(ctx context.Context, owner string) ([]domain.Task, error) {
	key := cache.Key{Owner: owner, Op: opList}
	if tasks, ok := s.queryCache.Get(key); ok {
		return tasks, nil
	}

	tasks, err := s.taskRepository.List(ctx, owner)
	if err != nil {
		return nil, err
	}
	s.queryCache.Put(key, tasks)
	return tasks, nil
}

func (s *TaskService) UpdateTask(ctx context.Context, owner string, id uint64, patch domain.TaskPatch) (domain.Task, error) {
	t, err := s.taskRepository.Update(ctx, owner, id, patch)
	if err != nil {
		return domain.Task{}, err
	}
	s.queryCache.InvalidateOwner(owner)
	return t, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, owner string, id uint64) (bool, error) {
	removed, err := s.taskRepository.Delete(ctx, owner, id)
	if err != nil {
		return false, err
	}
	if removed {
		s.queryCache.InvalidateOwner(owner)
	}
	return removed, nil
}

func (s *TaskService) ToggleCompletion(ctx context.Context, owner string, id uint64) (domain.Task, error) {
	current, err := s.taskRepository.Get(ctx, owner, id)
	if err != nil {
		return domain.Task{}, err
	}

	completed := !current.Completed
	t, err := s.taskRepository.Update(ctx, owner, id, domain.TaskPatch{Completed: &completed})
	if err != nil {
		return domain.Task{}, err
	}
	s.queryCache.InvalidateOwner(owner)
	return t, nil
}

func (s *TaskService) SearchTasks(ctx context.Context, owner string, query string) ([]domain.Task, error) {
	if query == "" {
		return s.ListTasks(ctx, owner)
	}

	key := cache.Key{Owner: owner, Op: opSearch, Arg: strings.ToLower(query)}
	if tasks, ok := s.queryCache.Get(key); ok {
		return tasks, nil
	}

	all, err := s.taskRepository.List(ctx, owner)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Task, 0, len(all))
	for _, t := range all {
		if domain.MatchesQuery(t, query) {
			out = append(out, t)
		}
	}
	s.queryCache.Put(key, out)
	return out, nil
}

func (s *TaskService) FilterTasks(ctx context.Context, owner string, filter domain.TaskFilter) ([]domain.Task, error) {
	status, err := domain.ParseStatus(filter.Status)
	if err != nil {
		return nil, err
	}
	filter.Status = status

	key := cache.Key{Owner: owner, Op: opFilter, Arg: filterArg(filter)}
	if tasks, ok := s.queryCache.Get(key); ok {
		return tasks, nil
	}

	tasks, err := s.taskRepository.Find(ctx, owner, filter)
	if err != nil {
		return nil, err
	}
	s.queryCache.Put(key, tasks)
	return tasks, nil
}

// filterArg is a canonical encoding of the filter for use as a cache key
// component.
func filterArg(f domain.TaskFilter) string {
	var b strings.Builder
	fmt.Fprintf(&b, "status=%s", strings.ToLower(strings.TrimSpace(f.Status)))
	if f.Priority != nil {
		fmt.Fprintf(&b, "&priority=%s", *f.Priority)
	}
	if f.Category != nil {
		fmt.Fprintf(&b, "&category=%s", *f.Category)
	}
	if len(f.Tags) > 0 {
		fmt.Fprintf(&b, "&tags=%s", strings.Join(f.Tags, ","))
	}
	if f.CreatedFrom != nil {
		fmt.Fprintf(&b, "&from=%s", f.CreatedFrom.Format(time.RFC3339))
	}
	if f.CreatedTo != nil {
		fmt.Fprintf(&b, "&to=%s", f.CreatedTo.Format(time.RFC3339))
	}
	return b.String()
}
