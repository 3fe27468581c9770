package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"taskdeck/internal/core/domain"
	"taskdeck/internal/core/ports"
)

// TaskRepository stores tasks in MySQL. Every statement filters by owner_id
// so one tenant can never observe or mutate another tenant's rows; a row
// owned by someone else surfaces as domain.ErrTaskNotFound.
type TaskRepository struct {
	db *sqlx.DB
}

type taskRow struct {
	ID          uint64         `db:"id"`
	OwnerID     string         `db:"owner_id"`
	Title       string         `db:"title"`
	Description string         `db:"description"`
	Completed   bool           `db:"completed"`
	Priority    string         `db:"priority"`
	Category    string         `db:"category"`
	Tags        sql.NullString `db:"tags"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

var _ ports.TaskRepository = (*TaskRepository)(nil)

func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

const insertTaskQuery = `
INSERT INTO tasks (owner_id, title, description, completed, priority, category, tags, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);
`

func (r *TaskRepository) Create(ctx context.Context, owner string, in domain.CreateTaskInput) (domain.Task, error) {
	t, err := domain.NewTask(owner, in, time.Now().UTC().Truncate(time.Second))
	if err != nil {
		return domain.Task{}, err
	}

	res, err := r.db.ExecContext(ctx, insertTaskQuery,
		t.OwnerID, t.Title, t.Description, t.Completed,
		string(t.Priority), string(t.Category), encodeTags(t.Tags),
		t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return domain.Task{}, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return domain.Task{}, err
	}
	t.ID = uint64(id)
	return t, nil
}

const getTaskQuery = `
SELECT * FROM tasks WHERE id = ? AND owner_id = ?;
`

const getTaskForUpdateQuery = `
SELECT * FROM tasks WHERE id = ? AND owner_id = ? FOR UPDATE;
`

func (r *TaskRepository) Get(ctx context.Context, owner string, id uint64) (domain.Task, error) {
	var row taskRow
	if err := r.db.GetContext(ctx, &row, getTaskQuery, id, owner); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Task{}, domain.ErrTaskNotFound
		}
		return domain.Task{}, err
	}
	return mapTaskRowToDomainTask(row), nil
}

const listTasksQuery = `
SELECT * FROM tasks WHERE owner_id = ? ORDER BY id;
`

func (r *TaskRepository) List(ctx context.Context, owner string) ([]domain.Task, error) {
	var rows []taskRow
	if err := r.db.SelectContext(ctx, &rows, listTasksQuery, owner); err != nil {
		return nil, err
	}

	tasks := make([]domain.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, mapTaskRowToDomainTask(row))
	}
	return tasks, nil
}

const updateTaskQuery = `
UPDATE tasks
SET title = ?, description = ?, completed = ?, priority = ?, category = ?, tags = ?, updated_at = ?
WHERE id = ? AND owner_id = ?;
`

func (r *TaskRepository) Update(ctx context.Context, owner string, id uint64, patch domain.TaskPatch) (domain.Task, error) {
	// Read-modify-write inside a transaction so the patch validates against
	// the row's current values and concurrent writers serialize on the row.
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.Task{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var row taskRow
	if err := tx.GetContext(ctx, &row, getTaskForUpdateQuery, id, owner); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Task{}, domain.ErrTaskNotFound
		}
		return domain.Task{}, err
	}

	t := mapTaskRowToDomainTask(row)
	if err := domain.ApplyPatch(&t, patch, time.Now().UTC().Truncate(time.Second)); err != nil {
		return domain.Task{}, err
	}

	if _, err := tx.ExecContext(ctx, updateTaskQuery,
		t.Title, t.Description, t.Completed,
		string(t.Priority), string(t.Category), encodeTags(t.Tags),
		t.UpdatedAt, id, owner,
	); err != nil {
		return domain.Task{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Task{}, err
	}
	return t, nil
}

const deleteTaskQuery = `
DELETE FROM tasks WHERE id = ? AND owner_id = ?;
`

func (r *TaskRepository) Delete(ctx context.Context, owner string, id uint64) (bool, error) {
	res, err := r.db.ExecContext(ctx, deleteTaskQuery, id, owner)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *TaskRepository) Find(ctx context.Context, owner string, filter domain.TaskFilter) ([]domain.Task, error) {
	query := "SELECT * FROM tasks WHERE owner_id = ?"
	args := []any{owner}

	switch strings.ToLower(strings.TrimSpace(filter.Status)) {
	case domain.StatusPending:
		query += " AND completed = FALSE"
	case domain.StatusCompleted:
		query += " AND completed = TRUE"
	}
	if filter.Priority != nil {
		query += " AND priority = ?"
		args = append(args, string(*filter.Priority))
	}
	if filter.Category != nil {
		query += " AND category = ?"
		args = append(args, string(*filter.Category))
	}
	if filter.CreatedFrom != nil {
		query += " AND created_at >= ?"
		args = append(args, *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query += " AND created_at <= ?"
		args = append(args, *filter.CreatedTo)
	}
	query += " ORDER BY id;"

	var rows []taskRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	// Tag intersection is resolved in Go: tags live in a single delimited
	// column, not a join table.
	tasks := make([]domain.Task, 0, len(rows))
	for _, row := range rows {
		t := mapTaskRowToDomainTask(row)
		if len(filter.Tags) > 0 {
			tagOnly := domain.TaskFilter{Tags: filter.Tags}
			if !tagOnly.Matches(t) {
				continue
			}
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func mapTaskRowToDomainTask(row taskRow) domain.Task {
	return domain.Task{
		ID:          row.ID,
		OwnerID:     row.OwnerID,
		Title:       row.Title,
		Description: row.Description,
		Completed:   row.Completed,
		Priority:    domain.Priority(row.Priority),
		Category:    domain.Category(row.Category),
		Tags:        decodeTags(row.Tags),
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

// Tags are stored as a single newline-delimited column. Domain validation
// rejects control characters in tags, so the separator never appears inside
// one.
const tagSeparator = "\n"

func encodeTags(tags []string) sql.NullString {
	if len(tags) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: strings.Join(tags, tagSeparator), Valid: true}
}

func decodeTags(raw sql.NullString) []string {
	if !raw.Valid || raw.String == "" {
		return nil
	}
	return strings.Split(raw.String, tagSeparator)
}
