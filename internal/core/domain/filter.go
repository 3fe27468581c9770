package domain

import (
	"fmt"
	"strings"
	"time"
)

// Status filter values accepted by TaskFilter, matched case-insensitively.
const (
	StatusAll       = "all"
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// ParseStatus canonicalizes a status filter value. Matching is
// case-insensitive, an empty value means "all", and anything else is
// rejected.
func ParseStatus(raw string) (string, error) {
	switch s := strings.ToLower(strings.TrimSpace(raw)); s {
	case "":
		return StatusAll, nil
	case StatusAll, StatusPending, StatusCompleted:
		return s, nil
	}
	return "", &ValidationError{Field: "status", Reason: fmt.Sprintf("%q is not one of all, pending, completed", raw)}
}

// TaskFilter restricts a listing. Zero values / nil pointers mean the clause
// is not applied; supplied clauses compose with logical AND.
type TaskFilter struct {
	// Status: "" | "all" | "pending" | "completed" (case-insensitive).
	Status string

	Priority *Priority
	Category *Category

	// Tags matches tasks sharing at least one tag with the given list.
	Tags []string

	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// Matches reports whether the task passes every supplied clause.
func (f TaskFilter) Matches(t Task) bool {
	switch strings.ToLower(strings.TrimSpace(f.Status)) {
	case "", StatusAll:
	case StatusPending:
		if t.Completed {
			return false
		}
	case StatusCompleted:
		if !t.Completed {
			return false
		}
	}

	if f.Priority != nil && t.Priority != *f.Priority {
		return false
	}
	if f.Category != nil && t.Category != *f.Category {
		return false
	}

	if len(f.Tags) > 0 && !hasAnyTag(t, f.Tags) {
		return false
	}

	if f.CreatedFrom != nil && t.CreatedAt.Before(*f.CreatedFrom) {
		return false
	}
	if f.CreatedTo != nil && t.CreatedAt.After(*f.CreatedTo) {
		return false
	}

	return true
}

func hasAnyTag(t Task, wanted []string) bool {
	for _, w := range wanted {
		for _, tag := range t.Tags {
			if tag == w {
				return true
			}
		}
	}
	return false
}

// MatchesQuery reports a case-insensitive substring match against the title
// or the description. An empty query matches everything.
func MatchesQuery(t Task, query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(t.Title), q) ||
		strings.Contains(strings.ToLower(t.Description), q)
}
