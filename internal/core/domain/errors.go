package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrTaskNotFound covers both a missing id and an id owned by another
	// tenant. Repositories never distinguish the two.
	ErrTaskNotFound = errors.New("task not found")

	ErrEmptyPatch = errors.New("empty task patch")
)

// ValidationError reports a field that violates a length or enum constraint.
// It always carries the field name and enough detail for a corrective
// message.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
