package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// ParsePriority maps a raw string to a Priority. Matching is
// case-insensitive; anything outside the sanctioned set is rejected, never
// coerced.
func ParsePriority(raw string) (Priority, error) {
	switch Priority(strings.ToUpper(strings.TrimSpace(raw))) {
	case PriorityLow:
		return PriorityLow, nil
	case PriorityMedium:
		return PriorityMedium, nil
	case PriorityHigh:
		return PriorityHigh, nil
	}
	return "", &ValidationError{Field: "priority", Reason: fmt.Sprintf("%q is not one of LOW, MEDIUM, HIGH", raw)}
}

// ParseCategory maps a raw string to a Category, rejecting unknown values.
func ParseCategory(raw string) (Category, error) {
	switch Category(strings.ToUpper(strings.TrimSpace(raw))) {
	case CategoryGeneral:
		return CategoryGeneral, nil
	case CategoryWork:
		return CategoryWork, nil
	case CategoryPersonal:
		return CategoryPersonal, nil
	}
	return "", &ValidationError{Field: "category", Reason: fmt.Sprintf("%q is not one of GENERAL, WORK, PERSONAL", raw)}
}

func ValidateTitle(title string) error {
	n := utf8.RuneCountInString(title)
	if n < 1 || n > TitleMaxLen {
		return &ValidationError{Field: "title", Reason: fmt.Sprintf("must be 1-%d characters, got %d", TitleMaxLen, n)}
	}
	return nil
}

func ValidateDescription(description string) error {
	n := utf8.RuneCountInString(description)
	if n > DescriptionMaxLen {
		return &ValidationError{Field: "description", Reason: fmt.Sprintf("must be 0-%d characters, got %d", DescriptionMaxLen, n)}
	}
	return nil
}

func validatePriority(p Priority) error {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return nil
	}
	return &ValidationError{Field: "priority", Reason: fmt.Sprintf("%q is not one of LOW, MEDIUM, HIGH", string(p))}
}

func validateCategory(c Category) error {
	switch c {
	case CategoryGeneral, CategoryWork, CategoryPersonal:
		return nil
	}
	return &ValidationError{Field: "category", Reason: fmt.Sprintf("%q is not one of GENERAL, WORK, PERSONAL", string(c))}
}

func validateTags(tags []string) error {
	for i, tag := range tags {
		if tag == "" {
			return &ValidationError{Field: "tags", Reason: fmt.Sprintf("tag %d is empty", i)}
		}
		if n := utf8.RuneCountInString(tag); n > TagMaxLen {
			return &ValidationError{Field: "tags", Reason: fmt.Sprintf("tag %d exceeds %d characters, got %d", i, TagMaxLen, n)}
		}
		// Control characters would collide with the delimited storage
		// encodings.
		if strings.ContainsFunc(tag, unicode.IsControl) {
			return &ValidationError{Field: "tags", Reason: fmt.Sprintf("tag %d contains control characters", i)}
		}
	}
	return nil
}

// NewTask validates the input and builds a task ready for insertion. The id
// is left at zero for the repository to assign. Zero-valued priority and
// category fall back to their defaults; explicit invalid values are
// rejected.
func NewTask(owner string, in CreateTaskInput, now time.Time) (Task, error) {
	if err := ValidateTitle(in.Title); err != nil {
		return Task{}, err
	}
	if err := ValidateDescription(in.Description); err != nil {
		return Task{}, err
	}

	priority := in.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	if err := validatePriority(priority); err != nil {
		return Task{}, err
	}

	category := in.Category
	if category == "" {
		category = CategoryGeneral
	}
	if err := validateCategory(category); err != nil {
		return Task{}, err
	}

	if err := validateTags(in.Tags); err != nil {
		return Task{}, err
	}

	var tags []string
	if in.Tags != nil {
		tags = append([]string(nil), in.Tags...)
	}

	return Task{
		OwnerID:     owner,
		Title:       in.Title,
		Description: in.Description,
		Completed:   false,
		Priority:    priority,
		Category:    category,
		Tags:        tags,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// ApplyPatch validates every supplied field of the patch against the task
// and only then applies them, so a failing patch leaves the task untouched.
func ApplyPatch(t *Task, p TaskPatch, now time.Time) error {
	if p.IsZero() {
		return ErrEmptyPatch
	}

	if p.Title != nil {
		if err := ValidateTitle(*p.Title); err != nil {
			return err
		}
	}
	if p.Description != nil {
		if err := ValidateDescription(*p.Description); err != nil {
			return err
		}
	}
	if p.Priority != nil {
		if err := validatePriority(*p.Priority); err != nil {
			return err
		}
	}
	if p.Category != nil {
		if err := validateCategory(*p.Category); err != nil {
			return err
		}
	}
	if p.Tags != nil {
		if err := validateTags(*p.Tags); err != nil {
			return err
		}
	}

	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Tags != nil {
		if *p.Tags == nil {
			t.Tags = nil
		} else {
			t.Tags = append([]string(nil), (*p.Tags)...)
		}
	}
	t.UpdatedAt = now
	return nil
}
