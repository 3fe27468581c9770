package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"taskdeck/internal/adapter/http/dto"
	"taskdeck/internal/core/domain"
)

var ErrInvalidTaskPayload = errors.New("invalid task payload")

// BuildCreateTaskInput turns a bound create request into a domain input.
// Enum strings are parsed here so casing is forgiven at the edge; the
// resulting values are still validated by the domain on create.
func BuildCreateTaskInput(req dto.CreateTaskRequest) (domain.CreateTaskInput, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return domain.CreateTaskInput{}, ErrInvalidTaskPayload
	}

	in := domain.CreateTaskInput{
		Title: title,
		Tags:  req.Tags,
	}

	if req.Description != nil {
		in.Description = *req.Description
	}
	if req.Priority != nil {
		priority, err := domain.ParsePriority(*req.Priority)
		if err != nil {
			return domain.CreateTaskInput{}, err
		}
		in.Priority = priority
	}
	if req.Category != nil {
		category, err := domain.ParseCategory(*req.Category)
		if err != nil {
			return domain.CreateTaskInput{}, err
		}
		in.Category = category
	}

	return in, nil
}

// BuildTaskPatch turns a bound update request plus the raw JSON fields into
// a patch. The raw map distinguishes "field absent" from "field null":
// null is rejected for every field except tags, where it clears the list.
func BuildTaskPatch(req dto.UpdateTaskRequest, raw map[string]json.RawMessage) (domain.TaskPatch, error) {
	if !hasTaskUpdateFields(raw) {
		return domain.TaskPatch{}, ErrInvalidTaskPayload
	}

	var patch domain.TaskPatch

	if hasJSONField(raw, "title") {
		if req.Title == nil {
			return domain.TaskPatch{}, ErrInvalidTaskPayload
		}
		value := strings.TrimSpace(*req.Title)
		patch.Title = &value
	}

	if hasJSONField(raw, "description") {
		if req.Description == nil {
			return domain.TaskPatch{}, ErrInvalidTaskPayload
		}
		patch.Description = req.Description
	}

	if hasJSONField(raw, "completed") {
		if req.Completed == nil {
			return domain.TaskPatch{}, ErrInvalidTaskPayload
		}
		patch.Completed = req.Completed
	}

	if hasJSONField(raw, "priority") {
		if req.Priority == nil {
			return domain.TaskPatch{}, ErrInvalidTaskPayload
		}
		priority, err := domain.ParsePriority(*req.Priority)
		if err != nil {
			return domain.TaskPatch{}, err
		}
		patch.Priority = &priority
	}

	if hasJSONField(raw, "category") {
		if req.Category == nil {
			return domain.TaskPatch{}, ErrInvalidTaskPayload
		}
		category, err := domain.ParseCategory(*req.Category)
		if err != nil {
			return domain.TaskPatch{}, err
		}
		patch.Category = &category
	}

	if hasJSONField(raw, "tags") {
		if isJSONNull(raw["tags"]) || req.Tags == nil {
			empty := []string{}
			patch.Tags = &empty
		} else {
			patch.Tags = req.Tags
		}
	}

	return patch, nil
}

func hasTaskUpdateFields(raw map[string]json.RawMessage) bool {
	return hasJSONField(raw, "title") ||
		hasJSONField(raw, "description") ||
		hasJSONField(raw, "completed") ||
		hasJSONField(raw, "priority") ||
		hasJSONField(raw, "category") ||
		hasJSONField(raw, "tags")
}

func hasJSONField(raw map[string]json.RawMessage, field string) bool {
	_, ok := raw[field]
	return ok
}

func isJSONNull(value json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(value), []byte("null"))
}
