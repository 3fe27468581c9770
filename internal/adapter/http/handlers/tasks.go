package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskdeck/internal/adapter/http/dto"
	"taskdeck/internal/adapter/http/mapper"
	"taskdeck/internal/adapter/http/middleware"
	"taskdeck/internal/adapter/http/validation"
	"taskdeck/internal/core/domain"
	"taskdeck/internal/core/ports"
	"taskdeck/pkg/apierrors"
)

type TaskHandler struct {
	taskService ports.TaskService
}

func NewTaskHandler(taskService ports.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	lang := middleware.GetLang(c)
	owner := middleware.GetOwner(c)

	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(
			http.StatusBadRequest,
			apierrors.CreateError(http.StatusBadRequest, apierrors.MsgInvalidTaskPayload, lang),
		)
		return
	}

	in, err := validation.BuildCreateTaskInput(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, badPayloadError(err, lang))
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), owner, in)
	if err != nil {
		if domain.IsValidation(err) {
			c.JSON(http.StatusBadRequest, badPayloadError(err, lang))
			return
		}

		zap.L().Error("failed to create task", zap.Error(err))
		c.JSON(
			http.StatusInternalServerError,
			apierrors.CreateError(http.StatusInternalServerError, apierrors.MsgFailCreateTask, lang),
		)
		return
	}

	c.JSON(http.StatusCreated, mapper.ToTaskItem(task))
}

func (h *TaskHandler) GetTask(c *gin.Context) {
	lang := middleware.GetLang(c)
	owner := middleware.GetOwner(c)

	taskID, ok := taskIDParam(c, lang)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(c.Request.Context(), owner, taskID)
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			c.JSON(
				http.StatusNotFound,
				apierrors.CreateError(http.StatusNotFound, apierrors.MsgTaskNotFound, lang),
			)
			return
		}

		zap.L().Error("failed to get task", zap.Uint64("task_id", taskID), zap.Error(err))
		c.JSON(
			http.StatusInternalServerError,
			apierrors.CreateError(http.StatusInternalServerError, apierrors.MsgFailGetTask, lang),
		)
		return
	}

	c.JSON(http.StatusOK, mapper.ToTaskItem(task))
}

// ListTasks serves plain listing, substring search (?search=) and filtered
// listing (?status= &priority= &category= &tags= &created_from=
// &created_to=). Search and filter clauses are separate operations and do
// not combine.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	lang := middleware.GetLang(c)
	owner := middleware.GetOwner(c)
	ctx := c.Request.Context()

	_, hasSearch := c.GetQuery("search")
	filter, hasFilter, ok := buildListFilter(c, lang)
	if !ok {
		return
	}
	if hasSearch && hasFilter {
		c.JSON(
			http.StatusBadRequest,
			apierrors.CreateError(http.StatusBadRequest, apierrors.MsgInvalidQuery, lang),
		)
		return
	}

	var (
		tasks []domain.Task
		err   error
	)
	switch {
	case hasSearch:
		tasks, err = h.taskService.SearchTasks(ctx, owner, c.Query("search"))
	case hasFilter:
		tasks, err = h.taskService.FilterTasks(ctx, owner, filter)
	default:
		tasks, err = h.taskService.ListTasks(ctx, owner)
	}
	if err != nil {
		zap.L().Error("failed to list tasks", zap.Error(err))
		c.JSON(
			http.StatusInternalServerError,
			apierrors.CreateError(http.StatusInternalServerError, apierrors.MsgFailListTasks, lang),
		)
		return
	}

	c.JSON(http.StatusOK, mapper.ToTaskItems(tasks))
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	lang := middleware.GetLang(c)
	owner := middleware.GetOwner(c)

	taskID, ok := taskIDParam(c, lang)
	if !ok {
		return
	}

	var raw map[string]json.RawMessage
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.JSON(
			http.StatusBadRequest,
			apierrors.CreateError(http.StatusBadRequest, apierrors.MsgInvalidTaskPayload, lang),
		)
		return
	}

	var req dto.UpdateTaskRequest
	if err := bindRaw(raw, &req); err != nil {
		c.JSON(
			http.StatusBadRequest,
			apierrors.CreateError(http.StatusBadRequest, apierrors.MsgInvalidTaskPayload, lang),
		)
		return
	}

	patch, err := validation.BuildTaskPatch(req, raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, badPayloadError(err, lang))
		return
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), owner, taskID, patch)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTaskNotFound):
			c.JSON(
				http.StatusNotFound,
				apierrors.CreateError(http.StatusNotFound, apierrors.MsgTaskNotFound, lang),
			)
		case domain.IsValidation(err) || errors.Is(err, domain.ErrEmptyPatch):
			c.JSON(http.StatusBadRequest, badPayloadError(err, lang))
		default:
			zap.L().Error("failed to update task", zap.Uint64("task_id", taskID), zap.Error(err))
			c.JSON(
				http.StatusInternalServerError,
				apierrors.CreateError(http.StatusInternalServerError, apierrors.MsgFailUpdateTask, lang),
			)
		}
		return
	}

	c.JSON(http.StatusOK, mapper.ToTaskItem(task))
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	lang := middleware.GetLang(c)
	owner := middleware.GetOwner(c)

	taskID, ok := taskIDParam(c, lang)
	if !ok {
		return
	}

	removed, err := h.taskService.DeleteTask(c.Request.Context(), owner, taskID)
	if err != nil {
		zap.L().Error("failed to delete task", zap.Uint64("task_id", taskID), zap.Error(err))
		c.JSON(
			http.StatusInternalServerError,
			apierrors.CreateError(http.StatusInternalServerError, apierrors.MsgFailDeleteTask, lang),
		)
		return
	}
	if !removed {
		c.JSON(
			http.StatusNotFound,
			apierrors.CreateError(http.StatusNotFound, apierrors.MsgTaskNotFound, lang),
		)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *TaskHandler) ToggleTask(c *gin.Context) {
	lang := middleware.GetLang(c)
	owner := middleware.GetOwner(c)

	taskID, ok := taskIDParam(c, lang)
	if !ok {
		return
	}

	task, err := h.taskService.ToggleCompletion(c.Request.Context(), owner, taskID)
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			c.JSON(
				http.StatusNotFound,
				apierrors.CreateError(http.StatusNotFound, apierrors.MsgTaskNotFound, lang),
			)
			return
		}

		zap.L().Error("failed to toggle task", zap.Uint64("task_id", taskID), zap.Error(err))
		c.JSON(
			http.StatusInternalServerError,
			apierrors.CreateError(http.StatusInternalServerError, apierrors.MsgFailUpdateTask, lang),
		)
		return
	}

	c.JSON(http.StatusOK, mapper.ToTaskItem(task))
}

func taskIDParam(c *gin.Context, lang string) (uint64, bool) {
	taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || taskID == 0 {
		c.JSON(
			http.StatusBadRequest,
			apierrors.CreateError(http.StatusBadRequest, apierrors.MsgInvalidTaskID, lang),
		)
		return 0, false
	}
	return taskID, true
}

// buildListFilter reads the filter query params. The third result is false
// when a param is malformed and an error response has been written.
func buildListFilter(c *gin.Context, lang string) (domain.TaskFilter, bool, bool) {
	var (
		filter domain.TaskFilter
		used   bool
	)

	if raw, ok := c.GetQuery("status"); ok {
		status, err := domain.ParseStatus(raw)
		if err != nil {
			badQuery(c, lang)
			return domain.TaskFilter{}, false, false
		}
		filter.Status = status
		used = true
	}

	if raw, ok := c.GetQuery("priority"); ok {
		priority, err := domain.ParsePriority(raw)
		if err != nil {
			badQuery(c, lang)
			return domain.TaskFilter{}, false, false
		}
		filter.Priority = &priority
		used = true
	}

	if raw, ok := c.GetQuery("category"); ok {
		category, err := domain.ParseCategory(raw)
		if err != nil {
			badQuery(c, lang)
			return domain.TaskFilter{}, false, false
		}
		filter.Category = &category
		used = true
	}

	if raw, ok := c.GetQuery("tags"); ok {
		for _, tag := range strings.Split(raw, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				filter.Tags = append(filter.Tags, tag)
			}
		}
		used = true
	}

	if raw, ok := c.GetQuery("created_from"); ok {
		from, err := parseFilterTime(raw)
		if err != nil {
			badQuery(c, lang)
			return domain.TaskFilter{}, false, false
		}
		filter.CreatedFrom = &from
		used = true
	}

	if raw, ok := c.GetQuery("created_to"); ok {
		to, err := parseFilterTime(raw)
		if err != nil {
			badQuery(c, lang)
			return domain.TaskFilter{}, false, false
		}
		filter.CreatedTo = &to
		used = true
	}

	return filter, used, true
}

func parseFilterTime(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

func badQuery(c *gin.Context, lang string) {
	c.JSON(
		http.StatusBadRequest,
		apierrors.CreateError(http.StatusBadRequest, apierrors.MsgInvalidQuery, lang),
	)
}

func badPayloadError(err error, lang string) apierrors.JsonErr {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return apierrors.CreateErrorWithDetail(http.StatusBadRequest, apierrors.MsgInvalidTaskPayload, lang, ve.Error())
	}
	return apierrors.CreateError(http.StatusBadRequest, apierrors.MsgInvalidTaskPayload, lang)
}

func bindRaw(raw map[string]json.RawMessage, req *dto.UpdateTaskRequest) error {
	b, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, req)
}
