//go:build integration
// +build integration

package tests

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	dbadapter "taskdeck/internal/adapter/db"
	httpadapter "taskdeck/internal/adapter/http"
	"taskdeck/internal/adapter/http/dto"
	"taskdeck/internal/adapter/http/handlers"
	"taskdeck/internal/app/cache"
	appservice "taskdeck/internal/app/service"
	"taskdeck/internal/config"
	"taskdeck/pkg/apierrors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
)

type TasksIntegrationSuite struct {
	IntegrationSuiteBase
	router *gin.Engine
}

func TestTasksIntegrationSuite(t *testing.T) {
	suite.Run(t, new(TasksIntegrationSuite))
}

func (s *TasksIntegrationSuite) SetupTest() {
	s.ResetDatabase()

	router := gin.New()
	healthHandler := handlers.NewHealthHandler(s.DB, config.BackendMysql)
	taskRepository := dbadapter.NewTaskRepository(s.DB)
	taskService := appservice.NewTaskService(taskRepository, cache.NewQueryCache(0))
	taskHandler := handlers.NewTaskHandler(taskService)
	httpadapter.RegisterRoutes(router, healthHandler, taskHandler)

	s.router = router
}

func (s *TasksIntegrationSuite) do(method, target, body, owner string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if owner != "" {
		req.Header.Set("X-User-ID", owner)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func itoa(id uint64) string {
	return strconv.FormatUint(id, 10)
}

func (s *TasksIntegrationSuite) createTask(owner, body string) dto.TaskItem {
	rec := s.do(http.MethodPost, "/api/tasks", body, owner)
	s.Require().Equal(http.StatusCreated, rec.Code)

	var got dto.TaskItem
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &got))
	return got
}

func (s *TasksIntegrationSuite) TestPostTasks_CreatesTask() {
	got := s.createTask("alice", `{
		"title":"Buy milk",
		"description":"from the corner shop",
		"priority":"high",
		"category":"personal",
		"tags":["errand","shopping"]
	}`)

	s.Require().Equal(uint64(1), got.ID)
	s.Require().Equal("Buy milk", got.Title)
	s.Require().Equal("from the corner shop", got.Description)
	s.Require().False(got.Completed)
	s.Require().Equal("HIGH", got.Priority)
	s.Require().Equal("PERSONAL", got.Category)
	s.Require().Equal([]string{"errand", "shopping"}, got.Tags)
	s.Require().NotEmpty(got.CreatedAt)
	s.Require().NotEmpty(got.UpdatedAt)

	var row struct {
		OwnerID  string `db:"owner_id"`
		Priority string `db:"priority"`
	}
	err := s.DB.Get(&row, "SELECT owner_id, priority FROM tasks WHERE id = ?", got.ID)
	s.Require().NoError(err)
	s.Require().Equal("alice", row.OwnerID)
	s.Require().Equal("HIGH", row.Priority)
}

func (s *TasksIntegrationSuite) TestPostTasks_DefaultsAndMissingTitle() {
	got := s.createTask("alice", `{"title":"Just a title"}`)
	s.Require().Equal("MEDIUM", got.Priority)
	s.Require().Equal("GENERAL", got.Category)

	rec := s.do(http.MethodPost, "/api/tasks", `{}`, "alice")
	s.Require().Equal(http.StatusBadRequest, rec.Code)

	var gotErr apierrors.JsonErr
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &gotErr))
	s.Require().Equal("Invalid task payload", gotErr.ErrDetails.Message)
}

func (s *TasksIntegrationSuite) TestGetTasks_ListsOwnTasksInIDOrder() {
	s.createTask("alice", `{"title":"one"}`)
	s.createTask("alice", `{"title":"two"}`)
	s.createTask("bob", `{"title":"bob's"}`)

	rec := s.do(http.MethodGet, "/api/tasks", "", "alice")
	s.Require().Equal(http.StatusOK, rec.Code)

	var got []dto.TaskItem
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &got))
	s.Require().Len(got, 2)
	s.Require().Equal("one", got[0].Title)
	s.Require().Equal("two", got[1].Title)
}

func (s *TasksIntegrationSuite) TestGetTasks_ReturnsEmptyList() {
	rec := s.do(http.MethodGet, "/api/tasks", "", "alice")
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Require().JSONEq("[]", rec.Body.String())
}

func (s *TasksIntegrationSuite) TestGetTasks_Search() {
	s.createTask("alice", `{"title":"Buy milk"}`)
	s.createTask("alice", `{"title":"Walk dog","description":"around the block"}`)

	rec := s.do(http.MethodGet, "/api/tasks?search=MILK", "", "alice")
	s.Require().Equal(http.StatusOK, rec.Code)

	var got []dto.TaskItem
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &got))
	s.Require().Len(got, 1)
	s.Require().Equal("Buy milk", got[0].Title)
}

func (s *TasksIntegrationSuite) TestGetTasks_Filter() {
	a := s.createTask("alice", `{"title":"A","priority":"high"}`)
	b := s.createTask("alice", `{"title":"B","priority":"high"}`)
	s.createTask("alice", `{"title":"C","priority":"low"}`)

	rec := s.do(http.MethodPost, "/api/tasks/"+itoa(b.ID)+"/toggle", "", "alice")
	s.Require().Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/tasks?status=pending&priority=high", "", "alice")
	s.Require().Equal(http.StatusOK, rec.Code)

	var got []dto.TaskItem
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &got))
	s.Require().Len(got, 1)
	s.Require().Equal(a.ID, got[0].ID)
}

func (s *TasksIntegrationSuite) TestGetTasks_FilterByTags() {
	s.createTask("alice", `{"title":"tagged","tags":["urgent","q3"]}`)
	s.createTask("alice", `{"title":"untagged"}`)

	rec := s.do(http.MethodGet, "/api/tasks?tags=urgent", "", "alice")
	s.Require().Equal(http.StatusOK, rec.Code)

	var got []dto.TaskItem
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &got))
	s.Require().Len(got, 1)
	s.Require().Equal("tagged", got[0].Title)
}

func (s *TasksIntegrationSuite) TestGetTasks_SearchAndFilterConflict() {
	rec := s.do(http.MethodGet, "/api/tasks?search=milk&status=pending", "", "alice")
	s.Require().Equal(http.StatusBadRequest, rec.Code)

	var got apierrors.JsonErr
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &got))
	s.Require().Equal("Invalid query parameters", got.ErrDetails.Message)
}

func (s *TasksIntegrationSuite) TestGetTask_OwnerIsolation() {
	created := s.createTask("alice", `{"title":"private"}`)

	rec := s.do(http.MethodGet, "/api/tasks/"+itoa(created.ID), "", "bob")
	s.Require().Equal(http.StatusNotFound, rec.Code)

	var got apierrors.JsonErr
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &got))
	s.Require().Equal("Task not found", got.ErrDetails.Message)
}

func (s *TasksIntegrationSuite) TestPatchTasks_UpdatesTask() {
	created := s.createTask("alice", `{"title":"before"}`)

	rec := s.do(http.MethodPatch, "/api/tasks/"+itoa(created.ID), `{
		"title":"after",
		"completed":true,
		"priority":"low"
	}`, "alice")
	s.Require().Equal(http.StatusOK, rec.Code)

	var got dto.TaskItem
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &got))
	s.Require().Equal("after", got.Title)
	s.Require().True(got.Completed)
	s.Require().Equal("LOW", got.Priority)

	var row struct {
		Title     string `db:"title"`
		Completed bool   `db:"completed"`
		Priority  string `db:"priority"`
	}
	err := s.DB.Get(&row, "SELECT title, completed, priority FROM tasks WHERE id = ?", created.ID)
	s.Require().NoError(err)
	s.Require().Equal("after", row.Title)
	s.Require().True(row.Completed)
	s.Require().Equal("LOW", row.Priority)
}

func (s *TasksIntegrationSuite) TestPatchTasks_AtomicOnValidationFailure() {
	created := s.createTask("alice", `{"title":"before"}`)

	rec := s.do(http.MethodPatch, "/api/tasks/"+itoa(created.ID), `{
		"title":"ok",
		"description":"`+strings.Repeat("d", 201)+`"
	}`, "alice")
	s.Require().Equal(http.StatusBadRequest, rec.Code)

	var row struct {
		Title       string `db:"title"`
		Description string `db:"description"`
	}
	err := s.DB.Get(&row, "SELECT title, description FROM tasks WHERE id = ?", created.ID)
	s.Require().NoError(err)
	s.Require().Equal("before", row.Title)
	s.Require().Empty(row.Description)
}

func (s *TasksIntegrationSuite) TestPatchTasks_ReturnsNotFoundWhenTaskDoesNotExist() {
	rec := s.do(http.MethodPatch, "/api/tasks/999999", `{"title":"x"}`, "alice")
	s.Require().Equal(http.StatusNotFound, rec.Code)

	var got apierrors.JsonErr
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &got))
	s.Require().Equal("Task not found", got.ErrDetails.Message)
}

func (s *TasksIntegrationSuite) TestDeleteTasks_RemovesRow() {
	created := s.createTask("alice", `{"title":"doomed"}`)

	rec := s.do(http.MethodDelete, "/api/tasks/"+itoa(created.ID), "", "alice")
	s.Require().Equal(http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodDelete, "/api/tasks/"+itoa(created.ID), "", "alice")
	s.Require().Equal(http.StatusNotFound, rec.Code)

	var count int
	err := s.DB.Get(&count, "SELECT COUNT(*) FROM tasks WHERE id = ?", created.ID)
	s.Require().NoError(err)
	s.Require().Zero(count)
}

func (s *TasksIntegrationSuite) TestToggleTasks_FlipsCompletion() {
	created := s.createTask("alice", `{"title":"flip me"}`)

	rec := s.do(http.MethodPost, "/api/tasks/"+itoa(created.ID)+"/toggle", "", "alice")
	s.Require().Equal(http.StatusOK, rec.Code)

	var got dto.TaskItem
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &got))
	s.Require().True(got.Completed)

	rec = s.do(http.MethodPost, "/api/tasks/"+itoa(created.ID)+"/toggle", "", "alice")
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &got))
	s.Require().False(got.Completed)
}

func (s *TasksIntegrationSuite) TestHealthReport_ReportsMysqlBackend() {
	rec := s.do(http.MethodGet, "/api/health/report", "", "")
	s.Require().Equal(http.StatusOK, rec.Code)

	var got handlers.HealthAdvanced
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &got))
	s.Require().Equal(config.BackendMysql, got.StoreBackend)
	s.Require().Equal(handlers.StatusOk, got.Status.Store)
}
