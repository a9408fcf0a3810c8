package v1

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/adanyl0v/go-task-manager/internal/database"
	"github.com/adanyl0v/go-task-manager/internal/models"
	"github.com/adanyl0v/go-task-manager/internal/services"
)

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := database.SQLiteDSN(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	db, err := database.OpenSQLite(dsn, gormlogger.Discard)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := services.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	logger := zerolog.Nop()
	h := New(
		logger,
		services.NewTaskService(logger, db),
		services.NewUserService(logger, db),
		sqlDB,
	)
	return &testServer{router: newTestRouter(h), db: db}
}

func newTestRouter(h Handler) *gin.Engine {
	router := gin.New()
	router.Use(h.HandleRequestID, h.HandleAccessLog)
	Register(router, h)
	return router
}

func (s *testServer) createUser(t *testing.T, name string) *models.User {
	t.Helper()
	user := &models.User{Name: name, Email: name + "@example.com"}
	if err := s.db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	return serve(t, s.router, method, path, body)
}

func serve(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status: got %d, want %d (body %q)", rec.Code, want, rec.Body.String())
	}
}

type writeTaskBody struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	UserID      *int64    `json:"userId"`
	CreatedDate time.Time `json:"createdDate"`
	Message     string    `json:"message"`
}

type getTaskBody struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	CreatedDate time.Time  `json:"createdDate"`
	Deadline    *time.Time `json:"deadline"`
	Status      string     `json:"status"`
	User        *struct {
		ID    int64  `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"user"`
}

func TestCreateThenGetTask(t *testing.T) {
	s := newTestServer(t)
	user := s.createUser(t, "ann")

	before := time.Now().UTC()
	rec := s.do(t, http.MethodPost, "/tasks", fmt.Sprintf(`{"title":"Write report","userId":%d}`, user.ID))
	expectStatus(t, rec, http.StatusCreated)

	var created writeTaskBody
	decode(t, rec, &created)
	if created.ID <= 0 {
		t.Fatalf("expected positive id, got %d", created.ID)
	}
	if created.Status != "Todo" {
		t.Fatalf("expected Todo status, got %q", created.Status)
	}
	if created.UserID == nil || *created.UserID != user.ID {
		t.Fatalf("unexpected userId: %v", created.UserID)
	}
	if created.CreatedDate.Before(before) {
		t.Fatalf("expected fresh createdDate, got %v", created.CreatedDate)
	}
	if created.Message != msgTaskCreated {
		t.Fatalf("unexpected message: %q", created.Message)
	}
	if got, want := rec.Header().Get("Location"), fmt.Sprintf("/tasks/%d", created.ID); got != want {
		t.Fatalf("location: got %q, want %q", got, want)
	}

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/tasks/%d", created.ID), "")
	expectStatus(t, rec, http.StatusOK)

	var got getTaskBody
	decode(t, rec, &got)
	if got.Title != "Write report" || got.Description != "" || got.Status != "Todo" {
		t.Fatalf("unexpected task: %+v", got)
	}
	if got.User == nil || got.User.ID != user.ID || got.User.Email != "ann@example.com" {
		t.Fatalf("unexpected nested user: %+v", got.User)
	}
	if !got.CreatedDate.Equal(created.CreatedDate) {
		t.Fatalf("createdDate mismatch: %v != %v", got.CreatedDate, created.CreatedDate)
	}
}

func TestCreateTask_StatusLeniency(t *testing.T) {
	tests := []struct {
		status string
		want   string
	}{
		{`99`, "Todo"},
		{`-1`, "Todo"},
		{`"Archived"`, "Todo"},
		{`true`, "Todo"},
		{`2`, "Done"},
		{`"inprogress"`, "InProgress"},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			s := newTestServer(t)
			user := s.createUser(t, "ann")

			body := fmt.Sprintf(`{"title":"Status check","status":%s,"userId":%d}`, tt.status, user.ID)
			rec := s.do(t, http.MethodPost, "/tasks", body)
			expectStatus(t, rec, http.StatusCreated)

			var created writeTaskBody
			decode(t, rec, &created)

			rec = s.do(t, http.MethodGet, fmt.Sprintf("/tasks/%d", created.ID), "")
			expectStatus(t, rec, http.StatusOK)
			var got getTaskBody
			decode(t, rec, &got)
			if got.Status != tt.want {
				t.Fatalf("stored status: got %q, want %q", got.Status, tt.want)
			}
		})
	}
}

func TestCreateTask_UnknownUser(t *testing.T) {
	s := newTestServer(t)
	s.createUser(t, "ann")

	rec := s.do(t, http.MethodPost, "/tasks", `{"title":"Write report","userId":42}`)
	expectStatus(t, rec, http.StatusBadRequest)

	var body map[string]string
	decode(t, rec, &body)
	if body["error"] != "User with ID 42 not found" {
		t.Fatalf("unexpected error: %q", body["error"])
	}

	rec = s.do(t, http.MethodGet, "/tasks", "")
	expectStatus(t, rec, http.StatusOK)
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Fatalf("expected no tasks, got %s", got)
	}
}

func TestCreateTask_Validation(t *testing.T) {
	s := newTestServer(t)
	user := s.createUser(t, "ann")

	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing title", fmt.Sprintf(`{"userId":%d}`, user.ID), msgTitleRequired},
		{"blank title", fmt.Sprintf(`{"title":"     ","userId":%d}`, user.ID), msgTitleRequired},
		{"short title", fmt.Sprintf(`{"title":"ab","userId":%d}`, user.ID), "Task title must be at least 3 characters"},
		{"long title", fmt.Sprintf(`{"title":%q,"userId":%d}`, strings.Repeat("x", 61), user.ID), "Task title must be at most 60 characters"},
		{"long description", fmt.Sprintf(`{"title":"Valid","description":%q,"userId":%d}`, strings.Repeat("d", 501), user.ID), "Task description must be at most 500 characters"},
		{"missing user", `{"title":"Valid"}`, msgInvalidUserID},
		{"zero user", `{"title":"Valid","userId":0}`, msgInvalidUserID},
		{"negative user", `{"title":"Valid","userId":-4}`, msgInvalidUserID},
		{"malformed json", `{"title":`, errInvalidRequestBody.Error()},
		{"wrong type", `{"title":12,"userId":1}`, errInvalidRequestBody.Error()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/tasks", tt.body)
			expectStatus(t, rec, http.StatusBadRequest)

			var body map[string]string
			decode(t, rec, &body)
			if body["error"] != tt.want {
				t.Fatalf("error: got %q, want %q", body["error"], tt.want)
			}
		})
	}

	rec := s.do(t, http.MethodGet, "/tasks", "")
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Fatalf("expected no tasks, got %s", got)
	}
}

func TestCreateTask_AcceptsBoundaryLengths(t *testing.T) {
	s := newTestServer(t)
	user := s.createUser(t, "ann")

	body := fmt.Sprintf(`{"title":%q,"description":%q,"userId":%d}`,
		strings.Repeat("t", 60), strings.Repeat("d", 500), user.ID)
	rec := s.do(t, http.MethodPost, "/tasks", body)
	expectStatus(t, rec, http.StatusCreated)

	rec = s.do(t, http.MethodPost, "/tasks", fmt.Sprintf(`{"title":"abc","userId":%d}`, user.ID))
	expectStatus(t, rec, http.StatusCreated)
}

func TestCreateTask_Deadline(t *testing.T) {
	s := newTestServer(t)
	user := s.createUser(t, "ann")

	body := fmt.Sprintf(`{"title":"Has deadline","deadline":"2031-05-06T07:08:09Z","userId":%d}`, user.ID)
	rec := s.do(t, http.MethodPost, "/tasks", body)
	expectStatus(t, rec, http.StatusCreated)
	var created writeTaskBody
	decode(t, rec, &created)

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/tasks/%d", created.ID), "")
	var got getTaskBody
	decode(t, rec, &got)
	want := time.Date(2031, 5, 6, 7, 8, 9, 0, time.UTC)
	if got.Deadline == nil || !got.Deadline.Equal(want) {
		t.Fatalf("deadline: got %v, want %v", got.Deadline, want)
	}
}

func TestGetTasks_ListShape(t *testing.T) {
	s := newTestServer(t)
	user := s.createUser(t, "ann")
	for _, title := range []string{"First task", "Second task"} {
		rec := s.do(t, http.MethodPost, "/tasks", fmt.Sprintf(`{"title":%q,"description":"hidden","userId":%d}`, title, user.ID))
		expectStatus(t, rec, http.StatusCreated)
	}

	rec := s.do(t, http.MethodGet, "/tasks", "")
	expectStatus(t, rec, http.StatusOK)

	var tasks []map[string]any
	decode(t, rec, &tasks)
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	for _, task := range tasks {
		if len(task) != 4 {
			t.Fatalf("expected 4 fields, got %v", task)
		}
		for _, key := range []string{"id", "title", "createdDate", "status"} {
			if _, ok := task[key]; !ok {
				t.Fatalf("missing %q in %v", key, task)
			}
		}
	}
	if tasks[0]["title"] != "First task" {
		t.Fatalf("unexpected order: %v", tasks)
	}
}

type countingTaskService struct {
	services.TaskService
	getCalls int
}

func (s *countingTaskService) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	s.getCalls++
	return nil, services.ErrTaskNotFound
}

func TestGetTask_RejectsInvalidIDWithoutQuerying(t *testing.T) {
	tasks := &countingTaskService{}
	router := newTestRouter(New(zerolog.Nop(), tasks, nil, nil))

	for _, id := range []string{"0", "-3", "abc"} {
		rec := serve(t, router, http.MethodGet, "/tasks/"+id, "")
		expectStatus(t, rec, http.StatusBadRequest)
	}
	if tasks.getCalls != 0 {
		t.Fatalf("expected no store calls, got %d", tasks.getCalls)
	}

	rec := serve(t, router, http.MethodGet, "/tasks/7", "")
	expectStatus(t, rec, http.StatusNotFound)
	if got := rec.Body.String(); got != "Task with ID 7 not found" {
		t.Fatalf("unexpected body: %q", got)
	}
	if tasks.getCalls != 1 {
		t.Fatalf("expected one store call, got %d", tasks.getCalls)
	}
}

func TestUpdateTask(t *testing.T) {
	s := newTestServer(t)
	ann := s.createUser(t, "ann")
	bob := s.createUser(t, "bob")

	rec := s.do(t, http.MethodPost, "/tasks", fmt.Sprintf(`{"title":"Write report","userId":%d}`, ann.ID))
	expectStatus(t, rec, http.StatusCreated)
	var created writeTaskBody
	decode(t, rec, &created)

	body := fmt.Sprintf(`{"title":"Review report","description":"second pass","status":"Done","userId":%d}`, bob.ID)
	rec = s.do(t, http.MethodPut, fmt.Sprintf("/tasks/%d", created.ID), body)
	expectStatus(t, rec, http.StatusOK)

	var updated writeTaskBody
	decode(t, rec, &updated)
	if updated.Title != "Review report" || updated.Status != "Done" || updated.Message != msgTaskUpdated {
		t.Fatalf("unexpected response: %+v", updated)
	}
	if updated.UserID == nil || *updated.UserID != bob.ID {
		t.Fatalf("unexpected userId: %v", updated.UserID)
	}
	if !updated.CreatedDate.Equal(created.CreatedDate) {
		t.Fatalf("createdDate changed: %v != %v", updated.CreatedDate, created.CreatedDate)
	}

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/tasks/%d", created.ID), "")
	var got getTaskBody
	decode(t, rec, &got)
	if got.Description != "second pass" || got.User == nil || got.User.Name != "bob" {
		t.Fatalf("update not persisted: %+v", got)
	}
}

func TestUpdateTask_BlankTitleLeavesRowUnchanged(t *testing.T) {
	s := newTestServer(t)
	ann := s.createUser(t, "ann")

	rec := s.do(t, http.MethodPost, "/tasks", fmt.Sprintf(`{"title":"Write report","description":"draft","userId":%d}`, ann.ID))
	expectStatus(t, rec, http.StatusCreated)
	var created writeTaskBody
	decode(t, rec, &created)

	path := fmt.Sprintf("/tasks/%d", created.ID)
	for _, title := range []string{`""`, `"    "`} {
		body := fmt.Sprintf(`{"title":%s,"description":"changed","userId":%d}`, title, ann.ID)
		rec = s.do(t, http.MethodPut, path, body)
		expectStatus(t, rec, http.StatusBadRequest)
	}

	rec = s.do(t, http.MethodGet, path, "")
	var got getTaskBody
	decode(t, rec, &got)
	if got.Title != "Write report" || got.Description != "draft" {
		t.Fatalf("row changed: %+v", got)
	}
}

func TestUpdateTask_Failures(t *testing.T) {
	s := newTestServer(t)
	ann := s.createUser(t, "ann")

	rec := s.do(t, http.MethodPost, "/tasks", fmt.Sprintf(`{"title":"Write report","userId":%d}`, ann.ID))
	expectStatus(t, rec, http.StatusCreated)
	var created writeTaskBody
	decode(t, rec, &created)
	path := fmt.Sprintf("/tasks/%d", created.ID)

	rec = s.do(t, http.MethodPut, "/tasks/9999", `{"title":"Valid title","userId":1}`)
	expectStatus(t, rec, http.StatusNotFound)
	if got := rec.Body.String(); got != "Task with ID 9999 not found" {
		t.Fatalf("unexpected body: %q", got)
	}

	rec = s.do(t, http.MethodPut, path, `{"title":"Valid title","userId":555}`)
	expectStatus(t, rec, http.StatusBadRequest)
	var body map[string]string
	decode(t, rec, &body)
	if body["error"] != "User with ID 555 not found" {
		t.Fatalf("unexpected error: %q", body["error"])
	}

	rec = s.do(t, http.MethodPut, path, `{"title":"Valid title"}`)
	expectStatus(t, rec, http.StatusBadRequest)
	decode(t, rec, &body)
	if body["error"] != msgInvalidUserID {
		t.Fatalf("unexpected error: %q", body["error"])
	}

	rec = s.do(t, http.MethodPut, "/tasks/abc", `{"title":"Valid title","userId":1}`)
	expectStatus(t, rec, http.StatusBadRequest)
}

func TestDeleteTaskTwice(t *testing.T) {
	s := newTestServer(t)
	ann := s.createUser(t, "ann")

	rec := s.do(t, http.MethodPost, "/tasks", fmt.Sprintf(`{"title":"Write report","userId":%d}`, ann.ID))
	expectStatus(t, rec, http.StatusCreated)
	var created writeTaskBody
	decode(t, rec, &created)
	path := fmt.Sprintf("/tasks/%d", created.ID)

	rec = s.do(t, http.MethodDelete, path, "")
	expectStatus(t, rec, http.StatusOK)
	var body map[string]string
	decode(t, rec, &body)
	if want := fmt.Sprintf("Task with ID %d deleted successfully", created.ID); body["message"] != want {
		t.Fatalf("message: got %q, want %q", body["message"], want)
	}

	rec = s.do(t, http.MethodDelete, path, "")
	expectStatus(t, rec, http.StatusNotFound)
	if want := fmt.Sprintf("Task with ID %d not found", created.ID); rec.Body.String() != want {
		t.Fatalf("body: got %q, want %q", rec.Body.String(), want)
	}
}

type failingTaskService struct {
	services.TaskService
	err       error
	existsErr error
}

func (s *failingTaskService) TaskExists(context.Context, int64) (bool, error) {
	return s.existsErr == nil, s.existsErr
}

func (s *failingTaskService) CreateTask(context.Context, services.CreateTaskParams) (*models.Task, error) {
	return nil, s.err
}

func (s *failingTaskService) UpdateTask(context.Context, services.UpdateTaskParams) (*models.Task, error) {
	return nil, s.err
}

func (s *failingTaskService) DeleteTask(context.Context, int64) error {
	return s.err
}

type stubUserService struct {
	services.UserService
	err error
}

func (s stubUserService) UserExists(context.Context, int64) (bool, error) {
	return s.err == nil, s.err
}

func TestStoreFailureReturnsProblemDetails(t *testing.T) {
	storeErr := fmt.Errorf("%w: %w", services.ErrConstraintViolation, errors.New("FOREIGN KEY constraint failed"))
	lockedErr := errors.New("database is locked")

	tests := []struct {
		name   string
		tasks  *failingTaskService
		users  stubUserService
		method string
		path   string
		body   string
		title  string
		detail string
	}{
		{
			name:   "create",
			tasks:  &failingTaskService{err: storeErr},
			method: http.MethodPost, path: "/tasks", body: `{"title":"Write report","userId":1}`,
			title: "Failed to save task", detail: "FOREIGN KEY constraint failed",
		},
		{
			name:   "create user lookup",
			tasks:  &failingTaskService{},
			users:  stubUserService{err: lockedErr},
			method: http.MethodPost, path: "/tasks", body: `{"title":"Write report","userId":1}`,
			title: "Failed to save task", detail: "database is locked",
		},
		{
			name:   "update",
			tasks:  &failingTaskService{err: storeErr},
			method: http.MethodPut, path: "/tasks/1", body: `{"title":"Write report","userId":1}`,
			title: "Failed to update task", detail: "FOREIGN KEY constraint failed",
		},
		{
			name:   "update task lookup",
			tasks:  &failingTaskService{existsErr: lockedErr},
			method: http.MethodPut, path: "/tasks/1", body: `{"title":"Write report","userId":1}`,
			title: "Failed to update task", detail: "database is locked",
		},
		{
			name:   "delete",
			tasks:  &failingTaskService{err: storeErr},
			method: http.MethodDelete, path: "/tasks/1",
			title: "Failed to delete task", detail: "FOREIGN KEY constraint failed",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(New(zerolog.Nop(), tt.tasks, tt.users, nil))

			rec := serve(t, router, tt.method, tt.path, tt.body)
			expectStatus(t, rec, http.StatusInternalServerError)
			if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, problemContentType) {
				t.Fatalf("content type: got %q", ct)
			}

			var problem problemDetails
			decode(t, rec, &problem)
			if problem.Title != tt.title || problem.Status != http.StatusInternalServerError || problem.Type != problemTypeServer {
				t.Fatalf("unexpected problem: %+v", problem)
			}
			if !strings.Contains(problem.Detail, tt.detail) {
				t.Fatalf("detail: got %q, want it to contain %q", problem.Detail, tt.detail)
			}
		})
	}
}

func TestUpdateTask_MissingTaskReportedBeforeFieldErrors(t *testing.T) {
	s := newTestServer(t)
	ann := s.createUser(t, "ann")

	for _, body := range []string{
		fmt.Sprintf(`{"title":"   ","userId":%d}`, ann.ID),
		fmt.Sprintf(`{"title":"ab","userId":%d}`, ann.ID),
		fmt.Sprintf(`{"title":"","userId":%d}`, ann.ID),
		`{"title":"Valid title","userId":-1}`,
		fmt.Sprintf(`{"title":"Valid title","description":%q}`, strings.Repeat("d", 501)),
	} {
		rec := s.do(t, http.MethodPut, "/tasks/9999", body)
		expectStatus(t, rec, http.StatusNotFound)
		if got := rec.Body.String(); got != "Task with ID 9999 not found" {
			t.Fatalf("unexpected body for %s: %q", body, got)
		}
	}

	rec := s.do(t, http.MethodPut, "/tasks/9999", `{"title":`)
	expectStatus(t, rec, http.StatusBadRequest)
	var body map[string]string
	decode(t, rec, &body)
	if body["error"] != errInvalidRequestBody.Error() {
		t.Fatalf("unexpected error: %q", body["error"])
	}
}
