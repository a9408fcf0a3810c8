package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/adanyl0v/go-task-manager/internal/models"
	"github.com/adanyl0v/go-task-manager/internal/services"
)

const (
	msgTaskCreated = "The task was created successfully."
	msgTaskUpdated = "Task updated successfully."
)

type taskSummaryResponse struct {
	ID          int64             `json:"id"`
	Title       string            `json:"title"`
	CreatedDate time.Time         `json:"createdDate"`
	Status      models.TaskStatus `json:"status"`
}

func newTaskSummaryResponses(tasks []models.TaskSummary) []taskSummaryResponse {
	response := make([]taskSummaryResponse, len(tasks))
	for i, task := range tasks {
		response[i] = taskSummaryResponse{
			ID:          task.ID,
			Title:       task.Title,
			CreatedDate: task.CreatedDate,
			Status:      task.Status,
		}
	}
	return response
}

type userResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type getTaskResponse struct {
	ID          int64             `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	CreatedDate time.Time         `json:"createdDate"`
	Deadline    *time.Time        `json:"deadline"`
	Status      models.TaskStatus `json:"status"`
	User        *userResponse     `json:"user"`
}

func newGetTaskResponse(task *models.Task) getTaskResponse {
	response := getTaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		CreatedDate: task.CreatedDate,
		Deadline:    task.Deadline,
		Status:      task.Status,
	}
	if task.User != nil {
		response.User = &userResponse{
			ID:    task.User.ID,
			Name:  task.User.Name,
			Email: task.User.Email,
		}
	}
	return response
}

type writeTaskResponse struct {
	ID          int64             `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Status      models.TaskStatus `json:"status"`
	UserID      *int64            `json:"userId"`
	CreatedDate time.Time         `json:"createdDate"`
	Message     string            `json:"message"`
}

func newWriteTaskResponse(task *models.Task, message string) writeTaskResponse {
	return writeTaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		UserID:      task.UserID,
		CreatedDate: task.CreatedDate,
		Message:     message,
	}
}

type messageResponse struct {
	Message string `json:"message"`
}

func (h *handlerImpl) HandleGetTasks(c *gin.Context) {
	tasks, err := h.tasks.ListTasks(c.Request.Context())
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to list tasks")
		abortWithProblem(c, "Failed to load tasks", err)
		return
	}

	c.JSON(http.StatusOK, newTaskSummaryResponses(tasks))
}

func (h *handlerImpl) HandleGetTask(c *gin.Context) {
	taskID, ok := parseID(c)
	if !ok || taskID <= 0 {
		abort(c, newBadRequestError(msgInvalidID))
		return
	}

	task, err := h.tasks.GetTask(c.Request.Context(), taskID)
	if err != nil {
		if errors.Is(err, services.ErrTaskNotFound) {
			abortNotFound(c, "Task with ID %d not found", taskID)
			return
		}

		h.logger.Error().
			Err(err).
			Int64("task_id", taskID).
			Msg("failed to get task")
		abortWithProblem(c, "Failed to load task", err)
		return
	}

	c.JSON(http.StatusOK, newGetTaskResponse(task))
}

type createTaskRequest struct {
	Title       string            `json:"title" binding:"required,min=3,max=60"`
	Description *string           `json:"description" binding:"omitempty,max=500"`
	Deadline    *time.Time        `json:"deadline"`
	Status      models.TaskStatus `json:"status"`
	UserID      int64             `json:"userId" binding:"required,gt=0"`
}

func (h *handlerImpl) HandleCreateTask(c *gin.Context) {
	var req createTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Debug().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(bindingErrorMessage(err)))
		return
	}

	if strings.TrimSpace(req.Title) == "" {
		abort(c, newBadRequestError(msgTitleRequired))
		return
	}

	ctx := c.Request.Context()
	exists, err := h.users.UserExists(ctx, req.UserID)
	if err != nil {
		abortWithProblem(c, "Failed to save task", err)
		return
	}
	if !exists {
		abort(c, newBadRequestError(fmt.Sprintf("User with ID %d not found", req.UserID)))
		return
	}

	params := services.CreateTaskParams{
		Title:    req.Title,
		Deadline: req.Deadline,
		Status:   req.Status,
		UserID:   req.UserID,
	}
	if req.Description != nil {
		params.Description = *req.Description
	}

	task, err := h.tasks.CreateTask(ctx, params)
	if err != nil {
		abortWithProblem(c, "Failed to save task", err)
		return
	}

	c.Header("Location", fmt.Sprintf("/tasks/%d", task.ID))
	c.JSON(http.StatusCreated, newWriteTaskResponse(task, msgTaskCreated))
}

type updateTaskRequest struct {
	Title       string            `json:"title" binding:"required,min=3,max=60"`
	Description *string           `json:"description" binding:"omitempty,max=500"`
	Status      models.TaskStatus `json:"status"`
	UserID      *int64            `json:"userId" binding:"omitempty,gt=0"`
}

func (h *handlerImpl) HandleUpdateTask(c *gin.Context) {
	taskID, ok := parseID(c)
	if !ok {
		abort(c, newBadRequestError(msgInvalidID))
		return
	}

	// Fields are validated after the lookup: a missing task is
	// a 404 whatever the body holds.
	var req updateTaskRequest
	err := json.NewDecoder(c.Request.Body).Decode(&req)
	if err != nil {
		h.logger.Debug().
			Err(err).
			Msg("failed to decode json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	ctx := c.Request.Context()
	exists, err := h.tasks.TaskExists(ctx, taskID)
	if err != nil {
		abortWithProblem(c, "Failed to update task", err)
		return
	}
	if !exists {
		abortNotFound(c, "Task with ID %d not found", taskID)
		return
	}

	err = binding.Validator.ValidateStruct(&req)
	if err != nil {
		abort(c, newBadRequestError(bindingErrorMessage(err)))
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		abort(c, newBadRequestError(msgTitleRequired))
		return
	}

	params := services.UpdateTaskParams{
		ID:     taskID,
		Title:  req.Title,
		Status: req.Status,
		UserID: req.UserID,
	}
	if req.Description != nil {
		params.Description = *req.Description
	}

	task, err := h.tasks.UpdateTask(ctx, params)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTaskNotFound):
			abortNotFound(c, "Task with ID %d not found", taskID)
		case errors.Is(err, services.ErrUserNotFound):
			if req.UserID == nil {
				abort(c, newBadRequestError(msgInvalidUserID))
			} else {
				abort(c, newBadRequestError(fmt.Sprintf("User with ID %d not found", *req.UserID)))
			}
		default:
			abortWithProblem(c, "Failed to update task", err)
		}
		return
	}

	c.JSON(http.StatusOK, newWriteTaskResponse(task, msgTaskUpdated))
}

func (h *handlerImpl) HandleDeleteTask(c *gin.Context) {
	taskID, ok := parseID(c)
	if !ok {
		abort(c, newBadRequestError(msgInvalidID))
		return
	}

	err := h.tasks.DeleteTask(c.Request.Context(), taskID)
	if err != nil {
		if errors.Is(err, services.ErrTaskNotFound) {
			abortNotFound(c, "Task with ID %d not found", taskID)
			return
		}

		abortWithProblem(c, "Failed to delete task", err)
		return
	}

	c.JSON(http.StatusOK, messageResponse{
		Message: fmt.Sprintf("Task with ID %d deleted successfully", taskID),
	})
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
