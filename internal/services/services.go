package services

import (
	"context"
	"errors"
	"time"

	"github.com/adanyl0v/go-task-manager/internal/models"
)

var (
	ErrTaskNotFound        = errors.New("task not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrConstraintViolation = errors.New("constraint violation")
)

type TaskService interface {
	// ListTasks returns every task as a summary ordered by id.
	// It returns an empty slice when there are no tasks.
	ListTasks(ctx context.Context) ([]models.TaskSummary, error)

	// GetTask returns the task with its user preloaded, or
	// ErrTaskNotFound if no row matches the id.
	GetTask(ctx context.Context, id int64) (*models.Task, error)

	TaskExists(ctx context.Context, id int64) (bool, error)

	// CreateTask inserts a task and stamps its creation date.
	//
	// It does not check that the user exists; callers are expected
	// to do so with UserService.UserExists. A store-level constraint
	// failure is returned wrapped in ErrConstraintViolation.
	CreateTask(ctx context.Context, params CreateTaskParams) (*models.Task, error)

	// UpdateTask overwrites the title, description, status and
	// user of an existing task within a single transaction.
	//
	// It returns ErrTaskNotFound if the task doesn't exist and
	// ErrUserNotFound if the user id changed and the new one
	// doesn't reference an existing user.
	UpdateTask(ctx context.Context, params UpdateTaskParams) (*models.Task, error)

	// DeleteTask removes the task or returns ErrTaskNotFound.
	DeleteTask(ctx context.Context, id int64) error

	// ListTasksByUser returns the summaries of the tasks owned by the
	// user, or ErrUserNotFound if the user doesn't exist.
	ListTasksByUser(ctx context.Context, userID int64) ([]models.TaskSummary, error)
}

type UserService interface {
	UserExists(ctx context.Context, id int64) (bool, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
}

type CreateTaskParams struct {
	Title       string
	Description string
	Deadline    *time.Time
	Status      models.TaskStatus
	UserID      int64
}

type UpdateTaskParams struct {
	ID          int64
	Title       string
	Description string
	Status      models.TaskStatus
	UserID      *int64
}
