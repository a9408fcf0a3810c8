package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/adanyl0v/go-task-manager/internal/models"
)

type taskServiceImpl struct {
	logger zerolog.Logger
	db     *gorm.DB
	now    func() time.Time
}

func NewTaskService(
	logger zerolog.Logger,
	db *gorm.DB,
) TaskService {
	return &taskServiceImpl{
		logger: logger,
		db:     db,
		now:    time.Now,
	}
}

func (s *taskServiceImpl) ListTasks(ctx context.Context) ([]models.TaskSummary, error) {
	tasks := make([]models.TaskSummary, 0)
	err := s.summaries(s.db.WithContext(ctx)).
		Find(&tasks).
		Error
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select tasks")
		return nil, err
	}

	s.logger.Debug().
		Int("count", len(tasks)).
		Msg("selected tasks")
	return tasks, nil
}

func (s *taskServiceImpl) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	task := new(models.Task)
	err := s.db.WithContext(ctx).
		Preload("User").
		First(task, id).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Info().
				Int64("task_id", id).
				Msg("task not found")
			return nil, ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Int64("task_id", id).
			Msg("failed to select task")
		return nil, err
	}

	s.logger.Debug().
		Int64("task_id", id).
		Msg("selected task")
	return task, nil
}

func (s *taskServiceImpl) TaskExists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("id = ?", id).
		Count(&count).
		Error
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("task_id", id).
			Msg("failed to check task")
		return false, err
	}
	return count > 0, nil
}

func (s *taskServiceImpl) CreateTask(ctx context.Context, params CreateTaskParams) (*models.Task, error) {
	userID := params.UserID
	task := &models.Task{
		Title:       params.Title,
		Description: params.Description,
		CreatedDate: s.now().UTC(),
		Deadline:    params.Deadline,
		Status:      params.Status,
		UserID:      &userID,
	}
	if !task.Status.IsValid() {
		task.Status = models.StatusTodo
	}

	err := s.db.WithContext(ctx).
		Omit(clause.Associations).
		Create(task).
		Error
	if err != nil {
		err = wrapStoreError(err)
		s.logger.Error().
			Err(err).
			Msg("failed to insert task")
		return nil, err
	}

	s.logger.Info().
		Int64("task_id", task.ID).
		Int64("user_id", userID).
		Msg("created task")
	return task, nil
}

func (s *taskServiceImpl) UpdateTask(ctx context.Context, params UpdateTaskParams) (*models.Task, error) {
	task := new(models.Task)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.First(task, params.ID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return err
		}

		if !sameUserID(task.UserID, params.UserID) {
			if params.UserID == nil {
				return ErrUserNotFound
			}

			exists, err := userExists(tx, *params.UserID)
			if err != nil {
				return err
			}
			if !exists {
				return ErrUserNotFound
			}
		}

		task.Title = params.Title
		task.Description = params.Description
		task.Status = params.Status
		if !task.Status.IsValid() {
			task.Status = models.StatusTodo
		}
		task.UserID = params.UserID

		return tx.Omit(clause.Associations).
			Save(task).
			Error
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrTaskNotFound):
			s.logger.Info().
				Int64("task_id", params.ID).
				Msg("task not found")
		case errors.Is(err, ErrUserNotFound):
			s.logger.Info().
				Int64("task_id", params.ID).
				Msg("user not found")
		default:
			err = wrapStoreError(err)
			s.logger.Error().
				Err(err).
				Int64("task_id", params.ID).
				Msg("failed to update task")
		}
		return nil, err
	}

	s.logger.Info().
		Int64("task_id", task.ID).
		Msg("updated task")
	return task, nil
}

func (s *taskServiceImpl) DeleteTask(ctx context.Context, id int64) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task models.Task
		err := tx.First(&task, id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return err
		}
		return tx.Delete(&task).Error
	})
	if err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			s.logger.Info().
				Int64("task_id", id).
				Msg("task not found")
			return err
		}

		err = wrapStoreError(err)
		s.logger.Error().
			Err(err).
			Int64("task_id", id).
			Msg("failed to delete task")
		return err
	}

	s.logger.Info().
		Int64("task_id", id).
		Msg("deleted task")
	return nil
}

func (s *taskServiceImpl) ListTasksByUser(ctx context.Context, userID int64) ([]models.TaskSummary, error) {
	db := s.db.WithContext(ctx)
	exists, err := userExists(db, userID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("user_id", userID).
			Msg("failed to check user")
		return nil, err
	}
	if !exists {
		s.logger.Info().
			Int64("user_id", userID).
			Msg("user not found")
		return nil, ErrUserNotFound
	}

	tasks := make([]models.TaskSummary, 0)
	err = s.summaries(db).
		Where("user_id = ?", userID).
		Find(&tasks).
		Error
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("user_id", userID).
			Msg("failed to select tasks by user id")
		return nil, err
	}

	s.logger.Debug().
		Int("count", len(tasks)).
		Int64("user_id", userID).
		Msg("selected tasks by user id")
	return tasks, nil
}

func (s *taskServiceImpl) summaries(db *gorm.DB) *gorm.DB {
	return db.Model(&models.Task{}).
		Select("id", "title", "created_date", "status").
		Order("id")
}

func sameUserID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
