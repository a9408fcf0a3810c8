package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/adanyl0v/go-task-manager/internal/models"
)

type userServiceImpl struct {
	logger zerolog.Logger
	db     *gorm.DB
}

func NewUserService(
	logger zerolog.Logger,
	db *gorm.DB,
) UserService {
	return &userServiceImpl{
		logger: logger,
		db:     db,
	}
}

func (s *userServiceImpl) UserExists(ctx context.Context, id int64) (bool, error) {
	exists, err := userExists(s.db.WithContext(ctx), id)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("user_id", id).
			Msg("failed to check user")
		return false, err
	}
	return exists, nil
}

func (s *userServiceImpl) GetUser(ctx context.Context, id int64) (*models.User, error) {
	user := new(models.User)
	err := s.db.WithContext(ctx).First(user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}

		s.logger.Error().
			Err(err).
			Int64("user_id", id).
			Msg("failed to select user")
		return nil, err
	}
	return user, nil
}

func userExists(db *gorm.DB, id int64) (bool, error) {
	var count int64
	err := db.Model(&models.User{}).
		Where("id = ?", id).
		Count(&count).
		Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
