package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/adanyl0v/go-task-manager/internal/models"
)

const (
	seedUserName  = "Test User"
	seedUserEmail = "test@example.com"
	seedTaskTitle = "Prepare for the exam"
)

// Migrate creates the users and tasks tables if they don't exist.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(&models.User{}, &models.Task{})
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// SeedDefaults inserts a single user owning a single task when the users
// table is empty. It reports whether anything was inserted.
func SeedDefaults(ctx context.Context, logger zerolog.Logger, db *gorm.DB) (bool, error) {
	seeded := false
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&models.User{}).Count(&count).Error
		if err != nil {
			return fmt.Errorf("failed to count users: %w", err)
		}
		if count > 0 {
			return nil
		}

		user := models.User{
			Name:  seedUserName,
			Email: seedUserEmail,
		}
		err = tx.Create(&user).Error
		if err != nil {
			return fmt.Errorf("failed to insert seed user: %w", err)
		}

		task := models.Task{
			Title:       seedTaskTitle,
			CreatedDate: time.Now().UTC(),
			Status:      models.StatusTodo,
			UserID:      &user.ID,
		}
		err = tx.Create(&task).Error
		if err != nil {
			return fmt.Errorf("failed to insert seed task: %w", err)
		}

		seeded = true
		return nil
	})
	if err != nil {
		logger.Error().
			Err(err).
			Msg("failed to seed database")
		return false, err
	}

	if seeded {
		logger.Info().Msg("seeded database")
	} else {
		logger.Debug().Msg("database already seeded")
	}
	return seeded, nil
}
