package repositories

import (
	"context"
	"fmt"

	"github.com/anonto42/nano-chat/backend/internal/models"
	"gorm.io/gorm"
)

// Migrate creates or updates the PostgreSQL schema for every model
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(
		&models.User{},
		&models.Friendship{},
		&models.Post{},
		&models.Like{},
		&models.Comment{},
		&models.Message{},
	); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}
