package repositories

import (
	"context"

	"belanja/internal/models"
)

// UserRepository defines the interface for credential storage.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id uint) (*models.User, error)
}
