package repositories

import (
	"context"

	"belanja/internal/models"
)

// CartRepository defines the interface for cart line storage.
type CartRepository interface {
	// Add always inserts a new line, even when the owner already has the product.
	Add(ctx context.Context, line *models.CartLine) error
	ListByOwner(ctx context.Context, ownerID uint) ([]models.CartLine, error)
	// ClearByOwner removes every line of the owner. Removing nothing is not an error.
	ClearByOwner(ctx context.Context, ownerID uint) error
}
