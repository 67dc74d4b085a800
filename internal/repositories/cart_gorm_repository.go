package repositories

import (
	"context"
	"fmt"

	"belanja/internal/models"

	"gorm.io/gorm"
)

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{
		db: db,
	}
}

// Add inserts a cart line. Unknown owner or product IDs fail on the foreign keys.
func (r *GORMCartRepository) Add(ctx context.Context, line *models.CartLine) error {
	err := r.db.WithContext(ctx).Omit("Owner", "Product").Create(line).Error
	return translateError("add cart line", err)
}

// ListByOwner returns the owner's lines in insertion order.
func (r *GORMCartRepository) ListByOwner(ctx context.Context, ownerID uint) ([]models.CartLine, error) {
	lines := []models.CartLine{}
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order(insertionOrder(r.db)).
		Find(&lines).Error
	if err != nil {
		return nil, translateError(fmt.Sprintf("list cart of owner %d", ownerID), err)
	}
	return lines, nil
}

// ClearByOwner deletes all lines of the owner.
func (r *GORMCartRepository) ClearByOwner(ctx context.Context, ownerID uint) error {
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Delete(&models.CartLine{}).Error
	return translateError(fmt.Sprintf("clear cart of owner %d", ownerID), err)
}

// insertionOrder names the physical row identifier of the dialect. The carts
// table has no key of its own and its rows are never updated, so this follows
// insertion order.
func insertionOrder(db *gorm.DB) string {
	if db.Dialector.Name() == "postgres" {
		return "ctid"
	}
	return "rowid"
}
