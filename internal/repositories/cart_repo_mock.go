package repositories

import (
	"context"
	"fmt"
	"sync"

	"belanja/internal/models"
)

// MockCartRepository is an in-memory implementation of CartRepository. When
// constructed with user and product repositories it checks the same references
// the SQL foreign keys do.
type MockCartRepository struct {
	lines    []models.CartLine
	users    UserRepository
	products ProductRepository
	mu       sync.RWMutex
}

// NewMockCartRepository creates a new instance of MockCartRepository. Either
// repository may be nil to skip that reference check.
func NewMockCartRepository(users UserRepository, products ProductRepository) *MockCartRepository {
	return &MockCartRepository{
		users:    users,
		products: products,
	}
}

// Add appends a cart line.
func (r *MockCartRepository) Add(ctx context.Context, line *models.CartLine) error {
	if r.users != nil {
		if _, err := r.users.GetByID(ctx, line.OwnerID); err != nil {
			return fmt.Errorf("add cart line: %w: owner %d", ErrConstraintViolation, line.OwnerID)
		}
	}
	if r.products != nil {
		if _, err := r.products.GetByID(ctx, line.ProductID); err != nil {
			return fmt.Errorf("add cart line: %w: product %d", ErrConstraintViolation, line.ProductID)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, *line)
	return nil
}

// ListByOwner returns the owner's lines in insertion order.
func (r *MockCartRepository) ListByOwner(_ context.Context, ownerID uint) ([]models.CartLine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lines := []models.CartLine{}
	for _, l := range r.lines {
		if l.OwnerID == ownerID {
			lines = append(lines, l)
		}
	}
	return lines, nil
}

// ClearByOwner drops the owner's lines.
func (r *MockCartRepository) ClearByOwner(_ context.Context, ownerID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.lines[:0]
	for _, l := range r.lines {
		if l.OwnerID != ownerID {
			kept = append(kept, l)
		}
	}
	r.lines = kept
	return nil
}
