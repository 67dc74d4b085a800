package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"belanja/internal/models"
)

// MockProductRepository is an in-memory implementation of ProductRepository.
type MockProductRepository struct {
	products map[uint]models.Product
	nextID   uint
	mu       sync.RWMutex
}

// NewMockProductRepository creates a new instance of MockProductRepository.
func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		products: make(map[uint]models.Product),
	}
}

// GetAll returns all products ordered by ID.
func (r *MockProductRepository) GetAll(_ context.Context) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		productList = append(productList, p)
	}
	sort.Slice(productList, func(i, j int) bool { return productList[i].ID < productList[j].ID })
	return productList, nil
}

// GetByID returns a product by its ID.
func (r *MockProductRepository) GetByID(_ context.Context, id uint) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("get product by ID %d: %w", id, ErrRecordNotFound)
	}
	return &product, nil
}

// Create adds a new product. A zero ID is assigned the next free ID.
func (r *MockProductRepository) Create(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == 0 {
		r.nextID++
		product.ID = r.nextID
	} else if _, ok := r.products[product.ID]; ok {
		return fmt.Errorf("create product: %w: ID %d exists", ErrConstraintViolation, product.ID)
	} else if product.ID > r.nextID {
		r.nextID = product.ID
	}
	r.products[product.ID] = *product
	return nil
}

// Count returns the number of stored products.
func (r *MockProductRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.products)), nil
}
