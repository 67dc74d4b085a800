package repositories

import (
	"context"
	"fmt"

	"belanja/internal/models"

	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// GetAll retrieves all products ordered by ID.
func (r *GORMProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	products := []models.Product{}
	if err := r.db.WithContext(ctx).Order("id").Find(&products).Error; err != nil {
		return nil, translateError("get all products", err)
	}
	return products, nil
}

// GetByID retrieves a single product by its ID.
func (r *GORMProductRepository) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, translateError(fmt.Sprintf("get product by ID %d", id), err)
	}
	return &product, nil
}

// Create creates a new product.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	err := r.db.WithContext(ctx).Create(product).Error
	return translateError("create product", err)
}

// Count returns the number of products in the catalog.
func (r *GORMProductRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&n).Error; err != nil {
		return 0, translateError("count products", err)
	}
	return n, nil
}
