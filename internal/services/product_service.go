package services

import (
	"context"
	"fmt"
	"log"

	"belanja/internal/models"
	"belanja/internal/repositories"
)

// ProductService handles business logic related to the catalog.
type ProductService struct {
	repo repositories.ProductRepository
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository) *ProductService {
	return &ProductService{
		repo: repo,
	}
}

// ListProducts retrieves all products.
func (s *ProductService) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.repo.GetAll(ctx)
}

// SeedProducts inserts products only when the catalog is empty and reports how
// many were inserted.
func (s *ProductService) SeedProducts(ctx context.Context, products []models.Product) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to check catalog: %w", err)
	}
	if n > 0 {
		return 0, nil
	}

	seeded := 0
	for i := range products {
		if products[i].Price < 0 {
			return seeded, fmt.Errorf("product %q has negative price", products[i].Name)
		}
		if err := s.repo.Create(ctx, &products[i]); err != nil {
			return seeded, fmt.Errorf("failed to seed product %s: %w", products[i].Name, err)
		}
		log.Printf("Seeded product: %s (ID: %d)", products[i].Name, products[i].ID)
		seeded++
	}
	return seeded, nil
}
