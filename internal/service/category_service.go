package service

import (
	"context"

	"cookconnect/internal/cache"
	"cookconnect/internal/models"
	"cookconnect/internal/repository"
)

// CategoryService serves the category reference data through Redis.
type CategoryService struct {
	categories repository.CategoryRepository
}

func NewCategoryService(categories repository.CategoryRepository) *CategoryService {
	return &CategoryService{categories: categories}
}

// List returns every category ordered by name. Redis is best-effort.
func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := cache.CacheAside(ctx, cache.CategoriesKey, &categories, cache.CategoriesTTL, func() error {
		var err error
		categories, err = s.categories.List(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// Seed inserts missing category names and drops the cached list.
func (s *CategoryService) Seed(ctx context.Context, names []string) error {
	if err := s.categories.EnsureNames(ctx, names); err != nil {
		return err
	}
	cache.InvalidateCategories(ctx)
	return nil
}
