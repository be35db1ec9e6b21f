package repository

import (
	"context"

	"cookconnect/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CategoryRepository reads the category reference data.
type CategoryRepository interface {
	List(ctx context.Context) ([]models.Category, error)
	CountByIDs(ctx context.Context, ids []uint) (int64, error)
	EnsureNames(ctx context.Context, names []string) error
}

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new CategoryRepository
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) List(ctx context.Context) ([]models.Category, error) {
	categories := make([]models.Category, 0)
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, classify(err, "Category", nil)
	}
	return categories, nil
}

// CountByIDs counts how many of ids exist; callers pass a deduplicated set.
func (r *categoryRepository) CountByIDs(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Category{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
		return 0, classify(err, "Category", ids)
	}
	return count, nil
}

// EnsureNames inserts the missing names and leaves existing rows alone.
func (r *categoryRepository) EnsureNames(ctx context.Context, names []string) error {
	if len(names) == 0 {
		return nil
	}
	rows := make([]models.Category, len(names))
	for i, name := range names {
		rows[i] = models.Category{Name: name}
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&rows).Error
	if err != nil {
		return classify(err, "Category", nil)
	}
	return nil
}
