package repository

import (
	"context"

	"cookconnect/internal/models"
	"cookconnect/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecipeRepository defines data access for recipes and their dependent rows.
type RecipeRepository interface {
	List(ctx context.Context, filter models.RecipeFilter, viewerID uint) ([]*models.RecipeSummary, error)
	GetSummary(ctx context.Context, id, viewerID uint) (*models.RecipeSummary, error)
	Ingredients(ctx context.Context, recipeID uint) ([]string, error)
	Categories(ctx context.Context, recipeID uint) ([]models.Category, error)
	Images(ctx context.Context, recipeID uint) ([]string, error)

	GetByID(ctx context.Context, id uint) (*models.Recipe, error)
	GetByIDForUpdate(ctx context.Context, id uint) (*models.Recipe, error)
	Create(ctx context.Context, recipe *models.Recipe) error
	AddIngredients(ctx context.Context, recipeID uint, items []string) error
	AddCategories(ctx context.Context, recipeID uint, categoryIDs []uint) error
	AddImage(ctx context.Context, image *models.RecipeImage) error
	UpdateFields(ctx context.Context, recipe *models.Recipe) error
	ReplaceIngredients(ctx context.Context, recipeID uint, items []string) error
	ReplaceCategories(ctx context.Context, recipeID uint, categoryIDs []uint) error
	Delete(ctx context.Context, id uint) error

	// Transaction runs fn against a repository bound to one transaction.
	// Returning an error from fn rolls every statement back.
	Transaction(ctx context.Context, fn func(tx RecipeRepository) error) error
}

type recipeRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewRecipeRepository creates a new RecipeRepository
func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db, log: observability.NewRepoLogger("recipes")}
}

func (r *recipeRepository) Transaction(ctx context.Context, fn func(tx RecipeRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&recipeRepository{db: tx, log: r.log})
	})
}

func (r *recipeRepository) List(ctx context.Context, filter models.RecipeFilter, viewerID uint) ([]*models.RecipeSummary, error) {
	defer observability.TrackQuery("list", "recipes")()

	summaries := make([]*models.RecipeSummary, 0)
	if err := NewRecipeQuery(r.db.WithContext(ctx), viewerID).Filtered(filter).Scan(&summaries).Error; err != nil {
		r.log.LogError(ctx, err, "list")
		return nil, classify(err, "Recipe", nil)
	}
	return summaries, nil
}

func (r *recipeRepository) GetSummary(ctx context.Context, id, viewerID uint) (*models.RecipeSummary, error) {
	defer observability.TrackQuery("get_summary", "recipes")()

	var rows []*models.RecipeSummary
	if err := NewRecipeQuery(r.db.WithContext(ctx), viewerID).ByID(id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, classify(err, "Recipe", id)
	}
	if len(rows) == 0 {
		return nil, models.NewNotFoundError("Recipe", id)
	}
	return rows[0], nil
}

func (r *recipeRepository) Ingredients(ctx context.Context, recipeID uint) ([]string, error) {
	items := make([]string, 0)
	err := r.db.WithContext(ctx).Model(&models.RecipeIngredient{}).
		Where("recipe_id = ?", recipeID).
		Order("id ASC").
		Pluck("item", &items).Error
	if err != nil {
		return nil, classify(err, "Recipe", recipeID)
	}
	return items, nil
}

func (r *recipeRepository) Categories(ctx context.Context, recipeID uint) ([]models.Category, error) {
	categories := make([]models.Category, 0)
	err := r.db.WithContext(ctx).
		Joins("JOIN recipe_categories ON recipe_categories.category_id = categories.id").
		Where("recipe_categories.recipe_id = ?", recipeID).
		Order("categories.name ASC").
		Find(&categories).Error
	if err != nil {
		return nil, classify(err, "Recipe", recipeID)
	}
	return categories, nil
}

func (r *recipeRepository) Images(ctx context.Context, recipeID uint) ([]string, error) {
	urls := make([]string, 0)
	err := r.db.WithContext(ctx).Model(&models.RecipeImage{}).
		Where("recipe_id = ?", recipeID).
		Order("display_order ASC, id ASC").
		Pluck("image_url", &urls).Error
	if err != nil {
		return nil, classify(err, "Recipe", recipeID)
	}
	return urls, nil
}

func (r *recipeRepository) GetByID(ctx context.Context, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := r.db.WithContext(ctx).First(&recipe, id).Error; err != nil {
		return nil, classify(err, "Recipe", id)
	}
	return &recipe, nil
}

// GetByIDForUpdate locks the row on PostgreSQL. SQLite ignores the locking
// clause and serializes writers instead.
func (r *recipeRepository) GetByIDForUpdate(ctx context.Context, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		First(&recipe, id).Error
	if err != nil {
		return nil, classify(err, "Recipe", id)
	}
	return &recipe, nil
}

func (r *recipeRepository) Create(ctx context.Context, recipe *models.Recipe) error {
	defer observability.TrackQuery("create", "recipes")()

	if err := r.db.WithContext(ctx).Create(recipe).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return classify(err, "Recipe", nil)
	}
	r.log.LogCreate(ctx, map[string]any{"recipe_id": recipe.ID, "user_id": recipe.UserID})
	return nil
}

func (r *recipeRepository) AddIngredients(ctx context.Context, recipeID uint, items []string) error {
	if len(items) == 0 {
		return nil
	}
	rows := make([]models.RecipeIngredient, len(items))
	for i, item := range items {
		rows[i] = models.RecipeIngredient{RecipeID: recipeID, Item: item}
	}
	if err := r.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return classify(err, "Recipe", recipeID)
	}
	return nil
}

func (r *recipeRepository) AddCategories(ctx context.Context, recipeID uint, categoryIDs []uint) error {
	if len(categoryIDs) == 0 {
		return nil
	}
	rows := make([]models.RecipeCategory, len(categoryIDs))
	for i, id := range categoryIDs {
		rows[i] = models.RecipeCategory{RecipeID: recipeID, CategoryID: id}
	}
	if err := r.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return classify(err, "Category", categoryIDs)
	}
	return nil
}

func (r *recipeRepository) AddImage(ctx context.Context, image *models.RecipeImage) error {
	if err := r.db.WithContext(ctx).Create(image).Error; err != nil {
		return classify(err, "Recipe", image.RecipeID)
	}
	return nil
}

// UpdateFields writes the scalar columns of recipe and marks it edited.
func (r *recipeRepository) UpdateFields(ctx context.Context, recipe *models.Recipe) error {
	defer observability.TrackQuery("update", "recipes")()

	res := r.db.WithContext(ctx).Model(&models.Recipe{ID: recipe.ID}).
		Updates(map[string]interface{}{
			"title":             recipe.Title,
			"description":       recipe.Description,
			"prep_time_minutes": recipe.PrepTimeMinutes,
			"difficulty":        recipe.Difficulty,
			"is_edited":         true,
		})
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "update")
		return classify(res.Error, "Recipe", recipe.ID)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Recipe", recipe.ID)
	}
	recipe.IsEdited = true
	r.log.LogUpdate(ctx, map[string]any{"recipe_id": recipe.ID})
	return nil
}

func (r *recipeRepository) ReplaceIngredients(ctx context.Context, recipeID uint, items []string) error {
	if err := r.db.WithContext(ctx).Where("recipe_id = ?", recipeID).Delete(&models.RecipeIngredient{}).Error; err != nil {
		return classify(err, "Recipe", recipeID)
	}
	return r.AddIngredients(ctx, recipeID, items)
}

func (r *recipeRepository) ReplaceCategories(ctx context.Context, recipeID uint, categoryIDs []uint) error {
	if err := r.db.WithContext(ctx).Where("recipe_id = ?", recipeID).Delete(&models.RecipeCategory{}).Error; err != nil {
		return classify(err, "Recipe", recipeID)
	}
	return r.AddCategories(ctx, recipeID, categoryIDs)
}

// Delete removes the recipe and every dependent row, children first. Call it
// inside Transaction so a partial cascade cannot be committed.
func (r *recipeRepository) Delete(ctx context.Context, id uint) error {
	defer observability.TrackQuery("delete", "recipes")()

	db := r.db.WithContext(ctx)
	steps := []func() error{
		func() error {
			return db.Exec(`DELETE FROM comment_reactions
				WHERE comment_id IN (SELECT id FROM comments WHERE recipe_id = ?)`, id).Error
		},
		func() error { return db.Where("recipe_id = ?", id).Delete(&models.Comment{}).Error },
		func() error { return db.Where("recipe_id = ?", id).Delete(&models.RecipeReaction{}).Error },
		func() error { return db.Where("recipe_id = ?", id).Delete(&models.RecipeImage{}).Error },
		func() error { return db.Where("recipe_id = ?", id).Delete(&models.RecipeCategory{}).Error },
		func() error { return db.Where("recipe_id = ?", id).Delete(&models.RecipeIngredient{}).Error },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			r.log.LogError(ctx, err, "delete")
			return classify(err, "Recipe", id)
		}
	}

	res := db.Delete(&models.Recipe{}, id)
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "delete")
		return classify(res.Error, "Recipe", id)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Recipe", id)
	}
	r.log.LogDelete(ctx, map[string]any{"recipe_id": id})
	return nil
}
