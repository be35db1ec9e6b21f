package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cookconnect/internal/blobstore"
	"cookconnect/internal/identity"
	"cookconnect/internal/models"
	"cookconnect/internal/observability"
	"cookconnect/internal/repository"
	"cookconnect/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

// ImageUpload is one image as received from the client.
type ImageUpload struct {
	Data        []byte
	ContentType string
}

// RecipeInput carries the editable fields of a recipe.
type RecipeInput struct {
	Title           string
	Description     string
	PrepTimeMinutes int
	Difficulty      string
	Ingredients     []string
	CategoryIDs     []uint
}

// CreateRecipeInput adds the images that can only be attached at creation.
type CreateRecipeInput struct {
	RecipeInput
	Images []ImageUpload
}

// validRecipe is RecipeInput after validation and normalization.
type validRecipe struct {
	title       string
	description string
	prepTime    int
	difficulty  models.Difficulty
	ingredients []string
	categoryIDs []uint
}

// RecipeService runs recipe create, update and delete as single transactions.
type RecipeService struct {
	recipes    repository.RecipeRepository
	categories repository.CategoryRepository
	blobs      blobstore.Store
}

func NewRecipeService(
	recipes repository.RecipeRepository,
	categories repository.CategoryRepository,
	blobs blobstore.Store,
) *RecipeService {
	return &RecipeService{recipes: recipes, categories: categories, blobs: blobs}
}

func (s *RecipeService) validate(ctx context.Context, in RecipeInput) (*validRecipe, error) {
	v := &validRecipe{
		title:       sanitizeText(in.Title),
		description: sanitizeText(in.Description),
		prepTime:    in.PrepTimeMinutes,
		ingredients: validation.NormalizeIngredients(sanitizeAll(in.Ingredients)),
		categoryIDs: validation.DedupeIDs(in.CategoryIDs),
	}

	if err := validation.ValidateTitle(v.title); err != nil {
		return nil, models.NewFieldValidationError("title", err.Error())
	}
	if len(v.description) > validation.MaxDescriptionLength {
		return nil, models.NewFieldValidationError("description",
			fmt.Sprintf("Description too long (max %d characters)", validation.MaxDescriptionLength))
	}
	if err := validation.ValidatePrepTime(v.prepTime); err != nil {
		return nil, models.NewFieldValidationError("prep_time_minutes", err.Error())
	}
	difficulty, ok := models.ParseDifficulty(in.Difficulty)
	if !ok {
		return nil, models.NewFieldValidationError("difficulty", "Difficulty must be one of Fácil, Media, Difícil")
	}
	v.difficulty = difficulty
	if err := validation.ValidateIngredients(v.ingredients); err != nil {
		return nil, models.NewFieldValidationError("ingredients", err.Error())
	}

	if len(v.categoryIDs) > 0 {
		n, err := s.categories.CountByIDs(ctx, v.categoryIDs)
		if err != nil {
			return nil, err
		}
		if n != int64(len(v.categoryIDs)) {
			return nil, models.NewFieldValidationError("categories", "Unknown category")
		}
	}
	return v, nil
}

// Create stores a recipe with its ingredients, categories and images. Nothing
// is committed unless every step succeeds. Blobs stored before a failure stay
// on the blob store and are reported as orphans.
func (s *RecipeService) Create(ctx context.Context, viewer identity.Viewer, in CreateRecipeInput) (id uint, err error) {
	ctx, span := observability.StartSpan(ctx, "RecipeService", "Create",
		attribute.Int("recipe.images", len(in.Images)))
	defer func() {
		observability.RecordMutation("create", err)
		observability.EndSpan(span, err)
	}()

	if !viewer.Authenticated() {
		return 0, models.NewUnauthenticatedError("Authentication required")
	}
	if len(in.Images) > validation.MaxRecipeImages {
		return 0, models.NewFieldValidationError("recipeImages",
			fmt.Sprintf("At most %d images per recipe", validation.MaxRecipeImages))
	}
	v, err := s.validate(ctx, in.RecipeInput)
	if err != nil {
		return 0, err
	}

	var (
		stored    []string
		attempted uint
	)
	err = s.recipes.Transaction(ctx, func(tx repository.RecipeRepository) error {
		recipe := &models.Recipe{
			UserID:          viewer.UserID(),
			Title:           v.title,
			Description:     v.description,
			PrepTimeMinutes: v.prepTime,
			Difficulty:      v.difficulty,
		}
		if err := tx.Create(ctx, recipe); err != nil {
			return err
		}
		attempted = recipe.ID
		if err := tx.AddIngredients(ctx, recipe.ID, v.ingredients); err != nil {
			return err
		}
		if err := tx.AddCategories(ctx, recipe.ID, v.categoryIDs); err != nil {
			return err
		}
		for i, img := range in.Images {
			url, err := s.blobs.Store(ctx, img.Data, img.ContentType)
			if err != nil {
				return blobError(err)
			}
			stored = append(stored, url)
			if err := tx.AddImage(ctx, &models.RecipeImage{
				RecipeID:     recipe.ID,
				ImageURL:     url,
				DisplayOrder: i,
			}); err != nil {
				return err
			}
		}
		id = recipe.ID
		return nil
	})
	if err != nil {
		if len(stored) > 0 {
			observability.OrphanedBlobs.WithLabelValues("rollback").Add(float64(len(stored)))
			// The recipe id was assigned inside the rolled back transaction.
			observability.GlobalLogger.WarnContext(ctx, "recipe create rolled back after storing images",
				slog.Uint64("user_id", uint64(viewer.UserID())),
				slog.Uint64("recipe_id", uint64(attempted)),
				slog.Any("orphaned_urls", stored),
				slog.String("error", err.Error()))
		}
		return 0, err
	}
	return id, nil
}

// Update replaces the scalar fields, ingredient list and category set of a
// recipe owned by viewer, or of any recipe when viewer is an admin.
func (s *RecipeService) Update(ctx context.Context, viewer identity.Viewer, id uint, in RecipeInput) (err error) {
	ctx, span := observability.StartSpan(ctx, "RecipeService", "Update", attribute.Int("recipe.id", int(id)))
	defer func() {
		observability.RecordMutation("update", err)
		observability.EndSpan(span, err)
	}()

	if !viewer.Authenticated() {
		return models.NewUnauthenticatedError("Authentication required")
	}
	v, err := s.validate(ctx, in)
	if err != nil {
		return err
	}

	return s.recipes.Transaction(ctx, func(tx repository.RecipeRepository) error {
		recipe, err := tx.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !viewer.CanModify(recipe.UserID) {
			return models.NewForbiddenError("You can only edit your own recipes")
		}

		recipe.Title = v.title
		recipe.Description = v.description
		recipe.PrepTimeMinutes = v.prepTime
		recipe.Difficulty = v.difficulty
		if err := tx.UpdateFields(ctx, recipe); err != nil {
			return err
		}
		if err := tx.ReplaceIngredients(ctx, id, v.ingredients); err != nil {
			return err
		}
		return tx.ReplaceCategories(ctx, id, v.categoryIDs)
	})
}

// Delete removes a recipe and all its dependent rows. Image blobs are removed
// after the commit; failures there only leave orphans behind.
func (s *RecipeService) Delete(ctx context.Context, viewer identity.Viewer, id uint) (err error) {
	ctx, span := observability.StartSpan(ctx, "RecipeService", "Delete", attribute.Int("recipe.id", int(id)))
	defer func() {
		observability.RecordMutation("delete", err)
		observability.EndSpan(span, err)
	}()

	if !viewer.Authenticated() {
		return models.NewUnauthenticatedError("Authentication required")
	}

	var images []string
	err = s.recipes.Transaction(ctx, func(tx repository.RecipeRepository) error {
		recipe, err := tx.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !viewer.CanModify(recipe.UserID) {
			return models.NewForbiddenError("You can only delete your own recipes")
		}
		if images, err = tx.Images(ctx, id); err != nil {
			return err
		}
		return tx.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	for _, url := range images {
		if delErr := s.blobs.Delete(ctx, url); delErr != nil {
			observability.OrphanedBlobs.WithLabelValues("delete").Inc()
			observability.GlobalLogger.WarnContext(ctx, "failed to remove recipe image",
				slog.Uint64("recipe_id", uint64(id)),
				slog.String("url", url),
				slog.String("error", delErr.Error()))
		}
	}
	return nil
}

// blobError keeps validation failures from the blob store and reports any
// other failure as a transient storage error.
func blobError(err error) error {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return models.NewStorageError(err)
}
