package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"cookconnect/internal/models"
	"cookconnect/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func titles(summaries []*models.RecipeSummary) []string {
	out := make([]string, len(summaries))
	for i, s := range summaries {
		out[i] = s.Title
	}
	return out
}

func TestRecipeRepository_ListOrdering(t *testing.T) {
	db := testutil.OpenSQLite(t)
	repo := NewRecipeRepository(db)
	ctx := context.Background()

	ana := testutil.CreateUser(t, db, "ana")
	testutil.CreateRecipe(t, db, ana.ID, "Oldest", base.Add(-48*time.Hour))
	tieA := testutil.CreateRecipe(t, db, ana.ID, "Tie A", base)
	tieB := testutil.CreateRecipe(t, db, ana.ID, "Tie B", base)
	testutil.CreateRecipe(t, db, ana.ID, "Newest", base.Add(time.Hour))
	require.Less(t, tieA.ID, tieB.ID)

	got, err := repo.List(ctx, models.RecipeFilter{}, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Newest", "Tie B", "Tie A", "Oldest"}, titles(got))

	page, err := repo.List(ctx, models.RecipeFilter{Limit: 2, Offset: 1}, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Tie B", "Tie A"}, titles(page))
}

func TestRecipeRepository_ListFilters(t *testing.T) {
	db := testutil.OpenSQLite(t)
	repo := NewRecipeRepository(db)
	ctx := context.Background()

	ana := testutil.CreateUser(t, db, "AnaCocina")
	luis := testutil.CreateUser(t, db, "luis")
	cats := testutil.CreateCategories(t, db, "Postres", "Veganas", "Sopas")

	testutil.CreateRecipe(t, db, luis.ID, "Pasta Carbonara", base)
	flan := testutil.CreateRecipe(t, db, luis.ID, "Flan 100% casero", base.Add(-10*24*time.Hour))
	gazpacho := testutil.CreateRecipe(t, db, ana.ID, "Gazpacho", base.Add(-400*24*time.Hour))
	require.NoError(t, db.Model(gazpacho).Update("difficulty", models.DifficultyHard).Error)

	require.NoError(t, repo.AddCategories(ctx, flan.ID, []uint{cats[0].ID, cats[1].ID}))
	require.NoError(t, repo.AddCategories(ctx, gazpacho.ID, []uint{cats[1].ID, cats[2].ID}))

	tests := []struct {
		name   string
		filter models.RecipeFilter
		want   []string
	}{
		{name: "title case-insensitive", filter: models.RecipeFilter{Query: "CARBON"}, want: []string{"Pasta Carbonara"}},
		{name: "author username", filter: models.RecipeFilter{Query: "anacoc"}, want: []string{"Gazpacho"}},
		{name: "percent is literal", filter: models.RecipeFilter{Query: "100%"}, want: []string{"Flan 100% casero"}},
		{name: "underscore is literal", filter: models.RecipeFilter{Query: "_"}, want: []string{}},
		{name: "difficulty", filter: models.RecipeFilter{Difficulty: models.DifficultyHard}, want: []string{"Gazpacho"}},
		{name: "any category without duplicates", filter: models.RecipeFilter{CategoryIDs: []uint{cats[0].ID, cats[1].ID}}, want: []string{"Flan 100% casero", "Gazpacho"}},
		{name: "category and query combine", filter: models.RecipeFilter{CategoryIDs: []uint{cats[1].ID}, Query: "flan"}, want: []string{"Flan 100% casero"}},
		{name: "since", filter: models.RecipeFilter{Since: base.AddDate(0, -1, 0)}, want: []string{"Pasta Carbonara", "Flan 100% casero"}},
		{name: "author", filter: models.RecipeFilter{AuthorID: ana.ID}, want: []string{"Gazpacho"}},
		{name: "no match", filter: models.RecipeFilter{Query: "sushi"}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.List(ctx, tt.filter, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(got))
		})
	}
}

func TestRecipeRepository_SummaryAggregates(t *testing.T) {
	db := testutil.OpenSQLite(t)
	recipes := NewRecipeRepository(db)
	reactions := NewReactionRepository(db)
	comments := NewCommentRepository(db)
	ctx := context.Background()

	ana := testutil.CreateUser(t, db, "ana")
	luis := testutil.CreateUser(t, db, "luis")
	marta := testutil.CreateUser(t, db, "marta")
	recipe := testutil.CreateRecipe(t, db, ana.ID, "Tortilla", base)

	require.NoError(t, recipes.AddImage(ctx, &models.RecipeImage{RecipeID: recipe.ID, ImageURL: "/uploads/second.webp", DisplayOrder: 1}))
	require.NoError(t, recipes.AddImage(ctx, &models.RecipeImage{RecipeID: recipe.ID, ImageURL: "/uploads/cover.webp", DisplayOrder: 0}))
	require.NoError(t, reactions.Insert(ctx, RecipeReactions, luis.ID, recipe.ID, models.ReactionLike))
	require.NoError(t, reactions.Insert(ctx, RecipeReactions, marta.ID, recipe.ID, models.ReactionDislike))
	require.NoError(t, comments.Create(ctx, &models.Comment{RecipeID: recipe.ID, UserID: luis.ID, Content: "Riquísima"}))

	for _, tt := range []struct {
		name   string
		viewer uint
		want   *models.ReactionType
	}{
		{name: "anonymous", viewer: 0, want: nil},
		{name: "liker", viewer: luis.ID, want: models.Liked.Type()},
		{name: "disliker", viewer: marta.ID, want: models.Disliked.Type()},
		{name: "author without reaction", viewer: ana.ID, want: nil},
	} {
		t.Run(tt.name, func(t *testing.T) {
			s, err := recipes.GetSummary(ctx, recipe.ID, tt.viewer)
			require.NoError(t, err)
			assert.Equal(t, "ana", s.Username)
			assert.Equal(t, int64(1), s.LikesCount)
			assert.Equal(t, int64(1), s.CommentsCount)
			require.NotNil(t, s.CoverImage)
			assert.Equal(t, "/uploads/cover.webp", *s.CoverImage)
			assert.Equal(t, tt.want, s.MyReaction)
		})
	}

	images, err := recipes.Images(ctx, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"/uploads/cover.webp", "/uploads/second.webp"}, images)

	_, err = recipes.GetSummary(ctx, 9999, 0)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestRecipeRepository_ChildrenAndReplace(t *testing.T) {
	db := testutil.OpenSQLite(t)
	repo := NewRecipeRepository(db)
	ctx := context.Background()

	ana := testutil.CreateUser(t, db, "ana")
	cats := testutil.CreateCategories(t, db, "Sopas", "Entrantes")
	recipe := testutil.CreateRecipe(t, db, ana.ID, "Caldo", base)

	require.NoError(t, repo.AddIngredients(ctx, recipe.ID, []string{"agua", "sal", "pollo"}))
	require.NoError(t, repo.AddCategories(ctx, recipe.ID, []uint{cats[0].ID, cats[1].ID}))

	items, err := repo.Ingredients(ctx, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"agua", "sal", "pollo"}, items)

	categories, err := repo.Categories(ctx, recipe.ID)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "Entrantes", categories[0].Name)

	require.NoError(t, repo.ReplaceIngredients(ctx, recipe.ID, []string{"caldo"}))
	require.NoError(t, repo.ReplaceCategories(ctx, recipe.ID, nil))

	items, err = repo.Ingredients(ctx, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"caldo"}, items)

	categories, err = repo.Categories(ctx, recipe.ID)
	require.NoError(t, err)
	assert.Empty(t, categories)

	recipe.Title = "Caldo de pollo"
	require.NoError(t, repo.UpdateFields(ctx, recipe))
	stored, err := repo.GetByID(ctx, recipe.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsEdited)
	assert.Equal(t, "Caldo de pollo", stored.Title)

	err = repo.UpdateFields(ctx, &models.Recipe{ID: 9999, Title: "x"})
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestRecipeRepository_DeleteCascade(t *testing.T) {
	db := testutil.OpenSQLite(t)
	repo := NewRecipeRepository(db)
	reactions := NewReactionRepository(db)
	comments := NewCommentRepository(db)
	ctx := context.Background()

	ana := testutil.CreateUser(t, db, "ana")
	luis := testutil.CreateUser(t, db, "luis")
	cats := testutil.CreateCategories(t, db, "Arroces")
	recipe := testutil.CreateRecipe(t, db, ana.ID, "Paella", base)
	other := testutil.CreateRecipe(t, db, ana.ID, "Fideuá", base)

	require.NoError(t, repo.AddIngredients(ctx, recipe.ID, []string{"arroz"}))
	require.NoError(t, repo.AddCategories(ctx, recipe.ID, []uint{cats[0].ID}))
	require.NoError(t, repo.AddImage(ctx, &models.RecipeImage{RecipeID: recipe.ID, ImageURL: "/uploads/p.webp"}))
	require.NoError(t, reactions.Insert(ctx, RecipeReactions, luis.ID, recipe.ID, models.ReactionLike))
	comment := &models.Comment{RecipeID: recipe.ID, UserID: luis.ID, Content: "Top"}
	require.NoError(t, comments.Create(ctx, comment))
	require.NoError(t, reactions.Insert(ctx, CommentReactions, ana.ID, comment.ID, models.ReactionLike))
	require.NoError(t, repo.AddIngredients(ctx, other.ID, []string{"fideos"}))

	require.NoError(t, repo.Transaction(ctx, func(tx RecipeRepository) error {
		return tx.Delete(ctx, recipe.ID)
	}))

	for _, table := range []string{"recipe_ingredients", "recipe_categories", "recipe_images", "recipe_reactions", "comments"} {
		assert.Zero(t, testutil.CountRows(t, db, table, "recipe_id = ?", recipe.ID), table)
	}
	assert.Zero(t, testutil.CountRows(t, db, "comment_reactions", "comment_id = ?", comment.ID))
	assert.Zero(t, testutil.CountRows(t, db, "recipes", "id = ?", recipe.ID))
	assert.Equal(t, int64(1), testutil.CountRows(t, db, "recipe_ingredients", "recipe_id = ?", other.ID))

	err := repo.Delete(ctx, recipe.ID)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestRecipeRepository_TransactionRollback(t *testing.T) {
	db := testutil.OpenSQLite(t)
	repo := NewRecipeRepository(db)
	ctx := context.Background()
	ana := testutil.CreateUser(t, db, "ana")

	boom := errors.New("boom")
	err := repo.Transaction(ctx, func(tx RecipeRepository) error {
		recipe := &models.Recipe{UserID: ana.ID, Title: "Temporal", Difficulty: models.DifficultyEasy}
		if err := tx.Create(ctx, recipe); err != nil {
			return err
		}
		if err := tx.AddIngredients(ctx, recipe.ID, []string{"huevo"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, testutil.CountRows(t, db, "recipes", ""))
	assert.Zero(t, testutil.CountRows(t, db, "recipe_ingredients", ""))
}

func TestRecipeRepository_GetByIDForUpdateLocks(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRecipeRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "recipes" WHERE "recipes"."id" = \$1 ORDER BY "recipes"."id" LIMIT \$2 FOR UPDATE`).
		WithArgs(5, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "title"}).AddRow(5, 2, "Salmorejo"))

	recipe, err := repo.GetByIDForUpdate(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, uint(2), recipe.UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecipeRepository_ListStorageError(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRecipeRepository(db)

	mock.ExpectQuery(`SELECT recipes.id`).WillReturnError(errors.New("connection refused"))

	_, err := repo.List(context.Background(), models.RecipeFilter{}, 0)
	assert.True(t, models.HasCode(err, models.CodeStorageUnavailable))
	assert.NoError(t, mock.ExpectationsWereMet())

	mock.ExpectQuery(`SELECT \* FROM "recipes"`).WillReturnError(gorm.ErrRecordNotFound)
	_, err = repo.GetByID(context.Background(), 3)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}
