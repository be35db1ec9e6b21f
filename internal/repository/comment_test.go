package repository

import (
	"context"
	"testing"
	"time"

	"cookconnect/internal/models"
	"cookconnect/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentRepository_ViewsAndDelete(t *testing.T) {
	db := testutil.OpenSQLite(t)
	repo := NewCommentRepository(db)
	reactions := NewReactionRepository(db)
	ctx := context.Background()

	ana := testutil.CreateUser(t, db, "ana")
	luis := testutil.CreateUser(t, db, "luis")
	recipe := testutil.CreateRecipe(t, db, ana.ID, "Churros", base)

	older := &models.Comment{RecipeID: recipe.ID, UserID: luis.ID, Content: "primero", CreatedAt: base}
	newer := &models.Comment{RecipeID: recipe.ID, UserID: ana.ID, Content: "segundo", CreatedAt: base.Add(time.Minute)}
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))
	require.NoError(t, reactions.Insert(ctx, CommentReactions, ana.ID, older.ID, models.ReactionLike))

	views, err := repo.ListViews(ctx, recipe.ID, ana.ID)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "segundo", views[0].Content)
	assert.Equal(t, "luis", views[1].Username)
	assert.Equal(t, int64(1), views[1].LikesCount)
	require.NotNil(t, views[1].MyReaction)
	assert.Equal(t, models.ReactionLike, *views[1].MyReaction)

	anonymous, err := repo.GetView(ctx, older.ID, 0)
	require.NoError(t, err)
	assert.Nil(t, anonymous.MyReaction)

	require.NoError(t, repo.UpdateContent(ctx, older.ID, "editado"))
	stored, err := repo.GetByID(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, "editado", stored.Content)

	require.NoError(t, repo.Delete(ctx, older.ID))
	assert.Zero(t, testutil.CountRows(t, db, "comment_reactions", "comment_id = ?", older.ID))

	_, err = repo.GetByID(ctx, older.ID)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
	assert.True(t, models.HasCode(repo.Delete(ctx, older.ID), models.CodeNotFound))
	assert.True(t, models.HasCode(repo.UpdateContent(ctx, older.ID, "x"), models.CodeNotFound))
}

func TestCategoryRepository(t *testing.T) {
	db := testutil.OpenSQLite(t)
	repo := NewCategoryRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.EnsureNames(ctx, []string{"Sopas", "Postres"}))
	require.NoError(t, repo.EnsureNames(ctx, []string{"Postres", "Arroces"}))

	categories, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 3)
	assert.Equal(t, "Arroces", categories[0].Name)

	n, err := repo.CountByIDs(ctx, []uint{categories[0].ID, categories[1].ID, 999})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
