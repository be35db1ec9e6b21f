package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"cookconnect/internal/identity"
	"cookconnect/internal/models"
	"cookconnect/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn        func(context.Context, *models.Comment) error
	getByIDFn       func(context.Context, uint) (*models.Comment, error)
	updateContentFn func(context.Context, uint, string) error
	deleteFn        func(context.Context, uint) error
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) UpdateContent(ctx context.Context, id uint, content string) error {
	return s.updateContentFn(ctx, id, content)
}
func (s *commentRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *commentRepoStub) ListViews(_ context.Context, _, _ uint) ([]*models.CommentView, error) {
	return nil, nil
}
func (s *commentRepoStub) GetView(ctx context.Context, id, _ uint) (*models.CommentView, error) {
	c, err := s.getByIDFn(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.CommentView{ID: c.ID, RecipeID: c.RecipeID, UserID: c.UserID, Content: c.Content}, nil
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn:        func(_ context.Context, _ *models.Comment) error { return nil },
		getByIDFn:       func(_ context.Context, _ uint) (*models.Comment, error) { return &models.Comment{}, nil },
		updateContentFn: func(_ context.Context, _ uint, _ string) error { return nil },
		deleteFn:        func(_ context.Context, _ uint) error { return nil },
	}
}

// recipeLookupStub satisfies repository.RecipeRepository for the only call
// CommentService makes.
type recipeLookupStub struct {
	repository.RecipeRepository
	getByIDFn func(context.Context, uint) (*models.Recipe, error)
}

func (s *recipeLookupStub) GetByID(ctx context.Context, id uint) (*models.Recipe, error) {
	return s.getByIDFn(ctx, id)
}

func existingRecipe() *recipeLookupStub {
	return &recipeLookupStub{getByIDFn: func(_ context.Context, id uint) (*models.Recipe, error) {
		return &models.Recipe{ID: id, UserID: 99}, nil
	}}
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, models.HasCode(err, code), "want %s, got %v", code, err)
}

func TestCommentService_CreateComment_Validation(t *testing.T) {
	t.Parallel()

	svc := NewCommentService(noopCommentRepo(), existingRecipe())
	ctx := context.Background()
	author := identity.Verified(1, models.RoleUser)

	t.Run("anonymous", func(t *testing.T) {
		t.Parallel()
		_, err := svc.CreateComment(ctx, identity.Anonymous(), 1, "hola")
		assertCode(t, err, models.CodeUnauthenticated)
	})

	t.Run("blank content", func(t *testing.T) {
		t.Parallel()
		_, err := svc.CreateComment(ctx, author, 1, "   ")
		assertCode(t, err, models.CodeValidation)
	})

	t.Run("only markup", func(t *testing.T) {
		t.Parallel()
		_, err := svc.CreateComment(ctx, author, 1, "<script></script>")
		assertCode(t, err, models.CodeValidation)
	})

	t.Run("content too long", func(t *testing.T) {
		t.Parallel()
		_, err := svc.CreateComment(ctx, author, 1, strings.Repeat("x", 10001))
		assertCode(t, err, models.CodeValidation)
	})

	t.Run("recipe not found propagates", func(t *testing.T) {
		t.Parallel()
		recipes := &recipeLookupStub{getByIDFn: func(_ context.Context, id uint) (*models.Recipe, error) {
			return nil, models.NewNotFoundError("Recipe", id)
		}}
		_, err := NewCommentService(noopCommentRepo(), recipes).CreateComment(ctx, author, 99, "hola")
		assertCode(t, err, models.CodeNotFound)
	})
}

func TestCommentService_CreateComment_Sanitizes(t *testing.T) {
	t.Parallel()

	var stored *models.Comment
	commentRepo := noopCommentRepo()
	commentRepo.createFn = func(_ context.Context, c *models.Comment) error {
		c.ID = 42
		stored = c
		return nil
	}
	commentRepo.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
		return stored, nil
	}

	svc := NewCommentService(commentRepo, existingRecipe())
	view, err := svc.CreateComment(context.Background(), identity.Verified(1, models.RoleUser), 5,
		`<b>Buenísima</b> & fácil<img src=x onerror=alert(1)>`)
	require.NoError(t, err)
	assert.Equal(t, uint(42), view.ID)
	assert.Equal(t, "Buenísima & fácil", view.Content)
	assert.Equal(t, uint(5), stored.RecipeID)
	assert.Equal(t, uint(1), stored.UserID)
}

func TestCommentService_UpdateComment_Ownership(t *testing.T) {
	t.Parallel()

	ownedBy := func(userID uint) *commentRepoStub {
		repo := noopCommentRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id, UserID: userID, Content: "old"}, nil
		}
		return repo
	}

	t.Run("non-owner cannot update", func(t *testing.T) {
		t.Parallel()
		svc := NewCommentService(ownedBy(10), existingRecipe())
		_, err := svc.UpdateComment(context.Background(), identity.Verified(1, models.RoleUser), 1, "new")
		assertCode(t, err, models.CodeForbidden)
	})

	t.Run("admin cannot update someone else's comment", func(t *testing.T) {
		t.Parallel()
		svc := NewCommentService(ownedBy(10), existingRecipe())
		_, err := svc.UpdateComment(context.Background(), identity.Verified(1, models.RoleAdmin), 1, "new")
		assertCode(t, err, models.CodeForbidden)
	})

	t.Run("missing comment is not found", func(t *testing.T) {
		t.Parallel()
		repo := noopCommentRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
			return nil, models.NewNotFoundError("Comment", id)
		}
		_, err := NewCommentService(repo, existingRecipe()).UpdateComment(context.Background(), identity.Verified(1, models.RoleUser), 1, "new")
		assertCode(t, err, models.CodeNotFound)
	})

	t.Run("empty content is invalid", func(t *testing.T) {
		t.Parallel()
		svc := NewCommentService(ownedBy(1), existingRecipe())
		_, err := svc.UpdateComment(context.Background(), identity.Verified(1, models.RoleUser), 1, "")
		assertCode(t, err, models.CodeValidation)
	})

	t.Run("owner can update content", func(t *testing.T) {
		t.Parallel()
		var written string
		repo := ownedBy(1)
		repo.updateContentFn = func(_ context.Context, _ uint, content string) error {
			written = content
			return nil
		}
		svc := NewCommentService(repo, existingRecipe())
		_, err := svc.UpdateComment(context.Background(), identity.Verified(1, models.RoleUser), 1, " updated ")
		require.NoError(t, err)
		assert.Equal(t, "updated", written)
	})
}

func TestCommentService_DeleteComment_Ownership(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		viewer   identity.Viewer
		wantCode string
	}{
		{name: "owner can delete", viewer: identity.Verified(10, models.RoleUser)},
		{name: "admin can delete another user's comment", viewer: identity.Verified(1, models.RoleAdmin)},
		{name: "other user is forbidden", viewer: identity.Verified(1, models.RoleUser), wantCode: models.CodeForbidden},
		{name: "anonymous is unauthenticated", viewer: identity.Anonymous(), wantCode: models.CodeUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			deleted := false
			repo := noopCommentRepo()
			repo.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
				return &models.Comment{ID: id, UserID: 10}, nil
			}
			repo.deleteFn = func(_ context.Context, _ uint) error {
				deleted = true
				return nil
			}

			err := NewCommentService(repo, existingRecipe()).DeleteComment(context.Background(), tt.viewer, 1)
			if tt.wantCode != "" {
				assertCode(t, err, tt.wantCode)
				assert.False(t, deleted)
				return
			}
			require.NoError(t, err)
			assert.True(t, deleted)
		})
	}

	t.Run("repository error propagates", func(t *testing.T) {
		t.Parallel()
		repoErr := errors.New("disk full")
		repo := noopCommentRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id, UserID: 10}, nil
		}
		repo.deleteFn = func(_ context.Context, _ uint) error { return repoErr }
		err := NewCommentService(repo, existingRecipe()).DeleteComment(context.Background(), identity.Verified(10, models.RoleUser), 1)
		assert.ErrorIs(t, err, repoErr)
	})
}
