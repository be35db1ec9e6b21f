package service

import (
	"context"
	"strings"
	"time"

	"cookconnect/internal/identity"
	"cookconnect/internal/models"
	"cookconnect/internal/repository"
)

const (
	DefaultFeedLimit = 50
	MaxFeedLimit     = 100
)

// FeedService serves every read view of recipes. All aggregates are
// recomputed per call and evaluated from the viewer's perspective.
type FeedService struct {
	recipes  repository.RecipeRepository
	comments repository.CommentRepository
	users    repository.UserRepository
	now      func() time.Time
}

func NewFeedService(
	recipes repository.RecipeRepository,
	comments repository.CommentRepository,
	users repository.UserRepository,
) *FeedService {
	return &FeedService{
		recipes:  recipes,
		comments: comments,
		users:    users,
		now:      time.Now,
	}
}

// WithClock replaces the clock used to resolve recency windows.
func (s *FeedService) WithClock(now func() time.Time) *FeedService {
	s.now = now
	return s
}

func (s *FeedService) resolve(filter models.RecipeFilter) models.RecipeFilter {
	if start, ok := filter.Window.Start(s.now()); ok {
		filter.Since = start.UTC()
	}
	switch {
	case filter.Limit <= 0:
		filter.Limit = DefaultFeedLimit
	case filter.Limit > MaxFeedLimit:
		filter.Limit = MaxFeedLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return filter
}

// List returns recipes matching filter, newest first. An empty filter is the
// plain feed.
func (s *FeedService) List(ctx context.Context, viewer identity.Viewer, filter models.RecipeFilter) ([]*models.RecipeSummary, error) {
	return s.recipes.List(ctx, s.resolve(filter), viewer.UserID())
}

// MyRecipes lists the viewer's own recipes.
func (s *FeedService) MyRecipes(ctx context.Context, viewer identity.Viewer) ([]*models.RecipeSummary, error) {
	if !viewer.Authenticated() {
		return nil, models.NewUnauthenticatedError("Authentication required")
	}
	return s.authorRecipes(ctx, viewer.UserID(), viewer.UserID())
}

// authorRecipes returns every recipe by authorID. Author views are not paged.
func (s *FeedService) authorRecipes(ctx context.Context, authorID, viewerID uint) ([]*models.RecipeSummary, error) {
	return s.recipes.List(ctx, models.RecipeFilter{AuthorID: authorID}, viewerID)
}

// Profile returns a user's public data and their recipes.
func (s *FeedService) Profile(ctx context.Context, viewer identity.Viewer, username string) (*models.PublicProfile, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, models.NewFieldValidationError("username", "Username is required")
	}
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if viewer.UserID() != user.ID {
		public := *user
		public.Email = ""
		user = &public
	}
	recipes, err := s.authorRecipes(ctx, user.ID, viewer.UserID())
	if err != nil {
		return nil, err
	}
	return &models.PublicProfile{User: user, Recipes: recipes}, nil
}

// Detail assembles one recipe with ingredients, categories, images and comments.
func (s *FeedService) Detail(ctx context.Context, viewer identity.Viewer, id uint) (*models.RecipeDetail, error) {
	summary, err := s.recipes.GetSummary(ctx, id, viewer.UserID())
	if err != nil {
		return nil, err
	}

	detail := &models.RecipeDetail{RecipeSummary: *summary}
	if detail.Ingredients, err = s.recipes.Ingredients(ctx, id); err != nil {
		return nil, err
	}
	if detail.Categories, err = s.recipes.Categories(ctx, id); err != nil {
		return nil, err
	}
	if detail.Images, err = s.recipes.Images(ctx, id); err != nil {
		return nil, err
	}
	if detail.Comments, err = s.comments.ListViews(ctx, id, viewer.UserID()); err != nil {
		return nil, err
	}
	return detail, nil
}
