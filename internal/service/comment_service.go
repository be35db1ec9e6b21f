package service

import (
	"context"
	"fmt"
	"unicode/utf8"

	"cookconnect/internal/identity"
	"cookconnect/internal/models"
	"cookconnect/internal/repository"
	"cookconnect/internal/validation"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	recipeRepo  repository.RecipeRepository
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	recipeRepo repository.RecipeRepository,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		recipeRepo:  recipeRepo,
	}
}

func cleanContent(raw string) (string, error) {
	content := sanitizeText(raw)
	if content == "" {
		return "", models.NewFieldValidationError("content", "Content is required")
	}
	if utf8.RuneCountInString(content) > validation.MaxCommentLength {
		return "", models.NewFieldValidationError("content",
			fmt.Sprintf("Comment too long (max %d characters)", validation.MaxCommentLength))
	}
	return content, nil
}

func (s *CommentService) CreateComment(ctx context.Context, viewer identity.Viewer, recipeID uint, raw string) (*models.CommentView, error) {
	if !viewer.Authenticated() {
		return nil, models.NewUnauthenticatedError("Authentication required")
	}
	content, err := cleanContent(raw)
	if err != nil {
		return nil, err
	}
	if _, err := s.recipeRepo.GetByID(ctx, recipeID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		RecipeID: recipeID,
		UserID:   viewer.UserID(),
		Content:  content,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return s.commentRepo.GetView(ctx, comment.ID, viewer.UserID())
}

// UpdateComment is restricted to the author, admins included.
func (s *CommentService) UpdateComment(ctx context.Context, viewer identity.Viewer, commentID uint, raw string) (*models.CommentView, error) {
	if !viewer.Authenticated() {
		return nil, models.NewUnauthenticatedError("Authentication required")
	}
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != viewer.UserID() {
		return nil, models.NewForbiddenError("You can only update your own comments")
	}
	content, err := cleanContent(raw)
	if err != nil {
		return nil, err
	}

	if err := s.commentRepo.UpdateContent(ctx, commentID, content); err != nil {
		return nil, err
	}
	return s.commentRepo.GetView(ctx, commentID, viewer.UserID())
}

// DeleteComment is allowed for the author and for admins.
func (s *CommentService) DeleteComment(ctx context.Context, viewer identity.Viewer, commentID uint) error {
	if !viewer.Authenticated() {
		return models.NewUnauthenticatedError("Authentication required")
	}
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if !viewer.CanModify(comment.UserID) {
		return models.NewForbiddenError("You can only delete your own comments")
	}
	return s.commentRepo.Delete(ctx, commentID)
}
