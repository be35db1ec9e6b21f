package service

import (
	"context"

	"cookconnect/internal/identity"
	"cookconnect/internal/models"
	"cookconnect/internal/observability"
	"cookconnect/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// ToggleResult is what the client sees after a reaction toggle.
type ToggleResult struct {
	Action     models.ReactionAction `json:"action"`
	LikesCount int64                 `json:"newLikesCount"`
}

// ReactionService applies the like/dislike toggle to recipes and comments.
type ReactionService struct {
	reactions repository.ReactionRepository
}

func NewReactionService(reactions repository.ReactionRepository) *ReactionService {
	return &ReactionService{reactions: reactions}
}

func (s *ReactionService) ToggleRecipe(ctx context.Context, viewer identity.Viewer, recipeID uint, rawType string) (*ToggleResult, error) {
	return s.toggle(ctx, viewer, repository.RecipeReactions, recipeID, rawType)
}

func (s *ReactionService) ToggleComment(ctx context.Context, viewer identity.Viewer, commentID uint, rawType string) (*ToggleResult, error) {
	return s.toggle(ctx, viewer, repository.CommentReactions, commentID, rawType)
}

// toggle reads the current reaction, applies the transition and recounts
// likes inside one transaction.
func (s *ReactionService) toggle(
	ctx context.Context,
	viewer identity.Viewer,
	target repository.ReactionTarget,
	id uint,
	rawType string,
) (result *ToggleResult, err error) {
	ctx, span := observability.StartSpan(ctx, "ReactionService", "Toggle",
		attribute.String("reaction.target", target.Table),
		attribute.Int("reaction.target_id", int(id)))
	defer func() { observability.EndSpan(span, err) }()

	if !viewer.Authenticated() {
		return nil, models.NewUnauthenticatedError("Authentication required")
	}
	requested, ok := models.ParseReactionType(rawType)
	if !ok {
		return nil, models.NewFieldValidationError("type", "Reaction type must be like or dislike")
	}

	userID := viewer.UserID()
	err = s.reactions.Transaction(ctx, func(tx repository.ReactionRepository) error {
		exists, err := tx.TargetExists(ctx, target, id)
		if err != nil {
			return err
		}
		if !exists {
			return models.NewNotFoundError(target.Name, id)
		}

		current, err := tx.Current(ctx, target, userID, id)
		if err != nil {
			return err
		}
		next, action := models.StateOf(current).Toggle(requested)

		switch action {
		case models.ReactionAdded:
			err = tx.Insert(ctx, target, userID, id, *next.Type())
		case models.ReactionRemoved:
			err = tx.Remove(ctx, target, userID, id)
		case models.ReactionUpdated:
			err = tx.SetType(ctx, target, userID, id, *next.Type())
		}
		if err != nil {
			return err
		}

		likes, err := tx.CountLikes(ctx, target, id)
		if err != nil {
			return err
		}
		result = &ToggleResult{Action: action, LikesCount: likes}
		return nil
	})
	if err != nil {
		return nil, err
	}

	observability.ReactionToggles.WithLabelValues(target.Table, string(result.Action)).Inc()
	return result, nil
}
