package repository

import (
	"context"
	"fmt"

	"cookconnect/internal/models"
	"cookconnect/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReactionTarget describes where reactions on one kind of entity live.
type ReactionTarget struct {
	Name        string
	Table       string
	Column      string
	ParentTable string
}

var (
	RecipeReactions = ReactionTarget{
		Name:        "Recipe",
		Table:       "recipe_reactions",
		Column:      "recipe_id",
		ParentTable: "recipes",
	}
	CommentReactions = ReactionTarget{
		Name:        "Comment",
		Table:       "comment_reactions",
		Column:      "comment_id",
		ParentTable: "comments",
	}
)

// ReactionRepository reads and writes reaction rows for any ReactionTarget.
type ReactionRepository interface {
	TargetExists(ctx context.Context, target ReactionTarget, id uint) (bool, error)
	// Current returns the subject's reaction on the target, or nil.
	Current(ctx context.Context, target ReactionTarget, userID, id uint) (*models.ReactionType, error)
	Insert(ctx context.Context, target ReactionTarget, userID, id uint, t models.ReactionType) error
	SetType(ctx context.Context, target ReactionTarget, userID, id uint, t models.ReactionType) error
	Remove(ctx context.Context, target ReactionTarget, userID, id uint) error
	CountLikes(ctx context.Context, target ReactionTarget, id uint) (int64, error)

	Transaction(ctx context.Context, fn func(tx ReactionRepository) error) error
}

type reactionRepository struct {
	db *gorm.DB
}

// NewReactionRepository creates a new ReactionRepository
func NewReactionRepository(db *gorm.DB) ReactionRepository {
	return &reactionRepository{db: db}
}

func (r *reactionRepository) Transaction(ctx context.Context, fn func(tx ReactionRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&reactionRepository{db: tx})
	})
}

func (r *reactionRepository) TargetExists(ctx context.Context, target ReactionTarget, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Table(target.ParentTable).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, classify(err, target.Name, id)
	}
	return count > 0, nil
}

// Current locks the existing row on PostgreSQL so concurrent toggles by the
// same subject serialize.
func (r *reactionRepository) Current(ctx context.Context, target ReactionTarget, userID, id uint) (*models.ReactionType, error) {
	var types []models.ReactionType
	err := r.db.WithContext(ctx).Table(target.Table).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Where("user_id = ? AND "+target.Column+" = ?", userID, id).
		Limit(1).
		Pluck("reaction_type", &types).Error
	if err != nil {
		return nil, classify(err, target.Name, id)
	}
	if len(types) == 0 {
		return nil, nil
	}
	return &types[0], nil
}

func (r *reactionRepository) Insert(ctx context.Context, target ReactionTarget, userID, id uint, t models.ReactionType) error {
	now := r.db.NowFunc()
	err := r.db.WithContext(ctx).Exec(
		fmt.Sprintf("INSERT INTO %s (user_id, %s, reaction_type, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
			target.Table, target.Column),
		userID, id, t, now, now,
	).Error
	if err != nil {
		return classify(err, target.Name+" reaction", id)
	}
	return nil
}

func (r *reactionRepository) SetType(ctx context.Context, target ReactionTarget, userID, id uint, t models.ReactionType) error {
	err := r.db.WithContext(ctx).Exec(
		fmt.Sprintf("UPDATE %s SET reaction_type = ?, updated_at = ? WHERE user_id = ? AND %s = ?",
			target.Table, target.Column),
		t, r.db.NowFunc(), userID, id,
	).Error
	if err != nil {
		return classify(err, target.Name+" reaction", id)
	}
	return nil
}

func (r *reactionRepository) Remove(ctx context.Context, target ReactionTarget, userID, id uint) error {
	err := r.db.WithContext(ctx).Exec(
		fmt.Sprintf("DELETE FROM %s WHERE user_id = ? AND %s = ?", target.Table, target.Column),
		userID, id,
	).Error
	if err != nil {
		return classify(err, target.Name+" reaction", id)
	}
	return nil
}

func (r *reactionRepository) CountLikes(ctx context.Context, target ReactionTarget, id uint) (int64, error) {
	defer observability.TrackQuery("count_likes", target.Table)()

	var count int64
	err := r.db.WithContext(ctx).Table(target.Table).
		Where(target.Column+" = ? AND reaction_type = ?", id, models.ReactionLike).
		Count(&count).Error
	if err != nil {
		return 0, classify(err, target.Name, id)
	}
	return count, nil
}
