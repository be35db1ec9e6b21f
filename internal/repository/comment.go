package repository

import (
	"context"

	"cookconnect/internal/models"
	"cookconnect/internal/observability"

	"gorm.io/gorm"
)

// commentViewColumns projects one CommentView; the bind parameter is the viewer id.
const commentViewColumns = `comments.id, comments.recipe_id, comments.user_id, comments.content,
	comments.created_at, comments.updated_at,
	users.username, users.avatar_url,
	(SELECT COUNT(*) FROM comment_reactions cr
		WHERE cr.comment_id = comments.id AND cr.reaction_type = 'like') AS likes_count,
	(SELECT mr.reaction_type FROM comment_reactions mr
		WHERE mr.comment_id = comments.id AND mr.user_id = ?) AS my_reaction`

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	UpdateContent(ctx context.Context, id uint, content string) error
	Delete(ctx context.Context, id uint) error
	ListViews(ctx context.Context, recipeID, viewerID uint) ([]*models.CommentView, error)
	GetView(ctx context.Context, id, viewerID uint) (*models.CommentView, error)
}

type commentRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db, log: observability.NewRepoLogger("comments")}
}

func (r *commentRepository) views(ctx context.Context, viewerID uint) *gorm.DB {
	return r.db.WithContext(ctx).Table("comments").
		Select(commentViewColumns, viewerID).
		Joins("JOIN users ON users.id = comments.user_id")
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return classify(err, "Recipe", comment.RecipeID)
	}
	r.log.LogCreate(ctx, map[string]any{"comment_id": comment.ID, "recipe_id": comment.RecipeID})
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, classify(err, "Comment", id)
	}
	return &comment, nil
}

func (r *commentRepository) UpdateContent(ctx context.Context, id uint, content string) error {
	res := r.db.WithContext(ctx).Model(&models.Comment{ID: id}).Update("content", content)
	if res.Error != nil {
		return classify(res.Error, "Comment", id)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Comment", id)
	}
	r.log.LogUpdate(ctx, map[string]any{"comment_id": id})
	return nil
}

// Delete removes the comment together with its reactions.
func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("comment_id = ?", id).Delete(&models.CommentReaction{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Comment{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return classify(err, "Comment", id)
	}
	r.log.LogDelete(ctx, map[string]any{"comment_id": id})
	return nil
}

// ListViews returns the recipe's comments, newest first.
func (r *commentRepository) ListViews(ctx context.Context, recipeID, viewerID uint) ([]*models.CommentView, error) {
	defer observability.TrackQuery("list", "comments")()

	views := make([]*models.CommentView, 0)
	err := r.views(ctx, viewerID).
		Where("comments.recipe_id = ?", recipeID).
		Order("comments.created_at DESC, comments.id DESC").
		Scan(&views).Error
	if err != nil {
		return nil, classify(err, "Recipe", recipeID)
	}
	return views, nil
}

func (r *commentRepository) GetView(ctx context.Context, id, viewerID uint) (*models.CommentView, error) {
	var views []*models.CommentView
	if err := r.views(ctx, viewerID).Where("comments.id = ?", id).Limit(1).Scan(&views).Error; err != nil {
		return nil, classify(err, "Comment", id)
	}
	if len(views) == 0 {
		return nil, models.NewNotFoundError("Comment", id)
	}
	return views[0], nil
}
