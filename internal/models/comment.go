package models

import "time"

// Comment is a user's remark on a recipe.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RecipeID  uint      `gorm:"not null;index" json:"recipe_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CommentView is a comment joined with its author and reaction aggregates.
type CommentView struct {
	ID         uint          `json:"id"`
	RecipeID   uint          `json:"recipe_id"`
	UserID     uint          `json:"user_id"`
	Content    string        `json:"content"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
	Username   string        `json:"username"`
	AvatarURL  *string       `json:"avatar_url"`
	LikesCount int64         `json:"likes_count"`
	MyReaction *ReactionType `json:"my_reaction"`
}
