package models

import (
	"strings"
	"time"
)

// Difficulty is the closed set of labels a recipe can carry.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Fácil"
	DifficultyMedium Difficulty = "Media"
	DifficultyHard   Difficulty = "Difícil"
)

// Difficulties lists the accepted values in display order.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// ParseDifficulty accepts the canonical labels case-insensitively, with or
// without the accent.
func ParseDifficulty(s string) (Difficulty, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fácil", "facil":
		return DifficultyEasy, true
	case "media":
		return DifficultyMedium, true
	case "difícil", "dificil":
		return DifficultyHard, true
	}
	return "", false
}

// Recipe is the core publishable entity.
type Recipe struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	UserID          uint       `gorm:"not null;index" json:"user_id"`
	Title           string     `gorm:"size:255;not null" json:"title"`
	Description     string     `gorm:"type:text" json:"description"`
	PrepTimeMinutes int        `gorm:"not null;default:0" json:"prep_time_minutes"`
	Difficulty      Difficulty `gorm:"size:16;not null" json:"difficulty"`
	IsEdited        bool       `gorm:"not null;default:false" json:"is_edited"`
	CreatedAt       time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// RecipeIngredient rows are displayed in id order.
type RecipeIngredient struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	RecipeID uint   `gorm:"not null;index" json:"recipe_id"`
	Item     string `gorm:"size:255;not null" json:"item"`
}

// Category is seeded reference data.
type Category struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:100;uniqueIndex;not null" json:"name"`
}

// RecipeCategory links a recipe to a category.
type RecipeCategory struct {
	RecipeID   uint `gorm:"primaryKey;autoIncrement:false" json:"recipe_id"`
	CategoryID uint `gorm:"primaryKey;autoIncrement:false;index" json:"category_id"`
}

// RecipeImage with DisplayOrder 0 is the cover.
type RecipeImage struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	RecipeID     uint   `gorm:"not null;index" json:"recipe_id"`
	ImageURL     string `gorm:"size:512;not null" json:"image_url"`
	DisplayOrder int    `gorm:"not null;default:0" json:"display_order"`
}

// RecipeSummary is the denormalized row used by every list view.
type RecipeSummary struct {
	ID              uint          `json:"id"`
	UserID          uint          `json:"user_id"`
	Title           string        `json:"title"`
	Description     string        `json:"description"`
	PrepTimeMinutes int           `json:"prep_time_minutes"`
	Difficulty      Difficulty    `json:"difficulty"`
	IsEdited        bool          `json:"is_edited"`
	CreatedAt       time.Time     `json:"created_at"`
	Username        string        `json:"username"`
	AvatarURL       *string       `json:"avatar_url"`
	CoverImage      *string       `json:"cover_image"`
	LikesCount      int64         `json:"likes_count"`
	CommentsCount   int64         `json:"comments_count"`
	MyReaction      *ReactionType `json:"my_reaction"`
}

// RecipeDetail extends the summary with every dependent collection.
type RecipeDetail struct {
	RecipeSummary
	Ingredients []string       `json:"ingredients"`
	Categories  []Category     `json:"categories"`
	Images      []string       `json:"images"`
	Comments    []*CommentView `json:"comments"`
}
