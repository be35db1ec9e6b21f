package database

import "cookconnect/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models,
// parents before children.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Category{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.RecipeCategory{},
		&models.RecipeImage{},
		&models.Comment{},
		&models.RecipeReaction{},
		&models.CommentReaction{},
	}
}
