package repository

import (
	"strings"

	"cookconnect/internal/models"

	"gorm.io/gorm"
)

// recipeSummaryColumns selects one RecipeSummary row. The single bind
// parameter is the viewer id; anonymous viewers pass 0, which never matches
// because ids start at 1.
const recipeSummaryColumns = `recipes.id, recipes.user_id, recipes.title, recipes.description,
	recipes.prep_time_minutes, recipes.difficulty, recipes.is_edited, recipes.created_at,
	users.username, users.avatar_url,
	(SELECT ri.image_url FROM recipe_images ri
		WHERE ri.recipe_id = recipes.id AND ri.display_order = 0
		ORDER BY ri.id LIMIT 1) AS cover_image,
	(SELECT COUNT(*) FROM recipe_reactions rr
		WHERE rr.recipe_id = recipes.id AND rr.reaction_type = 'like') AS likes_count,
	(SELECT COUNT(*) FROM comments cm WHERE cm.recipe_id = recipes.id) AS comments_count,
	(SELECT mr.reaction_type FROM recipe_reactions mr
		WHERE mr.recipe_id = recipes.id AND mr.user_id = ?) AS my_reaction`

const recipeOrder = "recipes.created_at DESC, recipes.id DESC"

// RecipeQuery composes the read side of recipe views: the summary
// projection, filters and deterministic ordering.
type RecipeQuery struct {
	db       *gorm.DB
	viewerID uint
}

// NewRecipeQuery starts a summary query evaluated from viewerID's perspective.
func NewRecipeQuery(db *gorm.DB, viewerID uint) *RecipeQuery {
	return &RecipeQuery{db: db, viewerID: viewerID}
}

func (q *RecipeQuery) base() *gorm.DB {
	return q.db.Table("recipes").
		Select(recipeSummaryColumns, q.viewerID).
		Joins("JOIN users ON users.id = recipes.user_id")
}

// Filtered applies f and the feed ordering. Filters AND across kinds and the
// category set matches when any one id applies.
func (q *RecipeQuery) Filtered(f models.RecipeFilter) *gorm.DB {
	tx := q.base()

	if text := strings.TrimSpace(f.Query); text != "" {
		pattern := "%" + escapeLike(strings.ToLower(text)) + "%"
		tx = tx.Where(`(LOWER(recipes.title) LIKE ? ESCAPE '\' OR LOWER(users.username) LIKE ? ESCAPE '\')`,
			pattern, pattern)
	}
	if !f.Since.IsZero() {
		tx = tx.Where("recipes.created_at >= ?", f.Since)
	}
	if f.Difficulty != "" {
		tx = tx.Where("recipes.difficulty = ?", f.Difficulty)
	}
	if len(f.CategoryIDs) > 0 {
		tx = tx.Where(`EXISTS (SELECT 1 FROM recipe_categories rc
			WHERE rc.recipe_id = recipes.id AND rc.category_id IN ?)`, f.CategoryIDs)
	}
	if f.AuthorID != 0 {
		tx = tx.Where("recipes.user_id = ?", f.AuthorID)
	}

	tx = tx.Order(recipeOrder)
	if f.Limit > 0 {
		tx = tx.Limit(f.Limit)
	}
	if f.Offset > 0 {
		tx = tx.Offset(f.Offset)
	}
	return tx
}

// ByID restricts the projection to one recipe.
func (q *RecipeQuery) ByID(id uint) *gorm.DB {
	return q.base().Where("recipes.id = ?", id)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes user input match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
