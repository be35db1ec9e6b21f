// Package seed loads reference categories and generates demo data for
// development databases.
package seed

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"cookconnect/internal/identity"
	"cookconnect/internal/models"
	"cookconnect/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// DemoPassword is the password of every generated user.
const DemoPassword = "receta123"

var usernameJunk = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// Factory builds demo entities and persists them.
type Factory struct {
	db    *gorm.DB
	opts  Options
	faker *gofakeit.Faker
	now   func() time.Time

	passwordHash string
}

// NewFactory creates a Factory bound to db. A zero opts.RandomSeed draws a
// fresh seed.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	return &Factory{
		db:    db,
		opts:  opts,
		faker: gofakeit.New(opts.RandomSeed),
		now:   time.Now,
	}
}

func (f *Factory) password() (string, error) {
	if f.passwordHash != "" {
		return f.passwordHash, nil
	}
	if f.opts.SkipBcrypt {
		f.passwordHash = DemoPassword
		return f.passwordHash, nil
	}
	hash, err := identity.HashPassword(DemoPassword)
	if err != nil {
		return "", fmt.Errorf("hash demo password: %w", err)
	}
	f.passwordHash = hash
	return hash, nil
}

// demoUsername turns a generated handle into a valid, unique username.
func demoUsername(base string, n int) string {
	clean := strings.Trim(usernameJunk.ReplaceAllString(base, ""), "_-")
	suffix := fmt.Sprintf("%d", n)
	if limit := validation.MaxUsernameLength - len(suffix); len(clean) > limit {
		clean = clean[:limit]
	}
	if clean == "" {
		clean = "cocinero"
	}
	return strings.ToLower(clean) + suffix
}

// CreateUser persists a demo user. n keeps usernames unique within a run.
func (f *Factory) CreateUser(n int, overrides ...func(*models.User)) (*models.User, error) {
	hash, err := f.password()
	if err != nil {
		return nil, err
	}

	username := demoUsername(f.faker.Username(), n)
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
		Firstname:    f.faker.FirstName(),
		Lastname:     f.faker.LastName(),
		Bio:          f.faker.Sentence(12),
		Role:         models.RoleUser,
		Status:       models.StatusActive,
	}
	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (f *Factory) createdAt() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	now := f.now()
	return f.faker.DateRange(now.AddDate(0, 0, -maxDays), now).UTC()
}

func (f *Factory) dishName() string {
	switch f.faker.Number(0, 3) {
	case 0:
		return f.faker.Breakfast()
	case 1:
		return f.faker.Lunch()
	case 2:
		return f.faker.Dinner()
	default:
		return f.faker.Dessert()
	}
}

// BuildRecipe returns an unsaved recipe authored by user.
func (f *Factory) BuildRecipe(user *models.User, overrides ...func(*models.Recipe)) *models.Recipe {
	title := f.dishName()
	if len(title) > validation.MaxTitleLength {
		title = title[:validation.MaxTitleLength]
	}
	recipe := &models.Recipe{
		UserID:          user.ID,
		Title:           title,
		Description:     f.faker.Paragraph(1, 3, 12, "\n"),
		PrepTimeMinutes: f.faker.Number(1, 36) * 5,
		Difficulty:      models.Difficulties[f.faker.Number(0, len(models.Difficulties)-1)],
		CreatedAt:       f.createdAt(),
	}
	recipe.UpdatedAt = recipe.CreatedAt
	for _, override := range overrides {
		override(recipe)
	}
	return recipe
}

func (f *Factory) ingredients() []string {
	n := f.faker.Number(3, 8)
	items := make([]string, n)
	for i := range items {
		item := f.faker.Vegetable()
		if f.faker.Bool() {
			item = f.faker.Fruit()
		}
		items[i] = fmt.Sprintf("%d g de %s", f.faker.Number(1, 20)*25, strings.ToLower(item))
	}
	return items
}

// pick returns up to n distinct indexes below size.
func (f *Factory) pick(size, n int) []int {
	if n > size {
		n = size
	}
	order := make([]int, size)
	for i := range order {
		order[i] = i
	}
	for i := len(order) - 1; i > 0; i-- {
		j := f.faker.Number(0, i)
		order[i], order[j] = order[j], order[i]
	}
	return order[:n]
}

// CreateRecipe persists a recipe with ingredients, categories and image links
// in one transaction.
func (f *Factory) CreateRecipe(user *models.User, categories []models.Category, overrides ...func(*models.Recipe)) (*models.Recipe, error) {
	recipe := f.BuildRecipe(user, overrides...)

	err := f.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(recipe).Error; err != nil {
			return err
		}

		items := f.ingredients()
		rows := make([]models.RecipeIngredient, len(items))
		for i, item := range items {
			rows[i] = models.RecipeIngredient{RecipeID: recipe.ID, Item: item}
		}
		if err := tx.Create(&rows).Error; err != nil {
			return err
		}

		if len(categories) > 0 {
			idx := f.pick(len(categories), f.faker.Number(1, 3))
			links := make([]models.RecipeCategory, len(idx))
			for i, j := range idx {
				links[i] = models.RecipeCategory{RecipeID: recipe.ID, CategoryID: categories[j].ID}
			}
			if err := tx.Create(&links).Error; err != nil {
				return err
			}
		}

		if n := f.faker.Number(0, 3); n > 0 {
			images := make([]models.RecipeImage, n)
			for i := range images {
				images[i] = models.RecipeImage{
					RecipeID:     recipe.ID,
					ImageURL:     fmt.Sprintf("https://picsum.photos/seed/%s/800/600", f.faker.UUID()),
					DisplayOrder: i,
				}
			}
			if err := tx.Create(&images).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return recipe, nil
}

// CreateComment persists a comment by user on recipe, dated after the recipe.
func (f *Factory) CreateComment(user *models.User, recipe *models.Recipe) (*models.Comment, error) {
	at := f.faker.DateRange(recipe.CreatedAt, f.now()).UTC()
	comment := &models.Comment{
		RecipeID:  recipe.ID,
		UserID:    user.ID,
		Content:   f.faker.Sentence(f.faker.Number(4, 16)),
		CreatedAt: at,
		UpdatedAt: at,
	}
	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

func (f *Factory) reactionType() models.ReactionType {
	// Likes outnumber dislikes roughly four to one.
	if f.faker.Number(1, 5) == 1 {
		return models.ReactionDislike
	}
	return models.ReactionLike
}

// ReactToRecipe stores user's reaction on a recipe. Callers keep one per pair.
func (f *Factory) ReactToRecipe(user *models.User, recipeID uint) error {
	return f.db.Create(&models.RecipeReaction{
		UserID:       user.ID,
		RecipeID:     recipeID,
		ReactionType: f.reactionType(),
	}).Error
}

// ReactToComment stores user's reaction on a comment. Callers keep one per pair.
func (f *Factory) ReactToComment(user *models.User, commentID uint) error {
	return f.db.Create(&models.CommentReaction{
		UserID:       user.ID,
		CommentID:    commentID,
		ReactionType: f.reactionType(),
	}).Error
}
