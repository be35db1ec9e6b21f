package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cookconnect/internal/database"
	"cookconnect/internal/middleware"
	"cookconnect/internal/models"

	"gorm.io/gorm"
)

// Options configures demo data generation.
type Options struct {
	NumUsers   int
	NumRecipes int
	// MaxComments caps comments per recipe.
	MaxComments int
	// MaxDays spreads recipe creation dates over this many past days.
	MaxDays    int
	SkipBcrypt bool
	RandomSeed int64
}

// Summary counts what a run created.
type Summary struct {
	Users     int
	Recipes   int
	Comments  int
	Reactions int
}

// ErrNoCategories is returned when demo recipes are requested before the
// reference categories exist.
var ErrNoCategories = errors.New("no categories found; seed categories first")

// Seeder populates a development database with demo users and recipes.
type Seeder struct {
	db      *gorm.DB
	opts    Options
	factory *Factory
}

// NewSeeder creates a Seeder writing to db.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	if opts.MaxComments <= 0 {
		opts.MaxComments = 4
	}
	return &Seeder{db: db, opts: opts, factory: NewFactory(db, opts)}
}

// ClearAll removes every user-generated row, children first. Categories are
// reference data and survive.
func (s *Seeder) ClearAll(ctx context.Context) error {
	all := database.PersistentModels()
	db := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true})
	for i := len(all) - 1; i >= 0; i-- {
		if _, ok := all[i].(*models.Category); ok {
			continue
		}
		if err := db.Delete(all[i]).Error; err != nil {
			return fmt.Errorf("clear %T: %w", all[i], err)
		}
	}
	middleware.Logger.InfoContext(ctx, "demo data cleared")
	return nil
}

// Run creates users, then recipes by random authors, then comments and
// reactions from random users. Each user reacts at most once per target.
func (s *Seeder) Run(ctx context.Context) (*Summary, error) {
	var categories []models.Category
	if err := s.db.WithContext(ctx).Order("id").Find(&categories).Error; err != nil {
		return nil, err
	}
	if len(categories) == 0 && s.opts.NumRecipes > 0 {
		return nil, ErrNoCategories
	}

	f := s.factory
	sum := &Summary{}

	users := make([]*models.User, 0, s.opts.NumUsers)
	for i := 0; i < s.opts.NumUsers; i++ {
		u, err := f.CreateUser(i + 1)
		if err != nil {
			return sum, fmt.Errorf("create user: %w", err)
		}
		users = append(users, u)
	}
	sum.Users = len(users)
	if len(users) == 0 {
		return sum, nil
	}

	for i := 0; i < s.opts.NumRecipes; i++ {
		author := users[f.faker.Number(0, len(users)-1)]
		recipe, err := f.CreateRecipe(author, categories)
		if err != nil {
			return sum, fmt.Errorf("create recipe: %w", err)
		}
		sum.Recipes++

		for _, j := range f.pick(len(users), f.faker.Number(0, len(users))) {
			if err := f.ReactToRecipe(users[j], recipe.ID); err != nil {
				return sum, fmt.Errorf("react to recipe: %w", err)
			}
			sum.Reactions++
		}

		for c := f.faker.Number(0, s.opts.MaxComments); c > 0; c-- {
			commenter := users[f.faker.Number(0, len(users)-1)]
			comment, err := f.CreateComment(commenter, recipe)
			if err != nil {
				return sum, fmt.Errorf("create comment: %w", err)
			}
			sum.Comments++

			for _, j := range f.pick(len(users), f.faker.Number(0, 2)) {
				if err := f.ReactToComment(users[j], comment.ID); err != nil {
					return sum, fmt.Errorf("react to comment: %w", err)
				}
				sum.Reactions++
			}
		}
	}

	middleware.Logger.InfoContext(ctx, "demo data seeded",
		slog.Int("users", sum.Users),
		slog.Int("recipes", sum.Recipes),
		slog.Int("comments", sum.Comments),
		slog.Int("reactions", sum.Reactions),
	)
	return sum, nil
}
