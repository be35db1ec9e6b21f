package seed

import (
	"context"
	"errors"
	"testing"

	"cookconnect/internal/identity"
	"cookconnect/internal/models"
	"cookconnect/internal/repository"
	"cookconnect/internal/service"
	"cookconnect/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seederFunc struct {
	SeedFunc func(ctx context.Context, names []string) error
}

func (s seederFunc) Seed(ctx context.Context, names []string) error {
	return s.SeedFunc(ctx, names)
}

func TestLoadCategories(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{name: "plain", input: "categories: [Postres, Arroces]", want: []string{"Postres", "Arroces"}},
		{name: "trims and drops blanks", input: "categories:\n  - '  Sopas '\n  - ''\n  - Pasta\n", want: []string{"Sopas", "Pasta"}},
		{name: "case-insensitive duplicates", input: "categories: [Vegana, vegana, VEGANA]", want: []string{"Vegana"}},
		{name: "missing key", input: "otra: [a]", want: []string{}},
		{name: "malformed", input: "categories: [sin cerrar", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LoadCategories([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuiltInCategories(t *testing.T) {
	names, err := BuiltInCategories()
	require.NoError(t, err)
	assert.NotEmpty(t, names)
	assert.Contains(t, names, "Postres")
}

func TestCategories_PassesNamesAndWrapsErrors(t *testing.T) {
	var got []string
	err := Categories(context.Background(), seederFunc{SeedFunc: func(_ context.Context, names []string) error {
		got = names
		return nil
	}})
	require.NoError(t, err)
	want, _ := BuiltInCategories()
	assert.Equal(t, want, got)

	boom := errors.New("db down")
	err = Categories(context.Background(), seederFunc{SeedFunc: func(context.Context, []string) error { return boom }})
	assert.ErrorIs(t, err, boom)
}

func TestCategories_IdempotentAgainstDatabase(t *testing.T) {
	db := testutil.OpenSQLite(t)
	svc := service.NewCategoryService(repository.NewCategoryRepository(db))
	ctx := context.Background()

	require.NoError(t, Categories(ctx, svc))
	require.NoError(t, Categories(ctx, svc))

	names, err := BuiltInCategories()
	require.NoError(t, err)
	assert.Equal(t, int64(len(names)), testutil.CountRows(t, db, "categories", ""))
}

func TestDemoUsername(t *testing.T) {
	tests := []struct {
		base string
		n    int
		want string
	}{
		{base: "Gaylord4932", n: 1, want: "gaylord49321"},
		{base: "o'Conner.Jr", n: 12, want: "oconnerjr12"},
		{base: "__", n: 3, want: "cocinero3"},
		{base: "Averyveryveryverylongusername", n: 1234, want: "averyveryveryverylongusern1234"},
	}
	for _, tt := range tests {
		t.Run(tt.base, func(t *testing.T) {
			got := demoUsername(tt.base, tt.n)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len(got), 30)
		})
	}
}

func TestSeeder_Run(t *testing.T) {
	db := testutil.OpenSQLite(t)
	testutil.CreateCategories(t, db, "Postres", "Arroces", "Cenas")
	ctx := context.Background()

	s := NewSeeder(db, Options{NumUsers: 5, NumRecipes: 8, MaxDays: 30, SkipBcrypt: true, RandomSeed: 42})
	sum, err := s.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 5, sum.Users)
	assert.Equal(t, 8, sum.Recipes)
	assert.Equal(t, int64(sum.Users), testutil.CountRows(t, db, "users", ""))
	assert.Equal(t, int64(sum.Recipes), testutil.CountRows(t, db, "recipes", ""))
	assert.Equal(t, int64(sum.Comments), testutil.CountRows(t, db, "comments", ""))
	assert.Equal(t, int64(sum.Reactions),
		testutil.CountRows(t, db, "recipe_reactions", "")+testutil.CountRows(t, db, "comment_reactions", ""))

	var recipes []models.Recipe
	require.NoError(t, db.Find(&recipes).Error)
	for _, r := range recipes {
		assert.GreaterOrEqual(t, testutil.CountRows(t, db, "recipe_ingredients", "recipe_id = ?", r.ID), int64(3))
		links := testutil.CountRows(t, db, "recipe_categories", "recipe_id = ?", r.ID)
		assert.True(t, links >= 1 && links <= 3, "recipe %d has %d categories", r.ID, links)
		assert.LessOrEqual(t, testutil.CountRows(t, db, "recipe_images", "recipe_id = ?", r.ID), int64(3))
		_, ok := models.ParseDifficulty(string(r.Difficulty))
		assert.True(t, ok)
	}

	require.NoError(t, s.ClearAll(ctx))
	for _, table := range []string{"users", "recipes", "recipe_ingredients", "recipe_categories", "recipe_images",
		"comments", "recipe_reactions", "comment_reactions"} {
		assert.Zero(t, testutil.CountRows(t, db, table, ""), table)
	}
	assert.Equal(t, int64(3), testutil.CountRows(t, db, "categories", ""))
}

func TestSeeder_RunNeedsCategories(t *testing.T) {
	db := testutil.OpenSQLite(t)
	_, err := NewSeeder(db, Options{NumUsers: 2, NumRecipes: 1, SkipBcrypt: true}).Run(context.Background())
	assert.ErrorIs(t, err, ErrNoCategories)
	assert.Zero(t, testutil.CountRows(t, db, "users", ""))
}

func TestFactory_UsersCanSignIn(t *testing.T) {
	db := testutil.OpenSQLite(t)
	f := NewFactory(db, Options{RandomSeed: 7})

	first, err := f.CreateUser(1)
	require.NoError(t, err)
	second, err := f.CreateUser(2)
	require.NoError(t, err)

	assert.Equal(t, first.PasswordHash, second.PasswordHash, "hash is computed once per run")
	ok, err := identity.CheckPassword(first.PasswordHash, DemoPassword)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, first.Username+"@example.com", first.Email)
}
