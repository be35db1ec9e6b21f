//go:build integration

package seed

import (
	"context"
	"net/url"
	"os"
	"strings"
	"testing"

	"cookconnect/internal/config"
	"cookconnect/internal/database"
	"cookconnect/internal/repository"
	"cookconnect/internal/service"
	"cookconnect/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseDatabaseURLToConfig(dsn string) (*config.Config, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return nil, err
	}
	password := ""
	if u.User != nil {
		password, _ = u.User.Password()
	}
	port := u.Port()
	if port == "" {
		port = "5432"
	}
	return &config.Config{
		DBDriver:     database.DriverPostgres,
		DBHost:       u.Hostname(),
		DBPort:       port,
		DBUser:       u.User.Username(),
		DBPassword:   password,
		DBName:       strings.TrimPrefix(u.Path, "/"),
		DBSSLMode:    "disable",
		Env:          "test",
		DBSchemaMode: "auto",
	}, nil
}

func TestIntegration_SeedPostgres(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set; skipping integration seed test")
	}
	cfg, err := parseDatabaseURLToConfig(dsn)
	require.NoError(t, err)

	db, err := database.Connect(cfg)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, database.ApplySchema(ctx, db, cfg))

	require.NoError(t, Categories(ctx, service.NewCategoryService(repository.NewCategoryRepository(db))))

	s := NewSeeder(db, Options{NumUsers: 10, NumRecipes: 20, SkipBcrypt: true, MaxDays: 30})
	require.NoError(t, s.ClearAll(ctx))
	sum, err := s.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(sum.Recipes), testutil.CountRows(t, db, "recipes", ""))
}
