// Package testutil provides shared test doubles and fixtures for backend tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"cookconnect/internal/database"
	"cookconnect/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenSQLite returns a migrated in-memory database private to t. The pool is
// capped at one connection so every statement sees the same memory database.
func OpenSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(database.SQLiteDialector("file::memory:?_foreign_keys=on"), database.GormConfig(logger.Default.LogMode(logger.Silent)))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	return db
}

// CreateUser inserts an active user with a throwaway password hash.
func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "not-a-real-hash",
		Firstname:    "Test",
		Lastname:     username,
		Role:         models.RoleUser,
		Status:       models.StatusActive,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateAdmin inserts a user with the admin role.
func CreateAdmin(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := CreateUser(t, db, username)
	require.NoError(t, db.Model(user).Update("role", models.RoleAdmin).Error)
	user.Role = models.RoleAdmin
	return user
}

// CreateRecipe inserts a bare recipe with an explicit creation time.
func CreateRecipe(t *testing.T, db *gorm.DB, userID uint, title string, createdAt time.Time) *models.Recipe {
	t.Helper()
	recipe := &models.Recipe{
		UserID:          userID,
		Title:           title,
		Description:     "Description of " + title,
		PrepTimeMinutes: 15,
		Difficulty:      models.DifficultyEasy,
		CreatedAt:       createdAt.UTC(),
	}
	require.NoError(t, db.Create(recipe).Error)
	return recipe
}

// CreateCategories inserts one category per name, in order.
func CreateCategories(t *testing.T, db *gorm.DB, names ...string) []models.Category {
	t.Helper()
	categories := make([]models.Category, len(names))
	for i, name := range names {
		categories[i] = models.Category{Name: name}
	}
	require.NoError(t, db.Create(&categories).Error)
	return categories
}

// CountRows counts rows of table matching where.
func CountRows(t *testing.T, db *gorm.DB, table, where string, args ...any) int64 {
	t.Helper()
	var n int64
	q := db.Table(table)
	if where != "" {
		q = q.Where(where, args...)
	}
	require.NoError(t, q.Count(&n).Error, fmt.Sprintf("count %s", table))
	return n
}
