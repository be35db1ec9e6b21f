package database

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"cookconnect/internal/middleware"

	"gorm.io/gorm"
)

// MigrationLog records one applied migration.
type MigrationLog struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"size:255;not null"`
	AppliedAt time.Time `gorm:"autoCreateTime"`
}

func (MigrationLog) TableName() string {
	return "migration_logs"
}

// appliedVersions lists recorded versions in ascending order. A database that
// never ran a migration has no log table and reports none.
func appliedVersions(ctx context.Context, db *gorm.DB) ([]int, error) {
	db = db.WithContext(ctx)
	if !db.Migrator().HasTable(&MigrationLog{}) {
		return nil, nil
	}
	var versions []int
	if err := db.Model(&MigrationLog{}).Order("version").Pluck("version", &versions).Error; err != nil {
		return nil, fmt.Errorf("read migration log: %w", err)
	}
	return versions, nil
}

// unknownVersions returns applied versions that no embedded migration knows,
// which means the database was migrated by a newer or different build.
func unknownVersions(applied []int, known []Migration) []int {
	var out []int
	for _, v := range applied {
		if !slices.ContainsFunc(known, func(m Migration) bool { return m.Version == v }) {
			out = append(out, v)
		}
	}
	return out
}

// RunMigrations applies every pending migration in order. Each script and its
// log row commit together, so a failing script leaves no trace.
func RunMigrations(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(&MigrationLog{}); err != nil {
		return fmt.Errorf("create migration log: %w", err)
	}

	applied, err := appliedVersions(ctx, db)
	if err != nil {
		return err
	}
	if unknown := unknownVersions(applied, migrations); len(unknown) > 0 {
		return fmt.Errorf("database has migrations this build does not know: %v", unknown)
	}

	for _, m := range migrations {
		if slices.Contains(applied, m.Version) {
			continue
		}
		err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(m.UpScript).Error; err != nil {
				return err
			}
			return tx.Create(&MigrationLog{Version: m.Version, Name: m.Name}).Error
		})
		if err != nil {
			return fmt.Errorf("apply %s: %w", m, err)
		}
		middleware.Logger.InfoContext(ctx, "migration applied", slog.String("migration", m.String()))
	}
	return nil
}

// RollbackMigration runs the down script of an applied migration and removes
// its log row in one transaction.
func RollbackMigration(ctx context.Context, db *gorm.DB, version int) error {
	m, ok := migrationByVersion(version)
	if !ok {
		return fmt.Errorf("migration version %d not found", version)
	}
	applied, err := appliedVersions(ctx, db)
	if err != nil {
		return err
	}
	if !slices.Contains(applied, version) {
		return fmt.Errorf("migration %s has not been applied", m)
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(m.DownScript).Error; err != nil {
			return err
		}
		return tx.Where("version = ?", version).Delete(&MigrationLog{}).Error
	})
	if err != nil {
		return fmt.Errorf("roll back %s: %w", m, err)
	}
	middleware.Logger.InfoContext(ctx, "migration rolled back", slog.String("migration", m.String()))
	return nil
}
