package database

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"cookconnect/internal/config"
	"cookconnect/internal/middleware"

	"gorm.io/gorm"
)

// DB_SCHEMA_MODE values.
const (
	SchemaModeHybrid = "hybrid"
	SchemaModeSQL    = "sql"
	SchemaModeAuto   = "auto"
)

// schemaPlan says which mechanisms ApplySchema runs.
type schemaPlan struct {
	Mode string
	SQL  bool
	Auto bool
}

// planSchema resolves DB_SCHEMA_MODE for the driver and environment. The
// embedded SQL targets PostgreSQL, so SQLite always uses AutoMigrate, and
// AutoMigrate never runs against a production-like PostgreSQL.
func planSchema(cfg *config.Config) (schemaPlan, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.DBSchemaMode))
	if mode == "" {
		mode = SchemaModeHybrid
	}
	if mode != SchemaModeHybrid && mode != SchemaModeSQL && mode != SchemaModeAuto {
		return schemaPlan{}, fmt.Errorf("unsupported DB_SCHEMA_MODE %q", mode)
	}
	if cfg.DBDriver == DriverSQLite {
		return schemaPlan{Mode: mode, Auto: true}, nil
	}

	env := strings.ToLower(strings.TrimSpace(cfg.Env))
	strict := slices.Contains([]string{"production", "prod", "staging", "stage"}, env)
	switch {
	case mode == SchemaModeSQL:
		return schemaPlan{Mode: mode, SQL: true}, nil
	case mode == SchemaModeAuto && strict:
		return schemaPlan{}, fmt.Errorf("refusing DB_SCHEMA_MODE=auto in %q", cfg.Env)
	case mode == SchemaModeAuto:
		return schemaPlan{Mode: mode, Auto: true}, nil
	default:
		return schemaPlan{Mode: mode, SQL: true, Auto: !strict}, nil
	}
}

// ApplySchema brings the database schema up to date according to DB_SCHEMA_MODE.
func ApplySchema(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	plan, err := planSchema(cfg)
	if err != nil {
		return err
	}
	if plan.SQL {
		if err := RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("run sql migrations: %w", err)
		}
	}
	if plan.Auto {
		middleware.Logger.InfoContext(ctx, "running automigrate",
			slog.String("mode", plan.Mode),
			slog.String("driver", driverName(cfg)))
		if err := db.WithContext(ctx).AutoMigrate(PersistentModels()...); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
	}
	return nil
}

// SchemaStatus describes what ApplySchema would do and, for SQL mode, which
// migrations are still pending.
type SchemaStatus struct {
	schemaPlan
	Applied []int
	Pending []Migration
}

func GetSchemaStatus(ctx context.Context, db *gorm.DB, cfg *config.Config) (*SchemaStatus, error) {
	plan, err := planSchema(cfg)
	if err != nil {
		return nil, err
	}
	status := &SchemaStatus{schemaPlan: plan}
	if !plan.SQL {
		return status, nil
	}

	if status.Applied, err = appliedVersions(ctx, db); err != nil {
		return nil, err
	}
	for _, m := range migrations {
		if !slices.Contains(status.Applied, m.Version) {
			status.Pending = append(status.Pending, m)
		}
	}
	return status, nil
}
