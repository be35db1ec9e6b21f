// Package bootstrap initializes the process-wide runtime shared by the
// server and the maintenance commands.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"cookconnect/internal/cache"
	"cookconnect/internal/config"
	"cookconnect/internal/database"
	"cookconnect/internal/identity"
	"cookconnect/internal/middleware"
	"cookconnect/internal/models"
	"cookconnect/internal/observability"
	"cookconnect/internal/repository"
	"cookconnect/internal/seed"
	"cookconnect/internal/service"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const serviceName = "cookconnect-api"

// Options control runtime initialization behavior.
type Options struct {
	ApplySchema    bool
	SeedCategories bool
	// Tracing is skipped for short-lived commands.
	Tracing bool
}

// Runtime holds the shared connections. Redis is nil when unreachable.
type Runtime struct {
	DB    *gorm.DB
	Redis *redis.Client

	shutdownTracing func(context.Context) error
}

// InitLogging installs the configured logger for HTTP, storage and services.
func InitLogging(cfg *config.Config) {
	middleware.SetLogger(middleware.NewLogger(cfg.Env, cfg.LogLevel))
	observability.SetLogger(middleware.Logger)
}

// InitRuntime connects to the database and Redis, then applies the schema and
// reference data as requested.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*Runtime, error) {
	InitLogging(cfg)

	rt := &Runtime{shutdownTracing: func(context.Context) error { return nil }}
	if opts.Tracing {
		shutdown, err := observability.InitTracing(observability.TracingConfig{
			ServiceName:    serviceName,
			ServiceVersion: "1.0.0",
			Environment:    cfg.Env,
			Enabled:        cfg.TracingEnabled,
			Exporter:       cfg.TracingExporter,
			OTLPEndpoint:   cfg.OTLPEndpoint,
			SamplerRatio:   cfg.TracingSampleRatio,
		})
		if err != nil {
			return nil, err
		}
		rt.shutdownTracing = shutdown
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	rt.DB = db

	if opts.ApplySchema {
		if err := database.ApplySchema(ctx, db, cfg); err != nil {
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}

	cache.InitRedis(cfg.RedisURL)
	rt.Redis = cache.GetClient()

	if err := ensureDevAdmin(ctx, cfg, db); err != nil {
		return nil, fmt.Errorf("failed to bootstrap development admin: %w", err)
	}

	if opts.SeedCategories {
		categories := service.NewCategoryService(repository.NewCategoryRepository(db))
		if err := seed.Categories(ctx, categories); err != nil {
			return nil, err
		}
	}

	return rt, nil
}

// Close flushes pending spans. Connections are closed by their owners.
func (rt *Runtime) Close(ctx context.Context) error {
	return rt.shutdownTracing(ctx)
}

// ensureDevAdmin creates or promotes the configured admin account. It only
// runs in development with DEV_BOOTSTRAP_ADMIN enabled.
func ensureDevAdmin(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil {
		return nil
	}
	if !strings.EqualFold(cfg.Env, "development") || !cfg.DevBootstrapAdmin {
		return nil
	}

	username := strings.TrimSpace(cfg.DevAdminUsername)
	if username == "" {
		username = "cook_admin"
	}
	email := strings.ToLower(strings.TrimSpace(cfg.DevAdminEmail))
	if email == "" {
		email = "admin@cookconnect.local"
	}
	if cfg.DevAdminPassword == "" {
		return errors.New("DEV_ADMIN_PASSWORD must be set when DEV_BOOTSTRAP_ADMIN is enabled")
	}

	hash, err := identity.HashPassword(cfg.DevAdminPassword)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	var admin models.User
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		findErr := tx.Where("username = ?", username).First(&admin).Error
		switch {
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			admin = models.User{
				Username:     username,
				Email:        email,
				PasswordHash: hash,
				Firstname:    "Cook",
				Lastname:     "Admin",
				Role:         models.RoleAdmin,
				Status:       models.StatusActive,
			}
			return tx.Create(&admin).Error
		case findErr != nil:
			return findErr
		default:
			return tx.Model(&models.User{}).Where("id = ?", admin.ID).
				Updates(map[string]any{"role": models.RoleAdmin, "status": models.StatusActive}).Error
		}
	})
	if err != nil {
		return err
	}

	cache.InvalidateUser(ctx, admin.ID)
	middleware.Logger.InfoContext(ctx, "development admin ensured", slog.String("username", username))
	return nil
}
