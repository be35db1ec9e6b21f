// Package server contains the HTTP handlers and routing for the Cook & Connect API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	_ "cookconnect/docs" // swagger docs
	"cookconnect/internal/blobstore"
	"cookconnect/internal/cache"
	"cookconnect/internal/config"
	"cookconnect/internal/identity"
	"cookconnect/internal/middleware"
	"cookconnect/internal/models"
	"cookconnect/internal/repository"
	"cookconnect/internal/service"
	"cookconnect/internal/validation"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	serviceName    = "cookconnect-api"
	defaultOrigins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	tokens         *identity.TokenService
	uploadDir      string

	authService     *service.AuthService
	userService     *service.UserService
	feedService     *service.FeedService
	recipeService   *service.RecipeService
	reactionService *service.ReactionService
	commentService  *service.CommentService
	categoryService *service.CategoryService
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil, in which case logout revocation is disabled.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, blobs blobstore.Store) (*Server, error) {
	users := repository.NewUserRepository(db)
	recipes := repository.NewRecipeRepository(db)
	comments := repository.NewCommentRepository(db)
	reactions := repository.NewReactionRepository(db)
	categories := repository.NewCategoryRepository(db)

	var revocations identity.RevocationStore
	if redisClient != nil {
		revocations = cache.NewRevocationStore(redisClient)
	}
	tokens := identity.NewTokenService(cfg.JWTSecret, cfg.TokenTTL(), revocations)

	uploadDir := cfg.UploadDir
	if disk, ok := blobs.(*blobstore.DiskStore); ok {
		uploadDir = disk.Dir()
	}

	return &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics(serviceName),
		tokens:         tokens,
		uploadDir:      uploadDir,

		authService:     service.NewAuthService(users, tokens, blobs),
		userService:     service.NewUserService(users, blobs),
		feedService:     service.NewFeedService(recipes, comments, users),
		recipeService:   service.NewRecipeService(recipes, categories, blobs),
		reactionService: service.NewReactionService(reactions),
		commentService:  service.NewCommentService(comments, recipes),
		categoryService: service.NewCategoryService(categories),
	}, nil
}

// NewApp builds the Fiber app with middleware and routes installed.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Cook & Connect API",
		BodyLimit:    s.bodyLimit(),
		ErrorHandler: s.errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// bodyLimit leaves room for a full recipe upload plus its form fields.
func (s *Server) bodyLimit() int {
	perImage := s.config.ImageMaxUploadSizeMB
	if perImage <= 0 {
		perImage = blobstore.DefaultMaxUploadSizeMB
	}
	return (perImage*validation.MaxRecipeImages + 1) * 1024 * 1024
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := models.CodeInternal
		switch {
		case fe.Code == fiber.StatusNotFound:
			code = models.CodeNotFound
		case fe.Code < fiber.StatusInternalServerError:
			code = models.CodeValidation
		}
		return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message, Code: code})
	}
	return s.respondError(c, err)
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())

	// Soft authentication: every request gets a Viewer, possibly anonymous.
	app.Use(middleware.Authenticate(s.tokens))
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Uploaded images are embedded by the client from another origin.
	app.Use(helmet.New(helmet.Config{CrossOriginResourcePolicy: "cross-origin"}))
	app.Use(middleware.StructuredLogger())

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = defaultOrigins
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	app.Static(strings.TrimSuffix(blobstore.PublicPrefix, "/"), s.uploadDir, fiber.Static{
		MaxAge: int((24 * time.Hour).Seconds()),
	})

	api := app.Group("/api")
	api.Get("/", s.ReadinessCheck)
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Cook & Connect Metrics Dashboard",
	}))
	api.Get("/swagger/*", swagger.HandlerDefault)

	requireAuth := middleware.AuthRequired()

	auth := api.Group("/auth")
	auth.Post("/register", s.Register)
	auth.Post("/login", s.Login)
	auth.Post("/logout", requireAuth, s.Logout)

	api.Get("/categories", s.ListCategories)

	user := api.Group("/user")
	user.Get("/check-username", s.CheckUsername)
	user.Get("/me", requireAuth, s.GetMe)
	user.Put("/profile", requireAuth, s.UpdateProfile)
	user.Get("/recipes", requireAuth, s.GetMyRecipes)

	api.Get("/users/:username", s.GetPublicProfile)

	recipes := api.Group("/recipes")
	recipes.Get("/", s.ListRecipes)
	// /search must be registered before /:id.
	recipes.Get("/search", s.SearchRecipes)
	recipes.Get("/:id", s.GetRecipe)
	recipes.Post("/", requireAuth, s.CreateRecipe)
	recipes.Put("/:id", requireAuth, s.UpdateRecipe)
	recipes.Delete("/:id", requireAuth, s.DeleteRecipe)
	recipes.Post("/:id/react", requireAuth, s.ReactToRecipe)
	recipes.Post("/:id/comments", requireAuth, s.CreateComment)

	comments := api.Group("/comments")
	comments.Put("/:id", requireAuth, s.UpdateComment)
	comments.Delete("/:id", requireAuth, s.DeleteComment)
	comments.Post("/:id/react", requireAuth, s.ReactToComment)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "up",
		"time":   time.Now().UTC(),
	})
}

// ReadinessCheck reports database and Redis health. Redis is optional, so its
// absence does not make the service unready.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if sqlDB, err := s.db.DB(); err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overall := "healthy"
	switch {
	case dbStatus != "healthy":
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	case redisStatus != "healthy":
		overall = "degraded"
	}

	return c.Status(status).JSON(fiber.Map{
		"service": serviceName,
		"status":  overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now().UTC(),
	})
}

// Start listens on the configured port until Shutdown is called.
func (s *Server) Start() error {
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}
	s.app = s.NewApp()

	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
