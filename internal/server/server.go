// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "socialhub/docs" // swagger docs
	"socialhub/internal/cache"
	"socialhub/internal/config"
	"socialhub/internal/database"
	"socialhub/internal/events"
	"socialhub/internal/featureflags"
	"socialhub/internal/identity"
	"socialhub/internal/middleware"
	"socialhub/internal/repository"
	"socialhub/internal/service"
	"socialhub/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Per-route limits for the write-heavy and expensive endpoints.
const (
	createPostLimit = 10
	commentLimit    = 30
	clapLimit       = 120
	uploadLimit     = 20
	searchLimit     = 60
)

// Deps are the already-initialized resources a Server runs on. DB and
// Verifier are required; the rest may be nil.
type Deps struct {
	DB        *gorm.DB
	Redis     *redis.Client
	Store     storage.ObjectStore
	Publisher events.Publisher
	Verifier  identity.Verifier
}

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	store          storage.ObjectStore
	publisher      events.Publisher
	verifier       identity.Verifier
	limiter        *middleware.RateLimiter
	featureFlags   *featureflags.Manager
	promMiddleware *fiberprometheus.FiberPrometheus
	app            *fiber.App

	postService         *service.PostService
	bookmarkService     *service.BookmarkService
	followService       *service.FollowService
	commentService      *service.CommentService
	notificationService *service.NotificationService
	searchService       *service.SearchService
	userService         *service.UserService
	uploadService       *service.UploadService
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// The bootstrap layer and tests establish DB, Redis, storage and events.
func NewServerWithDeps(cfg *config.Config, deps Deps) (*Server, error) {
	if deps.DB == nil {
		return nil, errors.New("server: database is required")
	}
	if deps.Verifier == nil {
		return nil, errors.New("server: token verifier is required")
	}
	if deps.Publisher == nil {
		deps.Publisher = events.Noop{}
	}

	timeout := cfg.QueryTimeout()

	userRepo := repository.NewUserRepository(deps.DB)
	postRepo := repository.NewPostRepository(deps.DB)
	followRepo := repository.NewFollowRepository(deps.DB)
	tx := repository.NewTransactor(deps.DB)
	profileCache := cache.New(deps.Redis)

	notifier := service.NewNotificationService(repository.NewNotificationRepository(deps.DB), deps.Publisher, timeout)

	s := &Server{
		config:         cfg,
		db:             deps.DB,
		redis:          deps.Redis,
		store:          deps.Store,
		publisher:      deps.Publisher,
		verifier:       deps.Verifier,
		limiter:        middleware.NewRateLimiter(deps.Redis, cfg.Env),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
		promMiddleware: middleware.InitMetrics("socialhub-api"),

		postService:         service.NewPostService(postRepo, followRepo, tx, notifier, profileCache, timeout),
		bookmarkService:     service.NewBookmarkService(repository.NewBookmarkRepository(deps.DB), postRepo, timeout),
		followService:       service.NewFollowService(followRepo, userRepo, tx, notifier, profileCache, timeout),
		commentService:      service.NewCommentService(repository.NewCommentRepository(deps.DB), postRepo, tx, notifier, timeout),
		notificationService: notifier,
		searchService:       service.NewSearchService(postRepo, userRepo, timeout),
		userService:         service.NewUserService(userRepo, profileCache, timeout),
	}
	if deps.Store != nil {
		s.uploadService = service.NewUploadService(deps.Store, cfg.MaxUploadBytes(), cfg.UploadMaxFiles, timeout)
	}

	return s, nil
}

// App builds the Fiber application with middleware and routes installed.
// It is built once; later calls return the same app.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}

	bodyLimit := s.config.BodyLimitMB
	if bodyLimit <= 0 {
		bodyLimit = 40
	}

	app := fiber.New(fiber.Config{
		AppName:      "SocialHub API",
		ErrorHandler: ErrorHandler,
		BodyLimit:    bodyLimit * 1024 * 1024,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected browser requests still get
	// CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	perMinute := s.config.RateLimitPerMinute
	if perMinute <= 0 {
		perMinute = 100
	}
	app.Use(limiter.New(limiter.Config{
		Max:        perMinute,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || s.limiter.Bypassed()
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusTooManyRequests, "Too many requests, please try again later.")
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	if local, ok := s.store.(*storage.LocalStore); ok {
		app.Static("/uploads", local.Dir)
	}

	api := app.Group("/api")

	// Swagger documentation
	api.Get("/swagger/*", swagger.HandlerDefault)

	// Public routes are registered before the protected group so its auth
	// middleware never runs for them. /users/me must precede /users/:username.
	api.Get("/posts", s.OptionalAuth(), s.GetFeed)
	api.Get("/posts/:id", s.GetPost)
	api.Get("/users/me", s.AuthRequired(), s.GetMyProfile)
	api.Get("/users/:username", s.GetUserProfile)
	api.Get("/features", s.OptionalAuth(), s.GetFeatureFlags)

	protected := api.Group("", s.AuthRequired())

	// Posts
	posts := protected.Group("/posts")
	posts.Post("/", s.limiter.Handler("create_post", createPostLimit, time.Minute), s.CreatePost)
	posts.Post("/:id/like", s.limiter.Handler("clap", clapLimit, time.Minute), s.ClapPost)
	posts.Post("/:id/bookmark", s.ToggleBookmark)
	posts.Post("/:id/comment", s.limiter.Handler("comment", commentLimit, time.Minute), s.CreateComment)
	protected.Post("/comments/:id", s.limiter.Handler("comment", commentLimit, time.Minute), s.CreateComment)

	protected.Get("/bookmarks", s.GetBookmarks)

	// Users
	users := protected.Group("/users")
	users.Put("/me", s.UpdateMyProfile)
	users.Post("/:id/follow", s.ToggleFollow)

	protected.Get("/follows", s.GetFollows)

	// Notifications
	notifications := protected.Group("/notifications")
	notifications.Get("/", s.GetNotifications)
	notifications.Post("/mark-all-read", s.MarkAllNotificationsRead)
	notifications.Post("/:id/read", s.MarkNotificationRead)

	protected.Get("/search", s.RequireFeature(featureflags.Search), s.limiter.Handler("search", searchLimit, time.Minute), s.Search)

	// Uploads
	uploads := protected.Group("/uploads", s.RequireFeature(featureflags.Uploads))
	uploads.Post("/", s.limiter.Handler("upload", uploadLimit, time.Minute), s.UploadImages)
	uploads.Delete("/*", s.DeleteUpload)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional, so
// a missing client is reported as disabled rather than unhealthy.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := database.Ping(ctx, s.db); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
			"events":   s.publisher.Backend(),
		},
		"time": time.Now(),
	})
}

// AuthRequired verifies the bearer token and resolves it to a local user,
// creating the user on first sight.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := middleware.BearerToken(c)
		if token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Authorization required")
		}
		if err := s.authenticate(c, token); err != nil {
			return err
		}
		return c.Next()
	}
}

// OptionalAuth identifies the caller when a valid token is present. An
// invalid token is treated as anonymous.
func (s *Server) OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := middleware.BearerToken(c); token != "" {
			if err := s.authenticate(c, token); err != nil {
				middleware.Logger.DebugContext(c.UserContext(), "ignoring invalid optional token",
					slog.String("error", err.Error()))
			}
		}
		return c.Next()
	}
}

func (s *Server) authenticate(c *fiber.Ctx, token string) error {
	id, err := s.verifier.Verify(c.UserContext(), token)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired token")
	}
	user, err := s.userService.EnsureUser(c.UserContext(), *id)
	if err != nil {
		return err
	}
	middleware.SetUserID(c, user.ID)
	return nil
}

// Start serves on the configured port until Shutdown.
func (s *Server) Start() error {
	app := s.App()
	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown drains the HTTP server and releases every resource the server
// was given.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http server: %w", err))
		}
	}

	if err := s.publisher.Close(); err != nil {
		errs = append(errs, fmt.Errorf("event publisher: %w", err))
	}

	if err := database.Close(s.db); err != nil {
		errs = append(errs, fmt.Errorf("database: %w", err))
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return errors.Join(errs...)
}
