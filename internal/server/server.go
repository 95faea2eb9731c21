package server

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/mansoorceksport/workoutlog/internal/config"
	"github.com/mansoorceksport/workoutlog/internal/domain"
	"github.com/mansoorceksport/workoutlog/internal/handler"
	"github.com/mansoorceksport/workoutlog/internal/logger"
	"github.com/mansoorceksport/workoutlog/internal/middleware"
	"github.com/mansoorceksport/workoutlog/internal/repository"
	"github.com/mansoorceksport/workoutlog/internal/service"
	"github.com/mansoorceksport/workoutlog/internal/telemetry"
	"github.com/redis/go-redis/v9"
)

const idempotencyTTL = 24 * time.Hour

// AppDependencies holds the dependencies required to start the application
type AppDependencies struct {
	Config      *config.Config
	Logger      *logger.Logger
	Storage     *repository.Storage
	RedisClient *redis.Client         // optional: enables plan caching and idempotency
	Archive     domain.FileRepository // optional: keeps a copy of every imported CSV
}

// NewApp creates and configures the Fiber application with the given dependencies
func NewApp(deps AppDependencies) (*fiber.App, error) {
	cfg := deps.Config
	log := deps.Logger
	if log == nil {
		log = logger.NewNop()
	}

	location, err := cfg.App.Location()
	if err != nil {
		return nil, err
	}

	storage := deps.Storage
	if deps.RedisClient != nil {
		storage.WithPlanCache(repository.NewRedisCacheRepository(deps.RedisClient))
	}

	// Initialize services
	authService := service.NewAuthService(storage.Users, cfg.JWT)
	planService := service.NewPlanService(storage.Transactor, storage.Plans, storage.PlanItems, storage.Exercises, storage.WorkoutLogs)
	exerciseService := service.NewExerciseService(storage.Exercises, storage.PlanItems)
	importService := service.NewPlanImportService(storage.Transactor, storage.Plans, storage.Exercises, storage.PlanItems, deps.Archive, log)
	logService := service.NewWorkoutLogService(storage.Transactor, storage.Plans, storage.PlanItems, storage.Exercises, storage.WorkoutLogs, storage.SetLogs, location)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	planHandler := handler.NewPlanHandler(planService, importService, cfg.Server.MaxUploadSizeMB)
	exerciseHandler := handler.NewExerciseHandler(exerciseService)
	workoutHandler := handler.NewWorkoutHandler(logService)

	app := fiber.New(fiber.Config{
		AppName:      "Workout Log API",
		BodyLimit:    int(cfg.Server.MaxUploadSizeMB * 1024 * 1024),
		ErrorHandler: customErrorHandler(log),
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Correlation-ID",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
	app.Use(telemetry.FiberMiddleware(middleware.UserIDKey))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"service": "workoutlog",
		})
	})

	v1 := app.Group("/v1")

	auth := v1.Group("/auth")
	auth.Post("/login", authHandler.Login)

	// ===========================================
	// MEMBER API - /v1/me/*
	// ===========================================
	me := v1.Group("/me")
	me.Use(middleware.VerifyToken(cfg.JWT.Secret))
	me.Use(middleware.AuthorizeRole(domain.RoleMember, domain.RoleAdmin))
	if deps.RedisClient != nil {
		me.Use(middleware.IdempotencyMiddleware(deps.RedisClient, idempotencyTTL))
	}

	me.Get("/today", workoutHandler.Today)
	me.Post("/today", workoutHandler.Submit)

	// ===========================================
	// ADMIN API - /v1/admin/*
	// ===========================================
	admin := v1.Group("/admin")
	admin.Use(middleware.VerifyToken(cfg.JWT.Secret))
	admin.Use(middleware.AuthorizeRole(domain.RoleAdmin))
	if deps.RedisClient != nil {
		admin.Use(middleware.IdempotencyMiddleware(deps.RedisClient, idempotencyTTL))
	}

	plans := admin.Group("/plans")
	plans.Get("/", planHandler.ListPlans)
	plans.Post("/", planHandler.CreatePlan)
	plans.Get("/:id", planHandler.GetPlan)
	plans.Put("/:id", planHandler.UpdatePlan)
	plans.Delete("/:id", planHandler.DeletePlan)
	plans.Post("/:id/import", planHandler.ImportCSV)

	exercises := admin.Group("/exercises")
	exercises.Get("/", exerciseHandler.ListExercises)
	exercises.Post("/", exerciseHandler.CreateExercise)
	exercises.Put("/:id", exerciseHandler.UpdateExercise)
	exercises.Delete("/:id", exerciseHandler.DeleteExercise)

	return app, nil
}

func customErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		var e *fiber.Error
		if errors.As(err, &e) {
			code = e.Code
		}
		if code >= fiber.StatusInternalServerError {
			log.Error("unhandled request error", "path", c.Path(), "error", err)
		}
		return c.Status(code).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
}
