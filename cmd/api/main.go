package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"appreview/roster-evaluator/internal/config"
	"appreview/roster-evaluator/internal/handlers"
	"appreview/roster-evaluator/internal/logger"
	"appreview/roster-evaluator/internal/repositories"
	"appreview/roster-evaluator/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	zlog, err := logger.New(cfg.Server.Env == "production", cfg.Server.Debug)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zlog.Sync()
	zlog.Info("config loaded", zap.String("env", cfg.Server.Env))

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		zlog.Fatal("failed to initialize database", zap.Error(err))
	}
	zlog.Info("database initialized")

	// Initialize repositories
	ownerRepo := repositories.NewOwnerRepository(db)
	sessionRepo := repositories.NewSessionRepository(db)
	evalRepo := repositories.NewEvaluationRepository(db)
	criteriaRepo := repositories.NewCriteriaRepository(db)

	// Initialize services
	fileStore := services.NewHTTPFileStore(cfg.FileStore, cfg.Pipeline, zlog)
	pdfParser := services.NewPDFParser()

	geminiService, err := services.NewGeminiService(context.Background(), cfg.Gemini, zlog)
	if err != nil {
		zlog.Fatal("failed to initialize Gemini", zap.Error(err))
	}
	zlog.Info("Gemini initialized", zap.String("model", cfg.Gemini.Model))

	extractor := services.NewContentExtractor(
		fileStore,
		pdfParser,
		geminiService,
		cfg.Pipeline.ExtractionTimeout,
		zlog,
	)

	evaluator := services.NewEvaluatorService(
		extractor,
		geminiService,
		cfg.Pipeline.ScoringTimeout,
		zlog,
	)

	scheduler := services.NewBatchScheduler(
		evaluator,
		evalRepo,
		cfg.Pipeline.BatchSize,
		cfg.Pipeline.MaxConcurrency,
		zlog,
	)

	registry := services.NewTrackerRegistry()

	pipeline := services.NewPipelineService(
		ownerRepo,
		sessionRepo,
		criteriaRepo,
		scheduler,
		registry,
		zlog,
	)
	zlog.Info("pipeline initialized",
		zap.Int("batch_size", cfg.Pipeline.BatchSize),
		zap.Int("max_concurrency", cfg.Pipeline.MaxConcurrency))

	// Initialize handlers
	evaluateHandler := handlers.NewEvaluateHandler(pipeline, cfg.Upload.MaxFileSize)
	criteriaHandler := handlers.NewCriteriaHandler(ownerRepo, criteriaRepo)
	sessionHandler := handlers.NewSessionHandler(ownerRepo, sessionRepo, evalRepo, pipeline)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Roster Evaluator API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    int(cfg.Upload.MaxFileSize),
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Routes
	api := app.Group("/api/v1")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	// API endpoints
	api.Post("/evaluate-candidates", evaluateHandler.HandleEvaluate)

	api.Get("/eligibility-criteria", criteriaHandler.HandleGet)
	api.Put("/eligibility-criteria", criteriaHandler.HandleUpdate)
	api.Post("/eligibility-criteria/validate", criteriaHandler.HandleValidate)

	api.Get("/sessions", sessionHandler.HandleListSessions)
	api.Get("/sessions/:id/candidates", sessionHandler.HandleSessionCandidates)
	api.Post("/sessions/:id/cancel", sessionHandler.HandleCancelSession)
	api.Delete("/sessions/:id", sessionHandler.HandleDeleteSession)

	api.Get("/candidates/:id", sessionHandler.HandleCandidate)

	api.Get("/owners/:email/candidates", sessionHandler.HandleOwnerCandidates)
	api.Delete("/owners/:email/sessions", sessionHandler.HandlePurgeOwner)

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Roster Evaluator API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/evaluate-candidates",
				"GET /api/v1/eligibility-criteria",
				"PUT /api/v1/eligibility-criteria",
				"GET /api/v1/sessions",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		zlog.Info("shutting down server")
		if err := app.Shutdown(); err != nil {
			zlog.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	zlog.Info("server starting", zap.String("addr", addr))

	if err := app.Listen(addr); err != nil {
		zlog.Fatal("failed to start server", zap.Error(err))
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
