package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	_ "github.com/meetnotes-team/meetnotes/docs"
	pkgvalidator "github.com/meetnotes-team/meetnotes/pkg/validator"

	"github.com/meetnotes-team/meetnotes/internal/adapter/handler"
	"github.com/meetnotes-team/meetnotes/internal/adapter/repository"
	"github.com/meetnotes-team/meetnotes/internal/domain/repositories"
	"github.com/meetnotes-team/meetnotes/internal/infrastructure/cache"
	"github.com/meetnotes-team/meetnotes/internal/infrastructure/database"
	"github.com/meetnotes-team/meetnotes/internal/infrastructure/external/msgraph"
	"github.com/meetnotes-team/meetnotes/internal/infrastructure/storage"
	"github.com/meetnotes-team/meetnotes/internal/usecase/minutes"
	"github.com/meetnotes-team/meetnotes/internal/usecase/pipeline"
	"github.com/meetnotes-team/meetnotes/internal/usecase/tracker"
	"github.com/meetnotes-team/meetnotes/internal/usecase/transcripts"
	pkgai "github.com/meetnotes-team/meetnotes/pkg/ai"
	"github.com/meetnotes-team/meetnotes/pkg/config"
	"github.com/meetnotes-team/meetnotes/pkg/jwt"
)

// @title           MeetNotes API
// @version         1.0
// @description     Post-call meeting minutes service: tracks call lifecycle notifications, collects transcripts and generates structured minutes.

// @host      localhost:8080
// @BasePath  /v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Echo instance
	e := echo.New()

	// Register validator for request validation
	e.Validator = pkgvalidator.New()

	e.HideBanner = true
	e.HidePort = false

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))

	// Recover from panics
	e.Use(middleware.Recover())

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	log.Println("🔧 Initializing dependencies...")

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize Database
	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	// Run AutoMigrate only when explicitly enabled in config.
	// Production deployments should manage schema via sql-migrate.
	if cfg.Database.AutoMigrate {
		if cfg.Server.Environment == "production" {
			log.Fatalf("AutoMigrate is enabled in production. Disable DB_AUTO_MIGRATE or manage schema with sql-migrate.")
		}
		log.Println("🔄 Applying migrations (development only) ...")
		if err := database.AutoMigrate(db); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	} else {
		log.Println("🔄 Skipping migrations; use sql-migrate for schema migrations in CI/CD/production")
	}

	// Call store: Redis when configured, in-process memory otherwise.
	var callStore repositories.CallStore
	if cfg.Redis.Host != "" {
		log.Println("📦 Connecting to Redis...")
		redisClient, err := cache.NewRedisClient(&cfg.Redis)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		callStore = cache.NewRedisCallStore(redisClient, 0)
	} else {
		log.Println("📦 Redis not configured, using in-memory call store")
		callStore = cache.NewMemoryCallStore(0)
	}

	// Initialize repositories
	log.Println("⚙️  Initializing repositories...")
	jobRepo := repository.NewMinutesJobRepository(db)

	// Platform client serves both call info and transcript retrieval.
	log.Println("☁️  Initializing platform client...")
	graphClient := msgraph.NewClient(&cfg.Graph, logger)

	// Optional transcript archive.
	var archive pipeline.Archiver
	var artifactStore handler.ArtifactStore
	if cfg.Storage.Endpoint != "" {
		log.Println("🗄️  Initializing transcript archive...")
		transcriptArchive, err := storage.NewTranscriptArchive(&cfg.Storage)
		if err != nil {
			log.Fatalf("Failed to initialize transcript archive: %v", err)
		}
		archive = transcriptArchive
		artifactStore = transcriptArchive
	} else {
		log.Println("🗄️  Object storage not configured, transcript archiving disabled")
	}

	// Generation stack
	log.Println("🤖 Initializing minutes generator...")
	llmClient := pkgai.NewClient(&cfg.LLM)
	generator := minutes.NewGenerator(llmClient, logger)

	poller := transcripts.NewPoller(graphClient, cfg.Pipeline.PollMaxAttempts, cfg.Pipeline.PollInterval, logger)

	pipelineSvc := pipeline.NewService(jobRepo, graphClient, poller, generator, archive, cfg, logger)

	callTracker := tracker.NewTracker(graphClient, callStore, pipelineSvc, logger)

	// Initialize JWT manager for the manual API surface
	log.Println("🔑 Initializing JWT manager...")
	jwtManager := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Expiry)
	if cfg.Server.Environment != "production" {
		if token, err := jwtManager.GenerateToken("dev-client", "admin"); err == nil {
			log.Printf("🔑 Development service token: %s", token)
		}
	}

	// Handlers and routes
	log.Println("🛣️  Setting up routes...")
	handler.SetExposeErrorDetail(cfg.Server.Environment != "production")
	webhookHandler := handler.NewWebhookHandler(callTracker, cfg.Graph.ClientState, logger)
	minutesController := handler.NewMinutesController(graphClient, pipelineSvc, generator, jobRepo, artifactStore, cfg.Pipeline.MaxUploadBytes, logger)

	router := handler.NewRouter(cfg, webhookHandler, minutesController, jwtManager)
	router.Setup(e)

	// Start pipeline workers
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	if err := pipelineSvc.StartWorkerPool(workerCtx, cfg.Pipeline.Workers); err != nil {
		log.Fatalf("Failed to start worker pool: %v", err)
	}

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("🚀 Starting server on %s", addr)
		log.Printf("📝 Environment: %s", cfg.Server.Environment)
		log.Printf("🔗 Health check: http://%s/health", addr)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	if err := pipelineSvc.StopWorkerPool(); err != nil {
		log.Printf("Failed to stop worker pool: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}
