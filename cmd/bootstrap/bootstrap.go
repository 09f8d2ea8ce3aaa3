package bootstrap

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"clinic-backend/config"
	deliveryHttp "clinic-backend/internal/delivery/http"
	"clinic-backend/internal/delivery/http/handler"
	"clinic-backend/internal/delivery/http/middleware"
	"clinic-backend/internal/infrastructure/cache"
	"clinic-backend/internal/infrastructure/database"
	"clinic-backend/internal/repository"
	"clinic-backend/internal/service"
	"clinic-backend/internal/usecase"
	"clinic-backend/pkg/jwt"
	"clinic-backend/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	DB          *gorm.DB
	RedisClient *redis.Client
	Server      *http.Server

	auditService service.AuditService
	limiters     []*middleware.RateLimiter
	purgeStop    chan struct{}
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	app := &App{purgeStop: make(chan struct{})}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg

	// Setup logger
	if err := setupLogger(cfg.Log); err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}
	logrus.Info("Configuration loaded successfully")

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db

	// Initialize Redis
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient

	// Initialize all layers
	app.initializeServer()

	return app, nil
}

// setupLogger configures the logrus logger. Logs are JSON formatted; when a
// log directory is configured, output is duplicated to a file there.
func setupLogger(cfg config.LogConfig) error {
	logrus.SetFormatter(&logrus.JSONFormatter{})

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	out := io.Writer(os.Stdout)
	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return err
		}
		file, err := os.OpenFile(filepath.Join(cfg.Dir, "app.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		out = io.MultiWriter(os.Stdout, file)
	}
	logrus.SetOutput(out)

	return nil
}

// initializeServer creates and configures the HTTP server
func (app *App) initializeServer() {
	cfg := app.Config
	db := app.DB
	redisClient := app.RedisClient

	// Initialize token service
	tokenService := jwt.NewTokenService(cfg.JWT)

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize repositories
	principalRepo := repository.NewPrincipalRepository()
	appointmentRepo := repository.NewAppointmentRepository()
	reportRepo := repository.NewReportRepository()
	complaintRepo := repository.NewComplaintRepository()
	paymentRepo := repository.NewPaymentRepository()
	auditLogRepo := repository.NewAuditLogRepository()

	// Initialize logger
	log := logrus.StandardLogger()

	// Initialize services
	auditService := service.NewAuditService(log, cfg.Log, auditLogRepo)
	app.auditService = auditService

	// Initialize usecases
	authUsecase := usecase.NewAuthUsecase(db, log, principalRepo, tokenService, auditService)
	userUsecase := usecase.NewUserUsecase(db, log, principalRepo, auditService)
	appointmentUsecase := usecase.NewAppointmentUsecase(db, log, appointmentRepo, auditService)
	reportUsecase := usecase.NewReportUsecase(db, log, reportRepo, auditService)
	complaintUsecase := usecase.NewComplaintUsecase(db, log, redisClient, complaintRepo, principalRepo, auditService)
	paymentUsecase := usecase.NewPaymentUsecase(db, log, redisClient, paymentRepo, appointmentRepo, auditService)

	// Initialize handlers
	secureCookie := cfg.App.Env == "production"
	authHandler := handler.NewAuthHandler(authUsecase, customValidator, secureCookie)
	userHandler := handler.NewUserHandler(userUsecase, customValidator)
	appointmentHandler := handler.NewAppointmentHandler(appointmentUsecase, customValidator)
	reportHandler := handler.NewReportHandler(reportUsecase, customValidator)
	complaintHandler := handler.NewComplaintHandler(complaintUsecase, customValidator)
	paymentHandler := handler.NewPaymentHandler(paymentUsecase, customValidator)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(tokenService, principalRepo, db)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.CORS.Origins)
	timeoutMiddleware := middleware.NewTimeoutMiddleware(cfg.App.RequestTimeout)
	authLimiter := middleware.NewRateLimiter(cfg.RateLimit.AuthLimit, cfg.RateLimit.Window)
	patientLimiter := middleware.NewRateLimiter(cfg.RateLimit.PatientLimit, cfg.RateLimit.Window)
	generalLimiter := middleware.NewRateLimiter(cfg.RateLimit.GeneralLimit, cfg.RateLimit.Window)
	app.limiters = []*middleware.RateLimiter{authLimiter, patientLimiter, generalLimiter}

	// Initialize router
	router := deliveryHttp.NewRouter(
		authHandler,
		userHandler,
		appointmentHandler,
		reportHandler,
		complaintHandler,
		paymentHandler,
		authMiddleware,
		corsMiddleware,
		timeoutMiddleware,
		authLimiter,
		patientLimiter,
		generalLimiter,
	)
	httpRouter := router.Setup()

	// Create server
	serverAddr := fmt.Sprintf(":%s", cfg.App.Port)
	app.Server = &http.Server{
		Addr:    serverAddr,
		Handler: httpRouter,
	}
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	// Start server in goroutine
	go func() {
		logrus.Infof("Server starting on port %s", app.Config.App.Port)
		logrus.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Purge expired audit records once a day
	go app.runAuditPurge()

	// Wait for interrupt signal
	app.waitForShutdown()
}

func (app *App) runAuditPurge() {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := app.auditService.PurgeExpired(app.DB, time.Now()); err != nil {
				logrus.Errorf("Audit purge failed: %v", err)
			}
		case <-app.purgeStop:
			return
		}
	}
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	// Close connections
	app.Close()

	logrus.Info("Server shutdown complete")
}

// Close closes all connections (database, redis, etc.)
func (app *App) Close() {
	close(app.purgeStop)

	for _, limiter := range app.limiters {
		limiter.Close()
	}

	// Close database connection
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	// Close Redis connection
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
