package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benvon/ordia/api/openapi"
	"github.com/benvon/ordia/internal/auth"
	"github.com/benvon/ordia/internal/config"
	"github.com/benvon/ordia/internal/database"
	"github.com/benvon/ordia/internal/handlers"
	"github.com/benvon/ordia/internal/logger"
	"github.com/benvon/ordia/internal/metrics"
	"github.com/benvon/ordia/internal/middleware"
	"github.com/benvon/ordia/internal/services/tracker"
	"github.com/benvon/ordia/internal/telemetry"
	"github.com/gorilla/mux"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

const serviceName = "ordia-api"

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.ServerDebugMode || *debugFlag

	zapLogger, err := logger.New(cfg.LogFormat, debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = logger.Sync(zapLogger)
	}()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("frontend_url", cfg.FrontendURL),
		zap.String("timezone", cfg.Location.String()),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
		zap.Bool("metrics_enabled", cfg.MetricsEnabled),
	)

	var tracerProvider *sdktrace.TracerProvider
	if cfg.OTELEnabled {
		if cfg.OTELEndpoint == "" {
			zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		} else {
			tp, err := telemetry.InitTracer(context.Background(), serviceName, handlers.Version, cfg.OTELEndpoint)
			if err != nil {
				zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
			} else {
				tracerProvider = tp
				zapLogger.Info("otel_tracer_initialized", zap.String("endpoint", cfg.OTELEndpoint))
				defer func() {
					shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer shutdownCancel()
					if err := telemetry.Shutdown(shutdownCtx, tracerProvider); err != nil {
						zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
					}
				}()
			}
		}
	}

	dbOpts := database.DefaultOptions()
	dbOpts.MaxOpenConns = cfg.DBMaxOpenConns
	dbOpts.MaxIdleConns = cfg.DBMaxIdleConns
	db, err := database.New(cfg.DatabaseURL, dbOpts)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_database")

	if cfg.RunMigrations {
		if err := db.Migrate(); err != nil {
			zapLogger.Fatal("failed_to_apply_migrations", zap.Error(err))
		}
		version, dirty, err := db.SchemaVersion()
		if err != nil {
			zapLogger.Warn("failed_to_read_schema_version", zap.Error(err))
		} else {
			zapLogger.Info("migrations_applied", zap.Uint("schema_version", version), zap.Bool("dirty", dirty))
		}
	}

	// Repositories
	userRepo := database.NewUserRepository(db)
	todoRepo := database.NewTodoRepository(db)
	habitRepo := database.NewHabitRepository(db)
	completionRepo := database.NewHabitCompletionRepository(db)
	logRepo := database.NewDailyLogRepository(db)
	corsConfigRepo := database.NewCorsConfigRepository(db)

	// Auth
	issuer, err := auth.NewTokenIssuer(cfg.SecretKey)
	if err != nil {
		zapLogger.Fatal("failed_to_create_token_issuer", zap.Error(err))
	}
	resolver := auth.NewResolver(issuer, userRepo)

	// Services. Handlers parse dates in the same location the services
	// compute day ranges in.
	habitService := tracker.NewHabitService(habitRepo, completionRepo, tracker.WithLocation(cfg.Location))
	logService := tracker.NewLogService(logRepo, tracker.WithLocation(cfg.Location))

	routes := handlers.Routes{
		Auth:    handlers.NewAuthHandler(userRepo, resolver, issuer, cfg.AccessTokenTTL, zapLogger),
		Todos:   handlers.NewTodoHandler(todoRepo, cfg.Location, zapLogger),
		Habits:  handlers.NewHabitHandler(habitService, cfg.Location, zapLogger),
		Logs:    handlers.NewLogHandler(logService, cfg.Location, zapLogger),
		Health:  handlers.NewHealthChecker(db, cfg.ProjectName),
		Version: handlers.NewVersionHandler(db, zapLogger),
		OpenAPI: handlers.NewOpenAPIHandler(openapi.Document),
	}
	if cfg.MetricsEnabled {
		routes.Metrics = metrics.Handler()
	}

	r := mux.NewRouter()

	// mux runs middleware in registration order, the first one is outermost
	zapLogger.Info("setting_up_middleware")
	if tracerProvider != nil {
		r.Use(telemetry.Middleware(serviceName))
		zapLogger.Info("otel_middleware_enabled")
	}
	if cfg.MetricsEnabled {
		r.Use(metrics.InstrumentHandler)
	}
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	corsReloader := middleware.NewCORSReloader(corsConfigRepo, cfg.FrontendURL, zapLogger, cfg.CORSReloadInterval)
	r.Use(corsReloader.Middleware())
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	r.Use(middleware.ContentType)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.Audit(zapLogger))
	r.Use(middleware.Logging(zapLogger))

	routes.Register(r, middleware.Auth(resolver, zapLogger))

	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        r,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   35 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	reloadCtx, reloadCancel := context.WithCancel(context.Background())
	defer reloadCancel()
	go corsReloader.Start(reloadCtx)

	go func() {
		zapLogger.Info("server_starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")
	reloadCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}
