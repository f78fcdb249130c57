package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appchem "github.com/hazchem/backend/internal/application/chemical"
	appid "github.com/hazchem/backend/internal/application/identity"
	appinv "github.com/hazchem/backend/internal/application/inventory"
	appmov "github.com/hazchem/backend/internal/application/movement"
	"github.com/hazchem/backend/internal/infrastructure/auth"
	"github.com/hazchem/backend/internal/infrastructure/config"
	"github.com/hazchem/backend/internal/infrastructure/logger"
	"github.com/hazchem/backend/internal/infrastructure/metrics"
	"github.com/hazchem/backend/internal/infrastructure/migration"
	"github.com/hazchem/backend/internal/infrastructure/persistence"
	"github.com/hazchem/backend/internal/infrastructure/telemetry"
	"github.com/hazchem/backend/internal/interfaces/http/handler"
	"github.com/hazchem/backend/internal/interfaces/http/middleware"
	"github.com/hazchem/backend/internal/interfaces/http/router"
	"github.com/hazchem/backend/migrations"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

//	@title			Hazardous Chemical Inventory API
//	@version		1.0
//	@description	危化品库存管理系统后端 API：化学品、库存、入库、出库、使用记录与人员管理

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting hazardous chemical inventory backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("database", cfg.Database.Driver),
	)

	ctx := context.Background()

	tracer, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		_ = tracer.Shutdown(context.Background())
	}()

	db, err := persistence.NewDatabase(&cfg.Database, log, cfg.Log.Level)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	if err := prepareSchema(cfg, db, log); err != nil {
		log.Fatal("Failed to prepare database schema", zap.Error(err))
	}

	dbSystem := "postgresql"
	if cfg.Database.Driver == config.DriverSQLite {
		dbSystem = "sqlite"
	}
	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		DBSystem:        dbSystem,
		LogFullSQL:      !cfg.IsProduction(),
		SlowQueryThresh: cfg.Database.SlowThreshold,
	}, log)
	if err := dbTracing.Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	var defaultOperator *uuid.UUID
	if cfg.Auth.DefaultOperatorID != "" {
		id := uuid.MustParse(cfg.Auth.DefaultOperatorID)
		defaultOperator = &id
	}

	var registry *metrics.Registry
	var sink router.MetricsSink
	var stockMetrics appinv.Metrics
	if cfg.Metrics.Enabled {
		registry = metrics.New()
		sink = registry
		stockMetrics = registry
	}

	repos := persistence.NewRepositories(db.DB)
	scope := persistence.NewGormTransactionScope(db.DB)
	persons := persistence.NewGormPersonRepository(db.DB)
	reconciler := appinv.NewReconciler(stockMetrics)
	stockService := appinv.NewService(repos, scope, reconciler)

	blacklist, closeBlacklist := newBlacklist(ctx, cfg, log)
	defer closeBlacklist()

	authService := appid.NewAuthService(
		persons,
		persistence.NewGormRegisterRecordRepository(db.DB),
		auth.NewJWTService(cfg.JWT),
		blacklist,
		appid.AuthServiceConfig{VerifyPassword: cfg.Auth.LoginVerifyPassword},
	)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine, stopEngine := router.NewEngine(router.EngineConfig{
		Logger: log,
		HTTP:   cfg.HTTP,
		Tracing: middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		},
		Metrics:       sink,
		MetricsPath:   cfg.Metrics.Path,
		Authenticator: authService,
		Database:      db,
	},
		handler.NewAuthHandler(authService),
		handler.NewPersonHandler(appid.NewPersonService(persons)),
		handler.NewChemicalHandler(appchem.NewService(repos, scope)),
		handler.NewInventoryHandler(stockService),
		handler.NewStorageHandler(appmov.NewStorageService(repos, scope, reconciler, defaultOperator)),
		handler.NewOutboundHandler(appmov.NewOutboundService(repos, scope, reconciler, stockService, defaultOperator)),
		handler.NewUsageHandler(appmov.NewUsageService(repos, scope, reconciler, defaultOperator)),
	)
	defer stopEngine()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}

// prepareSchema applies the embedded migrations on PostgreSQL. SQLite
// deployments, and PostgreSQL with auto_migrate set, use GORM instead.
func prepareSchema(cfg *config.Config, db *persistence.Database, log *zap.Logger) error {
	if cfg.Database.Driver == config.DriverSQLite || cfg.Database.AutoMigrate {
		log.Info("Creating tables with GORM AutoMigrate")
		return db.AutoMigrate()
	}

	// The migrator closes the connection it is given, so it gets its own
	conn, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return err
	}
	m, err := migration.NewEmbedded(conn, migrations.FS, log)
	if err != nil {
		_ = conn.Close()
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("Failed to close migrator", zap.Error(err))
		}
	}()
	return m.Up()
}

// newBlacklist uses Redis when configured so that logouts hold across
// instances, and process memory otherwise
func newBlacklist(ctx context.Context, cfg *config.Config, log *zap.Logger) (auth.TokenBlacklist, func()) {
	if !cfg.Redis.Enabled {
		log.Warn("Redis disabled, token blacklist is kept in memory")
		return auth.NewInMemoryTokenBlacklist(), func() {}
	}
	blacklist, err := auth.NewRedisTokenBlacklist(ctx, cfg.Redis)
	if err != nil {
		log.Fatal("Failed to initialize token blacklist", zap.Error(err))
	}
	log.Info("Token blacklist backed by Redis",
		zap.String("host", cfg.Redis.Host),
		zap.Int("port", cfg.Redis.Port))
	return blacklist, func() {
		if err := blacklist.Close(); err != nil {
			log.Error("Error closing Redis", zap.Error(err))
		}
	}
}
