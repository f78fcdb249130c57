package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hazchem/backend/internal/infrastructure/config"
	"github.com/hazchem/backend/internal/infrastructure/logger"
	"github.com/hazchem/backend/internal/interfaces/http/dto"
	"github.com/hazchem/backend/internal/interfaces/http/handler"
	"github.com/hazchem/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// MetricsSink records requests and exposes them for scraping
type MetricsSink interface {
	middleware.RequestRecorder
	Handler() http.Handler
}

// EngineConfig holds what the engine needs besides the route handlers
type EngineConfig struct {
	Logger        *zap.Logger
	HTTP          config.HTTPConfig
	Tracing       middleware.TracingConfig
	Metrics       MetricsSink // nil disables request metrics and the scrape endpoint
	MetricsPath   string
	Authenticator middleware.Authenticator
	Database      handler.Pinger
}

// NewEngine builds the gin engine with the middleware chain, /health,
// the metrics endpoint and every registrar under /api/v1. The returned
// func releases background resources.
func NewEngine(cfg EngineConfig, registrars ...RouteRegistrar) (*gin.Engine, func()) {
	middleware.SetupValidator()

	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Order matters: the request ID must exist before the access log binds
	// it, and the span must exist before the access log reads the trace ID.
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.Tracing(cfg.Tracing))
	engine.Use(logger.AccessLog(log))
	if cfg.Metrics != nil {
		engine.Use(middleware.Metrics(cfg.Metrics))
	}
	engine.Use(middleware.Secure())

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORS(cors))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	stop := func() {}
	if cfg.HTTP.RateLimitEnabled && cfg.HTTP.RateLimitRequests > 0 {
		window := cfg.HTTP.RateLimitWindow
		if window <= 0 {
			window = time.Minute
		}
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, window)
		engine.Use(middleware.RateLimit(limiter))
		stop = limiter.Stop
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", window))
	}

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(http.StatusNotFound, "接口不存在"))
	})

	var scrape http.Handler
	if cfg.Metrics != nil {
		scrape = cfg.Metrics.Handler()
	}
	metricsPath := cfg.MetricsPath
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	handler.NewSystemHandler(cfg.Database, scrape).Mount(engine, metricsPath)

	r := NewRouter(engine, WithAPIVersion("v1"))
	r.Use(
		middleware.JWT(middleware.JWTConfig{
			Authenticator: cfg.Authenticator,
			SkipPaths:     middleware.DefaultSkipPaths,
		}),
		middleware.SpanAttributes(),
	)
	r.Register(registrars...)
	r.Setup()

	return engine, stop
}
