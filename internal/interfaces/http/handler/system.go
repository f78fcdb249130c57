package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hazchem/backend/internal/infrastructure/logger"
	"github.com/hazchem/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Pinger reports whether a dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthStatus is the data of the health endpoint
type HealthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Time     string `json:"time"`
}

// SystemHandler serves the unauthenticated operational endpoints
type SystemHandler struct {
	BaseHandler
	db      Pinger
	metrics http.Handler
}

// NewSystemHandler creates a SystemHandler; metrics may be nil
func NewSystemHandler(db Pinger, metrics http.Handler) *SystemHandler {
	return &SystemHandler{db: db, metrics: metrics}
}

// Mount registers /health and, when enabled, the metrics path
func (h *SystemHandler) Mount(engine *gin.Engine, metricsPath string) {
	engine.GET("/health", h.Health)
	if h.metrics != nil {
		engine.GET(metricsPath, gin.WrapH(h.metrics))
	}
}

// Health pings the database when one is configured
// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response{data=HealthStatus}
// @Failure      503 {object} dto.Response{data=HealthStatus}
// @Router       /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	now := time.Now().Format(time.RFC3339)
	if h.db == nil {
		h.Success(c, HealthStatus{Status: "healthy", Database: "unchecked", Time: now})
		return
	}
	if err := h.db.Ping(ctx); err != nil {
		logger.FromContext(c.Request.Context()).Warn("Health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, dto.NewErrorResponseWithData(http.StatusServiceUnavailable, "服务不可用",
			HealthStatus{Status: "unhealthy", Database: "error", Time: now}))
		return
	}
	h.Success(c, HealthStatus{Status: "healthy", Database: "ok", Time: now})
}
