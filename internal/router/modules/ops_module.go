package modules

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/narrative-weaver/internal/infrastructure/metrics"
	"github.com/oksasatya/narrative-weaver/internal/interface/middleware"
)

// HealthModule serves GET /health.
type HealthModule struct{}

func NewHealthModule() *HealthModule { return &HealthModule{} }

func (m *HealthModule) Register(rg *gin.RouterGroup) {
	rg.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
}

// MetricsModule serves the Prometheus registry, rate-limited per IP except
// for private scrapers. Register it at the engine root.
type MetricsModule struct {
	Metrics *metrics.Metrics
	Redis   *redis.Client
}

func NewMetricsModule(m *metrics.Metrics, rdb *redis.Client) *MetricsModule {
	return &MetricsModule{Metrics: m, Redis: rdb}
}

func (m *MetricsModule) Register(rg *gin.RouterGroup) {
	if m.Metrics == nil {
		return
	}
	rl := middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByIPAndPath(), middleware.AllowPrivateIP())
	rg.GET("/metrics", rl, gin.WrapH(m.Metrics.Handler()))
}
