package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/narrative-weaver/internal/interface/http"
	"github.com/oksasatya/narrative-weaver/internal/interface/middleware"
)

// AIModule wires the summary endpoints with a tighter per-user limit, since
// each call reaches the paid generator.
type AIModule struct {
	Handler *handlers.AIHandler
	Guard   Guard
}

func NewAIModule(h *handlers.AIHandler, g Guard) *AIModule {
	return &AIModule{Handler: h, Guard: g}
}

func (m *AIModule) Register(rg *gin.RouterGroup) {
	ai := rg.Group("/ai", m.Guard.protected()...)
	ai.Use(middleware.RateLimit(m.Guard.Redis, 10, time.Minute, middleware.KeyByUser("ai"), nil))
	{
		ai.GET("/summary", m.Handler.Summary)
		ai.GET("/deeper-analysis", m.Handler.DeeperAnalysis)
	}
}
