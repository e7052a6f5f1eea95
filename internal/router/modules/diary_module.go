package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/narrative-weaver/internal/interface/http"
)

// DiaryModule wires /diary. Every route requires a bearer token.
type DiaryModule struct {
	Handler *handlers.DiaryHandler
	Guard   Guard
}

func NewDiaryModule(h *handlers.DiaryHandler, g Guard) *DiaryModule {
	return &DiaryModule{Handler: h, Guard: g}
}

func (m *DiaryModule) Register(rg *gin.RouterGroup) {
	diary := rg.Group("/diary", m.Guard.protected()...)
	{
		diary.GET("", m.Handler.List)
		diary.POST("", m.Handler.Create)
		diary.GET("/search", m.Handler.Search)
		diary.POST("/images", m.Handler.UploadImage)
		diary.PUT("/:id", m.Handler.Update)
		diary.DELETE("/:id", m.Handler.Delete)
	}
}
