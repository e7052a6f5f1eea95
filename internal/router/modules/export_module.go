package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/narrative-weaver/internal/interface/http"
)

type ExportModule struct {
	Handler *handlers.ExportHandler
	Guard   Guard
}

func NewExportModule(h *handlers.ExportHandler, g Guard) *ExportModule {
	return &ExportModule{Handler: h, Guard: g}
}

func (m *ExportModule) Register(rg *gin.RouterGroup) {
	rg.POST("/export", append(m.Guard.protected(), m.Handler.Export)...)
}
