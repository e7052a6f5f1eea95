package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/narrative-weaver/internal/container"
	"github.com/oksasatya/narrative-weaver/internal/interface/middleware"
)

// NewEngine returns the gin engine with global middleware and every module
// registered.
func NewEngine(c *container.Container) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID(), middleware.RealIP())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     c.Config.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.Metrics(c.Metrics))
	if c.Config.HTTPLogEnabled {
		r.Use(middleware.AccessLog(c.Logger))
	}
	r.MaxMultipartMemory = 8 << 20

	reg := NewRegistry(r)
	InitModules(reg, c)
	reg.RegisterAll()
	return r
}
