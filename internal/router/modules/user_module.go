package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/narrative-weaver/internal/interface/http"
	"github.com/oksasatya/narrative-weaver/internal/interface/middleware"
)

// UserModule wires account routes.
// Public: POST /users/register, POST /users/login
// Protected: GET/PUT/DELETE /users/profile, PUT /users/change-password
type UserModule struct {
	Handler *handlers.UserHandler
	Guard   Guard
}

func NewUserModule(h *handlers.UserHandler, g Guard) *UserModule {
	return &UserModule{Handler: h, Guard: g}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	users := rg.Group("/users")

	credLimiter := middleware.RateLimit(m.Guard.Redis, 10, time.Minute, middleware.KeyByIPAndPath(), nil) // 10 req/min per IP
	users.POST("/register", credLimiter, m.Handler.Register)
	users.POST("/login", credLimiter, m.Handler.Login)

	auth := users.Group("/", m.Guard.protected()...)
	{
		auth.GET("/profile", m.Handler.GetProfile)
		auth.PUT("/profile", m.Handler.UpdateProfile)
		auth.DELETE("/profile", m.Handler.DeleteAccount)
		auth.PUT("/change-password", m.Handler.ChangePassword)
	}
}
