package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/narrative-weaver/internal/interface/middleware"
	"github.com/oksasatya/narrative-weaver/pkg/helpers"
)

// Guard carries what authenticated routes need. Redis may be nil; Users is
// then consulted on every request.
type Guard struct {
	JWT   *helpers.JWTManager
	Redis *redis.Client
	Users middleware.UserLookup
}

// protected is the bearer check plus the per-user limiter every
// authenticated route shares.
func (g Guard) protected() []gin.HandlerFunc {
	return []gin.HandlerFunc{
		middleware.Auth(g.Redis, g.JWT, g.Users),
		middleware.RateLimit(g.Redis, 120, time.Minute, middleware.KeyByUser("api"), nil),
	}
}
