package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/narrative-weaver/internal/domain/entity"
	"github.com/oksasatya/narrative-weaver/internal/domain/repository"
	"github.com/oksasatya/narrative-weaver/pkg/helpers"
	"github.com/oksasatya/narrative-weaver/pkg/response"
)

// CtxUserID is the gin context key holding the authenticated user id.
const CtxUserID = "userID"

// UserLookup resolves a token subject to a stored account.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
}

func unauthorized(c *gin.Context, msg string) {
	response.Error[any](c, http.StatusUnauthorized, msg, nil)
	c.Abort()
}

// Auth validates the bearer token. With Redis configured it requires an
// active session for the user; without it the user must still exist in
// users. It sets userID, userName and userEmail in the Gin context.
func Auth(rdb *redis.Client, jwt *helpers.JWTManager, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			unauthorized(c, "Not authorized, no token")
			return
		}
		claims, err := jwt.ParseToken(strings.TrimSpace(token))
		if err != nil {
			unauthorized(c, "Not authorized, token failed")
			return
		}

		if rdb != nil {
			data, err := helpers.GetSession(c.Request.Context(), rdb, claims.UserID)
			if err != nil || len(data) == 0 {
				unauthorized(c, "Not authorized, session expired")
				return
			}
			c.Set("userName", data["name"])
			c.Set("userEmail", data["email"])
		} else if users != nil {
			u, err := users.GetByID(c.Request.Context(), claims.UserID)
			if errors.Is(err, repository.ErrNotFound) {
				unauthorized(c, "Not authorized")
				return
			}
			if err != nil {
				_ = c.Error(err)
				response.Error[any](c, http.StatusInternalServerError, "Server error", nil)
				c.Abort()
				return
			}
			c.Set("userName", u.Name)
			c.Set("userEmail", u.Email)
		}

		c.Set(CtxUserID, claims.UserID)
		c.Next()
	}
}
