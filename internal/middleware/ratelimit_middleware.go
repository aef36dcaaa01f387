package middleware

import (
	"context"
	"strconv"

	"ondot-chat/internal/redis"
	"ondot-chat/internal/services"
	"ondot-chat/internal/transport/httpdto"
	ondot_errors "ondot-chat/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LimitFunc checks one user's budget for an action.
type LimitFunc func(ctx context.Context, userID string) (*redis.RateLimitResult, error)

// UserRateLimitMiddleware applies a per-user limit. It must run after
// AuthMiddleware and lets requests through when the limiter is down.
func UserRateLimitMiddleware(allow LimitFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := services.IdentityFromContext(c.Request.Context())
		if !ok || allow == nil {
			c.Next()
			return
		}

		result, err := allow(c.Request.Context(), identity.UserID.String())
		if err != nil {
			zap.L().Warn("rate limiter unavailable", zap.String("path", c.FullPath()), zap.Error(err))
			c.Next()
			return
		}

		setRateLimitHeaders(c, result)

		if !result.Allowed {
			c.AbortWithStatusJSON(ondot_errors.HTTPStatus(ondot_errors.ErrRateLimited), httpdto.FromError(ondot_errors.ErrRateLimited))
			return
		}

		c.Next()
	}
}

func setRateLimitHeaders(c *gin.Context, result *redis.RateLimitResult) {
	c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	c.Header("X-RateLimit-Reset", strconv.Itoa(int(result.ResetIn.Seconds())))
}
