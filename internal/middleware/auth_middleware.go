package middleware

import (
	"context"
	"net/http"
	"strings"

	"ondot-chat/internal/services"
	"ondot-chat/internal/transport/httpdto"
	ondot_errors "ondot-chat/pkg/errors"
	"ondot-chat/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Authenticator validates a bearer token and its session.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (services.Identity, error)
}

func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := auth.Authenticate(c.Request.Context(), BearerToken(c.Request))
		if err != nil {
			c.AbortWithStatusJSON(ondot_errors.HTTPStatus(err), httpdto.FromError(err))
			return
		}

		ctx := services.WithIdentity(c.Request.Context(), identity)
		ctx = context.WithValue(ctx, logger.UserIdKey, identity.UserID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// BearerToken extracts the token of an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	value := r.Header.Get("Authorization")
	parts := strings.SplitN(value, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
