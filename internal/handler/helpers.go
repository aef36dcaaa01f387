package handler

import (
	"fmt"
	"strconv"

	"ondot-chat/internal/services"
	"ondot-chat/internal/transport/httpdto"
	ondot_errors "ondot-chat/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// currentUser returns the authenticated user set by AuthMiddleware.
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	identity, ok := services.IdentityFromContext(c.Request.Context())
	if !ok {
		respondError(c, ondot_errors.ErrUnauthorized)
		return uuid.Nil, false
	}
	return identity.UserID, true
}

func respondError(c *gin.Context, err error) {
	if ondot_errors.Kind(err) == ondot_errors.KindInternal {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(ondot_errors.HTTPStatus(err), httpdto.FromError(err))
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, fmt.Errorf("id %q: %w", c.Param("id"), ondot_errors.ErrInvalidInput))
		return 0, false
	}
	return id, true
}
