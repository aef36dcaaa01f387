package handler

import (
	"net/http"

	"ondot-chat/internal/services"
	"ondot-chat/internal/transport/httpdto"
	ondot_errors "ondot-chat/pkg/errors"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	auth *services.AuthService
}

func NewSessionHandler(auth *services.AuthService) *SessionHandler {
	return &SessionHandler{auth: auth}
}

// Revoke signs the caller out by revoking the session behind their token.
// Later requests and connection attempts with it are refused; connections
// already open stay up until they close.
func (h *SessionHandler) Revoke(c *gin.Context) {
	identity, ok := services.IdentityFromContext(c.Request.Context())
	if !ok {
		respondError(c, ondot_errors.ErrUnauthorized)
		return
	}
	if err := h.auth.RevokeSession(c.Request.Context(), identity.SessionID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"revoked": true}))
}
