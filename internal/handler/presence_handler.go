package handler

import (
	"fmt"
	"net/http"
	"strings"

	"ondot-chat/internal/services"
	"ondot-chat/internal/transport/httpdto"
	ondot_errors "ondot-chat/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

const maxPresenceQuery = 100

type PresenceHandler struct {
	service *services.PresenceService
}

func NewPresenceHandler(service *services.PresenceService) *PresenceHandler {
	return &PresenceHandler{service: service}
}

// Lookup answers GET /v1/presence?user_ids=a,b
func (h *PresenceHandler) Lookup(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	raw := lo.Compact(lo.Map(strings.Split(c.Query("user_ids"), ","), func(s string, _ int) string {
		return strings.TrimSpace(s)
	}))
	if len(raw) == 0 || len(raw) > maxPresenceQuery {
		respondError(c, fmt.Errorf("user_ids must list 1 to %d ids: %w", maxPresenceQuery, ondot_errors.ErrInvalidInput))
		return
	}

	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			respondError(c, fmt.Errorf("user id %q: %w", s, ondot_errors.ErrInvalidInput))
			return
		}
		ids = append(ids, id)
	}

	online, err := h.service.OnlineSet(c.Request.Context(), ids)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.PresenceResponse{
		Online: lo.MapKeys(online, func(_ bool, id uuid.UUID) string { return id.String() }),
	}))
}
