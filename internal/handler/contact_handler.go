package handler

import (
	"fmt"
	"net/http"

	"ondot-chat/internal/domain/contact"
	"ondot-chat/internal/services"
	"ondot-chat/internal/transport/httpdto"
	ondot_errors "ondot-chat/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ContactHandler struct {
	service *services.ContactService
}

func NewContactHandler(service *services.ContactService) *ContactHandler {
	return &ContactHandler{service: service}
}

func (h *ContactHandler) Request(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req httpdto.CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%s: %w", err.Error(), ondot_errors.ErrInvalidInput))
		return
	}
	responder, err := uuid.Parse(req.UserID)
	if err != nil {
		respondError(c, fmt.Errorf("user id: %w", ondot_errors.ErrInvalidInput))
		return
	}

	view, err := h.service.RequestContact(c.Request.Context(), userID, responder, contact.ServiceDomain(req.ServiceDomain))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(view))
}

func (h *ContactHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	views, err := h.service.ListForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"contacts": views}))
}

func (h *ContactHandler) Allow(c *gin.Context)  { h.transition(c, contact.StatusAllowed) }
func (h *ContactHandler) Reject(c *gin.Context) { h.transition(c, contact.StatusRejected) }
func (h *ContactHandler) Close(c *gin.Context)  { h.transition(c, contact.StatusClosed) }

func (h *ContactHandler) transition(c *gin.Context, target contact.Status) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	view, err := h.service.Transition(c.Request.Context(), id, userID, target)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(view))
}
