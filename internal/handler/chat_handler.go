package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/whoskite/kitestudios-sub000/internal/chat"
	"github.com/whoskite/kitestudios-sub000/internal/domain"
	"github.com/whoskite/kitestudios-sub000/internal/middleware"
	"github.com/whoskite/kitestudios-sub000/pkg/response"
)

// ChatRequest is the client payload: the new message plus the full prior
// transcript, resent each time
type ChatRequest struct {
	Message string         `json:"message" binding:"required"`
	History []chat.Message `json:"history"`
}

// ChatHandler fronts the completion-API proxy
type ChatHandler struct {
	service *chat.Service
}

// NewChatHandler creates a ChatHandler
func NewChatHandler(service *chat.Service) *ChatHandler {
	return &ChatHandler{service: service}
}

// Chat handles POST /api/chat
func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.Complete(c.Request.Context(), middleware.GetSession(c), req.Message, req.History)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnauthorized):
			response.Unauthorized(c, "Authentication required")
		case errors.Is(err, domain.ErrConfiguration):
			response.Error(c, http.StatusInternalServerError, "CONFIG_ERROR", "Chat is not available right now", "")
		case errors.Is(err, domain.ErrProcessing):
			response.Error(c, http.StatusInternalServerError, "PROCESSING_ERROR",
				"Sorry, I could not process that message. Please try again.", "")
		default:
			response.InternalError(c, "Chat request failed")
		}
		return
	}

	response.Success(c, result)
}
