package handler

import (
	"context"

	"github.com/cvassistant/backend/internal/domain/rag"
	"github.com/cvassistant/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// ChatService answers questions
type ChatService interface {
	Ask(ctx context.Context, query rag.Query) (*rag.AnswerPackage, error)
}

// ChatHandler serves POST /api/chat
type ChatHandler struct {
	BaseHandler
	service ChatService
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(service ChatService) *ChatHandler {
	return &ChatHandler{service: service}
}

// Chat answers a question, optionally scoped to a category
func (h *ChatHandler) Chat(c *gin.Context) {
	var req dto.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	answer, err := h.service.Ask(c.Request.Context(), rag.NewQuery(req.Message, req.Category))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ChatResponse{Response: answer.AnswerText})
}
