package handlers

import (
	"context"
	"net/http"

	"hukumchat-backend/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Chatter routes one message and renders the reply
type Chatter interface {
	Chat(ctx context.Context, message string) *models.ChatResult
}

// ChatHandler handles HTTP requests for the chat endpoint
type ChatHandler struct {
	chatService Chatter
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService Chatter) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// ChatRequest represents the request body for POST /chat. An empty
// message is valid and handled by the router, not rejected here.
type ChatRequest struct {
	Message string `json:"message"`
}

// Chat handles POST /chat
func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	result := h.chatService.Chat(c.Request.Context(), req.Message)
	c.JSON(http.StatusOK, result)
}

// Health handles GET /health
func (h *ChatHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// RequestID tags every request with a unique ID for log correlation
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.New().String()
		c.Set("request_id", id)
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}
