package messages

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"listinghub/marketplace/marketplace-backend/internal/auth"
)

type Handler struct {
	service *Service
	logger  *zap.Logger
}

func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes wires the authenticated messaging routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/messages", h.Send)
	router.GET("/conversations", h.ListConversations)
	router.GET("/conversations/:id/messages", h.ListMessages)
	router.POST("/conversations/:id/read", h.MarkRead)
}

func (h *Handler) Send(c *gin.Context) {
	callerID, err := auth.CallerID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	role := auth.Role(c.GetString(auth.ContextRole))

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.service.Send(c.Request.Context(), callerID, role, req)
	if err != nil {
		if errors.Is(err, ErrSelfConversation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot message yourself"})
			return
		}
		h.logger.Error("Failed to send message", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message"})
		return
	}

	c.JSON(http.StatusCreated, msg)
}

func (h *Handler) ListConversations(c *gin.Context) {
	callerID, err := auth.CallerID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	conversations, err := h.service.ListConversations(c.Request.Context(), callerID)
	if err != nil {
		h.logger.Error("Failed to list conversations", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list conversations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversations": conversations, "count": len(conversations)})
}

func (h *Handler) ListMessages(c *gin.Context) {
	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid conversation ID"})
		return
	}

	callerID, err := auth.CallerID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	msgs, err := h.service.ListMessages(c.Request.Context(), callerID, conversationID)
	if err != nil {
		switch {
		case errors.Is(err, ErrConversationNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
		case errors.Is(err, ErrNotParticipant):
			c.JSON(http.StatusForbidden, gin.H{"error": "Not part of this conversation"})
		default:
			h.logger.Error("Failed to list messages", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list messages"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": msgs, "count": len(msgs)})
}

func (h *Handler) MarkRead(c *gin.Context) {
	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid conversation ID"})
		return
	}

	callerID, err := auth.CallerID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	updated, err := h.service.MarkRead(c.Request.Context(), callerID, conversationID)
	if err != nil {
		switch {
		case errors.Is(err, ErrConversationNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
		case errors.Is(err, ErrNotParticipant):
			c.JSON(http.StatusForbidden, gin.H{"error": "Not part of this conversation"})
		default:
			h.logger.Error("Failed to mark conversation read", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark conversation read"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"marked_read": updated})
}
