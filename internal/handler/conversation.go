package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"botconsole/internal/models"
	"botconsole/internal/store"
)

type ConversationHandler interface {
	List(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Messages(c *gin.Context)
	RecentMessages(c *gin.Context)
}

type conversationHandler struct {
	store  store.Store
	logger *zap.Logger
}

func NewConversationHandler(st store.Store, logger *zap.Logger) ConversationHandler {
	return &conversationHandler{store: st, logger: logger}
}

// List handles GET /api/conversations; ?platform_id= narrows to one channel.
func (h *conversationHandler) List(c *gin.Context) {
	if raw := c.Query("platform_id"); raw != "" {
		platformID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid platform_id"})
			return
		}
		convs, err := h.store.ListConversationsByPlatform(platformID)
		if err != nil {
			h.logger.Error("Failed to list conversations", zap.Int64("platform_id", platformID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list conversations"})
			return
		}
		c.JSON(http.StatusOK, convs)
		return
	}

	convs, err := h.store.ListConversations()
	if err != nil {
		h.logger.Error("Failed to list conversations", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list conversations"})
		return
	}
	c.JSON(http.StatusOK, convs)
}

// Get handles GET /api/conversations/:id
func (h *conversationHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}

	conv, err := h.store.ConversationByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
			return
		}
		h.logger.Error("Failed to get conversation", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get conversation"})
		return
	}
	c.JSON(http.StatusOK, conv)
}

type UpdateConversationRequest struct {
	UserName *string                    `json:"user_name"`
	Status   *models.ConversationStatus `json:"status"`
}

// Update handles PUT /api/conversations/:id (operator rename or triage).
func (h *conversationHandler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}

	var req UpdateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Status != nil {
		switch *req.Status {
		case models.ConversationActive, models.ConversationResolved, models.ConversationEscalated:
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown conversation status"})
			return
		}
	}

	conv, err := h.store.UpdateConversation(id, store.ConversationUpdate{
		UserName: req.UserName,
		Status:   req.Status,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
			return
		}
		h.logger.Error("Failed to update conversation", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update conversation"})
		return
	}
	c.JSON(http.StatusOK, conv)
}

// Messages handles GET /api/conversations/:id/messages
func (h *conversationHandler) Messages(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}

	if _, err := h.store.ConversationByID(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
			return
		}
		h.logger.Error("Failed to get conversation", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get conversation"})
		return
	}

	msgs, err := h.store.MessagesByConversation(id)
	if err != nil {
		h.logger.Error("Failed to list messages", zap.Int64("conversation_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list messages"})
		return
	}
	c.JSON(http.StatusOK, msgs)
}

const defaultRecentMessages = 50

// RecentMessages handles GET /api/messages?limit=N
func (h *conversationHandler) RecentMessages(c *gin.Context) {
	limit := defaultRecentMessages
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}

	msgs, err := h.store.RecentMessages(limit)
	if err != nil {
		h.logger.Error("Failed to list recent messages", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list messages"})
		return
	}
	c.JSON(http.StatusOK, msgs)
}
