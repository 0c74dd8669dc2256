package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"botconsole/internal/responder"
	"botconsole/internal/store"
)

type BotTestHandler interface {
	Test(c *gin.Context)
}

type botTestHandler struct {
	store    store.Store
	selector *responder.Selector
	logger   *zap.Logger
}

func NewBotTestHandler(st store.Store, selector *responder.Selector, logger *zap.Logger) BotTestHandler {
	return &botTestHandler{store: st, selector: selector, logger: logger}
}

type BotTestRequest struct {
	Message    string `json:"message" binding:"required"`
	PlatformID *int64 `json:"platform_id"`
}

// Test handles POST /api/bot/test. It runs classification and response
// selection exactly as the pipeline would, but touches no conversation and
// sends nothing; template usage counters still move.
func (h *botTestHandler) Test(c *gin.Context) {
	var req BotTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.PlatformID != nil {
		if _, err := h.store.PlatformByID(*req.PlatformID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "platform not found"})
				return
			}
			h.logger.Error("Failed to get platform", zap.Int64("id", *req.PlatformID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get platform"})
			return
		}
	}

	cfg, err := h.store.BotConfig()
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusConflict, gin.H{"error": "bot config not initialized"})
			return
		}
		h.logger.Error("Failed to get bot config", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get bot config"})
		return
	}

	result, err := h.selector.Select(req.Message, cfg)
	if err != nil {
		h.logger.Error("Failed to select response", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to select response"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"response":    result.Response,
		"intent":      result.Intent,
		"confidence":  result.Confidence,
		"template_id": result.TemplateID,
	})
}
