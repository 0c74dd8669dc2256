package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"botconsole/internal/store"
)

type BotConfigHandler interface {
	Get(c *gin.Context)
	Update(c *gin.Context)
}

type botConfigHandler struct {
	store  store.BotConfigStore
	logger *zap.Logger
}

func NewBotConfigHandler(st store.BotConfigStore, logger *zap.Logger) BotConfigHandler {
	return &botConfigHandler{store: st, logger: logger}
}

// Get handles GET /api/bot/config
func (h *botConfigHandler) Get(c *gin.Context) {
	cfg, err := h.store.BotConfig()
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "bot config not initialized"})
			return
		}
		h.logger.Error("Failed to get bot config", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get bot config"})
		return
	}
	c.JSON(http.StatusOK, cfg)
}

type UpdateBotConfigRequest struct {
	Name                *string `json:"name"`
	Language            *string `json:"language"`
	Tone                *string `json:"tone"`
	ConfidenceThreshold *int    `json:"confidence_threshold"`
	MaxResponseTime     *int    `json:"max_response_time"`
	FallbackMessage     *string `json:"fallback_message"`
	AutoTraining        *bool   `json:"auto_training"`
}

// Update handles PUT /api/bot/config with a partial body; absent fields keep
// their stored values.
func (h *botConfigHandler) Update(c *gin.Context) {
	var req UpdateBotConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.ConfidenceThreshold != nil && (*req.ConfidenceThreshold < 0 || *req.ConfidenceThreshold > 100) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "confidence_threshold must be between 0 and 100"})
		return
	}
	if req.MaxResponseTime != nil && *req.MaxResponseTime < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "max_response_time must not be negative"})
		return
	}
	if req.FallbackMessage != nil && *req.FallbackMessage == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "fallback_message must not be empty"})
		return
	}

	cfg, err := h.store.UpdateBotConfig(store.BotConfigUpdate{
		Name:                req.Name,
		Language:            req.Language,
		Tone:                req.Tone,
		ConfidenceThreshold: req.ConfidenceThreshold,
		MaxResponseTime:     req.MaxResponseTime,
		FallbackMessage:     req.FallbackMessage,
		AutoTraining:        req.AutoTraining,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "bot config not initialized"})
			return
		}
		h.logger.Error("Failed to update bot config", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update bot config"})
		return
	}
	c.JSON(http.StatusOK, cfg)
}
