package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"botconsole/internal/realtime"
	"botconsole/internal/store"
)

type StatsHandler interface {
	Get(c *gin.Context)
}

type statsHandler struct {
	store  store.Store
	window int
	logger *zap.Logger
}

// NewStatsHandler serves the same aggregate the fan-out pushes, for clients
// that poll instead of holding a socket.
func NewStatsHandler(st store.Store, window int, logger *zap.Logger) StatsHandler {
	return &statsHandler{store: st, window: window, logger: logger}
}

// Get handles GET /api/stats
func (h *statsHandler) Get(c *gin.Context) {
	stats, err := realtime.ComputeStats(h.store, h.window)
	if err != nil {
		h.logger.Error("Failed to compute stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}
