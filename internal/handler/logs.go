package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"botconsole/internal/store"
)

const defaultRecentLogs = 100

type LogHandler interface {
	Recent(c *gin.Context)
}

type logHandler struct {
	store  store.LogStore
	logger *zap.Logger
}

func NewLogHandler(st store.LogStore, logger *zap.Logger) LogHandler {
	return &logHandler{store: st, logger: logger}
}

// Recent handles GET /api/logs?limit=N
func (h *logHandler) Recent(c *gin.Context) {
	limit := defaultRecentLogs
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}

	logs, err := h.store.RecentLogs(limit)
	if err != nil {
		h.logger.Error("Failed to list logs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list logs"})
		return
	}
	c.JSON(http.StatusOK, logs)
}
