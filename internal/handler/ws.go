package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"botconsole/internal/models"
	"botconsole/internal/realtime"
)

type WSHandler interface {
	Serve(c *gin.Context)
}

type wsHandler struct {
	hub       *realtime.Hub
	jwtSecret []byte
	logger    *zap.Logger
}

func NewWSHandler(hub *realtime.Hub, jwtSecret string, logger *zap.Logger) WSHandler {
	return &wsHandler{hub: hub, jwtSecret: []byte(jwtSecret), logger: logger}
}

// Serve handles GET /ws. Browsers cannot set an Authorization header on the
// WebSocket handshake, so the JWT travels as ?token=.
func (h *wsHandler) Serve(c *gin.Context) {
	tokenString := c.Query("token")
	if tokenString == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token query"})
		return
	}

	claims := &models.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return h.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	h.logger.Debug("Dashboard socket authenticated", zap.String("username", claims.Username))
	h.hub.ServeWS(c.Writer, c.Request)
}
