package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"botconsole/internal/crypto"
	"botconsole/internal/models"
	"botconsole/internal/store"
)

type PlatformHandler interface {
	List(c *gin.Context)
	Get(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
}

type platformHandler struct {
	store  store.PlatformStore
	cipher *crypto.Cipher
	logger *zap.Logger
}

func NewPlatformHandler(st store.PlatformStore, cipher *crypto.Cipher, logger *zap.Logger) PlatformHandler {
	return &platformHandler{store: st, cipher: cipher, logger: logger}
}

// List handles GET /api/platforms
func (h *platformHandler) List(c *gin.Context) {
	platforms, err := h.store.ListPlatforms()
	if err != nil {
		h.logger.Error("Failed to list platforms", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list platforms"})
		return
	}
	c.JSON(http.StatusOK, platforms)
}

// Get handles GET /api/platforms/:id
func (h *platformHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid platform id"})
		return
	}

	platform, err := h.store.PlatformByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "platform not found"})
			return
		}
		h.logger.Error("Failed to get platform", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get platform"})
		return
	}
	c.JSON(http.StatusOK, platform)
}

type CreatePlatformRequest struct {
	Name        string                `json:"name" binding:"required"`
	Kind        models.ChannelKind    `json:"kind" binding:"required"`
	Status      models.PlatformStatus `json:"status"`
	Credentials *string               `json:"credentials"`
	WebhookURL  *string               `json:"webhook_url"`
	Config      models.JSONMap        `json:"config"`
}

// Create handles POST /api/platforms. Credentials are encrypted before they
// reach the store.
func (h *platformHandler) Create(c *gin.Context) {
	var req CreatePlatformRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.Kind.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown channel kind"})
		return
	}

	status := req.Status
	if status == "" {
		status = models.PlatformActive
	}

	creds, err := h.sealCredentials(req.Credentials)
	if err != nil {
		h.logger.Error("Failed to encrypt credentials", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store credentials"})
		return
	}

	platform := &models.Platform{
		Name:        req.Name,
		Kind:        req.Kind,
		Status:      status,
		Credentials: creds,
		WebhookURL:  req.WebhookURL,
		Config:      req.Config,
	}
	if err := h.store.CreatePlatform(platform); err != nil {
		h.logger.Error("Failed to create platform", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create platform"})
		return
	}
	c.JSON(http.StatusCreated, platform)
}

type UpdatePlatformRequest struct {
	Name        *string                `json:"name"`
	Status      *models.PlatformStatus `json:"status"`
	Credentials *string                `json:"credentials"`
	WebhookURL  *string                `json:"webhook_url"`
	Config      models.JSONMap         `json:"config"`
}

// Update handles PUT /api/platforms/:id with a partial body; absent fields
// keep their stored values.
func (h *platformHandler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid platform id"})
		return
	}

	var req UpdatePlatformRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Status != nil {
		switch *req.Status {
		case models.PlatformActive, models.PlatformInactive, models.PlatformError:
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown platform status"})
			return
		}
	}

	creds, err := h.sealCredentials(req.Credentials)
	if err != nil {
		h.logger.Error("Failed to encrypt credentials", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store credentials"})
		return
	}

	platform, err := h.store.UpdatePlatform(id, store.PlatformUpdate{
		Name:        req.Name,
		Status:      req.Status,
		Credentials: creds,
		WebhookURL:  req.WebhookURL,
		Config:      req.Config,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "platform not found"})
			return
		}
		h.logger.Error("Failed to update platform", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update platform"})
		return
	}
	c.JSON(http.StatusOK, platform)
}

func (h *platformHandler) sealCredentials(plain *string) (*string, error) {
	if plain == nil {
		return nil, nil
	}
	sealed, err := h.cipher.Encrypt(*plain)
	if err != nil {
		return nil, err
	}
	return &sealed, nil
}
