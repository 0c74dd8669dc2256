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

type TemplateHandler interface {
	List(c *gin.Context)
	Get(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

type templateHandler struct {
	store  store.TemplateStore
	logger *zap.Logger
}

func NewTemplateHandler(st store.TemplateStore, logger *zap.Logger) TemplateHandler {
	return &templateHandler{store: st, logger: logger}
}

// List handles GET /api/templates; ?active=true narrows to active rows.
func (h *templateHandler) List(c *gin.Context) {
	var (
		templates []*models.Template
		err       error
	)
	if c.Query("active") == "true" {
		templates, err = h.store.ListActiveTemplates()
	} else {
		templates, err = h.store.ListTemplates()
	}
	if err != nil {
		h.logger.Error("Failed to list templates", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list templates"})
		return
	}
	c.JSON(http.StatusOK, templates)
}

// Get handles GET /api/templates/:id
func (h *templateHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid template id"})
		return
	}

	tpl, err := h.store.TemplateByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "template not found"})
			return
		}
		h.logger.Error("Failed to get template", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get template"})
		return
	}
	c.JSON(http.StatusOK, tpl)
}

type CreateTemplateRequest struct {
	Name      string            `json:"name" binding:"required"`
	Category  string            `json:"category" binding:"required"`
	Content   string            `json:"content" binding:"required"`
	Variables models.StringList `json:"variables"`
	Active    *bool             `json:"is_active"`
}

// Create handles POST /api/templates
func (h *templateHandler) Create(c *gin.Context) {
	var req CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	tpl := &models.Template{
		Name:      req.Name,
		Category:  req.Category,
		Content:   req.Content,
		Variables: req.Variables,
		Active:    active,
	}
	if err := h.store.CreateTemplate(tpl); err != nil {
		h.logger.Error("Failed to create template", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create template"})
		return
	}
	c.JSON(http.StatusCreated, tpl)
}

type UpdateTemplateRequest struct {
	Name      *string           `json:"name"`
	Category  *string           `json:"category"`
	Content   *string           `json:"content"`
	Variables models.StringList `json:"variables"`
	Active    *bool             `json:"is_active"`
}

// Update handles PUT /api/templates/:id with a partial body.
func (h *templateHandler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid template id"})
		return
	}

	var req UpdateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Content != nil && *req.Content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content must not be empty"})
		return
	}

	tpl, err := h.store.UpdateTemplate(id, store.TemplateUpdate{
		Name:      req.Name,
		Category:  req.Category,
		Content:   req.Content,
		Variables: req.Variables,
		Active:    req.Active,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "template not found"})
			return
		}
		h.logger.Error("Failed to update template", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update template"})
		return
	}
	c.JSON(http.StatusOK, tpl)
}

// Delete handles DELETE /api/templates/:id
func (h *templateHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid template id"})
		return
	}

	if err := h.store.DeleteTemplate(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "template not found"})
			return
		}
		h.logger.Error("Failed to delete template", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete template"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Template deleted"})
}
