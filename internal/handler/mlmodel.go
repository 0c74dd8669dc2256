package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"botconsole/internal/models"
	"botconsole/internal/nlp"
	"botconsole/internal/store"
)

// ModelNotifier pushes model state changes to dashboard observers.
type ModelNotifier interface {
	ModelUpdated(m *models.MlModel)
}

type ModelHandler interface {
	List(c *gin.Context)
	Current(c *gin.Context)
	Train(c *gin.Context)
}

type modelHandler struct {
	store      store.ModelStore
	classifier *nlp.Classifier
	notify     ModelNotifier
	logger     *zap.Logger
}

func NewModelHandler(st store.ModelStore, classifier *nlp.Classifier, notify ModelNotifier, logger *zap.Logger) ModelHandler {
	return &modelHandler{store: st, classifier: classifier, notify: notify, logger: logger}
}

// List handles GET /api/models
func (h *modelHandler) List(c *gin.Context) {
	ms, err := h.store.ListModels()
	if err != nil {
		h.logger.Error("Failed to list models", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list models"})
		return
	}
	c.JSON(http.StatusOK, ms)
}

// Current handles GET /api/models/current
func (h *modelHandler) Current(c *gin.Context) {
	m, err := h.store.CurrentModel()
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no model trained yet"})
			return
		}
		h.logger.Error("Failed to get current model", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get current model"})
		return
	}
	c.JSON(http.StatusOK, m)
}

type TrainRequest struct {
	Name     string        `json:"name"`
	Examples []nlp.Example `json:"examples"`
}

// Train handles POST /api/models/train. Training over the rule table is
// synchronous and fast; the row still passes through the training status so
// observers see the same lifecycle a long-running trainer would produce.
func (h *modelHandler) Train(c *gin.Context) {
	var req TrainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	examples := req.Examples
	if len(examples) == 0 {
		examples = nlp.DefaultTrainingSet()
	}
	for i, ex := range examples {
		if ex.Text == "" || ex.Intent == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("example %d: text and intent are required", i)})
			return
		}
	}

	name := req.Name
	if name == "" {
		name = "intent-rules"
	}

	model := &models.MlModel{
		Name:            name,
		Version:         time.Now().Format("20060102-150405"),
		TrainingSamples: len(examples),
		Status:          models.ModelTraining,
	}
	if err := h.store.CreateModel(model); err != nil {
		h.logger.Error("Failed to create model record", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start training"})
		return
	}
	h.notify.ModelUpdated(model)

	accuracy := h.classifier.Train(examples)

	trainedAt := time.Now()
	ready := models.ModelReady
	modelID := model.ID
	model, err := h.store.UpdateModel(modelID, store.ModelUpdate{
		Accuracy:  &accuracy,
		Status:    &ready,
		TrainedAt: &trainedAt,
	})
	if err != nil {
		h.logger.Error("Failed to finalize model record", zap.Int64("id", modelID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to finish training"})
		return
	}

	h.logger.Info("Model trained",
		zap.String("name", model.Name),
		zap.Int("samples", model.TrainingSamples),
		zap.Float64("accuracy", model.Accuracy),
	)
	h.notify.ModelUpdated(model)
	c.JSON(http.StatusOK, model)
}
