package models

import "time"

type ModelStatus string

const (
	ModelTraining ModelStatus = "training"
	ModelReady    ModelStatus = "ready"
	ModelError    ModelStatus = "error"
)

// MlModel is bookkeeping metadata about the classifier state, stored in the
// 'ml_models' table. It is not a trained artifact; accuracy is the
// resubstitution accuracy of the rule table over the training set.
type MlModel struct {
	ID              int64       `db:"id" json:"id"`
	Name            string      `db:"name" json:"name"`
	Version         string      `db:"version" json:"version"`
	Accuracy        float64     `db:"accuracy" json:"accuracy"` // percentage 0..100
	TrainingSamples int         `db:"training_samples" json:"training_samples"`
	Status          ModelStatus `db:"status" json:"status"`
	TrainedAt       *time.Time  `db:"trained_at" json:"trained_at,omitempty"`
	CreatedAt       time.Time   `db:"created_at" json:"created_at"`
}
