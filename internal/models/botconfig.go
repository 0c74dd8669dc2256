package models

import "time"

// BotConfig is the singleton bot configuration row. Responses whose
// classifier confidence falls below ConfidenceThreshold are replaced by
// FallbackMessage. MaxResponseTime is advisory; the pipeline logs a warning
// when a turn exceeds it but does not enforce a deadline.
type BotConfig struct {
	ID                  int64     `db:"id" json:"id"`
	Name                string    `db:"name" json:"name"`
	Language            string    `db:"language" json:"language"`
	Tone                string    `db:"tone" json:"tone"`
	ConfidenceThreshold int       `db:"confidence_threshold" json:"confidence_threshold"` // 0..100
	MaxResponseTime     int       `db:"max_response_time" json:"max_response_time"`       // seconds
	FallbackMessage     string    `db:"fallback_message" json:"fallback_message"`
	AutoTraining        bool      `db:"auto_training" json:"auto_training"`
	UpdatedAt           time.Time `db:"updated_at" json:"updated_at"`
}

// DefaultBotConfig seeds the configuration row on first start.
func DefaultBotConfig() *BotConfig {
	return &BotConfig{
		Name:                "Assistant",
		Language:            "en",
		Tone:                "friendly",
		ConfidenceThreshold: 70,
		MaxResponseTime:     30,
		FallbackMessage:     "Sorry, I didn't quite get that. Could you rephrase, or would you like to talk to a human?",
		AutoTraining:        false,
	}
}
