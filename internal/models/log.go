package models

import "time"

type LogLevel string

const (
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// LogEntry is an append-only diagnostic record for the dashboard Logs
// stream. Source is a component name or channel kind.
type LogEntry struct {
	ID        int64     `db:"id" json:"id"`
	Level     LogLevel  `db:"level" json:"level"`
	Message   string    `db:"message" json:"message"`
	Details   JSONMap   `db:"details" json:"details,omitempty"`
	Source    string    `db:"source" json:"source"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
