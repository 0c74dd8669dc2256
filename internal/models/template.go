package models

import "time"

// Template is a reusable response pattern with {variable} placeholders,
// stored in the 'templates' table. The category is free text matched against
// intent labels by substring. Variables referenced in the content should be a
// subset of the declared names, but this is not enforced; unmatched
// placeholders are left verbatim in the rendered output.
type Template struct {
	ID         int64      `db:"id" json:"id"`
	Name       string     `db:"name" json:"name"`
	Category   string     `db:"category" json:"category"`
	Content    string     `db:"content" json:"content"`
	Variables  StringList `db:"variables" json:"variables"`
	Active     bool       `db:"is_active" json:"is_active"`
	UsageCount int        `db:"usage_count" json:"usage_count"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}
