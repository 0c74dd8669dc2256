package models

import "time"

type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Message is a single inbound or outbound utterance, stored append-only in
// the 'messages' table. Confidence, response time and template reference are
// set only on bot messages. The template reference is historical and may
// dangle after template deletion.
type Message struct {
	ID             int64     `db:"id" json:"id"`
	ConversationID int64     `db:"conversation_id" json:"conversation_id"`
	Content        string    `db:"content" json:"content"`
	Sender         Sender    `db:"sender" json:"sender"`
	Confidence     *int      `db:"confidence" json:"confidence,omitempty"`
	ResponseTimeMs *int64    `db:"response_time_ms" json:"response_time_ms,omitempty"`
	TemplateID     *int64    `db:"template_id" json:"template_id,omitempty"`
	SentAt         time.Time `db:"sent_at" json:"sent_at"`
}
