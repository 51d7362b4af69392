package models

import "time"

// ChatNote is an internal operator annotation on a chat. Notes are
// append-only and never shown to the client.
type ChatNote struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ChatID     uint      `gorm:"not null;index" json:"chat_id"`
	OperatorID uint      `gorm:"not null" json:"operator_id"`
	NoteText   string    `gorm:"type:text;not null" json:"note_text"`
	CreatedAt  time.Time `json:"created_at"`
}
