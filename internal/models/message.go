package models

import "time"

// Message sender kinds. System messages (welcome, operator joined) carry no
// sender id; client messages don't either, since clients have no account.
const (
	SenderClient   = "client"
	SenderOperator = "operator"
	SenderSystem   = "system"
)

// Message is one append-only chat message, ordered by creation time.
type Message struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ChatID      uint      `gorm:"not null;index" json:"chat_id"`
	SenderType  string    `gorm:"type:text;not null" json:"sender_type"`
	SenderID    *uint     `json:"sender_id"`
	MessageText string    `gorm:"type:text;not null" json:"message_text"`
	IsRead      bool      `gorm:"not null;default:false" json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`
}

// ValidSenderType reports whether senderType is a known message sender kind.
func ValidSenderType(senderType string) bool {
	switch senderType {
	case SenderClient, SenderOperator, SenderSystem:
		return true
	}
	return false
}

// MessageWithSender is a message joined with the sender's display name,
// as returned to the operator dashboard and the client widget.
type MessageWithSender struct {
	ID          uint      `json:"id"`
	ChatID      uint      `json:"chat_id"`
	SenderType  string    `json:"sender_type"`
	SenderID    *uint     `json:"sender_id"`
	SenderName  *string   `json:"sender_name"`
	MessageText string    `json:"message_text"`
	IsRead      bool      `json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`
}
