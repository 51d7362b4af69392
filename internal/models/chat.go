package models

import "time"

// Chat lifecycle states. A chat is "waiting" while no operator is assigned,
// "active" once routed or escalated to an operator, and "closed" is terminal.
const (
	ChatWaiting = "waiting"
	ChatActive  = "active"
	ChatClosed  = "closed"
)

// Chat represents a single client support conversation.
// Invariant: status=active implies AssignedOperatorID is set;
// status=waiting implies it is null.
type Chat struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	ClientName         string    `gorm:"not null" json:"client_name"`
	ClientEmail        *string   `json:"client_email"`
	AssignedOperatorID *uint     `gorm:"index" json:"assigned_operator_id"`
	Status             string    `gorm:"type:text;not null;default:waiting;index" json:"status"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// ValidChatStatus reports whether status is a known chat lifecycle state.
func ValidChatStatus(status string) bool {
	switch status {
	case ChatWaiting, ChatActive, ChatClosed:
		return true
	}
	return false
}

// ChatSummary is the dashboard projection of a chat: the chat row joined
// with the assigned operator's name and per-chat message aggregates.
type ChatSummary struct {
	ID                   uint       `json:"id"`
	ClientName           string     `json:"client_name"`
	ClientEmail          *string    `json:"client_email"`
	AssignedOperatorID   *uint      `json:"assigned_operator_id"`
	AssignedOperatorName *string    `json:"assigned_operator_name"`
	Status               string     `json:"status"`
	UnreadCount          int64      `json:"unread_count"`
	LastMessage          *string    `json:"last_message"`
	LastMessageTime      *time.Time `json:"last_message_time"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}
