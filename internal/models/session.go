package models

import "time"

// Session is a server-issued bearer token row. Sessions are never deleted:
// logout moves expires_at into the past, natural expiry does the rest. A
// token is valid only while expires_at is in the future and the owning user
// is still active.
type Session struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;index" json:"user_id"`
	SessionToken string    `gorm:"uniqueIndex;not null" json:"session_token"`
	ExpiresAt    time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
}
