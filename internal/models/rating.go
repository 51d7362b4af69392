package models

import "time"

// QCRating is a supervisor's quality score for one chat. At most one rating
// exists per chat: re-submission replaces the whole record, including the
// operator, the reviewing user and the timestamp.
type QCRating struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ChatID     uint      `gorm:"uniqueIndex;not null" json:"chat_id"`
	OperatorID uint      `gorm:"not null;index" json:"operator_id"`
	QCUserID   uint      `gorm:"not null" json:"qc_user_id"`
	Score      int       `gorm:"not null" json:"score"`
	Comment    string    `gorm:"type:text" json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
}
