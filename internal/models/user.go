package models

import "time"

// Account roles. Only an admin may change another user's role.
const (
	RoleClient   = "client"
	RoleOperator = "operator"
	RoleOKK      = "okk"
	RoleAdmin    = "admin"
)

// Self-reported availability. The operator selector considers only "online"
// users when routing a new chat; there is no heartbeat, so an operator stays
// eligible until they change their own status.
const (
	StatusOnline  = "online"
	StatusJira    = "jira"
	StatusBreak   = "break"
	StatusOffline = "offline"
)

// EligibleRoles are the roles allowed to take client chats.
var EligibleRoles = []string{RoleOperator, RoleOKK, RoleAdmin}

// User represents a staff or client account.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	FullName     string    `gorm:"not null" json:"full_name"`
	Role         string    `gorm:"type:text;not null;default:client" json:"role"`
	Status       string    `gorm:"type:text;not null;default:offline" json:"status"`
	Department   string    `json:"department"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ValidRole reports whether role is one of the known account roles.
func ValidRole(role string) bool {
	switch role {
	case RoleClient, RoleOperator, RoleOKK, RoleAdmin:
		return true
	}
	return false
}

// ValidStatus reports whether status is a known availability value.
func ValidStatus(status string) bool {
	switch status {
	case StatusOnline, StatusJira, StatusBreak, StatusOffline:
		return true
	}
	return false
}

// Eligible reports whether the user's role allows taking chats.
func (u *User) Eligible() bool {
	for _, r := range EligibleRoles {
		if u.Role == r {
			return true
		}
	}
	return false
}
