package models

// PresenceEvent is published on the Redis "presence" channel whenever a user
// changes their availability. The waiting-chat dispatcher listens for it to
// assign parked chats as soon as an operator comes online.
type PresenceEvent struct {
	UserID uint   `json:"user_id"`
	Status string `json:"status"`
}
