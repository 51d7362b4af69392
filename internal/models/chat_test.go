package models_test

import (
	"reflect"
	"testing"

	"livedesk/backend/internal/models"

	"github.com/stretchr/testify/assert"
)

// TestValidChatStatus verifies the chat lifecycle enum is closed.
func TestValidChatStatus(t *testing.T) {
	for _, status := range []string{"waiting", "active", "closed"} {
		assert.True(t, models.ValidChatStatus(status), "status %q should be valid", status)
	}
	for _, status := range []string{"", "open", "Waiting", "archived"} {
		assert.False(t, models.ValidChatStatus(status), "status %q should be invalid", status)
	}
}

// TestValidSenderType verifies the message sender enum is closed.
func TestValidSenderType(t *testing.T) {
	for _, sender := range []string{"client", "operator", "system"} {
		assert.True(t, models.ValidSenderType(sender), "sender %q should be valid", sender)
	}
	for _, sender := range []string{"", "bot", "Client"} {
		assert.False(t, models.ValidSenderType(sender), "sender %q should be invalid", sender)
	}
}

// TestQCRatingStructTags verifies the one-rating-per-chat key: the unique
// index on chat_id is what the upsert conflicts on.
func TestQCRatingStructTags(t *testing.T) {
	ratingType := reflect.TypeOf(models.QCRating{})

	chatField, found := ratingType.FieldByName("ChatID")
	assert.True(t, found, "ChatID field should exist")
	assert.Contains(t, chatField.Tag.Get("gorm"), "uniqueIndex", "ChatID must be unique for the upsert key")
}

// TestChatDefaults verifies a zero chat carries no operator, matching the
// waiting-state invariant.
func TestChatDefaults(t *testing.T) {
	chat := models.Chat{}
	assert.Nil(t, chat.AssignedOperatorID)

	chatType := reflect.TypeOf(chat)
	statusField, found := chatType.FieldByName("Status")
	assert.True(t, found)
	assert.Contains(t, statusField.Tag.Get("gorm"), "default:waiting")
}
