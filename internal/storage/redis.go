package storage

import (
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"livedesk/backend/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	// sessionCacheTTL bounds how stale a cached session snapshot can be.
	// A deactivated user is rejected at most this long after the admin
	// update; Postgres stays the source of truth.
	sessionCacheTTL = 30 * time.Second

	waitingQueueKey = "waiting_chats"
	presenceChannel = "presence"
)

func sessionKey(token string) string {
	return "session:" + token
}

// CacheSessionUser stores a short-lived snapshot of the session's user.
func (s *Service) CacheSessionUser(token string, user *models.User) error {
	payload, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.Redis.Set(s.Ctx, sessionKey(token), payload, sessionCacheTTL).Err()
}

// GetCachedSessionUser returns the cached user for a token, or nil on miss.
func (s *Service) GetCachedSessionUser(token string) (*models.User, error) {
	payload, err := s.Redis.Get(s.Ctx, sessionKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var user models.User
	if err := json.Unmarshal([]byte(payload), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// DropCachedSession removes the snapshot eagerly, used on logout.
func (s *Service) DropCachedSession(token string) error {
	return s.Redis.Del(s.Ctx, sessionKey(token)).Err()
}

// EnqueueWaitingChat appends a chat to the tail of the waiting pool.
// The queue is FIFO so the longest-waiting client is served first.
func (s *Service) EnqueueWaitingChat(chatID uint) error {
	return s.Redis.RPush(s.Ctx, waitingQueueKey, chatID).Err()
}

// RequeueWaitingChat puts a popped chat back at the head of the waiting
// pool, so a failed assignment attempt does not rotate the FIFO order.
func (s *Service) RequeueWaitingChat(chatID uint) error {
	return s.Redis.LPush(s.Ctx, waitingQueueKey, chatID).Err()
}

// PopWaitingChat takes the oldest chat off the waiting pool. ok is false
// when the pool is empty.
func (s *Service) PopWaitingChat() (chatID uint, ok bool, err error) {
	val, err := s.Redis.LPop(s.Ctx, waitingQueueKey).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	id, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, false, err
	}
	return uint(id), true, nil
}

// RemoveWaitingChat drops a chat from the pool wherever it sits, used when a
// waiting chat is closed or manually escalated.
func (s *Service) RemoveWaitingChat(chatID uint) error {
	return s.Redis.LRem(s.Ctx, waitingQueueKey, 0, chatID).Err()
}

// PublishPresence broadcasts a user's availability change.
func (s *Service) PublishPresence(userID uint, status string) error {
	payload, err := json.Marshal(models.PresenceEvent{UserID: userID, Status: status})
	if err != nil {
		return err
	}
	return s.Redis.Publish(s.Ctx, presenceChannel, payload).Err()
}

// SubscribePresence subscribes to availability changes.
func (s *Service) SubscribePresence() *redis.PubSub {
	return s.Redis.Subscribe(s.Ctx, presenceChannel)
}
