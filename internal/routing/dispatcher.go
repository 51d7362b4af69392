package routing

import (
	"encoding/json"
	"log"
	"time"

	"livedesk/backend/internal/models"

	"github.com/redis/go-redis/v9"
)

// DispatcherStore is the persistence surface the dispatcher needs.
type DispatcherStore interface {
	PopWaitingChat() (chatID uint, ok bool, err error)
	RequeueWaitingChat(chatID uint) error
	AssignWaitingChat(chatID uint, joinText string) (assigned bool, retry bool, err error)
	SubscribePresence() *redis.PubSub
}

// DispatcherService drains the waiting pool when operator capacity appears.
// It wakes on presence events (an operator going online) and on a periodic
// tick as a safety net.
type DispatcherService struct {
	Store    DispatcherStore
	Interval time.Duration
}

// NewDispatcherService creates a new Dispatcher.
func NewDispatcherService(store DispatcherStore) *DispatcherService {
	return &DispatcherService{
		Store:    store,
		Interval: 15 * time.Second,
	}
}

// Run is the main dispatcher Goroutine.
func (d *DispatcherService) Run() {
	log.Println("Dispatcher Service started.")

	pubsub := d.Store.SubscribePresence()
	defer pubsub.Close()
	events := pubsub.Channel()

	ticker := time.NewTicker(d.Interval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-events:
			if !ok {
				log.Println("ERROR: Presence subscription closed, dispatcher falling back to ticks")
				events = nil
				continue
			}
			var ev models.PresenceEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Printf("ERROR: Failed to unmarshal presence event: %v", err)
				continue
			}
			if ev.Status == models.StatusOnline {
				d.Drain()
			}
		case <-ticker.C:
			d.Drain()
		}
	}
}

// Drain assigns parked chats oldest-first until the pool is empty or no
// operator can take another chat.
func (d *DispatcherService) Drain() {
	for {
		chatID, ok, err := d.Store.PopWaitingChat()
		if err != nil {
			log.Printf("ERROR: Failed to pop waiting chat: %v", err)
			return
		}
		if !ok {
			return
		}

		assigned, retry, err := d.Store.AssignWaitingChat(chatID, OperatorJoinedMessage)
		if err != nil {
			log.Printf("ERROR: Failed to assign waiting chat %d: %v", chatID, err)
			if qErr := d.Store.RequeueWaitingChat(chatID); qErr != nil {
				log.Printf("ERROR: Failed to requeue chat %d: %v", chatID, qErr)
			}
			return
		}
		if retry {
			// Nobody online; restore the chat to the head of the queue and
			// stop draining.
			if qErr := d.Store.RequeueWaitingChat(chatID); qErr != nil {
				log.Printf("ERROR: Failed to requeue chat %d: %v", chatID, qErr)
			}
			return
		}
		if assigned {
			log.Printf("INFO: Waiting chat %d assigned to an operator", chatID)
		}
		// Not assigned and no retry: the chat left the waiting state while
		// queued (closed or manually escalated); drop it and continue.
	}
}
