package routing

import (
	"fmt"
	"log"

	"livedesk/backend/internal/models"
)

// Texts of the system messages the router appends. Kept verbatim from the
// hosted frontend's expectations.
const (
	welcomeMessageFormat  = "Добро пожаловать, %s! Ожидайте подключения оператора..."
	OperatorJoinedMessage = "Оператор подключился к чату."
)

// Store is the persistence surface the selector needs.
type Store interface {
	RouteChat(chat *models.Chat, welcomeText string) error
	EnqueueWaitingChat(chatID uint) error
}

// SelectorService routes each new chat to the least-loaded online operator,
// or parks it in the waiting pool when nobody is available.
type SelectorService struct {
	Store Store
}

// NewSelectorService creates a new Selector.
func NewSelectorService(store Store) *SelectorService {
	return &SelectorService{Store: store}
}

// RouteNewChat creates the chat and its welcome message as one unit.
// The chat comes back active with an operator assigned, or waiting with
// none; a waiting chat is queued for the dispatcher.
func (s *SelectorService) RouteNewChat(clientName string, clientEmail *string) (*models.Chat, error) {
	chat := &models.Chat{
		ClientName:  clientName,
		ClientEmail: clientEmail,
	}
	welcome := fmt.Sprintf(welcomeMessageFormat, clientName)
	if err := s.Store.RouteChat(chat, welcome); err != nil {
		return nil, fmt.Errorf("route chat: %w", err)
	}

	if chat.Status == models.ChatWaiting {
		if err := s.Store.EnqueueWaitingChat(chat.ID); err != nil {
			log.Printf("ERROR: Failed to enqueue waiting chat %d: %v", chat.ID, err)
		}
		log.Printf("INFO: Chat %d created waiting, no operator online", chat.ID)
	} else {
		log.Printf("INFO: Chat %d routed to operator %d", chat.ID, *chat.AssignedOperatorID)
	}
	return chat, nil
}
