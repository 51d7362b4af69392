package chats

import (
	"errors"
	"fmt"
	"log"

	"livedesk/backend/internal/models"
)

var (
	ErrChatNotFound  = errors.New("chat not found")
	ErrChatClosed    = errors.New("chat is closed")
	ErrInvalidSender = errors.New("invalid sender type")
	ErrInvalidScore  = errors.New("score must be between 0 and 100")
)

// Store is the persistence surface the chat service needs.
type Store interface {
	GetChatByID(chatID uint) (*models.Chat, error)
	CreateMessageAndTouchChat(msg *models.Message) error
	ListMessages(chatID uint) ([]models.MessageWithSender, error)
	ListChatSummaries(status string) ([]models.ChatSummary, error)
	UpdateChatAssignment(chatID uint, operatorID *uint, status string) (bool, error)
	CloseChat(chatID uint) (bool, error)
	EnqueueWaitingChat(chatID uint) error
	RemoveWaitingChat(chatID uint) error
	AddNote(note *models.ChatNote) error
	ListNotes(chatID uint) ([]models.ChatNote, error)
	UpsertRating(rating *models.QCRating) error
	ListRatings(operatorID *uint) ([]models.QCRating, error)
}

// Service owns the chat state machine: waiting -> active via assignment,
// active -> waiting via escalation to the pool, any -> closed (terminal).
// Messages, notes and ratings attach in any state.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// SendMessage appends a message and bumps the chat's recency in one unit.
// Status is not affected; closed chats still accept messages.
func (s *Service) SendMessage(chatID uint, senderType string, senderID *uint, text string) (*models.Message, error) {
	if !models.ValidSenderType(senderType) {
		return nil, ErrInvalidSender
	}
	chat, err := s.store.GetChatByID(chatID)
	if err != nil {
		return nil, fmt.Errorf("lookup chat: %w", err)
	}
	if chat == nil {
		return nil, ErrChatNotFound
	}

	msg := &models.Message{
		ChatID:      chatID,
		SenderType:  senderType,
		SenderID:    senderID,
		MessageText: text,
	}
	if err := s.store.CreateMessageAndTouchChat(msg); err != nil {
		return nil, fmt.Errorf("save message: %w", err)
	}
	return msg, nil
}

// GetMessages returns the chat's messages oldest first. An unknown chat
// yields an empty list, matching the polling contract.
func (s *Service) GetMessages(chatID uint) ([]models.MessageWithSender, error) {
	return s.store.ListMessages(chatID)
}

// GetChats lists chat summaries, newest activity first, optionally filtered
// to one exact status.
func (s *Service) GetChats(status string) ([]models.ChatSummary, error) {
	return s.store.ListChatSummaries(status)
}

// Close moves a chat to closed. The transition is one-way: no operation
// moves a chat out of closed.
func (s *Service) Close(chatID uint) error {
	found, err := s.store.CloseChat(chatID)
	if err != nil {
		return fmt.Errorf("close chat: %w", err)
	}
	if !found {
		return ErrChatNotFound
	}
	if err := s.store.RemoveWaitingChat(chatID); err != nil {
		log.Printf("WARNING: Failed to remove closed chat %d from waiting queue: %v", chatID, err)
	}
	return nil
}

// Escalate reassigns a chat. With a target it becomes active and assigned to
// that operator regardless of its prior open state; without one it goes back
// to the waiting pool with no operator. Closed chats cannot be escalated.
func (s *Service) Escalate(chatID uint, toOperatorID *uint) error {
	chat, err := s.store.GetChatByID(chatID)
	if err != nil {
		return fmt.Errorf("lookup chat: %w", err)
	}
	if chat == nil {
		return ErrChatNotFound
	}
	if chat.Status == models.ChatClosed {
		return ErrChatClosed
	}

	if toOperatorID != nil {
		if _, err := s.store.UpdateChatAssignment(chatID, toOperatorID, models.ChatActive); err != nil {
			return fmt.Errorf("assign chat: %w", err)
		}
		if err := s.store.RemoveWaitingChat(chatID); err != nil {
			log.Printf("WARNING: Failed to remove chat %d from waiting queue: %v", chatID, err)
		}
		return nil
	}

	if _, err := s.store.UpdateChatAssignment(chatID, nil, models.ChatWaiting); err != nil {
		return fmt.Errorf("unassign chat: %w", err)
	}
	if err := s.store.EnqueueWaitingChat(chatID); err != nil {
		log.Printf("ERROR: Failed to enqueue escalated chat %d: %v", chatID, err)
	}
	return nil
}

// AddNote attaches an internal note to a chat, in any state.
func (s *Service) AddNote(chatID, operatorID uint, text string) (*models.ChatNote, error) {
	chat, err := s.store.GetChatByID(chatID)
	if err != nil {
		return nil, fmt.Errorf("lookup chat: %w", err)
	}
	if chat == nil {
		return nil, ErrChatNotFound
	}
	note := &models.ChatNote{ChatID: chatID, OperatorID: operatorID, NoteText: text}
	if err := s.store.AddNote(note); err != nil {
		return nil, fmt.Errorf("save note: %w", err)
	}
	return note, nil
}

// GetNotes returns a chat's notes oldest first.
func (s *Service) GetNotes(chatID uint) ([]models.ChatNote, error) {
	return s.store.ListNotes(chatID)
}

// AddQCRating records a supervisor's score for a chat. A second rating for
// the same chat replaces the first entirely.
func (s *Service) AddQCRating(chatID, operatorID, qcUserID uint, score int, comment string) (*models.QCRating, error) {
	if score < 0 || score > 100 {
		return nil, ErrInvalidScore
	}
	chat, err := s.store.GetChatByID(chatID)
	if err != nil {
		return nil, fmt.Errorf("lookup chat: %w", err)
	}
	if chat == nil {
		return nil, ErrChatNotFound
	}
	rating := &models.QCRating{
		ChatID:     chatID,
		OperatorID: operatorID,
		QCUserID:   qcUserID,
		Score:      score,
		Comment:    comment,
	}
	if err := s.store.UpsertRating(rating); err != nil {
		return nil, fmt.Errorf("save rating: %w", err)
	}
	return rating, nil
}

// GetQCRatings lists ratings, optionally for one operator.
func (s *Service) GetQCRatings(operatorID *uint) ([]models.QCRating, error) {
	return s.store.ListRatings(operatorID)
}
