package storage

import (
	"errors"
	"log"

	"livedesk/backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// routingLockKey serializes the count-then-assign sequence of the operator
// selector. Without it two concurrent creations can both observe the same
// least-loaded operator before either commit becomes visible.
const routingLockKey = 774101

// candidateSQL picks the least-loaded eligible online operator. Ties break
// on the lowest user id so selection is deterministic.
const candidateSQL = `
    SELECT u.id
    FROM users u
    WHERE u.is_active = true AND u.status = 'online' AND u.role IN ('operator', 'okk', 'admin')
    ORDER BY (SELECT COUNT(*) FROM chats c
              WHERE c.assigned_operator_id = u.id AND c.status = 'active') ASC,
             u.id ASC
    LIMIT 1`

func pickCandidate(tx *gorm.DB) (*uint, error) {
	if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", routingLockKey).Error; err != nil {
		return nil, err
	}
	var ids []uint
	if err := tx.Raw(candidateSQL).Scan(&ids).Error; err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return &ids[0], nil
}

// RouteChat creates a chat routed to the least-loaded online operator, or a
// waiting chat when nobody is available, and appends the welcome message.
// Selection, insert and welcome commit as one transaction; the advisory lock
// keeps concurrent creations from piling onto the same operator.
func (s *Service) RouteChat(chat *models.Chat, welcomeText string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		candidate, err := pickCandidate(tx)
		if err != nil {
			return err
		}
		if candidate != nil {
			chat.Status = models.ChatActive
			chat.AssignedOperatorID = candidate
		} else {
			chat.Status = models.ChatWaiting
			chat.AssignedOperatorID = nil
		}
		if err := tx.Create(chat).Error; err != nil {
			return err
		}
		welcome := models.Message{
			ChatID:      chat.ID,
			SenderType:  models.SenderSystem,
			MessageText: welcomeText,
		}
		return tx.Create(&welcome).Error
	})
}

// AssignWaitingChat tries to hand one parked chat to the least-loaded online
// operator. retry is true when no operator was available and the chat should
// go back to the queue; assigned is false with retry false when the chat is
// no longer waiting and can be dropped from the queue.
func (s *Service) AssignWaitingChat(chatID uint, joinText string) (assigned bool, retry bool, err error) {
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		candidate, txErr := pickCandidate(tx)
		if txErr != nil {
			return txErr
		}
		if candidate == nil {
			retry = true
			return nil
		}
		res := tx.Model(&models.Chat{}).
			Where("id = ? AND status = ?", chatID, models.ChatWaiting).
			Updates(map[string]interface{}{
				"assigned_operator_id": *candidate,
				"status":               models.ChatActive,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		joined := models.Message{
			ChatID:      chatID,
			SenderType:  models.SenderSystem,
			MessageText: joinText,
		}
		if txErr := tx.Create(&joined).Error; txErr != nil {
			return txErr
		}
		assigned = true
		return nil
	})
	return assigned, retry, err
}

// GetChatByID returns the chat or nil when no such row exists.
func (s *Service) GetChatByID(chatID uint) (*models.Chat, error) {
	var chat models.Chat
	err := s.DB.First(&chat, chatID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

const chatSummarySelect = `
    SELECT c.id, c.client_name, c.client_email, c.assigned_operator_id, c.status,
           c.created_at, c.updated_at,
           u.full_name AS assigned_operator_name,
           (SELECT COUNT(*) FROM messages
            WHERE chat_id = c.id AND is_read = false AND sender_type = 'client') AS unread_count,
           (SELECT message_text FROM messages
            WHERE chat_id = c.id ORDER BY created_at DESC LIMIT 1) AS last_message,
           (SELECT created_at FROM messages
            WHERE chat_id = c.id ORDER BY created_at DESC LIMIT 1) AS last_message_time
    FROM chats c
    LEFT JOIN users u ON u.id = c.assigned_operator_id`

// ListChatSummaries returns chats with dashboard aggregates, most recently
// updated first, optionally filtered to one exact status.
func (s *Service) ListChatSummaries(status string) ([]models.ChatSummary, error) {
	var summaries []models.ChatSummary
	var err error
	if status != "" {
		err = s.DB.Raw(chatSummarySelect+" WHERE c.status = ? ORDER BY c.updated_at DESC", status).
			Scan(&summaries).Error
	} else {
		err = s.DB.Raw(chatSummarySelect + " ORDER BY c.updated_at DESC").Scan(&summaries).Error
	}
	if err != nil {
		log.Printf("ERROR: Failed to list chat summaries: %v", err)
		return nil, err
	}
	return summaries, nil
}

// UpdateChatAssignment moves a chat to the given operator and status in one
// update, touching updated_at. Reports whether the chat existed.
func (s *Service) UpdateChatAssignment(chatID uint, operatorID *uint, status string) (bool, error) {
	res := s.DB.Model(&models.Chat{}).
		Where("id = ?", chatID).
		Updates(map[string]interface{}{
			"assigned_operator_id": operatorID,
			"status":               status,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// CloseChat marks a chat closed. Reports whether the chat existed.
func (s *Service) CloseChat(chatID uint) (bool, error) {
	res := s.DB.Model(&models.Chat{}).
		Where("id = ?", chatID).
		Update("status", models.ChatClosed)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// CreateMessageAndTouchChat inserts the message and bumps the owning chat's
// updated_at in one transaction, so recency sorting never lags the message.
func (s *Service) CreateMessageAndTouchChat(msg *models.Message) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		return tx.Model(&models.Chat{}).
			Where("id = ?", msg.ChatID).
			Update("updated_at", gorm.Expr("NOW()")).Error
	})
}

// ListMessages returns a chat's messages oldest first, with the sender's
// display name resolved for operator messages.
func (s *Service) ListMessages(chatID uint) ([]models.MessageWithSender, error) {
	var messages []models.MessageWithSender
	err := s.DB.Raw(`
        SELECT m.id, m.chat_id, m.sender_type, m.sender_id, m.message_text,
               m.is_read, m.created_at,
               u.full_name AS sender_name
        FROM messages m
        LEFT JOIN users u ON u.id = m.sender_id
        WHERE m.chat_id = ?
        ORDER BY m.created_at ASC`, chatID).Scan(&messages).Error
	if err != nil {
		log.Printf("ERROR: Failed to list messages for chat %d: %v", chatID, err)
		return nil, err
	}
	return messages, nil
}

func (s *Service) AddNote(note *models.ChatNote) error {
	return s.DB.Create(note).Error
}

// ListNotes returns a chat's internal notes oldest first.
func (s *Service) ListNotes(chatID uint) ([]models.ChatNote, error) {
	var notes []models.ChatNote
	err := s.DB.Where("chat_id = ?", chatID).Order("created_at ASC").Find(&notes).Error
	if err != nil {
		return nil, err
	}
	return notes, nil
}

// UpsertRating inserts the rating or, when the chat is already rated,
// replaces the existing row entirely. Keyed on the unique chat_id.
func (s *Service) UpsertRating(rating *models.QCRating) error {
	return s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "chat_id"}},
		UpdateAll: true,
	}).Create(rating).Error
}

// ListRatings returns QC ratings newest first, optionally for one operator.
func (s *Service) ListRatings(operatorID *uint) ([]models.QCRating, error) {
	var ratings []models.QCRating
	q := s.DB.Order("created_at DESC")
	if operatorID != nil {
		q = q.Where("operator_id = ?", *operatorID)
	}
	if err := q.Find(&ratings).Error; err != nil {
		return nil, err
	}
	return ratings, nil
}
