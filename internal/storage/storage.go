package storage

import (
	"context"
	"errors"
	"log"

	"livedesk/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Service is the persistence layer: PostgreSQL via GORM as the source of
// truth, Redis for the session cache, the waiting-chat queue and presence
// pub/sub. Consumers declare the slice of it they need as a local interface.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

// GetUserByID returns the user or nil when no such row exists.
func (s *Service) GetUserByID(userID uint) (*models.User, error) {
	var user models.User
	err := s.DB.First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByUsername returns the user or nil when no such row exists.
func (s *Service) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	err := s.DB.Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers returns all accounts, newest first. Admin surface only.
func (s *Service) ListUsers() ([]models.User, error) {
	var users []models.User
	if err := s.DB.Order("created_at DESC").Find(&users).Error; err != nil {
		log.Printf("ERROR: Failed to list users: %v", err)
		return nil, err
	}
	return users, nil
}

// ListOperators returns the active, chat-eligible accounts ordered by name.
func (s *Service) ListOperators() ([]models.User, error) {
	var users []models.User
	err := s.DB.Where("is_active = ? AND role IN ?", true, models.EligibleRoles).
		Order("full_name ASC").
		Find(&users).Error
	if err != nil {
		log.Printf("ERROR: Failed to list operators: %v", err)
		return nil, err
	}
	return users, nil
}

func (s *Service) CreateUser(user *models.User) error {
	return s.DB.Create(user).Error
}

// UpdateUserFields applies a partial update built from only the fields the
// request carried. Values are bound as parameters, never spliced into SQL.
// Returns nil when the target user does not exist.
func (s *Service) UpdateUserFields(userID uint, fields map[string]interface{}) (*models.User, error) {
	fields["updated_at"] = gorm.Expr("NOW()")
	res := s.DB.Model(&models.User{}).Where("id = ?", userID).Updates(fields)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return s.GetUserByID(userID)
}

// UpdateUserStatus records a user's self-reported availability.
func (s *Service) UpdateUserStatus(userID uint, status string) error {
	return s.DB.Model(&models.User{}).
		Where("id = ?", userID).
		Update("status", status).Error
}

func (s *Service) CreateSession(session *models.Session) error {
	return s.DB.Create(session).Error
}

// GetSessionUser resolves a token to its owning user. Returns nil when the
// token is unknown, the session has expired, or the user was deactivated.
func (s *Service) GetSessionUser(token string) (*models.User, error) {
	var user models.User
	err := s.DB.Raw(`
        SELECT u.*
        FROM sessions s
        JOIN users u ON u.id = s.user_id
        WHERE s.session_token = ? AND s.expires_at > NOW() AND u.is_active = true`,
		token).Scan(&user).Error
	if err != nil {
		log.Printf("ERROR: Failed to resolve session: %v", err)
		return nil, err
	}
	if user.ID == 0 {
		return nil, nil
	}
	return &user, nil
}

// ExpireSession invalidates a token by moving its expiry into the past.
// Sessions are never deleted.
func (s *Service) ExpireSession(token string) error {
	return s.DB.Model(&models.Session{}).
		Where("session_token = ?", token).
		Update("expires_at", gorm.Expr("NOW()")).Error
}

// ExpireUserSessions invalidates every live session of one user. Used by the
// admin CLI after deactivating an account.
func (s *Service) ExpireUserSessions(userID uint) error {
	return s.DB.Model(&models.Session{}).
		Where("user_id = ? AND expires_at > NOW()", userID).
		Update("expires_at", gorm.Expr("NOW()")).Error
}
