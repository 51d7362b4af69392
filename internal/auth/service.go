package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"time"

	"livedesk/backend/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDeactivated = errors.New("account deactivated")
	ErrUnauthenticated    = errors.New("invalid or expired session")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidStatus      = errors.New("invalid status")
)

// sessionTTL is how long an issued token stays valid. Logging in again does
// not invalidate earlier sessions; concurrent sessions are allowed.
const sessionTTL = 7 * 24 * time.Hour

// Store is the persistence surface the auth service needs.
type Store interface {
	GetUserByUsername(username string) (*models.User, error)
	CreateSession(session *models.Session) error
	GetSessionUser(token string) (*models.User, error)
	ExpireSession(token string) error
	UpdateUserStatus(userID uint, status string) error
	ListOperators() ([]models.User, error)
	CacheSessionUser(token string, user *models.User) error
	GetCachedSessionUser(token string) (*models.User, error)
	DropCachedSession(token string) error
	PublishPresence(userID uint, status string) error
}

// Service is the auth guard: it issues sessions at login, resolves tokens to
// users on every privileged operation, and owns the status directory.
type Service struct {
	store  Store
	policy VerifyPolicy
}

func NewService(store Store, policy VerifyPolicy) *Service {
	return &Service{store: store, policy: policy}
}

// LoginResult couples the issued token with the account it belongs to.
type LoginResult struct {
	SessionToken string
	User         *models.User
}

// Login verifies credentials and issues a fresh session token.
// A deactivated account is rejected before the password is checked.
func (s *Service) Login(username, password string) (*LoginResult, error) {
	user, err := s.store.GetUserByUsername(username)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountDeactivated
	}
	if !s.policy.Verify(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	session := &models.Session{
		UserID:       user.ID,
		SessionToken: token,
		ExpiresAt:    time.Now().Add(sessionTTL),
	}
	if err := s.store.CreateSession(session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	log.Printf("INFO: User %s logged in", user.Username)
	return &LoginResult{SessionToken: token, User: user}, nil
}

// Authenticate resolves a token to its user. Fails with ErrUnauthenticated
// when the token is missing, unknown, expired, or the user is inactive.
func (s *Service) Authenticate(token string) (*models.User, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	cached, err := s.store.GetCachedSessionUser(token)
	if err != nil {
		log.Printf("WARNING: Session cache read failed: %v", err)
	} else if cached != nil {
		return cached, nil
	}

	user, err := s.store.GetSessionUser(token)
	if err != nil {
		return nil, fmt.Errorf("resolve session: %w", err)
	}
	if user == nil {
		return nil, ErrUnauthenticated
	}
	if err := s.store.CacheSessionUser(token, user); err != nil {
		log.Printf("WARNING: Session cache write failed: %v", err)
	}
	return user, nil
}

// Authorize requires an exact role match. There is no role hierarchy: only
// an admin passes an admin check, regardless of any other privilege.
func (s *Service) Authorize(user *models.User, requiredRole string) error {
	if user == nil || user.Role != requiredRole {
		return ErrForbidden
	}
	return nil
}

// Logout invalidates the token. The session row stays around with its
// expiry set to now.
func (s *Service) Logout(token string) error {
	if err := s.store.ExpireSession(token); err != nil {
		return fmt.Errorf("expire session: %w", err)
	}
	if err := s.store.DropCachedSession(token); err != nil {
		log.Printf("WARNING: Failed to drop cached session: %v", err)
	}
	return nil
}

// UpdateStatus records the user's self-reported availability and broadcasts
// the change so the dispatcher can react to operators coming online.
func (s *Service) UpdateStatus(user *models.User, status string) error {
	if !models.ValidStatus(status) {
		return ErrInvalidStatus
	}
	if err := s.store.UpdateUserStatus(user.ID, status); err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if err := s.store.PublishPresence(user.ID, status); err != nil {
		log.Printf("WARNING: Failed to publish presence for user %d: %v", user.ID, err)
	}
	return nil
}

// Operators lists the active, chat-eligible accounts.
func (s *Service) Operators() ([]models.User, error) {
	return s.store.ListOperators()
}

// generateToken returns a 32-byte cryptographically random URL-safe token.
func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
