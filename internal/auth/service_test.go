package auth_test

import (
	"testing"

	"livedesk/backend/internal/auth"
	"livedesk/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

// MockStore is a testify mock of the auth.Store interface.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) GetUserByUsername(username string) (*models.User, error) {
	args := m.Called(username)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) CreateSession(session *models.Session) error {
	return m.Called(session).Error(0)
}

func (m *MockStore) GetSessionUser(token string) (*models.User, error) {
	args := m.Called(token)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) ExpireSession(token string) error {
	return m.Called(token).Error(0)
}

func (m *MockStore) UpdateUserStatus(userID uint, status string) error {
	return m.Called(userID, status).Error(0)
}

func (m *MockStore) ListOperators() ([]models.User, error) {
	args := m.Called()
	if u := args.Get(0); u != nil {
		return u.([]models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) CacheSessionUser(token string, user *models.User) error {
	return m.Called(token, user).Error(0)
}

func (m *MockStore) GetCachedSessionUser(token string) (*models.User, error) {
	args := m.Called(token)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) DropCachedSession(token string) error {
	return m.Called(token).Error(0)
}

func (m *MockStore) PublishPresence(userID uint, status string) error {
	return m.Called(userID, status).Error(0)
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	assert.NoError(t, err)
	return string(hash)
}

func activeUser(t *testing.T, password string) *models.User {
	return &models.User{
		ID:           7,
		Username:     "alice",
		PasswordHash: hashOf(t, password),
		FullName:     "Alice Ivanova",
		Role:         models.RoleOperator,
		Status:       models.StatusOnline,
		IsActive:     true,
	}
}

// TestLogin_Success verifies a correct password yields a fresh random token.
func TestLogin_Success(t *testing.T) {
	// Arrange
	store := new(MockStore)
	svc := auth.NewService(store, auth.BcryptPolicy{})
	user := activeUser(t, "s3cret")
	store.On("GetUserByUsername", "alice").Return(user, nil)
	var captured *models.Session
	store.On("CreateSession", mock.AnythingOfType("*models.Session")).
		Run(func(args mock.Arguments) { captured = args.Get(0).(*models.Session) }).
		Return(nil)

	// Act
	result, err := svc.Login("alice", "s3cret")

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, user, result.User)
	assert.NotEmpty(t, result.SessionToken)
	assert.GreaterOrEqual(t, len(result.SessionToken), 40, "32 random bytes base64-encoded")
	assert.Equal(t, user.ID, captured.UserID)
	assert.Equal(t, result.SessionToken, captured.SessionToken)
	assert.True(t, captured.ExpiresAt.After(captured.CreatedAt), "expiry must be in the future")
	store.AssertExpectations(t)
}

// TestLogin_TokensAreUnique verifies two logins never share a token.
func TestLogin_TokensAreUnique(t *testing.T) {
	// Arrange
	store := new(MockStore)
	svc := auth.NewService(store, auth.BcryptPolicy{})
	user := activeUser(t, "s3cret")
	store.On("GetUserByUsername", "alice").Return(user, nil)
	store.On("CreateSession", mock.Anything).Return(nil)

	// Act
	first, err1 := svc.Login("alice", "s3cret")
	second, err2 := svc.Login("alice", "s3cret")

	// Assert - prior sessions stay valid, new logins just add tokens
	assert.NoError(t, err1)
	assert.NoError(t, err2)
	assert.NotEqual(t, first.SessionToken, second.SessionToken)
}

// TestLogin_UnknownUser verifies an unknown username is a credentials error.
func TestLogin_UnknownUser(t *testing.T) {
	store := new(MockStore)
	svc := auth.NewService(store, auth.BcryptPolicy{})
	store.On("GetUserByUsername", "ghost").Return(nil, nil)

	_, err := svc.Login("ghost", "whatever")

	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

// TestLogin_WrongPassword verifies a bad password is rejected.
func TestLogin_WrongPassword(t *testing.T) {
	store := new(MockStore)
	svc := auth.NewService(store, auth.BcryptPolicy{})
	store.On("GetUserByUsername", "alice").Return(activeUser(t, "s3cret"), nil)

	_, err := svc.Login("alice", "not-it")

	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	store.AssertNotCalled(t, "CreateSession", mock.Anything)
}

// TestLogin_DeactivatedAccount verifies an inactive account is rejected with
// a distinct error before the password is even checked.
func TestLogin_DeactivatedAccount(t *testing.T) {
	// Arrange
	store := new(MockStore)
	svc := auth.NewService(store, auth.BcryptPolicy{})
	user := activeUser(t, "s3cret")
	user.IsActive = false
	store.On("GetUserByUsername", "alice").Return(user, nil)

	// Act
	_, errRightPassword := svc.Login("alice", "s3cret")
	_, errWrongPassword := svc.Login("alice", "wrong")

	// Assert
	assert.ErrorIs(t, errRightPassword, auth.ErrAccountDeactivated)
	assert.ErrorIs(t, errWrongPassword, auth.ErrAccountDeactivated)
}

// TestLogin_DemoBypass documents the legacy behavior: under BypassPolicy the
// two fixed literals log in any active account, whatever its real password.
func TestLogin_DemoBypass(t *testing.T) {
	// Arrange
	store := new(MockStore)
	svc := auth.NewService(store, auth.BypassPolicy{})
	store.On("GetUserByUsername", "alice").Return(activeUser(t, "totally-different"), nil)
	store.On("CreateSession", mock.Anything).Return(nil)

	// Act
	demo, errDemo := svc.Login("alice", "demo123")
	pin, errPin := svc.Login("alice", "803254")

	// Assert
	assert.NoError(t, errDemo)
	assert.NotEmpty(t, demo.SessionToken)
	assert.NoError(t, errPin)
	assert.NotEmpty(t, pin.SessionToken)
}

// TestLogin_BcryptPolicyRejectsBypassLiterals verifies the hardened policy
// treats the legacy literals as ordinary wrong passwords.
func TestLogin_BcryptPolicyRejectsBypassLiterals(t *testing.T) {
	store := new(MockStore)
	svc := auth.NewService(store, auth.BcryptPolicy{})
	store.On("GetUserByUsername", "alice").Return(activeUser(t, "s3cret"), nil)

	_, errDemo := svc.Login("alice", "demo123")
	_, errPin := svc.Login("alice", "803254")

	assert.ErrorIs(t, errDemo, auth.ErrInvalidCredentials)
	assert.ErrorIs(t, errPin, auth.ErrInvalidCredentials)
}

// TestAuthenticate_EmptyToken verifies a missing token never reaches the store.
func TestAuthenticate_EmptyToken(t *testing.T) {
	store := new(MockStore)
	svc := auth.NewService(store, auth.BcryptPolicy{})

	_, err := svc.Authenticate("")

	assert.ErrorIs(t, err, auth.ErrUnauthenticated)
	store.AssertNotCalled(t, "GetSessionUser", mock.Anything)
}

// TestAuthenticate_InvalidSession verifies expired/unknown tokens and
// deactivated owners all collapse to ErrUnauthenticated. The store resolves
// a session only when the expiry is in the future and the user is active, so
// a nil result covers all three cases.
func TestAuthenticate_InvalidSession(t *testing.T) {
	store := new(MockStore)
	svc := auth.NewService(store, auth.BcryptPolicy{})
	store.On("GetCachedSessionUser", "stale-token").Return(nil, nil)
	store.On("GetSessionUser", "stale-token").Return(nil, nil)

	_, err := svc.Authenticate("stale-token")

	assert.ErrorIs(t, err, auth.ErrUnauthenticated)
}

// TestAuthenticate_CacheHit verifies a cached snapshot short-circuits the DB.
func TestAuthenticate_CacheHit(t *testing.T) {
	// Arrange
	store := new(MockStore)
	svc := auth.NewService(store, auth.BcryptPolicy{})
	user := activeUser(t, "s3cret")
	store.On("GetCachedSessionUser", "tok").Return(user, nil)

	// Act
	got, err := svc.Authenticate("tok")

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, user, got)
	store.AssertNotCalled(t, "GetSessionUser", mock.Anything)
}

// TestAuthenticate_CacheMissFillsCache verifies a DB hit is cached for next time.
func TestAuthenticate_CacheMissFillsCache(t *testing.T) {
	store := new(MockStore)
	svc := auth.NewService(store, auth.BcryptPolicy{})
	user := activeUser(t, "s3cret")
	store.On("GetCachedSessionUser", "tok").Return(nil, nil)
	store.On("GetSessionUser", "tok").Return(user, nil)
	store.On("CacheSessionUser", "tok", user).Return(nil)

	got, err := svc.Authenticate("tok")

	assert.NoError(t, err)
	assert.Equal(t, user, got)
	store.AssertExpectations(t)
}

// TestAuthorize_ExactMatchOnly verifies there is no role hierarchy.
func TestAuthorize_ExactMatchOnly(t *testing.T) {
	svc := auth.NewService(new(MockStore), auth.BcryptPolicy{})

	admin := &models.User{Role: models.RoleAdmin}
	okk := &models.User{Role: models.RoleOKK}

	assert.NoError(t, svc.Authorize(admin, models.RoleAdmin))
	assert.ErrorIs(t, svc.Authorize(okk, models.RoleAdmin), auth.ErrForbidden,
		"okk must not pass an admin check")
	assert.ErrorIs(t, svc.Authorize(admin, models.RoleOperator), auth.ErrForbidden,
		"admin must not pass an operator check either")
	assert.ErrorIs(t, svc.Authorize(nil, models.RoleAdmin), auth.ErrForbidden)
}

// TestLogout verifies the session is expired in place and the cache dropped.
func TestLogout(t *testing.T) {
	store := new(MockStore)
	svc := auth.NewService(store, auth.BcryptPolicy{})
	store.On("ExpireSession", "tok").Return(nil)
	store.On("DropCachedSession", "tok").Return(nil)

	err := svc.Logout("tok")

	assert.NoError(t, err)
	store.AssertExpectations(t)
}

// TestUpdateStatus verifies the enum check and the presence broadcast.
func TestUpdateStatus(t *testing.T) {
	// Arrange
	store := new(MockStore)
	svc := auth.NewService(store, auth.BcryptPolicy{})
	user := &models.User{ID: 7, Role: models.RoleOperator}
	store.On("UpdateUserStatus", uint(7), models.StatusOnline).Return(nil)
	store.On("PublishPresence", uint(7), models.StatusOnline).Return(nil)

	// Act
	errValid := svc.UpdateStatus(user, models.StatusOnline)
	errInvalid := svc.UpdateStatus(user, "lunch")

	// Assert
	assert.NoError(t, errValid)
	assert.ErrorIs(t, errInvalid, auth.ErrInvalidStatus)
	store.AssertExpectations(t)
	store.AssertNotCalled(t, "UpdateUserStatus", uint(7), "lunch")
}
