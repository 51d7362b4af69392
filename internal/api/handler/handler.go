package handler

import (
	"errors"
	"net/http"

	"livedesk/backend/internal/auth"
	"livedesk/backend/internal/chats"
	"livedesk/backend/internal/models"
	"livedesk/backend/internal/routing"

	"github.com/gin-gonic/gin"
)

// sessionTokenHeader carries the bearer token on every privileged call.
const sessionTokenHeader = "X-Session-Token"

// UserStore is the persistence surface of the admin user CRUD.
type UserStore interface {
	ListUsers() ([]models.User, error)
	CreateUser(user *models.User) error
	UpdateUserFields(userID uint, fields map[string]interface{}) (*models.User, error)
}

// Handler wires the HTTP surface to the services.
type Handler struct {
	Auth      *auth.Service
	Chats     *chats.Service
	Selector  *routing.SelectorService
	Users     UserStore
	JWTSecret []byte
}

func NewHandler(authSvc *auth.Service, chatSvc *chats.Service, selector *routing.SelectorService, users UserStore, jwtSecret []byte) *Handler {
	return &Handler{
		Auth:      authSvc,
		Chats:     chatSvc,
		Selector:  selector,
		Users:     users,
		JWTSecret: jwtSecret,
	}
}

// Register attaches all routes. Action-keyed POST dispatch mirrors the wire
// protocol the frontend speaks.
func (h *Handler) Register(r *gin.Engine) {
	r.POST("/auth", h.AuthDispatch)
	r.GET("/auth", h.GetCurrentUser)

	r.POST("/chats", h.ChatDispatch)
	r.GET("/chats", h.GetChats)

	r.GET("/users", h.GetUsers)
	r.POST("/users", h.CreateUser)
	r.PUT("/users", h.UpdateUser)

	r.GET("/client/anonid", h.GetAnonID)
}

// userSummary is the account shape returned by the auth surface.
func userSummary(u *models.User) gin.H {
	return gin.H{
		"id":         u.ID,
		"username":   u.Username,
		"full_name":  u.FullName,
		"role":       u.Role,
		"status":     u.Status,
		"department": u.Department,
	}
}

// authenticate resolves the session header, writing 401 on failure.
func (h *Handler) authenticate(c *gin.Context) *models.User {
	token := c.GetHeader(sessionTokenHeader)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return nil
	}
	user, err := h.Auth.Authenticate(token)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthenticated) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
		} else {
			internalError(c, err)
		}
		return nil
	}
	return user
}

// requireRole authenticates and checks the user's role against the allowed
// set. Exact match only, no hierarchy.
func (h *Handler) requireRole(c *gin.Context, roles ...string) *models.User {
	user := h.authenticate(c)
	if user == nil {
		return nil
	}
	for _, role := range roles {
		if user.Role == role {
			return user
		}
	}
	c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
	return nil
}

// internalError hides storage faults behind a generic 500. Details go to
// the log only.
func internalError(c *gin.Context, err error) {
	logError(c, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
