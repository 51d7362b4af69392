package handler

import (
	"errors"
	"net/http"
	"time"

	"livedesk/backend/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	jwt "github.com/golang-jwt/jwt/v5"
)

type authRequest struct {
	Action   string `json:"action"`
	Username string `json:"username"`
	Password string `json:"password"`
	Status   string `json:"status"`
}

// AuthDispatch routes the action-keyed POST /auth protocol.
func (h *Handler) AuthDispatch(c *gin.Context) {
	var req authRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	switch req.Action {
	case "login":
		h.login(c, req)
	case "logout":
		h.logout(c)
	case "verify":
		h.verify(c)
	case "update_status":
		h.updateStatus(c, req)
	case "get_operators":
		h.getOperators(c)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid action"})
	}
}

func (h *Handler) login(c *gin.Context, req authRequest) {
	if req.Username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password required"})
		return
	}

	result, err := h.Auth.Login(req.Username, req.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
	case errors.Is(err, auth.ErrAccountDeactivated):
		c.JSON(http.StatusForbidden, gin.H{"error": "Account deactivated"})
	case err != nil:
		internalError(c, err)
	default:
		c.JSON(http.StatusOK, gin.H{
			"session_token": result.SessionToken,
			"user":          userSummary(result.User),
		})
	}
}

func (h *Handler) logout(c *gin.Context) {
	token := c.GetHeader(sessionTokenHeader)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No session token"})
		return
	}
	if err := h.Auth.Logout(token); err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) verify(c *gin.Context) {
	token := c.GetHeader(sessionTokenHeader)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"valid": false})
		return
	}
	user, err := h.Auth.Authenticate(token)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthenticated) {
			c.JSON(http.StatusUnauthorized, gin.H{"valid": false})
		} else {
			internalError(c, err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true, "user": userSummary(user)})
}

func (h *Handler) updateStatus(c *gin.Context, req authRequest) {
	token := c.GetHeader(sessionTokenHeader)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	if req.Status == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}
	user, err := h.Auth.Authenticate(token)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthenticated) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Session expired"})
		} else {
			internalError(c, err)
		}
		return
	}
	if err := h.Auth.UpdateStatus(user, req.Status); err != nil {
		if errors.Is(err, auth.ErrInvalidStatus) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		} else {
			internalError(c, err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "status": req.Status})
}

func (h *Handler) getOperators(c *gin.Context) {
	operators, err := h.Auth.Operators()
	if err != nil {
		internalError(c, err)
		return
	}
	out := make([]gin.H, 0, len(operators))
	for i := range operators {
		op := &operators[i]
		out = append(out, gin.H{
			"id":         op.ID,
			"full_name":  op.FullName,
			"role":       op.Role,
			"status":     op.Status,
			"department": op.Department,
		})
	}
	c.JSON(http.StatusOK, out)
}

// GetCurrentUser resolves the session header into the account summary.
func (h *Handler) GetCurrentUser(c *gin.Context) {
	user := h.authenticate(c)
	if user == nil {
		return
	}
	c.JSON(http.StatusOK, userSummary(user))
}

// GetAnonID issues an anonymous identity for the chat widget: a random
// UUID wrapped in a signed JWT, so an account-less visitor can be
// recognised across polls without a server-side session.
func (h *Handler) GetAnonID(c *gin.Context) {
	anonUUID, err := uuid.NewRandom()
	if err != nil {
		internalError(c, err)
		return
	}
	anonID := anonUUID.String()

	claims := jwt.MapClaims{
		"anon_id": anonID,
		"exp":     time.Now().Add(time.Hour * 72).Unix(),
		"iss":     "livedesk-service",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(h.JWTSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": signed, "anon_id": anonID})
}
