package handler

import (
	"errors"
	"net/http"

	"livedesk/backend/internal/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// GetUsers returns every account, newest first. Admin only.
func (h *Handler) GetUsers(c *gin.Context) {
	if h.requireAdmin(c) == nil {
		return
	}
	users, err := h.Users.ListUsers()
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

type createUserRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	FullName   string `json:"full_name"`
	Role       string `json:"role"`
	Department string `json:"department"`
}

// CreateUser provisions a staff or client account. Admin only.
func (h *Handler) CreateUser(c *gin.Context) {
	if h.requireAdmin(c) == nil {
		return
	}

	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.Username == "" || req.Password == "" || req.FullName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username, password, and full_name required"})
		return
	}
	if req.Role == "" {
		req.Role = models.RoleClient
	}
	if !models.ValidRole(req.Role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		internalError(c, err)
		return
	}

	user := &models.User{
		Username:     req.Username,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Role:         req.Role,
		Status:       models.StatusOffline,
		Department:   req.Department,
		IsActive:     true,
	}
	if err := h.Users.CreateUser(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username already exists"})
			return
		}
		internalError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

type updateUserRequest struct {
	ID         uint    `json:"id"`
	Username   *string `json:"username"`
	FullName   *string `json:"full_name"`
	Role       *string `json:"role"`
	Department *string `json:"department"`
	IsActive   *bool   `json:"is_active"`
	Password   *string `json:"password"`
}

// UpdateUser applies a partial update: only the fields present in the
// request are written, as one parameterized statement. Admin only.
func (h *Handler) UpdateUser(c *gin.Context) {
	if h.requireAdmin(c) == nil {
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.ID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User ID required"})
		return
	}

	fields := map[string]interface{}{}
	if req.Username != nil && *req.Username != "" {
		fields["username"] = *req.Username
	}
	if req.FullName != nil && *req.FullName != "" {
		fields["full_name"] = *req.FullName
	}
	if req.Role != nil && *req.Role != "" {
		if !models.ValidRole(*req.Role) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
			return
		}
		fields["role"] = *req.Role
	}
	if req.Department != nil {
		fields["department"] = *req.Department
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}
	if req.Password != nil && *req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			internalError(c, err)
			return
		}
		fields["password_hash"] = string(hash)
	}

	user, err := h.Users.UpdateUserFields(req.ID, fields)
	if err != nil {
		internalError(c, err)
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) requireAdmin(c *gin.Context) *models.User {
	user := h.authenticate(c)
	if user == nil {
		return nil
	}
	if err := h.Auth.Authorize(user, models.RoleAdmin); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied - admin only"})
		return nil
	}
	return user
}
