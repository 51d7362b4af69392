package handler

import (
	"errors"
	"net/http"

	"livedesk/backend/internal/chats"
	"livedesk/backend/internal/models"

	"github.com/gin-gonic/gin"
)

type chatRequest struct {
	Action       string  `json:"action"`
	ClientName   string  `json:"client_name"`
	ClientEmail  *string `json:"client_email"`
	ChatID       uint    `json:"chat_id"`
	SenderType   string  `json:"sender_type"`
	SenderID     *uint   `json:"sender_id"`
	MessageText  string  `json:"message_text"`
	ToOperatorID *uint   `json:"to_operator_id"`
	OperatorID   *uint   `json:"operator_id"`
	QCUserID     uint    `json:"qc_user_id"`
	Score        *int    `json:"score"`
	Comment      string  `json:"comment"`
	NoteText     string  `json:"note_text"`
}

// ChatDispatch routes the action-keyed POST /chats protocol. Chat creation,
// message sending and message retrieval are public (the client widget has no
// account); everything else requires a staff session.
func (h *Handler) ChatDispatch(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	switch req.Action {
	case "create_chat":
		h.createChat(c, req)
	case "send_message":
		h.sendMessage(c, req)
	case "get_messages":
		h.getMessages(c, req)
	case "close_chat":
		if h.requireRole(c, models.EligibleRoles...) != nil {
			h.closeChat(c, req)
		}
	case "escalate_chat":
		if h.requireRole(c, models.EligibleRoles...) != nil {
			h.escalateChat(c, req)
		}
	case "add_note":
		if user := h.requireRole(c, models.EligibleRoles...); user != nil {
			h.addNote(c, req, user)
		}
	case "get_notes":
		if h.requireRole(c, models.EligibleRoles...) != nil {
			h.getNotes(c, req)
		}
	case "add_qc_rating":
		if user := h.requireRole(c, models.RoleOKK, models.RoleAdmin); user != nil {
			h.addQCRating(c, req, user)
		}
	case "get_qc_ratings":
		if h.requireRole(c, models.EligibleRoles...) != nil {
			h.getQCRatings(c, req)
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid action"})
	}
}

func (h *Handler) createChat(c *gin.Context, req chatRequest) {
	if req.ClientName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Client name required"})
		return
	}
	chat, err := h.Selector.RouteNewChat(req.ClientName, req.ClientEmail)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusCreated, chat)
}

func (h *Handler) sendMessage(c *gin.Context, req chatRequest) {
	if req.ChatID == 0 || req.MessageText == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Chat ID and message text required"})
		return
	}
	senderType := req.SenderType
	if senderType == "" {
		senderType = models.SenderClient
	}
	msg, err := h.Chats.SendMessage(req.ChatID, senderType, req.SenderID, req.MessageText)
	switch {
	case errors.Is(err, chats.ErrInvalidSender):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sender type"})
	case errors.Is(err, chats.ErrChatNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Chat not found"})
	case err != nil:
		internalError(c, err)
	default:
		c.JSON(http.StatusCreated, msg)
	}
}

func (h *Handler) getMessages(c *gin.Context, req chatRequest) {
	if req.ChatID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Chat ID required"})
		return
	}
	messages, err := h.Chats.GetMessages(req.ChatID)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

// GetChats lists chat summaries, optionally filtered by exact status.
func (h *Handler) GetChats(c *gin.Context) {
	summaries, err := h.Chats.GetChats(c.Query("status"))
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, summaries)
}

func (h *Handler) closeChat(c *gin.Context, req chatRequest) {
	if req.ChatID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Chat ID required"})
		return
	}
	err := h.Chats.Close(req.ChatID)
	switch {
	case errors.Is(err, chats.ErrChatNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Chat not found"})
	case err != nil:
		internalError(c, err)
	default:
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

func (h *Handler) escalateChat(c *gin.Context, req chatRequest) {
	if req.ChatID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Chat ID required"})
		return
	}
	err := h.Chats.Escalate(req.ChatID, req.ToOperatorID)
	switch {
	case errors.Is(err, chats.ErrChatNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Chat not found"})
	case errors.Is(err, chats.ErrChatClosed):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Chat is closed"})
	case err != nil:
		internalError(c, err)
	default:
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

func (h *Handler) addNote(c *gin.Context, req chatRequest, user *models.User) {
	if req.ChatID == 0 || req.NoteText == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Chat ID and note text required"})
		return
	}
	operatorID := user.ID
	if req.OperatorID != nil {
		operatorID = *req.OperatorID
	}
	note, err := h.Chats.AddNote(req.ChatID, operatorID, req.NoteText)
	switch {
	case errors.Is(err, chats.ErrChatNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Chat not found"})
	case err != nil:
		internalError(c, err)
	default:
		c.JSON(http.StatusCreated, note)
	}
}

func (h *Handler) getNotes(c *gin.Context, req chatRequest) {
	if req.ChatID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Chat ID required"})
		return
	}
	notes, err := h.Chats.GetNotes(req.ChatID)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, notes)
}

func (h *Handler) addQCRating(c *gin.Context, req chatRequest, user *models.User) {
	if req.ChatID == 0 || req.OperatorID == nil || req.Score == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Chat ID, operator ID and score required"})
		return
	}
	qcUserID := req.QCUserID
	if qcUserID == 0 {
		qcUserID = user.ID
	}
	rating, err := h.Chats.AddQCRating(req.ChatID, *req.OperatorID, qcUserID, *req.Score, req.Comment)
	switch {
	case errors.Is(err, chats.ErrInvalidScore):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Score must be between 0 and 100"})
	case errors.Is(err, chats.ErrChatNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Chat not found"})
	case err != nil:
		internalError(c, err)
	default:
		c.JSON(http.StatusOK, rating)
	}
}

func (h *Handler) getQCRatings(c *gin.Context, req chatRequest) {
	ratings, err := h.Chats.GetQCRatings(req.OperatorID)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, ratings)
}
