package api

import (
	"errors"
	"fmt"
	"net/http"

	"gymsync/backend/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChatHandler covers the member/trainer messaging routes.
type ChatHandler struct {
	chatService service.ChatService
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// --- Request Structs ---

type InitiateChatRequest struct {
	// ParticipantID is optional for members; it defaults to their assigned
	// trainer. Trainers must name the member.
	ParticipantID string `json:"participantId"`
}

type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// abortChatError maps the chat service failures to response codes.
func abortChatError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPremiumRequired):
		abortWithError(c, http.StatusForbidden, err.Error(), CodeSubscriptionRequired)
	case errors.Is(err, service.ErrChatNotAllowed):
		abortWithError(c, http.StatusForbidden, err.Error(), CodeAccessDenied)
	case errors.Is(err, service.ErrChatNotFound):
		abortWithError(c, http.StatusNotFound, err.Error(), CodeChatNotFound)
	case errors.Is(err, service.ErrUserNotFound):
		abortWithError(c, http.StatusNotFound, err.Error(), CodeNotFound)
	default:
		abortWithError(c, http.StatusInternalServerError, "Chat operation failed", CodeInternalError)
	}
}

// --- Handler Methods ---

// Initiate finds or creates the chat with the caller's assigned counterpart.
func (h *ChatHandler) Initiate(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify account", CodeInternalError)
		return
	}

	var req InitiateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err), CodeValidationError)
		return
	}

	otherID := primitive.NilObjectID
	if req.ParticipantID != "" {
		otherID, err = primitive.ObjectIDFromHex(req.ParticipantID)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid participantId", CodeValidationError)
			return
		}
	}

	chat, err := h.chatService.InitiateChat(c.Request.Context(), userID, otherID)
	if err != nil {
		abortChatError(c, err)
		return
	}
	respondOK(c, http.StatusOK, chat)
}

// List pages through the caller's chats with previews.
func (h *ChatHandler) List(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify account", CodeInternalError)
		return
	}

	page, limit := parsePaging(c)
	summaries, total, err := h.chatService.ListChats(c.Request.Context(), userID, page, limit)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load chats", CodeInternalError)
		return
	}
	respondPage(c, summaries, page, limit, total)
}

// History pages through a chat's messages, oldest first.
func (h *ChatHandler) History(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify account", CodeInternalError)
		return
	}
	chatID, ok := parseObjectIDParam(c, "chatId")
	if !ok {
		return
	}

	page, limit := parsePaging(c)
	messages, total, err := h.chatService.History(c.Request.Context(), chatID, userID, page, limit)
	if err != nil {
		abortChatError(c, err)
		return
	}
	respondPage(c, messages, page, limit, total)
}

// SendMessage appends a message to the chat.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify account", CodeInternalError)
		return
	}
	chatID, ok := parseObjectIDParam(c, "chatId")
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err), CodeValidationError)
		return
	}

	message, err := h.chatService.SendMessage(c.Request.Context(), chatID, userID, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyMessage):
			abortWithError(c, http.StatusBadRequest, err.Error(), CodeValidationError)
		case errors.Is(err, service.ErrMessageTooLong):
			abortWithError(c, http.StatusBadRequest, err.Error(), CodeMessageTooLong)
		default:
			abortChatError(c, err)
		}
		return
	}
	respondOK(c, http.StatusCreated, message)
}

// DeleteMessage removes the caller's own message inside the delete window.
func (h *ChatHandler) DeleteMessage(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify account", CodeInternalError)
		return
	}
	messageID, ok := parseObjectIDParam(c, "messageId")
	if !ok {
		return
	}

	if err := h.chatService.DeleteMessage(c.Request.Context(), messageID, userID); err != nil {
		switch {
		case errors.Is(err, service.ErrMessageNotFound):
			abortWithError(c, http.StatusNotFound, err.Error(), CodeMessageNotFound)
		case errors.Is(err, service.ErrDeleteWindowExpired):
			abortWithError(c, http.StatusForbidden, err.Error(), CodeDeleteTimeExpired)
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to delete message", CodeInternalError)
		}
		return
	}
	respondMessage(c, http.StatusOK, "Message deleted")
}

// MarkRead stamps the caller's read marker on the chat.
func (h *ChatHandler) MarkRead(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify account", CodeInternalError)
		return
	}
	chatID, ok := parseObjectIDParam(c, "chatId")
	if !ok {
		return
	}

	if err := h.chatService.MarkRead(c.Request.Context(), chatID, userID); err != nil {
		if errors.Is(err, service.ErrChatNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error(), CodeChatNotFound)
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to mark chat read", CodeInternalError)
		return
	}
	respondMessage(c, http.StatusOK, "Chat marked as read")
}
