package service

import (
	"context"
	"errors"
	"strings"

	"gymsync/backend/internal/domain"
	"gymsync/backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrChatNotFound        = errors.New("chat not found")
	ErrChatNotAllowed      = errors.New("chat is only available between an assigned member and trainer")
	ErrPremiumRequired     = errors.New("chat requires an active premium subscription")
	ErrMessageNotFound     = errors.New("message not found")
	ErrEmptyMessage        = errors.New("message content cannot be empty")
	ErrMessageTooLong      = errors.New("message exceeds the maximum length")
	ErrDeleteWindowExpired = errors.New("message can no longer be deleted")
)

// ChatSummary is one row of the chat list: the chat, the counterpart, and a
// preview of the latest message.
type ChatSummary struct {
	Chat        *domain.Chat    `json:"chat"`
	Participant *domain.User    `json:"participant,omitempty"`
	LastMessage *domain.Message `json:"lastMessage,omitempty"`
}

// ChatService runs the member/trainer messaging channel. A chat exists only
// between a member and their currently assigned trainer, and members need an
// unexpired premium subscription to use it.
type ChatService interface {
	InitiateChat(ctx context.Context, userID, otherID primitive.ObjectID) (*domain.Chat, error)
	ListChats(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]ChatSummary, int64, error)
	History(ctx context.Context, chatID, userID primitive.ObjectID, page, limit int) ([]domain.Message, int64, error)
	SendMessage(ctx context.Context, chatID, senderID primitive.ObjectID, content string) (*domain.Message, error)
	DeleteMessage(ctx context.Context, messageID, userID primitive.ObjectID) error
	MarkRead(ctx context.Context, chatID, userID primitive.ObjectID) error
}

type chatService struct {
	chatRepo           repository.ChatRepository
	messageRepo        repository.MessageRepository
	userRepo           repository.UserRepository
	trainerProfileRepo repository.TrainerProfileRepository
}

// NewChatService creates a new instance of chatService.
func NewChatService(
	chatRepo repository.ChatRepository,
	messageRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	trainerProfileRepo repository.TrainerProfileRepository,
) ChatService {
	return &chatService{
		chatRepo:           chatRepo,
		messageRepo:        messageRepo,
		userRepo:           userRepo,
		trainerProfileRepo: trainerProfileRepo,
	}
}

// authorizePair resolves and checks the member/trainer pair for the acting
// user. For members, otherID may be zero and defaults to the assigned
// trainer. The counterpart must be a verified account. Returns the
// counterpart's ID.
func (s *chatService) authorizePair(ctx context.Context, user *domain.User, otherID primitive.ObjectID) (primitive.ObjectID, error) {
	switch user.Role {
	case domain.RoleMember:
		if !user.HasPremiumAccess(nowUTC()) {
			return primitive.NilObjectID, ErrPremiumRequired
		}
		if user.TrainerAssigned == nil {
			return primitive.NilObjectID, ErrChatNotAllowed
		}
		if !otherID.IsZero() && otherID != *user.TrainerAssigned {
			return primitive.NilObjectID, ErrChatNotAllowed
		}
		trainer, err := s.userRepo.GetByID(ctx, *user.TrainerAssigned)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return primitive.NilObjectID, ErrChatNotAllowed
			}
			return primitive.NilObjectID, err
		}
		if !trainer.IsVerified {
			return primitive.NilObjectID, ErrChatNotAllowed
		}
		return trainer.ID, nil

	case domain.RoleTrainer:
		if otherID.IsZero() {
			return primitive.NilObjectID, ErrChatNotAllowed
		}
		member, err := s.userRepo.GetByID(ctx, otherID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return primitive.NilObjectID, ErrChatNotAllowed
			}
			return primitive.NilObjectID, err
		}
		if !member.IsMember() || !member.IsVerified || member.TrainerAssigned == nil || *member.TrainerAssigned != user.ID {
			return primitive.NilObjectID, ErrChatNotAllowed
		}
		return member.ID, nil
	}

	return primitive.NilObjectID, ErrChatNotAllowed
}

// InitiateChat finds or creates the single chat for the pair. The
// find-or-create runs in a transaction so two concurrent initiations cannot
// produce duplicate chats.
func (s *chatService) InitiateChat(ctx context.Context, userID, otherID primitive.ObjectID) (*domain.Chat, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	counterpart, err := s.authorizePair(ctx, user, otherID)
	if err != nil {
		return nil, err
	}

	var chat *domain.Chat
	err = s.chatRepo.WithTransaction(ctx, func(txCtx context.Context) error {
		existing, err := s.chatRepo.FindByParticipants(txCtx, userID, counterpart)
		if err == nil {
			chat = existing
			return nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		fresh := &domain.Chat{Participants: []primitive.ObjectID{userID, counterpart}}
		if _, err := s.chatRepo.Create(txCtx, fresh); err != nil {
			// A concurrent start won the pair-key index; hand back their chat.
			if errors.Is(err, repository.ErrConflict) {
				existing, findErr := s.chatRepo.FindByParticipants(txCtx, userID, counterpart)
				if findErr != nil {
					return findErr
				}
				chat = existing
				return nil
			}
			return err
		}
		chat = fresh
		return nil
	})
	if err != nil {
		return nil, err
	}
	return chat, nil
}

// ListChats pages through the user's chats with counterpart and last
// message previews filled in.
func (s *chatService) ListChats(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]ChatSummary, int64, error) {
	chats, total, err := s.chatRepo.ListByUser(ctx, userID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	summaries := make([]ChatSummary, 0, len(chats))
	for i := range chats {
		summary := ChatSummary{Chat: &chats[i]}

		otherID := chats[i].OtherParticipant(userID)
		if !otherID.IsZero() {
			if other, err := s.userRepo.GetByID(ctx, otherID); err == nil {
				other.PasswordHash = ""
				summary.Participant = other
			}
		}
		if last, err := s.messageRepo.LatestByChat(ctx, chats[i].ID); err == nil {
			summary.LastMessage = last
		}

		summaries = append(summaries, summary)
	}
	return summaries, total, nil
}

// History pages through a chat's messages, oldest first. Participants only.
func (s *chatService) History(ctx context.Context, chatID, userID primitive.ObjectID, page, limit int) ([]domain.Message, int64, error) {
	if _, err := s.chatRepo.GetByIDForUser(ctx, chatID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, 0, ErrChatNotFound
		}
		return nil, 0, err
	}
	return s.messageRepo.ListByChat(ctx, chatID, page, limit)
}

// SendMessage appends a message to the chat inside a transaction so the
// message document and the chat's reference list stay consistent.
func (s *chatService) SendMessage(ctx context.Context, chatID, senderID primitive.ObjectID, content string) (*domain.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}
	if len(content) > domain.MaxMessageLength {
		return nil, ErrMessageTooLong
	}

	sender, err := s.userRepo.GetByID(ctx, senderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if sender.IsMember() && !sender.HasPremiumAccess(nowUTC()) {
		return nil, ErrPremiumRequired
	}

	chat, err := s.chatRepo.GetByIDForUser(ctx, chatID, senderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrChatNotFound
		}
		return nil, err
	}

	// The counterpart must still be the assigned pair; a reassignment closes
	// the channel even though the chat document survives.
	if _, err := s.authorizePair(ctx, sender, chat.OtherParticipant(senderID)); err != nil {
		return nil, err
	}

	message := &domain.Message{
		SenderID: senderID,
		ChatID:   chatID,
		Content:  content,
	}
	err = s.chatRepo.WithTransaction(ctx, func(txCtx context.Context) error {
		if _, err := s.messageRepo.Create(txCtx, message); err != nil {
			return err
		}
		return s.chatRepo.PushMessage(txCtx, chatID, message.ID, message.CreatedAt)
	})
	if err != nil {
		return nil, err
	}
	return message, nil
}

// DeleteMessage removes the sender's own message if it is still inside the
// delete window.
func (s *chatService) DeleteMessage(ctx context.Context, messageID, userID primitive.ObjectID) error {
	message, err := s.messageRepo.GetByIDForSender(ctx, messageID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrMessageNotFound
		}
		return err
	}

	if !message.DeletableAt(nowUTC()) {
		return ErrDeleteWindowExpired
	}

	return s.chatRepo.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.messageRepo.Delete(txCtx, message.ID); err != nil {
			return err
		}
		return s.chatRepo.PullMessage(txCtx, message.ChatID, message.ID)
	})
}

// MarkRead stamps the user's read marker on the chat.
func (s *chatService) MarkRead(ctx context.Context, chatID, userID primitive.ObjectID) error {
	err := s.chatRepo.SetLastRead(ctx, chatID, userID, nowUTC())
	if errors.Is(err, repository.ErrNotFound) {
		return ErrChatNotFound
	}
	return err
}
