package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"gymsync/backend/internal/domain"
	"gymsync/backend/internal/mocks"
	"gymsync/backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type chatFixture struct {
	chatRepo    *mocks.MockChatRepository
	messageRepo *mocks.MockMessageRepository
	userRepo    *mocks.MockUserRepository
	svc         ChatService
}

func newChatFixture() *chatFixture {
	f := &chatFixture{
		chatRepo:    mocks.NewMockChatRepository(),
		messageRepo: mocks.NewMockMessageRepository(),
		userRepo:    mocks.NewMockUserRepository(),
	}
	f.svc = NewChatService(f.chatRepo, f.messageRepo, f.userRepo, mocks.NewMockTrainerProfileRepository())
	return f
}

// assignedPair returns a verified premium member linked to a verified
// trainer, both stored in the fixture's user repo.
func (f *chatFixture) assignedPair() (*domain.User, *domain.User) {
	trainerID := primitive.NewObjectID()
	validTill := time.Now().UTC().Add(24 * time.Hour)
	member := &domain.User{
		ID:                    primitive.NewObjectID(),
		Role:                  domain.RoleMember,
		IsVerified:            true,
		SubscriptionPlan:      domain.PlanPremium,
		SubscriptionValidTill: &validTill,
		TrainerAssigned:       &trainerID,
	}
	trainer := &domain.User{ID: trainerID, Role: domain.RoleTrainer, IsVerified: true}

	f.userRepo.GetByIDFunc = func(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
		switch id {
		case member.ID:
			return member, nil
		case trainer.ID:
			return trainer, nil
		}
		return nil, repository.ErrNotFound
	}
	return member, trainer
}

func TestInitiateChat(t *testing.T) {
	ctx := context.Background()

	t.Run("member without premium is rejected", func(t *testing.T) {
		f := newChatFixture()
		member, _ := f.assignedPair()
		member.SubscriptionPlan = domain.PlanBasic

		_, err := f.svc.InitiateChat(ctx, member.ID, primitive.NilObjectID)
		assert.ErrorIs(t, err, ErrPremiumRequired)
	})

	t.Run("member without a trainer is rejected", func(t *testing.T) {
		f := newChatFixture()
		member, _ := f.assignedPair()
		member.TrainerAssigned = nil

		_, err := f.svc.InitiateChat(ctx, member.ID, primitive.NilObjectID)
		assert.ErrorIs(t, err, ErrChatNotAllowed)
	})

	t.Run("member defaults to the assigned trainer", func(t *testing.T) {
		f := newChatFixture()
		member, trainer := f.assignedPair()
		var created *domain.Chat
		f.chatRepo.CreateFunc = func(ctx context.Context, chat *domain.Chat) (primitive.ObjectID, error) {
			created = chat
			id := primitive.NewObjectID()
			chat.ID = id
			return id, nil
		}

		chat, err := f.svc.InitiateChat(ctx, member.ID, primitive.NilObjectID)
		require.NoError(t, err)
		require.NotNil(t, created)
		assert.ElementsMatch(t, []primitive.ObjectID{member.ID, trainer.ID}, chat.Participants)
	})

	t.Run("existing chat is reused, never duplicated", func(t *testing.T) {
		f := newChatFixture()
		member, trainer := f.assignedPair()
		existing := &domain.Chat{
			ID:           primitive.NewObjectID(),
			Participants: []primitive.ObjectID{member.ID, trainer.ID},
		}
		f.chatRepo.FindByParticipantsFunc = func(ctx context.Context, a, b primitive.ObjectID) (*domain.Chat, error) {
			return existing, nil
		}
		f.chatRepo.CreateFunc = func(ctx context.Context, chat *domain.Chat) (primitive.ObjectID, error) {
			t.Fatal("a second chat must not be created for the pair")
			return primitive.NilObjectID, nil
		}

		chat, err := f.svc.InitiateChat(ctx, member.ID, trainer.ID)
		require.NoError(t, err)
		assert.Equal(t, existing.ID, chat.ID)
	})

	t.Run("losing the insert race hands back the winner's chat", func(t *testing.T) {
		f := newChatFixture()
		member, trainer := f.assignedPair()
		winner := &domain.Chat{
			ID:           primitive.NewObjectID(),
			Participants: []primitive.ObjectID{member.ID, trainer.ID},
		}
		var lookups int
		f.chatRepo.FindByParticipantsFunc = func(ctx context.Context, a, b primitive.ObjectID) (*domain.Chat, error) {
			lookups++
			if lookups == 1 {
				return nil, repository.ErrNotFound
			}
			return winner, nil
		}
		f.chatRepo.CreateFunc = func(ctx context.Context, chat *domain.Chat) (primitive.ObjectID, error) {
			return primitive.NilObjectID, repository.ErrConflict
		}

		chat, err := f.svc.InitiateChat(ctx, member.ID, primitive.NilObjectID)
		require.NoError(t, err)
		assert.Equal(t, winner.ID, chat.ID)
	})

	t.Run("trainer cannot open a chat with an unassigned member", func(t *testing.T) {
		f := newChatFixture()
		_, trainer := f.assignedPair()
		otherTrainer := primitive.NewObjectID()
		stranger := &domain.User{
			ID:              primitive.NewObjectID(),
			Role:            domain.RoleMember,
			TrainerAssigned: &otherTrainer,
		}
		base := f.userRepo.GetByIDFunc
		f.userRepo.GetByIDFunc = func(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
			if id == stranger.ID {
				return stranger, nil
			}
			return base(ctx, id)
		}

		_, err := f.svc.InitiateChat(ctx, trainer.ID, stranger.ID)
		assert.ErrorIs(t, err, ErrChatNotAllowed)
	})

	t.Run("an unverified trainer cannot be messaged", func(t *testing.T) {
		f := newChatFixture()
		member, trainer := f.assignedPair()
		trainer.IsVerified = false

		_, err := f.svc.InitiateChat(ctx, member.ID, primitive.NilObjectID)
		assert.ErrorIs(t, err, ErrChatNotAllowed)
	})

	t.Run("an unverified member cannot be messaged", func(t *testing.T) {
		f := newChatFixture()
		member, trainer := f.assignedPair()
		member.IsVerified = false

		_, err := f.svc.InitiateChat(ctx, trainer.ID, member.ID)
		assert.ErrorIs(t, err, ErrChatNotAllowed)
	})

	t.Run("trainer must name the member", func(t *testing.T) {
		f := newChatFixture()
		_, trainer := f.assignedPair()

		_, err := f.svc.InitiateChat(ctx, trainer.ID, primitive.NilObjectID)
		assert.ErrorIs(t, err, ErrChatNotAllowed)
	})
}

func TestSendMessage(t *testing.T) {
	ctx := context.Background()

	pairedChat := func(f *chatFixture, member, trainer *domain.User) *domain.Chat {
		chat := &domain.Chat{
			ID:           primitive.NewObjectID(),
			Participants: []primitive.ObjectID{member.ID, trainer.ID},
		}
		f.chatRepo.GetByIDForUserFunc = func(ctx context.Context, chatID, userID primitive.ObjectID) (*domain.Chat, error) {
			if chatID == chat.ID && chat.HasParticipant(userID) {
				return chat, nil
			}
			return nil, repository.ErrNotFound
		}
		return chat
	}

	t.Run("stores the message and links it to the chat", func(t *testing.T) {
		f := newChatFixture()
		member, trainer := f.assignedPair()
		chat := pairedChat(f, member, trainer)
		var pushed primitive.ObjectID
		f.chatRepo.PushMessageFunc = func(ctx context.Context, chatID, messageID primitive.ObjectID, at time.Time) error {
			pushed = messageID
			return nil
		}

		message, err := f.svc.SendMessage(ctx, chat.ID, member.ID, "  hello coach  ")
		require.NoError(t, err)
		assert.Equal(t, "hello coach", message.Content)
		assert.Equal(t, message.ID, pushed)
	})

	t.Run("empty and oversized content are rejected", func(t *testing.T) {
		f := newChatFixture()
		member, trainer := f.assignedPair()
		chat := pairedChat(f, member, trainer)

		_, err := f.svc.SendMessage(ctx, chat.ID, member.ID, "   ")
		assert.ErrorIs(t, err, ErrEmptyMessage)

		_, err = f.svc.SendMessage(ctx, chat.ID, member.ID, strings.Repeat("x", domain.MaxMessageLength+1))
		assert.ErrorIs(t, err, ErrMessageTooLong)
	})

	t.Run("lapsed premium closes the channel for members", func(t *testing.T) {
		f := newChatFixture()
		member, trainer := f.assignedPair()
		chat := pairedChat(f, member, trainer)
		expired := time.Now().UTC().Add(-time.Hour)
		member.SubscriptionValidTill = &expired

		_, err := f.svc.SendMessage(ctx, chat.ID, member.ID, "hello")
		assert.ErrorIs(t, err, ErrPremiumRequired)
	})

	t.Run("reassignment closes the channel even though the chat survives", func(t *testing.T) {
		f := newChatFixture()
		member, trainer := f.assignedPair()
		chat := pairedChat(f, member, trainer)
		newTrainer := primitive.NewObjectID()
		member.TrainerAssigned = &newTrainer

		_, err := f.svc.SendMessage(ctx, chat.ID, member.ID, "hello")
		assert.ErrorIs(t, err, ErrChatNotAllowed)
	})

	t.Run("non-participants get not found", func(t *testing.T) {
		f := newChatFixture()
		member, trainer := f.assignedPair()
		pairedChat(f, member, trainer)

		_, err := f.svc.SendMessage(ctx, primitive.NewObjectID(), trainer.ID, "hello")
		assert.ErrorIs(t, err, ErrChatNotFound)
	})
}

func TestDeleteMessage(t *testing.T) {
	ctx := context.Background()

	ownMessage := func(f *chatFixture, age time.Duration) *domain.Message {
		message := &domain.Message{
			ID:        primitive.NewObjectID(),
			SenderID:  primitive.NewObjectID(),
			ChatID:    primitive.NewObjectID(),
			CreatedAt: time.Now().UTC().Add(-age),
		}
		f.messageRepo.GetByIDForSenderFunc = func(ctx context.Context, messageID, senderID primitive.ObjectID) (*domain.Message, error) {
			if messageID == message.ID && senderID == message.SenderID {
				return message, nil
			}
			return nil, repository.ErrNotFound
		}
		return message
	}

	t.Run("inside the window removes message and reference", func(t *testing.T) {
		f := newChatFixture()
		message := ownMessage(f, 5*time.Minute)
		var deleted, pulled bool
		f.messageRepo.DeleteFunc = func(ctx context.Context, id primitive.ObjectID) error {
			deleted = true
			return nil
		}
		f.chatRepo.PullMessageFunc = func(ctx context.Context, chatID, messageID primitive.ObjectID) error {
			pulled = true
			return nil
		}

		err := f.svc.DeleteMessage(ctx, message.ID, message.SenderID)
		require.NoError(t, err)
		assert.True(t, deleted)
		assert.True(t, pulled)
	})

	t.Run("window closes after fifteen minutes", func(t *testing.T) {
		f := newChatFixture()
		message := ownMessage(f, 16*time.Minute)

		err := f.svc.DeleteMessage(ctx, message.ID, message.SenderID)
		assert.ErrorIs(t, err, ErrDeleteWindowExpired)
	})

	t.Run("only the sender may delete", func(t *testing.T) {
		f := newChatFixture()
		message := ownMessage(f, time.Minute)

		err := f.svc.DeleteMessage(ctx, message.ID, primitive.NewObjectID())
		assert.ErrorIs(t, err, ErrMessageNotFound)
	})
}

func TestListChats(t *testing.T) {
	f := newChatFixture()
	member, trainer := f.assignedPair()
	chat := domain.Chat{
		ID:           primitive.NewObjectID(),
		Participants: []primitive.ObjectID{member.ID, trainer.ID},
	}
	f.chatRepo.ListByUserFunc = func(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]domain.Chat, int64, error) {
		return []domain.Chat{chat}, 1, nil
	}
	last := &domain.Message{ID: primitive.NewObjectID(), ChatID: chat.ID, Content: "see you at 6"}
	f.messageRepo.LatestByChatFunc = func(ctx context.Context, chatID primitive.ObjectID) (*domain.Message, error) {
		return last, nil
	}

	summaries, total, err := f.svc.ListChats(context.Background(), member.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, summaries, 1)
	require.NotNil(t, summaries[0].Participant)
	assert.Equal(t, trainer.ID, summaries[0].Participant.ID)
	assert.Equal(t, "see you at 6", summaries[0].LastMessage.Content)
}

func TestMarkRead(t *testing.T) {
	f := newChatFixture()
	f.chatRepo.SetLastReadFunc = func(ctx context.Context, chatID, userID primitive.ObjectID, at time.Time) error {
		return repository.ErrNotFound
	}

	err := f.svc.MarkRead(context.Background(), primitive.NewObjectID(), primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrChatNotFound)
}
