package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestChatPairKey(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()

	t.Run("both orderings collapse to one key", func(t *testing.T) {
		assert.Equal(t, ChatPairKey(a, b), ChatPairKey(b, a))
	})

	t.Run("the smaller hex leads", func(t *testing.T) {
		key := ChatPairKey(a, b)
		lo, hi := a.Hex(), b.Hex()
		if lo > hi {
			lo, hi = hi, lo
		}
		assert.Equal(t, lo+":"+hi, key)
	})

	t.Run("distinct pairs never collide", func(t *testing.T) {
		c := primitive.NewObjectID()
		assert.NotEqual(t, ChatPairKey(a, b), ChatPairKey(a, c))
	})
}

func TestChatParticipantHelpers(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()
	chat := &Chat{Participants: []primitive.ObjectID{a, b}}

	assert.True(t, chat.HasParticipant(a))
	assert.False(t, chat.HasParticipant(primitive.NewObjectID()))
	assert.Equal(t, b, chat.OtherParticipant(a))
	assert.Equal(t, a, chat.OtherParticipant(b))
}
