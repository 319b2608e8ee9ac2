package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxMessageLength caps chat message content.
const MaxMessageLength = 1000

// MessageDeleteWindow is how long a sender may delete their own message.
const MessageDeleteWindow = 15 * time.Minute

// Chat links exactly one member and one trainer (the assigned pair). At most
// one chat exists per pair; a unique index on PairKey backs that up, with
// concurrent initiation serialized through a mongo transaction.
type Chat struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Participants []primitive.ObjectID `bson:"participants" json:"participants"`
	// PairKey is the canonically ordered participant pair. The participants
	// array is multikey, so uniqueness has to hang off this scalar instead.
	PairKey  string               `bson:"pairKey" json:"-"`
	Messages []primitive.ObjectID `bson:"messages" json:"messages"`
	// LastRead maps participant hex IDs to the instant they last opened
	// the chat. Drives unread indicators client-side.
	LastRead  map[string]time.Time `bson:"lastRead,omitempty" json:"lastRead,omitempty"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// ChatPairKey builds the canonical key for a participant pair. Both orderings
// of the same two users produce the same key.
func ChatPairKey(a, b primitive.ObjectID) string {
	ah, bh := a.Hex(), b.Hex()
	if ah > bh {
		ah, bh = bh, ah
	}
	return ah + ":" + bh
}

// HasParticipant reports whether the user is one of the two chat parties.
func (c *Chat) HasParticipant(userID primitive.ObjectID) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// OtherParticipant returns the counterpart of userID, or NilObjectID when
// userID is not a participant.
func (c *Chat) OtherParticipant(userID primitive.ObjectID) primitive.ObjectID {
	for _, p := range c.Participants {
		if p != userID {
			return p
		}
	}
	return primitive.NilObjectID
}

// Message is one chat message. Deletable by its sender within
// MessageDeleteWindow of creation.
type Message struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SenderID  primitive.ObjectID `bson:"sender" json:"sender"`
	Content   string             `bson:"content" json:"content"`
	ChatID    primitive.ObjectID `bson:"chat" json:"chat"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// DeletableAt reports whether the message may still be deleted at the given
// instant.
func (m *Message) DeletableAt(now time.Time) bool {
	return now.Sub(m.CreatedAt) <= MessageDeleteWindow
}
