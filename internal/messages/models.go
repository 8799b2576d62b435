package messages

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrNotParticipant       = errors.New("caller is not part of this conversation")
	ErrSelfConversation     = errors.New("cannot message yourself")
)

// Conversation is the message thread between one homeowner and one
// contractor. At most one exists per pair.
type Conversation struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	HomeownerID   uuid.UUID  `db:"homeowner_id" json:"homeowner_id"`
	ContractorID  uuid.UUID  `db:"contractor_id" json:"contractor_id"`
	LastMessageAt *time.Time `db:"last_message_at" json:"last_message_at,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}

// ConversationSummary is a conversation plus the caller's unread count
type ConversationSummary struct {
	Conversation
	UnreadCount int `db:"unread_count" json:"unread_count"`
}

// Message is one entry in a conversation
type Message struct {
	ID             uuid.UUID `db:"id" json:"id"`
	ConversationID uuid.UUID `db:"conversation_id" json:"conversation_id"`
	SenderID       uuid.UUID `db:"sender_id" json:"sender_id"`
	Body           string    `db:"body" json:"body"`
	Read           bool      `db:"read" json:"read"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// SendMessageRequest opens or continues a conversation with the recipient
type SendMessageRequest struct {
	RecipientID uuid.UUID `json:"recipient_id" binding:"required"`
	Body        string    `json:"body" binding:"required"`
}
