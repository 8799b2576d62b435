package messages

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines data access for conversations and messages
type Repository interface {
	GetConversation(ctx context.Context, id uuid.UUID) (*Conversation, error)
	GetOrCreateConversation(ctx context.Context, homeownerID, contractorID uuid.UUID) (*Conversation, error)
	ListConversations(ctx context.Context, userID uuid.UUID) ([]ConversationSummary, error)
	CreateMessage(ctx context.Context, msg *Message) error
	ListMessages(ctx context.Context, conversationID uuid.UUID) ([]Message, error)
	MarkRead(ctx context.Context, conversationID, readerID uuid.UUID) (int64, error)
	OldestUnreadFrom(ctx context.Context, conversationID, senderID uuid.UUID) (*time.Time, error)
}

type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetConversation(ctx context.Context, id uuid.UUID) (*Conversation, error) {
	var conv Conversation
	query := `
		SELECT id, homeowner_id, contractor_id, last_message_at, created_at
		FROM conversations
		WHERE id = $1`

	if err := r.db.GetContext(ctx, &conv, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrConversationNotFound
		}
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	return &conv, nil
}

func (r *PostgresRepository) GetOrCreateConversation(ctx context.Context, homeownerID, contractorID uuid.UUID) (*Conversation, error) {
	var conv Conversation
	query := `
		INSERT INTO conversations (id, homeowner_id, contractor_id, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (homeowner_id, contractor_id) DO UPDATE SET homeowner_id = EXCLUDED.homeowner_id
		RETURNING id, homeowner_id, contractor_id, last_message_at, created_at`

	if err := r.db.GetContext(ctx, &conv, query, uuid.New(), homeownerID, contractorID); err != nil {
		return nil, fmt.Errorf("failed to get or create conversation: %w", err)
	}
	return &conv, nil
}

func (r *PostgresRepository) ListConversations(ctx context.Context, userID uuid.UUID) ([]ConversationSummary, error) {
	out := []ConversationSummary{}
	query := `
		SELECT c.id, c.homeowner_id, c.contractor_id, c.last_message_at, c.created_at,
		       COUNT(m.id) FILTER (WHERE NOT m.read AND m.sender_id <> $1) AS unread_count
		FROM conversations c
		LEFT JOIN messages m ON m.conversation_id = c.id
		WHERE c.homeowner_id = $1 OR c.contractor_id = $1
		GROUP BY c.id
		ORDER BY c.last_message_at DESC NULLS LAST`

	if err := r.db.SelectContext(ctx, &out, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) CreateMessage(ctx context.Context, msg *Message) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	insert := `
		INSERT INTO messages (id, conversation_id, sender_id, body, read, created_at)
		VALUES (:id, :conversation_id, :sender_id, :body, :read, :created_at)`
	if _, err := tx.NamedExecContext(ctx, insert, msg); err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}

	touch := `UPDATE conversations SET last_message_at = $2 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, touch, msg.ConversationID, msg.CreatedAt); err != nil {
		return fmt.Errorf("failed to touch conversation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit message: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListMessages(ctx context.Context, conversationID uuid.UUID) ([]Message, error) {
	out := []Message{}
	query := `
		SELECT id, conversation_id, sender_id, body, read, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC`

	if err := r.db.SelectContext(ctx, &out, query, conversationID); err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return out, nil
}

// MarkRead marks every message the reader has not sent as read and
// returns how many flipped
func (r *PostgresRepository) MarkRead(ctx context.Context, conversationID, readerID uuid.UUID) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE messages SET read = true WHERE conversation_id = $1 AND sender_id <> $2 AND NOT read`,
		conversationID, readerID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark messages read: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows, nil
}

// OldestUnreadFrom returns the send time of the oldest unread message
// from the given sender, or nil when none is pending. Used to measure
// the contractor's response time.
func (r *PostgresRepository) OldestUnreadFrom(ctx context.Context, conversationID, senderID uuid.UUID) (*time.Time, error) {
	var ts time.Time
	query := `
		SELECT created_at
		FROM messages
		WHERE conversation_id = $1 AND sender_id = $2 AND NOT read
		ORDER BY created_at ASC
		LIMIT 1`

	if err := r.db.GetContext(ctx, &ts, query, conversationID, senderID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find oldest unread message: %w", err)
	}
	return &ts, nil
}
