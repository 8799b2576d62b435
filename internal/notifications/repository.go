package notifications

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines data access for notifications and preferences
type Repository interface {
	CreateNotification(ctx context.Context, n *Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]Notification, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	GetPreferences(ctx context.Context, userID uuid.UUID) (*Preferences, error)
	UpsertPreferences(ctx context.Context, prefs *Preferences) error
}

type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreateNotification(ctx context.Context, n *Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, type, title, body, read, created_at)
		VALUES (:id, :user_id, :type, :title, :body, :read, :created_at)`

	if _, err := r.db.NamedExecContext(ctx, query, n); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]Notification, error) {
	out := []Notification{}
	query := `
		SELECT id, user_id, type, title, body, read, created_at
		FROM notifications
		WHERE user_id = $1`
	if unreadOnly {
		query += ` AND NOT read`
	}
	query += ` ORDER BY created_at DESC LIMIT 100`

	if err := r.db.SelectContext(ctx, &out, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET read = true WHERE id = $1 AND user_id = $2`,
		notificationID, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET read = true WHERE user_id = $1 AND NOT read`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows, nil
}

// GetPreferences returns the user's channel preferences, defaulting to
// email-only when none are stored
func (r *PostgresRepository) GetPreferences(ctx context.Context, userID uuid.UUID) (*Preferences, error) {
	var prefs Preferences
	query := `
		SELECT p.user_id, p.email_enabled, p.sms_enabled, u.email, p.phone
		FROM notification_preferences p
		JOIN users u ON u.id = p.user_id
		WHERE p.user_id = $1`

	if err := r.db.GetContext(ctx, &prefs, query, userID); err != nil {
		if err == sql.ErrNoRows {
			var email string
			if err := r.db.GetContext(ctx, &email, `SELECT email FROM users WHERE id = $1`, userID); err != nil {
				return nil, fmt.Errorf("failed to get user email: %w", err)
			}
			return &Preferences{UserID: userID, EmailEnabled: true, Email: email}, nil
		}
		return nil, fmt.Errorf("failed to get notification preferences: %w", err)
	}
	return &prefs, nil
}

func (r *PostgresRepository) UpsertPreferences(ctx context.Context, prefs *Preferences) error {
	query := `
		INSERT INTO notification_preferences (user_id, email_enabled, sms_enabled, phone)
		VALUES (:user_id, :email_enabled, :sms_enabled, :phone)
		ON CONFLICT (user_id) DO UPDATE
		SET email_enabled = EXCLUDED.email_enabled,
		    sms_enabled = EXCLUDED.sms_enabled,
		    phone = EXCLUDED.phone`

	if _, err := r.db.NamedExecContext(ctx, query, prefs); err != nil {
		return fmt.Errorf("failed to upsert notification preferences: %w", err)
	}
	return nil
}
