package notifications

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("notification not found")

// Notification is one in-app notification entry
type Notification struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Type      string    `db:"type" json:"type"`
	Title     string    `db:"title" json:"title"`
	Body      string    `db:"body" json:"body"`
	Read      bool      `db:"read" json:"read"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Preferences controls which delivery channels a user receives beyond
// the in-app feed
type Preferences struct {
	UserID       uuid.UUID `db:"user_id" json:"user_id"`
	EmailEnabled bool      `db:"email_enabled" json:"email_enabled"`
	SMSEnabled   bool      `db:"sms_enabled" json:"sms_enabled"`
	Email        string    `db:"email" json:"email"`
	Phone        string    `db:"phone" json:"phone"`
}

// UpdatePreferencesRequest is the preference update payload
type UpdatePreferencesRequest struct {
	EmailEnabled *bool   `json:"email_enabled"`
	SMSEnabled   *bool   `json:"sms_enabled"`
	Phone        *string `json:"phone"`
}
