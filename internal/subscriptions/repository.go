package subscriptions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"listinghub/marketplace/marketplace-backend/internal/badges"
)

// PostgresTierStore persists the subscription tier on the contractor
// profile row the badge engine reads
type PostgresTierStore struct {
	db *sqlx.DB
}

func NewPostgresTierStore(db *sqlx.DB) *PostgresTierStore {
	return &PostgresTierStore{db: db}
}

var errProfileNotFound = errors.New("contractor profile not found")

func (s *PostgresTierStore) GetTier(ctx context.Context, contractorID uuid.UUID) (badges.SubscriptionTier, error) {
	var tier badges.SubscriptionTier
	query := `SELECT subscription_tier FROM contractor_profiles WHERE contractor_id = $1`
	if err := s.db.GetContext(ctx, &tier, query, contractorID); err != nil {
		if err == sql.ErrNoRows {
			return "", errProfileNotFound
		}
		return "", fmt.Errorf("failed to get subscription tier: %w", err)
	}
	return tier, nil
}

func (s *PostgresTierStore) SetTier(ctx context.Context, contractorID uuid.UUID, tier badges.SubscriptionTier) error {
	query := `UPDATE contractor_profiles SET subscription_tier = $2, updated_at = NOW() WHERE contractor_id = $1`
	result, err := s.db.ExecContext(ctx, query, contractorID, tier)
	if err != nil {
		return fmt.Errorf("failed to set subscription tier: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return errProfileNotFound
	}
	return nil
}
