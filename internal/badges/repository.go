package badges

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// PostgresStore implements Store using PostgreSQL
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore creates a new PostgreSQL store
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) GetProfile(ctx context.Context, contractorID uuid.UUID) (*ContractorProfile, error) {
	query := `
		SELECT contractor_id, license_verified, insurance_verified, subscription_tier,
			   avg_response_minutes, response_sample_count, badges, version
		FROM contractor_profiles
		WHERE contractor_id = $1
	`

	var profile ContractorProfile
	var badges pq.StringArray

	err := s.db.QueryRowContext(ctx, query, contractorID).Scan(
		&profile.ContractorID, &profile.LicenseVerified, &profile.InsuranceVerified,
		&profile.SubscriptionTier, &profile.AverageResponseMinutes,
		&profile.ResponseSampleCount, &badges, &profile.Version,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get contractor profile: %w", err)
	}

	profile.Badges = make([]BadgeType, 0, len(badges))
	for _, b := range badges {
		profile.Badges = append(profile.Badges, BadgeType(b))
	}

	return &profile, nil
}

func (s *PostgresStore) ListListingsByContractor(ctx context.Context, contractorID uuid.UUID) ([]Listing, error) {
	query := `
		SELECT id, contractor_id, category_id, rating_value, review_count
		FROM listings
		WHERE contractor_id = $1
		ORDER BY created_at ASC
	`

	var listings []Listing
	if err := s.db.SelectContext(ctx, &listings, query, contractorID); err != nil {
		return nil, fmt.Errorf("failed to list contractor listings: %w", err)
	}
	return listings, nil
}

func (s *PostgresStore) ListCohort(ctx context.Context, categoryID string) ([]CohortEntry, error) {
	query := `
		SELECT contractor_id, rating_value, review_count
		FROM listings
		WHERE category_id = $1
	`

	var cohort []CohortEntry
	if err := s.db.SelectContext(ctx, &cohort, query, categoryID); err != nil {
		return nil, fmt.Errorf("failed to list category cohort: %w", err)
	}
	return cohort, nil
}

func (s *PostgresStore) ListBadgeRecords(ctx context.Context, contractorID uuid.UUID) ([]BadgeRecord, error) {
	query := `
		SELECT id, contractor_id, badge_type, display_name, description, awarded_at, expires_at
		FROM badges
		WHERE contractor_id = $1
		ORDER BY awarded_at ASC
	`

	var records []BadgeRecord
	if err := s.db.SelectContext(ctx, &records, query, contractorID); err != nil {
		return nil, fmt.Errorf("failed to list badge records: %w", err)
	}
	return records, nil
}

func (s *PostgresStore) ListContractorIDs(ctx context.Context) ([]uuid.UUID, error) {
	query := `SELECT contractor_id FROM contractor_profiles ORDER BY contractor_id`

	var ids []uuid.UUID
	if err := s.db.SelectContext(ctx, &ids, query); err != nil {
		return nil, fmt.Errorf("failed to list contractor ids: %w", err)
	}
	return ids, nil
}

// ApplyBadgeSet replaces the contractor's badge set in one transaction.
// The version check makes the whole replace last-writer-wins: a stale
// reconciliation fails with ErrConflict instead of interleaving per-badge
// writes with a newer one.
func (s *PostgresStore) ApplyBadgeSet(ctx context.Context, contractorID uuid.UUID, version int64, toCreate []BadgeRecord, toRemove []BadgeType, badgeCache []BadgeType) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin badge transaction: %w", err)
	}
	defer tx.Rollback()

	cache := make(pq.StringArray, len(badgeCache))
	verifiedPro := false
	for i, t := range badgeCache {
		cache[i] = string(t)
		if t == BadgeVerifiedPro || t == BadgeEliteMember {
			verifiedPro = true
		}
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE contractor_profiles SET
			badges = $2,
			version = version + 1,
			updated_at = NOW()
		WHERE contractor_id = $1 AND version = $3
	`, contractorID, cache, version)
	if err != nil {
		return fmt.Errorf("failed to update badge cache: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrConflict
	}

	if len(toRemove) > 0 {
		removed := make(pq.StringArray, len(toRemove))
		for i, t := range toRemove {
			removed[i] = string(t)
		}
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM badges WHERE contractor_id = $1 AND badge_type = ANY($2)
		`, contractorID, removed); err != nil {
			return fmt.Errorf("failed to remove badges: %w", err)
		}
	}

	for _, rec := range toCreate {
		var expiresAt *time.Time
		if rec.ExpiresAt != nil {
			t := *rec.ExpiresAt
			expiresAt = &t
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO badges (id, contractor_id, badge_type, display_name, description, awarded_at, expires_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, rec.ID, rec.ContractorID, rec.Type, rec.DisplayName, rec.Description, rec.AwardedAt, expiresAt); err != nil {
			return fmt.Errorf("failed to create badge %s: %w", rec.Type, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE listings SET
			badges = $2,
			verified_pro = $3,
			updated_at = NOW()
		WHERE contractor_id = $1
	`, contractorID, cache, verifiedPro); err != nil {
		return fmt.Errorf("failed to update listing badge cache: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit badge transaction: %w", err)
	}

	return nil
}
