package contractors

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository defines data access for contractor profiles and
// verification requests
type Repository interface {
	GetProfile(ctx context.Context, contractorID uuid.UUID) (*Profile, error)
	CreateDefaultProfile(ctx context.Context, contractorID uuid.UUID) error
	UpdateProfile(ctx context.Context, contractorID uuid.UUID, req UpdateProfileRequest) (*Profile, error)
	RecordResponseSample(ctx context.Context, contractorID uuid.UUID, minutes float64) error
	CreateVerificationRequest(ctx context.Context, req *VerificationRequest) error
	GetVerificationRequest(ctx context.Context, id uuid.UUID) (*VerificationRequest, error)
	ListVerificationRequests(ctx context.Context, status VerificationStatus) ([]VerificationRequest, error)
	ReviewVerificationRequest(ctx context.Context, id uuid.UUID, status VerificationStatus, notes string, reviewedBy uuid.UUID, reviewedAt time.Time) (*VerificationRequest, error)
}

type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type profileRow struct {
	Profile
	BadgeArray pq.StringArray `db:"badges"`
}

func (r *PostgresRepository) GetProfile(ctx context.Context, contractorID uuid.UUID) (*Profile, error) {
	var row profileRow
	query := `
		SELECT contractor_id, business_name, bio, service_area, subscription_tier,
		       license_verified, insurance_verified, avg_response_minutes,
		       response_sample_count, badges, version, created_at, updated_at
		FROM contractor_profiles
		WHERE contractor_id = $1`

	if err := r.db.GetContext(ctx, &row, query, contractorID); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get contractor profile: %w", err)
	}

	profile := row.Profile
	profile.Badges = []string(row.BadgeArray)
	if profile.Badges == nil {
		profile.Badges = []string{}
	}
	return &profile, nil
}

func (r *PostgresRepository) CreateDefaultProfile(ctx context.Context, contractorID uuid.UUID) error {
	query := `
		INSERT INTO contractor_profiles (
			contractor_id, business_name, bio, service_area, subscription_tier,
			license_verified, insurance_verified, avg_response_minutes,
			response_sample_count, badges, version, created_at, updated_at
		) VALUES ($1, '', '', '', 'free', false, false, 0, 0, '{}', 0, NOW(), NOW())
		ON CONFLICT (contractor_id) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, contractorID); err != nil {
		return fmt.Errorf("failed to create default profile: %w", err)
	}
	return nil
}

func (r *PostgresRepository) UpdateProfile(ctx context.Context, contractorID uuid.UUID, req UpdateProfileRequest) (*Profile, error) {
	query := `
		UPDATE contractor_profiles
		SET business_name = $2, bio = $3, service_area = $4, updated_at = NOW()
		WHERE contractor_id = $1`

	result, err := r.db.ExecContext(ctx, query, contractorID, req.BusinessName, req.Bio, req.ServiceArea)
	if err != nil {
		return nil, fmt.Errorf("failed to update contractor profile: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, ErrNotFound
	}
	return r.GetProfile(ctx, contractorID)
}

// RecordResponseSample folds one response-time observation into the
// rolling average kept on the profile.
func (r *PostgresRepository) RecordResponseSample(ctx context.Context, contractorID uuid.UUID, minutes float64) error {
	query := `
		UPDATE contractor_profiles
		SET avg_response_minutes =
		        (avg_response_minutes * response_sample_count + $2) / (response_sample_count + 1),
		    response_sample_count = response_sample_count + 1,
		    updated_at = NOW()
		WHERE contractor_id = $1`

	result, err := r.db.ExecContext(ctx, query, contractorID, minutes)
	if err != nil {
		return fmt.Errorf("failed to record response sample: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) CreateVerificationRequest(ctx context.Context, req *VerificationRequest) error {
	query := `
		INSERT INTO verification_requests (
			id, contractor_id, license_doc_url, insurance_doc_url, status, notes, created_at
		) VALUES (:id, :contractor_id, :license_doc_url, :insurance_doc_url, :status, :notes, :created_at)`

	if _, err := r.db.NamedExecContext(ctx, query, req); err != nil {
		return fmt.Errorf("failed to create verification request: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetVerificationRequest(ctx context.Context, id uuid.UUID) (*VerificationRequest, error) {
	var req VerificationRequest
	query := `
		SELECT id, contractor_id, license_doc_url, insurance_doc_url, status,
		       notes, reviewed_by, reviewed_at, created_at
		FROM verification_requests
		WHERE id = $1`

	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrVerificationNotFound
		}
		return nil, fmt.Errorf("failed to get verification request: %w", err)
	}
	return &req, nil
}

func (r *PostgresRepository) ListVerificationRequests(ctx context.Context, status VerificationStatus) ([]VerificationRequest, error) {
	requests := []VerificationRequest{}
	query := `
		SELECT id, contractor_id, license_doc_url, insurance_doc_url, status,
		       notes, reviewed_by, reviewed_at, created_at
		FROM verification_requests
		WHERE status = $1
		ORDER BY created_at ASC`

	if err := r.db.SelectContext(ctx, &requests, query, status); err != nil {
		return nil, fmt.Errorf("failed to list verification requests: %w", err)
	}
	return requests, nil
}

// ReviewVerificationRequest records the review decision and, on
// approval, flips the profile's verification flags in the same
// transaction.
func (r *PostgresRepository) ReviewVerificationRequest(ctx context.Context, id uuid.UUID, status VerificationStatus, notes string, reviewedBy uuid.UUID, reviewedAt time.Time) (*VerificationRequest, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var req VerificationRequest
	getQuery := `
		SELECT id, contractor_id, license_doc_url, insurance_doc_url, status,
		       notes, reviewed_by, reviewed_at, created_at
		FROM verification_requests
		WHERE id = $1
		FOR UPDATE`
	if err := tx.GetContext(ctx, &req, getQuery, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrVerificationNotFound
		}
		return nil, fmt.Errorf("failed to get verification request: %w", err)
	}
	if req.Status != VerificationPending {
		return nil, ErrAlreadyReviewed
	}

	updateQuery := `
		UPDATE verification_requests
		SET status = $2, notes = $3, reviewed_by = $4, reviewed_at = $5
		WHERE id = $1`
	if _, err := tx.ExecContext(ctx, updateQuery, id, status, notes, reviewedBy, reviewedAt); err != nil {
		return nil, fmt.Errorf("failed to update verification request: %w", err)
	}

	if status == VerificationApproved {
		flagsQuery := `
			UPDATE contractor_profiles
			SET license_verified = true, insurance_verified = true, updated_at = NOW()
			WHERE contractor_id = $1`
		if _, err := tx.ExecContext(ctx, flagsQuery, req.ContractorID); err != nil {
			return nil, fmt.Errorf("failed to set verification flags: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit review: %w", err)
	}

	req.Status = status
	req.Notes = notes
	req.ReviewedBy = &reviewedBy
	req.ReviewedAt = &reviewedAt
	return &req, nil
}
