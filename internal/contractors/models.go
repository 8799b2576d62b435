package contractors

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound             = errors.New("contractor profile not found")
	ErrVerificationNotFound = errors.New("verification request not found")
	ErrAlreadyReviewed      = errors.New("verification request already reviewed")
)

// Profile is the contractor's public profile plus the state the badge
// engine evaluates. Badges and Version are owned by the badge engine's
// atomic apply; this package only reads them.
type Profile struct {
	ContractorID        uuid.UUID `db:"contractor_id" json:"contractor_id"`
	BusinessName        string    `db:"business_name" json:"business_name"`
	Bio                 string    `db:"bio" json:"bio"`
	ServiceArea         string    `db:"service_area" json:"service_area"`
	SubscriptionTier    string    `db:"subscription_tier" json:"subscription_tier"`
	LicenseVerified     bool      `db:"license_verified" json:"license_verified"`
	InsuranceVerified   bool      `db:"insurance_verified" json:"insurance_verified"`
	AvgResponseMinutes  float64   `db:"avg_response_minutes" json:"avg_response_minutes"`
	ResponseSampleCount int       `db:"response_sample_count" json:"response_sample_count"`
	Badges              []string  `db:"-" json:"badges"`
	Version             int64     `db:"version" json:"-"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time `db:"updated_at" json:"updated_at"`
}

// VerificationStatus is the review state of a verification request
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationRejected VerificationStatus = "rejected"
)

// VerificationRequest is a contractor's submission of license/insurance
// documents for review
type VerificationRequest struct {
	ID              uuid.UUID          `db:"id" json:"id"`
	ContractorID    uuid.UUID          `db:"contractor_id" json:"contractor_id"`
	LicenseDocURL   string             `db:"license_doc_url" json:"license_doc_url"`
	InsuranceDocURL string             `db:"insurance_doc_url" json:"insurance_doc_url"`
	Status          VerificationStatus `db:"status" json:"status"`
	Notes           string             `db:"notes" json:"notes,omitempty"`
	ReviewedBy      *uuid.UUID         `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time         `db:"reviewed_at" json:"reviewed_at,omitempty"`
	CreatedAt       time.Time          `db:"created_at" json:"created_at"`
}

// UpdateProfileRequest carries the contractor-editable profile fields
type UpdateProfileRequest struct {
	BusinessName string `json:"business_name"`
	Bio          string `json:"bio"`
	ServiceArea  string `json:"service_area"`
}

// SubmitVerificationRequest is the document submission payload
type SubmitVerificationRequest struct {
	LicenseDocURL   string `json:"license_doc_url" binding:"required,url"`
	InsuranceDocURL string `json:"insurance_doc_url" binding:"required,url"`
}

// ReviewVerificationRequest is the admin review payload
type ReviewVerificationRequest struct {
	Approve bool   `json:"approve"`
	Notes   string `json:"notes"`
}
