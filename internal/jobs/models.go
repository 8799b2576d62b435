package jobs

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrJobNotFound   = errors.New("job not found")
	ErrQuoteNotFound = errors.New("quote not found")
	ErrJobClosed     = errors.New("job is not open for quotes")
	ErrNotJobOwner   = errors.New("job belongs to another homeowner")
	ErrQuoteSettled  = errors.New("quote already accepted or declined")
	ErrOwnJob        = errors.New("contractors cannot quote their own job")
)

// JobStatus is the lifecycle state of a job post
type JobStatus string

const (
	JobOpen       JobStatus = "open"
	JobInProgress JobStatus = "in_progress"
	JobCompleted  JobStatus = "completed"
	JobCancelled  JobStatus = "cancelled"
)

// QuoteStatus is the lifecycle state of a contractor's quote
type QuoteStatus string

const (
	QuotePending  QuoteStatus = "pending"
	QuoteAccepted QuoteStatus = "accepted"
	QuoteDeclined QuoteStatus = "declined"
)

// Job is a homeowner's work request open for contractor quotes
type Job struct {
	ID          uuid.UUID `db:"id" json:"id"`
	HomeownerID uuid.UUID `db:"homeowner_id" json:"homeowner_id"`
	CategoryID  string    `db:"category_id" json:"category_id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	BudgetMin   float64   `db:"budget_min" json:"budget_min"`
	BudgetMax   float64   `db:"budget_max" json:"budget_max"`
	Status      JobStatus `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Quote is a contractor's offer on a job
type Quote struct {
	ID           uuid.UUID   `db:"id" json:"id"`
	JobID        uuid.UUID   `db:"job_id" json:"job_id"`
	ContractorID uuid.UUID   `db:"contractor_id" json:"contractor_id"`
	Amount       float64     `db:"amount" json:"amount"`
	Message      string      `db:"message" json:"message"`
	Status       QuoteStatus `db:"status" json:"status"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
}

// CreateJobRequest is the job post payload
type CreateJobRequest struct {
	CategoryID  string  `json:"category_id" binding:"required"`
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	BudgetMin   float64 `json:"budget_min" binding:"gte=0"`
	BudgetMax   float64 `json:"budget_max" binding:"gte=0"`
}

// SubmitQuoteRequest is the quote payload
type SubmitQuoteRequest struct {
	Amount  float64 `json:"amount" binding:"required,gt=0"`
	Message string  `json:"message"`
}

// JobFilter narrows the open-job feed contractors browse
type JobFilter struct {
	CategoryID string `form:"category"`
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size"`
}

// Normalize clamps pagination to sane bounds
func (f *JobFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 || f.PageSize > 100 {
		f.PageSize = 20
	}
}
