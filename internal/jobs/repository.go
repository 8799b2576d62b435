package jobs

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines data access for jobs and quotes
type Repository interface {
	CreateJob(ctx context.Context, job *Job) error
	GetJob(ctx context.Context, id uuid.UUID) (*Job, error)
	ListOpenJobs(ctx context.Context, filter JobFilter) ([]Job, error)
	ListJobsByHomeowner(ctx context.Context, homeownerID uuid.UUID) ([]Job, error)
	UpdateJobStatus(ctx context.Context, id uuid.UUID, status JobStatus) error
	CreateQuote(ctx context.Context, quote *Quote) error
	GetQuote(ctx context.Context, id uuid.UUID) (*Quote, error)
	ListQuotesByJob(ctx context.Context, jobID uuid.UUID) ([]Quote, error)
	ListQuotesByContractor(ctx context.Context, contractorID uuid.UUID) ([]Quote, error)
	AcceptQuote(ctx context.Context, quoteID, jobID uuid.UUID) error
}

type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreateJob(ctx context.Context, job *Job) error {
	query := `
		INSERT INTO jobs (
			id, homeowner_id, category_id, title, description,
			budget_min, budget_max, status, created_at, updated_at
		) VALUES (:id, :homeowner_id, :category_id, :title, :description,
		          :budget_min, :budget_max, :status, :created_at, :updated_at)`

	if _, err := r.db.NamedExecContext(ctx, query, job); err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetJob(ctx context.Context, id uuid.UUID) (*Job, error) {
	var job Job
	query := `
		SELECT id, homeowner_id, category_id, title, description,
		       budget_min, budget_max, status, created_at, updated_at
		FROM jobs
		WHERE id = $1`

	if err := r.db.GetContext(ctx, &job, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return &job, nil
}

func (r *PostgresRepository) ListOpenJobs(ctx context.Context, filter JobFilter) ([]Job, error) {
	filter.Normalize()

	out := []Job{}
	args := []interface{}{string(JobOpen)}
	query := `
		SELECT id, homeowner_id, category_id, title, description,
		       budget_min, budget_max, status, created_at, updated_at
		FROM jobs
		WHERE status = $1`
	if filter.CategoryID != "" {
		args = append(args, filter.CategoryID)
		query += fmt.Sprintf(" AND category_id = $%d", len(args))
	}
	args = append(args, filter.PageSize, (filter.Page-1)*filter.PageSize)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list open jobs: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) ListJobsByHomeowner(ctx context.Context, homeownerID uuid.UUID) ([]Job, error) {
	out := []Job{}
	query := `
		SELECT id, homeowner_id, category_id, title, description,
		       budget_min, budget_max, status, created_at, updated_at
		FROM jobs
		WHERE homeowner_id = $1
		ORDER BY created_at DESC`

	if err := r.db.SelectContext(ctx, &out, query, homeownerID); err != nil {
		return nil, fmt.Errorf("failed to list homeowner jobs: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) UpdateJobStatus(ctx context.Context, id uuid.UUID, status JobStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE jobs SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrJobNotFound
	}
	return nil
}

func (r *PostgresRepository) CreateQuote(ctx context.Context, quote *Quote) error {
	query := `
		INSERT INTO quotes (id, job_id, contractor_id, amount, message, status, created_at)
		VALUES (:id, :job_id, :contractor_id, :amount, :message, :status, :created_at)`

	if _, err := r.db.NamedExecContext(ctx, query, quote); err != nil {
		return fmt.Errorf("failed to create quote: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetQuote(ctx context.Context, id uuid.UUID) (*Quote, error) {
	var quote Quote
	query := `
		SELECT id, job_id, contractor_id, amount, message, status, created_at
		FROM quotes
		WHERE id = $1`

	if err := r.db.GetContext(ctx, &quote, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}
	return &quote, nil
}

func (r *PostgresRepository) ListQuotesByJob(ctx context.Context, jobID uuid.UUID) ([]Quote, error) {
	out := []Quote{}
	query := `
		SELECT id, job_id, contractor_id, amount, message, status, created_at
		FROM quotes
		WHERE job_id = $1
		ORDER BY created_at ASC`

	if err := r.db.SelectContext(ctx, &out, query, jobID); err != nil {
		return nil, fmt.Errorf("failed to list job quotes: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) ListQuotesByContractor(ctx context.Context, contractorID uuid.UUID) ([]Quote, error) {
	out := []Quote{}
	query := `
		SELECT id, job_id, contractor_id, amount, message, status, created_at
		FROM quotes
		WHERE contractor_id = $1
		ORDER BY created_at DESC`

	if err := r.db.SelectContext(ctx, &out, query, contractorID); err != nil {
		return nil, fmt.Errorf("failed to list contractor quotes: %w", err)
	}
	return out, nil
}

// AcceptQuote settles a job's quotes in one transaction: the chosen
// quote becomes accepted, every other pending quote is declined, and
// the job moves to in_progress.
func (r *PostgresRepository) AcceptQuote(ctx context.Context, quoteID, jobID uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE quotes SET status = $3 WHERE id = $1 AND job_id = $2 AND status = $4`,
		quoteID, jobID, QuoteAccepted, QuotePending)
	if err != nil {
		return fmt.Errorf("failed to accept quote: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrQuoteSettled
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE quotes SET status = $2 WHERE job_id = $1 AND status = $3`,
		jobID, QuoteDeclined, QuotePending); err != nil {
		return fmt.Errorf("failed to decline remaining quotes: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE jobs SET status = $2, updated_at = NOW() WHERE id = $1`,
		jobID, JobInProgress); err != nil {
		return fmt.Errorf("failed to move job to in_progress: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit quote acceptance: %w", err)
	}
	return nil
}
