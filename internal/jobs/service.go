package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notifier delivers an in-app notification to a user
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, notifType, title, body string) error
}

type Service struct {
	repo     Repository
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(repo Repository, notifier Notifier, logger *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *Service) CreateJob(ctx context.Context, homeownerID uuid.UUID, req CreateJobRequest) (*Job, error) {
	if req.BudgetMax > 0 && req.BudgetMin > req.BudgetMax {
		return nil, fmt.Errorf("budget_min %.2f exceeds budget_max %.2f", req.BudgetMin, req.BudgetMax)
	}

	now := s.now()
	job := &Job{
		ID:          uuid.New(),
		HomeownerID: homeownerID,
		CategoryID:  req.CategoryID,
		Title:       req.Title,
		Description: req.Description,
		BudgetMin:   req.BudgetMin,
		BudgetMax:   req.BudgetMax,
		Status:      JobOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateJob(ctx, job); err != nil {
		return nil, err
	}

	s.logger.Info("Job posted",
		zap.String("job_id", job.ID.String()),
		zap.String("category_id", job.CategoryID))
	return job, nil
}

func (s *Service) GetJob(ctx context.Context, id uuid.UUID) (*Job, []Quote, error) {
	job, err := s.repo.GetJob(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	quotes, err := s.repo.ListQuotesByJob(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return job, quotes, nil
}

func (s *Service) ListOpenJobs(ctx context.Context, filter JobFilter) ([]Job, error) {
	return s.repo.ListOpenJobs(ctx, filter)
}

func (s *Service) ListJobsByHomeowner(ctx context.Context, homeownerID uuid.UUID) ([]Job, error) {
	return s.repo.ListJobsByHomeowner(ctx, homeownerID)
}

func (s *Service) ListQuotesByContractor(ctx context.Context, contractorID uuid.UUID) ([]Quote, error) {
	return s.repo.ListQuotesByContractor(ctx, contractorID)
}

// SubmitQuote records a contractor's offer on an open job and notifies
// the homeowner
func (s *Service) SubmitQuote(ctx context.Context, contractorID, jobID uuid.UUID, req SubmitQuoteRequest) (*Quote, error) {
	job, err := s.repo.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != JobOpen {
		return nil, ErrJobClosed
	}
	if job.HomeownerID == contractorID {
		return nil, ErrOwnJob
	}

	quote := &Quote{
		ID:           uuid.New(),
		JobID:        jobID,
		ContractorID: contractorID,
		Amount:       req.Amount,
		Message:      req.Message,
		Status:       QuotePending,
		CreatedAt:    s.now(),
	}
	if err := s.repo.CreateQuote(ctx, quote); err != nil {
		return nil, err
	}

	if err := s.notifier.Notify(ctx, job.HomeownerID, "quote_received",
		"New quote", fmt.Sprintf("A contractor quoted $%.2f on %q.", req.Amount, job.Title)); err != nil {
		s.logger.Warn("Failed to notify homeowner of quote",
			zap.String("job_id", jobID.String()),
			zap.Error(err))
	}

	s.logger.Info("Quote submitted",
		zap.String("quote_id", quote.ID.String()),
		zap.String("job_id", jobID.String()))
	return quote, nil
}

// AcceptQuote lets the job's homeowner choose a quote. Remaining
// pending quotes are declined and the job moves to in_progress.
func (s *Service) AcceptQuote(ctx context.Context, homeownerID, quoteID uuid.UUID) (*Quote, error) {
	quote, err := s.repo.GetQuote(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	job, err := s.repo.GetJob(ctx, quote.JobID)
	if err != nil {
		return nil, err
	}
	if job.HomeownerID != homeownerID {
		return nil, ErrNotJobOwner
	}
	if quote.Status != QuotePending {
		return nil, ErrQuoteSettled
	}

	if err := s.repo.AcceptQuote(ctx, quoteID, quote.JobID); err != nil {
		return nil, err
	}

	if err := s.notifier.Notify(ctx, quote.ContractorID, "quote_accepted",
		"Quote accepted", fmt.Sprintf("Your quote on %q was accepted.", job.Title)); err != nil {
		s.logger.Warn("Failed to notify contractor of acceptance",
			zap.String("quote_id", quoteID.String()),
			zap.Error(err))
	}

	quote.Status = QuoteAccepted
	s.logger.Info("Quote accepted",
		zap.String("quote_id", quoteID.String()),
		zap.String("job_id", quote.JobID.String()))
	return quote, nil
}

// CloseJob completes or cancels a job at the homeowner's request
func (s *Service) CloseJob(ctx context.Context, homeownerID, jobID uuid.UUID, status JobStatus) (*Job, error) {
	if status != JobCompleted && status != JobCancelled {
		return nil, fmt.Errorf("invalid terminal status %q", status)
	}

	job, err := s.repo.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.HomeownerID != homeownerID {
		return nil, ErrNotJobOwner
	}
	if job.Status == JobCompleted || job.Status == JobCancelled {
		return nil, fmt.Errorf("job already %s", job.Status)
	}

	if err := s.repo.UpdateJobStatus(ctx, jobID, status); err != nil {
		return nil, err
	}
	job.Status = status
	return job, nil
}
