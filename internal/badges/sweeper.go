package badges

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweeper runs the scheduled full badge recomputation
type Sweeper struct {
	cron    *cron.Cron
	engine  *Engine
	spec    string
	logger  *zap.Logger
	mu      sync.Mutex
	running bool
}

// NewSweeper creates a sweeper with a cron spec (with seconds field)
func NewSweeper(engine *Engine, spec string, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		cron:   cron.New(cron.WithSeconds()),
		engine: engine,
		spec:   spec,
		logger: logger,
	}
}

// Start schedules the sweep and starts the cron runner
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("badge sweeper already running")
	}

	_, err := s.cron.AddFunc(s.spec, func() {
		if _, err := s.engine.SweepAll(ctx); err != nil {
			s.logger.Error("badge sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid sweep cron spec %q: %w", s.spec, err)
	}

	s.logger.Info("Starting badge sweeper", zap.String("spec", s.spec))
	s.cron.Start()
	s.running = true
	return nil
}

// Stop stops the cron runner and waits for an in-flight sweep entry
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.logger.Info("Stopping badge sweeper")
	<-s.cron.Stop().Done()
	s.running = false
}
