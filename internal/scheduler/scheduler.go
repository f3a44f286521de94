// Package scheduler runs the periodic cache sweep.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweeper drops expired entries and reports how many were removed.
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// Target is a named cache to sweep.
type Target struct {
	Name    string
	Sweeper Sweeper
}

// Scheduler wraps robfig/cron and sweeps every target on each tick.
type Scheduler struct {
	cron     *cron.Cron
	schedule string
	targets  []Target
	logger   *zap.Logger
}

// New creates a Scheduler that fires every interval.
func New(interval time.Duration, logger *zap.Logger, targets ...Target) (*Scheduler, error) {
	if interval <= 0 {
		return nil, errors.New("sweep interval must be positive")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		cron:     cron.New(),
		schedule: fmt.Sprintf("@every %s", interval),
		targets:  targets,
		logger:   logger,
	}, nil
}

// Start registers the sweep job and starts the cron loop.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.schedule, func() { s.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	s.logger.Info("cache sweep scheduled", zap.String("schedule", s.schedule), zap.Int("targets", len(s.targets)))
	return nil
}

// Stop halts the cron loop and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("cache sweep stopped")
}

// RunOnce sweeps every target. Failures are logged and do not stop the others.
func (s *Scheduler) RunOnce(ctx context.Context) {
	for _, target := range s.targets {
		removed, err := target.Sweeper.Sweep(ctx)
		if err != nil {
			s.logger.Warn("cache sweep failed", zap.String("cache", target.Name), zap.Error(err))
			continue
		}
		if removed > 0 {
			s.logger.Info("expired cache entries removed", zap.String("cache", target.Name), zap.Int("removed", removed))
		}
	}
}
