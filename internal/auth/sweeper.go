package auth

import (
	"context"
	"log/slog"
	"time"
)

type SweeperRepository interface {
	DeactivateExpiredSessions(cutoff time.Time) (int64, error)
}

// Sweeper periodically closes active sessions whose token has expired, so
// the sessions table reflects reality even when users never log out.
type Sweeper struct {
	repo     SweeperRepository
	interval time.Duration
	logger   *slog.Logger
}

func NewSweeper(repo SweeperRepository, interval time.Duration, logger *slog.Logger) *Sweeper {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Sweeper{
		repo:     repo,
		interval: interval,
		logger:   logger,
	}
}

// Run blocks until ctx is cancelled, sweeping once per interval.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("session sweeper started", "interval", s.interval.String())

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("session sweeper stopped")
			return
		case <-ticker.C:
			s.SweepOnce()
		}
	}
}

// SweepOnce deactivates every expired active session and logs the count.
func (s *Sweeper) SweepOnce() {
	swept, err := s.repo.DeactivateExpiredSessions(time.Now())
	if err != nil {
		s.logger.Error("session sweep failed", "error", err)
		return
	}
	if swept > 0 {
		s.logger.Info("expired sessions deactivated", "count", swept)
	}
}
