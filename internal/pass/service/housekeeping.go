package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/bensonnlee/SRCode/internal/pass/store"
)

// HousekeepingService periodically deletes expired fusion tokens so that the
// database only ever holds usable ones.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration

	// Now defaults to time.Now.
	Now func() time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping service. A non-positive
// interval defaults to 15 minutes.
func NewHousekeepingService(st store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	return &HousekeepingService{
		Store:    st,
		Logger:   logger,
		Interval: interval,
		Now:      time.Now,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start runs the worker in the background. Call Stop to end it.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until any in-progress cleanup has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Cleanup(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup runs one pass and returns the number of tokens removed.
func (s *HousekeepingService) Cleanup(ctx context.Context) int64 {
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}

	n, err := s.Store.Tokens().DeleteExpiredTokens(ctx, now)
	if err != nil {
		s.Logger.Error("failed to delete expired tokens", "error", err)
		return 0
	}
	s.Logger.Debug("housekeeping cleanup completed", "tokens_deleted", n)
	return n
}
