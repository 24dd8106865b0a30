package services

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/crowdvault/backend/internal/infrastructure/journal"
)

// RetentionSweeper prunes audit journal entries past the retention window.
// Runs daily; the journal is an operational trail, not the ledger of record.
type RetentionSweeper struct {
	store     *journal.Store
	retention time.Duration
	logger    *zap.Logger
	cron      *cron.Cron
}

func NewRetentionSweeper(store *journal.Store, retentionDays int, logger *zap.Logger) *RetentionSweeper {
	if retentionDays <= 0 {
		retentionDays = 90
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &RetentionSweeper{
		store:     store,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		logger:    logger,
		cron:      cron.New(),
	}

	_, _ = s.cron.AddFunc("@daily", s.sweep)
	return s
}

func (s *RetentionSweeper) Start() {
	if s == nil || s.cron == nil {
		return
	}
	s.cron.Start()
	s.logger.Info("journal retention sweeper started")
}

func (s *RetentionSweeper) Stop(ctx context.Context) {
	if s == nil || s.cron == nil {
		return
	}
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	s.logger.Info("journal retention sweeper stopped")
}

func (s *RetentionSweeper) sweep() {
	cutoff := time.Now().UTC().Add(-s.retention)
	if err := s.store.Cleanup(cutoff); err != nil {
		s.logger.Error("journal cleanup failed", zap.Error(err))
		return
	}
	s.logger.Debug("journal cleanup done", zap.Time("cutoff", cutoff))
}
