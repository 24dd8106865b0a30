package services

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/crowdvault/backend/usecase/upkeep"
)

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// UpkeepRunner fires the lifecycle trigger on a schedule so time-based
// transitions happen even when nobody calls the trigger endpoint. Each tick
// is a full sweep; the trigger itself is idempotent, so overlapping manual
// calls are harmless.
type UpkeepRunner struct {
	sweeper *upkeep.UseCase
	monitor ConnectionHealth
	logger  *zap.Logger
	cron    *cron.Cron
	timeout time.Duration
}

func NewUpkeepRunner(sweeper *upkeep.UseCase, monitor ConnectionHealth, spec string, logger *zap.Logger) *UpkeepRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if spec == "" {
		spec = "@every 1m"
	}

	r := &UpkeepRunner{
		sweeper: sweeper,
		monitor: monitor,
		logger:  logger,
		cron:    cron.New(),
		timeout: 2 * time.Minute,
	}

	_, _ = r.cron.AddFunc(spec, r.tick)
	return r
}

// Start launches the cron scheduler.
func (r *UpkeepRunner) Start() {
	if r == nil || r.cron == nil {
		return
	}
	r.cron.Start()
	r.logger.Info("upkeep runner started")
}

// Stop gracefully stops the scheduler.
func (r *UpkeepRunner) Stop(ctx context.Context) {
	if r == nil || r.cron == nil {
		return
	}
	stopCtx := r.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	r.logger.Info("upkeep runner stopped")
}

func (r *UpkeepRunner) tick() {
	if r.monitor != nil && !r.monitor.IsOnline() {
		r.logger.Debug("skipping upkeep sweep (offline)")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	performed, err := r.sweeper.Sweep(ctx)
	if err != nil {
		r.logger.Error("upkeep sweep failed", zap.Error(err))
		return
	}
	if performed > 0 {
		r.logger.Info("upkeep sweep done", zap.Int("actions", performed))
	}
}
