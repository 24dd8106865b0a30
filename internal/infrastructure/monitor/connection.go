// Package monitor periodically probes the engine's backing stores and caches
// the result for the health endpoint and the background runner.
package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/crowdvault/backend/internal/infrastructure/journal"
)

const probeTimeout = 3 * time.Second

type Monitor struct {
	pg      *pgxpool.Pool
	redis   *redislib.Client
	journal *journal.Store

	mu     sync.RWMutex
	status Status

	interval time.Duration
	stopCh   chan struct{}
	logger   *zap.Logger
}

func New(pg *pgxpool.Pool, redis *redislib.Client, jrnl *journal.Store, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		pg:       pg,
		redis:    redis,
		journal:  jrnl,
		interval: interval,
		stopCh:   make(chan struct{}),
		logger:   logger,
	}
}

func (m *Monitor) Start() { go m.loop() }

func (m *Monitor) Stop() { close(m.stopCh) }

// IsOnline reports whether the ledger's source of truth is reachable. Redis
// and the journal are soft dependencies and do not gate readiness.
func (m *Monitor) IsOnline() bool {
	return m.GetStatus().PostgreSQL
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.probe()
	for {
		select {
		case <-ticker.C:
			m.probe()
		case <-m.stopCh:
			return
		}
	}
}

func (m *Monitor) probe() {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	next := Status{LastCheck: time.Now()}
	if m.pg != nil {
		next.PostgreSQL = m.pg.Ping(ctx) == nil
	}
	if m.redis != nil {
		next.Redis = m.redis.Ping(ctx).Err() == nil
	}
	if m.journal != nil {
		size, err := m.journal.Size()
		next.Journal = err == nil
		next.JournalSize = size
	}

	m.mu.Lock()
	prev := m.status
	m.status = next
	m.mu.Unlock()

	if prev.PostgreSQL && !next.PostgreSQL {
		m.logger.Error("postgres went offline")
	}
	if !prev.PostgreSQL && next.PostgreSQL && !prev.LastCheck.IsZero() {
		m.logger.Info("postgres back online")
	}
}
