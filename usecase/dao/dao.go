// Package dao drives the post-funding lifecycle: scheduling and running the
// live milestone event, opening the exchange window, and the emergency branch.
package dao

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/crowdvault/backend/domain"
	"github.com/crowdvault/backend/repository"
	"github.com/crowdvault/backend/usecase"
)

// Config carries the lifecycle tunables. Zero values are replaced with the
// package defaults at construction.
type Config struct {
	MinLiveDuration time.Duration
	ExchangeWindow  time.Duration
	GracePeriod     time.Duration
}

const (
	defaultMinLiveDuration = 15 * time.Minute
	defaultExchangeWindow  = 30 * 24 * time.Hour
	defaultGracePeriod     = 30 * 24 * time.Hour
)

type UseCase struct {
	repos   repository.Set
	uow     repository.UnitOfWork
	gate    *usecase.WriteGate
	emitter *usecase.Emitter
	cfg     Config
	clock   func() time.Time
	logger  *zap.Logger
}

func New(repos repository.Set, uow repository.UnitOfWork, gate *usecase.WriteGate, emitter *usecase.Emitter, cfg Config, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MinLiveDuration <= 0 {
		cfg.MinLiveDuration = defaultMinLiveDuration
	}
	if cfg.ExchangeWindow <= 0 {
		cfg.ExchangeWindow = defaultExchangeWindow
	}
	if cfg.GracePeriod <= 0 {
		cfg.GracePeriod = defaultGracePeriod
	}
	return &UseCase{
		repos:   repos,
		uow:     uow,
		gate:    gate,
		emitter: emitter,
		cfg:     cfg,
		clock:   time.Now,
		logger:  logger,
	}
}

// GetState returns the lifecycle state with the phase as observed right now:
// an elapsed exchange window reads COMPLETED even before the trigger persists
// the transition.
func (uc *UseCase) GetState(ctx context.Context, campaignID string) (*domain.DAOState, error) {
	state, err := uc.repos.DAO.Get(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	state.Phase = state.EffectivePhase(uc.clock().UTC())
	return state, nil
}

// ScheduleLiveEvent books the milestone event. Founder only, future times
// only, and only while the campaign is waiting for one.
func (uc *UseCase) ScheduleLiveEvent(ctx context.Context, campaignID, callerID string, at time.Time, eventRef string) (*domain.DAOState, error) {
	state, err := uc.transition(ctx, campaignID, callerID, func(s *domain.DAOState, now time.Time) error {
		return s.ScheduleLive(at, eventRef, now)
	})
	if err != nil {
		return nil, err
	}
	uc.emitter.Record(ctx, campaignID, callerID, "schedule_live_event", "dao_state", state)
	uc.emitter.Publish(ctx, domain.EventPhaseChanged, campaignID, state)
	uc.emitter.Invalidate(ctx, campaignID)
	return state, nil
}

// StartLiveEvent begins the milestone event at or after its scheduled time.
func (uc *UseCase) StartLiveEvent(ctx context.Context, campaignID, callerID string) (*domain.DAOState, error) {
	state, err := uc.transition(ctx, campaignID, callerID, func(s *domain.DAOState, now time.Time) error {
		return s.StartLive(now)
	})
	if err != nil {
		return nil, err
	}
	uc.emitter.Record(ctx, campaignID, callerID, "start_live_event", "dao_state", state)
	uc.emitter.Publish(ctx, domain.EventPhaseChanged, campaignID, state)
	uc.emitter.Invalidate(ctx, campaignID)
	return state, nil
}

// EndLiveEvent closes the milestone event and opens the exchange window. The
// event must have run at least the configured minimum.
func (uc *UseCase) EndLiveEvent(ctx context.Context, campaignID, callerID string) (*domain.DAOState, error) {
	state, err := uc.transition(ctx, campaignID, callerID, func(s *domain.DAOState, now time.Time) error {
		return s.EndLive(uc.cfg.MinLiveDuration, uc.cfg.ExchangeWindow, now)
	})
	if err != nil {
		return nil, err
	}
	uc.emitter.Record(ctx, campaignID, callerID, "end_live_event", "dao_state", state)
	uc.emitter.Publish(ctx, domain.EventPhaseChanged, campaignID, state)
	uc.emitter.Invalidate(ctx, campaignID)
	return state, nil
}

// CompleteExchange persists the EXCHANGE_PERIOD -> COMPLETED transition once
// the window has elapsed. Normally invoked by the lifecycle trigger.
func (uc *UseCase) CompleteExchange(ctx context.Context, campaignID string) error {
	var state *domain.DAOState
	err := uc.gate.Do(func() error {
		return uc.uow.Within(ctx, func(tx repository.Set) error {
			var err error
			state, err = tx.DAO.Get(ctx, campaignID)
			if err != nil {
				return err
			}
			if err := state.CompleteExchange(uc.clock().UTC()); err != nil {
				return err
			}
			return tx.DAO.Update(ctx, state)
		})
	})
	if err != nil {
		return err
	}
	uc.emitter.Record(ctx, campaignID, "", "complete_exchange", "dao_state", state)
	uc.emitter.Publish(ctx, domain.EventPhaseChanged, campaignID, state)
	uc.emitter.Invalidate(ctx, campaignID)
	return nil
}

// EnableEmergency flips the campaign into the terminal EMERGENCY phase after
// the grace period ran out without a live event. Normally invoked by the
// lifecycle trigger; callable directly by anyone since the condition itself is
// objective.
func (uc *UseCase) EnableEmergency(ctx context.Context, campaignID string) error {
	var state *domain.DAOState
	err := uc.gate.Do(func() error {
		return uc.uow.Within(ctx, func(tx repository.Set) error {
			var err error
			state, err = tx.DAO.Get(ctx, campaignID)
			if err != nil {
				return err
			}
			if err := state.EnableEmergency(uc.cfg.GracePeriod, uc.clock().UTC()); err != nil {
				return err
			}
			return tx.DAO.Update(ctx, state)
		})
	})
	if err != nil {
		return err
	}
	uc.emitter.Record(ctx, campaignID, "", "enable_emergency", "dao_state", state)
	uc.emitter.Publish(ctx, domain.EventPhaseChanged, campaignID, state)
	uc.emitter.Invalidate(ctx, campaignID)
	return nil
}

// transition runs one founder-gated state machine step inside a transaction.
func (uc *UseCase) transition(ctx context.Context, campaignID, callerID string, step func(*domain.DAOState, time.Time) error) (*domain.DAOState, error) {
	var state *domain.DAOState
	err := uc.gate.Do(func() error {
		return uc.uow.Within(ctx, func(tx repository.Set) error {
			campaign, err := tx.Campaigns.Get(ctx, campaignID)
			if err != nil {
				return err
			}
			if !campaign.IsFounder(callerID) {
				return domain.ErrNotFounder
			}
			state, err = tx.DAO.Get(ctx, campaignID)
			if err != nil {
				return err
			}
			if err := step(state, uc.clock().UTC()); err != nil {
				return err
			}
			return tx.DAO.Update(ctx, state)
		})
	})
	if err != nil {
		return nil, err
	}
	return state, nil
}
