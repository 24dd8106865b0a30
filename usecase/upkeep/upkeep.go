// Package upkeep is the lifecycle trigger: it detects which time-based action
// a campaign is due for and fires it through the dispatcher. One action per
// invocation, fixed priority, and re-running after everything fired is a
// no-op, so callers may poll as often as they like.
package upkeep

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/crowdvault/backend/domain"
	"github.com/crowdvault/backend/repository"
	"github.com/crowdvault/backend/usecase"
)

type UseCase struct {
	repos      repository.Set
	dispatcher *usecase.ActionDispatcher
	grace      time.Duration
	clock      func() time.Time
	logger     *zap.Logger
}

const defaultGracePeriod = 30 * 24 * time.Hour

// New builds the trigger. grace must match the lifecycle's configured grace
// period so CheckDue and EnableEmergency agree.
func New(repos repository.Set, dispatcher *usecase.ActionDispatcher, grace time.Duration, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if grace <= 0 {
		grace = defaultGracePeriod
	}
	return &UseCase{
		repos:      repos,
		dispatcher: dispatcher,
		grace:      grace,
		clock:      time.Now,
		logger:     logger,
	}
}

// DueResult reports what, if anything, a campaign is due for.
type DueResult struct {
	CampaignID string           `json:"campaign_id"`
	Due        bool             `json:"due"`
	Action     usecase.DueAction `json:"action,omitempty"`
}

// CheckDue inspects a campaign without mutating it. Priority is fixed:
// finalizing an eligible round comes before closing the exchange window,
// which comes before the emergency branch.
func (uc *UseCase) CheckDue(ctx context.Context, campaignID string) (*DueResult, error) {
	result := &DueResult{CampaignID: campaignID}
	now := uc.clock().UTC()

	round, err := uc.repos.Rounds.Current(ctx, campaignID)
	switch {
	case err == nil:
		if round.FinalizeEligible(now) {
			result.Due = true
			result.Action = usecase.ActionFinalizeRound
			return result, nil
		}
	case domain.IsDomainError(err, domain.ErrCodeNotFound):
	default:
		return nil, err
	}

	state, err := uc.repos.DAO.Get(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if state.Phase == domain.PhaseExchangePeriod && state.EffectivePhase(now) == domain.PhaseCompleted {
		result.Due = true
		result.Action = usecase.ActionCompleteExchange
		return result, nil
	}
	if state.EmergencyDue(uc.grace, now) {
		result.Due = true
		result.Action = usecase.ActionEnableEmergency
		return result, nil
	}
	return result, nil
}

// PerformDue runs the single highest-priority due action, if any. The target
// use case revalidates under its own lock, so a race with a concurrent caller
// degrades to a typed precondition error, never a double execution.
func (uc *UseCase) PerformDue(ctx context.Context, campaignID string) (*DueResult, error) {
	result, err := uc.CheckDue(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if !result.Due {
		return result, nil
	}
	if err := uc.dispatcher.Execute(ctx, result.Action, campaignID); err != nil {
		return nil, err
	}
	uc.logger.Info("due action performed",
		zap.String("campaign_id", campaignID),
		zap.String("action", string(result.Action)))
	return result, nil
}

// Sweep walks every campaign and performs whatever is due. Used by the
// background runner; per-campaign failures are logged and skipped so one bad
// campaign cannot stall the rest.
func (uc *UseCase) Sweep(ctx context.Context) (int, error) {
	performed := 0
	const pageSize = 200
	for offset := 0; ; offset += pageSize {
		campaigns, err := uc.repos.Campaigns.List(ctx, pageSize, offset)
		if err != nil {
			return performed, err
		}
		if len(campaigns) == 0 {
			return performed, nil
		}
		for _, campaign := range campaigns {
			result, err := uc.PerformDue(ctx, campaign.ID)
			if err != nil {
				uc.logger.Warn("upkeep sweep failed for campaign",
					zap.String("campaign_id", campaign.ID), zap.Error(err))
				continue
			}
			if result.Due {
				performed++
			}
		}
		if len(campaigns) < pageSize {
			return performed, nil
		}
	}
}
