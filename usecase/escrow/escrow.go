// Package escrow releases the time-locked proceeds of finalized rounds to the
// campaign founder.
package escrow

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/crowdvault/backend/domain"
	"github.com/crowdvault/backend/repository"
	"github.com/crowdvault/backend/usecase"
)

type UseCase struct {
	repos   repository.Set
	uow     repository.UnitOfWork
	gate    *usecase.WriteGate
	emitter *usecase.Emitter
	clock   func() time.Time
	logger  *zap.Logger
}

func New(repos repository.Set, uow repository.UnitOfWork, gate *usecase.WriteGate, emitter *usecase.Emitter, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		repos:   repos,
		uow:     uow,
		gate:    gate,
		emitter: emitter,
		clock:   time.Now,
		logger:  logger,
	}
}

// Claim releases one round's escrow to the founder once its lock expires. The
// record stays behind, marked released, as the audit trail.
func (uc *UseCase) Claim(ctx context.Context, campaignID, callerID string, round int) (*domain.Escrow, error) {
	var escrow *domain.Escrow
	err := uc.gate.Do(func() error {
		return uc.uow.Within(ctx, func(tx repository.Set) error {
			campaign, err := tx.Campaigns.Get(ctx, campaignID)
			if err != nil {
				return err
			}
			if !campaign.IsFounder(callerID) {
				return domain.ErrNotFounder
			}
			escrow, err = tx.Escrows.Get(ctx, campaignID, round)
			if err != nil {
				return err
			}
			if err := escrow.Claim(uc.clock().UTC()); err != nil {
				return err
			}
			return tx.Escrows.Update(ctx, escrow)
		})
	})
	if err != nil {
		return nil, err
	}

	uc.emitter.Record(ctx, campaignID, callerID, "claim_escrow", "escrow", escrow)
	uc.emitter.Publish(ctx, domain.EventEscrowReleased, campaignID, escrow)
	return escrow, nil
}

// List returns every escrow record of a campaign, released or not.
func (uc *UseCase) List(ctx context.Context, campaignID string) ([]domain.Escrow, error) {
	return uc.repos.Escrows.ListByCampaign(ctx, campaignID)
}
