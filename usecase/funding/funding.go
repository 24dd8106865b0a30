// Package funding owns the round ledger and the share registry: campaign
// launch, round transitions, purchases (certificate issuance plus commission
// forwarding), and the read surface over both.
package funding

import (
	"context"
	"time"

	"github.com/google/uuid"
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
	newID   func() string
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
		newID:   uuid.NewString,
		logger:  logger,
	}
}

// PurchaseReceipt reports the outcome of a successful purchase.
type PurchaseReceipt struct {
	CampaignID     string  `json:"campaign_id"`
	Round          int     `json:"round"`
	Shares         int64   `json:"shares"`
	GrossPaid      int64   `json:"gross_paid"`
	Commission     int64   `json:"commission"`
	NetRetained    int64   `json:"net_retained"`
	CertificateIDs []int64 `json:"certificate_ids"`
}

// CreateCampaign launches a campaign with its lifecycle module attached in
// INACTIVE.
func (uc *UseCase) CreateCampaign(ctx context.Context, input domain.CreateCampaignInput) (*domain.Campaign, error) {
	now := uc.clock().UTC()
	campaign, err := domain.NewCampaign(uc.newID(), input, now)
	if err != nil {
		return nil, err
	}

	err = uc.gate.Do(func() error {
		return uc.uow.Within(ctx, func(tx repository.Set) error {
			if err := tx.Campaigns.Create(ctx, campaign); err != nil {
				return err
			}
			return tx.DAO.Create(ctx, domain.NewDAOState(campaign.ID, now))
		})
	})
	if err != nil {
		return nil, err
	}

	uc.emitter.Record(ctx, campaign.ID, campaign.CreatorID, "create_campaign", "campaign", campaign)
	uc.emitter.Publish(ctx, domain.EventCampaignCreated, campaign.ID, campaign)
	return campaign, nil
}

// UpdateCommissionRate changes the live platform rate for future purchases.
// Certificates already issued keep their snapshots.
func (uc *UseCase) UpdateCommissionRate(ctx context.Context, campaignID, callerID string, percent int64) error {
	err := uc.gate.Do(func() error {
		return uc.uow.Within(ctx, func(tx repository.Set) error {
			campaign, err := tx.Campaigns.Get(ctx, campaignID)
			if err != nil {
				return err
			}
			if !campaign.IsFounder(callerID) {
				return domain.ErrNotFounder
			}
			if err := campaign.SetCommissionRate(percent, uc.clock().UTC()); err != nil {
				return err
			}
			return tx.Campaigns.Update(ctx, campaign)
		})
	})
	if err != nil {
		return err
	}

	uc.emitter.Record(ctx, campaignID, callerID, "update_commission_rate", "campaign", map[string]int64{"percent": percent})
	uc.emitter.Invalidate(ctx, campaignID)
	return nil
}

// StartRound opens round N+1. The previous round, if any, must be finalized.
func (uc *UseCase) StartRound(ctx context.Context, campaignID, callerID string, target, price int64, duration time.Duration) (*domain.Round, error) {
	var round *domain.Round
	err := uc.gate.Do(func() error {
		return uc.uow.Within(ctx, func(tx repository.Set) error {
			campaign, err := tx.Campaigns.Get(ctx, campaignID)
			if err != nil {
				return err
			}
			if !campaign.IsFounder(callerID) {
				return domain.ErrNotFounder
			}

			now := uc.clock().UTC()
			number := 1
			current, err := tx.Rounds.Current(ctx, campaignID)
			switch {
			case err == nil:
				if !current.Finalized {
					return domain.ErrRoundStillActive
				}
				number = current.Number + 1
			case domain.IsDomainError(err, domain.ErrCodeNotFound):
			default:
				return err
			}

			round, err = domain.NewRound(campaignID, number, target, price, duration, now)
			if err != nil {
				return err
			}
			if err := tx.Rounds.Create(ctx, round); err != nil {
				return err
			}

			campaign.CurrentRound = number
			campaign.UpdatedAt = now
			return tx.Campaigns.Update(ctx, campaign)
		})
	})
	if err != nil {
		return nil, err
	}

	uc.emitter.Record(ctx, campaignID, callerID, "start_round", "round", round)
	uc.emitter.Publish(ctx, domain.EventRoundStarted, campaignID, round)
	uc.emitter.Invalidate(ctx, campaignID)
	return round, nil
}

// Purchase buys `shares` units at the current round price. Payment must match
// exactly; the transport has already verified custody of it. Each unit becomes
// one certificate carrying the commission rate in effect right now, and the
// commission share of the payment is forwarded to the treasury immediately.
func (uc *UseCase) Purchase(ctx context.Context, campaignID, investorID string, shares, payment int64) (*PurchaseReceipt, error) {
	if investorID == "" {
		return nil, domain.ErrInvalidPayload
	}

	var receipt *PurchaseReceipt
	err := uc.gate.Do(func() error {
		return uc.uow.Within(ctx, func(tx repository.Set) error {
			campaign, err := tx.Campaigns.Get(ctx, campaignID)
			if err != nil {
				return err
			}
			round, err := tx.Rounds.Current(ctx, campaignID)
			if err != nil {
				if domain.IsDomainError(err, domain.ErrCodeNotFound) {
					return domain.ErrRoundNotActive
				}
				return err
			}

			now := uc.clock().UTC()
			rate := campaign.CommissionPercent
			netPerUnit := domain.NetAmount(round.SharePrice, rate)
			firstIndex := round.IssuedCount + 1

			if err := round.RecordPurchase(shares, payment, netPerUnit*shares, now); err != nil {
				return err
			}

			certs := make([]domain.Certificate, 0, shares)
			ids := make([]int64, 0, shares)
			for i := int64(0); i < shares; i++ {
				cert := domain.IssueCertificate(campaignID, investorID, round.Number, firstIndex+i, round.SharePrice, rate, now)
				certs = append(certs, cert)
				ids = append(ids, cert.ID)
			}
			if err := tx.Certificates.CreateBatch(ctx, certs); err != nil {
				return err
			}
			if err := tx.Rounds.Update(ctx, round); err != nil {
				return err
			}

			campaign.CertificatesIssued += shares
			campaign.UpdatedAt = now
			if err := tx.Campaigns.Update(ctx, campaign); err != nil {
				return err
			}

			receipt = &PurchaseReceipt{
				CampaignID:     campaignID,
				Round:          round.Number,
				Shares:         shares,
				GrossPaid:      payment,
				Commission:     payment - netPerUnit*shares,
				NetRetained:    netPerUnit * shares,
				CertificateIDs: ids,
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	uc.emitter.Record(ctx, campaignID, investorID, "purchase", "certificate", receipt)
	uc.emitter.Publish(ctx, domain.EventSharesPurchased, campaignID, receipt)
	uc.emitter.Invalidate(ctx, campaignID)
	return receipt, nil
}

// FinalizeRound closes the current round once it hit its target or expired.
// On the campaign's very first finalization the DAO lifecycle activates; later
// finalizations leave an already-advanced phase untouched. The round's net
// proceeds move into a time-locked escrow.
func (uc *UseCase) FinalizeRound(ctx context.Context, campaignID string, releaseDelay time.Duration) (*domain.Round, error) {
	var round *domain.Round
	err := uc.gate.Do(func() error {
		return uc.uow.Within(ctx, func(tx repository.Set) error {
			var err error
			round, err = tx.Rounds.Current(ctx, campaignID)
			if err != nil {
				return err
			}

			now := uc.clock().UTC()
			if err := round.Finalize(now); err != nil {
				return err
			}
			if err := tx.Rounds.Update(ctx, round); err != nil {
				return err
			}

			if err := tx.Escrows.Create(ctx, domain.NewEscrow(campaignID, round.Number, round.NetRetained, releaseDelay, now)); err != nil {
				return err
			}

			state, err := tx.DAO.Get(ctx, campaignID)
			if err != nil {
				return err
			}
			if state.Phase == domain.PhaseInactive {
				if err := state.Activate(now); err != nil {
					return err
				}
				if err := tx.DAO.Update(ctx, state); err != nil {
					return err
				}
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	uc.emitter.Record(ctx, campaignID, "", "finalize_round", "round", round)
	uc.emitter.Publish(ctx, domain.EventRoundFinalized, campaignID, round)
	uc.emitter.Invalidate(ctx, campaignID)
	return round, nil
}

// GetCampaign is a pure read.
func (uc *UseCase) GetCampaign(ctx context.Context, campaignID string) (*domain.Campaign, error) {
	return uc.repos.Campaigns.Get(ctx, campaignID)
}

// ListRounds returns all rounds, oldest first.
func (uc *UseCase) ListRounds(ctx context.Context, campaignID string) ([]domain.Round, error) {
	return uc.repos.Rounds.List(ctx, campaignID)
}

// Certificates lists an investor's certificates.
func (uc *UseCase) Certificates(ctx context.Context, campaignID, investorID string, includeBurned bool) ([]domain.Certificate, error) {
	return uc.repos.Certificates.List(ctx, repository.CertificateFilter{
		CampaignID:    campaignID,
		OwnerID:       investorID,
		IncludeBurned: includeBurned,
	})
}

// InvestorLedger folds an investor's active certificates into per-round
// ledger entries.
func (uc *UseCase) InvestorLedger(ctx context.Context, campaignID, investorID string) ([]domain.LedgerEntry, error) {
	certs, err := uc.Certificates(ctx, campaignID, investorID, false)
	if err != nil {
		return nil, err
	}
	return domain.BuildLedger(certs), nil
}

// CampaignSummary serves the cached read-surface view, rebuilding it on miss.
func (uc *UseCase) CampaignSummary(ctx context.Context, campaignID string) (*domain.CampaignSummary, error) {
	if uc.emitter != nil && uc.emitter.Cache != nil {
		if summary, err := uc.emitter.Cache.Get(ctx, campaignID); err == nil && summary != nil {
			return summary, nil
		}
	}

	campaign, err := uc.repos.Campaigns.Get(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	now := uc.clock().UTC()
	summary := &domain.CampaignSummary{
		Campaign:    *campaign,
		Phase:       domain.PhaseInactive,
		RefreshedAt: now,
	}
	if round, err := uc.repos.Rounds.Current(ctx, campaignID); err == nil {
		summary.Round = round
	}
	if state, err := uc.repos.DAO.Get(ctx, campaignID); err == nil {
		summary.Phase = state.EffectivePhase(now)
	}
	if outstanding, err := uc.repos.Certificates.CountActive(ctx, campaignID); err == nil {
		summary.Outstanding = outstanding
	}

	if uc.emitter != nil && uc.emitter.Cache != nil {
		if err := uc.emitter.Cache.Set(ctx, summary); err != nil {
			uc.logger.Warn("summary cache write failed", zap.String("campaign_id", campaignID), zap.Error(err))
		}
	}
	return summary, nil
}
