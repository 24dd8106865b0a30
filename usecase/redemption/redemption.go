// Package redemption owns every path that destroys certificates and pays
// holders back: single-certificate refunds and the campaign-wide emergency
// withdrawal.
package redemption

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

// Eligibility is the outcome of a refund eligibility check. Amount is the net
// payout the holder would receive; commission is never returned.
type Eligibility struct {
	CertificateID int64               `json:"certificate_id"`
	Eligible      bool                `json:"eligible"`
	Reason        domain.RefundReason `json:"reason"`
	Amount        int64               `json:"amount"`
}

// RefundReceipt reports a completed redemption.
type RefundReceipt struct {
	CampaignID     string              `json:"campaign_id"`
	OwnerID        string              `json:"owner_id"`
	CertificateIDs []int64             `json:"certificate_ids"`
	Reason         domain.RefundReason `json:"reason"`
	Amount         int64               `json:"amount"`
}

// CanRefund answers the eligibility question without mutating anything. The
// same decision table backs the actual Refund, so a positive answer only goes
// stale if state changes in between.
func (uc *UseCase) CanRefund(ctx context.Context, campaignID string, certificateID int64) (*Eligibility, error) {
	cert, err := uc.repos.Certificates.Get(ctx, campaignID, certificateID)
	if err != nil {
		return nil, err
	}
	current, err := uc.currentRound(ctx, uc.repos, campaignID)
	if err != nil {
		return nil, err
	}
	phase, err := uc.effectivePhase(ctx, uc.repos, campaignID)
	if err != nil {
		return nil, err
	}

	eligible, reason := domain.EvaluateRefund(cert, current, phase)
	result := &Eligibility{
		CertificateID: certificateID,
		Eligible:      eligible,
		Reason:        reason,
	}
	if eligible {
		result.Amount = cert.RefundValue()
	}
	return result, nil
}

// Refund redeems one certificate. An active-round withdrawal also reverses the
// round's counters; an exchange-window refund leaves the finalized round's
// audited totals untouched.
func (uc *UseCase) Refund(ctx context.Context, campaignID, callerID string, certificateID int64) (*RefundReceipt, error) {
	var receipt *RefundReceipt
	err := uc.gate.Do(func() error {
		return uc.uow.Within(ctx, func(tx repository.Set) error {
			cert, err := tx.Certificates.Get(ctx, campaignID, certificateID)
			if err != nil {
				return err
			}
			if cert.OwnerID != callerID {
				return domain.ErrNotOwner
			}
			current, err := uc.currentRound(ctx, tx, campaignID)
			if err != nil {
				return err
			}
			phase, err := uc.effectivePhase(ctx, tx, campaignID)
			if err != nil {
				return err
			}

			eligible, reason := domain.EvaluateRefund(cert, current, phase)
			if !eligible {
				if reason == domain.ReasonAlreadyRedeemed {
					return domain.ErrAlreadyRedeemed
				}
				return domain.ErrRefundNotOpen
			}

			now := uc.clock().UTC()
			amount := cert.RefundValue()
			if err := cert.Burn(domain.BurnReasonRefund, now); err != nil {
				return err
			}
			if err := tx.Certificates.Update(ctx, cert); err != nil {
				return err
			}

			if reason == domain.ReasonActiveRoundWithdrawal {
				current.RecordRefund(cert.GrossPrice, amount)
				if err := tx.Rounds.Update(ctx, current); err != nil {
					return err
				}
			}

			receipt = &RefundReceipt{
				CampaignID:     campaignID,
				OwnerID:        callerID,
				CertificateIDs: []int64{certificateID},
				Reason:         reason,
				Amount:         amount,
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	uc.emitter.Record(ctx, campaignID, callerID, "refund", "certificate", receipt)
	uc.emitter.Publish(ctx, domain.EventCertificateBurnt, campaignID, receipt)
	uc.emitter.Invalidate(ctx, campaignID)
	return receipt, nil
}

// EmergencyWithdraw redeems every outstanding certificate the caller holds,
// across all rounds. Only available once the campaign is in EMERGENCY.
func (uc *UseCase) EmergencyWithdraw(ctx context.Context, campaignID, callerID string) (*RefundReceipt, error) {
	var receipt *RefundReceipt
	err := uc.gate.Do(func() error {
		return uc.uow.Within(ctx, func(tx repository.Set) error {
			state, err := tx.DAO.Get(ctx, campaignID)
			if err != nil {
				return err
			}
			if state.Phase != domain.PhaseEmergency {
				return domain.ErrWrongPhase
			}

			certs, err := tx.Certificates.List(ctx, repository.CertificateFilter{
				CampaignID: campaignID,
				OwnerID:    callerID,
			})
			if err != nil {
				return err
			}
			if len(certs) == 0 {
				return domain.ErrRefundNotOpen
			}

			now := uc.clock().UTC()
			receipt = &RefundReceipt{
				CampaignID: campaignID,
				OwnerID:    callerID,
				Reason:     domain.ReasonEmergency,
			}
			for i := range certs {
				cert := &certs[i]
				if err := cert.Burn(domain.BurnReasonEmergency, now); err != nil {
					return err
				}
				if err := tx.Certificates.Update(ctx, cert); err != nil {
					return err
				}
				receipt.Amount += cert.RefundValue()
				receipt.CertificateIDs = append(receipt.CertificateIDs, cert.ID)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	uc.emitter.Record(ctx, campaignID, callerID, "emergency_withdraw", "certificate", receipt)
	uc.emitter.Publish(ctx, domain.EventCertificateBurnt, campaignID, receipt)
	uc.emitter.Invalidate(ctx, campaignID)
	return receipt, nil
}

// currentRound returns the latest round or nil when the campaign has none.
func (uc *UseCase) currentRound(ctx context.Context, repos repository.Set, campaignID string) (*domain.Round, error) {
	round, err := repos.Rounds.Current(ctx, campaignID)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return round, nil
}

func (uc *UseCase) effectivePhase(ctx context.Context, repos repository.Set, campaignID string) (domain.DAOPhase, error) {
	state, err := repos.DAO.Get(ctx, campaignID)
	if err != nil {
		return "", err
	}
	return state.EffectivePhase(uc.clock().UTC()), nil
}
