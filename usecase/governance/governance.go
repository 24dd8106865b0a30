// Package governance owns proposals and weighted voting. Voting power is a
// holder's outstanding certificate count at cast time; burning certificates
// after voting does not retract the ballot, but it does shrink the
// participation denominator, so results are only final once the deadline
// passes.
package governance

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

// CreateProposalInput is the founder's proposal submission.
type CreateProposalInput struct {
	Kind            string    `json:"kind"`
	Description     string    `json:"description"`
	Payload         string    `json:"payload"`
	QuorumPercent   int64     `json:"quorum_percent"`
	MajorityPercent int64     `json:"majority_percent"`
	Deadline        time.Time `json:"deadline"`
}

// CreateProposal opens a governance question. Founder only, and only once the
// campaign has shares outstanding to vote with.
func (uc *UseCase) CreateProposal(ctx context.Context, campaignID, callerID string, input CreateProposalInput) (*domain.Proposal, error) {
	var proposal *domain.Proposal
	err := uc.gate.Do(func() error {
		return uc.uow.Within(ctx, func(tx repository.Set) error {
			campaign, err := tx.Campaigns.Get(ctx, campaignID)
			if err != nil {
				return err
			}
			if !campaign.IsFounder(callerID) {
				return domain.ErrNotFounder
			}
			outstanding, err := tx.Certificates.CountActive(ctx, campaignID)
			if err != nil {
				return err
			}
			if outstanding == 0 {
				return domain.ErrNoElectorate
			}

			proposal, err = domain.NewProposal(
				uc.newID(), campaignID,
				input.Kind, input.Description, input.Payload,
				input.QuorumPercent, input.MajorityPercent,
				input.Deadline, uc.clock().UTC(),
			)
			if err != nil {
				return err
			}
			return tx.Proposals.Create(ctx, proposal)
		})
	})
	if err != nil {
		return nil, err
	}

	uc.emitter.Record(ctx, campaignID, callerID, "create_proposal", "proposal", proposal)
	uc.emitter.Publish(ctx, domain.EventProposalCreated, campaignID, proposal)
	return proposal, nil
}

// CastVote records one ballot per holder per proposal, weighted by the
// caller's outstanding certificates at this moment.
func (uc *UseCase) CastVote(ctx context.Context, callerID, proposalID string, choice domain.VoteChoice, comment string) (*domain.Vote, error) {
	var vote *domain.Vote
	var campaignID string
	err := uc.gate.Do(func() error {
		return uc.uow.Within(ctx, func(tx repository.Set) error {
			proposal, err := tx.Proposals.Get(ctx, proposalID)
			if err != nil {
				return err
			}
			campaignID = proposal.CampaignID

			_, err = tx.Proposals.GetVote(ctx, proposalID, callerID)
			switch {
			case err == nil:
				return domain.ErrAlreadyVoted
			case domain.IsDomainError(err, domain.ErrCodeNotFound):
			default:
				return err
			}

			weight, err := tx.Certificates.CountActiveByOwner(ctx, campaignID, callerID)
			if err != nil {
				return err
			}

			now := uc.clock().UTC()
			if err := proposal.ApplyVote(choice, weight, now); err != nil {
				return err
			}
			if err := tx.Proposals.Update(ctx, proposal); err != nil {
				return err
			}

			vote = &domain.Vote{
				ProposalID: proposalID,
				VoterID:    callerID,
				Choice:     choice,
				Weight:     weight,
				Comment:    comment,
				CastAt:     now,
			}
			return tx.Proposals.CreateVote(ctx, vote)
		})
	})
	if err != nil {
		return nil, err
	}

	uc.emitter.Record(ctx, campaignID, callerID, "cast_vote", "vote", vote)
	uc.emitter.Publish(ctx, domain.EventVoteCast, campaignID, vote)
	return vote, nil
}

// ExecuteProposal marks a passed proposal executed, once, after its deadline.
// Founder only.
func (uc *UseCase) ExecuteProposal(ctx context.Context, callerID, proposalID string) (*domain.Proposal, error) {
	var proposal *domain.Proposal
	err := uc.gate.Do(func() error {
		return uc.uow.Within(ctx, func(tx repository.Set) error {
			var err error
			proposal, err = tx.Proposals.Get(ctx, proposalID)
			if err != nil {
				return err
			}
			campaign, err := tx.Campaigns.Get(ctx, proposal.CampaignID)
			if err != nil {
				return err
			}
			if !campaign.IsFounder(callerID) {
				return domain.ErrNotFounder
			}
			outstanding, err := tx.Certificates.CountActive(ctx, proposal.CampaignID)
			if err != nil {
				return err
			}
			if err := proposal.MarkExecuted(outstanding, uc.clock().UTC()); err != nil {
				return err
			}
			return tx.Proposals.Update(ctx, proposal)
		})
	})
	if err != nil {
		return nil, err
	}

	uc.emitter.Record(ctx, proposal.CampaignID, callerID, "execute_proposal", "proposal", proposal)
	return proposal, nil
}

// GetProposal returns one proposal.
func (uc *UseCase) GetProposal(ctx context.Context, proposalID string) (*domain.Proposal, error) {
	return uc.repos.Proposals.Get(ctx, proposalID)
}

// ListProposals returns a campaign's proposals, newest first.
func (uc *UseCase) ListProposals(ctx context.Context, campaignID string) ([]domain.Proposal, error) {
	return uc.repos.Proposals.ListByCampaign(ctx, campaignID)
}

// Results computes the live outcome against the campaign's current
// outstanding share count.
func (uc *UseCase) Results(ctx context.Context, proposalID string) (*domain.ProposalResults, error) {
	proposal, err := uc.repos.Proposals.Get(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	outstanding, err := uc.repos.Certificates.CountActive(ctx, proposal.CampaignID)
	if err != nil {
		return nil, err
	}
	results := proposal.Results(outstanding, uc.clock().UTC())
	return &results, nil
}

// ListVotes returns every ballot cast on a proposal.
func (uc *UseCase) ListVotes(ctx context.Context, proposalID string) ([]domain.Vote, error) {
	if _, err := uc.repos.Proposals.Get(ctx, proposalID); err != nil {
		return nil, err
	}
	return uc.repos.Proposals.ListVotes(ctx, proposalID)
}
