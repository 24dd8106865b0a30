package repository

import (
	"context"

	"github.com/crowdvault/backend/domain"
)

type ProposalRepository interface {
	Get(ctx context.Context, id string) (*domain.Proposal, error)
	ListByCampaign(ctx context.Context, campaignID string) ([]domain.Proposal, error)
	Create(ctx context.Context, proposal *domain.Proposal) error
	Update(ctx context.Context, proposal *domain.Proposal) error
	// GetVote returns domain.ErrProposalNotFound when the voter has not voted.
	GetVote(ctx context.Context, proposalID, voterID string) (*domain.Vote, error)
	CreateVote(ctx context.Context, vote *domain.Vote) error
	ListVotes(ctx context.Context, proposalID string) ([]domain.Vote, error)
}
