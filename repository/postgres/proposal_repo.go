package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/crowdvault/backend/domain"
	"github.com/crowdvault/backend/repository"
)

type proposalRepository struct {
	db querier
}

// NewProposalRepository returns a Postgres-backed ProposalRepository.
func NewProposalRepository(db querier) repository.ProposalRepository {
	return &proposalRepository{db: db}
}

const proposalColumns = `id, campaign_id, kind, description, payload, quorum_percent,
	majority_percent, for_votes, against_votes, abstain_votes, deadline, executed, created_at`

func (r *proposalRepository) Get(ctx context.Context, id string) (*domain.Proposal, error) {
	query := `SELECT ` + proposalColumns + ` FROM proposals WHERE id = $1`
	return scanProposal(r.db.QueryRow(ctx, query, id))
}

func (r *proposalRepository) ListByCampaign(ctx context.Context, campaignID string) ([]domain.Proposal, error) {
	query := `SELECT ` + proposalColumns + ` FROM proposals WHERE campaign_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var proposals []domain.Proposal
	for rows.Next() {
		proposal, err := scanProposal(rows)
		if err != nil {
			return nil, err
		}
		proposals = append(proposals, *proposal)
	}
	return proposals, rows.Err()
}

func (r *proposalRepository) Create(ctx context.Context, proposal *domain.Proposal) error {
	if proposal == nil {
		return domain.ErrInvalidPayload
	}
	const query = `
	INSERT INTO proposals (id, campaign_id, kind, description, payload, quorum_percent,
	                       majority_percent, for_votes, against_votes, abstain_votes, deadline, executed, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.db.Exec(ctx, query,
		proposal.ID,
		proposal.CampaignID,
		proposal.Kind,
		proposal.Description,
		proposal.Payload,
		proposal.QuorumPercent,
		proposal.MajorityPercent,
		proposal.ForVotes,
		proposal.AgainstVotes,
		proposal.AbstainVotes,
		proposal.Deadline,
		proposal.Executed,
		proposal.CreatedAt,
	)
	return err
}

func (r *proposalRepository) Update(ctx context.Context, proposal *domain.Proposal) error {
	if proposal == nil {
		return domain.ErrInvalidPayload
	}
	const query = `
	UPDATE proposals
	SET for_votes = $2,
	    against_votes = $3,
	    abstain_votes = $4,
	    executed = $5
	WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query,
		proposal.ID,
		proposal.ForVotes,
		proposal.AgainstVotes,
		proposal.AbstainVotes,
		proposal.Executed,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProposalNotFound
	}
	return nil
}

func (r *proposalRepository) GetVote(ctx context.Context, proposalID, voterID string) (*domain.Vote, error) {
	const query = `
	SELECT proposal_id, voter_id, choice, weight, comment, cast_at
	FROM votes
	WHERE proposal_id = $1 AND voter_id = $2
	`
	var vote domain.Vote
	if err := r.db.QueryRow(ctx, query, proposalID, voterID).Scan(
		&vote.ProposalID,
		&vote.VoterID,
		&vote.Choice,
		&vote.Weight,
		&vote.Comment,
		&vote.CastAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProposalNotFound
		}
		return nil, err
	}
	return &vote, nil
}

func (r *proposalRepository) CreateVote(ctx context.Context, vote *domain.Vote) error {
	if vote == nil {
		return domain.ErrInvalidPayload
	}
	const query = `
	INSERT INTO votes (proposal_id, voter_id, choice, weight, comment, cast_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query,
		vote.ProposalID,
		vote.VoterID,
		vote.Choice,
		vote.Weight,
		vote.Comment,
		vote.CastAt,
	)
	return err
}

func (r *proposalRepository) ListVotes(ctx context.Context, proposalID string) ([]domain.Vote, error) {
	const query = `
	SELECT proposal_id, voter_id, choice, weight, comment, cast_at
	FROM votes
	WHERE proposal_id = $1
	ORDER BY cast_at
	`
	rows, err := r.db.Query(ctx, query, proposalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var votes []domain.Vote
	for rows.Next() {
		var vote domain.Vote
		if err := rows.Scan(
			&vote.ProposalID,
			&vote.VoterID,
			&vote.Choice,
			&vote.Weight,
			&vote.Comment,
			&vote.CastAt,
		); err != nil {
			return nil, err
		}
		votes = append(votes, vote)
	}
	return votes, rows.Err()
}

func scanProposal(row rowScanner) (*domain.Proposal, error) {
	var proposal domain.Proposal
	if err := row.Scan(
		&proposal.ID,
		&proposal.CampaignID,
		&proposal.Kind,
		&proposal.Description,
		&proposal.Payload,
		&proposal.QuorumPercent,
		&proposal.MajorityPercent,
		&proposal.ForVotes,
		&proposal.AgainstVotes,
		&proposal.AbstainVotes,
		&proposal.Deadline,
		&proposal.Executed,
		&proposal.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProposalNotFound
		}
		return nil, err
	}
	return &proposal, nil
}
