package domain

import (
	"strings"
	"time"
)

// VoteChoice is a ballot option.
type VoteChoice string

const (
	VoteFor     VoteChoice = "for"
	VoteAgainst VoteChoice = "against"
	VoteAbstain VoteChoice = "abstain"
)

// Proposal is a founder-created governance question. Tallies are weighted by
// the voter's outstanding certificate count at cast time, recomputed per vote
// rather than snapshotted at creation.
type Proposal struct {
	ID              string    `json:"id"`
	CampaignID      string    `json:"campaign_id"`
	Kind            string    `json:"kind"`
	Description     string    `json:"description"`
	Payload         string    `json:"payload,omitempty"`
	QuorumPercent   int64     `json:"quorum_percent"`
	MajorityPercent int64     `json:"majority_percent"`
	ForVotes        int64     `json:"for_votes"`
	AgainstVotes    int64     `json:"against_votes"`
	AbstainVotes    int64     `json:"abstain_votes"`
	Deadline        time.Time `json:"deadline"`
	Executed        bool      `json:"executed"`
	CreatedAt       time.Time `json:"created_at"`
}

// Vote records one holder's ballot, weighted at cast time.
type Vote struct {
	ProposalID string     `json:"proposal_id"`
	VoterID    string     `json:"voter_id"`
	Choice     VoteChoice `json:"choice"`
	Weight     int64      `json:"weight"`
	Comment    string     `json:"comment,omitempty"`
	CastAt     time.Time  `json:"cast_at"`
}

// NewProposal validates thresholds and builds a proposal.
func NewProposal(id, campaignID, kind, description, payload string, quorum, majority int64, deadline, now time.Time) (*Proposal, error) {
	if id == "" || campaignID == "" || strings.TrimSpace(description) == "" {
		return nil, ErrInvalidPayload
	}
	if quorum <= 0 || quorum > 100 || majority <= 0 || majority > 100 {
		return nil, ErrInvalidThresholds
	}
	if !deadline.After(now) {
		return nil, ErrInThePast
	}
	return &Proposal{
		ID:              id,
		CampaignID:      campaignID,
		Kind:            kind,
		Description:     strings.TrimSpace(description),
		Payload:         payload,
		QuorumPercent:   quorum,
		MajorityPercent: majority,
		Deadline:        deadline,
		CreatedAt:       now,
	}, nil
}

// Closed reports whether the proposal no longer accepts votes.
func (p *Proposal) Closed(now time.Time) bool {
	return p.Executed || !now.Before(p.Deadline)
}

// ApplyVote adds a weighted ballot to the tallies.
func (p *Proposal) ApplyVote(choice VoteChoice, weight int64, now time.Time) error {
	if p.Closed(now) {
		return ErrProposalClosed
	}
	if weight <= 0 {
		return ErrNoVotingPower
	}
	switch choice {
	case VoteFor:
		p.ForVotes += weight
	case VoteAgainst:
		p.AgainstVotes += weight
	case VoteAbstain:
		p.AbstainVotes += weight
	default:
		return ErrInvalidPayload
	}
	return nil
}

// ProposalResults is the live (or final, once closed) outcome of a proposal.
type ProposalResults struct {
	ForVotes          int64 `json:"for_votes"`
	AgainstVotes      int64 `json:"against_votes"`
	AbstainVotes      int64 `json:"abstain_votes"`
	ParticipationRate int64 `json:"participation_rate"`
	SupportRate       int64 `json:"support_rate"`
	QuorumMet         bool  `json:"quorum_met"`
	MajorityMet       bool  `json:"majority_met"`
	Passed            bool  `json:"passed"`
	Closed            bool  `json:"closed"`
}

// Results computes participation against the campaign's current outstanding
// share count. Abstentions count toward quorum but are excluded from the
// support denominator.
func (p *Proposal) Results(totalOutstanding int64, now time.Time) ProposalResults {
	res := ProposalResults{
		ForVotes:     p.ForVotes,
		AgainstVotes: p.AgainstVotes,
		AbstainVotes: p.AbstainVotes,
		Closed:       p.Closed(now),
	}
	if totalOutstanding > 0 {
		res.ParticipationRate = (p.ForVotes + p.AgainstVotes + p.AbstainVotes) * 100 / totalOutstanding
	}
	if decisive := p.ForVotes + p.AgainstVotes; decisive > 0 {
		res.SupportRate = p.ForVotes * 100 / decisive
	}
	res.QuorumMet = res.ParticipationRate >= p.QuorumPercent
	res.MajorityMet = res.SupportRate >= p.MajorityPercent
	res.Passed = res.QuorumMet && res.MajorityMet
	return res
}

// MarkExecuted records execution exactly once, after the deadline, and only
// for a passing proposal.
func (p *Proposal) MarkExecuted(totalOutstanding int64, now time.Time) error {
	if p.Executed {
		return ErrProposalClosed
	}
	if now.Before(p.Deadline) {
		return ErrTooEarly
	}
	if !p.Results(totalOutstanding, now).Passed {
		return ErrNotPassed
	}
	p.Executed = true
	return nil
}
