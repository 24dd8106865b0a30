package governance

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crowdvault/backend/domain"
	"github.com/crowdvault/backend/repository/memory"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	uc    *UseCase
	store *memory.Store
	clock *time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	uc := New(store.Set(), store, nil, nil, nil)

	now := testNow
	uc.clock = func() time.Time { return now }
	seq := 0
	uc.newID = func() string {
		seq++
		return fmt.Sprintf("prop-%03d", seq)
	}
	return &fixture{uc: uc, store: store, clock: &now}
}

// seedHolders creates a campaign and the given number of certificates per
// holder, all from a finalized first round.
func (f *fixture) seedHolders(t *testing.T, holders map[string]int64) string {
	t.Helper()
	ctx := context.Background()

	campaign, err := domain.NewCampaign("camp-1", domain.CreateCampaignInput{
		CreatorID:         "founder",
		TreasuryID:        "treasury",
		CommissionPercent: 5,
	}, testNow)
	require.NoError(t, err)
	require.NoError(t, f.store.Set().Campaigns.Create(ctx, campaign))
	require.NoError(t, f.store.Set().DAO.Create(ctx, domain.NewDAOState(campaign.ID, testNow)))

	index := int64(0)
	certs := make([]domain.Certificate, 0)
	for owner, n := range holders {
		for i := int64(0); i < n; i++ {
			index++
			certs = append(certs, domain.IssueCertificate(campaign.ID, owner, 1, index, 100, 5, testNow))
		}
	}
	require.NoError(t, f.store.Set().Certificates.CreateBatch(ctx, certs))
	return campaign.ID
}

func proposalInput(deadline time.Time) CreateProposalInput {
	return CreateProposalInput{
		Kind:            "treasury_spend",
		Description:     "fund the prototype run",
		QuorumPercent:   20,
		MajorityPercent: 60,
		Deadline:        deadline,
	}
}

func TestCreateProposal(t *testing.T) {
	f := newFixture(t)
	campaignID := f.seedHolders(t, map[string]int64{"alice": 3})
	ctx := context.Background()

	proposal, err := f.uc.CreateProposal(ctx, campaignID, "founder", proposalInput(testNow.Add(48*time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, "prop-001", proposal.ID)
	assert.Equal(t, campaignID, proposal.CampaignID)

	list, err := f.uc.ListProposals(ctx, campaignID)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestCreateProposalGuards(t *testing.T) {
	f := newFixture(t)
	campaignID := f.seedHolders(t, map[string]int64{"alice": 3})
	ctx := context.Background()

	_, err := f.uc.CreateProposal(ctx, campaignID, "alice", proposalInput(testNow.Add(time.Hour)))
	assert.ErrorIs(t, err, domain.ErrNotFounder)

	// no shares outstanding, nothing to vote with
	empty := f.seedHolders2(t, "camp-2")
	_, err = f.uc.CreateProposal(ctx, empty, "founder", proposalInput(testNow.Add(time.Hour)))
	assert.ErrorIs(t, err, domain.ErrNoElectorate)
}

// seedHolders2 creates a campaign with zero certificates.
func (f *fixture) seedHolders2(t *testing.T, id string) string {
	t.Helper()
	ctx := context.Background()
	campaign, err := domain.NewCampaign(id, domain.CreateCampaignInput{
		CreatorID:         "founder",
		TreasuryID:        "treasury",
		CommissionPercent: 5,
	}, testNow)
	require.NoError(t, err)
	require.NoError(t, f.store.Set().Campaigns.Create(ctx, campaign))
	return campaign.ID
}

func TestCastVoteWeightsAndDuplicates(t *testing.T) {
	f := newFixture(t)
	campaignID := f.seedHolders(t, map[string]int64{"alice": 7, "bob": 3})
	ctx := context.Background()

	proposal, err := f.uc.CreateProposal(ctx, campaignID, "founder", proposalInput(testNow.Add(48*time.Hour)))
	require.NoError(t, err)

	vote, err := f.uc.CastVote(ctx, "alice", proposal.ID, domain.VoteFor, "ship it")
	require.NoError(t, err)
	assert.Equal(t, int64(7), vote.Weight)

	_, err = f.uc.CastVote(ctx, "alice", proposal.ID, domain.VoteAgainst, "")
	assert.ErrorIs(t, err, domain.ErrAlreadyVoted)

	_, err = f.uc.CastVote(ctx, "bob", proposal.ID, domain.VoteAgainst, "")
	require.NoError(t, err)

	// holders without outstanding shares have no ballot at all
	_, err = f.uc.CastVote(ctx, "carol", proposal.ID, domain.VoteAbstain, "")
	assert.ErrorIs(t, err, domain.ErrNoVotingPower)

	results, err := f.uc.Results(ctx, proposal.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), results.ForVotes)
	assert.Equal(t, int64(3), results.AgainstVotes)
	assert.Equal(t, int64(100), results.ParticipationRate)
	assert.Equal(t, int64(70), results.SupportRate)
	assert.True(t, results.Passed)

	votes, err := f.uc.ListVotes(ctx, proposal.ID)
	require.NoError(t, err)
	assert.Len(t, votes, 2)
}

func TestVotingPowerIsMeasuredAtCastTime(t *testing.T) {
	f := newFixture(t)
	campaignID := f.seedHolders(t, map[string]int64{"alice": 5})
	ctx := context.Background()

	proposal, err := f.uc.CreateProposal(ctx, campaignID, "founder", proposalInput(testNow.Add(48*time.Hour)))
	require.NoError(t, err)

	// burn two certificates before the ballot is cast
	for _, id := range []int64{domain.CertificateID(1, 1), domain.CertificateID(1, 2)} {
		cert, err := f.store.Set().Certificates.Get(ctx, campaignID, id)
		require.NoError(t, err)
		require.NoError(t, cert.Burn(domain.BurnReasonRefund, testNow))
		require.NoError(t, f.store.Set().Certificates.Update(ctx, cert))
	}

	vote, err := f.uc.CastVote(ctx, "alice", proposal.ID, domain.VoteFor, "")
	require.NoError(t, err)
	assert.Equal(t, int64(3), vote.Weight)
}

func TestCastVoteAfterDeadline(t *testing.T) {
	f := newFixture(t)
	campaignID := f.seedHolders(t, map[string]int64{"alice": 5})
	ctx := context.Background()

	proposal, err := f.uc.CreateProposal(ctx, campaignID, "founder", proposalInput(testNow.Add(time.Hour)))
	require.NoError(t, err)

	*f.clock = testNow.Add(2 * time.Hour)
	_, err = f.uc.CastVote(ctx, "alice", proposal.ID, domain.VoteFor, "")
	assert.ErrorIs(t, err, domain.ErrProposalClosed)
}

func TestExecuteProposal(t *testing.T) {
	f := newFixture(t)
	campaignID := f.seedHolders(t, map[string]int64{"alice": 7, "bob": 3})
	ctx := context.Background()

	deadline := testNow.Add(24 * time.Hour)
	proposal, err := f.uc.CreateProposal(ctx, campaignID, "founder", proposalInput(deadline))
	require.NoError(t, err)

	_, err = f.uc.CastVote(ctx, "alice", proposal.ID, domain.VoteFor, "")
	require.NoError(t, err)

	// not before the deadline
	_, err = f.uc.ExecuteProposal(ctx, "founder", proposal.ID)
	assert.ErrorIs(t, err, domain.ErrTooEarly)

	*f.clock = deadline.Add(time.Minute)

	_, err = f.uc.ExecuteProposal(ctx, "bob", proposal.ID)
	assert.ErrorIs(t, err, domain.ErrNotFounder)

	executed, err := f.uc.ExecuteProposal(ctx, "founder", proposal.ID)
	require.NoError(t, err)
	assert.True(t, executed.Executed)

	// exactly once
	_, err = f.uc.ExecuteProposal(ctx, "founder", proposal.ID)
	assert.ErrorIs(t, err, domain.ErrProposalClosed)
}

func TestExecuteFailedProposal(t *testing.T) {
	f := newFixture(t)
	campaignID := f.seedHolders(t, map[string]int64{"alice": 7, "bob": 3})
	ctx := context.Background()

	deadline := testNow.Add(24 * time.Hour)
	proposal, err := f.uc.CreateProposal(ctx, campaignID, "founder", proposalInput(deadline))
	require.NoError(t, err)

	_, err = f.uc.CastVote(ctx, "bob", proposal.ID, domain.VoteAgainst, "")
	require.NoError(t, err)

	*f.clock = deadline.Add(time.Minute)
	_, err = f.uc.ExecuteProposal(ctx, "founder", proposal.ID)
	assert.ErrorIs(t, err, domain.ErrNotPassed)
}
