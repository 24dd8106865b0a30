package redemption

import (
	"context"
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
	return &fixture{uc: uc, store: store, clock: &now}
}

// seedCampaign builds a campaign with one active round and `shares`
// certificates held by owner, all at the given commission rate.
func (f *fixture) seedCampaign(t *testing.T, owner string, shares int64, rate int64) string {
	t.Helper()
	ctx := context.Background()

	campaign, err := domain.NewCampaign("camp-1", domain.CreateCampaignInput{
		CreatorID:         "founder",
		TreasuryID:        "treasury",
		CommissionPercent: rate,
	}, testNow)
	require.NoError(t, err)
	require.NoError(t, f.store.Set().Campaigns.Create(ctx, campaign))
	require.NoError(t, f.store.Set().DAO.Create(ctx, domain.NewDAOState(campaign.ID, testNow)))

	round, err := domain.NewRound(campaign.ID, 1, 100_000, 100, time.Hour, testNow)
	require.NoError(t, err)
	net := domain.NetAmount(100, rate)
	require.NoError(t, round.RecordPurchase(shares, shares*100, net*shares, testNow))
	require.NoError(t, f.store.Set().Rounds.Create(ctx, round))

	certs := make([]domain.Certificate, 0, shares)
	for i := int64(1); i <= shares; i++ {
		certs = append(certs, domain.IssueCertificate(campaign.ID, owner, 1, i, 100, rate, testNow))
	}
	require.NoError(t, f.store.Set().Certificates.CreateBatch(ctx, certs))
	return campaign.ID
}

func (f *fixture) finalizeRound(t *testing.T, campaignID string, number int) {
	t.Helper()
	ctx := context.Background()
	round, err := f.store.Set().Rounds.Get(ctx, campaignID, number)
	require.NoError(t, err)
	round.Active = false
	round.Finalized = true
	at := *f.clock
	round.FinalizedAt = &at
	require.NoError(t, f.store.Set().Rounds.Update(ctx, round))
}

func (f *fixture) setPhase(t *testing.T, campaignID string, mutate func(*domain.DAOState)) {
	t.Helper()
	ctx := context.Background()
	state, err := f.store.Set().DAO.Get(ctx, campaignID)
	require.NoError(t, err)
	mutate(state)
	require.NoError(t, f.store.Set().DAO.Update(ctx, state))
}

func TestActiveRoundWithdrawal(t *testing.T) {
	f := newFixture(t)
	campaignID := f.seedCampaign(t, "alice", 1, 15)
	ctx := context.Background()
	certID := domain.CertificateID(1, 1)

	eligibility, err := f.uc.CanRefund(ctx, campaignID, certID)
	require.NoError(t, err)
	assert.True(t, eligibility.Eligible)
	assert.Equal(t, domain.ReasonActiveRoundWithdrawal, eligibility.Reason)
	assert.Equal(t, int64(85), eligibility.Amount)

	receipt, err := f.uc.Refund(ctx, campaignID, "alice", certID)
	require.NoError(t, err)
	assert.Equal(t, int64(85), receipt.Amount)

	// round counters reversed while the round is live
	round, err := f.store.Set().Rounds.Current(ctx, campaignID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), round.SharesSold)
	assert.Equal(t, int64(0), round.FundsRaised)
	assert.Equal(t, int64(1), round.IssuedCount)

	// burned exactly once
	_, err = f.uc.Refund(ctx, campaignID, "alice", certID)
	assert.ErrorIs(t, err, domain.ErrAlreadyRedeemed)

	eligibility, err = f.uc.CanRefund(ctx, campaignID, certID)
	require.NoError(t, err)
	assert.False(t, eligibility.Eligible)
	assert.Equal(t, domain.ReasonAlreadyRedeemed, eligibility.Reason)
}

func TestRefundRequiresOwnership(t *testing.T) {
	f := newFixture(t)
	campaignID := f.seedCampaign(t, "alice", 1, 15)

	_, err := f.uc.Refund(context.Background(), campaignID, "mallory", domain.CertificateID(1, 1))
	assert.ErrorIs(t, err, domain.ErrNotOwner)
}

func TestFinalizedRoundLockedUntilExchangeWindow(t *testing.T) {
	f := newFixture(t)
	campaignID := f.seedCampaign(t, "alice", 1, 15)
	ctx := context.Background()
	certID := domain.CertificateID(1, 1)

	f.finalizeRound(t, campaignID, 1)
	f.setPhase(t, campaignID, func(s *domain.DAOState) {
		require.NoError(t, s.Activate(testNow))
	})

	// round 2 active, round 1 certificate stays locked
	round2, err := domain.NewRound(campaignID, 2, 1000, 200, time.Hour, testNow)
	require.NoError(t, err)
	require.NoError(t, f.store.Set().Rounds.Create(ctx, round2))

	eligibility, err := f.uc.CanRefund(ctx, campaignID, certID)
	require.NoError(t, err)
	assert.False(t, eligibility.Eligible)
	assert.Equal(t, domain.ReasonNotEligible, eligibility.Reason)

	_, err = f.uc.Refund(ctx, campaignID, "alice", certID)
	assert.ErrorIs(t, err, domain.ErrRefundNotOpen)

	// once the exchange window opens, the same certificate unlocks at its
	// own snapshot rate
	f.setPhase(t, campaignID, func(s *domain.DAOState) {
		s.Phase = domain.PhaseExchangePeriod
		s.ExchangeEndsAt = f.clock.Add(30 * 24 * time.Hour)
	})

	eligibility, err = f.uc.CanRefund(ctx, campaignID, certID)
	require.NoError(t, err)
	assert.True(t, eligibility.Eligible)
	assert.Equal(t, domain.ReasonExchangeWindow, eligibility.Reason)

	receipt, err := f.uc.Refund(ctx, campaignID, "alice", certID)
	require.NoError(t, err)
	assert.Equal(t, int64(85), receipt.Amount)

	// finalized round totals stay untouched
	round1, err := f.store.Set().Rounds.Get(ctx, campaignID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), round1.SharesSold)
	assert.Equal(t, int64(100), round1.FundsRaised)
}

func TestExchangeWindowClosesWithWindow(t *testing.T) {
	f := newFixture(t)
	campaignID := f.seedCampaign(t, "alice", 1, 15)
	ctx := context.Background()
	certID := domain.CertificateID(1, 1)

	f.finalizeRound(t, campaignID, 1)
	f.setPhase(t, campaignID, func(s *domain.DAOState) {
		s.Phase = domain.PhaseExchangePeriod
		s.ExchangeEndsAt = testNow.Add(time.Hour)
	})

	// effective phase reads COMPLETED after the window even before the
	// trigger persists it
	*f.clock = testNow.Add(2 * time.Hour)
	eligibility, err := f.uc.CanRefund(ctx, campaignID, certID)
	require.NoError(t, err)
	assert.False(t, eligibility.Eligible)

	_, err = f.uc.Refund(ctx, campaignID, "alice", certID)
	assert.ErrorIs(t, err, domain.ErrRefundNotOpen)
}

func TestEmergencyWithdraw(t *testing.T) {
	f := newFixture(t)
	campaignID := f.seedCampaign(t, "alice", 3, 15)
	ctx := context.Background()

	// outside EMERGENCY the campaign-wide path is closed
	_, err := f.uc.EmergencyWithdraw(ctx, campaignID, "alice")
	assert.ErrorIs(t, err, domain.ErrWrongPhase)

	f.finalizeRound(t, campaignID, 1)
	f.setPhase(t, campaignID, func(s *domain.DAOState) {
		s.Phase = domain.PhaseEmergency
		s.EmergencyAt = testNow
	})

	receipt, err := f.uc.EmergencyWithdraw(ctx, campaignID, "alice")
	require.NoError(t, err)
	assert.Equal(t, domain.ReasonEmergency, receipt.Reason)
	assert.Equal(t, int64(255), receipt.Amount)
	assert.Len(t, receipt.CertificateIDs, 3)

	// exactly once per holder
	_, err = f.uc.EmergencyWithdraw(ctx, campaignID, "alice")
	assert.ErrorIs(t, err, domain.ErrRefundNotOpen)

	outstanding, err := f.store.Set().Certificates.CountActive(ctx, campaignID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), outstanding)
}
