package funding

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crowdvault/backend/domain"
	"github.com/crowdvault/backend/repository"
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
		return fmt.Sprintf("id-%d", seq)
	}
	return &fixture{uc: uc, store: store, clock: &now}
}

func (f *fixture) createCampaign(t *testing.T, commission int64) *domain.Campaign {
	t.Helper()
	campaign, err := f.uc.CreateCampaign(context.Background(), domain.CreateCampaignInput{
		CreatorID:         "founder",
		TreasuryID:        "treasury",
		CommissionPercent: commission,
	})
	require.NoError(t, err)
	return campaign
}

func TestCreateCampaignAttachesLifecycle(t *testing.T) {
	f := newFixture(t)
	campaign := f.createCampaign(t, 15)

	state, err := f.store.Set().DAO.Get(context.Background(), campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseInactive, state.Phase)
	assert.Equal(t, int64(15), campaign.CommissionPercent)
	assert.Equal(t, 0, campaign.CurrentRound)
}

func TestUpdateCommissionRate(t *testing.T) {
	f := newFixture(t)
	campaign := f.createCampaign(t, 15)
	ctx := context.Background()

	assert.ErrorIs(t, f.uc.UpdateCommissionRate(ctx, campaign.ID, "stranger", 10), domain.ErrNotFounder)
	assert.ErrorIs(t, f.uc.UpdateCommissionRate(ctx, campaign.ID, "founder", 101), domain.ErrInvalidParameters)

	require.NoError(t, f.uc.UpdateCommissionRate(ctx, campaign.ID, "founder", 10))
	got, err := f.uc.GetCampaign(ctx, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.CommissionPercent)
}

func TestStartRoundSequencing(t *testing.T) {
	f := newFixture(t)
	campaign := f.createCampaign(t, 15)
	ctx := context.Background()

	_, err := f.uc.StartRound(ctx, campaign.ID, "stranger", 1000, 100, time.Hour)
	assert.ErrorIs(t, err, domain.ErrNotFounder)

	round, err := f.uc.StartRound(ctx, campaign.ID, "founder", 1000, 100, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, round.Number)

	// second round cannot open while the first is unfinalized
	_, err = f.uc.StartRound(ctx, campaign.ID, "founder", 2000, 150, time.Hour)
	assert.ErrorIs(t, err, domain.ErrRoundStillActive)

	_, err = f.uc.Purchase(ctx, campaign.ID, "alice", 10, 1000)
	require.NoError(t, err)
	_, err = f.uc.FinalizeRound(ctx, campaign.ID, 7*24*time.Hour)
	require.NoError(t, err)

	next, err := f.uc.StartRound(ctx, campaign.ID, "founder", 2000, 150, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 2, next.Number)

	got, err := f.uc.GetCampaign(ctx, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.CurrentRound)
}

func TestPurchaseIssuesCertificatesWithSnapshot(t *testing.T) {
	f := newFixture(t)
	campaign := f.createCampaign(t, 15)
	ctx := context.Background()

	_, err := f.uc.StartRound(ctx, campaign.ID, "founder", 1000, 100, time.Hour)
	require.NoError(t, err)

	receipt, err := f.uc.Purchase(ctx, campaign.ID, "alice", 3, 300)
	require.NoError(t, err)
	assert.Equal(t, int64(300), receipt.GrossPaid)
	assert.Equal(t, int64(255), receipt.NetRetained)
	assert.Equal(t, int64(45), receipt.Commission)
	assert.Equal(t, []int64{1_000_001, 1_000_002, 1_000_003}, receipt.CertificateIDs)

	// live rate change leaves issued snapshots untouched
	require.NoError(t, f.uc.UpdateCommissionRate(ctx, campaign.ID, "founder", 50))
	cert, err := f.store.Set().Certificates.Get(ctx, campaign.ID, 1_000_001)
	require.NoError(t, err)
	assert.Equal(t, int64(15), cert.CommissionSnapshot)
	assert.Equal(t, int64(100), cert.GrossPrice)
	assert.Equal(t, "alice", cert.OwnerID)

	// later purchases capture the new rate
	receipt2, err := f.uc.Purchase(ctx, campaign.ID, "bob", 1, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(50), receipt2.NetRetained)
	assert.Equal(t, []int64{1_000_004}, receipt2.CertificateIDs)
}

func TestPurchasePreconditions(t *testing.T) {
	f := newFixture(t)
	campaign := f.createCampaign(t, 15)
	ctx := context.Background()

	_, err := f.uc.Purchase(ctx, campaign.ID, "alice", 1, 100)
	assert.ErrorIs(t, err, domain.ErrRoundNotActive)

	_, err = f.uc.StartRound(ctx, campaign.ID, "founder", 1000, 100, time.Hour)
	require.NoError(t, err)

	_, err = f.uc.Purchase(ctx, campaign.ID, "alice", 2, 100)
	assert.ErrorIs(t, err, domain.ErrInsufficientPayment)

	_, err = f.uc.Purchase(ctx, campaign.ID, "", 1, 100)
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)

	*f.clock = testNow.Add(2 * time.Hour)
	_, err = f.uc.Purchase(ctx, campaign.ID, "alice", 1, 100)
	assert.ErrorIs(t, err, domain.ErrRoundExpired)
}

func TestFinalizeRoundEscrowsAndActivates(t *testing.T) {
	f := newFixture(t)
	campaign := f.createCampaign(t, 15)
	ctx := context.Background()

	_, err := f.uc.StartRound(ctx, campaign.ID, "founder", 1000, 100, time.Hour)
	require.NoError(t, err)

	_, err = f.uc.FinalizeRound(ctx, campaign.ID, 7*24*time.Hour)
	assert.ErrorIs(t, err, domain.ErrNotEligible)

	_, err = f.uc.Purchase(ctx, campaign.ID, "alice", 10, 1000)
	require.NoError(t, err)

	round, err := f.uc.FinalizeRound(ctx, campaign.ID, 7*24*time.Hour)
	require.NoError(t, err)
	assert.True(t, round.Finalized)

	escrow, err := f.store.Set().Escrows.Get(ctx, campaign.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(850), escrow.Amount)
	assert.Equal(t, testNow.Add(7*24*time.Hour), escrow.ReleaseAt)
	assert.False(t, escrow.Released)

	state, err := f.store.Set().DAO.Get(ctx, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseWaitingForLive, state.Phase)

	// a second finalization leaves the advanced phase alone
	_, err = f.uc.StartRound(ctx, campaign.ID, "founder", 500, 100, time.Hour)
	require.NoError(t, err)
	_, err = f.uc.Purchase(ctx, campaign.ID, "bob", 5, 500)
	require.NoError(t, err)
	_, err = f.uc.FinalizeRound(ctx, campaign.ID, 7*24*time.Hour)
	require.NoError(t, err)

	state, err = f.store.Set().DAO.Get(ctx, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseWaitingForLive, state.Phase)
}

func TestFailedOperationLeavesNoTrace(t *testing.T) {
	f := newFixture(t)
	campaign := f.createCampaign(t, 15)
	ctx := context.Background()

	_, err := f.uc.StartRound(ctx, campaign.ID, "founder", 1000, 100, time.Hour)
	require.NoError(t, err)
	_, err = f.uc.Purchase(ctx, campaign.ID, "alice", 2, 200)
	require.NoError(t, err)

	boom := errors.New("boom")
	err = f.store.Within(ctx, func(tx repository.Set) error {
		round, err := tx.Rounds.Current(ctx, campaign.ID)
		if err != nil {
			return err
		}
		round.FundsRaised += 999
		if err := tx.Rounds.Update(ctx, round); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	round, err := f.store.Set().Rounds.Current(ctx, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(200), round.FundsRaised)
}

func TestInvestorLedger(t *testing.T) {
	f := newFixture(t)
	campaign := f.createCampaign(t, 10)
	ctx := context.Background()

	_, err := f.uc.StartRound(ctx, campaign.ID, "founder", 300, 100, time.Hour)
	require.NoError(t, err)
	_, err = f.uc.Purchase(ctx, campaign.ID, "alice", 3, 300)
	require.NoError(t, err)
	_, err = f.uc.FinalizeRound(ctx, campaign.ID, time.Hour)
	require.NoError(t, err)

	_, err = f.uc.StartRound(ctx, campaign.ID, "founder", 1000, 200, time.Hour)
	require.NoError(t, err)
	_, err = f.uc.Purchase(ctx, campaign.ID, "alice", 2, 400)
	require.NoError(t, err)

	entries, err := f.uc.InvestorLedger(ctx, campaign.ID, "alice")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(300), entries[0].Amount)
	assert.Equal(t, int64(3), entries[0].Shares)
	assert.Equal(t, int64(400), entries[1].Amount)
	assert.Equal(t, int64(2), entries[1].Shares)
}

func TestCampaignSummaryWithoutCache(t *testing.T) {
	f := newFixture(t)
	campaign := f.createCampaign(t, 10)
	ctx := context.Background()

	_, err := f.uc.StartRound(ctx, campaign.ID, "founder", 300, 100, time.Hour)
	require.NoError(t, err)
	_, err = f.uc.Purchase(ctx, campaign.ID, "alice", 2, 200)
	require.NoError(t, err)

	summary, err := f.uc.CampaignSummary(ctx, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, campaign.ID, summary.Campaign.ID)
	require.NotNil(t, summary.Round)
	assert.Equal(t, 1, summary.Round.Number)
	assert.Equal(t, domain.PhaseInactive, summary.Phase)
	assert.Equal(t, int64(2), summary.Outstanding)
}
