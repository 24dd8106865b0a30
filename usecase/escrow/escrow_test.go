package escrow

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

const releaseDelay = 7 * 24 * time.Hour

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

func (f *fixture) seedEscrow(t *testing.T, round int, amount int64) string {
	t.Helper()
	ctx := context.Background()

	campaign, err := domain.NewCampaign("camp-1", domain.CreateCampaignInput{
		CreatorID:         "founder",
		TreasuryID:        "treasury",
		CommissionPercent: 5,
	}, testNow)
	require.NoError(t, err)
	if _, err := f.store.Set().Campaigns.Get(ctx, campaign.ID); err != nil {
		require.NoError(t, f.store.Set().Campaigns.Create(ctx, campaign))
	}
	require.NoError(t, f.store.Set().Escrows.Create(ctx,
		domain.NewEscrow(campaign.ID, round, amount, releaseDelay, testNow)))
	return campaign.ID
}

func TestClaimHonorsTimeLock(t *testing.T) {
	f := newFixture(t)
	campaignID := f.seedEscrow(t, 1, 850)
	ctx := context.Background()

	_, err := f.uc.Claim(ctx, campaignID, "founder", 1)
	assert.ErrorIs(t, err, domain.ErrTooEarly)

	*f.clock = testNow.Add(releaseDelay)
	escrow, err := f.uc.Claim(ctx, campaignID, "founder", 1)
	require.NoError(t, err)
	assert.True(t, escrow.Released)
	assert.Equal(t, int64(850), escrow.Amount)

	// released at most once, record stays behind
	_, err = f.uc.Claim(ctx, campaignID, "founder", 1)
	assert.ErrorIs(t, err, domain.ErrAlreadyReleased)

	list, err := f.uc.List(ctx, campaignID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Released)
}

func TestClaimIsFounderOnly(t *testing.T) {
	f := newFixture(t)
	campaignID := f.seedEscrow(t, 1, 850)

	*f.clock = testNow.Add(releaseDelay)
	_, err := f.uc.Claim(context.Background(), campaignID, "investor", 1)
	assert.ErrorIs(t, err, domain.ErrNotFounder)
}

func TestClaimUnknownRound(t *testing.T) {
	f := newFixture(t)
	campaignID := f.seedEscrow(t, 1, 850)

	_, err := f.uc.Claim(context.Background(), campaignID, "founder", 9)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))
}

func TestListKeepsRoundOrder(t *testing.T) {
	f := newFixture(t)
	campaignID := f.seedEscrow(t, 1, 850)
	f.seedEscrow(t, 2, 420)

	list, err := f.uc.List(context.Background(), campaignID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 1, list[0].Round)
	assert.Equal(t, 2, list[1].Round)
}
