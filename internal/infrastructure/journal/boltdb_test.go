package journal

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crowdvault/backend/domain"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "journal.db"), "")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func record(campaignID, action string, at time.Time) domain.ActionRecord {
	return domain.ActionRecord{
		CampaignID: campaignID,
		ActorID:    "founder",
		Action:     action,
		Entity:     "campaign",
		At:         at,
	}
}

func TestAppendAndRecent(t *testing.T) {
	store := openStore(t)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		action := fmt.Sprintf("action-%d", i)
		require.NoError(t, store.Append(record("camp-1", action, base.Add(time.Duration(i)*time.Second))))
	}

	records, err := store.Recent(3)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "action-4", records[0].Action)
	assert.Equal(t, "action-2", records[2].Action)

	size, err := store.Size()
	require.NoError(t, err)
	assert.Equal(t, 5, size)
}

func TestAppendFillsIdentity(t *testing.T) {
	store := openStore(t)

	require.NoError(t, store.Append(domain.ActionRecord{
		CampaignID: "camp-1",
		Action:     "create_campaign",
	}))

	records, err := store.Recent(1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.NotEmpty(t, records[0].ID)
	assert.False(t, records[0].At.IsZero())
}

func TestByCampaignFilters(t *testing.T) {
	store := openStore(t)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Append(record("camp-1", "purchase", base)))
	require.NoError(t, store.Append(record("camp-2", "purchase", base.Add(time.Second))))
	require.NoError(t, store.Append(record("camp-1", "refund", base.Add(2*time.Second))))

	records, err := store.ByCampaign("camp-1", 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "refund", records[0].Action)
	assert.Equal(t, "purchase", records[1].Action)
}

func TestCleanupDropsOldEntries(t *testing.T) {
	store := openStore(t)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Append(record("camp-1", "old", base.Add(-time.Hour))))
	require.NoError(t, store.Append(record("camp-1", "fresh", base)))

	require.NoError(t, store.Cleanup(base))

	records, err := store.Recent(10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "fresh", records[0].Action)
}

func TestNilStoreIsInert(t *testing.T) {
	var store *Store
	assert.Error(t, store.Append(domain.ActionRecord{}))
	assert.NoError(t, store.Close())
}
