package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestNewRound(t *testing.T) {
	tests := []struct {
		name     string
		target   int64
		price    int64
		duration time.Duration
		wantErr  error
	}{
		{name: "valid", target: 1000, price: 10, duration: time.Hour},
		{name: "zero target", target: 0, price: 10, duration: time.Hour, wantErr: ErrInvalidParameters},
		{name: "negative price", target: 1000, price: -1, duration: time.Hour, wantErr: ErrInvalidParameters},
		{name: "zero duration", target: 1000, price: 10, duration: 0, wantErr: ErrInvalidParameters},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			round, err := NewRound("camp-1", 1, tt.target, tt.price, tt.duration, testNow)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, round.Active)
			assert.False(t, round.Finalized)
			assert.Equal(t, testNow.Add(tt.duration), round.EndTime)
		})
	}
}

func TestRoundRecordPurchase(t *testing.T) {
	round, err := NewRound("camp-1", 1, 1000, 10, time.Hour, testNow)
	require.NoError(t, err)

	require.NoError(t, round.RecordPurchase(5, 50, 45, testNow))
	assert.Equal(t, int64(50), round.FundsRaised)
	assert.Equal(t, int64(5), round.SharesSold)
	assert.Equal(t, int64(45), round.NetRetained)
	assert.Equal(t, int64(5), round.IssuedCount)

	// payment must match shares*price exactly
	assert.ErrorIs(t, round.RecordPurchase(5, 49, 45, testNow), ErrInsufficientPayment)
	assert.ErrorIs(t, round.RecordPurchase(5, 51, 45, testNow), ErrInsufficientPayment)
	assert.ErrorIs(t, round.RecordPurchase(0, 0, 0, testNow), ErrInvalidParameters)

	assert.ErrorIs(t, round.RecordPurchase(1, 10, 9, testNow.Add(2*time.Hour)), ErrRoundExpired)

	require.NoError(t, round.Finalize(testNow.Add(2*time.Hour)))
	assert.ErrorIs(t, round.RecordPurchase(1, 10, 9, testNow), ErrRoundNotActive)
}

func TestRoundRecordRefund(t *testing.T) {
	round, err := NewRound("camp-1", 1, 1000, 10, time.Hour, testNow)
	require.NoError(t, err)
	require.NoError(t, round.RecordPurchase(3, 30, 27, testNow))

	round.RecordRefund(10, 9)
	assert.Equal(t, int64(20), round.FundsRaised)
	assert.Equal(t, int64(2), round.SharesSold)
	assert.Equal(t, int64(18), round.NetRetained)
	// issuance index never goes back
	assert.Equal(t, int64(3), round.IssuedCount)
}

func TestRoundFinalizeEligible(t *testing.T) {
	round, err := NewRound("camp-1", 1, 100, 10, time.Hour, testNow)
	require.NoError(t, err)

	assert.False(t, round.FinalizeEligible(testNow))

	// target reached
	require.NoError(t, round.RecordPurchase(10, 100, 90, testNow))
	assert.True(t, round.FinalizeEligible(testNow))

	// expiry alone is enough
	short, err := NewRound("camp-1", 2, 100, 10, time.Hour, testNow)
	require.NoError(t, err)
	assert.False(t, short.FinalizeEligible(testNow.Add(59*time.Minute)))
	assert.True(t, short.FinalizeEligible(testNow.Add(time.Hour)))
}

func TestRoundFinalize(t *testing.T) {
	round, err := NewRound("camp-1", 1, 100, 10, time.Hour, testNow)
	require.NoError(t, err)

	assert.ErrorIs(t, round.Finalize(testNow), ErrNotEligible)

	require.NoError(t, round.RecordPurchase(10, 100, 90, testNow))
	require.NoError(t, round.Finalize(testNow))
	assert.False(t, round.Active)
	assert.True(t, round.Finalized)
	require.NotNil(t, round.FinalizedAt)

	assert.ErrorIs(t, round.Finalize(testNow), ErrAlreadyFinalized)
}
