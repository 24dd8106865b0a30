package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testGrace    = 30 * 24 * time.Hour
	testExchange = 30 * 24 * time.Hour
	testMinLive  = 15 * time.Minute
)

func waitingState(t *testing.T) *DAOState {
	t.Helper()
	s := NewDAOState("camp-1", testNow)
	require.NoError(t, s.Activate(testNow))
	return s
}

func TestDAOHappyPath(t *testing.T) {
	s := NewDAOState("camp-1", testNow)
	assert.Equal(t, PhaseInactive, s.Phase)

	require.NoError(t, s.Activate(testNow))
	assert.Equal(t, PhaseWaitingForLive, s.Phase)
	assert.Equal(t, testNow, s.WaitingSince)

	eventAt := testNow.Add(48 * time.Hour)
	require.NoError(t, s.ScheduleLive(eventAt, "studio-7", testNow))
	assert.Equal(t, PhaseLiveScheduled, s.Phase)

	require.NoError(t, s.StartLive(eventAt))
	assert.Equal(t, PhaseLiveActive, s.Phase)

	endAt := eventAt.Add(time.Hour)
	require.NoError(t, s.EndLive(testMinLive, testExchange, endAt))
	assert.Equal(t, PhaseExchangePeriod, s.Phase)
	assert.Equal(t, endAt.Add(testExchange), s.ExchangeEndsAt)

	require.NoError(t, s.CompleteExchange(s.ExchangeEndsAt))
	assert.Equal(t, PhaseCompleted, s.Phase)
}

func TestDAOTransitionGuards(t *testing.T) {
	t.Run("activate twice", func(t *testing.T) {
		s := waitingState(t)
		assert.ErrorIs(t, s.Activate(testNow), ErrWrongPhase)
	})

	t.Run("schedule in the past", func(t *testing.T) {
		s := waitingState(t)
		assert.ErrorIs(t, s.ScheduleLive(testNow, "ref", testNow), ErrInThePast)
		assert.ErrorIs(t, s.ScheduleLive(testNow.Add(-time.Hour), "ref", testNow), ErrInThePast)
	})

	t.Run("schedule from wrong phase", func(t *testing.T) {
		s := NewDAOState("camp-1", testNow)
		assert.ErrorIs(t, s.ScheduleLive(testNow.Add(time.Hour), "ref", testNow), ErrWrongPhase)
	})

	t.Run("start before scheduled time", func(t *testing.T) {
		s := waitingState(t)
		eventAt := testNow.Add(24 * time.Hour)
		require.NoError(t, s.ScheduleLive(eventAt, "ref", testNow))
		assert.ErrorIs(t, s.StartLive(eventAt.Add(-time.Minute)), ErrTooEarly)
		assert.NoError(t, s.StartLive(eventAt))
	})

	t.Run("end below minimum duration", func(t *testing.T) {
		s := waitingState(t)
		eventAt := testNow.Add(24 * time.Hour)
		require.NoError(t, s.ScheduleLive(eventAt, "ref", testNow))
		require.NoError(t, s.StartLive(eventAt))
		assert.ErrorIs(t, s.EndLive(testMinLive, testExchange, eventAt.Add(10*time.Minute)), ErrTooShort)
		assert.NoError(t, s.EndLive(testMinLive, testExchange, eventAt.Add(testMinLive)))
	})

	t.Run("complete before window elapses", func(t *testing.T) {
		s := waitingState(t)
		eventAt := testNow.Add(24 * time.Hour)
		require.NoError(t, s.ScheduleLive(eventAt, "ref", testNow))
		require.NoError(t, s.StartLive(eventAt))
		require.NoError(t, s.EndLive(testMinLive, testExchange, eventAt.Add(time.Hour)))
		assert.ErrorIs(t, s.CompleteExchange(s.ExchangeEndsAt.Add(-time.Second)), ErrTooEarly)
	})
}

func TestDAOEmergency(t *testing.T) {
	t.Run("due from waiting", func(t *testing.T) {
		s := waitingState(t)
		assert.False(t, s.EmergencyDue(testGrace, testNow.Add(testGrace-time.Second)))
		assert.True(t, s.EmergencyDue(testGrace, testNow.Add(testGrace)))

		assert.ErrorIs(t, s.EnableEmergency(testGrace, testNow), ErrTooEarly)
		require.NoError(t, s.EnableEmergency(testGrace, testNow.Add(testGrace)))
		assert.Equal(t, PhaseEmergency, s.Phase)
	})

	t.Run("due from scheduled", func(t *testing.T) {
		s := waitingState(t)
		// scheduling a live event does not stop the grace clock
		require.NoError(t, s.ScheduleLive(testNow.Add(60*24*time.Hour), "ref", testNow))
		assert.True(t, s.EmergencyDue(testGrace, testNow.Add(testGrace)))
		require.NoError(t, s.EnableEmergency(testGrace, testNow.Add(testGrace)))
	})

	t.Run("never due once live", func(t *testing.T) {
		s := waitingState(t)
		eventAt := testNow.Add(time.Hour)
		require.NoError(t, s.ScheduleLive(eventAt, "ref", testNow))
		require.NoError(t, s.StartLive(eventAt))
		assert.False(t, s.EmergencyDue(testGrace, testNow.Add(10*testGrace)))
		assert.ErrorIs(t, s.EnableEmergency(testGrace, testNow.Add(10*testGrace)), ErrWrongPhase)
	})
}

func TestDAOEffectivePhase(t *testing.T) {
	s := waitingState(t)
	eventAt := testNow.Add(time.Hour)
	require.NoError(t, s.ScheduleLive(eventAt, "ref", testNow))
	require.NoError(t, s.StartLive(eventAt))
	require.NoError(t, s.EndLive(testMinLive, testExchange, eventAt.Add(time.Hour)))

	assert.Equal(t, PhaseExchangePeriod, s.EffectivePhase(s.ExchangeEndsAt.Add(-time.Second)))
	// elapsed window reads completed before the trigger persists it
	assert.Equal(t, PhaseCompleted, s.EffectivePhase(s.ExchangeEndsAt))
	assert.Equal(t, PhaseExchangePeriod, s.Phase)
}
