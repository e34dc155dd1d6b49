//go:build unit

package session_test

import (
	"testing"
	"time"

	"garage-orchestrator/internal/domain/payment"
	"garage-orchestrator/internal/domain/session"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var entry = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func newSession(t *testing.T) *session.Session {
	t.Helper()
	intent := "pi_123"
	jobID := uuid.New()
	s, err := session.Start(session.StartParams{
		UserID:           uuid.New(),
		VehicleID:        uuid.New(),
		SlotID:           "A-01",
		EntryTime:        entry,
		ExpectedExitTime: entry.Add(2 * time.Hour),
		PaymentMethod:    payment.MethodCard,
		PaymentIntentID:  &intent,
		ExitCheckJobID:   &jobID,
	})
	require.NoError(t, err)
	return s
}

func TestStart(t *testing.T) {
	t.Run("card session needs an intent", func(t *testing.T) {
		_, err := session.Start(session.StartParams{
			SlotID:        "A-01",
			EntryTime:     entry,
			PaymentMethod: payment.MethodCard,
		})
		assert.ErrorIs(t, err, session.ErrPaymentIntentMiss)
	})

	t.Run("cash walk-in", func(t *testing.T) {
		s, err := session.Start(session.StartParams{
			SlotID:           "A-01",
			EntryTime:        entry,
			ExpectedExitTime: entry.Add(time.Hour),
			PaymentMethod:    payment.MethodCash,
		})
		require.NoError(t, err)
		assert.True(t, s.IsActive())
		assert.True(t, s.IsWalkIn())
		assert.False(t, s.IsTerminal())
	})
}

func TestCompleteClearsJobs(t *testing.T) {
	s := newSession(t)
	exit := entry.Add(90 * time.Minute)

	s.Complete(exit)

	assert.Equal(t, session.StatusCompleted, s.Status)
	assert.True(t, s.IsTerminal())
	assert.Nil(t, s.ExitCheckJobID)
	assert.Nil(t, s.OccupancyCheckJobID)
	assert.InDelta(t, 90.0, s.StayMinutes(), 1e-9)
}

func TestCancel(t *testing.T) {
	s := newSession(t)
	s.Cancel(entry)

	assert.Equal(t, session.StatusCancelled, s.Status)
	assert.Zero(t, s.StayMinutes())
}

func TestStartOvertimeKeepsFirstAnchor(t *testing.T) {
	s := newSession(t)
	first := entry.Add(2 * time.Hour)

	assert.True(t, s.StartOvertime(first))
	assert.False(t, s.StartOvertime(first.Add(5*time.Minute)))
	require.NotNil(t, s.OvertimeStart)
	assert.True(t, s.OvertimeStart.Equal(first))
	assert.True(t, s.InOvertime())
}

func TestExtend(t *testing.T) {
	maxExit := entry.Add(4 * time.Hour)
	now := entry.Add(time.Hour)

	t.Run("moves expected exit", func(t *testing.T) {
		s := newSession(t)

		newExit, err := s.Extend(30, maxExit, now)

		require.NoError(t, err)
		assert.True(t, newExit.Equal(entry.Add(150*time.Minute)))
		assert.True(t, s.IsExtended)
		assert.Nil(t, s.OvertimeEnd)
	})

	t.Run("closes open overtime", func(t *testing.T) {
		s := newSession(t)
		s.StartOvertime(entry.Add(2 * time.Hour))
		at := entry.Add(130 * time.Minute)

		_, err := s.Extend(30, maxExit, at)

		require.NoError(t, err)
		require.NotNil(t, s.OvertimeEnd)
		assert.True(t, s.OvertimeEnd.Equal(at))
		assert.False(t, s.InOvertime())
	})

	t.Run("reaching the bound exactly is allowed", func(t *testing.T) {
		s := newSession(t)
		_, err := s.Extend(120, maxExit, now)
		assert.NoError(t, err)
	})

	t.Run("past the bound", func(t *testing.T) {
		s := newSession(t)
		_, err := s.Extend(121, maxExit, now)
		assert.ErrorIs(t, err, session.ErrExtensionTooLong)
		assert.False(t, s.IsExtended)
	})

	t.Run("non-positive minutes", func(t *testing.T) {
		s := newSession(t)
		_, err := s.Extend(0, maxExit, now)
		assert.ErrorIs(t, err, session.ErrInvalidExtension)
	})

	t.Run("finished session", func(t *testing.T) {
		s := newSession(t)
		s.Complete(now)
		_, err := s.Extend(10, maxExit, now)
		assert.ErrorIs(t, err, session.ErrNotActive)
	})
}

func TestMaxExtensionTime(t *testing.T) {
	now := entry
	next := entry.Add(3 * time.Hour)

	assert.True(t, session.MaxExtensionTime(now, nil, 15*time.Minute, 10*time.Minute, 4*time.Hour).
		Equal(entry.Add(4*time.Hour)))
	assert.True(t, session.MaxExtensionTime(now, &next, 15*time.Minute, 10*time.Minute, 4*time.Hour).
		Equal(entry.Add(155*time.Minute)))
}

func TestBillingInput(t *testing.T) {
	s := newSession(t)
	s.InvolvedInConflict = true
	s.Complete(entry.Add(time.Hour))

	in := s.BillingInput()

	assert.True(t, in.EntryTime.Equal(entry))
	require.NotNil(t, in.ExitTime)
	assert.True(t, in.InvolvedInConflict)
}
