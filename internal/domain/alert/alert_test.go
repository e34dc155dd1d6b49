//go:build unit

package alert_test

import (
	"testing"
	"time"

	"garage-orchestrator/internal/domain/alert"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	now := time.Now()
	a := alert.New(alert.TypeSlotConflict, alert.SeverityHigh, "Slot conflict", "wrong car", now,
		alert.WithSlot("A-01"), alert.WithPlate(""), alert.WithDetail("expected", "ABC123"))

	assert.Equal(t, alert.StatusPending, a.Status)
	require.NotNil(t, a.SlotID)
	assert.Equal(t, "A-01", *a.SlotID)
	assert.Nil(t, a.PlateNumber)
	assert.Equal(t, map[string]any{"expected": "ABC123"}, a.Details)
}

func TestTransition(t *testing.T) {
	cases := []struct {
		from, to alert.Status
		ok       bool
	}{
		{alert.StatusPending, alert.StatusAcknowledged, true},
		{alert.StatusPending, alert.StatusResolved, true},
		{alert.StatusPending, alert.StatusDismissed, true},
		{alert.StatusPending, alert.StatusPending, false},
		{alert.StatusAcknowledged, alert.StatusResolved, true},
		{alert.StatusAcknowledged, alert.StatusPending, false},
		{alert.StatusResolved, alert.StatusAcknowledged, false},
		{alert.StatusDismissed, alert.StatusResolved, false},
	}
	by := uuid.New()
	now := time.Now()

	for _, tc := range cases {
		t.Run(string(tc.from)+"->"+string(tc.to), func(t *testing.T) {
			a := &alert.Alert{Status: tc.from}
			err := a.Transition(tc.to, by, now)
			if !tc.ok {
				assert.ErrorIs(t, err, alert.ErrInvalidTransition)
				assert.Equal(t, tc.from, a.Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.to, a.Status)
			if tc.to == alert.StatusAcknowledged {
				assert.Nil(t, a.ResolvedBy)
			} else {
				assert.Equal(t, &by, a.ResolvedBy)
			}
		})
	}
}
