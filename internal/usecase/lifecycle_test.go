//go:build unit

package usecase_test

import (
	"testing"
	"time"

	"garage-orchestrator/internal/domain/alert"
	"garage-orchestrator/internal/domain/job"
	"garage-orchestrator/internal/domain/payment"
	"garage-orchestrator/internal/domain/session"
	"garage-orchestrator/internal/domain/slot"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLifecycle_NoShow(t *testing.T) {
	g := newGarage(t, regular("A-01"))
	d := g.addDriver(t, "ABC123")
	s := g.admit(t, d, "A-01", 2*time.Hour)

	g.clock.Add(10 * time.Minute)
	require.NoError(t, g.lifecycle.CheckOccupancy(t.Context(), g.payload(t, s.OccupancyCheckJobID)))

	cancelled := g.ledger.Session(s.ID)
	assert.Equal(t, session.StatusCancelled, cancelled.Status)

	txns := g.ledger.Transactions()
	require.Len(t, txns, 1)
	assert.Equal(t, payment.StatusCancelled, txns[0].Status)
	assert.Equal(t, s.ID, txns[0].SessionID)

	noShows := g.ledger.AlertsOfType(alert.TypeNoShow)
	require.Len(t, noShows, 1)
	assert.Equal(t, alert.SeverityMedium, noShows[0].Severity)

	assert.Empty(t, g.scheduler.Pending(job.KindCheckSessionExpiry))
	assert.Equal(t, slot.StatusAvailable, g.slots.Slot("A-01").Status)
	assert.Equal(t, []string{"pi_res_ABC123"}, g.gateway.Cancelled)
	assert.Empty(t, g.scheduler.Pending(job.KindProcessPayment), "a no-show is never billed")

	t.Run("repeated check is a no-op", func(t *testing.T) {
		require.NoError(t, g.lifecycle.CheckOccupancy(t.Context(), g.payload(t, s.OccupancyCheckJobID)))
		assert.Len(t, g.ledger.Transactions(), 1)
		assert.Len(t, g.ledger.AlertsOfType(alert.TypeNoShow), 1)
	})
}

func TestLifecycle_OccupancyCheckAfterArrival(t *testing.T) {
	g := newGarage(t, regular("A-01"))
	d := g.addDriver(t, "ABC123")
	s := g.admit(t, d, "A-01", 2*time.Hour)
	require.NoError(t, g.occupancy.HandleSlotEvent(t.Context(), occupied("A-01", "ABC123", t0.Add(time.Minute))))

	g.clock.Add(10 * time.Minute)
	require.NoError(t, g.lifecycle.CheckOccupancy(t.Context(), g.payload(t, s.OccupancyCheckJobID)))

	assert.Equal(t, session.StatusActive, g.ledger.Session(s.ID).Status)
	assert.Empty(t, g.ledger.AlertList())
}

func TestLifecycle_ResolvesSessionWithoutID(t *testing.T) {
	g := newGarage(t, regular("A-01"))
	d := g.addDriver(t, "ABC123")
	s := g.admit(t, d, "A-01", 2*time.Hour)

	g.clock.Add(10 * time.Minute)
	require.NoError(t, g.lifecycle.CheckOccupancy(t.Context(), job.Lifecycle{VehicleID: &d.vehicle.ID, SlotID: "A-01"}))

	assert.Equal(t, session.StatusCancelled, g.ledger.Session(s.ID).Status)
}

func TestLifecycle_ExpiryWithFreeSlotCompletes(t *testing.T) {
	g := newGarage(t, regular("A-01"))
	d := g.addDriver(t, "ABC123")
	s := g.admit(t, d, "A-01", time.Hour)
	// the departure event was lost
	_, err := g.slots.Update(t.Context(), "A-01", nil, (*slot.Slot).Release)
	require.NoError(t, err)

	g.clock.Set(t0.Add(time.Hour))
	require.NoError(t, g.lifecycle.CheckSessionExpiry(t.Context(), g.payload(t, s.ExitCheckJobID)))

	done := g.ledger.Session(s.ID)
	assert.Equal(t, session.StatusCompleted, done.Status)
	assert.Len(t, g.scheduler.Pending(job.KindProcessPayment), 1)
	assert.Empty(t, g.scheduler.Pending(job.KindCheckGracePeriodEnded))
}

func TestLifecycle_ExpiryGraceAndOvertime(t *testing.T) {
	g := newGarage(t, regular("A-01"))
	d := g.addDriver(t, "ABC123")
	s := g.admit(t, d, "A-01", time.Hour)
	require.NoError(t, g.occupancy.HandleSlotEvent(t.Context(), occupied("A-01", "ABC123", t0.Add(time.Minute))))

	g.clock.Set(t0.Add(time.Hour))
	require.NoError(t, g.lifecycle.CheckSessionExpiry(t.Context(), g.payload(t, s.ExitCheckJobID)))

	grace := g.scheduler.Pending(job.KindCheckGracePeriodEnded)
	require.Len(t, grace, 1)
	assert.Equal(t, 10*time.Minute, grace[0].Options.Delay)
	expired := g.ledger.Session(s.ID)
	assert.Equal(t, &grace[0].ID, expired.ExitCheckJobID)
	require.Len(t, g.notifier.Pushes, 1)
	assert.Equal(t, "Your session ended!", g.notifier.Pushes[0].Title)
	assert.Contains(t, g.notifier.Pushes[0].Body, "10 minutes")

	graceEnd := t0.Add(70 * time.Minute)
	g.clock.Set(graceEnd)
	require.NoError(t, g.lifecycle.CheckGracePeriodExpiry(t.Context(), g.payload(t, expired.ExitCheckJobID)))

	overtime := g.ledger.Session(s.ID)
	assert.Equal(t, session.StatusActive, overtime.Status)
	require.NotNil(t, overtime.OvertimeStart)
	assert.True(t, overtime.OvertimeStart.Equal(graceEnd))
	assert.Nil(t, overtime.ExitCheckJobID)
	assert.Len(t, g.ledger.AlertsOfType(alert.TypeOvertime), 1)
	require.Len(t, g.notifier.Pushes, 2)
	assert.Equal(t, "Penalty Time Started", g.notifier.Pushes[1].Title)

	t.Run("overtime starts once", func(t *testing.T) {
		g.clock.Add(5 * time.Minute)
		require.NoError(t, g.lifecycle.CheckGracePeriodExpiry(t.Context(), job.Lifecycle{SessionID: &s.ID}))
		assert.True(t, g.ledger.Session(s.ID).OvertimeStart.Equal(graceEnd))
		assert.Len(t, g.ledger.AlertsOfType(alert.TypeOvertime), 1)
	})

	t.Run("departure bills the penalty", func(t *testing.T) {
		left := t0.Add(80 * time.Minute)
		g.clock.Set(left)
		require.NoError(t, g.occupancy.HandleSlotEvent(t.Context(), vacated("A-01", left)))

		payments := g.scheduler.Pending(job.KindProcessPayment)
		require.Len(t, payments, 1)
		p, err := job.Decode[job.Payment](payments[0].AsJob())
		require.NoError(t, err)
		// 80 minutes at 0.5 plus 10 penalty minutes at the 0.5 surcharge
		assert.Equal(t, int64(4500), p.Amount)
	})
}

func TestLifecycle_GraceEndsAfterDeparture(t *testing.T) {
	g := newGarage(t, regular("A-01"))
	d := g.addDriver(t, "ABC123")
	s := g.admit(t, d, "A-01", time.Hour)
	_, err := g.slots.Update(t.Context(), "A-01", nil, (*slot.Slot).Release)
	require.NoError(t, err)

	g.clock.Set(t0.Add(70 * time.Minute))
	require.NoError(t, g.lifecycle.CheckGracePeriodExpiry(t.Context(), job.Lifecycle{SessionID: &s.ID}))

	done := g.ledger.Session(s.ID)
	assert.Equal(t, session.StatusCompleted, done.Status)
	assert.Nil(t, done.OvertimeStart)
	assert.Empty(t, g.ledger.AlertsOfType(alert.TypeOvertime))
}

func TestLifecycle_ExtendedSessionIgnoresStaleChecks(t *testing.T) {
	g := newGarage(t, regular("A-01"))
	d := g.addDriver(t, "ABC123")
	s := g.admit(t, d, "A-01", time.Hour)
	require.NoError(t, g.occupancy.HandleSlotEvent(t.Context(), occupied("A-01", "ABC123", t0.Add(time.Minute))))

	extended := g.ledger.Session(s.ID)
	extended.ExpectedExitTime = t0.Add(2 * time.Hour)
	extended.IsExtended = true
	g.ledger.AddSession(&extended)

	g.clock.Set(t0.Add(time.Hour))
	require.NoError(t, g.lifecycle.CheckSessionExpiry(t.Context(), job.Lifecycle{SessionID: &s.ID}))
	g.clock.Set(t0.Add(70 * time.Minute))
	require.NoError(t, g.lifecycle.CheckGracePeriodExpiry(t.Context(), job.Lifecycle{SessionID: &s.ID}))

	assert.Empty(t, g.scheduler.Pending(job.KindCheckGracePeriodEnded))
	assert.Nil(t, g.ledger.Session(s.ID).OvertimeStart)
	assert.Empty(t, g.notifier.Pushes)
}

func TestLifecycle_TerminalSessionIsDone(t *testing.T) {
	g := newGarage(t, regular("A-01"))
	d := g.addDriver(t, "ABC123")
	s := g.admit(t, d, "A-01", time.Hour)
	_, _, err := g.closer.Complete(t.Context(), s.ID, t0.Add(30*time.Minute))
	require.NoError(t, err)

	g.clock.Set(t0.Add(2 * time.Hour))
	p := job.Lifecycle{SessionID: &s.ID}
	require.NoError(t, g.lifecycle.CheckOccupancy(t.Context(), p))
	require.NoError(t, g.lifecycle.CheckSessionExpiry(t.Context(), p))
	require.NoError(t, g.lifecycle.CheckGracePeriodExpiry(t.Context(), p))

	assert.Equal(t, session.StatusCompleted, g.ledger.Session(s.ID).Status)
	assert.Len(t, g.scheduler.Pending(job.KindProcessPayment), 1)
	assert.Empty(t, g.ledger.AlertList())
}
