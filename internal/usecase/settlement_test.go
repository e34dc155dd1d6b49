//go:build unit

package usecase_test

import (
	"errors"
	"testing"
	"time"

	"garage-orchestrator/internal/domain/alert"
	"garage-orchestrator/internal/domain/job"
	"garage-orchestrator/internal/domain/payment"
	"garage-orchestrator/internal/domain/session"
	"garage-orchestrator/internal/pkg/ptr"
	"garage-orchestrator/tests/common/fake"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stayOpt func(*session.Session)

func walkIn() stayOpt { return func(s *session.Session) { s.ReservationID = nil } }

func paidBy(m payment.Method) stayOpt {
	return func(s *session.Session) {
		s.PaymentMethod = m
		if m == payment.MethodCash {
			s.PaymentIntentID = nil
		}
	}
}

// completedStay records a completed reserved card session of d and returns the
// payment job the closer would have queued for it.
func (g *garage) completedStay(d driver, amount int64, opts ...stayOpt) job.Payment {
	exit := t0
	intent := "pi_stay_" + d.vehicle.Plate
	resID := uuid.New()
	s := &session.Session{
		ID:               uuid.New(),
		UserID:           d.user.ID,
		VehicleID:        d.vehicle.ID,
		SlotID:           "A-01",
		Status:           session.StatusCompleted,
		EntryTime:        t0.Add(-time.Hour),
		ExpectedExitTime: t0,
		ExitTime:         &exit,
		ReservationID:    &resID,
		PaymentMethod:    payment.MethodCard,
		PaymentIntentID:  &intent,
	}
	for _, o := range opts {
		o(s)
	}
	g.ledger.AddSession(s)
	return job.Payment{SessionID: s.ID, Amount: amount, UserID: d.user.ID, PlateNumber: d.vehicle.Plate}
}

func TestSettlement_CardCaptured(t *testing.T) {
	g := newGarage(t, regular("A-01"))
	d := g.addDriver(t, "ABC123")
	p := g.completedStay(d, 3000)

	require.NoError(t, g.settlement.Settle(t.Context(), p))

	txns := g.ledger.Transactions()
	require.Len(t, txns, 1)
	assert.Equal(t, []fake.Capture{{IntentID: "pi_stay_ABC123", Amount: 3000, Key: "capture-" + txns[0].ID.String()}}, g.gateway.Captures)
	assert.Equal(t, payment.StatusCompleted, txns[0].Status)
	assert.Equal(t, int64(3000), txns[0].Amount)
	require.NotNil(t, txns[0].PaidAt)

	require.Len(t, g.notifier.Pushes, 1)
	assert.Equal(t, "Payment Successful", g.notifier.Pushes[0].Title)
	assert.Contains(t, g.notifier.Pushes[0].Body, "30.00 EGP")

	t.Run("repeated job does not charge twice", func(t *testing.T) {
		require.NoError(t, g.settlement.Settle(t.Context(), p))
		assert.Len(t, g.gateway.Captures, 1)
		assert.Len(t, g.ledger.Transactions(), 1)
	})
}

func TestSettlement_CaptureFailure(t *testing.T) {
	tests := []struct {
		name     string
		opts     []stayOpt
		wantSMS  bool
		wantPush string
	}{
		{name: "reserved driver is notified by push", wantPush: "Payment Failed"},
		{name: "walk-in is texted and an attendant alerted", opts: []stayOpt{walkIn()}, wantSMS: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGarage(t, regular("A-01"))
			d := g.addDriver(t, "ABC123")
			p := g.completedStay(d, 5250, tt.opts...)
			g.gateway.CaptureErr = errors.New("card_declined")

			require.NoError(t, g.settlement.Settle(t.Context(), p))

			txns := g.ledger.Transactions()
			require.Len(t, txns, 1)
			assert.Equal(t, payment.StatusUnpaidExit, txns[0].Status)
			require.NotNil(t, txns[0].CheckoutURL)
			assert.Equal(t, "https://pay.example.com/link", *txns[0].CheckoutURL)
			assert.Equal(t, []int64{5250}, g.gateway.Links)
			assert.Equal(t, []string{"pi_stay_ABC123"}, g.gateway.Cancelled)

			assert.True(t, g.ledger.Vehicle(d.vehicle.ID).HasOutstandingDebt)
			assert.True(t, g.ledger.User(d.user.ID).HasOutstandingDebt)

			if tt.wantSMS {
				require.Len(t, g.notifier.SMS, 1)
				assert.Equal(t, "+201001234567", g.notifier.SMS[0].To)
				assert.Contains(t, g.notifier.SMS[0].Body, "52.50 EGP")
				assert.Contains(t, g.notifier.SMS[0].Body, "https://pay.example.com/link")
				assert.Len(t, g.ledger.AlertsOfType(alert.TypePaymentHelpRequest), 1)
				assert.Empty(t, g.notifier.Pushes)
			} else {
				require.Len(t, g.notifier.Pushes, 1)
				assert.Equal(t, tt.wantPush, g.notifier.Pushes[0].Title)
				assert.Empty(t, g.notifier.SMS)
				assert.Empty(t, g.ledger.AlertList())
			}
		})
	}
}

func TestSettlement_CardWithoutIntentIsUnpaid(t *testing.T) {
	g := newGarage(t, regular("A-01"))
	d := g.addDriver(t, "ABC123")
	p := g.completedStay(d, 1000, func(s *session.Session) { s.PaymentIntentID = nil })

	require.NoError(t, g.settlement.Settle(t.Context(), p))

	assert.Empty(t, g.gateway.Captures)
	assert.Equal(t, payment.StatusUnpaidExit, g.ledger.Transactions()[0].Status)
}

func TestSettlement_Cash(t *testing.T) {
	g := newGarage(t, regular("A-01"))
	d := g.addDriver(t, "ABC123")
	p := g.completedStay(d, 4000, paidBy(payment.MethodCash))

	require.NoError(t, g.settlement.Settle(t.Context(), p))

	txns := g.ledger.Transactions()
	require.Len(t, txns, 1)
	assert.Equal(t, payment.StatusPending, txns[0].Status)
	assert.Equal(t, payment.MethodCash, txns[0].Method)
	help := g.ledger.AlertsOfType(alert.TypePaymentHelpRequest)
	require.Len(t, help, 1)
	assert.Equal(t, alert.SeverityCritical, help[0].Severity)
	assert.Contains(t, help[0].Description, "40.00 EGP")
	assert.Empty(t, g.gateway.Captures)

	t.Run("resumed job does not page again", func(t *testing.T) {
		require.NoError(t, g.settlement.Settle(t.Context(), p))
		assert.Len(t, g.ledger.Transactions(), 1)
		assert.Len(t, g.ledger.AlertsOfType(alert.TypePaymentHelpRequest), 1)
	})
}

func TestSettlement_ZeroAmount(t *testing.T) {
	g := newGarage(t, regular("A-01"))
	d := g.addDriver(t, "ABC123")
	p := g.completedStay(d, 0)

	require.NoError(t, g.settlement.Settle(t.Context(), p))

	txns := g.ledger.Transactions()
	require.Len(t, txns, 1)
	assert.Equal(t, payment.StatusCompleted, txns[0].Status)
	assert.Empty(t, g.gateway.Captures)
	assert.Equal(t, []string{"pi_stay_ABC123"}, g.gateway.Cancelled)
	assert.Empty(t, g.notifier.Pushes)
}

func TestSettlement_UnknownSessionIsDropped(t *testing.T) {
	g := newGarage(t, regular("A-01"))

	err := g.settlement.Settle(t.Context(), job.Payment{SessionID: uuid.New(), Amount: 100})

	assert.NoError(t, err)
	assert.Empty(t, g.ledger.Transactions())
}

func TestSettlement_LedgerFailureIsRetried(t *testing.T) {
	g := newGarage(t, regular("A-01"))
	d := g.addDriver(t, "ABC123")
	p := g.completedStay(d, 3000)
	g.ledger.WithinErr = errors.New("connection refused")

	assert.Error(t, g.settlement.Settle(t.Context(), p))
	assert.Empty(t, g.gateway.Captures)
}

func TestSettlement_RetryAfterCapturedChargeCompletes(t *testing.T) {
	g := newGarage(t, regular("A-01"))
	d := g.addDriver(t, "ABC123")
	p := g.completedStay(d, 3000)
	g.gateway.AfterCapture = func() { g.ledger.WithinErr = errors.New("connection reset") }

	require.Error(t, g.settlement.Settle(t.Context(), p))
	require.Len(t, g.gateway.Captures, 1)
	require.Equal(t, payment.StatusPending, g.ledger.Transactions()[0].Status)

	g.gateway.AfterCapture = nil
	g.ledger.WithinErr = nil
	require.NoError(t, g.settlement.Settle(t.Context(), p))

	txns := g.ledger.Transactions()
	require.Len(t, txns, 1)
	assert.Equal(t, payment.StatusCompleted, txns[0].Status)
	assert.Len(t, g.gateway.Captures, 1)
	assert.Empty(t, g.gateway.Links)
	assert.Empty(t, g.gateway.Cancelled)
	assert.False(t, g.ledger.Vehicle(d.vehicle.ID).HasOutstandingDebt)
	assert.False(t, g.ledger.User(d.user.ID).HasOutstandingDebt)
	require.Len(t, g.notifier.Pushes, 1)
	assert.Equal(t, "Payment Successful", g.notifier.Pushes[0].Title)
}

func TestSettlement_HungCaptureTimesOut(t *testing.T) {
	g := newGarage(t, regular("A-01"))
	d := g.addDriver(t, "ABC123")
	p := g.completedStay(d, 3000)
	g.gateway.HangCapture = true

	start := time.Now()
	require.NoError(t, g.settlement.Settle(t.Context(), p))
	assert.Less(t, time.Since(start), 2*time.Second)

	txns := g.ledger.Transactions()
	require.Len(t, txns, 1)
	assert.Equal(t, payment.StatusUnpaidExit, txns[0].Status)
	assert.Empty(t, g.gateway.Captures)
	assert.True(t, g.ledger.Vehicle(d.vehicle.ID).HasOutstandingDebt)
	assert.True(t, g.ledger.User(d.user.ID).HasOutstandingDebt)
}

func TestSettlement_HungPaymentLinkStillFlagsDebt(t *testing.T) {
	g := newGarage(t, regular("A-01"))
	d := g.addDriver(t, "ABC123")
	p := g.completedStay(d, 3000)
	g.gateway.CaptureErr = errors.New("card_declined")
	g.gateway.HangLinks = true

	start := time.Now()
	require.NoError(t, g.settlement.Settle(t.Context(), p))
	assert.Less(t, time.Since(start), 2*time.Second)

	txns := g.ledger.Transactions()
	require.Len(t, txns, 1)
	assert.Equal(t, payment.StatusUnpaidExit, txns[0].Status)
	assert.Empty(t, ptr.Deref(txns[0].CheckoutURL))
	assert.True(t, g.ledger.Vehicle(d.vehicle.ID).HasOutstandingDebt)
	require.Len(t, g.notifier.Pushes, 1)
	assert.NotContains(t, g.notifier.Pushes[0].Body, "Please pay here")
}
