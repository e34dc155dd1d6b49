//go:build unit

package usecase_test

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"garage-orchestrator/internal/domain/decision"
	"garage-orchestrator/internal/domain/job"
	"garage-orchestrator/internal/domain/payment"
	"garage-orchestrator/internal/domain/reservation"
	"garage-orchestrator/internal/domain/session"
	"garage-orchestrator/internal/domain/slot"
	"garage-orchestrator/internal/domain/user"
	"garage-orchestrator/internal/domain/vehicle"
	"garage-orchestrator/internal/pkg/clock"
	"garage-orchestrator/internal/pkg/config"
	"garage-orchestrator/internal/usecase"
	"garage-orchestrator/tests/common/fake"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// t0 is 10:00 in the garage's zone, well before the end of the day.
var t0 = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func testGarage() config.GarageConfig {
	return config.GarageConfig{
		TimeZone:              "UTC",
		EarlyEntryGrace:       15 * time.Minute,
		ExitGrace:             10 * time.Minute,
		OccupancyCheckDelay:   10 * time.Minute,
		MaxExtension:          8 * time.Hour,
		EntryPermitTTL:        15 * time.Minute,
		RegularRatePerMinute:  0.5,
		PenaltyRatePerMinute:  1.0,
		ConflictFee:           20,
		MinimumCharge:         5,
		DeviceHeartbeatWindow: 2 * time.Minute,
	}
}

// garage wires the usecases over in-memory fakes.
type garage struct {
	ledger    *fake.Ledger
	slots     *fake.SlotStore
	scheduler *fake.Scheduler
	permits   *fake.PermitStore
	publisher *fake.Publisher
	gateway   *fake.Gateway
	notifier  *fake.Notifier
	clock     *clock.MockClock
	config    config.GarageConfig

	allocator  *usecase.Allocator
	closer     *usecase.SessionCloser
	entry      usecase.EntryUseCase
	exit       usecase.ExitUseCase
	occupancy  usecase.OccupancyUseCase
	lifecycle  usecase.LifecycleUseCase
	settlement usecase.SettlementUseCase
	extension  usecase.ExtensionUseCase
	walkIn     usecase.WalkInUseCase
	webhook    usecase.WebhookUseCase
	admin      usecase.AdminUseCase
}

type slotSpec struct {
	id  string
	typ slot.Type
}

func regular(id string) slotSpec   { return slotSpec{id: id, typ: slot.TypeRegular} }
func emergency(id string) slotSpec { return slotSpec{id: id, typ: slot.TypeEmergency} }

func newGarage(t *testing.T, specs ...slotSpec) *garage {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	g := &garage{
		ledger:    fake.NewLedger(),
		slots:     fake.NewSlotStore(),
		scheduler: fake.NewScheduler(),
		permits:   fake.NewPermitStore(),
		publisher: &fake.Publisher{},
		gateway:   &fake.Gateway{},
		notifier:  &fake.Notifier{},
		clock:     clock.NewMockClock(t0),
		config:    testGarage(),
	}
	g.ledger.UseScheduler(g.scheduler)
	for _, sp := range specs {
		g.ledger.AddSlot(sp.id, sp.typ)
		s, err := slot.New(sp.id)
		require.NoError(t, err)
		require.NoError(t, g.slots.Put(t.Context(), s))
	}

	alerts := usecase.NewAlertService(g.ledger, &fake.Broadcaster{}, usecase.NopMetrics{}, logger)
	notifier := usecase.NewNotifier(g.ledger, g.notifier, g.notifier, logger)
	g.allocator = usecase.NewAllocator(g.ledger, g.slots, alerts, g.clock, g.config, logger)
	g.closer = usecase.NewSessionCloser(g.ledger, usecase.RatesFromConfig(g.config), logger)
	g.entry = usecase.NewEntryUseCase(g.ledger, g.slots, g.permits, g.allocator, g.publisher, usecase.NopMetrics{},
		g.clock, g.config, time.Second, logger)
	g.exit = usecase.NewExitUseCase(g.ledger, alerts, g.publisher, usecase.NopMetrics{}, g.clock, time.Second, logger)
	g.occupancy = usecase.NewOccupancyUseCase(g.ledger, g.slots, g.scheduler, g.allocator, g.closer, alerts, notifier,
		g.clock, g.config, logger)
	g.lifecycle = usecase.NewLifecycleUseCase(g.ledger, g.slots, g.scheduler, g.gateway, g.closer, alerts, notifier,
		g.clock, g.config, time.Second, logger)
	g.settlement = usecase.NewSettlementUseCase(g.ledger, g.gateway, alerts, notifier, g.clock, time.Second, logger)
	g.extension = usecase.NewExtensionUseCase(g.ledger, g.scheduler, g.clock, g.config, logger)
	g.walkIn = usecase.NewWalkInUseCase(g.ledger, g.permits, g.gateway, g.clock, g.config, 10000, logger)
	g.webhook = usecase.NewWebhookUseCase(g.ledger, g.gateway, g.clock, logger)
	g.admin = usecase.NewAdminUseCase(g.ledger, g.slots, g.clock, logger)
	return g
}

type driver struct {
	user    *user.User
	vehicle *vehicle.Vehicle
}

func (g *garage) addDriver(t *testing.T, plate string) driver {
	t.Helper()
	phone, err := user.NewPhone("+201001234567")
	require.NoError(t, err)
	u := user.NewWalkIn("Driver "+plate, phone, nil)
	token := "ExponentPushToken[" + plate + "]"
	u.PushToken = &token
	g.ledger.AddUser(u)

	p, err := vehicle.NewPlate(plate)
	require.NoError(t, err)
	v := vehicle.New(u.ID, p)
	g.ledger.AddVehicle(v)
	return driver{user: u, vehicle: v}
}

// reserve books slotID for d from start for dur, paid by card.
func (g *garage) reserve(d driver, slotID string, start time.Time, dur time.Duration) *reservation.Reservation {
	intent := "pi_res_" + d.vehicle.Plate
	r := &reservation.Reservation{
		ID:              uuid.New(),
		UserID:          d.user.ID,
		VehicleID:       d.vehicle.ID,
		PlateNumber:     d.vehicle.Plate,
		SlotID:          slotID,
		Window:          reservation.Window{Start: start, End: start.Add(dur)},
		Status:          reservation.StatusConfirmed,
		PaymentMethod:   payment.MethodCard,
		PaymentIntentID: &intent,
	}
	g.ledger.AddReservation(r)
	return r
}

// admit books slotID for d from now for dur and lets d through the entry gate.
func (g *garage) admit(t *testing.T, d driver, slotID string, dur time.Duration) session.Session {
	t.Helper()
	g.reserve(d, slotID, g.clock.Now(), dur)
	resp := g.entry.HandleEntry(t.Context(), job.EntryRequest{PlateNumber: d.vehicle.Plate, RequestID: "admit-" + d.vehicle.Plate})
	require.Equal(t, decision.ReasonReservationHonored, resp.Reason)
	s, err := g.ledger.Sessions().FindActiveByVehicle(t.Context(), d.vehicle.ID)
	require.NoError(t, err)
	return *s
}

func occupied(slotID, plate string, at time.Time) job.SlotEvent {
	ev := job.SlotEvent{SlotID: slotID, EventType: job.SlotEventOccupied, Timestamp: at}
	if plate != "" {
		ev.PlateNumber = &plate
	}
	return ev
}

func vacated(slotID string, at time.Time) job.SlotEvent {
	return job.SlotEvent{SlotID: slotID, EventType: job.SlotEventAvailable, Timestamp: at}
}

// payload decodes the lifecycle payload of a recorded job.
func (g *garage) payload(t *testing.T, id *job.ID) job.Lifecycle {
	t.Helper()
	require.NotNil(t, id)
	j, ok := g.scheduler.Job(*id)
	require.True(t, ok)
	p, err := job.Decode[job.Lifecycle](j.AsJob())
	require.NoError(t, err)
	return p
}
