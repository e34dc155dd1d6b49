package shared

import (
	"context"
	"time"

	"garage-orchestrator/internal/domain/alert"
	"garage-orchestrator/internal/domain/device"
	"garage-orchestrator/internal/domain/job"
	"garage-orchestrator/internal/domain/payment"
	"garage-orchestrator/internal/domain/reservation"
	"garage-orchestrator/internal/domain/session"
	"garage-orchestrator/internal/domain/slot"
	"garage-orchestrator/internal/domain/user"
	"garage-orchestrator/internal/domain/vehicle"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithinReadOnly: Read-only transaction for multi-table consistent reads
	WithinReadOnly(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithDB: Single query operations using implicit transactions
	WithDB(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

type Tx interface {
	Sessions() SessionRepository
	Reservations() ReservationRepository
	Payments() PaymentRepository
	Vehicles() VehicleRepository
	Users() UserRepository
	LedgerSlots() LedgerSlotRepository
	Alerts() AlertRepository
	Devices() DeviceRepository
	Jobs() JobRepository
}

type SessionFilter struct {
	Status *session.Status
	SlotID *string
	Limit  int
	Offset int
}

type SessionRepository interface {
	Create(ctx context.Context, s *session.Session) error
	Update(ctx context.Context, s *session.Session) error
	FindByID(ctx context.Context, id uuid.UUID) (*session.Session, error)
	// FindByIDForUpdate locks the row for the rest of the transaction.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*session.Session, error)
	FindActiveBySlot(ctx context.Context, slotID string) (*session.Session, error)
	FindActiveByVehicle(ctx context.Context, vehicleID uuid.UUID) (*session.Session, error)
	FindByReservation(ctx context.Context, reservationID uuid.UUID) (*session.Session, error)
	FindLatestByVehicle(ctx context.Context, vehicleID uuid.UUID) (*session.Session, error)
	List(ctx context.Context, filter SessionFilter) ([]session.Session, error)
}

type ReservationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error)
	// FindAdmissible returns the CONFIRMED reservation of plate whose window
	// admits an arrival at now, allowing early arrival by earlyGrace.
	FindAdmissible(ctx context.Context, plate string, now time.Time, earlyGrace time.Duration) (*reservation.Reservation, error)
	MarkFulfilled(ctx context.Context, id uuid.UUID, slotID string) error
	// ReservedSlotIDs returns which of slotIDs carry a CONFIRMED reservation starting at or before until.
	ReservedSlotIDs(ctx context.Context, slotIDs []string, until time.Time) (map[string]bool, error)
	NextConfirmedOnSlot(ctx context.Context, slotID string, after time.Time) (*reservation.Reservation, error)
	Create(ctx context.Context, r *reservation.Reservation) error
}

type PaymentRepository interface {
	Create(ctx context.Context, t *payment.Transaction) error
	Update(ctx context.Context, t *payment.Transaction) error
	FindLatestBySession(ctx context.Context, sessionID uuid.UUID) (*payment.Transaction, error)
}

type VehicleRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*vehicle.Vehicle, error)
	FindByPlate(ctx context.Context, plate string) (*vehicle.Vehicle, error)
	// Upsert keys on the plate and returns the stored row.
	Upsert(ctx context.Context, v *vehicle.Vehicle) (*vehicle.Vehicle, error)
	SetDebt(ctx context.Context, id uuid.UUID, debt bool) error
}

type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	FindByEmail(ctx context.Context, email user.Email) (*user.User, error)
	// UpsertByPhone keys on the phone number and returns the stored row.
	UpsertByPhone(ctx context.Context, u *user.User) (*user.User, error)
	SetStripeCustomer(ctx context.Context, id uuid.UUID, customerID string) error
	SetDebt(ctx context.Context, id uuid.UUID, debt bool) error
	UpdateLastLogin(ctx context.Context, id uuid.UUID) error
	Create(ctx context.Context, u *user.User) error
}

type LedgerSlotRepository interface {
	TypesByID(ctx context.Context, ids []string) (map[string]slot.Type, error)
	IDsByType(ctx context.Context, typ slot.Type) ([]string, error)
	Upsert(ctx context.Context, id string, typ slot.Type, floor string) error
}

type AlertFilter struct {
	Status   *alert.Status
	Severity *alert.Severity
	SlotID   *string
	Limit    int
	Offset   int
}

type AlertRepository interface {
	Create(ctx context.Context, a *alert.Alert) error
	FindByID(ctx context.Context, id uuid.UUID) (*alert.Alert, error)
	UpdateStatus(ctx context.Context, a *alert.Alert) error
	List(ctx context.Context, filter AlertFilter) ([]alert.Alert, error)
}

type DeviceRepository interface {
	Upsert(ctx context.Context, d *device.Status) error
	List(ctx context.Context) ([]device.Status, error)
}

// JobRepository writes jobs in the caller's transaction, so a job exists only
// if the ledger change that needs it was committed.
type JobRepository interface {
	Schedule(ctx context.Context, queue job.Queue, kind job.Kind, payload any, opts job.Options) (job.ID, error)
	Cancel(ctx context.Context, id job.ID) error
	UpdatePayload(ctx context.Context, id job.ID, payload any) error
}
