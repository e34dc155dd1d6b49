//go:build unit || e2e

// Package fake holds in-memory stand-ins for the ledger, the live slot store
// and the external gateways, used by usecase scenario tests.
package fake

import (
	"context"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"garage-orchestrator/internal/domain/alert"
	"garage-orchestrator/internal/domain/device"
	"garage-orchestrator/internal/domain/payment"
	"garage-orchestrator/internal/domain/reservation"
	"garage-orchestrator/internal/domain/session"
	"garage-orchestrator/internal/domain/slot"
	"garage-orchestrator/internal/domain/user"
	"garage-orchestrator/internal/domain/vehicle"
	"garage-orchestrator/internal/infra"
	"garage-orchestrator/internal/usecase/shared"

	"github.com/google/uuid"
)

func notFound(what string) error {
	return infra.NewRepositoryError(infra.KindNotFound, what+" not found", nil)
}

type ledgerSlot struct {
	typ   slot.Type
	floor string
}

// Ledger is an in-memory relational ledger. Rows are copied in and out so
// callers never share memory with the stored state.
type Ledger struct {
	mu           sync.Mutex
	sessions     map[uuid.UUID]session.Session
	reservations map[uuid.UUID]reservation.Reservation
	payments     []payment.Transaction
	vehicles     map[uuid.UUID]vehicle.Vehicle
	users        map[uuid.UUID]user.User
	slots        map[string]ledgerSlot
	alerts       []alert.Alert
	devices      map[string]device.Status

	jobs         *Scheduler

	// WithinErr makes every write transaction fail without running.
	WithinErr error
	// CommitErr runs the transaction and then rolls it back.
	CommitErr error
}

func NewLedger() *Ledger {
	return &Ledger{
		sessions:     map[uuid.UUID]session.Session{},
		reservations: map[uuid.UUID]reservation.Reservation{},
		vehicles:     map[uuid.UUID]vehicle.Vehicle{},
		users:        map[uuid.UUID]user.User{},
		slots:        map[string]ledgerSlot{},
		devices:      map[string]device.Status{},
	}
}

// UseScheduler routes jobs written inside transactions to s.
func (l *Ledger) UseScheduler(s *Scheduler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.jobs = s
}

func (l *Ledger) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	if l.WithinErr != nil {
		return l.WithinErr
	}
	restore := l.snapshot()
	err := fn(ctx, l)
	if err == nil {
		err = l.CommitErr
	}
	if err != nil {
		restore()
	}
	return err
}

// snapshot captures the ledger and its scheduler; the returned func puts
// them back.
func (l *Ledger) snapshot() func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	sessions := maps.Clone(l.sessions)
	reservations := maps.Clone(l.reservations)
	payments := slices.Clone(l.payments)
	vehicles := maps.Clone(l.vehicles)
	users := maps.Clone(l.users)
	alerts := slices.Clone(l.alerts)
	devices := maps.Clone(l.devices)
	jobs := l.scheduler()
	restoreJobs := jobs.snapshot()
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.sessions, l.reservations, l.payments = sessions, reservations, payments
		l.vehicles, l.users, l.alerts, l.devices = vehicles, users, alerts, devices
		restoreJobs()
	}
}

// scheduler must be called with mu held.
func (l *Ledger) scheduler() *Scheduler {
	if l.jobs == nil {
		l.jobs = NewScheduler()
	}
	return l.jobs
}

func (l *Ledger) Jobs() shared.JobRepository {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.scheduler()
}

func (l *Ledger) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return fn(ctx, l)
}

func (l *Ledger) WithDB(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return fn(ctx, l)
}

func (l *Ledger) Sessions() shared.SessionRepository         { return sessionRepo{l} }
func (l *Ledger) Reservations() shared.ReservationRepository { return reservationRepo{l} }
func (l *Ledger) Payments() shared.PaymentRepository         { return paymentRepo{l} }
func (l *Ledger) Vehicles() shared.VehicleRepository         { return vehicleRepo{l} }
func (l *Ledger) Users() shared.UserRepository               { return userRepo{l} }
func (l *Ledger) LedgerSlots() shared.LedgerSlotRepository   { return slotRepo{l} }
func (l *Ledger) Alerts() shared.AlertRepository             { return alertRepo{l} }
func (l *Ledger) Devices() shared.DeviceRepository           { return deviceRepo{l} }

// Seeding and inspection helpers.

func (l *Ledger) AddSlot(id string, typ slot.Type) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.slots[id] = ledgerSlot{typ: typ}
}

func (l *Ledger) AddUser(u *user.User) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.users[u.ID] = *u
}

func (l *Ledger) AddVehicle(v *vehicle.Vehicle) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.vehicles[v.ID] = *v
}

func (l *Ledger) AddReservation(r *reservation.Reservation) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reservations[r.ID] = *r
}

func (l *Ledger) AddSession(s *session.Session) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sessions[s.ID] = *s
}

func (l *Ledger) AddPayment(t *payment.Transaction) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.payments = append(l.payments, *t)
}

func (l *Ledger) Session(id uuid.UUID) session.Session {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sessions[id]
}

func (l *Ledger) AllSessions() []session.Session {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]session.Session, 0, len(l.sessions))
	for _, s := range l.sessions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntryTime.Before(out[j].EntryTime) })
	return out
}

func (l *Ledger) Reservation(id uuid.UUID) reservation.Reservation {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.reservations[id]
}

func (l *Ledger) Vehicle(id uuid.UUID) vehicle.Vehicle {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.vehicles[id]
}

func (l *Ledger) User(id uuid.UUID) user.User {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.users[id]
}

func (l *Ledger) Transactions() []payment.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]payment.Transaction(nil), l.payments...)
}

func (l *Ledger) AlertList() []alert.Alert {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]alert.Alert(nil), l.alerts...)
}

// AlertsOfType returns recorded alerts of typ in insertion order.
func (l *Ledger) AlertsOfType(typ alert.Type) []alert.Alert {
	var out []alert.Alert
	for _, a := range l.AlertList() {
		if a.Type == typ {
			out = append(out, a)
		}
	}
	return out
}

type sessionRepo struct{ l *Ledger }

func (r sessionRepo) Create(_ context.Context, s *session.Session) error {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	r.l.sessions[s.ID] = *s
	return nil
}

func (r sessionRepo) Update(_ context.Context, s *session.Session) error {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	if _, ok := r.l.sessions[s.ID]; !ok {
		return notFound("session")
	}
	r.l.sessions[s.ID] = *s
	return nil
}

func (r sessionRepo) FindByID(_ context.Context, id uuid.UUID) (*session.Session, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	s, ok := r.l.sessions[id]
	if !ok {
		return nil, notFound("session")
	}
	return &s, nil
}

func (r sessionRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	return r.FindByID(ctx, id)
}

func (r sessionRepo) find(match func(session.Session) bool) (*session.Session, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	var found *session.Session
	for _, s := range r.l.sessions {
		if !match(s) {
			continue
		}
		if found == nil || s.EntryTime.After(found.EntryTime) {
			c := s
			found = &c
		}
	}
	if found == nil {
		return nil, notFound("session")
	}
	return found, nil
}

func (r sessionRepo) FindActiveBySlot(_ context.Context, slotID string) (*session.Session, error) {
	return r.find(func(s session.Session) bool { return s.IsActive() && s.SlotID == slotID })
}

func (r sessionRepo) FindActiveByVehicle(_ context.Context, vehicleID uuid.UUID) (*session.Session, error) {
	return r.find(func(s session.Session) bool { return s.IsActive() && s.VehicleID == vehicleID })
}

func (r sessionRepo) FindByReservation(_ context.Context, reservationID uuid.UUID) (*session.Session, error) {
	return r.find(func(s session.Session) bool {
		return s.ReservationID != nil && *s.ReservationID == reservationID
	})
}

func (r sessionRepo) FindLatestByVehicle(_ context.Context, vehicleID uuid.UUID) (*session.Session, error) {
	return r.find(func(s session.Session) bool { return s.VehicleID == vehicleID })
}

func (r sessionRepo) List(_ context.Context, f shared.SessionFilter) ([]session.Session, error) {
	var out []session.Session
	for _, s := range r.l.AllSessions() {
		if f.Status != nil && s.Status != *f.Status {
			continue
		}
		if f.SlotID != nil && s.SlotID != *f.SlotID {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

type reservationRepo struct{ l *Ledger }

func (r reservationRepo) FindByID(_ context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	res, ok := r.l.reservations[id]
	if !ok {
		return nil, notFound("reservation")
	}
	return &res, nil
}

func (r reservationRepo) FindAdmissible(_ context.Context, plate string, now time.Time, earlyGrace time.Duration) (*reservation.Reservation, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	for _, res := range r.l.reservations {
		if res.IsConfirmed() && res.PlateNumber == plate && res.Window.AdmitsArrival(now, earlyGrace) {
			return &res, nil
		}
	}
	return nil, notFound("reservation")
}

func (r reservationRepo) MarkFulfilled(_ context.Context, id uuid.UUID, slotID string) error {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	res, ok := r.l.reservations[id]
	if !ok {
		return notFound("reservation")
	}
	res.Fulfill(slotID)
	r.l.reservations[id] = res
	return nil
}

func (r reservationRepo) ReservedSlotIDs(_ context.Context, slotIDs []string, until time.Time) (map[string]bool, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	out := map[string]bool{}
	for _, id := range slotIDs {
		for _, res := range r.l.reservations {
			if res.IsConfirmed() && res.SlotID == id && !res.Window.Start.After(until) {
				out[id] = true
			}
		}
	}
	return out, nil
}

func (r reservationRepo) NextConfirmedOnSlot(_ context.Context, slotID string, after time.Time) (*reservation.Reservation, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	var next *reservation.Reservation
	for _, res := range r.l.reservations {
		if !res.IsConfirmed() || res.SlotID != slotID || !res.Window.Start.After(after) {
			continue
		}
		if next == nil || res.Window.Start.Before(next.Window.Start) {
			c := res
			next = &c
		}
	}
	if next == nil {
		return nil, notFound("reservation")
	}
	return next, nil
}

func (r reservationRepo) Create(_ context.Context, res *reservation.Reservation) error {
	r.l.AddReservation(res)
	return nil
}

type paymentRepo struct{ l *Ledger }

func (r paymentRepo) Create(_ context.Context, t *payment.Transaction) error {
	r.l.AddPayment(t)
	return nil
}

func (r paymentRepo) Update(_ context.Context, t *payment.Transaction) error {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	for i := range r.l.payments {
		if r.l.payments[i].ID == t.ID {
			r.l.payments[i] = *t
			return nil
		}
	}
	return notFound("payment transaction")
}

func (r paymentRepo) FindLatestBySession(_ context.Context, sessionID uuid.UUID) (*payment.Transaction, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	for i := len(r.l.payments) - 1; i >= 0; i-- {
		if r.l.payments[i].SessionID == sessionID {
			t := r.l.payments[i]
			return &t, nil
		}
	}
	return nil, notFound("payment transaction")
}

type vehicleRepo struct{ l *Ledger }

func (r vehicleRepo) FindByID(_ context.Context, id uuid.UUID) (*vehicle.Vehicle, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	v, ok := r.l.vehicles[id]
	if !ok {
		return nil, notFound("vehicle")
	}
	return &v, nil
}

func (r vehicleRepo) FindByPlate(_ context.Context, plate string) (*vehicle.Vehicle, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	for _, v := range r.l.vehicles {
		if v.Plate == plate {
			return &v, nil
		}
	}
	return nil, notFound("vehicle")
}

func (r vehicleRepo) Upsert(ctx context.Context, v *vehicle.Vehicle) (*vehicle.Vehicle, error) {
	if existing, err := r.FindByPlate(ctx, v.Plate); err == nil {
		existing.UserID = v.UserID
		r.l.AddVehicle(existing)
		return existing, nil
	}
	r.l.AddVehicle(v)
	stored := *v
	return &stored, nil
}

func (r vehicleRepo) SetDebt(_ context.Context, id uuid.UUID, debt bool) error {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	v, ok := r.l.vehicles[id]
	if !ok {
		return notFound("vehicle")
	}
	v.HasOutstandingDebt = debt
	r.l.vehicles[id] = v
	return nil
}

type userRepo struct{ l *Ledger }

func (r userRepo) FindByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	u, ok := r.l.users[id]
	if !ok {
		return nil, notFound("user")
	}
	return &u, nil
}

func (r userRepo) FindByEmail(_ context.Context, email user.Email) (*user.User, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	for _, u := range r.l.users {
		if u.Email != nil && *u.Email == email.Value() {
			return &u, nil
		}
	}
	return nil, notFound("user")
}

func (r userRepo) UpsertByPhone(_ context.Context, u *user.User) (*user.User, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	for id, existing := range r.l.users {
		if existing.Phone != nil && u.Phone != nil && *existing.Phone == *u.Phone {
			existing.Name = u.Name
			if u.Email != nil {
				existing.Email = u.Email
			}
			r.l.users[id] = existing
			return &existing, nil
		}
	}
	r.l.users[u.ID] = *u
	stored := *u
	return &stored, nil
}

func (r userRepo) update(id uuid.UUID, fn func(*user.User)) error {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	u, ok := r.l.users[id]
	if !ok {
		return notFound("user")
	}
	fn(&u)
	r.l.users[id] = u
	return nil
}

func (r userRepo) SetStripeCustomer(_ context.Context, id uuid.UUID, customerID string) error {
	return r.update(id, func(u *user.User) { u.StripeCustomerID = &customerID })
}

func (r userRepo) SetDebt(_ context.Context, id uuid.UUID, debt bool) error {
	return r.update(id, func(u *user.User) { u.HasOutstandingDebt = debt })
}

func (r userRepo) UpdateLastLogin(_ context.Context, id uuid.UUID) error {
	now := time.Now()
	return r.update(id, func(u *user.User) { u.LastLogin = &now })
}

func (r userRepo) Create(_ context.Context, u *user.User) error {
	r.l.AddUser(u)
	return nil
}

type slotRepo struct{ l *Ledger }

func (r slotRepo) TypesByID(_ context.Context, ids []string) (map[string]slot.Type, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	out := make(map[string]slot.Type, len(ids))
	for _, id := range ids {
		if s, ok := r.l.slots[id]; ok {
			out[id] = s.typ
		}
	}
	return out, nil
}

func (r slotRepo) IDsByType(_ context.Context, typ slot.Type) ([]string, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	var ids []string
	for id, s := range r.l.slots {
		if s.typ == typ {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r slotRepo) Upsert(_ context.Context, id string, typ slot.Type, floor string) error {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	r.l.slots[id] = ledgerSlot{typ: typ, floor: floor}
	return nil
}

type alertRepo struct{ l *Ledger }

func (r alertRepo) Create(_ context.Context, a *alert.Alert) error {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	r.l.alerts = append(r.l.alerts, *a)
	return nil
}

func (r alertRepo) FindByID(_ context.Context, id uuid.UUID) (*alert.Alert, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	for _, a := range r.l.alerts {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, notFound("alert")
}

func (r alertRepo) UpdateStatus(_ context.Context, a *alert.Alert) error {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	for i := range r.l.alerts {
		if r.l.alerts[i].ID == a.ID {
			r.l.alerts[i] = *a
			return nil
		}
	}
	return notFound("alert")
}

func (r alertRepo) List(_ context.Context, f shared.AlertFilter) ([]alert.Alert, error) {
	var out []alert.Alert
	for _, a := range r.l.AlertList() {
		if f.Status != nil && a.Status != *f.Status {
			continue
		}
		if f.Severity != nil && a.Severity != *f.Severity {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

type deviceRepo struct{ l *Ledger }

func (r deviceRepo) Upsert(_ context.Context, d *device.Status) error {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	r.l.devices[d.DeviceID] = *d
	return nil
}

func (r deviceRepo) List(_ context.Context) ([]device.Status, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	out := make([]device.Status, 0, len(r.l.devices))
	for _, d := range r.l.devices {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DeviceID < out[j].DeviceID })
	return out, nil
}
