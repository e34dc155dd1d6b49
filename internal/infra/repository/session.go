package repository

import (
	"context"
	"fmt"
	"strings"

	"garage-orchestrator/internal/domain/payment"
	"garage-orchestrator/internal/domain/session"
	"garage-orchestrator/internal/pkg/pgconv"
	"garage-orchestrator/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const sessionColumns = `id, user_id, vehicle_id, slot_id, status, entry_time, expected_exit_time,
	exit_time, overtime_start, overtime_end, is_extended, involved_in_conflict, reservation_id,
	payment_method, payment_intent_id, exit_check_job_id, occupancy_check_job_id, created_at, updated_at`

type SessionRepository struct {
	db DBTX
}

func NewSessionRepository(db DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, s *session.Session) error {
	const q = `INSERT INTO parking_sessions (
		id, user_id, vehicle_id, slot_id, status, entry_time, expected_exit_time,
		reservation_id, payment_method, payment_intent_id, exit_check_job_id, occupancy_check_job_id
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	RETURNING created_at, updated_at`

	err := r.db.QueryRow(ctx, q,
		s.ID, s.UserID, s.VehicleID, s.SlotID, string(s.Status), s.EntryTime, s.ExpectedExitTime,
		pgconv.UUIDPtrToPgtype(s.ReservationID), string(s.PaymentMethod),
		pgconv.StringPtrToPgtype(s.PaymentIntentID),
		pgconv.UUIDPtrToPgtype(s.ExitCheckJobID), pgconv.UUIDPtrToPgtype(s.OccupancyCheckJobID),
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return repoErr("failed to create parking session", err)
	}
	return nil
}

func (r *SessionRepository) Update(ctx context.Context, s *session.Session) error {
	const q = `UPDATE parking_sessions SET
		slot_id = $2, status = $3, expected_exit_time = $4, exit_time = $5,
		overtime_start = $6, overtime_end = $7, is_extended = $8, involved_in_conflict = $9,
		payment_intent_id = $10, exit_check_job_id = $11, occupancy_check_job_id = $12,
		updated_at = NOW()
	WHERE id = $1
	RETURNING updated_at`

	err := r.db.QueryRow(ctx, q,
		s.ID, s.SlotID, string(s.Status), s.ExpectedExitTime,
		pgconv.TimePtrToPgtype(s.ExitTime),
		pgconv.TimePtrToPgtype(s.OvertimeStart), pgconv.TimePtrToPgtype(s.OvertimeEnd),
		s.IsExtended, s.InvolvedInConflict,
		pgconv.StringPtrToPgtype(s.PaymentIntentID),
		pgconv.UUIDPtrToPgtype(s.ExitCheckJobID), pgconv.UUIDPtrToPgtype(s.OccupancyCheckJobID),
	).Scan(&s.UpdatedAt)
	if err != nil {
		return repoErr("failed to update parking session", err)
	}
	return nil
}

func (r *SessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	q := `SELECT ` + sessionColumns + ` FROM parking_sessions WHERE id = $1`
	return r.findOne(ctx, "failed to find session by id", q, id)
}

func (r *SessionRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	q := `SELECT ` + sessionColumns + ` FROM parking_sessions WHERE id = $1 FOR UPDATE`
	return r.findOne(ctx, "failed to lock session", q, id)
}

func (r *SessionRepository) FindActiveBySlot(ctx context.Context, slotID string) (*session.Session, error) {
	q := `SELECT ` + sessionColumns + ` FROM parking_sessions
		WHERE slot_id = $1 AND status = 'ACTIVE'
		ORDER BY entry_time DESC LIMIT 1`
	return r.findOne(ctx, "failed to find active session by slot", q, slotID)
}

func (r *SessionRepository) FindActiveByVehicle(ctx context.Context, vehicleID uuid.UUID) (*session.Session, error) {
	q := `SELECT ` + sessionColumns + ` FROM parking_sessions
		WHERE vehicle_id = $1 AND status = 'ACTIVE'`
	return r.findOne(ctx, "failed to find active session by vehicle", q, vehicleID)
}

func (r *SessionRepository) FindByReservation(ctx context.Context, reservationID uuid.UUID) (*session.Session, error) {
	q := `SELECT ` + sessionColumns + ` FROM parking_sessions
		WHERE reservation_id = $1
		ORDER BY entry_time DESC LIMIT 1`
	return r.findOne(ctx, "failed to find session by reservation", q, reservationID)
}

// FindLatestByVehicle ignores status on purpose: the exit gate needs the most
// recent session even when it is still closing.
func (r *SessionRepository) FindLatestByVehicle(ctx context.Context, vehicleID uuid.UUID) (*session.Session, error) {
	q := `SELECT ` + sessionColumns + ` FROM parking_sessions
		WHERE vehicle_id = $1
		ORDER BY entry_time DESC LIMIT 1`
	return r.findOne(ctx, "failed to find latest session by vehicle", q, vehicleID)
}

func (r *SessionRepository) List(ctx context.Context, filter shared.SessionFilter) ([]session.Session, error) {
	var (
		conds []string
		args  []any
	)
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.SlotID != nil {
		args = append(args, *filter.SlotID)
		conds = append(conds, fmt.Sprintf("slot_id = $%d", len(args)))
	}

	var b strings.Builder
	b.WriteString(`SELECT ` + sessionColumns + ` FROM parking_sessions`)
	if len(conds) > 0 {
		b.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}
	args = append(args, pageLimit(filter.Limit), filter.Offset)
	fmt.Fprintf(&b, " ORDER BY entry_time DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.Query(ctx, b.String(), args...)
	if err != nil {
		return nil, repoErr("failed to list sessions", err)
	}
	defer rows.Close()

	var out []session.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, repoErr("failed to scan session", err)
		}
		out = append(out, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, repoErr("failed to iterate sessions", err)
	}
	return out, nil
}

func (r *SessionRepository) findOne(ctx context.Context, msg, q string, args ...any) (*session.Session, error) {
	s, err := scanSession(r.db.QueryRow(ctx, q, args...))
	if err != nil {
		return nil, repoErr(msg, err)
	}
	return s, nil
}

func scanSession(row scanner) (*session.Session, error) {
	var (
		s                      session.Session
		status, method         string
		exitTime, otStart      pgtype.Timestamptz
		otEnd                  pgtype.Timestamptz
		reservationID          pgtype.UUID
		exitJobID, occupancyID pgtype.UUID
		intentID               pgtype.Text
	)
	err := row.Scan(
		&s.ID, &s.UserID, &s.VehicleID, &s.SlotID, &status, &s.EntryTime, &s.ExpectedExitTime,
		&exitTime, &otStart, &otEnd, &s.IsExtended, &s.InvolvedInConflict, &reservationID,
		&method, &intentID, &exitJobID, &occupancyID, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.Status = session.Status(status)
	s.PaymentMethod = payment.Method(method)
	s.ExitTime = pgconv.TimePtrFromPgtype(exitTime)
	s.OvertimeStart = pgconv.TimePtrFromPgtype(otStart)
	s.OvertimeEnd = pgconv.TimePtrFromPgtype(otEnd)
	s.ReservationID = pgconv.UUIDPtrFromPgtype(reservationID)
	s.PaymentIntentID = pgconv.StringPtrFromPgtype(intentID)
	s.ExitCheckJobID = pgconv.UUIDPtrFromPgtype(exitJobID)
	s.OccupancyCheckJobID = pgconv.UUIDPtrFromPgtype(occupancyID)
	return &s, nil
}
