package repository

import (
	"context"
	"time"

	"garage-orchestrator/internal/domain/payment"
	"garage-orchestrator/internal/domain/reservation"
	"garage-orchestrator/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const reservationColumns = `r.id, r.user_id, r.vehicle_id, v.plate, r.slot_id, r.start_time, r.end_time,
	r.status, r.is_stacked, r.payment_method, r.payment_intent_id, r.created_at, r.updated_at`

type ReservationRepository struct {
	db DBTX
}

func NewReservationRepository(db DBTX) *ReservationRepository {
	return &ReservationRepository{db: db}
}

func (r *ReservationRepository) FindByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	q := `SELECT ` + reservationColumns + `
		FROM reservations r JOIN vehicles v ON v.id = r.vehicle_id
		WHERE r.id = $1`
	res, err := scanReservation(r.db.QueryRow(ctx, q, id))
	if err != nil {
		return nil, repoErr("failed to find reservation by id", err)
	}
	return res, nil
}

func (r *ReservationRepository) FindAdmissible(ctx context.Context, plate string, now time.Time, earlyGrace time.Duration) (*reservation.Reservation, error) {
	q := `SELECT ` + reservationColumns + `
		FROM reservations r JOIN vehicles v ON v.id = r.vehicle_id
		WHERE v.plate = $1 AND r.status = 'CONFIRMED'
		  AND r.start_time <= $2 AND r.end_time >= $3
		ORDER BY r.start_time ASC
		LIMIT 1`
	res, err := scanReservation(r.db.QueryRow(ctx, q, plate, now.Add(earlyGrace), now))
	if err != nil {
		return nil, repoErr("failed to find admissible reservation", err)
	}
	return res, nil
}

// MarkFulfilled only succeeds on a CONFIRMED reservation, so a replayed entry
// cannot fulfil it twice.
func (r *ReservationRepository) MarkFulfilled(ctx context.Context, id uuid.UUID, slotID string) error {
	const q = `UPDATE reservations
		SET status = 'FULFILLED', slot_id = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'CONFIRMED'`
	tag, err := r.db.Exec(ctx, q, id, slotID)
	if err != nil {
		return repoErr("failed to fulfil reservation", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound("confirmed reservation not found")
	}
	return nil
}

func (r *ReservationRepository) ReservedSlotIDs(ctx context.Context, slotIDs []string, until time.Time) (map[string]bool, error) {
	out := make(map[string]bool)
	if len(slotIDs) == 0 {
		return out, nil
	}
	const q = `SELECT DISTINCT slot_id FROM reservations
		WHERE status = 'CONFIRMED' AND slot_id = ANY($1) AND start_time <= $2`
	rows, err := r.db.Query(ctx, q, slotIDs, until)
	if err != nil {
		return nil, repoErr("failed to query reserved slots", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, repoErr("failed to scan reserved slot", err)
		}
		out[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, repoErr("failed to iterate reserved slots", err)
	}
	return out, nil
}

func (r *ReservationRepository) NextConfirmedOnSlot(ctx context.Context, slotID string, after time.Time) (*reservation.Reservation, error) {
	q := `SELECT ` + reservationColumns + `
		FROM reservations r JOIN vehicles v ON v.id = r.vehicle_id
		WHERE r.slot_id = $1 AND r.status = 'CONFIRMED' AND r.start_time > $2
		ORDER BY r.start_time ASC
		LIMIT 1`
	res, err := scanReservation(r.db.QueryRow(ctx, q, slotID, after))
	if err != nil {
		return nil, repoErr("failed to find next reservation on slot", err)
	}
	return res, nil
}

func (r *ReservationRepository) Create(ctx context.Context, res *reservation.Reservation) error {
	const q = `INSERT INTO reservations (
		id, user_id, vehicle_id, slot_id, start_time, end_time, status, is_stacked,
		payment_method, payment_intent_id
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	RETURNING created_at, updated_at`
	err := r.db.QueryRow(ctx, q,
		res.ID, res.UserID, res.VehicleID, res.SlotID, res.Window.Start, res.Window.End,
		string(res.Status), res.IsStacked, string(res.PaymentMethod),
		pgconv.StringPtrToPgtype(res.PaymentIntentID),
	).Scan(&res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return repoErr("failed to create reservation", err)
	}
	return nil
}

func scanReservation(row scanner) (*reservation.Reservation, error) {
	var (
		res            reservation.Reservation
		status, method string
		intentID       pgtype.Text
	)
	err := row.Scan(
		&res.ID, &res.UserID, &res.VehicleID, &res.PlateNumber, &res.SlotID,
		&res.Window.Start, &res.Window.End, &status, &res.IsStacked, &method, &intentID,
		&res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	res.Status = reservation.Status(status)
	res.PaymentMethod = payment.Method(method)
	res.PaymentIntentID = pgconv.StringPtrFromPgtype(intentID)
	return &res, nil
}
