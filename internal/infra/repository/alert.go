package repository

import (
	"context"
	"fmt"
	"strings"

	"garage-orchestrator/internal/domain/alert"
	"garage-orchestrator/internal/pkg/pgconv"
	"garage-orchestrator/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const alertColumns = `id, alert_type, severity, title, description, slot_id, plate_number, details,
	status, resolved_by, resolved_at, occurred_at, created_at`

type AlertRepository struct {
	db DBTX
}

func NewAlertRepository(db DBTX) *AlertRepository {
	return &AlertRepository{db: db}
}

func (r *AlertRepository) Create(ctx context.Context, a *alert.Alert) error {
	const q = `INSERT INTO alerts (
		id, alert_type, severity, title, description, slot_id, plate_number, details, status, occurred_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	RETURNING created_at`
	details := a.Details
	if details == nil {
		details = map[string]any{}
	}
	err := r.db.QueryRow(ctx, q,
		a.ID, string(a.Type), string(a.Severity), a.Title, a.Description,
		pgconv.StringPtrToPgtype(a.SlotID), pgconv.StringPtrToPgtype(a.PlateNumber),
		details, string(a.Status), a.Timestamp,
	).Scan(&a.CreatedAt)
	if err != nil {
		return repoErr("failed to create alert", err)
	}
	return nil
}

func (r *AlertRepository) FindByID(ctx context.Context, id uuid.UUID) (*alert.Alert, error) {
	q := `SELECT ` + alertColumns + ` FROM alerts WHERE id = $1`
	a, err := scanAlert(r.db.QueryRow(ctx, q, id))
	if err != nil {
		return nil, repoErr("failed to find alert by id", err)
	}
	return a, nil
}

func (r *AlertRepository) UpdateStatus(ctx context.Context, a *alert.Alert) error {
	const q = `UPDATE alerts SET status = $2, resolved_by = $3, resolved_at = $4 WHERE id = $1`
	tag, err := r.db.Exec(ctx, q, a.ID, string(a.Status),
		pgconv.UUIDPtrToPgtype(a.ResolvedBy), pgconv.TimePtrToPgtype(a.ResolvedAt))
	if err != nil {
		return repoErr("failed to update alert status", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound("alert not found")
	}
	return nil
}

func (r *AlertRepository) List(ctx context.Context, filter shared.AlertFilter) ([]alert.Alert, error) {
	var (
		conds []string
		args  []any
	)
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Severity != nil {
		args = append(args, string(*filter.Severity))
		conds = append(conds, fmt.Sprintf("severity = $%d", len(args)))
	}
	if filter.SlotID != nil {
		args = append(args, *filter.SlotID)
		conds = append(conds, fmt.Sprintf("slot_id = $%d", len(args)))
	}

	var b strings.Builder
	b.WriteString(`SELECT ` + alertColumns + ` FROM alerts`)
	if len(conds) > 0 {
		b.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}
	args = append(args, pageLimit(filter.Limit), filter.Offset)
	fmt.Fprintf(&b, " ORDER BY occurred_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.Query(ctx, b.String(), args...)
	if err != nil {
		return nil, repoErr("failed to list alerts", err)
	}
	defer rows.Close()

	var out []alert.Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, repoErr("failed to scan alert", err)
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, repoErr("failed to iterate alerts", err)
	}
	return out, nil
}

func scanAlert(row scanner) (*alert.Alert, error) {
	var (
		a                   alert.Alert
		typ, sev, status    string
		slotID, plateNumber pgtype.Text
		resolvedBy          pgtype.UUID
		resolvedAt          pgtype.Timestamptz
	)
	err := row.Scan(
		&a.ID, &typ, &sev, &a.Title, &a.Description, &slotID, &plateNumber, &a.Details,
		&status, &resolvedBy, &resolvedAt, &a.Timestamp, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Type = alert.Type(typ)
	a.Severity = alert.Severity(sev)
	a.Status = alert.Status(status)
	a.SlotID = pgconv.StringPtrFromPgtype(slotID)
	a.PlateNumber = pgconv.StringPtrFromPgtype(plateNumber)
	a.ResolvedBy = pgconv.UUIDPtrFromPgtype(resolvedBy)
	a.ResolvedAt = pgconv.TimePtrFromPgtype(resolvedAt)
	return &a, nil
}
