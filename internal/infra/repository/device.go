package repository

import (
	"context"

	"garage-orchestrator/internal/domain/device"
	"garage-orchestrator/internal/pkg/pgconv"

	"github.com/jackc/pgx/v5/pgtype"
)

type DeviceRepository struct {
	db DBTX
}

func NewDeviceRepository(db DBTX) *DeviceRepository {
	return &DeviceRepository{db: db}
}

func (r *DeviceRepository) Upsert(ctx context.Context, d *device.Status) error {
	const q = `INSERT INTO device_status (device_id, status, last_seen, cpu_temp, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (device_id) DO UPDATE SET
			status = EXCLUDED.status,
			last_seen = EXCLUDED.last_seen,
			cpu_temp = EXCLUDED.cpu_temp,
			updated_at = NOW()
		RETURNING updated_at`
	err := r.db.QueryRow(ctx, q, d.DeviceID, d.Status, d.LastSeen, pgconv.Float64PtrToPgtype(d.CPUTemp)).
		Scan(&d.UpdatedAt)
	if err != nil {
		return repoErr("failed to upsert device status", err)
	}
	return nil
}

func (r *DeviceRepository) List(ctx context.Context) ([]device.Status, error) {
	rows, err := r.db.Query(ctx,
		`SELECT device_id, status, last_seen, cpu_temp, updated_at FROM device_status ORDER BY device_id`)
	if err != nil {
		return nil, repoErr("failed to list device status", err)
	}
	defer rows.Close()

	var out []device.Status
	for rows.Next() {
		var (
			d    device.Status
			temp pgtype.Float8
		)
		if err := rows.Scan(&d.DeviceID, &d.Status, &d.LastSeen, &temp, &d.UpdatedAt); err != nil {
			return nil, repoErr("failed to scan device status", err)
		}
		d.CPUTemp = pgconv.Float64PtrFromPgtype(temp)
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, repoErr("failed to iterate device status", err)
	}
	return out, nil
}
