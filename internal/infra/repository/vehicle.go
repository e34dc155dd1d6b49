package repository

import (
	"context"

	"garage-orchestrator/internal/domain/vehicle"

	"github.com/google/uuid"
)

const vehicleColumns = `id, user_id, plate, has_outstanding_debt, created_at, updated_at`

type VehicleRepository struct {
	db DBTX
}

func NewVehicleRepository(db DBTX) *VehicleRepository {
	return &VehicleRepository{db: db}
}

func (r *VehicleRepository) FindByID(ctx context.Context, id uuid.UUID) (*vehicle.Vehicle, error) {
	q := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1`
	v, err := scanVehicle(r.db.QueryRow(ctx, q, id))
	if err != nil {
		return nil, repoErr("failed to find vehicle by id", err)
	}
	return v, nil
}

func (r *VehicleRepository) FindByPlate(ctx context.Context, plate string) (*vehicle.Vehicle, error) {
	q := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE plate = $1`
	v, err := scanVehicle(r.db.QueryRow(ctx, q, plate))
	if err != nil {
		return nil, repoErr("failed to find vehicle by plate", err)
	}
	return v, nil
}

func (r *VehicleRepository) Upsert(ctx context.Context, v *vehicle.Vehicle) (*vehicle.Vehicle, error) {
	q := `INSERT INTO vehicles (id, user_id, plate)
		VALUES ($1, $2, $3)
		ON CONFLICT (plate) DO UPDATE SET user_id = EXCLUDED.user_id, updated_at = NOW()
		RETURNING ` + vehicleColumns
	stored, err := scanVehicle(r.db.QueryRow(ctx, q, v.ID, v.UserID, v.Plate))
	if err != nil {
		return nil, repoErr("failed to upsert vehicle", err)
	}
	return stored, nil
}

func (r *VehicleRepository) SetDebt(ctx context.Context, id uuid.UUID, debt bool) error {
	const q = `UPDATE vehicles SET has_outstanding_debt = $2, updated_at = NOW() WHERE id = $1`
	tag, err := r.db.Exec(ctx, q, id, debt)
	if err != nil {
		return repoErr("failed to update vehicle debt flag", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound("vehicle not found")
	}
	return nil
}

func scanVehicle(row scanner) (*vehicle.Vehicle, error) {
	var v vehicle.Vehicle
	if err := row.Scan(&v.ID, &v.UserID, &v.Plate, &v.HasOutstandingDebt, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return nil, err
	}
	return &v, nil
}
