package repository

import (
	"context"

	"garage-orchestrator/internal/domain/slot"
)

// LedgerSlotRepository reads the static slot classification kept in the ledger.
type LedgerSlotRepository struct {
	db DBTX
}

func NewLedgerSlotRepository(db DBTX) *LedgerSlotRepository {
	return &LedgerSlotRepository{db: db}
}

func (r *LedgerSlotRepository) TypesByID(ctx context.Context, ids []string) (map[string]slot.Type, error) {
	out := make(map[string]slot.Type, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.db.Query(ctx, `SELECT id, type FROM ledger_slots WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, repoErr("failed to query ledger slot types", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id, typ string
		if err := rows.Scan(&id, &typ); err != nil {
			return nil, repoErr("failed to scan ledger slot", err)
		}
		out[id] = slot.Type(typ)
	}
	if err := rows.Err(); err != nil {
		return nil, repoErr("failed to iterate ledger slots", err)
	}
	return out, nil
}

func (r *LedgerSlotRepository) IDsByType(ctx context.Context, typ slot.Type) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM ledger_slots WHERE type = $1 ORDER BY id`, string(typ))
	if err != nil {
		return nil, repoErr("failed to query ledger slots by type", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, repoErr("failed to scan ledger slot id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, repoErr("failed to iterate ledger slot ids", err)
	}
	return ids, nil
}

func (r *LedgerSlotRepository) Upsert(ctx context.Context, id string, typ slot.Type, floor string) error {
	const q = `INSERT INTO ledger_slots (id, type, floor) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET type = EXCLUDED.type, floor = EXCLUDED.floor`
	if _, err := r.db.Exec(ctx, q, id, string(typ), floor); err != nil {
		return repoErr("failed to upsert ledger slot", err)
	}
	return nil
}
