//go:build unit

package usecase_test

import (
	"io"
	"log/slog"
	"testing"

	"garage-orchestrator/internal/domain/slot"
	"garage-orchestrator/internal/pkg/errs"
	"garage-orchestrator/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvision(t *testing.T) {
	g := newGarage(t, regular("A-01"))
	_, err := g.slots.Update(t.Context(), "A-01", nil, func(s *slot.Slot) { s.OccupyUnauthorized("ABC123", t0) })
	require.NoError(t, err)
	uc := usecase.NewProvisionUseCase(g.ledger, g.slots, slog.New(slog.NewTextHandler(io.Discard, nil)))

	res, err := uc.Provision(t.Context(), []usecase.SlotLayout{
		{ID: "A-01", Type: slot.TypeRegular, Floor: "G"},
		{ID: "A-02", Type: slot.TypeRegular, Floor: "G"},
		{ID: "E-01", Type: slot.TypeEmergency, Floor: "B1"},
	})
	require.NoError(t, err)

	assert.Equal(t, usecase.ProvisionResult{Created: 2, Kept: 1}, res)
	assert.Equal(t, slot.StatusOccupied, g.slots.Slot("A-01").Status, "live state survives re-provisioning")
	assert.Equal(t, slot.StatusAvailable, g.slots.Slot("E-01").Status)

	types, err := g.ledger.LedgerSlots().TypesByID(t.Context(), []string{"A-02", "E-01"})
	require.NoError(t, err)
	assert.Equal(t, map[string]slot.Type{"A-02": slot.TypeRegular, "E-01": slot.TypeEmergency}, types)
}

func TestProvision_RejectsUnknownType(t *testing.T) {
	g := newGarage(t)
	uc := usecase.NewProvisionUseCase(g.ledger, g.slots, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := uc.Provision(t.Context(), []usecase.SlotLayout{
		{ID: "A-01", Type: slot.TypeRegular},
		{ID: "V-01", Type: slot.Type("VALET")},
	})

	assert.True(t, errs.Is(err, errs.ErrDomainValidation))
	_, err = g.slots.Get(t.Context(), "A-01")
	assert.Error(t, err, "nothing is provisioned from an invalid layout")
}
