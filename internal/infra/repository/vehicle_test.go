//go:build unit

package repository

import (
	"context"
	"testing"

	"garage-orchestrator/internal/infra"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestVehicleRepository_SetDebt(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name     string
		tag      pgconn.CommandTag
		execErr  error
		wantKind infra.RepositoryErrorKind
	}{
		{name: "success", tag: pgconn.NewCommandTag("UPDATE 1")},
		{name: "unknown vehicle", tag: pgconn.NewCommandTag("UPDATE 0"), wantKind: infra.KindNotFound},
		{name: "database error", execErr: assert.AnError, wantKind: infra.KindDBFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := new(mockDBTX)
			db.On("Exec", mock.Anything, mock.Anything, []any{id, true}).Return(tt.tag, tt.execErr)

			err := NewVehicleRepository(db).SetDebt(context.Background(), id, true)

			if tt.wantKind != "" {
				require.Error(t, err)
				assert.True(t, infra.IsKind(err, tt.wantKind))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestVehicleRepository_FindByPlate_NotFound(t *testing.T) {
	db := new(mockDBTX)
	db.On("QueryRow", mock.Anything, mock.Anything, []any{"ZZZ999"}).Return(fakeRow{err: pgx.ErrNoRows})

	_, err := NewVehicleRepository(db).FindByPlate(context.Background(), "ZZZ999")

	require.Error(t, err)
	assert.True(t, infra.IsNotFound(err))
}
