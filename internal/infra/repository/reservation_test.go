//go:build unit

package repository

import (
	"context"
	"testing"
	"time"

	"garage-orchestrator/internal/infra"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestReservationRepository_MarkFulfilled(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name     string
		tag      pgconn.CommandTag
		execErr  error
		wantKind infra.RepositoryErrorKind
	}{
		{name: "success", tag: pgconn.NewCommandTag("UPDATE 1")},
		{name: "already fulfilled", tag: pgconn.NewCommandTag("UPDATE 0"), wantKind: infra.KindNotFound},
		{name: "database error", tag: pgconn.CommandTag{}, execErr: assert.AnError, wantKind: infra.KindDBFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := new(mockDBTX)
			db.On("Exec", mock.Anything, mock.Anything, []any{id, "B-02"}).Return(tt.tag, tt.execErr)

			err := NewReservationRepository(db).MarkFulfilled(context.Background(), id, "B-02")

			if tt.wantKind != "" {
				require.Error(t, err)
				assert.True(t, infra.IsKind(err, tt.wantKind))
			} else {
				require.NoError(t, err)
			}
			db.AssertExpectations(t)
		})
	}
}

func TestReservationRepository_ReservedSlotIDs_EmptyInput(t *testing.T) {
	db := new(mockDBTX)

	got, err := NewReservationRepository(db).ReservedSlotIDs(context.Background(), nil, time.Now())

	require.NoError(t, err)
	assert.Empty(t, got)
	db.AssertNotCalled(t, "Query", mock.Anything, mock.Anything, mock.Anything)
}

func TestReservationRepository_FindAdmissible_WindowBounds(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 50, 0, 0, time.UTC)
	db := new(mockDBTX)
	db.On("QueryRow", mock.Anything, mock.Anything, []any{"ABC123", now.Add(15 * time.Minute), now}).
		Return(fakeRow{err: assert.AnError})

	_, err := NewReservationRepository(db).FindAdmissible(context.Background(), "ABC123", now, 15*time.Minute)

	require.Error(t, err)
	db.AssertExpectations(t)
}
