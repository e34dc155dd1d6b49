//go:build unit

package repository

import (
	"context"
	"testing"
	"time"

	"garage-orchestrator/internal/domain/payment"
	"garage-orchestrator/internal/domain/session"
	"garage-orchestrator/internal/infra"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T) *session.Session {
	t.Helper()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	intent := "pi_123"
	s, err := session.Start(session.StartParams{
		UserID:           uuid.New(),
		VehicleID:        uuid.New(),
		SlotID:           "A-01",
		EntryTime:        now,
		ExpectedExitTime: now.Add(time.Hour),
		PaymentMethod:    payment.MethodCard,
		PaymentIntentID:  &intent,
	})
	require.NoError(t, err)
	return s
}

func TestSessionRepository_Create(t *testing.T) {
	tests := []struct {
		name     string
		row      fakeRow
		wantKind infra.RepositoryErrorKind
	}{
		{
			name: "success",
			row: fakeRow{fill: func(dest ...any) {
				*dest[0].(*time.Time) = time.Unix(100, 0)
				*dest[1].(*time.Time) = time.Unix(100, 0)
			}},
		},
		{
			name:     "second active session for the vehicle",
			row:      fakeRow{err: &pgconn.PgError{Code: "23505"}},
			wantKind: infra.KindDuplicateKey,
		},
		{
			name:     "unknown slot",
			row:      fakeRow{err: &pgconn.PgError{Code: "23503"}},
			wantKind: infra.KindForeignKeyViolated,
		},
		{
			name:     "database error",
			row:      fakeRow{err: assert.AnError},
			wantKind: infra.KindDBFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := new(mockDBTX)
			db.On("QueryRow", mock.Anything, mock.Anything, mock.Anything).Return(tt.row)
			s := newTestSession(t)

			err := NewSessionRepository(db).Create(context.Background(), s)

			if tt.wantKind != "" {
				require.Error(t, err)
				assert.True(t, infra.IsKind(err, tt.wantKind))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, time.Unix(100, 0), s.CreatedAt)
			db.AssertExpectations(t)
		})
	}
}

func TestSessionRepository_FindByID(t *testing.T) {
	id := uuid.New()
	resID := uuid.New()
	exitJob := uuid.New()
	entry := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("maps nullable columns", func(t *testing.T) {
		db := new(mockDBTX)
		db.On("QueryRow", mock.Anything, mock.Anything, []any{id}).Return(fakeRow{fill: func(dest ...any) {
			*dest[0].(*uuid.UUID) = id
			*dest[3].(*string) = "A-01"
			*dest[4].(*string) = "ACTIVE"
			*dest[5].(*time.Time) = entry
			*dest[6].(*time.Time) = entry.Add(time.Hour)
			*dest[12].(*pgtype.UUID) = pgtype.UUID{Bytes: resID, Valid: true}
			*dest[13].(*string) = "CASH"
			*dest[15].(*pgtype.UUID) = pgtype.UUID{Bytes: exitJob, Valid: true}
		}})

		s, err := NewSessionRepository(db).FindByID(context.Background(), id)

		require.NoError(t, err)
		assert.Equal(t, id, s.ID)
		assert.Equal(t, session.StatusActive, s.Status)
		assert.Equal(t, payment.MethodCash, s.PaymentMethod)
		require.NotNil(t, s.ReservationID)
		assert.Equal(t, resID, *s.ReservationID)
		require.NotNil(t, s.ExitCheckJobID)
		assert.Equal(t, exitJob, *s.ExitCheckJobID)
		assert.Nil(t, s.OccupancyCheckJobID)
		assert.Nil(t, s.ExitTime)
		assert.Nil(t, s.PaymentIntentID)
	})

	t.Run("not found", func(t *testing.T) {
		db := new(mockDBTX)
		db.On("QueryRow", mock.Anything, mock.Anything, []any{id}).Return(fakeRow{err: pgx.ErrNoRows})

		_, err := NewSessionRepository(db).FindByID(context.Background(), id)

		require.Error(t, err)
		assert.True(t, infra.IsNotFound(err))
	})
}
