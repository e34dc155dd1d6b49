//go:build unit

package repository

import (
	"context"
	"testing"
	"time"

	"garage-orchestrator/internal/domain/alert"
	"garage-orchestrator/internal/infra"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAlertRepository_Create_DefaultsDetails(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	a := alert.New(alert.TypeNoShow, alert.SeverityMedium, "No show", "vehicle never arrived", at, alert.WithSlot("A-01"))

	db := new(mockDBTX)
	db.On("QueryRow", mock.Anything, mock.Anything, mock.MatchedBy(func(args []any) bool {
		details, ok := args[7].(map[string]any)
		return ok && len(details) == 0 && args[9] == at
	})).Return(fakeRow{fill: func(dest ...any) {
		*dest[0].(*time.Time) = at
	}})

	err := NewAlertRepository(db).Create(context.Background(), a)

	require.NoError(t, err)
	assert.Equal(t, at, a.CreatedAt)
	db.AssertExpectations(t)
}

func TestAlertRepository_Create_Failure(t *testing.T) {
	a := alert.New(alert.TypeViolation, alert.SeverityCritical, "Violation", "maintenance slot used", time.Now())
	db := new(mockDBTX)
	db.On("QueryRow", mock.Anything, mock.Anything, mock.Anything).Return(fakeRow{err: assert.AnError})

	err := NewAlertRepository(db).Create(context.Background(), a)

	require.Error(t, err)
	assert.True(t, infra.IsKind(err, infra.KindDBFailure))
}
