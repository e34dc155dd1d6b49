//go:build unit

package usecase_test

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"garage-orchestrator/internal/domain/job"
	"garage-orchestrator/internal/pkg/clock"
	"garage-orchestrator/internal/usecase"
	"garage-orchestrator/tests/common/fake"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDevice_Heartbeats(t *testing.T) {
	ledger := fake.NewLedger()
	broadcaster := &fake.Broadcaster{}
	clk := clock.NewMockClock(t0)
	uc := usecase.NewDeviceUseCase(ledger, broadcaster, clk, 2*time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))

	temp := 48.5
	require.NoError(t, uc.RecordHeartbeat(t.Context(), job.DeviceStatus{DeviceID: "cam-a01", Status: "online", CPUTemp: &temp}))
	require.NoError(t, uc.RecordHeartbeat(t.Context(), job.DeviceStatus{
		DeviceID: "gate-north", Status: "online", LastSeen: t0.Add(-5 * time.Minute),
	}))
	require.NoError(t, uc.RecordHeartbeat(t.Context(), job.DeviceStatus{Status: "online"}), "anonymous heartbeat is dropped")

	assert.Equal(t, []string{usecase.EventDeviceStatus, usecase.EventDeviceStatus}, broadcaster.Events)

	devices, err := uc.List(t.Context())
	require.NoError(t, err)
	require.Len(t, devices, 2)

	assert.Equal(t, "cam-a01", devices[0].DeviceID)
	assert.True(t, devices[0].LastSeen.Equal(t0), "missing lastSeen defaults to receipt time")
	assert.Equal(t, &temp, devices[0].CPUTemp)
	assert.False(t, devices[0].Stale)

	assert.Equal(t, "gate-north", devices[1].DeviceID)
	assert.True(t, devices[1].Stale)
}
