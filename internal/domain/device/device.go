package device

import (
	"errors"
	"time"
)

var ErrMissingDeviceID = errors.New("device id is required")

// Status is the last heartbeat reported by a gate or camera controller.
type Status struct {
	DeviceID  string
	Status    string
	LastSeen  time.Time
	CPUTemp   *float64
	UpdatedAt time.Time
}

func NewStatus(deviceID, status string, lastSeen time.Time, cpuTemp *float64) (*Status, error) {
	if deviceID == "" {
		return nil, ErrMissingDeviceID
	}
	return &Status{DeviceID: deviceID, Status: status, LastSeen: lastSeen, CPUTemp: cpuTemp}, nil
}

func (s *Status) IsStale(now time.Time, window time.Duration) bool {
	return now.Sub(s.LastSeen) > window
}
