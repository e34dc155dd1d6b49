package response

import (
	"time"

	"garage-orchestrator/internal/infra/jobqueue"
	"garage-orchestrator/internal/usecase"

	"gopkg.in/guregu/null.v4"
)

type DeviceResponse struct {
	DeviceID string     `json:"deviceId"`
	Status   string     `json:"status"`
	LastSeen time.Time  `json:"lastSeen"`
	CPUTemp  null.Float `json:"cpuTemp"`
	Stale    bool       `json:"stale"`
}

func FromDevices(ds []usecase.DeviceView) []*DeviceResponse {
	out := make([]*DeviceResponse, len(ds))
	for i, d := range ds {
		out[i] = &DeviceResponse{
			DeviceID: d.DeviceID,
			Status:   d.Status.Status,
			LastSeen: d.LastSeen,
			CPUTemp:  null.FloatFromPtr(d.CPUTemp),
			Stale:    d.Stale,
		}
	}
	return out
}

type JobStatResponse struct {
	Queue string `json:"queue"`
	State string `json:"state"`
	Count int64  `json:"count"`
	Due   int64  `json:"due"`
}

func FromJobStats(stats []jobqueue.Stat) []*JobStatResponse {
	out := make([]*JobStatResponse, len(stats))
	for i, s := range stats {
		out[i] = &JobStatResponse{
			Queue: string(s.Queue),
			State: string(s.State),
			Count: s.Count,
			Due:   s.Due,
		}
	}
	return out
}
