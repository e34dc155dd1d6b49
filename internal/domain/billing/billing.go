// Package billing computes parking fees. Amounts are returned in minor units.
package billing

import (
	"math"
	"time"
)

type Rates struct {
	RegularPerMinute float64
	PenaltyPerMinute float64
	ConflictFee      float64
	MinimumCharge    float64
}

func DefaultRates() Rates {
	return Rates{
		RegularPerMinute: 0.5,
		PenaltyPerMinute: 1.0,
		ConflictFee:      20,
		MinimumCharge:    5,
	}
}

type Input struct {
	EntryTime          time.Time
	ExitTime           *time.Time
	OvertimeStart      *time.Time
	OvertimeEnd        *time.Time
	InvolvedInConflict bool
}

// DurationMinutes rounds the elapsed time up to whole minutes; an inverted
// interval yields 0.
func DurationMinutes(start, end time.Time) int64 {
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return 0
	}
	return int64(math.Ceil(end.Sub(start).Minutes()))
}

// Calculate returns the fee in minor units. Missing or inverted times bill 0.
func (r Rates) Calculate(in Input) int64 {
	if in.EntryTime.IsZero() || in.ExitTime == nil || in.ExitTime.Before(in.EntryTime) {
		return 0
	}

	totalMinutes := DurationMinutes(in.EntryTime, *in.ExitTime)
	amount := float64(totalMinutes) * r.RegularPerMinute

	if in.OvertimeStart != nil {
		penaltyEnd := *in.ExitTime
		if in.OvertimeEnd != nil {
			penaltyEnd = *in.OvertimeEnd
		}
		if penaltyMinutes := DurationMinutes(*in.OvertimeStart, penaltyEnd); penaltyMinutes > 0 {
			amount += float64(penaltyMinutes) * (r.PenaltyPerMinute - r.RegularPerMinute)
		}
	}

	if in.InvolvedInConflict {
		amount += r.ConflictFee
	}

	// the minimum never applies to a zero-length stay
	if totalMinutes > 0 && amount < r.MinimumCharge {
		amount = r.MinimumCharge
	}
	return int64(math.Round(amount * 100))
}
