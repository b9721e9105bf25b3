package series

import (
	"fmt"
	"time"
)

// Resolved is the outcome of mapping one target calendar date to the
// closest actual trading day in a series. ActualDate is always a date
// present in the series; the resolver never invents prices.
type Resolved struct {
	Label      string    `json:"label"`
	Target     time.Time `json:"target"`
	ActualDate time.Time `json:"actual_date"`
	Price      float64   `json:"price"`
	OffsetDays int       `json:"offset_days"` // actual - target; positive = later
}

// Resolve finds the observation closest in absolute calendar distance to
// target. On an exact tie the earlier date wins: the scan walks the
// chronologically ordered series and only a strictly smaller distance
// replaces the current best. ok is false when the series is empty.
//
// A linear scan is deliberate: a year of daily data is ~250 points.
func Resolve(target time.Time, s Series) (Resolved, bool) {
	if s.Empty() {
		return Resolved{}, false
	}

	target = Day(target)

	best := s.obs[0]
	bestDist := absDays(best.Date, target)
	for _, o := range s.obs[1:] {
		if d := absDays(o.Date, target); d < bestDist {
			best = o
			bestDist = d
		}
	}

	return Resolved{
		Target:     target,
		ActualDate: best.Date,
		Price:      best.Close,
		OffsetDays: DaysBetween(target, best.Date),
	}, true
}

// DaysBetween returns the signed number of calendar days from a to b.
// Both arguments must be pure dates (UTC midnight).
func DaysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

func absDays(a, b time.Time) int {
	d := DaysBetween(a, b)
	if d < 0 {
		return -d
	}
	return d
}

// OffsetText renders an offset as "same day", "N days later" or
// "N days earlier" for display and CSV export.
func OffsetText(offsetDays int) string {
	switch {
	case offsetDays > 0:
		return fmt.Sprintf("%d day(s) later", offsetDays)
	case offsetDays < 0:
		return fmt.Sprintf("%d day(s) earlier", -offsetDays)
	default:
		return "same day"
	}
}
