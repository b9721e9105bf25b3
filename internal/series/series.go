package series

import (
	"sort"
	"time"
)

// Observation is one real trading session: a calendar date and its
// closing price. Dates carry no time-of-day component (UTC midnight).
type Observation struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// Series is an ordered sequence of observations for one symbol over one
// queried range. Dates are strictly increasing and unique; the series is
// read-only after construction.
type Series struct {
	obs []Observation
}

// New builds a Series from raw observations. Input order does not matter:
// dates are normalized to UTC midnight, sorted ascending, and duplicate
// dates collapsed keeping the first occurrence.
func New(obs []Observation) Series {
	normalized := make([]Observation, 0, len(obs))
	for _, o := range obs {
		o.Date = Day(o.Date)
		normalized = append(normalized, o)
	}

	sort.SliceStable(normalized, func(i, j int) bool {
		return normalized[i].Date.Before(normalized[j].Date)
	})

	out := normalized[:0]
	var prev time.Time
	for i, o := range normalized {
		if i > 0 && o.Date.Equal(prev) {
			continue
		}
		out = append(out, o)
		prev = o.Date
	}

	return Series{obs: out}
}

// Day normalizes t to a pure calendar date (UTC midnight).
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Date constructs a pure calendar date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Len returns the number of observations.
func (s Series) Len() int {
	return len(s.obs)
}

// Empty reports whether the series has no observations.
func (s Series) Empty() bool {
	return len(s.obs) == 0
}

// Observations returns the ordered observations. Callers must not mutate
// the returned slice.
func (s Series) Observations() []Observation {
	return s.obs
}

// Month returns the sub-series of observations falling in (year, month).
// The backtest resolves buy/sell anchors only inside these partitions so a
// sparse month never borrows a price from an adjacent one.
func (s Series) Month(year int, month time.Month) Series {
	var out []Observation
	for _, o := range s.obs {
		if o.Date.Year() == year && o.Date.Month() == month {
			out = append(out, o)
		}
	}
	return Series{obs: out}
}

// First returns the earliest observation.
func (s Series) First() (Observation, bool) {
	if len(s.obs) == 0 {
		return Observation{}, false
	}
	return s.obs[0], true
}

// Last returns the latest observation.
func (s Series) Last() (Observation, bool) {
	if len(s.obs) == 0 {
		return Observation{}, false
	}
	return s.obs[len(s.obs)-1], true
}
