// Package marketcal computes calendar anchor dates from business-calendar
// rules: month-end, mid-month, and Nth-weekday-of-month derivative expiry
// conventions. All functions are pure and operate on calendar dates only
// (UTC midnight, no timezone handling).
package marketcal

import (
	"time"

	"github.com/quantterm/backend/internal/series"
)

// ExpiryRule names a derivative expiry convention as data: the N-th
// occurrence of a weekday in a month. The weekday/ordinal pair is market
// configuration, never hardcoded per market.
type ExpiryRule struct {
	Label   string       `json:"label"`
	Weekday time.Weekday `json:"weekday"`
	Nth     int          `json:"nth"`
}

// Date returns the rule's date in (year, month).
func (r ExpiryRule) Date(year int, month time.Month) time.Time {
	return NthWeekday(year, month, r.Weekday, r.Nth)
}

// MonthEnd returns the last calendar day of (year, month).
func MonthEnd(year int, month time.Month) time.Time {
	// Day 0 of the next month is the last day of this one.
	return series.Date(year, month+1, 0)
}

// MidMonth returns the 15th of (year, month). This is a calendar date,
// not a trading date; it may fall on a weekend or holiday.
func MidMonth(year int, month time.Month) time.Time {
	return series.Date(year, month, 15)
}

// NthWeekday returns the date of the n-th occurrence of weekday in
// (year, month). When the month has fewer than n occurrences it falls
// back to the last occurrence instead of failing.
//
// NOTE: the fallback is a deliberate convention carried from every prior
// revision of the expiry rules; confirm with stakeholders before relying
// on it for months where the ordinal genuinely overflows.
func NthWeekday(year int, month time.Month, weekday time.Weekday, n int) time.Time {
	var last time.Time
	count := 0

	end := MonthEnd(year, month).Day()
	for day := 1; day <= end; day++ {
		d := series.Date(year, month, day)
		if d.Weekday() != weekday {
			continue
		}
		count++
		last = d
		if count == n {
			return d
		}
	}

	return last
}
