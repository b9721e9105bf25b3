package marketcal

import (
	"testing"
	"time"
)

func TestMonthEnd(t *testing.T) {
	tests := []struct {
		name  string
		year  int
		month time.Month
		want  string
	}{
		{"leap february", 2024, time.February, "2024-02-29"},
		{"non-leap february", 2023, time.February, "2023-02-28"},
		{"31-day month", 2024, time.January, "2024-01-31"},
		{"30-day month", 2024, time.April, "2024-04-30"},
		{"december rolls the year", 2024, time.December, "2024-12-31"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MonthEnd(tt.year, tt.month).Format("2006-01-02"); got != tt.want {
				t.Errorf("MonthEnd(%d, %v) = %s, want %s", tt.year, tt.month, got, tt.want)
			}
		})
	}
}

func TestMidMonth(t *testing.T) {
	got := MidMonth(2024, time.June)
	if got.Format("2006-01-02") != "2024-06-15" {
		t.Errorf("MidMonth(2024, June) = %v, want 2024-06-15", got)
	}
}

func TestNthWeekday(t *testing.T) {
	tests := []struct {
		name    string
		year    int
		month   time.Month
		weekday time.Weekday
		n       int
		want    string
	}{
		{"3rd friday jan 2024", 2024, time.January, time.Friday, 3, "2024-01-19"},
		{"4th wednesday jan 2024", 2024, time.January, time.Wednesday, 4, "2024-01-24"},
		{"2nd friday jan 2024", 2024, time.January, time.Friday, 2, "2024-01-12"},
		{"1st monday apr 2024", 2024, time.April, time.Monday, 1, "2024-04-01"},
		{"3rd friday feb 2024", 2024, time.February, time.Friday, 3, "2024-02-16"},
		// Feb 2024 has only 4 Fridays; the 5th falls back to the last.
		{"ordinal overflow falls back to last", 2024, time.February, time.Friday, 5, "2024-02-23"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NthWeekday(tt.year, tt.month, tt.weekday, tt.n)
			if got.Format("2006-01-02") != tt.want {
				t.Errorf("NthWeekday(%d, %v, %v, %d) = %s, want %s",
					tt.year, tt.month, tt.weekday, tt.n, got.Format("2006-01-02"), tt.want)
			}
			if got.Weekday() != tt.weekday {
				t.Errorf("result weekday = %v, want %v", got.Weekday(), tt.weekday)
			}
		})
	}
}

func TestExpiryRuleDate(t *testing.T) {
	rule := ExpiryRule{Label: "futures-expiry", Weekday: time.Friday, Nth: 3}
	if got := rule.Date(2024, time.March).Format("2006-01-02"); got != "2024-03-15" {
		t.Errorf("Date(2024, March) = %s, want 2024-03-15", got)
	}
}
