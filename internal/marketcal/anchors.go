package marketcal

import (
	"fmt"
	"time"

	"github.com/quantterm/backend/internal/series"
)

// Mode selects which anchor dates a year produces.
type Mode string

const (
	// ModeCalendar emits mid-month (15th) and month-end anchors.
	ModeCalendar Mode = "calendar"
	// ModeExpiry emits the configured derivative expiry anchors.
	ModeExpiry Mode = "expiry"
)

// Anchor labels for ModeCalendar.
const (
	LabelMidMonth = "mid-month"
	LabelMonthEnd = "month-end"
)

// Anchor is one (label, target-date) pair produced by the generator.
// Target is independent of any price series.
type Anchor struct {
	Label  string    `json:"label"`
	Month  int       `json:"month"` // 1-12
	Target time.Time `json:"target"`
}

// Generate produces the ordered anchor list for a year under the given
// mode. expiries configures ModeExpiry and is ignored by ModeCalendar.
//
// Anchors strictly after asOf are excluded. Exclusion is a sequential
// single-pass break: generation walks months 1-12 emitting each month's
// anchors in ascending date order and stops at the first future anchor.
// Every mode emits within-month anchors in ascending target order
// (mid-month before month-end; the configured expiries are sorted), so
// the break yields the same output as filtering the full set, for full
// and partial years alike.
func Generate(year int, mode Mode, expiries []ExpiryRule, asOf time.Time) []Anchor {
	cutoff := series.Day(asOf)

	var anchors []Anchor
	for m := time.January; m <= time.December; m++ {
		for _, a := range monthAnchors(year, m, mode, expiries) {
			if a.Target.After(cutoff) {
				return anchors
			}
			anchors = append(anchors, a)
		}
	}
	return anchors
}

// ParseMode maps a request string to a Mode. Empty input defaults to
// ModeCalendar.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", string(ModeCalendar):
		return ModeCalendar, nil
	case string(ModeExpiry):
		return ModeExpiry, nil
	default:
		return "", fmt.Errorf("unknown mode %q (valid: calendar, expiry)", s)
	}
}

func monthAnchors(year int, month time.Month, mode Mode, expiries []ExpiryRule) []Anchor {
	if mode == ModeCalendar {
		return []Anchor{
			{Label: LabelMidMonth, Month: int(month), Target: MidMonth(year, month)},
			{Label: LabelMonthEnd, Month: int(month), Target: MonthEnd(year, month)},
		}
	}

	anchors := make([]Anchor, 0, len(expiries))
	for _, rule := range expiries {
		anchors = append(anchors, Anchor{
			Label:  rule.Label,
			Month:  int(month),
			Target: rule.Date(year, month),
		})
	}
	// Expiry rules can land out of order within a month (a 4th Wednesday
	// follows a 3rd Friday); keep emission ascending by target date.
	for i := 1; i < len(anchors); i++ {
		for j := i; j > 0 && anchors[j].Target.Before(anchors[j-1].Target); j-- {
			anchors[j], anchors[j-1] = anchors[j-1], anchors[j]
		}
	}
	return anchors
}
