package series

import (
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		obs       []Observation
		wantLen   int
		wantFirst string // first date, "" for empty
	}{
		{
			name: "unsorted input gets sorted",
			obs: []Observation{
				{Date: Date(2024, time.January, 17), Close: 3},
				{Date: Date(2024, time.January, 15), Close: 1},
				{Date: Date(2024, time.January, 16), Close: 2},
			},
			wantLen:   3,
			wantFirst: "2024-01-15",
		},
		{
			name: "duplicate dates keep the first occurrence",
			obs: []Observation{
				{Date: Date(2024, time.January, 15), Close: 1},
				{Date: Date(2024, time.January, 15), Close: 99},
			},
			wantLen:   1,
			wantFirst: "2024-01-15",
		},
		{
			name: "time-of-day and zone are stripped",
			obs: []Observation{
				{Date: time.Date(2024, 1, 15, 9, 30, 0, 0, time.FixedZone("CST", 8*3600)), Close: 1},
			},
			wantLen:   1,
			wantFirst: "2024-01-15",
		},
		{
			name:    "empty input",
			obs:     nil,
			wantLen: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(tt.obs)
			if s.Len() != tt.wantLen {
				t.Errorf("Len() = %d, want %d", s.Len(), tt.wantLen)
			}
			if tt.wantFirst != "" {
				first, ok := s.First()
				if !ok {
					t.Fatal("First() not ok")
				}
				if got := first.Date.Format("2006-01-02"); got != tt.wantFirst {
					t.Errorf("First() date = %s, want %s", got, tt.wantFirst)
				}
			}
		})
	}
}

func TestSeriesMonth(t *testing.T) {
	s := New([]Observation{
		{Date: Date(2024, time.January, 31), Close: 1},
		{Date: Date(2024, time.February, 1), Close: 2},
		{Date: Date(2024, time.February, 29), Close: 3},
		{Date: Date(2024, time.March, 1), Close: 4},
	})

	feb := s.Month(2024, time.February)
	if feb.Len() != 2 {
		t.Fatalf("Month(2024, Feb) len = %d, want 2", feb.Len())
	}
	first, _ := feb.First()
	last, _ := feb.Last()
	if first.Date.Day() != 1 || last.Date.Day() != 29 {
		t.Errorf("Month(2024, Feb) = [%v, %v], want [Feb 1, Feb 29]", first.Date, last.Date)
	}

	// A month with no sessions partitions to an empty series, never to a
	// neighbor's data.
	if got := s.Month(2024, time.April); !got.Empty() {
		t.Errorf("Month(2024, Apr) len = %d, want empty", got.Len())
	}
}

// Date is used all over the tests; pin its normalization here once.
func TestDateDay(t *testing.T) {
	d := Date(2024, time.February, 29)
	if d.Hour() != 0 || d.Location() != time.UTC {
		t.Errorf("Date() = %v, want UTC midnight", d)
	}
	if got := Day(time.Date(2024, 2, 29, 23, 59, 0, 0, time.UTC)); !got.Equal(d) {
		t.Errorf("Day() = %v, want %v", got, d)
	}
}
