package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantterm/backend/internal/history"
	"github.com/quantterm/backend/internal/market"
	"github.com/quantterm/backend/internal/marketcal"
	"github.com/quantterm/backend/internal/series"
	"github.com/quantterm/backend/pkg/config"
	"github.com/quantterm/backend/pkg/logger"
	"github.com/quantterm/backend/pkg/redis"
)

type denseProvider struct{}

// FetchDaily serves a synthetic session on every weekday of the range.
func (denseProvider) FetchDaily(ctx context.Context, symbol string, from, to time.Time) (series.Series, error) {
	var obs []series.Observation
	price := 100.0
	for d := series.Day(from); !d.After(series.Day(to)); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		obs = append(obs, series.Observation{Date: d, Close: price})
		price++
	}
	return series.New(obs), nil
}

func testQueryService(t *testing.T) *Service {
	t.Helper()
	client, err := redis.New(&config.Config{})
	require.NoError(t, err)
	cache := redis.NewCache(client, "test")
	hist := history.NewService(
		map[market.Market]history.Provider{market.CN: denseProvider{}},
		cache, time.Hour, nil, logger.Nop())
	return NewService(hist, logger.Nop())
}

func TestRunCalendarMode(t *testing.T) {
	svc := testQueryService(t)

	rows, err := svc.Run(context.Background(), Request{
		Market: market.CN,
		Symbol: "600519",
		Year:   2024,
		Mode:   marketcal.ModeCalendar,
		AsOf:   series.Date(2025, time.June, 1),
	})
	require.NoError(t, err)
	require.Len(t, rows, 24)

	assert.Equal(t, "01", rows[0].Month)
	assert.Equal(t, "mid-month", rows[0].Type)
	assert.Equal(t, "2024-01-15", rows[0].TargetDate)
	// Jan 15 2024 is a Monday; the weekday series has it.
	assert.Equal(t, "2024-01-15", rows[0].ActualDate)
	assert.Equal(t, "same day", rows[0].Offset)

	assert.Equal(t, "month-end", rows[1].Type)
	assert.Equal(t, "2024-01-31", rows[1].TargetDate)

	// Jun 15 2024 is a Saturday; nearest weekday is Friday the 14th.
	var june Row
	for _, r := range rows {
		if r.Month == "06" && r.Type == "mid-month" {
			june = r
		}
	}
	assert.Equal(t, "2024-06-14", june.ActualDate)
	assert.Equal(t, "1 day(s) earlier", june.Offset)
}

func TestRunExpiryMode(t *testing.T) {
	svc := testQueryService(t)

	rows, err := svc.Run(context.Background(), Request{
		Market: market.CN,
		Symbol: "600519",
		Year:   2024,
		Mode:   marketcal.ModeExpiry,
		AsOf:   series.Date(2025, time.June, 1),
	})
	require.NoError(t, err)
	require.Len(t, rows, 24)

	// CN profile: futures expiry is the 3rd Friday, option expiry the
	// 4th Wednesday.
	assert.Equal(t, "futures-expiry", rows[0].Type)
	assert.Equal(t, "2024-01-19", rows[0].TargetDate)
	assert.Equal(t, "option-expiry", rows[1].Type)
	assert.Equal(t, "2024-01-24", rows[1].TargetDate)
}

func TestRunCapsAtAsOf(t *testing.T) {
	svc := testQueryService(t)

	rows, err := svc.Run(context.Background(), Request{
		Market: market.CN,
		Symbol: "600519",
		Year:   2024,
		Mode:   marketcal.ModeCalendar,
		AsOf:   series.Date(2024, time.June, 20),
	})
	require.NoError(t, err)
	require.Len(t, rows, 11, "Jan-May complete plus June mid-month")
	last := rows[len(rows)-1]
	assert.Equal(t, "06", last.Month)
	assert.Equal(t, "mid-month", last.Type)
}
