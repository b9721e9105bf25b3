package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantterm/backend/internal/market"
	"github.com/quantterm/backend/internal/series"
	"github.com/quantterm/backend/pkg/config"
	"github.com/quantterm/backend/pkg/logger"
	"github.com/quantterm/backend/pkg/redis"
)

type stubProvider struct {
	s     series.Series
	err   error
	calls int
}

func (p *stubProvider) FetchDaily(ctx context.Context, symbol string, from, to time.Time) (series.Series, error) {
	p.calls++
	if p.err != nil {
		return series.Series{}, p.err
	}
	return p.s, nil
}

func testService(t *testing.T, provider Provider) *Service {
	t.Helper()
	client, err := redis.New(&config.Config{}) // disabled, every lookup misses
	require.NoError(t, err)
	cache := redis.NewCache(client, "test")
	return NewService(map[market.Market]Provider{market.CN: provider}, cache, time.Hour, nil, logger.Nop())
}

func TestDailyFetchesFromProvider(t *testing.T) {
	want := series.New([]series.Observation{
		{Date: series.Date(2024, time.January, 2), Close: 100},
	})
	provider := &stubProvider{s: want}
	svc := testService(t, provider)

	from, to := YearRange(2024)
	got, err := svc.Daily(context.Background(), market.CN, "600519", from, to)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Len())
	assert.Equal(t, 1, provider.calls)
}

func TestDailyUnknownMarket(t *testing.T) {
	svc := testService(t, &stubProvider{})

	from, to := YearRange(2024)
	_, err := svc.Daily(context.Background(), market.Global, "7974.T", from, to)
	assert.True(t, IsUnavailable(err))
}

func TestDailyProviderDownWithoutArchive(t *testing.T) {
	provider := &stubProvider{err: ErrUnavailable}
	svc := testService(t, provider)

	from, to := YearRange(2024)
	_, err := svc.Daily(context.Background(), market.CN, "600519", from, to)
	assert.True(t, IsUnavailable(err), "no archive configured: unavailable passes through")
}

func TestYearRange(t *testing.T) {
	from, to := YearRange(2024)
	assert.Equal(t, "2024-01-01", from.Format("2006-01-02"))
	assert.Equal(t, "2024-12-31", to.Format("2006-01-02"))
}

func TestBacktestRange(t *testing.T) {
	from, to := BacktestRange(2024)
	assert.Equal(t, "2024-01-01", from.Format("2006-01-02"))
	// December sells settle in the following year.
	assert.Equal(t, "2025-03-01", to.Format("2006-01-02"))
}
