package scan

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantterm/backend/internal/backtest"
	"github.com/quantterm/backend/internal/history"
	"github.com/quantterm/backend/internal/market"
	"github.com/quantterm/backend/internal/series"
	"github.com/quantterm/backend/pkg/config"
	"github.com/quantterm/backend/pkg/logger"
	"github.com/quantterm/backend/pkg/redis"
)

// rampProvider serves a synthetic weekday series whose slope depends on
// the symbol, so different symbols rank differently.
type rampProvider struct {
	slopes map[string]float64
}

func (p rampProvider) FetchDaily(ctx context.Context, symbol string, from, to time.Time) (series.Series, error) {
	slope, ok := p.slopes[symbol]
	if !ok {
		return series.Series{}, history.ErrUnavailable
	}
	var obs []series.Observation
	price := 100.0
	for d := series.Day(from); !d.After(series.Day(to)); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		obs = append(obs, series.Observation{Date: d, Close: price})
		price += slope
	}
	return series.New(obs), nil
}

func testScanner(t *testing.T, provider history.Provider, scanDir string) *Scanner {
	t.Helper()
	client, err := redis.New(&config.Config{})
	require.NoError(t, err)
	cache := redis.NewCache(client, "test")
	hist := history.NewService(
		map[market.Market]history.Provider{market.CN: provider},
		cache, time.Hour, nil, logger.Nop())
	return NewScanner(hist, backtest.NewEngine(logger.Nop()), scanDir, logger.Nop())
}

func TestScannerRun(t *testing.T) {
	dir := t.TempDir()
	provider := rampProvider{slopes: map[string]float64{
		"600519": 2.0,
		"600000": 0.5,
		// "601318" is deliberately absent: no data, skipped.
	}}
	scanner := testScanner(t, provider, dir)

	u := Universe{
		Name:    "SSE50",
		Market:  market.CN,
		Symbols: []string{"600000", "601318", "600519"},
	}

	var progressCalls int
	scanner.OnProgress(func(p Progress) {
		progressCalls++
		assert.Equal(t, "SSE50", p.Universe)
		assert.Equal(t, 3, p.Total)
	})

	rankings, err := scanner.Run(context.Background(), u, 2024, backtest.BuyMonthEnd, backtest.SellFirstTradingDay)
	require.NoError(t, err)

	require.Len(t, rankings, 2, "the no-data symbol is skipped")
	// The steeper ramp earns the higher yield and rank 1.
	assert.Equal(t, 1, rankings[0].Rank)
	assert.Equal(t, "600519", rankings[0].Symbol)
	assert.Equal(t, 2, rankings[1].Rank)
	assert.Equal(t, "600000", rankings[1].Symbol)
	assert.Greater(t, rankings[0].StrategyYieldPct, rankings[1].StrategyYieldPct)
	assert.Equal(t, 12, rankings[0].Trades)

	// One call per symbol plus the completion report.
	assert.Equal(t, 4, progressCalls)

	// The scan file round-trips through ReadRankings.
	path := filepath.Join(dir, ScanFileName("SSE50", 2024))
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("scan file not written: %v", err)
	}
	loaded, err := ReadRankings(dir, "SSE50", 2024)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, rankings[0].Symbol, loaded[0].Symbol)
	assert.Equal(t, rankings[0].Rank, loaded[0].Rank)
	assert.InDelta(t, rankings[0].StrategyYieldPct, loaded[0].StrategyYieldPct, 0.01)
}

func TestScannerRunCancelled(t *testing.T) {
	dir := t.TempDir()
	scanner := testScanner(t, rampProvider{}, dir)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	u := Universe{Name: "SSE50", Market: market.CN, Symbols: []string{"600519"}}
	_, err := scanner.Run(ctx, u, 2024, backtest.BuyMonthEnd, backtest.SellFirstTradingDay)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReadRankingsMissingFile(t *testing.T) {
	_, err := ReadRankings(t.TempDir(), "SSE50", 2024)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
