package scan

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/quantterm/backend/internal/backtest"
	"github.com/quantterm/backend/internal/history"
	"github.com/quantterm/backend/internal/market"
	"github.com/quantterm/backend/pkg/logger"
)

// Ranking is one universe member's backtest summary.
type Ranking struct {
	Rank             int     `json:"rank"`
	Symbol           string  `json:"symbol"`
	Trades           int     `json:"trades"`
	StrategyYieldPct float64 `json:"strategy_yield_pct"`
	HoldYieldPct     float64 `json:"hold_yield_pct"`
}

// Progress reports scan advancement to observers (e.g. the websocket hub).
type Progress struct {
	Universe string `json:"universe"`
	Year     int    `json:"year"`
	Done     int    `json:"done"`
	Total    int    `json:"total"`
	Symbol   string `json:"symbol"`
}

// Scanner runs the rotation backtest over every symbol of a universe.
// One slow pass per universe; symbols whose data is unavailable or whose
// year produced no trades are skipped, not errors.
type Scanner struct {
	history  *history.Service
	engine   *backtest.Engine
	scanDir  string
	logger   *logger.Logger
	progress func(Progress) // optional
}

// NewScanner creates a scanner writing result files to scanDir.
func NewScanner(hist *history.Service, engine *backtest.Engine, scanDir string, log *logger.Logger) *Scanner {
	return &Scanner{
		history: hist,
		engine:  engine,
		scanDir: scanDir,
		logger:  log,
	}
}

// OnProgress registers a progress observer.
func (s *Scanner) OnProgress(fn func(Progress)) {
	s.progress = fn
}

// Run backtests every universe symbol for year and returns the rankings
// sorted by descending strategy yield. Results are also written to
// "<NAME>_Scan_<year>.csv" in the scan directory.
func (s *Scanner) Run(ctx context.Context, u Universe, year int, buy backtest.BuyRule, sell backtest.SellRule) ([]Ranking, error) {
	prof, err := market.ProfileFor(u.Market)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"universe": u.Name,
		"year":     year,
		"symbols":  len(u.Symbols),
	}).Info("Scan started")

	started := time.Now()
	from, to := history.BacktestRange(year)

	var rankings []Ranking
	for i, symbol := range u.Symbols {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		s.report(Progress{Universe: u.Name, Year: year, Done: i, Total: len(u.Symbols), Symbol: symbol})

		sr, err := s.history.Daily(ctx, u.Market, symbol, from, to)
		if err != nil {
			s.logger.WithError(err).WithField("symbol", symbol).Debug("Skipping symbol: no data")
			continue
		}

		result, err := s.engine.Run(sr, symbol, year, prof, buy, sell)
		if err != nil || result.Insufficient() {
			continue
		}

		rankings = append(rankings, Ranking{
			Symbol:           symbol,
			Trades:           len(result.Trades),
			StrategyYieldPct: result.Metrics.StrategyYieldPct,
			HoldYieldPct:     result.Metrics.HoldYieldPct,
		})
	}

	sort.SliceStable(rankings, func(i, j int) bool {
		return rankings[i].StrategyYieldPct > rankings[j].StrategyYieldPct
	})
	for i := range rankings {
		rankings[i].Rank = i + 1
	}

	s.report(Progress{Universe: u.Name, Year: year, Done: len(u.Symbols), Total: len(u.Symbols)})

	if err := s.writeScanFile(u.Name, year, rankings); err != nil {
		return nil, fmt.Errorf("write scan file: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"universe": u.Name,
		"year":     year,
		"ranked":   len(rankings),
		"duration": time.Since(started),
	}).Info("Scan completed")

	return rankings, nil
}

func (s *Scanner) report(p Progress) {
	if s.progress != nil {
		s.progress(p)
	}
}

// ScanFileName names the result file for a universe and year.
func ScanFileName(universe string, year int) string {
	return fmt.Sprintf("%s_Scan_%d.csv", universe, year)
}

// writeScanFile writes the rankings with a UTF-8 BOM, like every other
// exported table.
func (s *Scanner) writeScanFile(universe string, year int, rankings []Ranking) error {
	if err := os.MkdirAll(s.scanDir, 0o755); err != nil {
		return err
	}

	path := filepath.Join(s.scanDir, ScanFileName(universe, year))
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return err
	}

	cw := csv.NewWriter(f)
	if err := cw.Write([]string{"rank", "symbol", "trades", "strategy_yield_pct", "hold_yield_pct"}); err != nil {
		return err
	}
	for _, r := range rankings {
		record := []string{
			fmt.Sprintf("%d", r.Rank),
			r.Symbol,
			fmt.Sprintf("%d", r.Trades),
			fmt.Sprintf("%.2f", r.StrategyYieldPct),
			fmt.Sprintf("%.2f", r.HoldYieldPct),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
