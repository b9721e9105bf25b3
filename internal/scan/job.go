package scan

import (
	"context"
	"errors"
	"time"

	"github.com/quantterm/backend/internal/backtest"
	"github.com/quantterm/backend/internal/market"
	"github.com/quantterm/backend/pkg/logger"
)

// Job refreshes the scan files for a fixed set of universes on a cron
// schedule. Scans always cover the previous calendar year: the current
// year is incomplete and its backtests thin out by design.
type Job struct {
	scanner     *Scanner
	universeDir string
	universes   map[string]market.Market // name -> market
	schedule    string
	logger      *logger.Logger
}

// DefaultUniverses maps the shipped universe files to their markets.
var DefaultUniverses = map[string]market.Market{
	"SSE50":    market.CN,
	"CSI300":   market.CN,
	"N225":     market.Global,
	"TOPIX100": market.Global,
}

// NewJob creates the nightly scan job.
func NewJob(scanner *Scanner, universeDir, schedule string, universes map[string]market.Market, log *logger.Logger) *Job {
	if universes == nil {
		universes = DefaultUniverses
	}
	return &Job{
		scanner:     scanner,
		universeDir: universeDir,
		universes:   universes,
		schedule:    schedule,
		logger:      log,
	}
}

// Name implements scheduler.Job.
func (j *Job) Name() string { return "universe-scan" }

// Schedule implements scheduler.Job.
func (j *Job) Schedule() string { return j.schedule }

// Run scans every configured universe for the previous year. Universes
// whose constituents file is missing are skipped; a scan failure on one
// universe does not stop the others.
func (j *Job) Run(ctx context.Context) error {
	year := time.Now().Year() - 1

	var errs []error
	for name, mkt := range j.universes {
		u, err := LoadUniverse(j.universeDir, name, mkt)
		if err != nil {
			j.logger.WithError(err).WithField("universe", name).Warn("Skipping universe")
			continue
		}

		if _, err := j.scanner.Run(ctx, u, year, backtest.BuyFuturesExpiry, backtest.SellFirstTradingDay); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
