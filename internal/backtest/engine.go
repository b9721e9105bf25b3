// Package backtest runs the monthly buy/sell rotation strategy over one
// year of daily closes and compares it against buy-and-hold.
package backtest

import (
	"fmt"
	"time"

	"github.com/quantterm/backend/internal/market"
	"github.com/quantterm/backend/internal/marketcal"
	"github.com/quantterm/backend/internal/series"
	"github.com/quantterm/backend/pkg/logger"
)

// BuyRule selects the buy anchor inside each month.
type BuyRule string

const (
	// BuyFuturesExpiry buys at the market's futures/SQ expiry anchor.
	BuyFuturesExpiry BuyRule = "futures-expiry"
	// BuyOptionExpiry buys at the market's option expiry anchor.
	BuyOptionExpiry BuyRule = "option-expiry"
	// BuyMonthEnd buys at the month's last trading day.
	BuyMonthEnd BuyRule = "month-end"
)

// SellRule selects the sell anchor inside the following month.
type SellRule string

const (
	// SellFirstTradingDay sells at the next month's first trading day.
	SellFirstTradingDay SellRule = "first-trading-day"
	// SellMidMonth sells at the trading day nearest the next month's 15th.
	SellMidMonth SellRule = "mid-month"
)

// Trade is one completed monthly rotation. Sell.ActualDate is strictly
// after Buy.ActualDate; months violating that are never recorded.
type Trade struct {
	Month  int             `json:"month"` // 1-12, month of the buy anchor
	Buy    series.Resolved `json:"buy"`
	Sell   series.Resolved `json:"sell"`
	Profit float64         `json:"profit"`
}

// Metrics aggregates a non-empty trade ledger.
type Metrics struct {
	InitialCost      float64 `json:"initial_cost"`
	TotalProfit      float64 `json:"total_profit"`
	StrategyYieldPct float64 `json:"strategy_yield_pct"`
	// HoldRatioPct is the last sell price as a percentage of the first
	// buy price: doubling reads 200, not 100. Kept separate from
	// HoldYieldPct because both are displayed.
	HoldRatioPct float64 `json:"hold_ratio_pct"`
	HoldYieldPct float64 `json:"hold_yield_pct"`
}

// Result is the outcome of one backtest run. Metrics is nil when no month
// produced a valid trade pair: that is the "insufficient data" outcome,
// distinct from a failed run.
type Result struct {
	Symbol   string        `json:"symbol"`
	Year     int           `json:"year"`
	Market   market.Market `json:"market"`
	BuyRule  BuyRule       `json:"buy_rule"`
	SellRule SellRule      `json:"sell_rule"`
	Trades   []Trade       `json:"trades"`
	Metrics  *Metrics      `json:"metrics,omitempty"`
}

// Insufficient reports whether the run completed without a single valid
// trade (ticker not yet listed, future year, sparse data).
func (r *Result) Insufficient() bool {
	return len(r.Trades) == 0
}

// Engine chains two anchor resolutions per month into a trade ledger.
// 検証ロジックは月ごとのパーティションに厳格に限定する。
type Engine struct {
	logger *logger.Logger
}

// NewEngine creates a backtest engine.
func NewEngine(log *logger.Logger) *Engine {
	return &Engine{logger: log}
}

// Run executes the rotation strategy for each month of year against the
// fetched series. The series must cover January of year through at least
// the sell window of December (first months of year+1).
//
// Resolution is strict per-month: the buy anchor is matched only against
// observations in (year, m) and the sell anchor only against the
// following month's partition. A month is skipped — silently, without
// error — when either partition is empty or the sell date does not fall
// strictly after the buy date.
func (e *Engine) Run(s series.Series, symbol string, year int, prof market.Profile, buy BuyRule, sell SellRule) (*Result, error) {
	if err := validateRules(buy, sell); err != nil {
		return nil, err
	}

	result := &Result{
		Symbol:   symbol,
		Year:     year,
		Market:   prof.Market,
		BuyRule:  buy,
		SellRule: sell,
	}

	for m := time.January; m <= time.December; m++ {
		trade, ok := e.tradeForMonth(s, year, m, prof, buy, sell)
		if !ok {
			continue
		}
		result.Trades = append(result.Trades, trade)
	}

	if len(result.Trades) > 0 {
		result.Metrics = computeMetrics(result.Trades)
	}

	e.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"year":   year,
		"trades": len(result.Trades),
	}).Info("Backtest completed")

	return result, nil
}

func (e *Engine) tradeForMonth(s series.Series, year int, m time.Month, prof market.Profile, buy BuyRule, sell SellRule) (Trade, bool) {
	curMonth := s.Month(year, m)

	buyObs, ok := resolveBuy(curMonth, year, m, prof, buy)
	if !ok {
		return Trade{}, false
	}

	nextYear, nextMonth := year, m+1
	if m == time.December {
		nextYear, nextMonth = year+1, time.January
	}

	sellObs, ok := resolveSell(s.Month(nextYear, nextMonth), nextYear, nextMonth, sell)
	if !ok {
		return Trade{}, false
	}

	// A sell on or before the buy date is dropped, not recorded with a
	// non-positive holding period.
	if !sellObs.ActualDate.After(buyObs.ActualDate) {
		e.logger.WithFields(map[string]interface{}{
			"month": int(m),
			"buy":   buyObs.ActualDate.Format("2006-01-02"),
			"sell":  sellObs.ActualDate.Format("2006-01-02"),
		}).Debug("Dropping inverted trade pair")
		return Trade{}, false
	}

	return Trade{
		Month:  int(m),
		Buy:    buyObs,
		Sell:   sellObs,
		Profit: sellObs.Price - buyObs.Price,
	}, true
}

func resolveBuy(monthSeries series.Series, year int, m time.Month, prof market.Profile, buy BuyRule) (series.Resolved, bool) {
	var target time.Time
	switch buy {
	case BuyMonthEnd:
		// Nearest to month-end inside the partition is the month's last
		// trading day.
		target = marketcal.MonthEnd(year, m)
	case BuyFuturesExpiry:
		target = prof.FuturesExpiry.Date(year, m)
	case BuyOptionExpiry:
		target = prof.OptionExpiry.Date(year, m)
	default:
		return series.Resolved{}, false
	}

	r, ok := series.Resolve(target, monthSeries)
	if !ok {
		return series.Resolved{}, false
	}
	r.Label = string(buy)
	return r, true
}

func resolveSell(monthSeries series.Series, year int, m time.Month, sell SellRule) (series.Resolved, bool) {
	switch sell {
	case SellFirstTradingDay:
		// Positional, not nearest-date: the earliest observation of the
		// month is the first trading day by construction.
		first, ok := monthSeries.First()
		if !ok {
			return series.Resolved{}, false
		}
		target := series.Date(year, m, 1)
		return series.Resolved{
			Label:      string(sell),
			Target:     target,
			ActualDate: first.Date,
			Price:      first.Close,
			OffsetDays: series.DaysBetween(target, first.Date),
		}, true
	case SellMidMonth:
		r, ok := series.Resolve(marketcal.MidMonth(year, m), monthSeries)
		if !ok {
			return series.Resolved{}, false
		}
		r.Label = string(sell)
		return r, true
	}
	return series.Resolved{}, false
}

func computeMetrics(trades []Trade) *Metrics {
	initial := trades[0].Buy.Price
	lastSell := trades[len(trades)-1].Sell.Price

	var totalProfit float64
	for _, t := range trades {
		totalProfit += t.Profit
	}

	ratio := lastSell / initial * 100
	return &Metrics{
		InitialCost:      initial,
		TotalProfit:      totalProfit,
		StrategyYieldPct: totalProfit / initial * 100,
		HoldRatioPct:     ratio,
		HoldYieldPct:     ratio - 100,
	}
}

func validateRules(buy BuyRule, sell SellRule) error {
	switch buy {
	case BuyFuturesExpiry, BuyOptionExpiry, BuyMonthEnd:
	default:
		return fmt.Errorf("unknown buy rule %q", buy)
	}
	switch sell {
	case SellFirstTradingDay, SellMidMonth:
	default:
		return fmt.Errorf("unknown sell rule %q", sell)
	}
	return nil
}

// ParseBuyRule maps a user-supplied buy rule name.
func ParseBuyRule(s string) (BuyRule, error) {
	switch s {
	case string(BuyFuturesExpiry), "":
		return BuyFuturesExpiry, nil
	case string(BuyOptionExpiry):
		return BuyOptionExpiry, nil
	case string(BuyMonthEnd), "last-trading-day":
		return BuyMonthEnd, nil
	}
	return "", fmt.Errorf("unknown buy rule %q", s)
}

// ParseSellRule maps a user-supplied sell rule name.
func ParseSellRule(s string) (SellRule, error) {
	switch s {
	case string(SellFirstTradingDay), "":
		return SellFirstTradingDay, nil
	case string(SellMidMonth), "next-month-15th":
		return SellMidMonth, nil
	}
	return "", fmt.Errorf("unknown sell rule %q", s)
}
