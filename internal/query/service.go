// Package query implements the basic date-anchored price snapshot: for a
// symbol and year, the closing price at each calendar anchor, mapped to
// the nearest actual trading day.
package query

import (
	"context"
	"fmt"
	"time"

	"github.com/quantterm/backend/internal/history"
	"github.com/quantterm/backend/internal/market"
	"github.com/quantterm/backend/internal/marketcal"
	"github.com/quantterm/backend/internal/series"
	"github.com/quantterm/backend/pkg/logger"
)

// Row is one resolved anchor, shaped for display and export.
type Row struct {
	Month      string  `json:"month"` // "01" .. "12"
	Type       string  `json:"type"`
	TargetDate string  `json:"target_date"` // ISO-8601
	ActualDate string  `json:"actual_date"` // ISO-8601
	Price      float64 `json:"price"`
	Offset     string  `json:"offset"`
}

// Request parameterizes one basic query.
type Request struct {
	Market market.Market
	Symbol string
	Year   int
	Mode   marketcal.Mode
	// AsOf caps anchor generation; callers pass the wall-clock date so
	// the core holds no clock state of its own.
	AsOf time.Time
}

// Service wires anchor generation and nearest-day resolution over a
// fetched year series.
type Service struct {
	history *history.Service
	logger  *logger.Logger
}

// NewService creates a query service.
func NewService(hist *history.Service, log *logger.Logger) *Service {
	return &Service{history: hist, logger: log}
}

// Run fetches the year's series and resolves every anchor the mode
// produces against it. Unlike the backtest, the basic query resolves
// against the whole year, so an anchor near a month boundary may match an
// adjacent month's session.
func (s *Service) Run(ctx context.Context, req Request) ([]Row, error) {
	prof, err := market.ProfileFor(req.Market)
	if err != nil {
		return nil, err
	}

	from, to := history.YearRange(req.Year)
	yearSeries, err := s.history.Daily(ctx, req.Market, req.Symbol, from, to)
	if err != nil {
		return nil, err
	}

	anchors := marketcal.Generate(req.Year, req.Mode, prof.Expiries(), req.AsOf)

	rows := make([]Row, 0, len(anchors))
	for _, a := range anchors {
		r, ok := series.Resolve(a.Target, yearSeries)
		if !ok {
			continue
		}
		rows = append(rows, Row{
			Month:      fmt.Sprintf("%02d", a.Month),
			Type:       a.Label,
			TargetDate: a.Target.Format("2006-01-02"),
			ActualDate: r.ActualDate.Format("2006-01-02"),
			Price:      r.Price,
			Offset:     series.OffsetText(r.OffsetDays),
		})
	}

	s.logger.WithFields(map[string]interface{}{
		"market": req.Market,
		"symbol": req.Symbol,
		"year":   req.Year,
		"mode":   req.Mode,
		"rows":   len(rows),
	}).Info("Basic query completed")

	return rows, nil
}
