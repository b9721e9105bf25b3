package handlers

import (
	"fmt"
	"net/http"

	"github.com/quantterm/backend/internal/backtest"
	"github.com/quantterm/backend/internal/export"
	"github.com/quantterm/backend/internal/history"
	"github.com/quantterm/backend/internal/market"
	"github.com/quantterm/backend/pkg/logger"
)

// BacktestHandler runs the monthly rotation backtest on demand.
type BacktestHandler struct {
	history *history.Service
	engine  *backtest.Engine
	logger  *logger.Logger
}

// NewBacktestHandler creates a new backtest handler.
func NewBacktestHandler(hist *history.Service, engine *backtest.Engine, log *logger.Logger) *BacktestHandler {
	return &BacktestHandler{history: hist, engine: engine, logger: log}
}

// Get runs one symbol/year backtest.
// GET /api/backtest?symbol=7974.T&year=2024&buy=futures-expiry&sell=first-trading-day&market=global[&format=csv]
func (h *BacktestHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	mkt, err := market.Parse(q.Get("market"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	prof, err := market.ProfileFor(mkt)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	symbol := q.Get("symbol")
	if symbol == "" {
		symbol = prof.DefaultSymbol
	}

	year, err := yearParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid year")
		return
	}

	buy, err := backtest.ParseBuyRule(q.Get("buy"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	sell, err := backtest.ParseSellRule(q.Get("sell"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	// The sell leg of a December trade lands in January, so the fetch
	// range runs past year end.
	from, to := history.BacktestRange(year)
	s, err := h.history.Daily(ctx, mkt, symbol, from, to)
	if err != nil {
		if history.IsUnavailable(err) {
			respondError(w, http.StatusBadGateway, "Price data unavailable for "+symbol)
			return
		}
		h.logger.WithError(err).Error("Backtest fetch failed")
		respondError(w, http.StatusInternalServerError, "Backtest failed")
		return
	}

	result, err := h.engine.Run(s, symbol, year, prof, buy, sell)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if q.Get("format") == "csv" {
		if result.Insufficient() {
			respondError(w, http.StatusNotFound, "Insufficient data: no valid trade pairs")
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf(`attachment; filename="%s_%d_backtest.csv"`, symbol, year))
		if err := export.WriteBacktestCSV(w, result.Trades); err != nil {
			h.logger.WithError(err).Error("CSV export failed")
		}
		return
	}

	if result.Insufficient() {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"result":  result,
			"message": "Insufficient data: no month produced a valid trade pair",
		})
		return
	}

	respondJSON(w, http.StatusOK, result)
}
