package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/quantterm/backend/internal/export"
	"github.com/quantterm/backend/internal/history"
	"github.com/quantterm/backend/internal/market"
	"github.com/quantterm/backend/internal/marketcal"
	"github.com/quantterm/backend/internal/query"
	"github.com/quantterm/backend/pkg/logger"
)

// QueryHandler handles basic anchor-resolution queries.
type QueryHandler struct {
	query  *query.Service
	logger *logger.Logger
}

// NewQueryHandler creates a new query handler.
func NewQueryHandler(svc *query.Service, log *logger.Logger) *QueryHandler {
	return &QueryHandler{query: svc, logger: log}
}

// Get resolves a year's anchors against the symbol's trading sessions.
// GET /api/query?symbol=600519&year=2024&mode=calendar&market=cn[&format=csv]
func (h *QueryHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	mode, err := marketcal.ParseMode(q.Get("mode"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := h.query.Run(ctx, query.Request{
		Market: mkt,
		Symbol: symbol,
		Year:   year,
		Mode:   mode,
		AsOf:   time.Now(),
	})
	if err != nil {
		if history.IsUnavailable(err) {
			respondError(w, http.StatusBadGateway, "Price data unavailable for "+symbol)
			return
		}
		h.logger.WithError(err).Error("Query failed")
		respondError(w, http.StatusInternalServerError, "Query failed")
		return
	}

	if q.Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf(`attachment; filename="%s_%d_%s.csv"`, symbol, year, mode))
		if err := export.WriteQueryCSV(w, rows); err != nil {
			h.logger.WithError(err).Error("CSV export failed")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"symbol": symbol,
		"year":   year,
		"market": mkt,
		"mode":   mode,
		"rows":   rows,
	})
}
