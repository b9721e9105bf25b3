package handlers

import (
	"errors"
	"net/http"
	"os"

	"github.com/quantterm/backend/internal/scan"
	"github.com/quantterm/backend/pkg/logger"
)

// RankingHandler serves the universe scan results written by the scanner.
type RankingHandler struct {
	scanDir string
	logger  *logger.Logger
}

// NewRankingHandler creates a new ranking handler.
func NewRankingHandler(scanDir string, log *logger.Logger) *RankingHandler {
	return &RankingHandler{scanDir: scanDir, logger: log}
}

// Get returns the ranking table for a universe and year.
// GET /api/rankings?universe=SSE50&year=2024
func (h *RankingHandler) Get(w http.ResponseWriter, r *http.Request) {
	universe := r.URL.Query().Get("universe")
	if universe == "" {
		respondError(w, http.StatusBadRequest, "Missing universe parameter")
		return
	}

	year, err := yearParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid year")
		return
	}

	rankings, err := scan.ReadRankings(h.scanDir, universe, year)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			respondError(w, http.StatusNotFound, "No scan results for this universe and year")
			return
		}
		h.logger.WithError(err).Error("Failed to read rankings")
		respondError(w, http.StatusInternalServerError, "Failed to read rankings")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"universe": universe,
		"year":     year,
		"rankings": rankings,
	})
}
