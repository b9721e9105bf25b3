package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/quantterm/backend/internal/backtest"
	"github.com/quantterm/backend/internal/market"
	"github.com/quantterm/backend/internal/scan"
	"github.com/quantterm/backend/pkg/logger"
)

// ScanHandler triggers a universe scan in the background. Progress goes
// out over the websocket hub; only one scan runs at a time.
type ScanHandler struct {
	scanner     *scan.Scanner
	universeDir string
	universes   map[string]market.Market
	logger      *logger.Logger

	mu      sync.Mutex
	running bool
}

// NewScanHandler creates a new scan handler.
func NewScanHandler(scanner *scan.Scanner, universeDir string, universes map[string]market.Market, log *logger.Logger) *ScanHandler {
	if universes == nil {
		universes = scan.DefaultUniverses
	}
	return &ScanHandler{
		scanner:     scanner,
		universeDir: universeDir,
		universes:   universes,
		logger:      log,
	}
}

// ScanRequest parameterizes a manual scan trigger.
type ScanRequest struct {
	Universe string `json:"universe"`
	Year     int    `json:"year"` // 0 means previous year
	Buy      string `json:"buy"`
	Sell     string `json:"sell"`
}

// Trigger starts a scan for one universe.
// POST /api/scan
func (h *ScanHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Universe == "" {
		respondError(w, http.StatusBadRequest, "Missing universe")
		return
	}
	mkt, ok := h.universes[req.Universe]
	if !ok {
		respondError(w, http.StatusBadRequest, "Unknown universe: "+req.Universe)
		return
	}

	year := req.Year
	if year == 0 {
		year = time.Now().Year() - 1
	}

	buy, err := backtest.ParseBuyRule(req.Buy)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	sell, err := backtest.ParseSellRule(req.Sell)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	u, err := scan.LoadUniverse(h.universeDir, req.Universe, mkt)
	if err != nil {
		respondError(w, http.StatusNotFound, "Universe file not found: "+req.Universe)
		return
	}

	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		respondError(w, http.StatusConflict, "A scan is already running")
		return
	}
	h.running = true
	h.mu.Unlock()

	go func() {
		defer func() {
			h.mu.Lock()
			h.running = false
			h.mu.Unlock()
		}()

		// Detached from the request context: the HTTP response returns
		// immediately while the scan keeps going.
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()

		if _, err := h.scanner.Run(ctx, u, year, buy, sell); err != nil {
			h.logger.WithError(err).WithField("universe", req.Universe).Error("Scan failed")
		}
	}()

	respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"status":   "started",
		"universe": req.Universe,
		"year":     year,
	})
}
