package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantterm/backend/internal/scan"
	"github.com/quantterm/backend/pkg/logger"
)

func TestRankingHandlerGet(t *testing.T) {
	dir := t.TempDir()
	content := "\ufeffrank,symbol,trades,strategy_yield_pct,hold_yield_pct\n" +
		"1,600519,12,15.20,12.10\n" +
		"2,600000,11,8.75,6.00\n"
	path := filepath.Join(dir, scan.ScanFileName("SSE50", 2024))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	h := NewRankingHandler(dir, logger.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/rankings?universe=SSE50&year=2024", nil)
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Universe string         `json:"universe"`
		Year     int            `json:"year"`
		Rankings []scan.Ranking `json:"rankings"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "SSE50", body.Universe)
	require.Len(t, body.Rankings, 2)
	assert.Equal(t, "600519", body.Rankings[0].Symbol)
	assert.InDelta(t, 15.20, body.Rankings[0].StrategyYieldPct, 1e-9)
}

func TestRankingHandlerMissingUniverse(t *testing.T) {
	h := NewRankingHandler(t.TempDir(), logger.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/rankings?year=2024", nil)
	rec := httptest.NewRecorder()
	h.Get(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRankingHandlerNoScanYet(t *testing.T) {
	h := NewRankingHandler(t.TempDir(), logger.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/rankings?universe=SSE50&year=2024", nil)
	rec := httptest.NewRecorder()
	h.Get(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
