package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantterm/backend/internal/backtest"
	"github.com/quantterm/backend/internal/history"
	"github.com/quantterm/backend/internal/market"
	"github.com/quantterm/backend/internal/scan"
	"github.com/quantterm/backend/pkg/config"
	"github.com/quantterm/backend/pkg/logger"
	"github.com/quantterm/backend/pkg/redis"
)

func newScanHandler(t *testing.T, universeDir string) *ScanHandler {
	t.Helper()
	client, err := redis.New(&config.Config{})
	require.NoError(t, err)
	hist := history.NewService(
		map[market.Market]history.Provider{market.CN: weekdayProvider{}},
		redis.NewCache(client, "test"), time.Hour, nil, logger.Nop())
	scanner := scan.NewScanner(hist, backtest.NewEngine(logger.Nop()), t.TempDir(), logger.Nop())
	return NewScanHandler(scanner, universeDir, nil, logger.Nop())
}

func TestScanHandlerTriggerValidation(t *testing.T) {
	h := newScanHandler(t, t.TempDir())

	tests := []struct {
		name string
		body string
		want int
	}{
		{"invalid json", "{", http.StatusBadRequest},
		{"missing universe", `{}`, http.StatusBadRequest},
		{"unknown universe", `{"universe":"KOSPI200"}`, http.StatusBadRequest},
		{"bad buy rule", `{"universe":"SSE50","buy":"bogus"}`, http.StatusBadRequest},
		{"missing universe file", `{"universe":"SSE50"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/scan", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.Trigger(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
