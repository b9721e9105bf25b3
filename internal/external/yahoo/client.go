// Package yahoo fetches daily history for Japanese and international
// tickers from the Yahoo Finance v8 chart API.
package yahoo

import (
	"strings"

	"github.com/quantterm/backend/pkg/httputil"
	"github.com/quantterm/backend/pkg/logger"
)

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"

// Client handles communication with the Yahoo Finance chart API
// ⭐ SSOT: 国際市場の株価照会はこのクライアントからのみ行う
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new Yahoo Finance client.
func NewClient(httpClient *httputil.Client, log *logger.Logger, baseURL string) *Client {
	if baseURL == "" {
		baseURL = "https://query1.finance.yahoo.com"
	}
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}
