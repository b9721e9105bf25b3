// Package eastmoney fetches A-share daily history from the Eastmoney
// kline API (the upstream behind most domestic history tooling).
package eastmoney

import (
	"strings"

	"github.com/quantterm/backend/pkg/httputil"
	"github.com/quantterm/backend/pkg/logger"
)

// Client handles communication with the Eastmoney history API
// ⭐ SSOT: A股行情APIの呼び出しはこのクライアントからのみ行う
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new Eastmoney client.
func NewClient(httpClient *httputil.Client, log *logger.Logger, baseURL string) *Client {
	if baseURL == "" {
		baseURL = "https://push2his.eastmoney.com"
	}
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// secID converts a bare A-share code to Eastmoney's "market.code" form:
// Shanghai listings (60xxxx, 688xxx) get prefix 1, Shenzhen listings
// (00xxxx, 30xxxx) prefix 0.
func secID(symbol string) string {
	symbol = strings.TrimSpace(symbol)

	if strings.HasPrefix(symbol, "sh") {
		return "1." + symbol[2:]
	}
	if strings.HasPrefix(symbol, "sz") {
		return "0." + symbol[2:]
	}

	// Shanghai: 60xxxx, 688xxx (STAR Market)
	if strings.HasPrefix(symbol, "60") || strings.HasPrefix(symbol, "688") {
		return "1." + symbol
	}

	// Shenzhen: 00xxxx, 30xxxx (ChiNext)
	return "0." + symbol
}
