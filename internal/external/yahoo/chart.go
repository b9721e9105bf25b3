package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/quantterm/backend/internal/history"
	"github.com/quantterm/backend/internal/series"
)

var _ history.Provider = (*Client)(nil)

// chartResponse mirrors the relevant parts of the v8 chart payload.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol               string `json:"symbol"`
				ExchangeTimezoneName string `json:"exchangeTimezoneName"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
				Adjclose []struct {
					Adjclose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchDaily fetches daily closes for a ticker in [from, to]. Adjusted
// closes are preferred when the payload carries them, matching the
// forward-adjusted convention of the domestic provider.
func (c *Client) FetchDaily(ctx context.Context, symbol string, from, to time.Time) (series.Series, error) {
	params := url.Values{}
	params.Set("interval", "1d")
	params.Set("period1", fmt.Sprintf("%d", from.Unix()))
	// period2 is exclusive; include the final day.
	params.Set("period2", fmt.Sprintf("%d", to.AddDate(0, 0, 1).Unix()))
	params.Set("events", "div,split")

	fullURL := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(symbol), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return series.Series{}, history.ErrUnavailable
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithError(err).WithField("symbol", symbol).Warn("Yahoo fetch failed")
		return series.Series{}, history.ErrUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.WithFields(map[string]interface{}{
			"symbol": symbol,
			"status": resp.StatusCode,
		}).Warn("Yahoo returned non-OK status")
		return series.Series{}, history.ErrUnavailable
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return series.Series{}, history.ErrUnavailable
	}

	s, err := parseChart(body)
	if err != nil {
		c.logger.WithError(err).WithField("symbol", symbol).Warn("Yahoo parse failed")
		return series.Series{}, history.ErrUnavailable
	}
	if s.Empty() {
		return series.Series{}, history.ErrUnavailable
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"count":  s.Len(),
	}).Debug("Fetched global daily history")
	return s, nil
}

// parseChart decodes the chart payload into a Series. Timestamps are
// reduced to calendar dates; sessions with a null close are skipped.
func parseChart(body []byte) (series.Series, error) {
	var payload chartResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return series.Series{}, fmt.Errorf("decode chart response: %w", err)
	}
	if payload.Chart.Error != nil {
		return series.Series{}, fmt.Errorf("chart error: %s", payload.Chart.Error.Code)
	}
	if len(payload.Chart.Result) == 0 {
		return series.Series{}, fmt.Errorf("chart response has no result")
	}

	result := payload.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return series.Series{}, fmt.Errorf("chart response has no quote data")
	}

	closes := result.Indicators.Quote[0].Close
	if len(result.Indicators.Adjclose) > 0 && len(result.Indicators.Adjclose[0].Adjclose) == len(closes) {
		closes = result.Indicators.Adjclose[0].Adjclose
	}

	obs := make([]series.Observation, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		obs = append(obs, series.Observation{
			Date:  time.Unix(ts, 0).UTC(),
			Close: *closes[i],
		})
	}

	return series.New(obs), nil
}
