package eastmoney

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/quantterm/backend/internal/history"
	"github.com/quantterm/backend/internal/series"
)

var _ history.Provider = (*Client)(nil)

// klineResponse mirrors the relevant part of the kline API payload.
// Each kline entry is a comma-joined string: "date,open,close,high,low,...".
type klineResponse struct {
	Data *struct {
		Code   string   `json:"code"`
		Name   string   `json:"name"`
		Klines []string `json:"klines"`
	} `json:"data"`
}

// FetchDaily fetches forward-adjusted (前复权) daily closes for an A-share
// code in [from, to].
func (c *Client) FetchDaily(ctx context.Context, symbol string, from, to time.Time) (series.Series, error) {
	params := url.Values{}
	params.Set("secid", secID(symbol))
	params.Set("klt", "101")  // daily bars
	params.Set("fqt", "1")    // forward adjusted
	params.Set("fields1", "f1,f2,f3")
	params.Set("fields2", "f51,f53") // date, close
	params.Set("beg", from.Format("20060102"))
	params.Set("end", to.Format("20060102"))

	fullURL := fmt.Sprintf("%s/api/qt/stock/kline/get?%s", c.baseURL, params.Encode())

	resp, err := c.httpClient.Get(ctx, fullURL)
	if err != nil {
		c.logger.WithError(err).WithField("symbol", symbol).Warn("Eastmoney fetch failed")
		return series.Series{}, history.ErrUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.WithFields(map[string]interface{}{
			"symbol": symbol,
			"status": resp.StatusCode,
		}).Warn("Eastmoney returned non-OK status")
		return series.Series{}, history.ErrUnavailable
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return series.Series{}, history.ErrUnavailable
	}

	s, err := parseKlines(body)
	if err != nil {
		c.logger.WithError(err).WithField("symbol", symbol).Warn("Eastmoney parse failed")
		return series.Series{}, history.ErrUnavailable
	}
	if s.Empty() {
		return series.Series{}, history.ErrUnavailable
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"count":  s.Len(),
	}).Debug("Fetched A-share daily history")
	return s, nil
}

// parseKlines decodes the kline payload into a Series.
func parseKlines(body []byte) (series.Series, error) {
	var payload klineResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return series.Series{}, fmt.Errorf("decode kline response: %w", err)
	}
	if payload.Data == nil {
		return series.Series{}, fmt.Errorf("kline response has no data")
	}

	obs := make([]series.Observation, 0, len(payload.Data.Klines))
	for _, line := range payload.Data.Klines {
		fields := strings.Split(line, ",")
		if len(fields) < 2 {
			continue
		}

		date, err := time.Parse("2006-01-02", fields[0])
		if err != nil {
			continue
		}
		closePrice, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			continue
		}

		obs = append(obs, series.Observation{Date: date, Close: closePrice})
	}

	return series.New(obs), nil
}
