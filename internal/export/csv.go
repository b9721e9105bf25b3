// Package export serializes query, backtest and scan results to flat
// tabular CSV. Output is UTF-8 with a BOM so spreadsheet applications
// detect the encoding.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/quantterm/backend/internal/backtest"
	"github.com/quantterm/backend/internal/query"
)

var bom = []byte{0xEF, 0xBB, 0xBF}

// WriteQueryCSV writes basic-query rows.
// Columns: month, type, target_date, actual_date, price, offset.
func WriteQueryCSV(w io.Writer, rows []query.Row) error {
	cw, err := newWriter(w)
	if err != nil {
		return err
	}

	if err := cw.Write([]string{"month", "type", "target_date", "actual_date", "price", "offset"}); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.Month,
			r.Type,
			r.TargetDate,
			r.ActualDate,
			fmt.Sprintf("%.2f", r.Price),
			r.Offset,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteBacktestCSV writes a trade ledger.
// Columns: month, buy_date, buy_price, sell_date, sell_price, profit.
func WriteBacktestCSV(w io.Writer, trades []backtest.Trade) error {
	cw, err := newWriter(w)
	if err != nil {
		return err
	}

	if err := cw.Write([]string{"month", "buy_date", "buy_price", "sell_date", "sell_price", "profit"}); err != nil {
		return err
	}
	for _, t := range trades {
		record := []string{
			fmt.Sprintf("%d", t.Month),
			t.Buy.ActualDate.Format("2006-01-02"),
			fmt.Sprintf("%.2f", t.Buy.Price),
			t.Sell.ActualDate.Format("2006-01-02"),
			fmt.Sprintf("%.2f", t.Sell.Price),
			fmt.Sprintf("%.2f", t.Profit),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func newWriter(w io.Writer) (*csv.Writer, error) {
	if _, err := w.Write(bom); err != nil {
		return nil, err
	}
	return csv.NewWriter(w), nil
}
