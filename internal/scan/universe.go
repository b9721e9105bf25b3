// Package scan backtests a whole universe of symbols for a year, ranks
// them by strategy yield, and maintains the scan result files the
// rankings view reads.
package scan

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/quantterm/backend/internal/market"
)

// Universe is a named list of symbols belonging to one market, loaded
// from a constituents file (e.g. SSE50.csv, N225.csv).
type Universe struct {
	Name    string
	Market  market.Market
	Symbols []string
}

// LoadUniverse reads a universe file from dir. The file is one symbol per
// line, optionally with a trailing comma-separated display name; a header
// line starting with "symbol" is skipped.
func LoadUniverse(dir, name string, mkt market.Market) (Universe, error) {
	path := filepath.Join(dir, name+".csv")

	f, err := os.Open(path)
	if err != nil {
		return Universe{}, fmt.Errorf("open universe file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return Universe{}, fmt.Errorf("read universe file: %w", err)
	}

	var symbols []string
	for i, rec := range records {
		if len(rec) == 0 {
			continue
		}
		sym := strings.TrimSpace(strings.TrimPrefix(rec[0], "\ufeff"))
		if sym == "" {
			continue
		}
		if i == 0 && strings.EqualFold(sym, "symbol") {
			continue
		}
		symbols = append(symbols, sym)
	}

	if len(symbols) == 0 {
		return Universe{}, fmt.Errorf("universe %s is empty", name)
	}

	return Universe{Name: name, Market: mkt, Symbols: symbols}, nil
}
