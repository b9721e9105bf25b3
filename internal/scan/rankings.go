package scan

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ReadRankings loads a previously written scan file. Returns an error
// when the file does not exist (no scan has run for that universe/year).
func ReadRankings(scanDir, universe string, year int) ([]Ranking, error) {
	path := filepath.Join(scanDir, ScanFileName(universe, year))

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scan file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read scan file: %w", err)
	}

	var rankings []Ranking
	for i, rec := range records {
		if len(rec) < 5 {
			continue
		}
		// Header row; first cell may carry the BOM.
		if i == 0 && strings.Contains(strings.ToLower(rec[0]), "rank") {
			continue
		}

		rank, err := strconv.Atoi(strings.TrimPrefix(rec[0], "\ufeff"))
		if err != nil {
			continue
		}
		trades, _ := strconv.Atoi(rec[2])
		strategyYield, _ := strconv.ParseFloat(rec[3], 64)
		holdYield, _ := strconv.ParseFloat(rec[4], 64)

		rankings = append(rankings, Ranking{
			Rank:             rank,
			Symbol:           rec[1],
			Trades:           trades,
			StrategyYieldPct: strategyYield,
			HoldYieldPct:     holdYield,
		})
	}

	return rankings, nil
}
