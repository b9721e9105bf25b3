package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/quantterm/backend/internal/export"
	"github.com/quantterm/backend/internal/history"
	"github.com/quantterm/backend/internal/market"
	"github.com/quantterm/backend/internal/marketcal"
	"github.com/quantterm/backend/internal/query"
	"github.com/quantterm/backend/pkg/config"
	"github.com/quantterm/backend/pkg/logger"
)

// queryCmd represents the query command
var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "基準日解決",
	Long: `1年分のアンカー日付を実際の取引日に解決して表示します。

Flags:
  --symbol   銘柄コード (A株: 600519 / 国際: 7974.T)
  --year     対象年 (既定: 今年)
  --mode     calendar | expiry (既定: calendar)
  --market   cn | global (既定: cn)
  --out      CSVファイルへ出力

Example:
  go run ./cmd/quantterm query --symbol 600519 --year 2024
  go run ./cmd/quantterm query --symbol 7974.T --market global --mode expiry
  go run ./cmd/quantterm query --symbol 600519 --year 2024 --out 600519_2024.csv`,
	RunE: runQuery,
}

var (
	querySymbol string
	queryYear   int
	queryMode   string
	queryMarket string
	queryOut    string
)

func init() {
	rootCmd.AddCommand(queryCmd)

	// Flags
	queryCmd.Flags().StringVar(&querySymbol, "symbol", "", "銘柄コード (既定: 市場のデフォルト銘柄)")
	queryCmd.Flags().IntVar(&queryYear, "year", time.Now().Year(), "対象年")
	queryCmd.Flags().StringVar(&queryMode, "mode", "calendar", "calendar | expiry")
	queryCmd.Flags().StringVar(&queryMarket, "market", "cn", "cn | global")
	queryCmd.Flags().StringVar(&queryOut, "out", "", "CSV出力先ファイル")
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	mkt, err := market.Parse(queryMarket)
	if err != nil {
		return err
	}
	prof, err := market.ProfileFor(mkt)
	if err != nil {
		return err
	}
	mode, err := marketcal.ParseMode(queryMode)
	if err != nil {
		return err
	}

	symbol := querySymbol
	if symbol == "" {
		symbol = prof.DefaultSymbol
	}

	hist, cleanup, err := buildHistory(cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	svc := query.NewService(hist, log)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	rows, err := svc.Run(ctx, query.Request{
		Market: mkt,
		Symbol: symbol,
		Year:   queryYear,
		Mode:   mode,
		AsOf:   time.Now(),
	})
	if err != nil {
		if history.IsUnavailable(err) {
			return fmt.Errorf("price data unavailable for %s", symbol)
		}
		return err
	}

	if queryOut != "" {
		f, err := os.Create(queryOut)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		if err := export.WriteQueryCSV(f, rows); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		fmt.Printf("✅ Wrote %d rows to %s\n", len(rows), queryOut)
		return nil
	}

	fmt.Printf("\n=== %s %d (%s / %s) ===\n", symbol, queryYear, mkt, mode)
	fmt.Println("month  type            target      actual      price      offset")
	fmt.Println("─────────────────────────────────────────────────────────────────")
	for _, r := range rows {
		fmt.Printf("%-6s %-15s %-11s %-11s %10.2f %s\n",
			r.Month, r.Type, r.TargetDate, r.ActualDate, r.Price, r.Offset)
	}
	fmt.Printf("\n%d anchors resolved\n", len(rows))
	return nil
}
