package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/quantterm/backend/internal/backtest"
	"github.com/quantterm/backend/internal/scan"
	"github.com/quantterm/backend/pkg/config"
	"github.com/quantterm/backend/pkg/logger"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "ユニバーススキャン",
	Long: `ユニバース全銘柄に対して月次ローテーション検証を実行し、
収益率ランキングをCSVに書き出します。

Universes:
  SSE50, CSI300      (A株)
  N225, TOPIX100     (国際)

Example:
  go run ./cmd/quantterm scan --universe SSE50 --year 2024
  go run ./cmd/quantterm scan --universe N225 --buy month-end --sell mid-month`,
	RunE: runScan,
}

var (
	scanUniverse string
	scanYear     int
	scanBuy      string
	scanSell     string
)

func init() {
	rootCmd.AddCommand(scanCmd)

	// Flags
	scanCmd.Flags().StringVar(&scanUniverse, "universe", "", "ユニバース名 (必須)")
	scanCmd.Flags().IntVar(&scanYear, "year", time.Now().Year()-1, "対象年 (既定: 昨年)")
	scanCmd.Flags().StringVar(&scanBuy, "buy", "", "買い基準 (既定: futures-expiry)")
	scanCmd.Flags().StringVar(&scanSell, "sell", "", "売り基準 (既定: first-trading-day)")

	scanCmd.MarkFlagRequired("universe")
}

func runScan(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Quantterm Universe Scan ===")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	mkt, ok := scan.DefaultUniverses[scanUniverse]
	if !ok {
		return fmt.Errorf("unknown universe %q (valid: SSE50, CSI300, N225, TOPIX100)", scanUniverse)
	}

	buy, err := backtest.ParseBuyRule(scanBuy)
	if err != nil {
		return err
	}
	sell, err := backtest.ParseSellRule(scanSell)
	if err != nil {
		return err
	}

	u, err := scan.LoadUniverse(cfg.UniverseDir, scanUniverse, mkt)
	if err != nil {
		return fmt.Errorf("load universe: %w", err)
	}

	hist, cleanup, err := buildHistory(cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	engine := backtest.NewEngine(log)
	scanner := scan.NewScanner(hist, engine, cfg.ScanDir, log)
	scanner.OnProgress(func(p scan.Progress) {
		fmt.Printf("[Scan] %s %s [%d/%d]\n", p.Universe, p.Symbol, p.Done, p.Total)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	start := time.Now()
	rankings, err := scanner.Run(ctx, u, scanYear, buy, sell)
	if err != nil {
		return err
	}

	fmt.Printf("\n=== Top rankings (%s %d) ===\n", scanUniverse, scanYear)
	fmt.Println("rank  symbol      trades  strategy%    hold%")
	fmt.Println("────────────────────────────────────────────────")
	for _, r := range rankings {
		if r.Rank > 10 {
			break
		}
		fmt.Printf("%-5d %-11s %6d %10.2f %8.2f\n",
			r.Rank, r.Symbol, r.Trades, r.StrategyYieldPct, r.HoldYieldPct)
	}

	fmt.Printf("\n✅ Scanned %d symbols in %.1fs, %d ranked, wrote %s\n",
		len(u.Symbols), time.Since(start).Seconds(), len(rankings),
		scan.ScanFileName(scanUniverse, scanYear))
	return nil
}
