package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/quantterm/backend/internal/backtest"
	"github.com/quantterm/backend/internal/export"
	"github.com/quantterm/backend/internal/history"
	"github.com/quantterm/backend/internal/market"
	"github.com/quantterm/backend/pkg/config"
	"github.com/quantterm/backend/pkg/logger"
)

// backtestCmd represents the backtest command
var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "月次ローテーション検証",
	Long: `1年分の月次売買ペアを組み、損益と収益率を集計します。

買い基準:
  futures-expiry    先物交割日 / SQ日 (既定)
  option-expiry     期権交割日 / オプション満期
  month-end         月末最終取引日

売り基準:
  first-trading-day 翌月第1取引日 (既定)
  mid-month         翌月15日に最も近い取引日

Example:
  go run ./cmd/quantterm backtest --symbol 600519 --year 2024
  go run ./cmd/quantterm backtest --symbol 7974.T --market global --buy month-end --sell mid-month
  go run ./cmd/quantterm backtest --symbol 600519 --year 2024 --out trades.csv`,
	RunE: runBacktestCmd,
}

var (
	btSymbol string
	btYear   int
	btBuy    string
	btSell   string
	btMarket string
	btOut    string
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	// Flags
	backtestCmd.Flags().StringVar(&btSymbol, "symbol", "", "銘柄コード (既定: 市場のデフォルト銘柄)")
	backtestCmd.Flags().IntVar(&btYear, "year", time.Now().Year()-1, "対象年 (既定: 昨年)")
	backtestCmd.Flags().StringVar(&btBuy, "buy", "", "買い基準 (既定: futures-expiry)")
	backtestCmd.Flags().StringVar(&btSell, "sell", "", "売り基準 (既定: first-trading-day)")
	backtestCmd.Flags().StringVar(&btMarket, "market", "cn", "cn | global")
	backtestCmd.Flags().StringVar(&btOut, "out", "", "CSV出力先ファイル")
}

func runBacktestCmd(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	mkt, err := market.Parse(btMarket)
	if err != nil {
		return err
	}
	prof, err := market.ProfileFor(mkt)
	if err != nil {
		return err
	}
	buy, err := backtest.ParseBuyRule(btBuy)
	if err != nil {
		return err
	}
	sell, err := backtest.ParseSellRule(btSell)
	if err != nil {
		return err
	}

	symbol := btSymbol
	if symbol == "" {
		symbol = prof.DefaultSymbol
	}

	hist, cleanup, err := buildHistory(cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	from, to := history.BacktestRange(btYear)
	s, err := hist.Daily(ctx, mkt, symbol, from, to)
	if err != nil {
		if history.IsUnavailable(err) {
			return fmt.Errorf("price data unavailable for %s", symbol)
		}
		return err
	}

	engine := backtest.NewEngine(log)
	result, err := engine.Run(s, symbol, btYear, prof, buy, sell)
	if err != nil {
		return err
	}

	if result.Insufficient() {
		fmt.Printf("\n⚠ %s %d: insufficient data, no valid trade pairs\n", symbol, btYear)
		return nil
	}

	if btOut != "" {
		f, err := os.Create(btOut)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		if err := export.WriteBacktestCSV(f, result.Trades); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		fmt.Printf("✅ Wrote %d trades to %s\n", len(result.Trades), btOut)
		return nil
	}

	fmt.Printf("\n=== %s %d (%s / buy=%s sell=%s) ===\n", symbol, btYear, mkt, buy, sell)
	fmt.Println("month  buy date    buy price   sell date   sell price     profit")
	fmt.Println("──────────────────────────────────────────────────────────────────")
	for _, t := range result.Trades {
		fmt.Printf("%-6d %-11s %10.2f  %-11s %10.2f %10.2f\n",
			t.Month,
			t.Buy.ActualDate.Format("2006-01-02"), t.Buy.Price,
			t.Sell.ActualDate.Format("2006-01-02"), t.Sell.Price,
			t.Profit)
	}

	m := result.Metrics
	fmt.Println("──────────────────────────────────────────────────────────────────")
	fmt.Printf("  Trades          : %d\n", len(result.Trades))
	fmt.Printf("  Initial cost    : %.2f\n", m.InitialCost)
	fmt.Printf("  Total profit    : %.2f\n", m.TotalProfit)
	fmt.Printf("  Strategy yield  : %.2f%%\n", m.StrategyYieldPct)
	fmt.Printf("  Hold ratio      : %.2f%%\n", m.HoldRatioPct)
	fmt.Printf("  Hold yield      : %.2f%%\n", m.HoldYieldPct)
	return nil
}
