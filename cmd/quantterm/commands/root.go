package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	env     string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "quantterm",
	Short: "Quantterm - 月次ローテーション検証システム",
	Long: `Quantterm Unified CLI

A株・国際市場の基準日解決と月次売買ローテーション検証。
アンカー日付を実際の取引日に解決し、年間の売買ペアを集計する。

Usage:
  go run ./cmd/quantterm [command]

Examples:
  go run ./cmd/quantterm serve
  go run ./cmd/quantterm query --symbol 600519 --year 2024
  go run ./cmd/quantterm backtest --symbol 7974.T --market global --year 2024
  go run ./cmd/quantterm scan --universe SSE50 --year 2024`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&env, "env", "development", "environment (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
