package main

import (
	"os"

	"github.com/quantterm/backend/cmd/quantterm/commands"
)

// main is the entry point for the quantterm CLI
// ⭐ 統合CLIエントリポイント: go run ./cmd/quantterm [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
