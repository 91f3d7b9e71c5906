package main

import (
	"os"

	"github.com/kyh-dev/stockscope/cmd/stockscope/commands"
)

// main is the entry point for the StockScope CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/stockscope [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
