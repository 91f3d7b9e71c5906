package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "stockscope",
	Short: "StockScope - 국내외 주식 가치평가 분석기",
	Long: `StockScope CLI

티커·종목코드·한글 종목명으로 종목을 조회해 PER/PBR/ROE 등
핵심 지표를 계산하고 4개 축으로 점수화합니다.
국내 종목은 KIS, 해외 종목은 Yahoo Finance에서 조회합니다.

Usage:
  go run ./cmd/stockscope [command]

Examples:
  go run ./cmd/stockscope api
  go run ./cmd/stockscope analyze 삼성전자
  go run ./cmd/stockscope analyze AAPL --commentary
  go run ./cmd/stockscope master refresh`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
