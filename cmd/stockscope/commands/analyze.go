package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [티커|종목코드|종목명]",
	Short: "종목 분석 실행",
	Long: `한 종목을 분석하고 결과를 출력합니다.

티커(AAPL), 국내 종목코드(005930), 한글 종목명(삼성전자) 모두
입력할 수 있습니다.

Example:
  go run ./cmd/stockscope analyze 삼성전자
  go run ./cmd/stockscope analyze 005930
  go run ./cmd/stockscope analyze AAPL --commentary`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

var withCommentary bool

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().BoolVar(&withCommentary, "commentary", false, "AI 코멘터리 포함")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	// 한글 종목명 해석에는 마스터 스냅샷이 필요
	if err := app.master.Refresh(ctx); err != nil {
		app.log.WithError(err).Warn("Master refresh failed, name resolution degraded")
	}

	if !withCommentary {
		analysis, err := app.valuation.Analyze(ctx, query)
		if err != nil {
			return fmt.Errorf("analyze %q: %w", query, err)
		}
		printAnalysis(analysis)
		return nil
	}

	analysis, commentary, err := app.valuation.AnalyzeWithCommentary(ctx, query)
	if err != nil {
		return fmt.Errorf("analyze %q: %w", query, err)
	}
	printAnalysis(analysis)

	if commentary == nil {
		fmt.Println("\n(코멘터리 비활성화 또는 실패)")
		return nil
	}

	fmt.Println("\n=== AI 코멘터리 ===")
	fmt.Printf("시그널: %s\n", commentary.Signal)
	fmt.Printf("한줄평: %s\n", commentary.OneLine)
	for _, point := range commentary.Summary {
		fmt.Printf("  - %s\n", point)
	}
	fmt.Printf("리스크: %s\n", commentary.Risk)

	return nil
}
