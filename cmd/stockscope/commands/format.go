package commands

import (
	"fmt"

	"github.com/kyh-dev/stockscope/internal/contracts"
)

// printAnalysis renders one analysis for the terminal.
func printAnalysis(a *contracts.Analysis) {
	fmt.Printf("\n=== %s (%s) ===\n", a.Name, a.Ticker)
	if a.Sector != "" {
		fmt.Printf("섹터: %s", a.Sector)
		if a.Industry != "" {
			fmt.Printf(" / %s", a.Industry)
		}
		fmt.Println()
	}
	fmt.Printf("데이터 출처: %s\n\n", a.Provider)

	fmt.Printf("현재가:     %s (%s)\n", a.Display.Price, a.Display.Change)
	fmt.Printf("전일종가:   %s\n", a.Display.PreviousClose)
	fmt.Printf("시가총액:   %s\n", a.Display.MarketCap)
	fmt.Printf("PER:        %s\n", a.Display.PERatio)
	fmt.Printf("PBR:        %s\n", a.Display.PBRatio)
	fmt.Printf("ROE:        %s\n", a.Display.ROE)
	fmt.Printf("EPS:        %s\n", a.Display.EPS)
	fmt.Printf("배당수익률: %s\n", a.Display.DividendYield)
	fmt.Printf("변동성:     %s\n", a.Display.Volatility)

	fmt.Printf("\n--- 종합 점수: %.1f / 100 ---\n", a.Score.Total)
	fmt.Printf("수익성 %.1f | 밸류에이션 %.1f | 모멘텀 %.1f | 안정성 %.1f\n",
		a.Score.Profitability, a.Score.Valuation, a.Score.Momentum, a.Score.Stability)

	if len(a.Headlines) > 0 {
		fmt.Println("\n최근 뉴스:")
		for _, headline := range a.Headlines {
			fmt.Printf("  - %s\n", headline)
		}
	}

	fmt.Printf("\n업데이트: %s\n", a.Display.UpdatedAt)
}
