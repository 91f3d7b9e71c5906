package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// masterCmd groups master-file operations
var masterCmd = &cobra.Command{
	Use:   "master",
	Short: "마스터 파일 관리",
	Long: `KOSPI/KOSDAQ 마스터 파일 스냅샷을 관리합니다.

Example:
  go run ./cmd/stockscope master refresh`,
}

// masterRefreshCmd rebuilds the snapshot once
var masterRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "마스터 파일 갱신",
	Long: `KOSPI/KOSDAQ 마스터 파일과 KRX 전종목 기본지표를 내려받아
종목명 해석 테이블을 다시 만듭니다.`,
	RunE: runMasterRefresh,
}

func init() {
	rootCmd.AddCommand(masterCmd)
	masterCmd.AddCommand(masterRefreshCmd)
}

func runMasterRefresh(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Master Refresh ===")

	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	start := time.Now()
	if err := app.master.Refresh(ctx); err != nil {
		return fmt.Errorf("master refresh: %w", err)
	}

	fmt.Printf("✅ %d개 종목 로드 완료 (%s)\n", app.master.Current().Len(), time.Since(start).Round(time.Millisecond))
	return nil
}
