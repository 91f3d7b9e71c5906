package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kyh-dev/stockscope/internal/api"
	"github.com/kyh-dev/stockscope/internal/api/handlers"
	"github.com/kyh-dev/stockscope/internal/scheduler"
	"github.com/kyh-dev/stockscope/internal/scheduler/jobs"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

이 명령어는:
- HTTP API 서버 시작
- 마스터 파일 스냅샷 초기 로드 및 일일 갱신 스케줄 등록
- 분석/검색 엔드포인트 제공

Endpoints:
  GET  /health                  - Health check
  POST /api/stocks/search       - 종목 검색 (티커/종목명)
  GET  /api/stocks/{ticker}     - 종목 분석 조회
  POST /api/stocks/analyze      - 분석 + AI 코멘터리
  GET  /api/stocks/recent       - 최근 분석 목록
  POST /api/master/refresh      - 마스터 파일 수동 갱신

Example:
  go run ./cmd/stockscope api
  go run ./cmd/stockscope api --port 8085`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (기본: PORT 환경변수)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== StockScope API Server ===")

	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.close()

	if apiPort != "" {
		app.cfg.Port = apiPort
	}

	log := app.log

	// 초기 스냅샷은 백그라운드로 — 서버 기동을 막지 않음
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := app.master.Refresh(ctx); err != nil {
			log.WithError(err).Warn("Initial master refresh failed, name resolution degraded")
		}
	}()

	sched := scheduler.New(log)
	if err := sched.AddJob(jobs.NewMasterRefreshJob(app.master, app.cfg.Master.RefreshSpec, log)); err != nil {
		return fmt.Errorf("schedule master refresh: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	stockHandler := handlers.NewStockHandler(app.valuation, app.store, app.master, log)
	masterHandler := handlers.NewMasterHandler(app.master, log)
	router := api.NewRouter(stockHandler, masterHandler, log)
	server := api.New(app.cfg, log, router)

	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", app.cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
