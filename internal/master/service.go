package master

import (
	"context"
	"fmt"
	"strings"

	"github.com/kyh-dev/stockscope/internal/external/krx"
	"github.com/kyh-dev/stockscope/pkg/config"
	"github.com/kyh-dev/stockscope/pkg/httputil"
	"github.com/kyh-dev/stockscope/pkg/logger"
)

// Service builds and refreshes the master snapshot. Readers go through
// Current(); Refresh replaces the snapshot atomically.
type Service struct {
	holder *Holder
	parser *mstParser
	krx    *krx.Client
	cfg    config.MasterConfig
	log    *logger.Logger
}

// NewService creates the master service.
func NewService(cfg config.MasterConfig, httpClient *httputil.Client, krxClient *krx.Client, log *logger.Logger) *Service {
	return &Service{
		holder: NewHolder(),
		parser: &mstParser{httpClient: httpClient, log: log},
		krx:    krxClient,
		cfg:    cfg,
		log:    log,
	}
}

// Current returns the active snapshot.
func (s *Service) Current() *Snapshot {
	return s.holder.Current()
}

// Refresh downloads both master files plus the KRX fundamentals and swaps
// in a freshly built snapshot. The old snapshot stays active on failure.
func (s *Service) Refresh(ctx context.Context) error {
	kospi, err := s.parser.parseMarket(ctx, s.cfg.KospiURL, "KOSPI")
	if err != nil {
		return fmt.Errorf("refresh master: %w", err)
	}

	kosdaq, err := s.parser.parseMarket(ctx, s.cfg.KosdaqURL, "KOSDAQ")
	if err != nil {
		return fmt.Errorf("refresh master: %w", err)
	}

	entries := append(kospi, kosdaq...)
	if len(entries) == 0 {
		return fmt.Errorf("refresh master: no instruments parsed")
	}

	// 기본지표는 보조 데이터 — 실패해도 스냅샷 교체는 진행
	fundamentals := s.fetchFundamentals(ctx, entries)

	s.holder.Swap(NewSnapshot(entries, fundamentals))

	s.log.WithFields(map[string]interface{}{
		"instruments":  len(entries),
		"fundamentals": len(fundamentals),
	}).Info("Master snapshot refreshed")

	return nil
}

// fetchFundamentals maps KRX rows onto full tickers via the parsed entries.
func (s *Service) fetchFundamentals(ctx context.Context, entries []Entry) map[string]Fundamental {
	items, err := s.krx.FetchAllFundamentals(ctx)
	if err != nil {
		s.log.WithError(err).Warn("KRX fundamentals unavailable, snapshot will carry no bulk ratios")
		return nil
	}

	byCode := make(map[string]string, len(entries))
	for _, e := range entries {
		byCode[e.StockCode] = e.Ticker
	}

	fundamentals := make(map[string]Fundamental, len(items))
	for _, item := range items {
		ticker, ok := byCode[strings.TrimSpace(item.StockCode)]
		if !ok {
			continue
		}
		fundamentals[ticker] = Fundamental{
			PER:           item.PER,
			PBR:           item.PBR,
			EPS:           item.EPS,
			BPS:           item.BPS,
			DividendYield: item.DividendYield,
		}
	}
	return fundamentals
}
