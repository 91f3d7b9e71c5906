// Package valuation orchestrates one analysis run: resolve the query to a
// ticker, fetch and normalize the record, derive metrics, score, format,
// persist, and optionally narrate.
// ⭐ SSOT: 분석 파이프라인 순서는 여기서만
package valuation

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/kyh-dev/stockscope/internal/contracts"
	"github.com/kyh-dev/stockscope/internal/format"
	"github.com/kyh-dev/stockscope/internal/master"
	"github.com/kyh-dev/stockscope/internal/metrics"
	"github.com/kyh-dev/stockscope/internal/normalize"
	"github.com/kyh-dev/stockscope/internal/scoring"
	"github.com/kyh-dev/stockscope/pkg/logger"
)

// maxAge is the freshness window: a stored analysis younger than this is
// served as-is without refetching.
const maxAge = time.Hour

// tickerPattern accepts bare symbols and domestic-suffixed ones.
var tickerPattern = regexp.MustCompile(`^[A-Z0-9.\-]{1,12}$`)

// domesticCodePattern matches a bare 6-digit KRX short code.
var domesticCodePattern = regexp.MustCompile(`^\d{6}$`)

// MarketData fetches raw records and headlines. Satisfied by provider.Router.
type MarketData interface {
	Fetch(ctx context.Context, ticker string) (contracts.RawRecord, contracts.ProviderKind, error)
	Headlines(ctx context.Context, ticker string) []string
}

// SnapshotSource exposes the active master snapshot. Satisfied by
// master.Service.
type SnapshotSource interface {
	Current() *master.Snapshot
}

// Service runs the analysis pipeline.
type Service struct {
	marketData  MarketData
	snapshots   SnapshotSource
	resolver    contracts.Resolver
	cache       contracts.AnalysisCache
	commentator contracts.Commentator // nil이면 코멘터리 생략
	calc        *metrics.Calculator
	engine      *scoring.Engine
	log         *logger.Logger
}

// NewService wires the pipeline. commentator may be nil when disabled.
func NewService(
	marketData MarketData,
	snapshots SnapshotSource,
	resolver contracts.Resolver,
	cache contracts.AnalysisCache,
	commentator contracts.Commentator,
	log *logger.Logger,
) *Service {
	return &Service{
		marketData:  marketData,
		snapshots:   snapshots,
		resolver:    resolver,
		cache:       cache,
		commentator: commentator,
		calc:        metrics.NewCalculator(log),
		engine:      scoring.NewEngine(),
		log:         log,
	}
}

// ResolveTicker turns a query (symbol, KRX short code, or Korean company
// name) into a ticker. Korean names resolve against the master snapshot;
// everything else unrecognized goes to the search resolver.
func (s *Service) ResolveTicker(ctx context.Context, query string) (string, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return "", fmt.Errorf("empty query: %w", contracts.ErrNotFound)
	}

	upper := strings.ToUpper(q)
	if domesticCodePattern.MatchString(upper) {
		return s.qualifyDomesticCode(upper), nil
	}
	if tickerPattern.MatchString(upper) {
		return upper, nil
	}

	if ticker, ok := s.snapshots.Current().ResolveName(q); ok {
		return ticker, nil
	}

	return s.resolver.Resolve(ctx, q)
}

// qualifyDomesticCode appends the market suffix for a bare short code.
func (s *Service) qualifyDomesticCode(code string) string {
	snap := s.snapshots.Current()
	if _, ok := snap.Lookup(code + ".KS"); ok {
		return code + ".KS"
	}
	if _, ok := snap.Lookup(code + ".KQ"); ok {
		return code + ".KQ"
	}
	return code + ".KS"
}

// Analyze resolves the query and returns a full analysis, reusing a stored
// one when it is fresh enough.
func (s *Service) Analyze(ctx context.Context, query string) (*contracts.Analysis, error) {
	ticker, err := s.ResolveTicker(ctx, query)
	if err != nil {
		return nil, err
	}

	if cached, age, err := s.cache.Get(ctx, ticker); err == nil && cached != nil && age < maxAge {
		s.log.WithFields(map[string]interface{}{
			"ticker": ticker,
			"age":    age,
		}).Debug("Serving stored analysis")
		return cached, nil
	} else if err != nil {
		s.log.WithError(err).WithField("ticker", ticker).Warn("analysis cache read failed")
	}

	return s.compute(ctx, ticker)
}

// AnalyzeWithCommentary runs Analyze and then the commentator. A nil
// commentator means commentary is disabled and nil is returned for it.
func (s *Service) AnalyzeWithCommentary(ctx context.Context, query string) (*contracts.Analysis, *contracts.Commentary, error) {
	analysis, err := s.Analyze(ctx, query)
	if err != nil {
		return nil, nil, err
	}
	if s.commentator == nil {
		return analysis, nil, nil
	}

	commentary, err := s.commentator.Comment(ctx, analysis)
	if err != nil {
		// 코멘터리 실패는 분석 자체를 막지 않음
		s.log.WithError(err).WithField("ticker", analysis.Ticker).Warn("commentary failed")
		return analysis, nil, nil
	}
	return analysis, commentary, nil
}

// compute runs the full pipeline for a resolved ticker.
func (s *Service) compute(ctx context.Context, ticker string) (*contracts.Analysis, error) {
	raw, kind, err := s.marketData.Fetch(ctx, ticker)
	if err != nil {
		return nil, err
	}

	rec := normalize.Normalize(raw, kind, ticker)
	snap := s.snapshots.Current()

	m := s.calc.Calculate(rec, s.fallback(snap, ticker, rec.IsDomestic))
	score := s.engine.Score(rec, m)
	headlines := s.marketData.Headlines(ctx, ticker)

	name := rec.Name
	if rec.IsDomestic {
		// 국내 종목은 마스터 파일의 한글 종목명 우선
		if korName, ok := snap.KoreanName(ticker); ok {
			name = korName
		}
	}

	analysis := &contracts.Analysis{
		Ticker:     ticker,
		Name:       name,
		Sector:     rec.Sector,
		Industry:   rec.Industry,
		Currency:   rec.Currency,
		IsDomestic: rec.IsDomestic,
		Provider:   kind,
		Metrics:    m,
		Display:    buildDisplay(rec, m),
		Score:      score,
		Headlines:  headlines,
	}

	if err := s.cache.Put(ctx, analysis); err != nil {
		s.log.WithError(err).WithField("ticker", ticker).Warn("analysis cache write failed")
	}

	s.log.WithFields(map[string]interface{}{
		"ticker":   ticker,
		"provider": kind,
		"score":    score.Total,
	}).Info("Analysis computed")

	return analysis, nil
}

// fallback pulls bulk ratios from the master snapshot for domestic tickers.
func (s *Service) fallback(snap *master.Snapshot, ticker string, domestic bool) metrics.Fallback {
	if !domestic {
		return metrics.Fallback{}
	}
	f, ok := snap.Fundamentals(ticker)
	if !ok {
		return metrics.Fallback{}
	}
	return metrics.Fallback{
		PER:           f.PER,
		PBR:           f.PBR,
		DividendYield: f.DividendYield,
	}
}

// buildDisplay renders the formatted field set for one record.
func buildDisplay(rec *contracts.NormalizedRecord, m contracts.DerivedMetrics) contracts.DisplayFields {
	korean := rec.IsDomestic

	return contracts.DisplayFields{
		Price:         format.Currency(rec.CurrentPrice, korean),
		PreviousClose: format.Currency(rec.PreviousClose, korean),
		Change:        format.ChangePercent(rec.CurrentPrice, rec.PreviousClose),
		MarketCap:     format.MarketCap(rec.MarketCap),
		PERatio:       format.Ratio(m.PERatio),
		PBRatio:       format.Ratio(m.PBRatio),
		DividendYield: format.Dividend(m.DividendYield, korean),
		ROE:           format.ROE(m.ROE),
		EPS:           format.EPS(m.EPS, korean),
		Volatility:    format.Volatility(m.Volatility, m.VolatilityKind),
		UpdatedAt:     format.DateTime(time.Now()),
	}
}
