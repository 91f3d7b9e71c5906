package provider

import (
	"context"

	"github.com/kyh-dev/stockscope/internal/contracts"
	"github.com/kyh-dev/stockscope/internal/normalize"
	"github.com/kyh-dev/stockscope/pkg/logger"
	"github.com/kyh-dev/stockscope/pkg/redis"
)

// Router picks the provider for a ticker. Domestic tickers (.KS/.KQ) hit
// KIS first and fall back to Yahoo when KIS is down; everything else goes
// straight to Yahoo.
// ⭐ SSOT: 제공자 선택 로직은 여기서만
type Router struct {
	domestic contracts.Provider
	global   contracts.Provider
	cache    *redis.Cache
	log      *logger.Logger
}

// NewRouter creates the provider router. cache may serve a disabled client;
// misses and write failures are silent.
func NewRouter(domestic, global contracts.Provider, cache *redis.Cache, log *logger.Logger) *Router {
	return &Router{
		domestic: domestic,
		global:   global,
		cache:    cache,
		log:      log,
	}
}

// cachedQuote is the redis payload for a fetched raw record.
type cachedQuote struct {
	Kind   contracts.ProviderKind `json:"kind"`
	Record contracts.RawRecord    `json:"record"`
}

// Fetch returns the raw record for a ticker along with the provider kind
// that produced it.
func (r *Router) Fetch(ctx context.Context, ticker string) (contracts.RawRecord, contracts.ProviderKind, error) {
	var cached cachedQuote
	if hit, err := r.cache.Get(ctx, redis.QuoteKey(ticker), &cached); err == nil && hit {
		return cached.Record, cached.Kind, nil
	}

	primary := r.pick(ticker)

	raw, err := primary.Fetch(ctx, ticker)
	if err != nil && primary.Kind() == contracts.ProviderKIS && contracts.IsUpstream(err) {
		// 국내 종목도 Yahoo에 .KS/.KQ 접미사로 조회 가능
		r.log.WithError(err).WithField("ticker", ticker).Warn("KIS unavailable, falling back to Yahoo")
		primary = r.global
		raw, err = primary.Fetch(ctx, ticker)
	}
	if err != nil {
		return nil, "", err
	}

	if cacheErr := r.cache.Set(ctx, redis.QuoteKey(ticker), cachedQuote{Kind: primary.Kind(), Record: raw}, redis.TTLQuote); cacheErr != nil {
		r.log.WithError(cacheErr).Debug("quote cache write failed")
	}

	return raw, primary.Kind(), nil
}

// Headlines returns up to 3 recent headlines for the ticker. Best effort:
// scraping or feed failures yield an empty list, never an error upstream.
func (r *Router) Headlines(ctx context.Context, ticker string) []string {
	var cached []string
	if hit, err := r.cache.Get(ctx, redis.HeadlineKey(ticker), &cached); err == nil && hit {
		return cached
	}

	headlines, err := r.pick(ticker).FetchHeadlines(ctx, ticker)
	if err != nil {
		r.log.WithError(err).WithField("ticker", ticker).Warn("headlines unavailable")
		return nil
	}

	if cacheErr := r.cache.Set(ctx, redis.HeadlineKey(ticker), headlines, redis.TTLSnapshot); cacheErr != nil {
		r.log.WithError(cacheErr).Debug("headline cache write failed")
	}

	return headlines
}

func (r *Router) pick(ticker string) contracts.Provider {
	if normalize.IsDomesticTicker(ticker) {
		return r.domestic
	}
	return r.global
}
