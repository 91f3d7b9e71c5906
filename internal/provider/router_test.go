package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyh-dev/stockscope/internal/contracts"
	"github.com/kyh-dev/stockscope/pkg/config"
	"github.com/kyh-dev/stockscope/pkg/logger"
	"github.com/kyh-dev/stockscope/pkg/redis"
)

type fakeProvider struct {
	kind      contracts.ProviderKind
	record    contracts.RawRecord
	err       error
	headlines []string
	calls     int
}

func (f *fakeProvider) Kind() contracts.ProviderKind { return f.kind }

func (f *fakeProvider) Fetch(ctx context.Context, ticker string) (contracts.RawRecord, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.record, nil
}

func (f *fakeProvider) FetchHeadlines(ctx context.Context, ticker string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.headlines, nil
}

func noopCache(t *testing.T) *redis.Cache {
	t.Helper()
	client, err := redis.New(&config.Config{Redis: config.RedisConfig{Enabled: false}})
	require.NoError(t, err)
	return redis.NewCache(client, "test")
}

func newRouter(domestic, global contracts.Provider, t *testing.T) *Router {
	return NewRouter(domestic, global, noopCache(t), logger.NewNop())
}

func TestFetchRoutesDomesticToKIS(t *testing.T) {
	kis := &fakeProvider{kind: contracts.ProviderKIS, record: contracts.RawRecord{"stck_prpr": "58800"}}
	yahoo := &fakeProvider{kind: contracts.ProviderYahoo}

	r := newRouter(kis, yahoo, t)

	raw, kind, err := r.Fetch(context.Background(), "005930.KS")
	require.NoError(t, err)
	assert.Equal(t, contracts.ProviderKIS, kind)
	assert.Equal(t, "58800", raw["stck_prpr"])
	assert.Equal(t, 0, yahoo.calls)
}

func TestFetchRoutesGlobalToYahoo(t *testing.T) {
	kis := &fakeProvider{kind: contracts.ProviderKIS}
	yahoo := &fakeProvider{kind: contracts.ProviderYahoo, record: contracts.RawRecord{"regularMarketPrice": 145.2}}

	r := newRouter(kis, yahoo, t)

	_, kind, err := r.Fetch(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, contracts.ProviderYahoo, kind)
	assert.Equal(t, 0, kis.calls)
}

func TestFetchFallsBackToYahooOnKISOutage(t *testing.T) {
	kis := &fakeProvider{
		kind: contracts.ProviderKIS,
		err:  &contracts.UpstreamError{Provider: contracts.ProviderKIS, Err: errors.New("rt_cd=1")},
	}
	yahoo := &fakeProvider{kind: contracts.ProviderYahoo, record: contracts.RawRecord{"regularMarketPrice": 58800.0}}

	r := newRouter(kis, yahoo, t)

	raw, kind, err := r.Fetch(context.Background(), "005930.KS")
	require.NoError(t, err)
	assert.Equal(t, contracts.ProviderYahoo, kind)
	assert.Equal(t, 58800.0, raw["regularMarketPrice"])
	assert.Equal(t, 1, kis.calls)
	assert.Equal(t, 1, yahoo.calls)
}

func TestFetchDoesNotFallBackOnNotFound(t *testing.T) {
	kis := &fakeProvider{kind: contracts.ProviderKIS, err: contracts.ErrNotFound}
	yahoo := &fakeProvider{kind: contracts.ProviderYahoo}

	r := newRouter(kis, yahoo, t)

	_, _, err := r.Fetch(context.Background(), "999999.KS")
	assert.True(t, errors.Is(err, contracts.ErrNotFound))
	assert.Equal(t, 0, yahoo.calls)
}

func TestHeadlinesBestEffort(t *testing.T) {
	kis := &fakeProvider{kind: contracts.ProviderKIS, headlines: []string{"실적 발표"}}
	yahoo := &fakeProvider{kind: contracts.ProviderYahoo, err: errors.New("feed down")}

	r := newRouter(kis, yahoo, t)

	assert.Equal(t, []string{"실적 발표"}, r.Headlines(context.Background(), "005930.KS"))
	assert.Nil(t, r.Headlines(context.Background(), "AAPL"))
}
