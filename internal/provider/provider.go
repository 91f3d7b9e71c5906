// Package provider adapts the external clients to the common Provider
// interface and routes tickers to the right market data source.
package provider

import (
	"context"

	"github.com/kyh-dev/stockscope/internal/contracts"
	"github.com/kyh-dev/stockscope/internal/external/kis"
	"github.com/kyh-dev/stockscope/internal/external/naver"
	"github.com/kyh-dev/stockscope/internal/external/yahoo"
)

// kisProvider serves domestic tickers: quotes and statements from the KIS
// open API, headlines scraped from Naver Finance.
type kisProvider struct {
	quotes *kis.Client
	news   *naver.Client
}

// NewKIS wraps the KIS and Naver clients into a Provider.
func NewKIS(quotes *kis.Client, news *naver.Client) contracts.Provider {
	return &kisProvider{quotes: quotes, news: news}
}

func (p *kisProvider) Kind() contracts.ProviderKind {
	return contracts.ProviderKIS
}

func (p *kisProvider) Fetch(ctx context.Context, ticker string) (contracts.RawRecord, error) {
	return p.quotes.FetchQuote(ctx, ticker)
}

func (p *kisProvider) FetchHeadlines(ctx context.Context, ticker string) ([]string, error) {
	return p.news.FetchHeadlines(ctx, ticker)
}

// yahooProvider serves global tickers (and acts as the domestic fallback).
type yahooProvider struct {
	client *yahoo.Client
}

// NewYahoo wraps the Yahoo client into a Provider.
func NewYahoo(client *yahoo.Client) contracts.Provider {
	return &yahooProvider{client: client}
}

func (p *yahooProvider) Kind() contracts.ProviderKind {
	return contracts.ProviderYahoo
}

func (p *yahooProvider) Fetch(ctx context.Context, ticker string) (contracts.RawRecord, error) {
	return p.client.FetchQuote(ctx, ticker)
}

func (p *yahooProvider) FetchHeadlines(ctx context.Context, ticker string) ([]string, error) {
	return p.client.FetchHeadlines(ctx, ticker)
}
