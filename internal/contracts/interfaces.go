package contracts

import (
	"context"
	"time"
)

// Provider fetches a raw record and recent headlines for one ticker.
// ⭐ SSOT: 시세 제공자 인터페이스 (Yahoo / KIS 공통)
type Provider interface {
	Kind() ProviderKind
	Fetch(ctx context.Context, ticker string) (RawRecord, error)
	// FetchHeadlines returns at most 3 recent headline titles.
	FetchHeadlines(ctx context.Context, ticker string) ([]string, error)
}

// Resolver turns a free-text query into a ticker symbol.
type Resolver interface {
	Resolve(ctx context.Context, query string) (string, error)
}

// AnalysisCache reads/writes previously computed analyses. Freshness policy
// belongs to the caller; Get reports the record's age.
type AnalysisCache interface {
	Get(ctx context.Context, ticker string) (*Analysis, time.Duration, error)
	Put(ctx context.Context, analysis *Analysis) error
}

// Commentator produces narrative commentary for a finished analysis.
type Commentator interface {
	Comment(ctx context.Context, analysis *Analysis) (*Commentary, error)
}
