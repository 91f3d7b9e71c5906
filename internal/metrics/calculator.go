// Package metrics derives PER, PBR, ROE, EPS, dividend yield, and
// volatility from a normalized record through ordered fallback cascades.
// 각 지표는 여러 단계 방어 로직으로 계산됨.
package metrics

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/kyh-dev/stockscope/internal/contracts"
	"github.com/kyh-dev/stockscope/pkg/logger"
)

// tradingDaysPerYear annualizes daily volatility.
const tradingDaysPerYear = 252

// equityLabels are balance-sheet line-item variants for total equity,
// scanned in order, case-insensitive substring match.
var equityLabels = []string{
	"Stockholders Equity",
	"Total Stockholder Equity",
	"Total Equity Gross Minority Interest",
	"Total Stockholders' Equity",
	"Stockholders' Equity",
	"자본총계",
}

// netIncomeLabels are income-statement variants for net income.
var netIncomeLabels = []string{
	"Net Income",
	"Net Income Common Stockholders",
	"Net Income Available To Common Stockholders",
	"Net Income After Taxes",
	"당기순이익",
}

// Fallback carries bulk-cache ratios from the master snapshot, used as the
// last cascade step. Zero means unknown.
type Fallback struct {
	PER           float64
	PBR           float64
	DividendYield float64 // percent units
}

// Calculator runs the metric cascades. Stateless across invocations.
type Calculator struct {
	log *logger.Logger
}

// NewCalculator creates a Calculator.
func NewCalculator(log *logger.Logger) *Calculator {
	return &Calculator{log: log}
}

// Calculate derives every metric for one record. Never fails; exhausted
// cascades yield absent or default values.
func (c *Calculator) Calculate(rec *contracts.NormalizedRecord, fb Fallback) contracts.DerivedMetrics {
	price := 0.0
	if rec.CurrentPrice != nil {
		price = *rec.CurrentPrice
	}

	m := contracts.DerivedMetrics{
		CurrentPrice:  price,
		PERatio:       contracts.Float(c.perRatio(rec, fb)),
		PBRatio:       contracts.Float(c.pbRatio(rec, fb, price)),
		DividendYield: c.dividendYield(rec, fb, price),
	}

	if roe, ok := c.roe(rec); ok {
		m.ROE = contracts.Float(roe)
	}
	if eps, ok := c.eps(rec, price); ok {
		m.EPS = contracts.Float(eps)
	}
	if vol, kind, ok := c.volatility(rec); ok {
		m.Volatility = contracts.Float(vol)
		m.VolatilityKind = kind
	}

	return m
}

// perRatio: trailing PE → market cap / net income → forward PE → bulk
// cache → 0.0.
func (c *Calculator) perRatio(rec *contracts.NormalizedRecord, fb Fallback) float64 {
	value, ok := runCascade(c.log, "per", []strategy{
		{"trailing_pe", func() (float64, bool) {
			return deref(rec.TrailingPE), rec.TrailingPE != nil && *rec.TrailingPE != 0
		}},
		{"market_cap/net_income", func() (float64, bool) {
			if rec.MarketCap == nil || rec.NetIncome == nil {
				return 0, false
			}
			if *rec.MarketCap <= 0 || *rec.NetIncome <= 0 {
				return 0, false
			}
			return round2(*rec.MarketCap / *rec.NetIncome), true
		}},
		{"forward_pe", func() (float64, bool) {
			return deref(rec.ForwardPE), rec.ForwardPE != nil && *rec.ForwardPE != 0
		}},
		{"bulk_cache", func() (float64, bool) {
			return fb.PER, fb.PER != 0
		}},
	})
	if !ok {
		return 0.0
	}
	return value
}

// pbRatio: priceToBook → price / book value → market cap / equity →
// market cap / balance-sheet equity → bulk cache → 0.0.
func (c *Calculator) pbRatio(rec *contracts.NormalizedRecord, fb Fallback, price float64) float64 {
	value, ok := runCascade(c.log, "pbr", []strategy{
		{"price_to_book", func() (float64, bool) {
			return deref(rec.PriceToBook), rec.PriceToBook != nil && *rec.PriceToBook != 0
		}},
		{"price/book_value", func() (float64, bool) {
			if price <= 0 || rec.BookValue == nil || *rec.BookValue <= 0 {
				return 0, false
			}
			return round2(price / *rec.BookValue), true
		}},
		{"market_cap/equity", func() (float64, bool) {
			equity, ok := totalEquity(rec)
			if !ok || rec.MarketCap == nil || *rec.MarketCap <= 0 || equity <= 0 {
				return 0, false
			}
			return round2(*rec.MarketCap / equity), true
		}},
		{"market_cap/balance_sheet_equity", func() (float64, bool) {
			if rec.MarketCap == nil || *rec.MarketCap <= 0 {
				return 0, false
			}
			equity, ok := scanStatement(rec.BalanceSheet, equityLabels, true)
			if !ok {
				return 0, false
			}
			return round2(*rec.MarketCap / equity), true
		}},
		{"bulk_cache", func() (float64, bool) {
			return fb.PBR, fb.PBR != 0
		}},
	})
	if !ok {
		return 0.0
	}
	return value
}

// roe (percent): direct field ×100 → net income / equity → statement scan.
// Absent when everything fails — zero is a computed value, not a default.
func (c *Calculator) roe(rec *contracts.NormalizedRecord) (float64, bool) {
	return runCascade(c.log, "roe", []strategy{
		{"return_on_equity", func() (float64, bool) {
			if rec.ReturnOnEquity == nil || *rec.ReturnOnEquity == 0 {
				return 0, false
			}
			return round2(*rec.ReturnOnEquity * 100), true
		}},
		{"net_income/equity", func() (float64, bool) {
			equity, ok := totalEquity(rec)
			if !ok || equity <= 0 {
				return 0, false
			}
			if rec.NetIncome == nil || *rec.NetIncome <= 0 {
				return 0, false
			}
			return round2(*rec.NetIncome / equity * 100), true
		}},
		{"statement_scan", func() (float64, bool) {
			equity, ok := scanStatement(rec.BalanceSheet, equityLabels, true)
			if !ok {
				return 0, false
			}
			netIncome, ok := scanStatement(rec.IncomeStatement, netIncomeLabels, false)
			if !ok {
				return 0, false
			}
			return round2(netIncome / equity * 100), true
		}},
	})
}

// eps: trailing/forward EPS → net income / shares → current-year EPS →
// price / trailing PE. Absent when everything fails.
func (c *Calculator) eps(rec *contracts.NormalizedRecord, price float64) (float64, bool) {
	return runCascade(c.log, "eps", []strategy{
		{"trailing_or_forward", func() (float64, bool) {
			if rec.TrailingEPS != nil && *rec.TrailingEPS > 0 {
				return *rec.TrailingEPS, true
			}
			if rec.ForwardEPS != nil && *rec.ForwardEPS > 0 {
				return *rec.ForwardEPS, true
			}
			return 0, false
		}},
		{"net_income/shares", func() (float64, bool) {
			if rec.NetIncome == nil || rec.SharesOutstanding == nil {
				return 0, false
			}
			if *rec.SharesOutstanding <= 0 || *rec.NetIncome <= 0 {
				return 0, false
			}
			return *rec.NetIncome / *rec.SharesOutstanding, true
		}},
		{"eps_current_year", func() (float64, bool) {
			return deref(rec.EPSCurrentYear), rec.EPSCurrentYear != nil && *rec.EPSCurrentYear > 0
		}},
		{"price/trailing_pe", func() (float64, bool) {
			if price <= 0 || rec.TrailingPE == nil || *rec.TrailingPE <= 0 {
				return 0, false
			}
			return price / *rec.TrailingPE, true
		}},
	})
}

// dividendYield (percent): dividend rate / price → source yield with the
// <1.0 fraction heuristic → bulk cache → 0.0.
// 0.03 → 3.0 (fraction), 3.0 → 3.0 (이미 %값, 재변환 금지)
func (c *Calculator) dividendYield(rec *contracts.NormalizedRecord, fb Fallback, price float64) float64 {
	value, ok := runCascade(c.log, "dividend_yield", []strategy{
		{"dividend_rate/price", func() (float64, bool) {
			if rec.DividendRate == nil || *rec.DividendRate <= 0 || price <= 0 {
				return 0, false
			}
			return *rec.DividendRate / price * 100, true
		}},
		{"source_yield", func() (float64, bool) {
			if rec.DividendYieldRaw == nil || *rec.DividendYieldRaw == 0 {
				return 0, false
			}
			yield := *rec.DividendYieldRaw
			if yield < 1.0 {
				yield *= 100
			}
			return yield, true
		}},
		{"bulk_cache", func() (float64, bool) {
			return fb.DividendYield, fb.DividendYield != 0
		}},
	})
	if !ok {
		return 0.0
	}
	return value
}

// volatility: beta from source, else annualized std of daily returns over
// the price history. Absent when neither exists.
func (c *Calculator) volatility(rec *contracts.NormalizedRecord) (float64, contracts.VolatilityKind, bool) {
	if rec.Beta != nil && *rec.Beta != 0 {
		return *rec.Beta, contracts.VolatilityBeta, true
	}

	if len(rec.PriceHistory) >= 2 {
		returns := dailyReturns(rec.PriceHistory)
		if len(returns) > 0 {
			annualized := stat.StdDev(returns, nil) * math.Sqrt(tradingDaysPerYear) * 100
			return round2(annualized), contracts.VolatilityHistorical, true
		}
	}

	return 0, "", false
}

// dailyReturns computes percentage changes between consecutive closes.
// Zero closes are skipped to avoid division blowups.
func dailyReturns(closes []float64) []float64 {
	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		prev := closes[i-1]
		if prev == 0 {
			continue
		}
		returns = append(returns, (closes[i]-prev)/prev)
	}
	return returns
}

// totalEquity derives equity from the direct field, else assets − liabilities.
func totalEquity(rec *contracts.NormalizedRecord) (float64, bool) {
	if rec.TotalEquity != nil && *rec.TotalEquity != 0 {
		return *rec.TotalEquity, true
	}
	if rec.TotalAssets != nil && rec.TotalLiabilities != nil {
		if *rec.TotalAssets > 0 && *rec.TotalLiabilities >= 0 {
			return *rec.TotalAssets - *rec.TotalLiabilities, true
		}
	}
	return 0, false
}

// scanStatement finds the most recent value whose row label contains one of
// the keywords (case-insensitive), keyword priority order. requirePositive
// rejects non-positive matches.
func scanStatement(stmt *contracts.Statement, keywords []string, requirePositive bool) (float64, bool) {
	if stmt == nil {
		return 0, false
	}
	for _, keyword := range keywords {
		lower := strings.ToLower(keyword)
		for label, values := range stmt.Rows {
			if !strings.Contains(strings.ToLower(label), lower) {
				continue
			}
			if len(values) == 0 {
				continue
			}
			// Only the most recent reporting column counts.
			v := values[0]
			if requirePositive && v <= 0 {
				continue
			}
			return v, true
		}
	}
	return 0, false
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
