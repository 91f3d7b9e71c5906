// Package normalize maps heterogeneous provider records into the canonical
// NormalizedRecord shape. Every field maps independently; missing or
// malformed values stay absent instead of failing the whole record.
package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/kyh-dev/stockscope/internal/contracts"
)

// Normalize converts a raw provider record into the canonical shape.
// Pure function of its input; never fails.
func Normalize(raw contracts.RawRecord, kind contracts.ProviderKind, ticker string) *contracts.NormalizedRecord {
	switch kind {
	case contracts.ProviderKIS:
		return fromKIS(raw, ticker)
	default:
		return fromYahoo(raw, ticker)
	}
}

// IsDomesticTicker reports whether a ticker belongs to the Korean market.
func IsDomesticTicker(ticker string) bool {
	upper := strings.ToUpper(ticker)
	return strings.HasSuffix(upper, ".KS") || strings.HasSuffix(upper, ".KQ")
}

// fromYahoo maps the global vocabulary (yfinance-style field names).
func fromYahoo(raw contracts.RawRecord, ticker string) *contracts.NormalizedRecord {
	domestic := IsDomesticTicker(ticker)
	currency := str(raw, "currency")
	if currency == "" {
		if domestic {
			currency = "KRW"
		} else {
			currency = "USD"
		}
	}

	rec := &contracts.NormalizedRecord{
		Symbol:     strings.ToUpper(ticker),
		Name:       firstStr(raw, "shortName", "longName"),
		Sector:     str(raw, "sector"),
		Industry:   str(raw, "industry"),
		Summary:    str(raw, "longBusinessSummary"),
		Currency:   currency,
		IsDomestic: domestic,

		PreviousClose:     num(raw, "previousClose"),
		MarketCap:         num(raw, "marketCap"),
		TrailingPE:        num(raw, "trailingPE"),
		ForwardPE:         num(raw, "forwardPE"),
		PriceToBook:       num(raw, "priceToBook"),
		BookValue:         num(raw, "bookValue"),
		NetIncome:         num(raw, "netIncomeToCommon"),
		TotalEquity:       firstNum(raw, "totalStockholderEquity", "totalEquity"),
		TotalAssets:       num(raw, "totalAssets"),
		TotalLiabilities:  num(raw, "totalLiabilities"),
		TotalRevenue:      num(raw, "totalRevenue"),
		SharesOutstanding: num(raw, "sharesOutstanding"),
		DividendRate:      num(raw, "dividendRate"),
		DividendYieldRaw:  num(raw, "dividendYield"),
		Beta:              num(raw, "beta"),
		FiftyTwoWeekLow:   num(raw, "fiftyTwoWeekLow"),
		FiftyTwoWeekHigh:  num(raw, "fiftyTwoWeekHigh"),
		TargetMeanPrice:   num(raw, "targetMeanPrice"),
		TrailingEPS:       num(raw, "trailingEps"),
		ForwardEPS:        num(raw, "forwardEps"),
		EPSCurrentYear:    num(raw, "epsCurrentYear"),
		ReturnOnEquity:    num(raw, "returnOnEquity"),
		ProfitMargin:      firstNum(raw, "profitMargins", "profitMargin"),
	}

	if rec.Name == "" {
		rec.Name = rec.Symbol
	}

	rec.BalanceSheet = statement(raw, "balance_sheet")
	rec.IncomeStatement = statement(raw, "income_statement")
	rec.PriceHistory = floatSlice(raw, "price_history")

	// 현재가 fallback chain: currentPrice → regularMarketPrice →
	// previousClose → open → last close
	price := firstNum(raw, "currentPrice", "regularMarketPrice", "previousClose", "open")
	if price == nil && len(rec.PriceHistory) > 0 {
		price = contracts.Float(rec.PriceHistory[len(rec.PriceHistory)-1])
	}
	rec.CurrentPrice = price

	return rec
}

// fromKIS maps the domestic vocabulary. KIS responses carry numbers as
// strings; hts_avls 단위는 억원이므로 원 단위로 환산.
func fromKIS(raw contracts.RawRecord, ticker string) *contracts.NormalizedRecord {
	rec := &contracts.NormalizedRecord{
		Symbol:     strings.ToUpper(ticker),
		Name:       str(raw, "hts_kor_isnm"),
		Sector:     firstStr(raw, "bstp_kor_isnm", "bstp_nm"),
		Industry:   firstStr(raw, "bstp_kor_isnm", "bstp_nm"),
		Currency:   "KRW",
		IsDomestic: true,

		CurrentPrice:     num(raw, "stck_prpr"),
		PreviousClose:    num(raw, "prdy_clpr"),
		TrailingPE:       positiveNum(raw, "per"),
		PriceToBook:      positiveNum(raw, "pbr"),
		TrailingEPS:      positiveNum(raw, "eps"),
		DividendYieldRaw: positiveNum(raw, "dvyd"),
		FiftyTwoWeekHigh: firstNum(raw, "w52_hgpr", "stck_hgpr"),
		FiftyTwoWeekLow:  firstNum(raw, "w52_lwpr", "stck_lwpr"),
		TargetMeanPrice:  num(raw, "target_mean_price"),
		SharesOutstanding: num(raw, "lstn_stcn"),
	}

	if cap := num(raw, "hts_avls"); cap != nil {
		rec.MarketCap = contracts.Float(*cap * 1e8)
	}

	if rec.Name == "" {
		rec.Name = rec.Symbol
	}

	rec.BalanceSheet = statement(raw, "balance_sheet")
	rec.IncomeStatement = statement(raw, "income_statement")
	rec.PriceHistory = floatSlice(raw, "price_history")

	if ni, ok := rec.IncomeStatement.Latest("당기순이익", "Net Income"); ok {
		rec.NetIncome = contracts.Float(ni)
	}
	if eq, ok := rec.BalanceSheet.LatestPositive("자본총계", "Total Stockholder Equity"); ok {
		rec.TotalEquity = contracts.Float(eq)
	}
	if rev, ok := rec.IncomeStatement.LatestPositive("매출액", "Total Revenue"); ok {
		rec.TotalRevenue = contracts.Float(rev)
	}

	return rec
}

// str fetches a non-empty string value.
func str(raw contracts.RawRecord, key string) string {
	if v, ok := raw[key]; ok {
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

func firstStr(raw contracts.RawRecord, keys ...string) string {
	for _, key := range keys {
		if s := str(raw, key); s != "" {
			return s
		}
	}
	return ""
}

// num coerces a value to *float64. Nil, non-finite, and unparseable values
// map to absent.
func num(raw contracts.RawRecord, key string) *float64 {
	v, ok := raw[key]
	if !ok || v == nil {
		return nil
	}
	f, ok := toFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return contracts.Float(f)
}

// positiveNum is num but treats zero-or-negative as absent. KIS reports
// "0.00" for metrics it does not have.
func positiveNum(raw contracts.RawRecord, key string) *float64 {
	f := num(raw, key)
	if f == nil || *f <= 0 {
		return nil
	}
	return f
}

// firstNum returns the first key whose value is present and non-zero.
func firstNum(raw contracts.RawRecord, keys ...string) *float64 {
	for _, key := range keys {
		if f := num(raw, key); f != nil && *f != 0 {
			return f
		}
	}
	return nil
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(t), ",", "")
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func statement(raw contracts.RawRecord, key string) *contracts.Statement {
	v, ok := raw[key]
	if !ok || v == nil {
		return nil
	}
	if s, ok := v.(*contracts.Statement); ok {
		return s
	}
	if s, ok := v.(contracts.Statement); ok {
		return &s
	}
	// 캐시를 거친 레코드는 JSON 왕복으로 map이 됨
	if m, ok := v.(map[string]any); ok {
		data, err := json.Marshal(m)
		if err != nil {
			return nil
		}
		var s contracts.Statement
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		if len(s.Rows) == 0 {
			return nil
		}
		return &s
	}
	return nil
}

func floatSlice(raw contracts.RawRecord, key string) []float64 {
	v, ok := raw[key]
	if !ok || v == nil {
		return nil
	}
	switch t := v.(type) {
	case []float64:
		return t
	case []any:
		out := make([]float64, 0, len(t))
		for _, item := range t {
			if f, ok := toFloat(item); ok {
				out = append(out, f)
			}
		}
		return out
	default:
		return nil
	}
}
