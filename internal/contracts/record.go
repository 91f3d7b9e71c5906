package contracts

// RawRecord is the untyped bag a provider returns for one ticker.
// Any key may be absent or nil; the normalization adapter decides what to
// keep. Read-only after creation.
type RawRecord map[string]any

// ProviderKind identifies which upstream vocabulary a RawRecord speaks.
type ProviderKind string

const (
	// ProviderYahoo is the global vocabulary (currentPrice, trailingPE, ...)
	ProviderYahoo ProviderKind = "yahoo"
	// ProviderKIS is the domestic vocabulary (stck_prpr, per, hts_avls, ...)
	// 한국투자증권 국내주식 시세 응답 필드명
	ProviderKIS ProviderKind = "kis"
)

// Statement is a financial statement as reporting columns × labeled rows.
// Columns are ordered most recent first; Rows values align with Columns.
type Statement struct {
	Columns []string             `json:"columns"`
	Rows    map[string][]float64 `json:"rows"`
}

// Latest returns the most recent value for the first label that has one.
// NaN-free by construction: absent cells simply are not stored.
func (s *Statement) Latest(labels ...string) (float64, bool) {
	if s == nil {
		return 0, false
	}
	for _, label := range labels {
		values, ok := s.Rows[label]
		if !ok {
			continue
		}
		for _, v := range values {
			return v, true
		}
	}
	return 0, false
}

// LatestPositive returns the most recent strictly positive value among labels.
func (s *Statement) LatestPositive(labels ...string) (float64, bool) {
	if s == nil {
		return 0, false
	}
	for _, label := range labels {
		values, ok := s.Rows[label]
		if !ok {
			continue
		}
		for _, v := range values {
			if v > 0 {
				return v, true
			}
		}
	}
	return 0, false
}

// NormalizedRecord is the canonical field set the calculator consumes.
// Every field is independently optional; absence is a first-class state.
type NormalizedRecord struct {
	Symbol     string `json:"symbol"`
	Name       string `json:"name,omitempty"`
	Sector     string `json:"sector,omitempty"`
	Industry   string `json:"industry,omitempty"`
	Summary    string `json:"summary,omitempty"`
	Currency   string `json:"currency,omitempty"`
	IsDomestic bool   `json:"is_domestic"`

	CurrentPrice      *float64 `json:"current_price,omitempty"`
	PreviousClose     *float64 `json:"previous_close,omitempty"`
	MarketCap         *float64 `json:"market_cap,omitempty"`
	TrailingPE        *float64 `json:"trailing_pe,omitempty"`
	ForwardPE         *float64 `json:"forward_pe,omitempty"`
	PriceToBook       *float64 `json:"price_to_book,omitempty"`
	BookValue         *float64 `json:"book_value,omitempty"`
	NetIncome         *float64 `json:"net_income,omitempty"`
	TotalEquity       *float64 `json:"total_equity,omitempty"`
	TotalAssets       *float64 `json:"total_assets,omitempty"`
	TotalLiabilities  *float64 `json:"total_liabilities,omitempty"`
	TotalRevenue      *float64 `json:"total_revenue,omitempty"`
	SharesOutstanding *float64 `json:"shares_outstanding,omitempty"`
	DividendRate      *float64 `json:"dividend_rate,omitempty"`
	DividendYieldRaw  *float64 `json:"dividend_yield_raw,omitempty"`
	Beta              *float64 `json:"beta,omitempty"`
	FiftyTwoWeekLow   *float64 `json:"fifty_two_week_low,omitempty"`
	FiftyTwoWeekHigh  *float64 `json:"fifty_two_week_high,omitempty"`
	TargetMeanPrice   *float64 `json:"target_mean_price,omitempty"`
	TrailingEPS       *float64 `json:"trailing_eps,omitempty"`
	ForwardEPS        *float64 `json:"forward_eps,omitempty"`
	EPSCurrentYear    *float64 `json:"eps_current_year,omitempty"`
	ReturnOnEquity    *float64 `json:"return_on_equity,omitempty"`
	ProfitMargin      *float64 `json:"profit_margin,omitempty"`

	BalanceSheet    *Statement `json:"balance_sheet,omitempty"`
	IncomeStatement *Statement `json:"income_statement,omitempty"`

	// PriceHistory holds daily closes, oldest first. Feeds the
	// historical-volatility fallback when beta is absent.
	PriceHistory []float64 `json:"price_history,omitempty"`
}

// Float returns a pointer to v. Normalization/test helper.
func Float(v float64) *float64 {
	return &v
}
