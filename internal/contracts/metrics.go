package contracts

// VolatilityKind tags which strategy produced the volatility figure.
type VolatilityKind string

const (
	VolatilityBeta       VolatilityKind = "beta"
	VolatilityHistorical VolatilityKind = "historical"
)

// DerivedMetrics is the calculator's output for one ticker.
// A nil pointer means the cascade exhausted every strategy; that is a
// legitimate "unknown", not an error. DividendYield and the PER/PBR 0.0
// defaults follow the cascade contracts.
type DerivedMetrics struct {
	CurrentPrice   float64        `json:"current_price"`
	PERatio        *float64       `json:"pe_ratio,omitempty"`
	PBRatio        *float64       `json:"pb_ratio,omitempty"`
	DividendYield  float64        `json:"dividend_yield"` // percent units
	ROE            *float64       `json:"roe,omitempty"`  // percent units
	EPS            *float64       `json:"eps,omitempty"`
	Volatility     *float64       `json:"volatility,omitempty"`
	VolatilityKind VolatilityKind `json:"volatility_kind,omitempty"`
}

// ScoreBreakdown holds the four sub-scores and their weighted total.
// total = clamp(0, 100, 0.4·P + 0.3·V + 0.2·M + 0.1·S), one decimal.
type ScoreBreakdown struct {
	Profitability float64 `json:"profitability"`
	Valuation     float64 `json:"valuation"`
	Momentum      float64 `json:"momentum"`
	Stability     float64 `json:"stability"`
	Total         float64 `json:"total"`
}

// DisplayFields are the formatted strings shown alongside raw metrics.
type DisplayFields struct {
	Price         string `json:"price"`
	PreviousClose string `json:"previous_close"`
	Change        string `json:"change"`
	MarketCap     string `json:"market_cap"`
	PERatio       string `json:"pe_ratio"`
	PBRatio       string `json:"pb_ratio"`
	DividendYield string `json:"dividend_yield"`
	ROE           string `json:"roe"`
	EPS           string `json:"eps"`
	Volatility    string `json:"volatility"`
	UpdatedAt     string `json:"updated_at"`
}

// Analysis is the full per-ticker payload: identity, raw metrics, display
// strings, score breakdown, and headlines. Persisted as JSONB.
type Analysis struct {
	Ticker     string         `json:"ticker"`
	Name       string         `json:"name,omitempty"`
	Sector     string         `json:"sector,omitempty"`
	Industry   string         `json:"industry,omitempty"`
	Currency   string         `json:"currency,omitempty"`
	IsDomestic bool           `json:"is_domestic"`
	Provider   ProviderKind   `json:"provider"`
	Metrics    DerivedMetrics `json:"metrics"`
	Display    DisplayFields  `json:"display"`
	Score      ScoreBreakdown `json:"score"`
	Headlines  []string       `json:"headlines,omitempty"`
}

// Commentary is the LLM's narrative verdict on an Analysis.
type Commentary struct {
	Score          float64           `json:"score"`
	Signal         string            `json:"signal"` // 매수/보유/매도 계열 라벨
	OneLine        string            `json:"one_line"`
	Summary        []string          `json:"summary"`
	Risk           string            `json:"risk"`
	MetricInsights map[string]string `json:"metric_insights,omitempty"`
}
