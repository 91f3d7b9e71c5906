// Package scoring blends derived metrics into four sub-scores and a single
// 0–100 investability score. The curves are hand-tuned piecewise-linear
// heuristics; boundary values belong to the lower segment.
package scoring

import (
	"math"

	"github.com/kyh-dev/stockscope/internal/contracts"
)

// Sub-score weights. 수익성 40%, 밸류에이션 30%, 모멘텀 20%, 안정성 10%
const (
	weightProfitability = 0.4
	weightValuation     = 0.3
	weightMomentum      = 0.2
	weightStability     = 0.1

	neutral = 50.0
)

// Engine computes score breakdowns. Stateless.
type Engine struct{}

// NewEngine creates an Engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Score computes the four sub-scores and their weighted total.
func (e *Engine) Score(rec *contracts.NormalizedRecord, m contracts.DerivedMetrics) contracts.ScoreBreakdown {
	b := contracts.ScoreBreakdown{
		Profitability: e.profitability(rec, m),
		Valuation:     e.valuation(m),
		Momentum:      e.momentum(rec, m),
		Stability:     e.stability(rec),
	}

	total := weightProfitability*b.Profitability +
		weightValuation*b.Valuation +
		weightMomentum*b.Momentum +
		weightStability*b.Stability
	b.Total = round1(clamp(total))

	return b
}

// profitability = 0.5·roe_score + 0.5·margin_score.
func (e *Engine) profitability(rec *contracts.NormalizedRecord, m contracts.DerivedMetrics) float64 {
	roeScore := neutral
	if m.ROE != nil {
		roeScore = rateScore(*m.ROE)
	}

	marginScore := neutral
	if margin, ok := profitMargin(rec); ok {
		marginScore = rateScore(margin * 100)
	}

	return clamp(0.5*roeScore + 0.5*marginScore)
}

// valuation = 0.5·pe_score + 0.5·pb_score.
func (e *Engine) valuation(m contracts.DerivedMetrics) float64 {
	pe := 0.0
	if m.PERatio != nil {
		pe = *m.PERatio
	}
	pb := 0.0
	if m.PBRatio != nil {
		pb = *m.PBRatio
	}

	return clamp(0.5*peScore(pe) + 0.5*pbScore(pb))
}

// momentum scores the price's position inside its 52-week band.
// 저점 근처 20, 고점 근처 100
func (e *Engine) momentum(rec *contracts.NormalizedRecord, m contracts.DerivedMetrics) float64 {
	if rec.FiftyTwoWeekLow == nil || rec.FiftyTwoWeekHigh == nil {
		return neutral
	}
	low, high := *rec.FiftyTwoWeekLow, *rec.FiftyTwoWeekHigh
	if low >= high || m.CurrentPrice <= 0 {
		return neutral
	}

	position := (m.CurrentPrice - low) / (high - low)
	if position < 0 {
		position = 0
	}
	if position > 1 {
		position = 1
	}

	return 20 + position*80
}

// stability = 0.5·cap_score + 0.5·beta_score.
func (e *Engine) stability(rec *contracts.NormalizedRecord) float64 {
	capScore := neutral
	if rec.MarketCap != nil {
		capScore = marketCapScore(*rec.MarketCap)
	}

	betaScore := neutral
	if rec.Beta != nil {
		betaScore = betaStabilityScore(*rec.Beta)
	}

	return clamp(0.5*capScore + 0.5*betaScore)
}

// rateScore maps a percent figure (ROE, margin) onto 0–100:
// >20 → 100; 10–20 → 50..100; 0–10 → 0..50; negative → 0.
func rateScore(rate float64) float64 {
	switch {
	case rate > 20:
		return 100
	case rate >= 10:
		return 50 + (rate-10)/10*50
	case rate >= 0:
		return rate / 10 * 50
	default:
		return 0
	}
}

// peScore rewards low multiples. Non-positive PE means unknown → neutral.
func peScore(pe float64) float64 {
	switch {
	case pe <= 0:
		return neutral
	case pe <= 10:
		return 100 - pe/10*20
	case pe <= 20:
		return 80 - (pe-10)/10*30
	case pe <= 30:
		return 50 - (pe-20)/10*30
	default:
		return math.Max(0, 20-(pe-30)/10*10)
	}
}

// pbScore rewards book-value discounts. Non-positive PB → neutral.
func pbScore(pb float64) float64 {
	switch {
	case pb <= 0:
		return neutral
	case pb <= 1:
		return 100 - pb*20
	case pb <= 2:
		return 80 - (pb-1)*30
	case pb <= 3:
		return 50 - (pb-2)*30
	default:
		return math.Max(0, 20-(pb-3)*5)
	}
}

// marketCapScore buckets absolute market cap.
func marketCapScore(cap float64) float64 {
	switch {
	case cap >= 1e12:
		return 100
	case cap >= 1e11:
		return 80
	case cap >= 1e10:
		return 60
	default:
		return 40
	}
}

// betaStabilityScore peaks at market-like beta (0.8–1.2).
func betaStabilityScore(beta float64) float64 {
	switch {
	case beta >= 0.8 && beta <= 1.2:
		return 100
	case beta >= 0.5 && beta < 0.8:
		return 80 + (beta-0.5)/0.3*20
	case beta > 1.2 && beta <= 1.5:
		return 100 - (beta-1.2)/0.3*20
	case beta < 0.5:
		return 60 + beta/0.5*20
	default: // beta > 1.5
		return math.Max(0, 80-(beta-1.5)*10)
	}
}

// profitMargin resolves the margin as a fraction: direct field, else
// net income / revenue.
func profitMargin(rec *contracts.NormalizedRecord) (float64, bool) {
	if rec.ProfitMargin != nil {
		return *rec.ProfitMargin, true
	}
	if rec.NetIncome != nil && rec.TotalRevenue != nil && *rec.TotalRevenue > 0 {
		return *rec.NetIncome / *rec.TotalRevenue, true
	}
	return 0, false
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
