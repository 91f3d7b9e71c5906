package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kyh-dev/stockscope/internal/contracts"
)

func TestRateScore(t *testing.T) {
	tests := []struct {
		name string
		rate float64
		want float64
	}{
		{"deep negative", -5, 0},
		{"zero", 0, 0},
		{"mid low band", 5, 25},
		{"band boundary", 10, 50},
		{"interpolated", 18, 90},
		{"upper boundary continuous", 20, 100},
		{"above upper boundary", 21, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, rateScore(tt.rate), 1e-9)
		})
	}
}

func TestPEScore(t *testing.T) {
	tests := []struct {
		name string
		pe   float64
		want float64
	}{
		{"unknown is neutral", 0, 50},
		{"negative is neutral", -3, 50},
		{"cheap", 5, 90},
		{"segment boundary 10", 10, 80},
		{"segment boundary 20", 20, 50},
		{"segment boundary 30", 30, 20},
		{"just past 30", 31, 19},
		{"expensive floor", 55, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, peScore(tt.pe), 1e-9)
		})
	}
}

func TestPBScore(t *testing.T) {
	tests := []struct {
		name string
		pb   float64
		want float64
	}{
		{"unknown is neutral", 0, 50},
		{"below book", 0.5, 90},
		{"at book", 1, 80},
		{"segment boundary 2", 2, 50},
		{"segment boundary 3", 3, 20},
		{"past 3", 4, 15},
		{"floor", 8, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, pbScore(tt.pb), 1e-9)
		})
	}
}

func TestBetaStabilityScore(t *testing.T) {
	tests := []struct {
		name string
		beta float64
		want float64
	}{
		{"market-like", 1.0, 100},
		{"band lower edge", 0.8, 100},
		{"band upper edge", 1.2, 100},
		{"defensive", 0.65, 90},
		{"slightly aggressive", 1.35, 90},
		{"very low", 0.25, 70},
		{"high beta", 2.5, 70},
		{"extreme beta floor", 12, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, betaStabilityScore(tt.beta), 1e-9)
		})
	}
}

func TestMarketCapScore(t *testing.T) {
	assert.Equal(t, 100.0, marketCapScore(2e12))
	assert.Equal(t, 100.0, marketCapScore(1e12))
	assert.Equal(t, 80.0, marketCapScore(5e11))
	assert.Equal(t, 60.0, marketCapScore(3e10))
	assert.Equal(t, 40.0, marketCapScore(9e9))
}

func TestMomentum(t *testing.T) {
	e := NewEngine()

	base := func(price float64) (*contracts.NormalizedRecord, contracts.DerivedMetrics) {
		rec := &contracts.NormalizedRecord{
			FiftyTwoWeekLow:  contracts.Float(80),
			FiftyTwoWeekHigh: contracts.Float(120),
		}
		return rec, contracts.DerivedMetrics{CurrentPrice: price}
	}

	t.Run("at low", func(t *testing.T) {
		rec, m := base(80)
		assert.Equal(t, 20.0, e.momentum(rec, m))
	})

	t.Run("at high", func(t *testing.T) {
		rec, m := base(120)
		assert.Equal(t, 100.0, e.momentum(rec, m))
	})

	t.Run("midpoint", func(t *testing.T) {
		rec, m := base(100)
		assert.Equal(t, 60.0, e.momentum(rec, m))
	})

	t.Run("missing bounds neutral", func(t *testing.T) {
		rec := &contracts.NormalizedRecord{}
		assert.Equal(t, 50.0, e.momentum(rec, contracts.DerivedMetrics{CurrentPrice: 100}))
	})

	t.Run("inverted band neutral", func(t *testing.T) {
		rec := &contracts.NormalizedRecord{
			FiftyTwoWeekLow:  contracts.Float(120),
			FiftyTwoWeekHigh: contracts.Float(80),
		}
		assert.Equal(t, 50.0, e.momentum(rec, contracts.DerivedMetrics{CurrentPrice: 100}))
	})

	t.Run("price outside band clamps", func(t *testing.T) {
		rec, m := base(200)
		assert.Equal(t, 100.0, e.momentum(rec, m))
	})
}

func TestScoreAllAbsentIsNeutral(t *testing.T) {
	e := NewEngine()
	b := e.Score(&contracts.NormalizedRecord{}, contracts.DerivedMetrics{})

	assert.Equal(t, 50.0, b.Profitability)
	assert.Equal(t, 50.0, b.Valuation)
	assert.Equal(t, 50.0, b.Momentum)
	assert.Equal(t, 50.0, b.Stability)
	assert.Equal(t, 50.0, b.Total)
}

func TestScoreRangeInvariant(t *testing.T) {
	e := NewEngine()

	records := []*contracts.NormalizedRecord{
		{
			MarketCap:        contracts.Float(1e15),
			Beta:             contracts.Float(-4),
			FiftyTwoWeekLow:  contracts.Float(1),
			FiftyTwoWeekHigh: contracts.Float(2),
			ProfitMargin:     contracts.Float(-9),
		},
		{
			MarketCap:        contracts.Float(1),
			Beta:             contracts.Float(25),
			FiftyTwoWeekLow:  contracts.Float(50),
			FiftyTwoWeekHigh: contracts.Float(500),
			ProfitMargin:     contracts.Float(4),
		},
	}
	metrics := []contracts.DerivedMetrics{
		{CurrentPrice: 1000, PERatio: contracts.Float(999), PBRatio: contracts.Float(80), ROE: contracts.Float(-60)},
		{CurrentPrice: 0.01, PERatio: contracts.Float(0.1), PBRatio: contracts.Float(0.01), ROE: contracts.Float(300)},
	}

	for _, rec := range records {
		for _, m := range metrics {
			b := e.Score(rec, m)
			for _, s := range []float64{b.Profitability, b.Valuation, b.Momentum, b.Stability, b.Total} {
				assert.GreaterOrEqual(t, s, 0.0)
				assert.LessOrEqual(t, s, 100.0)
			}
		}
	}
}

func TestScoreEndToEndScenario(t *testing.T) {
	e := NewEngine()

	rec := &contracts.NormalizedRecord{
		MarketCap:        contracts.Float(5e11),
		Beta:             contracts.Float(1.0),
		FiftyTwoWeekLow:  contracts.Float(80),
		FiftyTwoWeekHigh: contracts.Float(120),
	}
	m := contracts.DerivedMetrics{
		CurrentPrice: 110,
		PERatio:      contracts.Float(12),
		PBRatio:      contracts.Float(1.2),
		ROE:          contracts.Float(18),
	}

	b := e.Score(rec, m)

	assert.InDelta(t, 70.0, b.Profitability, 1e-9) // roe 18 → 90, margin absent → 50
	assert.InDelta(t, 74.0, b.Valuation, 1e-9)     // pe 12 → 74, pb 1.2 → 74
	assert.InDelta(t, 80.0, b.Momentum, 1e-9)      // position 0.75
	assert.InDelta(t, 90.0, b.Stability, 1e-9)     // cap 80, beta 100
	assert.Equal(t, 75.2, b.Total)
}
