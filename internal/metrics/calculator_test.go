package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyh-dev/stockscope/internal/contracts"
	"github.com/kyh-dev/stockscope/pkg/logger"
)

func newCalculator() *Calculator {
	return NewCalculator(logger.NewNop())
}

func rec(mutate func(*contracts.NormalizedRecord)) *contracts.NormalizedRecord {
	r := &contracts.NormalizedRecord{Symbol: "TEST"}
	if mutate != nil {
		mutate(r)
	}
	return r
}

func TestPERCascade(t *testing.T) {
	c := newCalculator()

	t.Run("trailing PE wins regardless of later steps", func(t *testing.T) {
		m := c.Calculate(rec(func(r *contracts.NormalizedRecord) {
			r.TrailingPE = contracts.Float(15)
			r.MarketCap = contracts.Float(1_000_000)
			r.NetIncome = contracts.Float(100_000)
			r.ForwardPE = contracts.Float(22)
		}), Fallback{PER: 9})
		require.NotNil(t, m.PERatio)
		assert.Equal(t, 15.0, *m.PERatio)
	})

	t.Run("market cap over net income", func(t *testing.T) {
		m := c.Calculate(rec(func(r *contracts.NormalizedRecord) {
			r.MarketCap = contracts.Float(1_000_000)
			r.NetIncome = contracts.Float(100_000)
		}), Fallback{})
		require.NotNil(t, m.PERatio)
		assert.Equal(t, 10.0, *m.PERatio)
	})

	t.Run("negative net income is skipped", func(t *testing.T) {
		m := c.Calculate(rec(func(r *contracts.NormalizedRecord) {
			r.MarketCap = contracts.Float(1_000_000)
			r.NetIncome = contracts.Float(-100_000)
			r.ForwardPE = contracts.Float(18)
		}), Fallback{})
		require.NotNil(t, m.PERatio)
		assert.Equal(t, 18.0, *m.PERatio)
	})

	t.Run("bulk cache as last resort", func(t *testing.T) {
		m := c.Calculate(rec(nil), Fallback{PER: 11.4})
		require.NotNil(t, m.PERatio)
		assert.Equal(t, 11.4, *m.PERatio)
	})

	t.Run("exhausted defaults to zero", func(t *testing.T) {
		m := c.Calculate(rec(nil), Fallback{})
		require.NotNil(t, m.PERatio)
		assert.Equal(t, 0.0, *m.PERatio)
	})
}

func TestPBRCascade(t *testing.T) {
	c := newCalculator()

	t.Run("price over book value rounded", func(t *testing.T) {
		m := c.Calculate(rec(func(r *contracts.NormalizedRecord) {
			r.CurrentPrice = contracts.Float(100)
			r.BookValue = contracts.Float(33)
		}), Fallback{})
		require.NotNil(t, m.PBRatio)
		assert.Equal(t, 3.03, *m.PBRatio)
	})

	t.Run("equity from assets minus liabilities", func(t *testing.T) {
		m := c.Calculate(rec(func(r *contracts.NormalizedRecord) {
			r.MarketCap = contracts.Float(500_000)
			r.TotalAssets = contracts.Float(1_000_000)
			r.TotalLiabilities = contracts.Float(750_000)
		}), Fallback{})
		require.NotNil(t, m.PBRatio)
		assert.Equal(t, 2.0, *m.PBRatio)
	})

	t.Run("balance sheet scan", func(t *testing.T) {
		m := c.Calculate(rec(func(r *contracts.NormalizedRecord) {
			r.MarketCap = contracts.Float(300_000)
			r.BalanceSheet = &contracts.Statement{
				Columns: []string{"2024-12-31", "2023-12-31"},
				Rows: map[string][]float64{
					"Total Stockholder Equity": {150_000, 140_000},
				},
			}
		}), Fallback{})
		require.NotNil(t, m.PBRatio)
		assert.Equal(t, 2.0, *m.PBRatio)
	})

	t.Run("bulk cache fallback", func(t *testing.T) {
		m := c.Calculate(rec(nil), Fallback{PBR: 0.9})
		require.NotNil(t, m.PBRatio)
		assert.Equal(t, 0.9, *m.PBRatio)
	})
}

func TestROECascade(t *testing.T) {
	c := newCalculator()

	t.Run("direct field converted to percent", func(t *testing.T) {
		m := c.Calculate(rec(func(r *contracts.NormalizedRecord) {
			r.ReturnOnEquity = contracts.Float(0.18)
		}), Fallback{})
		require.NotNil(t, m.ROE)
		assert.Equal(t, 18.0, *m.ROE)
	})

	t.Run("net income over equity", func(t *testing.T) {
		m := c.Calculate(rec(func(r *contracts.NormalizedRecord) {
			r.NetIncome = contracts.Float(40_000)
			r.TotalEquity = contracts.Float(500_000)
		}), Fallback{})
		require.NotNil(t, m.ROE)
		assert.Equal(t, 8.0, *m.ROE)
	})

	t.Run("statement scan allows negative net income", func(t *testing.T) {
		m := c.Calculate(rec(func(r *contracts.NormalizedRecord) {
			r.BalanceSheet = &contracts.Statement{
				Columns: []string{"2024-12-31"},
				Rows:    map[string][]float64{"Stockholders Equity": {200_000}},
			}
			r.IncomeStatement = &contracts.Statement{
				Columns: []string{"2024-12-31"},
				Rows:    map[string][]float64{"Net Income": {-10_000}},
			}
		}), Fallback{})
		require.NotNil(t, m.ROE)
		assert.Equal(t, -5.0, *m.ROE)
	})

	t.Run("absent when everything fails", func(t *testing.T) {
		m := c.Calculate(rec(nil), Fallback{})
		assert.Nil(t, m.ROE)
	})
}

func TestEPSCascade(t *testing.T) {
	c := newCalculator()

	t.Run("trailing EPS first", func(t *testing.T) {
		m := c.Calculate(rec(func(r *contracts.NormalizedRecord) {
			r.TrailingEPS = contracts.Float(4692)
			r.ForwardEPS = contracts.Float(5000)
		}), Fallback{})
		require.NotNil(t, m.EPS)
		assert.Equal(t, 4692.0, *m.EPS)
	})

	t.Run("forward EPS when trailing non-positive", func(t *testing.T) {
		m := c.Calculate(rec(func(r *contracts.NormalizedRecord) {
			r.TrailingEPS = contracts.Float(-2)
			r.ForwardEPS = contracts.Float(3.5)
		}), Fallback{})
		require.NotNil(t, m.EPS)
		assert.Equal(t, 3.5, *m.EPS)
	})

	t.Run("net income over shares", func(t *testing.T) {
		m := c.Calculate(rec(func(r *contracts.NormalizedRecord) {
			r.NetIncome = contracts.Float(9.5e10)
			r.SharesOutstanding = contracts.Float(1.9e10)
		}), Fallback{})
		require.NotNil(t, m.EPS)
		assert.Equal(t, 5.0, *m.EPS)
	})

	t.Run("price over trailing PE inversion", func(t *testing.T) {
		m := c.Calculate(rec(func(r *contracts.NormalizedRecord) {
			r.CurrentPrice = contracts.Float(150)
			r.TrailingPE = contracts.Float(30)
		}), Fallback{})
		require.NotNil(t, m.EPS)
		assert.Equal(t, 5.0, *m.EPS)
	})

	t.Run("absent when everything fails", func(t *testing.T) {
		m := c.Calculate(rec(nil), Fallback{})
		assert.Nil(t, m.EPS)
	})
}

func TestDividendYield(t *testing.T) {
	c := newCalculator()

	t.Run("dividend rate over price preferred", func(t *testing.T) {
		m := c.Calculate(rec(func(r *contracts.NormalizedRecord) {
			r.DividendRate = contracts.Float(3)
			r.CurrentPrice = contracts.Float(100)
			r.DividendYieldRaw = contracts.Float(0.09)
		}), Fallback{})
		assert.Equal(t, 3.0, m.DividendYield)
	})

	t.Run("fraction auto-scales", func(t *testing.T) {
		m := c.Calculate(rec(func(r *contracts.NormalizedRecord) {
			r.DividendYieldRaw = contracts.Float(0.03)
		}), Fallback{})
		assert.Equal(t, 3.0, m.DividendYield)
	})

	t.Run("percent value not rescaled", func(t *testing.T) {
		m := c.Calculate(rec(func(r *contracts.NormalizedRecord) {
			r.DividendYieldRaw = contracts.Float(3.0)
		}), Fallback{})
		assert.Equal(t, 3.0, m.DividendYield)
	})

	t.Run("bulk cache fallback", func(t *testing.T) {
		m := c.Calculate(rec(nil), Fallback{DividendYield: 2.45})
		assert.Equal(t, 2.45, m.DividendYield)
	})

	t.Run("default zero", func(t *testing.T) {
		m := c.Calculate(rec(nil), Fallback{})
		assert.Equal(t, 0.0, m.DividendYield)
	})
}

func TestVolatility(t *testing.T) {
	c := newCalculator()

	t.Run("beta wins", func(t *testing.T) {
		m := c.Calculate(rec(func(r *contracts.NormalizedRecord) {
			r.Beta = contracts.Float(1.25)
			r.PriceHistory = []float64{100, 101, 102}
		}), Fallback{})
		require.NotNil(t, m.Volatility)
		assert.Equal(t, 1.25, *m.Volatility)
		assert.Equal(t, contracts.VolatilityBeta, m.VolatilityKind)
	})

	t.Run("annualized historical from closes", func(t *testing.T) {
		m := c.Calculate(rec(func(r *contracts.NormalizedRecord) {
			r.PriceHistory = []float64{100, 110, 99, 108.9}
		}), Fallback{})
		require.NotNil(t, m.Volatility)
		// sample std of {0.1, -0.1, 0.1} × sqrt(252) × 100
		assert.InDelta(t, 183.3, *m.Volatility, 0.1)
		assert.Equal(t, contracts.VolatilityHistorical, m.VolatilityKind)
	})

	t.Run("single close is insufficient", func(t *testing.T) {
		m := c.Calculate(rec(func(r *contracts.NormalizedRecord) {
			r.PriceHistory = []float64{100}
		}), Fallback{})
		assert.Nil(t, m.Volatility)
	})
}

func TestCalculateIsIdempotent(t *testing.T) {
	c := newCalculator()
	r := rec(func(r *contracts.NormalizedRecord) {
		r.CurrentPrice = contracts.Float(110)
		r.TrailingPE = contracts.Float(12)
		r.PriceToBook = contracts.Float(1.2)
		r.ReturnOnEquity = contracts.Float(0.18)
		r.Beta = contracts.Float(1.0)
		r.DividendYieldRaw = contracts.Float(0.02)
	})

	first := c.Calculate(r, Fallback{})
	second := c.Calculate(r, Fallback{})

	assert.Equal(t, first, second)
}

func TestCascadeRecoversPanickingStrategy(t *testing.T) {
	value, ok := runCascade(logger.NewNop(), "test", []strategy{
		{"panics", func() (float64, bool) { panic("boom") }},
		{"succeeds", func() (float64, bool) { return 42, true }},
	})

	assert.True(t, ok)
	assert.Equal(t, 42.0, value)
}
