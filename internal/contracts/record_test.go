package contracts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatementLatest(t *testing.T) {
	stmt := &Statement{
		Columns: []string{"2024-12-31", "2023-12-31"},
		Rows: map[string][]float64{
			"Total Stockholder Equity": {120_000, 110_000},
			"Net Income":               {-5_000, 9_000},
		},
	}

	t.Run("first matching label wins", func(t *testing.T) {
		v, ok := stmt.Latest("Stockholders Equity", "Total Stockholder Equity")
		assert.True(t, ok)
		assert.Equal(t, 120_000.0, v)
	})

	t.Run("latest positive skips negative recent value", func(t *testing.T) {
		v, ok := stmt.LatestPositive("Net Income")
		assert.True(t, ok)
		assert.Equal(t, 9_000.0, v)
	})

	t.Run("unknown label", func(t *testing.T) {
		_, ok := stmt.Latest("Goodwill")
		assert.False(t, ok)
	})

	t.Run("nil statement", func(t *testing.T) {
		var nilStmt *Statement
		_, ok := nilStmt.Latest("Total Stockholder Equity")
		assert.False(t, ok)
	})
}

func TestUpstreamError(t *testing.T) {
	inner := assert.AnError
	err := &UpstreamError{Provider: ProviderKIS, Err: inner}

	assert.Contains(t, err.Error(), "kis")
	assert.ErrorIs(t, err, inner)
	assert.True(t, IsUpstream(err))
	assert.False(t, IsUpstream(ErrNotFound))
}
