// Package format renders numeric metrics as display strings. All functions
// are total: unknown inputs map to the "-" / "N/A" sentinels instead of
// failing, and the sentinel choice is part of the contract.
package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/kyh-dev/stockscope/internal/contracts"
)

// Sentinels. 통화류는 "-", 지표류는 "N/A"
const (
	DashSentinel = "-"
	NASentinel   = "N/A"
)

// Output layouts for dates.
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04"
)

// Currency renders a price. Korean: integer with thousands separators plus
// 원; otherwise dollar sign with two decimals. Zero-as-unknown maps to "-".
func Currency(value *float64, korean bool) string {
	if value == nil || *value == 0 {
		return DashSentinel
	}
	if korean {
		return groupThousands(int64(math.Round(*value))) + "원"
	}
	return "$" + groupFloat(*value)
}

// ChangePercent renders a signed day-over-day change from price and
// previous close: "+1.38%" / "-0.52%".
func ChangePercent(price, previousClose *float64) string {
	if price == nil || previousClose == nil || *previousClose == 0 {
		return DashSentinel
	}
	change := (*price - *previousClose) / *previousClose * 100
	return fmt.Sprintf("%+.2f%%", change)
}

// Ratio renders a valuation multiple as "12.5x". Zero means the cascade
// defaulted, so it shows as unknown.
func Ratio(value *float64) string {
	if value == nil || *value == 0 {
		return NASentinel
	}
	return strconv.FormatFloat(round1(*value), 'f', 1, 64) + "x"
}

// Dividend renders the dividend yield. Korean values below 0.5 are assumed
// to still be fractions and get scaled once.
func Dividend(yield float64, korean bool) string {
	if yield == 0 {
		return NASentinel
	}
	if korean && yield < 0.5 {
		yield *= 100
	}
	return fmt.Sprintf("%.2f%%", yield)
}

// MarketCap renders an absolute market cap with thousands separators.
func MarketCap(value *float64) string {
	if value == nil || *value == 0 {
		return NASentinel
	}
	return groupThousands(int64(math.Round(*value)))
}

// ROE renders return on equity in percent.
func ROE(value *float64) string {
	if value == nil {
		return NASentinel
	}
	return fmt.Sprintf("%.2f%%", *value)
}

// EPS renders earnings per share in the ticker's currency.
func EPS(value *float64, korean bool) string {
	if value == nil {
		return NASentinel
	}
	return Currency(value, korean)
}

// Volatility renders the volatility figure tagged by how it was derived.
func Volatility(value *float64, kind contracts.VolatilityKind) string {
	if value == nil {
		return NASentinel
	}
	if kind == contracts.VolatilityBeta {
		return fmt.Sprintf("%.2f (Beta)", *value)
	}
	return fmt.Sprintf("%.2f%% (1년)", *value)
}

// Date renders a calendar date.
func Date(t time.Time) string {
	if t.IsZero() {
		return DashSentinel
	}
	return t.Format(DateLayout)
}

// DateTime renders a timestamp to minute precision.
func DateTime(t time.Time) string {
	if t.IsZero() {
		return DashSentinel
	}
	return t.Format(DateTimeLayout)
}

// groupThousands inserts comma separators into an integer.
func groupThousands(v int64) string {
	negative := v < 0
	if negative {
		v = -v
	}
	s := strconv.FormatInt(v, 10)

	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}

	if negative {
		return "-" + b.String()
	}
	return b.String()
}

// groupFloat renders value with two decimals and thousands separators on
// the integer part.
func groupFloat(v float64) string {
	negative := v < 0
	if negative {
		v = -v
	}
	whole := int64(v)
	frac := int64(math.Round((v - float64(whole)) * 100))
	if frac >= 100 {
		whole++
		frac -= 100
	}
	out := fmt.Sprintf("%s.%02d", groupThousands(whole), frac)
	if negative {
		return "-" + out
	}
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
