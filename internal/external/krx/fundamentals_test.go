package krx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseKRXNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"1,234,567", 1234567},
		{"12.53", 12.53},
		{" 2.45 ", 2.45},
		{"-", 0},
		{"", 0},
		{"N/A", 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parseKRXNumber(tt.in), tt.in)
	}
}

func TestLastTradeDate(t *testing.T) {
	// 월요일 오전에는 금요일 데이터
	monMorning := time.Date(2025, 8, 25, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Friday, lastTradeDate(monMorning).Weekday())

	// 수요일 장 마감 후에는 당일
	wedEvening := time.Date(2025, 8, 27, 18, 0, 0, 0, time.UTC)
	assert.Equal(t, wedEvening.Day(), lastTradeDate(wedEvening).Day())

	// 일요일은 금요일로
	sunday := time.Date(2025, 8, 31, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Friday, lastTradeDate(sunday).Weekday())
}
