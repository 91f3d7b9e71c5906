// Package krx fetches bulk valuation ratios from the KRX data portal.
// ⭐ SSOT: KRX 시장 데이터 호출은 이 클라이언트에서만
package krx

import (
	"strconv"
	"strings"

	"github.com/kyh-dev/stockscope/pkg/httputil"
	"github.com/kyh-dev/stockscope/pkg/logger"
)

const (
	dataURL = "http://data.krx.co.kr/comm/bldAttendant/getJsonData.cmd"

	// pykrx bld code for 전종목 기본지표 (EPS/PER/BPS/PBR/배당수익률)
	bldFundamentals = "dbms/MDC/STAT/standard/MDCSTAT03501"
)

// Client talks to the KRX data portal. KRX has no official API; these are
// the same form endpoints its statistics pages call.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
}

// NewClient creates a KRX client.
func NewClient(httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{httpClient: httpClient, logger: log}
}

// parseKRXNumber parses KRX's comma-grouped numbers. "-" means absent.
func parseKRXNumber(s string) float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" || s == "-" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
