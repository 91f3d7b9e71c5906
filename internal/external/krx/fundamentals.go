package krx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// FundamentalItem is one stock's valuation row from the KRX daily table.
type FundamentalItem struct {
	StockCode     string  // 단축코드 (6자리)
	StockName     string
	EPS           float64
	PER           float64
	BPS           float64
	PBR           float64
	DividendYield float64 // percent units
}

type krxFundamentalsResponse struct {
	OutBlock1 []krxFundamentalRow `json:"output"`
	OutBlock2 []krxFundamentalRow `json:"OutBlock_1"`
}

type krxFundamentalRow struct {
	ISU_SRT_CD string `json:"ISU_SRT_CD"` // 종목코드 (단축)
	ISU_ABBRV  string `json:"ISU_ABBRV"`  // 종목명
	EPS        string `json:"EPS"`
	PER        string `json:"PER"`
	BPS        string `json:"BPS"`
	PBR        string `json:"PBR"`
	DVD_YLD    string `json:"DVD_YLD"` // 배당수익률
}

func (r krxFundamentalsResponse) rows() []krxFundamentalRow {
	if len(r.OutBlock1) > 0 {
		return r.OutBlock1
	}
	return r.OutBlock2
}

// FetchFundamentals fetches EPS/PER/BPS/PBR/dividend yield for every stock
// in one market ("KOSPI" or "KOSDAQ").
// ⭐ SSOT: KRX 기본지표 조회는 이 함수에서만
func (c *Client) FetchFundamentals(ctx context.Context, market string) ([]FundamentalItem, error) {
	var mktID string
	switch strings.ToUpper(market) {
	case "KOSPI":
		mktID = "STK"
	case "KOSDAQ":
		mktID = "KSQ"
	default:
		return nil, fmt.Errorf("unsupported market: %s", market)
	}

	trdDd := lastTradeDate(time.Now()).Format("20060102")

	formData := url.Values{
		"bld":         {bldFundamentals},
		"locale":      {"ko_KR"},
		"mktId":       {mktID},
		"trdDd":       {trdDd},
		"share":       {"1"},
		"money":       {"1"},
		"csvxls_isNo": {"false"},
	}

	c.logger.WithFields(map[string]interface{}{
		"market":     market,
		"trade_date": trdDd,
	}).Info("Fetching fundamentals from KRX")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, dataURL, strings.NewReader(formData.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	// KRX blocks bot requests; mimic the statistics page
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "application/json, text/javascript, */*; q=0.01")
	req.Header.Set("Accept-Language", "ko-KR,ko;q=0.9,en-US;q=0.8,en;q=0.7")
	req.Header.Set("Origin", "http://data.krx.co.kr")
	req.Header.Set("Referer", "http://data.krx.co.kr/contents/MDC/MDI/mdiLoader/index.cmd?menuId=MDC0201020506")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("KRX API request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("KRX API returned status %d", resp.StatusCode)
	}

	var apiResp krxFundamentalsResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		preview := string(body)
		if len(preview) > 500 {
			preview = preview[:500]
		}
		c.logger.WithField("response_preview", preview).Error("Failed to parse KRX response")
		return nil, fmt.Errorf("decode KRX response: %w", err)
	}

	rows := apiResp.rows()
	result := make([]FundamentalItem, 0, len(rows))
	for _, row := range rows {
		if row.ISU_SRT_CD == "" {
			continue
		}
		result = append(result, FundamentalItem{
			StockCode:     row.ISU_SRT_CD,
			StockName:     row.ISU_ABBRV,
			EPS:           parseKRXNumber(row.EPS),
			PER:           parseKRXNumber(row.PER),
			BPS:           parseKRXNumber(row.BPS),
			PBR:           parseKRXNumber(row.PBR),
			DividendYield: parseKRXNumber(row.DVD_YLD),
		})
	}

	c.logger.WithFields(map[string]interface{}{
		"market": market,
		"count":  len(result),
	}).Info("Fetched fundamentals from KRX")

	return result, nil
}

// FetchAllFundamentals fetches both markets.
func (c *Client) FetchAllFundamentals(ctx context.Context) ([]FundamentalItem, error) {
	var all []FundamentalItem

	for _, market := range []string{"KOSPI", "KOSDAQ"} {
		items, err := c.FetchFundamentals(ctx, market)
		if err != nil {
			return nil, fmt.Errorf("fetch %s fundamentals: %w", market, err)
		}
		all = append(all, items...)
	}

	return all, nil
}

// lastTradeDate returns the most recent weekday with a published close.
func lastTradeDate(now time.Time) time.Time {
	d := now
	if d.Hour() < 16 {
		d = d.AddDate(0, 0, -1)
	}
	for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		d = d.AddDate(0, 0, -1)
	}
	return d
}
