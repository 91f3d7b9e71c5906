package kis

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/kyh-dev/stockscope/internal/contracts"
)

// tr_id codes for the quotation/finance endpoints.
const (
	trCurrentPrice    = "FHKST01010100" // 국내주식 현재가
	trBalanceSheet    = "FHKST66430100" // 국내주식 대차대조표
	trIncomeStatement = "FHKST66430200" // 국내주식 손익계산서
)

// envelope is the common KIS response wrapper. Output stays untyped so
// every vocabulary field survives into the raw record.
type envelope struct {
	Output json.RawMessage `json:"output"`
	RtCd   string          `json:"rt_cd"`
	MsgCd  string          `json:"msg_cd"`
	Msg1   string          `json:"msg1"`
}

// FetchQuote returns the current-price output block as a raw record in the
// domestic vocabulary (stck_prpr, per, pbr, hts_avls, ...).
func (c *Client) FetchQuote(ctx context.Context, ticker string) (contracts.RawRecord, error) {
	code := StockCode(ticker)
	path := fmt.Sprintf("/uapi/domestic-stock/v1/quotations/inquire-price?fid_cond_mrkt_div_code=J&fid_input_iscd=%s", code)

	resp, err := c.request(ctx, http.MethodGet, path, trCurrentPrice, nil)
	if err != nil {
		return nil, &contracts.UpstreamError{Provider: contracts.ProviderKIS, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &contracts.UpstreamError{
			Provider: contracts.ProviderKIS,
			Err:      fmt.Errorf("quote status %d: %s", resp.StatusCode, truncate(body)),
		}
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, &contracts.UpstreamError{Provider: contracts.ProviderKIS, Err: fmt.Errorf("decode quote: %w", err)}
	}
	if env.RtCd != "0" {
		return nil, &contracts.UpstreamError{
			Provider: contracts.ProviderKIS,
			Err:      fmt.Errorf("quote rt_cd=%s: %s %s", env.RtCd, env.MsgCd, env.Msg1),
		}
	}

	var raw contracts.RawRecord
	if err := json.Unmarshal(env.Output, &raw); err != nil {
		return nil, &contracts.UpstreamError{Provider: contracts.ProviderKIS, Err: fmt.Errorf("decode quote output: %w", err)}
	}

	// 재무제표는 보조 데이터 — 실패해도 시세만으로 진행
	if bs, err := c.fetchStatement(ctx, code, trBalanceSheet, balanceSheetRows); err != nil {
		c.logger.WithError(err).WithField("ticker", ticker).Warn("KIS balance sheet unavailable")
	} else if bs != nil {
		raw["balance_sheet"] = bs
	}
	if is, err := c.fetchStatement(ctx, code, trIncomeStatement, incomeStatementRows); err != nil {
		c.logger.WithError(err).WithField("ticker", ticker).Warn("KIS income statement unavailable")
	} else if is != nil {
		raw["income_statement"] = is
	}

	return raw, nil
}

// balanceSheetRows maps statement labels to KIS balance-sheet fields.
var balanceSheetRows = map[string]string{
	"자산총계": "total_aset",
	"부채총계": "total_lblt",
	"자본총계": "total_cptl",
}

// incomeStatementRows maps statement labels to KIS income-statement fields.
var incomeStatementRows = map[string]string{
	"매출액":   "sale_account",
	"영업이익":  "bsop_prti",
	"당기순이익": "thtr_ntin",
}

// fetchStatement fetches one annual statement and reshapes it into columns
// (기간, most recent first) × labeled rows.
func (c *Client) fetchStatement(ctx context.Context, code, trID string, rowFields map[string]string) (*contracts.Statement, error) {
	path := fmt.Sprintf("/uapi/domestic-stock/v1/finance/%s?FID_DIV_CLS_CODE=0&fid_cond_mrkt_div_code=J&fid_input_iscd=%s",
		statementPath(trID), code)

	resp, err := c.request(ctx, http.MethodGet, path, trID, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("statement status %d: %s", resp.StatusCode, truncate(body))
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode statement: %w", err)
	}
	if env.RtCd != "0" {
		return nil, fmt.Errorf("statement rt_cd=%s: %s %s", env.RtCd, env.MsgCd, env.Msg1)
	}

	var periods []map[string]string
	if err := json.Unmarshal(env.Output, &periods); err != nil {
		return nil, fmt.Errorf("decode statement output: %w", err)
	}
	if len(periods) == 0 {
		return nil, nil
	}

	stmt := &contracts.Statement{
		Columns: make([]string, 0, len(periods)),
		Rows:    make(map[string][]float64, len(rowFields)),
	}
	for _, period := range periods {
		stmt.Columns = append(stmt.Columns, period["stac_yymm"])
	}
	for label, field := range rowFields {
		values := make([]float64, 0, len(periods))
		present := false
		for _, period := range periods {
			v := parseKISNumber(period[field])
			if v != 0 {
				present = true
			}
			values = append(values, v)
		}
		if present {
			stmt.Rows[label] = values
		}
	}

	if len(stmt.Rows) == 0 {
		return nil, nil
	}
	return stmt, nil
}

func statementPath(trID string) string {
	if trID == trBalanceSheet {
		return "balance-sheet"
	}
	return "income-statement"
}

// parseKISNumber parses KIS numeric strings ("3,509,043" or "12.53").
func parseKISNumber(s string) float64 {
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

func truncate(body []byte) string {
	const max = 200
	if len(body) > max {
		body = body[:max]
	}
	return string(body)
}
