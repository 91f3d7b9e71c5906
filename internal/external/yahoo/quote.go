package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/kyh-dev/stockscope/internal/contracts"
)

// quoteSummaryResponse mirrors the quoteSummary envelope. Module contents
// stay untyped so the whole vocabulary survives into the raw record.
type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []map[string]map[string]any `json:"result"`
		Error  *apiError                   `json:"error"`
	} `json:"quoteSummary"`
}

type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// FetchQuote merges the quoteSummary modules into one flat raw record and
// attaches a year of daily closes under "price_history".
func (c *Client) FetchQuote(ctx context.Context, ticker string) (contracts.RawRecord, error) {
	u := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s",
		c.cfg.QuoteBaseURL, url.PathEscape(ticker), url.QueryEscape(summaryModules))

	resp, err := c.httpClient.Get(ctx, u)
	if err != nil {
		return nil, &contracts.UpstreamError{Provider: contracts.ProviderYahoo, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, contracts.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &contracts.UpstreamError{
			Provider: contracts.ProviderYahoo,
			Err:      fmt.Errorf("quoteSummary status %d: %s", resp.StatusCode, truncate(body)),
		}
	}

	var qs quoteSummaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&qs); err != nil {
		return nil, &contracts.UpstreamError{Provider: contracts.ProviderYahoo, Err: fmt.Errorf("decode quoteSummary: %w", err)}
	}
	if qs.QuoteSummary.Error != nil {
		return nil, &contracts.UpstreamError{
			Provider: contracts.ProviderYahoo,
			Err:      fmt.Errorf("quoteSummary %s: %s", qs.QuoteSummary.Error.Code, qs.QuoteSummary.Error.Description),
		}
	}
	if len(qs.QuoteSummary.Result) == 0 {
		return nil, contracts.ErrNotFound
	}

	raw := make(contracts.RawRecord)
	for _, moduleName := range []string{"price", "summaryDetail", "financialData", "defaultKeyStatistics", "assetProfile"} {
		module, ok := qs.QuoteSummary.Result[0][moduleName]
		if !ok {
			continue
		}
		for field, value := range module {
			if _, exists := raw[field]; exists {
				continue
			}
			if v, ok := flatten(value); ok {
				raw[field] = v
			}
		}
	}

	// 과거 시세는 보조 데이터 — 실패해도 fundamentals만으로 진행
	if closes, err := c.FetchDailyCloses(ctx, ticker); err != nil {
		c.logger.WithError(err).WithField("ticker", ticker).Warn("Yahoo price history unavailable")
	} else if len(closes) > 0 {
		raw["price_history"] = closes
	}

	return raw, nil
}

// flatten unwraps Yahoo's {"raw": 123.4, "fmt": "123.40"} value objects.
// Plain scalars pass through; empty maps mean the field is absent.
func flatten(value any) (any, bool) {
	m, ok := value.(map[string]any)
	if !ok {
		return value, value != nil
	}
	if rawVal, ok := m["raw"]; ok {
		return rawVal, true
	}
	return nil, false
}

func truncate(body []byte) string {
	const max = 200
	if len(body) > max {
		body = body[:max]
	}
	return string(body)
}
