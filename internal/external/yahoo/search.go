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

// searchResponse mirrors the search endpoint envelope.
type searchResponse struct {
	Quotes []struct {
		Symbol    string `json:"symbol"`
		ShortName string `json:"shortname"`
		QuoteType string `json:"quoteType"`
	} `json:"quotes"`
}

// Resolve turns a free-text query into the best-matching equity symbol.
// Returns ErrNotFound when Yahoo has no equity match.
func (c *Client) Resolve(ctx context.Context, query string) (string, error) {
	u := fmt.Sprintf("%s/v1/finance/search?q=%s&quotesCount=5&newsCount=0",
		c.cfg.QuoteBaseURL, url.QueryEscape(query))

	resp, err := c.httpClient.Get(ctx, u)
	if err != nil {
		return "", &contracts.UpstreamError{Provider: contracts.ProviderYahoo, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", &contracts.UpstreamError{
			Provider: contracts.ProviderYahoo,
			Err:      fmt.Errorf("search status %d: %s", resp.StatusCode, truncate(body)),
		}
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return "", &contracts.UpstreamError{Provider: contracts.ProviderYahoo, Err: fmt.Errorf("decode search: %w", err)}
	}

	for _, q := range sr.Quotes {
		if q.QuoteType == "EQUITY" && q.Symbol != "" {
			return q.Symbol, nil
		}
	}
	return "", contracts.ErrNotFound
}
