package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// chartResponse mirrors the chart endpoint envelope, trimmed to the daily
// close series.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *apiError `json:"error"`
	} `json:"chart"`
}

// FetchDailyCloses returns one year of daily closing prices, oldest first.
// Null entries (market holidays, halts) are dropped.
func (c *Client) FetchDailyCloses(ctx context.Context, ticker string) ([]float64, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?range=1y&interval=1d",
		c.cfg.QuoteBaseURL, url.PathEscape(ticker))

	resp, err := c.httpClient.Get(ctx, u)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("chart status %d: %s", resp.StatusCode, truncate(body))
	}

	var cr chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, fmt.Errorf("decode chart: %w", err)
	}
	if cr.Chart.Error != nil {
		return nil, fmt.Errorf("chart %s: %s", cr.Chart.Error.Code, cr.Chart.Error.Description)
	}
	if len(cr.Chart.Result) == 0 || len(cr.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, nil
	}

	series := cr.Chart.Result[0].Indicators.Quote[0].Close
	closes := make([]float64, 0, len(series))
	for _, v := range series {
		if v != nil {
			closes = append(closes, *v)
		}
	}
	return closes, nil
}
