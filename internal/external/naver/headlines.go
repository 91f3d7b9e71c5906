package naver

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/kyh-dev/stockscope/internal/external/kis"
)

const maxHeadlines = 3

// FetchHeadlines scrapes up to 3 recent news titles from the item news page.
func (c *Client) FetchHeadlines(ctx context.Context, ticker string) ([]string, error) {
	code := kis.StockCode(ticker)

	params := url.Values{}
	params.Set("code", code)

	html, err := c.fetchHTML(ctx, "/item/news_news.naver", params)
	if err != nil {
		return nil, fmt.Errorf("fetch item news: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse item news: %w", err)
	}

	headlines := make([]string, 0, maxHeadlines)
	doc.Find("table.type5 td.title a").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		title := strings.TrimSpace(sel.Text())
		if title == "" {
			return true
		}
		headlines = append(headlines, title)
		return len(headlines) < maxHeadlines
	})

	c.logger.WithFields(map[string]interface{}{
		"ticker":    ticker,
		"headlines": len(headlines),
	}).Debug("Naver headlines fetched")

	return headlines, nil
}
