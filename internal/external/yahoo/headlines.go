package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"
)

const maxHeadlines = 3

// FetchHeadlines returns up to 3 recent headline titles from the Yahoo
// Finance RSS feed for the ticker.
func (c *Client) FetchHeadlines(ctx context.Context, ticker string) ([]string, error) {
	u := fmt.Sprintf("%s/rss/2.0/headline?s=%s&region=US&lang=en-US",
		c.cfg.FeedBaseURL, url.QueryEscape(ticker))

	parser := gofeed.NewParser()
	parser.UserAgent = c.cfg.UserAgent

	feed, err := parser.ParseURLWithContext(u, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	headlines := make([]string, 0, maxHeadlines)
	for _, item := range feed.Items {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}
		headlines = append(headlines, title)
		if len(headlines) == maxHeadlines {
			break
		}
	}
	return headlines, nil
}
