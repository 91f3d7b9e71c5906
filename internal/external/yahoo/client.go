// Package yahoo talks to the Yahoo Finance endpoints: quoteSummary for
// fundamentals, chart for price history, search for free-text lookup, and
// the RSS feed for headlines.
package yahoo

import (
	"github.com/kyh-dev/stockscope/pkg/config"
	"github.com/kyh-dev/stockscope/pkg/httputil"
	"github.com/kyh-dev/stockscope/pkg/logger"
)

// quoteSummary modules merged into a single raw record.
const summaryModules = "price,summaryDetail,defaultKeyStatistics,financialData,assetProfile"

// Client handles communication with Yahoo Finance.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	cfg        config.YahooConfig
}

// NewClient creates a new Yahoo Finance client. Yahoo rejects requests
// without a browser User-Agent, so the UA from config rides on every call.
func NewClient(cfg config.YahooConfig, httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient.WithUserAgent(cfg.UserAgent),
		logger:     log,
		cfg:        cfg,
	}
}
