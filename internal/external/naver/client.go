// Package naver scrapes Naver Finance for domestic stock headlines.
// ⭐ SSOT: Naver Finance 호출은 이 클라이언트에서만
package naver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"

	"github.com/kyh-dev/stockscope/pkg/httputil"
	"github.com/kyh-dev/stockscope/pkg/logger"
)

// Client handles communication with Naver Finance.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new Naver Finance client.
func NewClient(httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    "https://finance.naver.com",
	}
}

// fetchHTML fetches a page and decodes it from EUC-KR.
func (c *Client) fetchHTML(ctx context.Context, path string, params url.Values) (string, error) {
	fullURL := fmt.Sprintf("%s%s", c.baseURL, path)
	if len(params) > 0 {
		fullURL = fmt.Sprintf("%s?%s", fullURL, params.Encode())
	}

	resp, err := c.httpClient.Get(ctx, fullURL)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	// 네이버 금융 페이지는 EUC-KR
	body, err := io.ReadAll(transform.NewReader(resp.Body, korean.EUCKR.NewDecoder()))
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	return string(body), nil
}
