package naver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/korean"

	"github.com/kyh-dev/stockscope/pkg/httputil"
	"github.com/kyh-dev/stockscope/pkg/logger"
)

func TestFetchHeadlines(t *testing.T) {
	page := `<html><body>
<table class="type5" summary="종목뉴스">
<tr><td class="title"><a href="/1">삼성전자, 2분기 실적 발표</a></td></tr>
<tr><td class="title"><a href="/2">  반도체 업황 회복 기대감  </a></td></tr>
<tr><td class="title"><a href="/3">외국인 순매수 지속</a></td></tr>
<tr><td class="title"><a href="/4">네번째 기사는 버려짐</a></td></tr>
</table>
</body></html>`

	encoded, err := korean.EUCKR.NewEncoder().String(page)
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/item/news_news.naver", r.URL.Path)
		assert.Equal(t, "005930", r.URL.Query().Get("code"))
		w.Write([]byte(encoded))
	}))
	defer server.Close()

	log := logger.NewNop()
	client := NewClient(httputil.New(log).DisableRetry(), log)
	client.baseURL = server.URL

	headlines, err := client.FetchHeadlines(context.Background(), "005930.KS")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"삼성전자, 2분기 실적 발표",
		"반도체 업황 회복 기대감",
		"외국인 순매수 지속",
	}, headlines)
}

func TestFetchHeadlinesEmptyPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body></body></html>"))
	}))
	defer server.Close()

	log := logger.NewNop()
	client := NewClient(httputil.New(log).DisableRetry(), log)
	client.baseURL = server.URL

	headlines, err := client.FetchHeadlines(context.Background(), "000660.KS")
	require.NoError(t, err)
	assert.Empty(t, headlines)
}
