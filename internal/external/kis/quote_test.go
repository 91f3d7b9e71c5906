package kis

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyh-dev/stockscope/internal/contracts"
	"github.com/kyh-dev/stockscope/pkg/config"
	"github.com/kyh-dev/stockscope/pkg/httputil"
	"github.com/kyh-dev/stockscope/pkg/logger"
)

func TestStockCode(t *testing.T) {
	assert.Equal(t, "005930", StockCode("005930.KS"))
	assert.Equal(t, "035720", StockCode("035720.kq"))
	assert.Equal(t, "005930", StockCode("005930"))
}

func TestParseKISNumber(t *testing.T) {
	assert.Equal(t, 3509043.0, parseKISNumber("3,509,043"))
	assert.Equal(t, 12.53, parseKISNumber("12.53"))
	assert.Equal(t, 0.0, parseKISNumber("-"))
	assert.Equal(t, 0.0, parseKISNumber(""))
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.KISConfig{
		AppKey:    "test-key",
		AppSecret: "test-secret",
		BaseURL:   server.URL,
		RateLimit: 100,
	}
	log := logger.NewNop()
	return NewClient(cfg, httputil.New(log).DisableRetry(), log), server
}

func TestFetchQuote(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/tokenP", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"access_token":"tok","token_type":"Bearer","expires_in":86400}`))
	})
	mux.HandleFunc("/uapi/domestic-stock/v1/quotations/inquire-price", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("authorization"))
		assert.Equal(t, "FHKST01010100", r.Header.Get("tr_id"))
		assert.Equal(t, "005930", r.URL.Query().Get("fid_input_iscd"))
		w.Write([]byte(`{"rt_cd":"0","output":{"stck_prpr":"58800","per":"12.53","pbr":"1.08","hts_avls":"3509043"}}`))
	})
	mux.HandleFunc("/uapi/domestic-stock/v1/finance/balance-sheet", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"rt_cd":"0","output":[
			{"stac_yymm":"202412","total_aset":"4,559,060","total_lblt":"1,101,803","total_cptl":"3,457,257"},
			{"stac_yymm":"202312","total_aset":"4,404,418","total_lblt":"1,053,521","total_cptl":"3,350,897"}
		]}`))
	})
	mux.HandleFunc("/uapi/domestic-stock/v1/finance/income-statement", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"rt_cd":"0","output":[
			{"stac_yymm":"202412","sale_account":"3,008,709","bsop_prti":"327,259","thtr_ntin":"344,514"}
		]}`))
	})

	client, _ := newTestClient(t, mux)

	raw, err := client.FetchQuote(context.Background(), "005930.KS")
	require.NoError(t, err)

	assert.Equal(t, "58800", raw["stck_prpr"])
	assert.Equal(t, "12.53", raw["per"])

	bs, ok := raw["balance_sheet"].(*contracts.Statement)
	require.True(t, ok)
	assert.Equal(t, []string{"202412", "202312"}, bs.Columns)
	assert.Equal(t, []float64{3457257, 3350897}, bs.Rows["자본총계"])

	is, ok := raw["income_statement"].(*contracts.Statement)
	require.True(t, ok)
	assert.Equal(t, []float64{344514}, is.Rows["당기순이익"])
}

func TestFetchQuoteUpstreamError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/tokenP", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"access_token":"tok","expires_in":86400}`))
	})
	mux.HandleFunc("/uapi/domestic-stock/v1/quotations/inquire-price", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"rt_cd":"1","msg_cd":"EGW00123","msg1":"기간이 만료된 token 입니다"}`))
	})

	client, _ := newTestClient(t, mux)

	_, err := client.FetchQuote(context.Background(), "005930.KS")
	require.Error(t, err)
	assert.True(t, contracts.IsUpstream(err))
}

func TestTokenReuse(t *testing.T) {
	tokenCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/tokenP", func(w http.ResponseWriter, r *http.Request) {
		tokenCalls++
		w.Write([]byte(`{"access_token":"tok","expires_in":86400}`))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"rt_cd":"0","output":{"stck_prpr":"100"}}`))
	})

	client, _ := newTestClient(t, mux)

	ctx := context.Background()
	_, err := client.FetchQuote(ctx, "005930.KS")
	require.NoError(t, err)
	_, err = client.FetchQuote(ctx, "005930.KS")
	require.NoError(t, err)

	assert.Equal(t, 1, tokenCalls)
}
