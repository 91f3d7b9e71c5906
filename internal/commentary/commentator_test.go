package commentary

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyh-dev/stockscope/internal/contracts"
)

func TestParseCommentary(t *testing.T) {
	body := `{"score":75.2,"signal":"매수","one_line":"저평가 우량주","summary":["ROE 양호","PER 업종 평균 이하"],"risk":"반도체 업황 변동성","metric_insights":{"per":"저평가"}}`

	c, err := parseCommentary(body)
	require.NoError(t, err)
	assert.Equal(t, 75.2, c.Score)
	assert.Equal(t, "매수", c.Signal)
	assert.Len(t, c.Summary, 2)
	assert.Equal(t, "저평가", c.MetricInsights["per"])
}

func TestParseCommentaryStripsCodeFence(t *testing.T) {
	body := "```json\n{\"score\":50,\"signal\":\"보유\",\"one_line\":\"중립\",\"summary\":[],\"risk\":\"-\"}\n```"

	c, err := parseCommentary(body)
	require.NoError(t, err)
	assert.Equal(t, "보유", c.Signal)
}

func TestParseCommentaryRejectsMissingSignal(t *testing.T) {
	_, err := parseCommentary(`{"score":50}`)
	assert.Error(t, err)

	_, err = parseCommentary("이건 JSON이 아님")
	assert.Error(t, err)
}

func TestBuildPromptIncludesMetricsAndSchema(t *testing.T) {
	pe := 12.5
	analysis := &contracts.Analysis{
		Ticker:    "005930.KS",
		Name:      "삼성전자",
		Metrics:   contracts.DerivedMetrics{CurrentPrice: 58800, PERatio: &pe},
		Score:     contracts.ScoreBreakdown{Total: 75.2},
		Headlines: []string{"실적 발표"},
	}

	prompt, err := buildPrompt(analysis)
	require.NoError(t, err)
	assert.True(t, strings.Contains(prompt, "005930.KS"))
	assert.True(t, strings.Contains(prompt, "삼성전자"))
	assert.True(t, strings.Contains(prompt, "실적 발표"))
	assert.True(t, strings.Contains(prompt, `"signal"`))
}
