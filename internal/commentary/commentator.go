// Package commentary turns a finished analysis into narrative commentary
// using the Anthropic API.
package commentary

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/kyh-dev/stockscope/internal/contracts"
	"github.com/kyh-dev/stockscope/pkg/config"
	"github.com/kyh-dev/stockscope/pkg/logger"
)

const systemPrompt = `당신은 한국의 주식 애널리스트입니다. 주어진 지표와 점수를 바탕으로
간결하고 균형 잡힌 코멘트를 한국어로 작성합니다. 반드시 JSON만 출력하세요.`

// Commentator implements contracts.Commentator on the Anthropic API.
type Commentator struct {
	client anthropic.Client
	cfg    config.AnthropicConfig
	log    *logger.Logger
}

// New creates a Claude-backed commentator.
func New(cfg config.AnthropicConfig, log *logger.Logger) *Commentator {
	return &Commentator{
		client: anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		cfg:    cfg,
		log:    log,
	}
}

// Comment asks the model for a verdict on the analysis. The response is
// strict JSON matching the Commentary shape.
func (c *Commentator) Comment(ctx context.Context, analysis *contracts.Analysis) (*contracts.Commentary, error) {
	prompt, err := buildPrompt(analysis)
	if err != nil {
		return nil, fmt.Errorf("build prompt: %w", err)
	}

	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.cfg.Model),
		MaxTokens: int64(c.cfg.MaxTokens),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic call failed: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, fmt.Errorf("empty commentary response")
	}

	commentary, err := parseCommentary(text.String())
	if err != nil {
		return nil, err
	}

	c.log.WithFields(map[string]interface{}{
		"ticker": analysis.Ticker,
		"signal": commentary.Signal,
	}).Info("Commentary generated")

	return commentary, nil
}

// buildPrompt lays out identity, metrics, score, and headlines plus the
// required output schema.
func buildPrompt(analysis *contracts.Analysis) (string, error) {
	payload, err := json.MarshalIndent(map[string]any{
		"ticker":    analysis.Ticker,
		"name":      analysis.Name,
		"sector":    analysis.Sector,
		"metrics":   analysis.Metrics,
		"display":   analysis.Display,
		"score":     analysis.Score,
		"headlines": analysis.Headlines,
	}, "", "  ")
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("다음 종목 분석 데이터를 평가해 주세요.\n\n")
	b.Write(payload)
	b.WriteString(`

아래 스키마의 JSON만 출력하세요. 다른 텍스트는 금지합니다.
{
  "score": 75.2,
  "signal": "매수 | 보유 | 매도",
  "one_line": "한 줄 요약",
  "summary": ["핵심 포인트 2~4개"],
  "risk": "주요 리스크 한 단락",
  "metric_insights": {"per": "...", "pbr": "...", "roe": "..."}
}`)
	return b.String(), nil
}

// parseCommentary tolerates code fences around the JSON body.
func parseCommentary(text string) (*contracts.Commentary, error) {
	trimmed := strings.TrimSpace(text)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	var commentary contracts.Commentary
	if err := json.Unmarshal([]byte(trimmed), &commentary); err != nil {
		return nil, fmt.Errorf("parse commentary JSON: %w", err)
	}
	if commentary.Signal == "" {
		return nil, fmt.Errorf("commentary missing signal")
	}
	return &commentary, nil
}
