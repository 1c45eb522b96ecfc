package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const insightTimeout = 30 * time.Second

// ErrQuotaExhausted is returned when the insight provider rate-limits the
// request. It is the only insight failure intentionally surfaced to the
// display layer, so the user can be prompted for a different credential.
var ErrQuotaExhausted = errors.New("insight provider quota exhausted")

// InsightProvider produces a short market commentary for the latest price.
type InsightProvider interface {
	MarketInsight(ctx context.Context, unitPrice decimal.Decimal) (string, error)
}

// InsightClient calls an OpenAI-compatible chat-completion API.
type InsightClient struct {
	apiURL      string
	apiKey      string
	model       string
	temperature float64
	topP        float64
	httpClient  *http.Client
}

// NewInsightClient creates a client for OpenAI-compatible APIs.
func NewInsightClient(apiURL, apiKey, model string, temperature, topP float64) *InsightClient {
	return &InsightClient{
		apiURL:      apiURL,
		apiKey:      apiKey,
		model:       model,
		temperature: temperature,
		topP:        topP,
		httpClient: &http.Client{
			Timeout: insightTimeout,
		},
	}
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	TopP        float64   `json:"top_p,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []choice  `json:"choices"`
	Error   *apiError `json:"error,omitempty"`
}

type choice struct {
	Message message `json:"message"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}

const systemPrompt = "You are a precious-metals market commentator for a gold-backed token dashboard. Answer in one or two short sentences, no financial advice."

// MarketInsight requests a commentary for the given per-gram token price.
// A rate-limit response maps to ErrQuotaExhausted; there is no retry here,
// the periodic resync is the only recurrence.
func (c *InsightClient) MarketInsight(ctx context.Context, unitPrice decimal.Decimal) (string, error) {
	if c.apiKey == "" {
		return "", errors.New("insight API key is empty")
	}

	prompt := fmt.Sprintf("GLDC, a token backed by one gram of gold, is currently priced at $%s. Give a brief market commentary.", unitPrice.StringFixed(2))

	reqBody := chatRequest{
		Model: c.model,
		Messages: []message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: c.temperature,
		TopP:        c.topP,
		MaxTokens:   120,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", errors.Wrap(err, "failed to create HTTP request")
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "HTTP request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "failed to read response body")
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", errors.Wrapf(ErrQuotaExhausted, "status %d: %s", resp.StatusCode, string(body))
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("insight API returned status %d: %s", resp.StatusCode, string(body))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", errors.Wrap(err, "failed to unmarshal response")
	}

	if chatResp.Error != nil {
		if chatResp.Error.Code == "rate_limit_exceeded" || chatResp.Error.Type == "insufficient_quota" {
			return "", errors.Wrapf(ErrQuotaExhausted, "%s", chatResp.Error.Message)
		}
		return "", fmt.Errorf("insight API error: %s (type: %s, code: %s)",
			chatResp.Error.Message, chatResp.Error.Type, chatResp.Error.Code)
	}

	if len(chatResp.Choices) == 0 {
		return "", errors.New("insight API returned no choices")
	}

	return chatResp.Choices[0].Message.Content, nil
}
