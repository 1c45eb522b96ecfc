// Package clients contains the outbound HTTP clients of the desk: the
// spot-gold ticker and the insight text provider.
package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/aurumlabs/gldcdesk/internal/domain"
	"go.uber.org/zap"
)

const spotTimeout = 10 * time.Second

// SpotSource returns the current spot price of the underlying commodity.
type SpotSource interface {
	FetchSpot(ctx context.Context) domain.SpotQuote
}

// SpotClient queries a spot-gold ticker endpoint. A failed fetch never
// surfaces as an error: the client returns the configured fallback price
// tagged as degraded, so the caller can show staleness instead of silently
// trusting a constant.
type SpotClient struct {
	endpoint   string
	symbol     string
	fallback   decimal.Decimal
	httpClient *http.Client
	logger     *zap.Logger
}

// NewSpotClient creates a spot ticker client.
func NewSpotClient(endpoint, symbol string, fallback decimal.Decimal, logger *zap.Logger) *SpotClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SpotClient{
		endpoint: endpoint,
		symbol:   symbol,
		fallback: fallback,
		httpClient: &http.Client{
			Timeout: spotTimeout,
		},
		logger: logger,
	}
}

// flexPrice accepts quote services that encode the price either as a JSON
// number or as a string.
type flexPrice struct {
	value decimal.Decimal
	set   bool
}

func (p *flexPrice) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" || s == "" {
		return nil
	}
	value, err := decimal.NewFromString(s)
	if err != nil {
		return err
	}
	p.value = value
	p.set = true
	return nil
}

type tickerResponse struct {
	Price flexPrice `json:"price"`
}

// FetchSpot fetches the current spot price, falling back to the configured
// constant on any transport, protocol or parse failure.
func (c *SpotClient) FetchSpot(ctx context.Context) domain.SpotQuote {
	price, err := c.fetch(ctx)
	if err != nil {
		c.logger.Warn("spot fetch failed, serving fallback price",
			zap.String("symbol", c.symbol),
			zap.String("fallback", c.fallback.String()),
			zap.Error(err))
		return domain.SpotQuote{
			Price:     c.fallback,
			Degraded:  true,
			Reason:    err.Error(),
			FetchedAt: time.Now(),
		}
	}

	return domain.SpotQuote{Price: price, FetchedAt: time.Now()}
}

func (c *SpotClient) fetch(ctx context.Context) (decimal.Decimal, error) {
	url := fmt.Sprintf("%s/%s", c.endpoint, c.symbol)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Decimal{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Decimal{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decimal.Decimal{}, fmt.Errorf("ticker returned status %d", resp.StatusCode)
	}

	var ticker tickerResponse
	if err := json.NewDecoder(resp.Body).Decode(&ticker); err != nil {
		return decimal.Decimal{}, err
	}
	if !ticker.Price.set {
		return decimal.Decimal{}, fmt.Errorf("ticker response for %s has no price field", c.symbol)
	}
	if ticker.Price.value.LessThanOrEqual(decimal.Zero) {
		return decimal.Decimal{}, fmt.Errorf("ticker returned non-positive price %s", ticker.Price.value.String())
	}

	return ticker.Price.value, nil
}
