package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newInsightServer(t *testing.T, handler http.HandlerFunc) *InsightClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewInsightClient(server.URL, "test-key", "test-model", 0.7, 0.95)
}

func TestMarketInsightSuccess(t *testing.T) {
	client := newInsightServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "test-model", req.Model)
		require.InDelta(t, 0.7, req.Temperature, 1e-9)
		require.InDelta(t, 0.95, req.TopP, 1e-9)
		require.Len(t, req.Messages, 2)
		require.Contains(t, req.Messages[1].Content, "75.55")

		json.NewEncoder(w).Encode(chatResponse{
			Choices: []choice{{Message: message{Role: "assistant", Content: "Gold holds firm."}}},
		})
	})

	text, err := client.MarketInsight(context.Background(), decimal.RequireFromString("75.55"))
	require.NoError(t, err)
	require.Equal(t, "Gold holds firm.", text)
}

func TestMarketInsightQuotaExhausted(t *testing.T) {
	client := newInsightServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	})

	_, err := client.MarketInsight(context.Background(), decimal.RequireFromString("75.55"))
	require.ErrorIs(t, err, ErrQuotaExhausted)
}

func TestMarketInsightQuotaFromErrorCode(t *testing.T) {
	client := newInsightServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(chatResponse{
			Error: &apiError{Message: "quota used up", Type: "insufficient_quota"},
		})
	})

	_, err := client.MarketInsight(context.Background(), decimal.RequireFromString("75.55"))
	require.ErrorIs(t, err, ErrQuotaExhausted)
}

func TestMarketInsightGenericFailure(t *testing.T) {
	client := newInsightServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`boom`))
	})

	_, err := client.MarketInsight(context.Background(), decimal.RequireFromString("75.55"))
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrQuotaExhausted), "generic failures must stay distinguishable from quota")
}

func TestMarketInsightEmptyKey(t *testing.T) {
	client := NewInsightClient("http://unused", "", "test-model", 0.7, 0.95)

	_, err := client.MarketInsight(context.Background(), decimal.RequireFromString("75.55"))
	require.Error(t, err)
}

func TestMarketInsightNoChoices(t *testing.T) {
	client := newInsightServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(chatResponse{})
	})

	_, err := client.MarketInsight(context.Background(), decimal.RequireFromString("75.55"))
	require.Error(t, err)
}
