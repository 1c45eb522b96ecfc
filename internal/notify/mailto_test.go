package notify

import (
	"net/url"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLink(t *testing.T) {
	notifier := NewMailtoNotifier("desk-admin@example.com", "0xADMIN", zap.NewNop())

	link := notifier.Link(Notice{
		Account:   "0x71C7656E",
		Quantity:  decimal.RequireFromString("10"),
		TotalDue:  decimal.RequireFromString("761.16625"),
		Reference: "tx-123",
	})

	require.True(t, strings.HasPrefix(link, "mailto:desk-admin@example.com?"))
	require.NotContains(t, link, "+", "mailto queries must use percent escaping for spaces")

	parsed, err := url.Parse(link)
	require.NoError(t, err)
	values, err := url.ParseQuery(parsed.RawQuery)
	require.NoError(t, err)

	require.Contains(t, values.Get("subject"), "tx-123")
	body := values.Get("body")
	require.Contains(t, body, "0x71C7656E")
	require.Contains(t, body, "10 GLDC")
	require.Contains(t, body, "$761.17", "total due is rounded to cents at display")
	require.Contains(t, body, "0xADMIN")
	require.Contains(t, body, "tx-123")
}
