package events

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/aurumlabs/gldcdesk/internal/domain"
)

func TestBroadcasterFanOut(t *testing.T) {
	b := NewMarketBroadcaster(4)
	first := b.Subscribe()
	second := b.Subscribe()
	defer b.Unsubscribe(first)
	defer b.Unsubscribe(second)

	update := MarketUpdate{
		Snapshot:  domain.NewPriceSnapshot(decimal.RequireFromString("2350"), time.Now()),
		Condition: ConditionOK,
	}
	b.Publish(update)

	for _, ch := range []chan MarketUpdate{first, second} {
		select {
		case got := <-ch:
			require.Equal(t, ConditionOK, got.Condition)
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive the update")
		}
	}
}

func TestBroadcasterDropsSlowConsumer(t *testing.T) {
	b := NewMarketBroadcaster(1)
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(MarketUpdate{Condition: ConditionOK})
	b.Publish(MarketUpdate{Condition: ConditionQuotaExhausted}) // dropped, buffer full

	require.Len(t, ch, 1)
	require.Equal(t, ConditionOK, (<-ch).Condition)
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := NewMarketBroadcaster(1)
	ch := b.Subscribe()
	b.Unsubscribe(ch)

	_, open := <-ch
	require.False(t, open)

	// publishing after unsubscribe must not panic on the closed channel
	b.Publish(MarketUpdate{Condition: ConditionOK})
}
