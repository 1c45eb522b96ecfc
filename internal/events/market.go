// Package events carries the market updates the synchronizer publishes to
// dashboard subscribers.
package events

import (
	"sync"

	"github.com/aurumlabs/gldcdesk/internal/domain"
)

// Condition classifies the outcome of one synchronization cycle.
type Condition string

const (
	// ConditionOK: price and insight published normally.
	ConditionOK Condition = "ok"
	// ConditionQuotaExhausted: insight provider rate-limited; the price and
	// history still updated from the price step.
	ConditionQuotaExhausted Condition = "quota_exhausted"
	// ConditionConnectionError: the cycle failed before producing a price;
	// last-known-good and history were left untouched.
	ConditionConnectionError Condition = "connection_error"
)

// MarketUpdate is the payload published after each synchronization cycle.
type MarketUpdate struct {
	Snapshot  domain.PriceSnapshot `json:"snapshot"`
	History   []domain.PricePoint  `json:"history"`
	Insight   string               `json:"insight"`
	Degraded  bool                 `json:"degraded"`
	Reason    string               `json:"reason,omitempty"`
	Condition Condition            `json:"condition"`
}

// MarketBroadcaster fans out updates to all subscribers via buffered
// channels. It keeps the API intentionally small so call sites can stay
// straightforward.
type MarketBroadcaster struct {
	mu     sync.RWMutex
	subs   map[chan MarketUpdate]struct{}
	buffer int
}

// NewMarketBroadcaster creates a broadcaster with the given per-subscriber buffer.
func NewMarketBroadcaster(buffer int) *MarketBroadcaster {
	if buffer < 1 {
		buffer = 64
	}
	return &MarketBroadcaster{
		subs:   make(map[chan MarketUpdate]struct{}),
		buffer: buffer,
	}
}

// Publish sends the update to all subscribers, dropping if a reader is slow.
func (b *MarketBroadcaster) Publish(u MarketUpdate) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- u:
		default:
			// drop slow consumer
		}
	}
}

// Subscribe returns a channel that receives updates until Unsubscribe is called.
func (b *MarketBroadcaster) Subscribe() chan MarketUpdate {
	ch := make(chan MarketUpdate, b.buffer)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes the channel and closes it.
func (b *MarketBroadcaster) Unsubscribe(ch chan MarketUpdate) {
	b.mu.Lock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
	b.mu.Unlock()
}
