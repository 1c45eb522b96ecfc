// Package market runs the price synchronization loop: spot fetch, unit-price
// derivation, synthetic history regeneration and insight commentary, published
// to dashboard subscribers after every cycle.
package market

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/aurumlabs/gldcdesk/internal/clients"
	"github.com/aurumlabs/gldcdesk/internal/domain"
	"github.com/aurumlabs/gldcdesk/internal/events"
	"github.com/aurumlabs/gldcdesk/internal/services/pricer"
	"go.uber.org/zap"
)

// defaultInsight is shown until the provider returns its first commentary.
const defaultInsight = "Gold market commentary will appear after the first sync."

// Synchronizer owns the last known-good price and the last successful
// insight text. Cycles run on a fixed interval plus once at startup; manual
// refreshes funnel into the same single-consumer loop, so a refresh can
// never overlap a scheduled cycle.
type Synchronizer struct {
	spot     clients.SpotSource
	insight  clients.InsightProvider
	history  *pricer.HistoryGenerator
	bus      *events.MarketBroadcaster
	interval time.Duration
	logger   *zap.Logger

	trigger chan struct{}

	mu          sync.RWMutex
	lastGood    decimal.Decimal
	hasPrice    bool
	lastInsight string
	latest      events.MarketUpdate
	hasUpdate   bool
}

// NewSynchronizer creates a synchronizer publishing to bus.
func NewSynchronizer(
	spot clients.SpotSource,
	insight clients.InsightProvider,
	history *pricer.HistoryGenerator,
	bus *events.MarketBroadcaster,
	interval time.Duration,
	logger *zap.Logger,
) (*Synchronizer, error) {
	if spot == nil {
		return nil, errors.New("spot source is required")
	}
	if history == nil {
		return nil, errors.New("history generator is required")
	}
	if bus == nil {
		return nil, errors.New("market broadcaster is required")
	}
	if interval <= 0 {
		return nil, errors.Errorf("sync interval must be positive, got %s", interval)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synchronizer{
		spot:        spot,
		insight:     insight,
		history:     history,
		bus:         bus,
		interval:    interval,
		logger:      logger,
		trigger:     make(chan struct{}, 1),
		lastInsight: defaultInsight,
	}, nil
}

// Run executes one immediate cycle and then re-triggers on the fixed
// interval until ctx is cancelled. The ticker is released on return.
func (s *Synchronizer) Run(ctx context.Context) error {
	s.Cycle(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("price synchronization started", zap.Duration("interval", s.interval))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("price synchronization stopped")
			return ctx.Err()
		case <-ticker.C:
			s.Cycle(ctx)
		case <-s.trigger:
			s.Cycle(ctx)
		}
	}
}

// Refresh requests an immediate cycle. Requests arriving while a cycle is in
// flight coalesce into at most one queued cycle.
func (s *Synchronizer) Refresh() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// Cycle runs one synchronization pass: price step first, insight second,
// publish last. The price and history update even when the insight step
// fails; only a context-level failure leaves them untouched.
func (s *Synchronizer) Cycle(ctx context.Context) {
	quote := s.spot.FetchSpot(ctx)

	if ctx.Err() != nil {
		s.logger.Warn("sync cycle aborted", zap.Error(ctx.Err()))
		s.bus.Publish(events.MarketUpdate{
			Condition: events.ConditionConnectionError,
			Reason:    ctx.Err().Error(),
		})
		return
	}

	snapshot := domain.NewPriceSnapshot(quote.Price, quote.FetchedAt)
	series := s.history.Generate(snapshot.Unit)

	s.mu.Lock()
	s.lastGood = snapshot.Unit
	s.hasPrice = true
	s.mu.Unlock()

	condition := events.ConditionOK
	insight, quota := s.fetchInsight(ctx, snapshot.Unit)
	if quota {
		condition = events.ConditionQuotaExhausted
	}

	update := events.MarketUpdate{
		Snapshot:  snapshot,
		History:   series,
		Insight:   insight,
		Degraded:  quote.Degraded,
		Reason:    quote.Reason,
		Condition: condition,
	}

	s.mu.Lock()
	s.latest = update
	s.hasUpdate = true
	s.mu.Unlock()

	s.bus.Publish(update)

	s.logger.Info("price synchronized",
		zap.String("spot", snapshot.Spot.StringFixed(2)),
		zap.String("unit", snapshot.Unit.StringFixed(2)),
		zap.Bool("degraded", quote.Degraded),
		zap.String("condition", string(condition)))
}

// fetchInsight returns the commentary to publish and whether the provider
// was rate-limited. Any failure other than quota exhaustion is absorbed by
// reusing the last successful text.
func (s *Synchronizer) fetchInsight(ctx context.Context, unit decimal.Decimal) (string, bool) {
	if s.insight == nil {
		return s.lastInsightText(), false
	}

	text, err := s.insight.MarketInsight(ctx, unit)
	if err != nil {
		if errors.Is(err, clients.ErrQuotaExhausted) {
			s.logger.Warn("insight quota exhausted", zap.Error(err))
			return s.lastInsightText(), true
		}
		s.logger.Warn("insight fetch failed, reusing last commentary", zap.Error(err))
		return s.lastInsightText(), false
	}

	s.mu.Lock()
	s.lastInsight = text
	s.mu.Unlock()
	return text, false
}

func (s *Synchronizer) lastInsightText() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastInsight
}

// LastKnownGood returns the most recent successfully derived unit price and
// whether one exists yet. Once set it is never reset.
func (s *Synchronizer) LastKnownGood() (decimal.Decimal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastGood, s.hasPrice
}

// Latest returns the most recent published update for late subscribers.
func (s *Synchronizer) Latest() (events.MarketUpdate, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.hasUpdate
}
