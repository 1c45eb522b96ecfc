// Command gldcdesk serves the GLDC gold-token dashboard: a price
// synchronization loop against a spot-gold feed, an order calculator and an
// in-memory transaction ledger with delayed manual-style settlement.
//
// Usage:
//
//	gldcdesk --config config.yaml
//	gldcdesk --addr :8080
//
// Environment variables:
//
//	GLDC_ADMIN_ADDRESS  payment destination shown in purchase notices
//	GLDC_ADMIN_EMAIL    admin notification address for the mailto handoff
//	GLDC_INSIGHT_API_KEY  key for the insight commentary provider (optional)
package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"github.com/aurumlabs/gldcdesk/config"
	"github.com/aurumlabs/gldcdesk/internal/clients"
	"github.com/aurumlabs/gldcdesk/internal/events"
	"github.com/aurumlabs/gldcdesk/internal/notify"
	"github.com/aurumlabs/gldcdesk/internal/services/ledger"
	"github.com/aurumlabs/gldcdesk/internal/services/market"
	"github.com/aurumlabs/gldcdesk/internal/services/pricer"
	"github.com/aurumlabs/gldcdesk/internal/services/wallet"
	"github.com/aurumlabs/gldcdesk/internal/web"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	conf, err := config.Get()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	spot := clients.NewSpotClient(conf.SpotEndpoint, conf.SpotSymbol, conf.FallbackSpot, logger)

	var insight clients.InsightProvider
	if conf.InsightAPIKey != "" {
		insight = clients.NewInsightClient(conf.InsightURL, conf.InsightAPIKey, conf.InsightModel,
			conf.InsightTemperature, conf.InsightTopP)
	} else {
		logger.Warn("GLDC_INSIGHT_API_KEY is not set, market commentary disabled")
	}

	bus := events.NewMarketBroadcaster(256)
	history := pricer.NewHistoryGenerator(conf.HistoryPoints, conf.HistorySpacing, nil)

	sync, err := market.NewSynchronizer(spot, insight, history, bus, conf.SyncInterval, logger)
	if err != nil {
		logger.Fatal("failed to create synchronizer", zap.Error(err))
	}

	w := wallet.New(logger)
	notifier := notify.NewMailtoNotifier(conf.AdminEmail, conf.AdminAddress, logger)

	l, err := ledger.New(w, sync, notifier, conf.SettlementDelay, logger)
	if err != nil {
		logger.Fatal("failed to create ledger", zap.Error(err))
	}
	defer l.Close()

	server := web.NewServer(conf.ListenAddr, sync, bus, l, w, notifier, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sync.Run(ctx)
	})
	g.Go(func() error {
		return server.Start(ctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("desk stopped", zap.Error(err))
	}
}
