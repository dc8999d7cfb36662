// Command monitorsim drives the positions monitor against a small
// synthetic quote feed: it opens one demo wallet and one position, then
// replays a short price path through Update, logging every event and
// serving the Prometheus metrics this module instruments.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/yourfin-enon/trading-sdk/config"
	"github.com/yourfin-enon/trading-sdk/logging"
	"github.com/yourfin-enon/trading-sdk/monitor"
	"github.com/yourfin-enon/trading-sdk/monitoring"
	"github.com/yourfin-enon/trading-sdk/orders"
	"github.com/yourfin-enon/trading-sdk/positions"
	"github.com/yourfin-enon/trading-sdk/quotes"
	"github.com/yourfin-enon/trading-sdk/symbols"
	"github.com/yourfin-enon/trading-sdk/wallet"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(1)
	}

	log := logging.NewLogger(logging.INFO, os.Stdout)
	log.EnableMasking()
	log.Info("starting monitorsim", logging.Component("monitorsim"))

	logging.RegisterErrorAlert(func(stats *logging.ErrorStats) {
		log.Warn("error threshold exceeded", logging.Component("monitorsim"))
	})

	if cfg.Metrics.Enabled {
		collector := monitoring.NewMetricsCollector()
		mux := http.NewServeMux()
		mux.Handle("/metrics", collector.Handler())
		go func() {
			if err := http.ListenAndServe(cfg.Metrics.Addr, mux); err != nil {
				log.Error("metrics server stopped", err, logging.Component("monitorsim"))
				logging.TrackError(context.Background(), err, "high", nil)
			}
		}()
		log.Info("metrics endpoint listening", logging.Component("monitorsim"))
	}

	m := monitor.New(
		cfg.Monitor.Capacity,
		cfg.Monitor.CancelTopUpDelay,
		cfg.Monitor.CancelTopUpPriceChangePercent,
		cfg.Monitor.PnLAccuracy,
		cfg.Monitor.WalletMonitoringEnabled,
	)
	m.Log = log

	walletID := symbols.WalletID("demo-wallet")
	if cfg.Monitor.WalletMonitoringEnabled {
		w := wallet.New(walletID, "demo-trader", "USDT", 12)
		if err := w.AddBalance(wallet.Balance{ID: "bal-usdt", Asset: "USDT", Amount: 5000}, quotes.BidAsk{Instrument: "USDTUSDT", Bid: 1, Ask: 1}); err != nil {
			log.Error("seeding wallet balance", err, logging.Component("monitorsim"))
		}
		m.AddWallet(w)
	}

	order := &orders.Order{
		ID:                "demo-order-1",
		TraderID:          "demo-trader",
		WalletID:          walletID,
		Instrument:        "ATOMUSDT",
		BaseAsset:         "USDT",
		InvestAssets:      []orders.AssetAmount{{Symbol: "USDT", Amount: 1000}},
		Leverage:          1,
		CreatedDate:       time.Now(),
		Side:              orders.Buy,
		StopOutPercent:    10,
		MarginCallPercent: 6,
		TopUpEnabled:      true,
		TopUpPercent:      4,
	}

	openPosition, err := positions.Open(order, quotes.BidAsk{Instrument: "ATOMUSDT", Bid: 100, Ask: 100}, map[symbols.AssetSymbol]float64{"USDT": 1})
	if err != nil {
		log.Fatal("opening demo position", err, logging.Component("monitorsim"))
		os.Exit(1)
	}
	m.Add(openPosition)
	log.Info("opened demo position", logging.Component("monitorsim"))

	priceWalk := []float64{99, 97, 95, 93, 91, 89}
	for _, price := range priceWalk {
		tick := quotes.BidAsk{Instrument: "ATOMUSDT", TimestampMicros: time.Now().UnixMicro(), Bid: price, Ask: price}
		monitoring.RecordQuoteUpdate(string(tick.Instrument))

		start := time.Now()
		events := m.Update(tick)
		monitoring.RecordTick(string(tick.Instrument), float64(time.Since(start).Microseconds()), m.Count())

		for _, e := range events {
			dispatchEvent(log, e)
		}
	}
}

func dispatchEvent(log *logging.Logger, e monitor.Event) {
	switch e.Kind {
	case monitor.PositionActivated:
		monitoring.RecordPositionActivated(string(e.Activated.Order.Instrument))
		log.Info("position activated", logging.Instrument(string(e.Activated.Order.Instrument)))
	case monitor.PositionClosed:
		monitoring.RecordPositionClosed(string(e.Closed.Order.Instrument), e.Closed.CloseReason.String())
		log.Info("position closed", logging.Instrument(string(e.Closed.Order.Instrument)))
	case monitor.PositionMarginCall:
		monitoring.RecordMarginCall(string(e.MarginCall.Order.Instrument))
		log.Warn("position margin call", logging.Instrument(string(e.MarginCall.Order.Instrument)))
	case monitor.PositionLocked:
		if e.Lock.Reason == monitor.TopUp && e.Lock.Active != nil {
			monitoring.RecordTopUpRequested(string(e.Lock.Active.Order.Instrument))
		}
		log.Warn("position locked", logging.PositionID(string(e.Lock.PositionID)))
	case monitor.WalletMarginCall:
		monitoring.RecordWalletMarginCall(string(e.Wallet.WalletID))
		log.Warn("wallet margin call", logging.WalletID(string(e.Wallet.WalletID)))
	}
}
