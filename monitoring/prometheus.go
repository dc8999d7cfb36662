package monitoring

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Quote cache metrics
	quoteUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "monitor_quote_updates_total",
			Help: "Total bid/ask quotes applied to the cache",
		},
		[]string{"instrument"},
	)

	// Positions monitor tick metrics
	tickDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "monitor_tick_duration_microseconds",
			Help:    "Duration of a single positions-monitor update tick",
			Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		},
		[]string{"instrument"},
	)

	positionsTouchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "monitor_positions_touched_total",
			Help: "Total positions visited during update ticks, by instrument",
		},
		[]string{"instrument"},
	)

	activePositions = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "monitor_active_positions",
			Help: "Current number of active positions by instrument and side",
		},
		[]string{"instrument", "side"},
	)

	pendingPositions = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "monitor_pending_positions",
			Help: "Current number of pending (not yet activated) positions by instrument",
		},
		[]string{"instrument"},
	)

	lockedPositions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "monitor_locked_positions",
			Help: "Current number of positions locked pending an operator top-up decision",
		},
	)

	// Position lifecycle outcomes
	positionsActivatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "monitor_positions_activated_total",
			Help: "Total pending positions activated, by instrument",
		},
		[]string{"instrument"},
	)

	positionsClosedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "monitor_positions_closed_total",
			Help: "Total positions closed, by instrument and close reason",
		},
		[]string{"instrument", "reason"},
	)

	positionPnL = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "monitor_position_pnl",
			Help: "Current unrealized pnl of an active position in its invest asset terms",
		},
		[]string{"wallet_id", "instrument"},
	)

	marginCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "monitor_margin_calls_total",
			Help: "Total position-level margin-call events raised, by instrument",
		},
		[]string{"instrument"},
	)

	topUpsRequestedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "monitor_top_ups_requested_total",
			Help: "Total top-up requests raised for positions nearing stop-out",
		},
		[]string{"instrument"},
	)

	topUpsCancelledTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "monitor_top_ups_cancelled_total",
			Help: "Total pending top-up requests cancelled due to price recovery or timeout",
		},
		[]string{"instrument", "reason"},
	)

	// Wallet aggregator metrics
	walletsTracked = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "monitor_wallets_tracked",
			Help: "Current number of wallets tracked by the cross-margin aggregator",
		},
	)

	walletMarginCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "monitor_wallet_margin_calls_total",
			Help: "Total wallet-level margin-call edges raised",
		},
		[]string{"wallet_id"},
	)

	walletUnlockedBalance = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "monitor_wallet_unlocked_balance",
			Help: "Current unlocked balance for a wallet asset",
		},
		[]string{"wallet_id", "asset"},
	)
)

// MetricsCollector exposes the registered collectors over /metrics.
type MetricsCollector struct {
	registry *prometheus.Registry
	mu       sync.RWMutex
}

// NewMetricsCollector creates a new metrics collector bound to the default registry.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		registry: prometheus.DefaultRegisterer.(*prometheus.Registry),
	}
}

// Handler returns the HTTP handler for the /metrics endpoint.
func (mc *MetricsCollector) Handler() http.Handler {
	return promhttp.Handler()
}

// RecordQuoteUpdate records an applied bid/ask update for an instrument.
func RecordQuoteUpdate(instrument string) {
	quoteUpdatesTotal.WithLabelValues(instrument).Inc()
}

// RecordTick records the duration of one update(quote) pass and how many
// positions it touched.
func RecordTick(instrument string, microseconds float64, positionsTouched int) {
	tickDuration.WithLabelValues(instrument).Observe(microseconds)
	positionsTouchedTotal.WithLabelValues(instrument).Add(float64(positionsTouched))
}

// SetActivePositions sets the active position gauge for an instrument/side pair.
func SetActivePositions(instrument, side string, count int) {
	activePositions.WithLabelValues(instrument, side).Set(float64(count))
}

// SetPendingPositions sets the pending position gauge for an instrument.
func SetPendingPositions(instrument string, count int) {
	pendingPositions.WithLabelValues(instrument).Set(float64(count))
}

// SetLockedPositions sets the count of positions awaiting a top-up decision.
func SetLockedPositions(count int) {
	lockedPositions.Set(float64(count))
}

// RecordPositionActivated records a pending position transitioning to active.
func RecordPositionActivated(instrument string) {
	positionsActivatedTotal.WithLabelValues(instrument).Inc()
}

// RecordPositionClosed records a position close, tagged with its close reason.
func RecordPositionClosed(instrument, reason string) {
	positionsClosedTotal.WithLabelValues(instrument, reason).Inc()
}

// SetPositionPnL sets the current unrealized pnl for a wallet's position in an instrument.
func SetPositionPnL(walletID, instrument string, pnl float64) {
	positionPnL.WithLabelValues(walletID, instrument).Set(pnl)
}

// RecordMarginCall records one position-level margin-call event. These are
// raised on every tick the condition holds, not only on the crossing.
func RecordMarginCall(instrument string) {
	marginCallsTotal.WithLabelValues(instrument).Inc()
}

// RecordTopUpRequested records a top-up request raised for a position.
func RecordTopUpRequested(instrument string) {
	topUpsRequestedTotal.WithLabelValues(instrument).Inc()
}

// RecordTopUpCancelled records a pending top-up request being cancelled.
func RecordTopUpCancelled(instrument, reason string) {
	topUpsCancelledTotal.WithLabelValues(instrument, reason).Inc()
}

// SetWalletsTracked sets the number of wallets currently tracked.
func SetWalletsTracked(count int) {
	walletsTracked.Set(float64(count))
}

// RecordWalletMarginCall records a wallet-level margin-call edge trigger.
func RecordWalletMarginCall(walletID string) {
	walletMarginCallsTotal.WithLabelValues(walletID).Inc()
}

// SetWalletUnlockedBalance sets the unlocked balance gauge for a wallet asset.
func SetWalletUnlockedBalance(walletID, asset string, amount float64) {
	walletUnlockedBalance.WithLabelValues(walletID, asset).Set(amount)
}
