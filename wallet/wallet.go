// Package wallet implements the per-wallet cross-margin aggregator: unlocked
// balance, reserved top-up balance, cross-position pnl by instrument, and
// edge-triggered wallet-level margin-call detection.
package wallet

import (
	"fmt"
	"math"

	"github.com/yourfin-enon/trading-sdk/orders"
	"github.com/yourfin-enon/trading-sdk/quotes"
	"github.com/yourfin-enon/trading-sdk/symbols"
)

// Balance is one asset holding inside a wallet, valued against the wallet's
// estimate asset.
type Balance struct {
	ID     string
	Asset  symbols.AssetSymbol
	Amount float64
	Locked bool
}

// Wallet aggregates every position opened against it into a single
// cross-margin view. Wallets never point at positions; the monitor is the
// only place positions and wallets are cross-referenced.
type Wallet struct {
	ID                symbols.WalletID
	TraderID          string
	EstimateAsset     symbols.AssetSymbol
	MarginCallPercent float64

	TotalUnlockedBalance float64
	CurrentLossPercent   float64
	PrevLossPercent      float64

	balancesByInstrument map[symbols.InstrumentSymbol]Balance
	pricesByAsset        map[symbols.AssetSymbol]float64

	topUpPnLsByInstrument     map[symbols.InstrumentSymbol]float64
	topUpReservedByInstrument map[symbols.InstrumentSymbol]float64
	TotalTopUpReservedBalance float64
}

// New creates an empty wallet for id/traderID, valued in estimateAsset.
func New(id symbols.WalletID, traderID string, estimateAsset symbols.AssetSymbol, marginCallPercent float64) *Wallet {
	return &Wallet{
		ID:                id,
		TraderID:          traderID,
		EstimateAsset:     estimateAsset,
		MarginCallPercent: marginCallPercent,

		balancesByInstrument: make(map[symbols.InstrumentSymbol]Balance),
		pricesByAsset:        map[symbols.AssetSymbol]float64{estimateAsset: 1.0},

		topUpPnLsByInstrument:     make(map[symbols.InstrumentSymbol]float64),
		topUpReservedByInstrument: make(map[symbols.InstrumentSymbol]float64),
	}
}

// Instruments returns every instrument this wallet's balances are indexed
// under, for the monitor to build its instrument->wallet index from.
func (w *Wallet) Instruments() []symbols.InstrumentSymbol {
	result := make([]symbols.InstrumentSymbol, 0, len(w.balancesByInstrument))
	for instrument := range w.balancesByInstrument {
		result = append(result, instrument)
	}
	return result
}

// AddBalance stores balance, deriving its price from quote. quote.Instrument
// must equal symbols.Instrument(balance.Asset, w.EstimateAsset); any other
// instrument is an invalid-input error surfaced to the caller.
func (w *Wallet) AddBalance(balance Balance, quote quotes.BidAsk) error {
	expected := symbols.Instrument(balance.Asset, w.EstimateAsset)
	if quote.Instrument != expected {
		return fmt.Errorf("wrong instrument %s for asset %s: expected %s", quote.Instrument, balance.Asset, expected)
	}

	price := quote.AssetPrice(balance.Asset, orders.Sell)
	w.pricesByAsset[balance.Asset] = price
	w.balancesByInstrument[expected] = balance

	if !balance.Locked {
		w.TotalUnlockedBalance += balance.Amount * price
	}
	return nil
}

// UpdateBalance replaces the stored balance for the same instrument with
// newBalance, adjusting TotalUnlockedBalance by the amount delta valued at
// the currently stored price (not re-derived from a quote). Returns an
// error if no balance is stored for that instrument yet.
func (w *Wallet) UpdateBalance(newBalance Balance) error {
	instrument := symbols.Instrument(newBalance.Asset, w.EstimateAsset)
	old, ok := w.balancesByInstrument[instrument]
	if !ok {
		return fmt.Errorf("no balance found for instrument %s", instrument)
	}

	price := w.pricesByAsset[newBalance.Asset]

	if !old.Locked {
		w.TotalUnlockedBalance -= old.Amount * price
	}
	if !newBalance.Locked {
		w.TotalUnlockedBalance += newBalance.Amount * price
	}

	w.balancesByInstrument[instrument] = newBalance
	return nil
}

// SetBalanceLock toggles the locked flag of the balance identified by
// balanceID, idempotently, adjusting TotalUnlockedBalance by amount*price
// with the sign matching the transition. Returns an error for an unknown id.
func (w *Wallet) SetBalanceLock(balanceID string, locked bool) error {
	for instrument, b := range w.balancesByInstrument {
		if b.ID != balanceID {
			continue
		}
		if b.Locked == locked {
			return nil
		}
		price := w.pricesByAsset[b.Asset]
		if locked {
			w.TotalUnlockedBalance -= b.Amount * price
		} else {
			w.TotalUnlockedBalance += b.Amount * price
		}
		b.Locked = locked
		w.balancesByInstrument[instrument] = b
		return nil
	}
	return fmt.Errorf("no balance found with id %s", balanceID)
}

// UpdatePrice re-values the single balance keyed by quote.Instrument, and
// adjusts TotalUnlockedBalance by the resulting price delta when that
// balance is unlocked. A tick for an instrument the wallet has no balance
// against is a silent no-op.
func (w *Wallet) UpdatePrice(quote quotes.BidAsk) {
	b, ok := w.balancesByInstrument[quote.Instrument]
	if !ok {
		return
	}

	newPrice := quote.AssetPrice(b.Asset, orders.Sell)
	oldPrice := w.pricesByAsset[b.Asset]

	if !b.Locked {
		w.TotalUnlockedBalance += b.Amount * (newPrice - oldPrice)
	}
	w.pricesByAsset[b.Asset] = newPrice
}

// SetTopUpReserved re-prices reservedAssets via the wallet's known asset
// prices (an asset with no known price contributes zero) and stores the
// result keyed by instrument, maintaining TotalTopUpReservedBalance as the
// sum of every per-instrument entry. Unlike a prior buggy variant, this is
// insert-or-update: a first-time reserve for an instrument is counted.
func (w *Wallet) SetTopUpReserved(instrument symbols.InstrumentSymbol, reservedAssets map[symbols.AssetSymbol]float64) {
	var total float64
	for asset, amount := range reservedAssets {
		price, ok := w.pricesByAsset[asset]
		if !ok {
			continue
		}
		total += amount * price
	}

	w.TotalTopUpReservedBalance -= w.topUpReservedByInstrument[instrument]
	w.topUpReservedByInstrument[instrument] = total
	w.TotalTopUpReservedBalance += total
}

// SetTopUpPnL overwrites the aggregated pnl for instrument with pnl — the
// caller (the monitor) has already summed every top-up-enabled position
// sharing this wallet and instrument for the current tick.
func (w *Wallet) SetTopUpPnL(instrument symbols.InstrumentSymbol, pnl float64) {
	w.topUpPnLsByInstrument[instrument] = pnl
}

// DeductTopUpPnL removes a single position's contribution from the
// instrument's aggregated pnl, called when that position is removed from
// the monitor while the wallet still has other open positions.
func (w *Wallet) DeductTopUpPnL(instrument symbols.InstrumentSymbol, pnl float64) {
	w.topUpPnLsByInstrument[instrument] -= pnl
}

// TopUpPnLsByInstrument exposes the current aggregated pnl map for testing
// and diagnostics; callers must not mutate the returned map.
func (w *Wallet) TopUpPnLsByInstrument() map[symbols.InstrumentSymbol]float64 {
	return w.topUpPnLsByInstrument
}

// TopUpReservedByInstrument exposes the current per-instrument reserved
// balance map; callers must not mutate the returned map.
func (w *Wallet) TopUpReservedByInstrument() map[symbols.InstrumentSymbol]float64 {
	return w.topUpReservedByInstrument
}

// UpdateLoss shifts CurrentLossPercent into PrevLossPercent, then
// recomputes CurrentLossPercent from the total aggregated pnl against the
// wallet's unlocked plus reserved balance.
func (w *Wallet) UpdateLoss() {
	var totalPnL float64
	for _, pnl := range w.topUpPnLsByInstrument {
		totalPnL += pnl
	}

	w.PrevLossPercent = w.CurrentLossPercent

	denominator := w.TotalUnlockedBalance + w.TotalTopUpReservedBalance
	if denominator <= 0 {
		w.CurrentLossPercent = 0
		return
	}

	lossPercent := math.Abs(totalPnL) / denominator * 100
	if lossPercent < 0 {
		lossPercent = 0
	}
	w.CurrentLossPercent = lossPercent
}

// IsMarginCall is edge-triggered: true only on the tick CurrentLossPercent
// crosses MarginCallPercent from below. It is not re-emitted while the
// wallet stays above the threshold.
func (w *Wallet) IsMarginCall() bool {
	return w.CurrentLossPercent >= w.MarginCallPercent && w.PrevLossPercent < w.MarginCallPercent
}
