// Package quotes holds the bid/ask quote type, its side-aware price
// derivations, and a cache keyed by instrument symbol.
package quotes

import (
	"fmt"

	"github.com/yourfin-enon/trading-sdk/orders"
	"github.com/yourfin-enon/trading-sdk/symbols"
)

// BidAsk is an instantaneous top-of-book pair for an instrument. Bid is
// assumed not to exceed Ask; the invariant is not enforced here.
type BidAsk struct {
	Instrument      symbols.InstrumentSymbol
	TimestampMicros int64
	Bid             float64
	Ask             float64
}

// OpenPrice returns the price at which a new position on the given side
// would be opened: Ask for Buy, Bid for Sell.
func (q BidAsk) OpenPrice(side orders.Side) float64 {
	if side == orders.Buy {
		return q.Ask
	}
	return q.Bid
}

// ClosePrice returns the price at which an existing position on the given
// side would be closed: Bid for Buy, Ask for Sell.
func (q BidAsk) ClosePrice(side orders.Side) float64 {
	if side == orders.Buy {
		return q.Bid
	}
	return q.Ask
}

// AssetPrice returns the Sell or Buy price of asset within this quote.
// It panics if the quote's instrument is not quoted against asset — callers
// must only invoke this after confirming the pairing, matching the
// programmer-error class of failure for a misused price lookup.
func (q BidAsk) AssetPrice(asset symbols.AssetSymbol, side orders.Side) float64 {
	if !q.Instrument.HasAssetPrefix(asset) {
		panic(fmt.Sprintf("invalid instrument %s for asset %s", q.Instrument, asset))
	}
	if side == orders.Sell {
		return q.Ask
	}
	return q.Bid
}

// AssetPrice carries a resolved price for a single asset (e.g. for wallet
// valuation), distinct from a BidAsk which is always instrument-scoped.
type AssetPrice struct {
	Symbol symbols.AssetSymbol
	Price  float64
}
