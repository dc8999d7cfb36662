// Package positions implements the position state machine: the tagged
// union of Pending, Active and Closed positions, their transition logic,
// and the P&L/margin-percent math that drives close-reason resolution.
package positions

import (
	"fmt"
	"time"

	"github.com/yourfin-enon/trading-sdk/orders"
	"github.com/yourfin-enon/trading-sdk/quotes"
	"github.com/yourfin-enon/trading-sdk/symbols"
)

// CloseReason records why an Active position transitioned to Closed.
type CloseReason int

const (
	ClientCommand CloseReason = iota
	StopOut
	TakeProfit
	StopLoss
	AdminCommand
)

func (r CloseReason) String() string {
	switch r {
	case ClientCommand:
		return "ClientCommand"
	case StopOut:
		return "StopOut"
	case TakeProfit:
		return "TakeProfit"
	case StopLoss:
		return "StopLoss"
	case AdminCommand:
		return "AdminCommand"
	default:
		return "Unknown"
	}
}

// Status is the externally visible lifecycle stage of a position.
type Status int

const (
	StatusPending Status = iota
	StatusActive
	StatusFilled
	StatusCanceled
)

// Position is the tagged-union accessor set shared by Pending, Active and
// Closed positions. Callers type-switch on the concrete type to reach
// variant-specific behavior.
type Position interface {
	GetID() symbols.PositionID
	GetOrder() *orders.Order
	GetOpenDate() time.Time
	GetOpenAssetPrices() map[symbols.AssetSymbol]float64
	GetStatus() Status
}

// Open creates a new position from order. A Market order activates
// immediately; a Limit order starts Pending and is promoted to Active if its
// desire price is already satisfied by bidask.
func Open(order *orders.Order, bidask quotes.BidAsk, assetPrices map[symbols.AssetSymbol]float64) (Position, error) {
	return OpenWithID(symbols.NewPositionID(), order, bidask, assetPrices)
}

// OpenWithID behaves like Open but lets the caller supply the position id
// (useful for deterministic tests and for replaying a persisted id).
func OpenWithID(id symbols.PositionID, order *orders.Order, bidask quotes.BidAsk, assetPrices map[symbols.AssetSymbol]float64) (Position, error) {
	if err := order.ValidateAssetPrices(assetPrices); err != nil {
		return nil, fmt.Errorf("can't open order: %w", err)
	}
	if order.Leverage <= 0 {
		panic("can't open order: leverage can't be less than or equal to zero")
	}

	switch order.GetType() {
	case orders.Market:
		return intoActive(id, order, bidask, assetPrices), nil
	default:
		pending := intoPending(id, order, bidask, assetPrices)
		return pending.TryActivate(), nil
	}
}

func snapshotAssetPrices(order *orders.Order, assetPrices map[symbols.AssetSymbol]float64) map[symbols.AssetSymbol]float64 {
	snapshot := make(map[symbols.AssetSymbol]float64, len(assetPrices)+1)
	for k, v := range assetPrices {
		snapshot[k] = v
	}
	snapshot[order.BaseAsset] = 1.0
	return snapshot
}
