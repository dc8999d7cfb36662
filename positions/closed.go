package positions

import (
	"time"

	"github.com/yourfin-enon/trading-sdk/orders"
	"github.com/yourfin-enon/trading-sdk/symbols"
)

// ClosedPosition is a terminal position snapshot. It remains in the cache
// for exactly one more update cycle after closing so the monitor can emit
// PositionClosed, then is evicted.
type ClosedPosition struct {
	ID                  symbols.PositionID
	Order               *orders.Order
	OpenDate            time.Time
	OpenAssetPrices     map[symbols.AssetSymbol]float64
	ActivatePrice       *float64
	ActivateDate        *time.Time
	ActivateAssetPrices map[symbols.AssetSymbol]float64
	ClosePrice          float64
	CloseDate           time.Time
	CloseReason         CloseReason
	CloseAssetPrices    map[symbols.AssetSymbol]float64
	// PnL and AssetPnLs are nil for a position that never activated (a
	// cancelled Limit order never accrued pnl).
	PnL       *float64
	AssetPnLs map[symbols.AssetSymbol]float64
}

func (p *ClosedPosition) GetID() symbols.PositionID { return p.ID }
func (p *ClosedPosition) GetOrder() *orders.Order { return p.Order }
func (p *ClosedPosition) GetOpenDate() time.Time { return p.OpenDate }
func (p *ClosedPosition) GetOpenAssetPrices() map[symbols.AssetSymbol]float64 {
	return p.OpenAssetPrices
}

// GetStatus reports Filled if the position ever activated, else Canceled
// (a Limit order closed before its desire price was reached).
func (p *ClosedPosition) GetStatus() Status {
	if p.ActivateDate != nil {
		return StatusFilled
	}
	return StatusCanceled
}
