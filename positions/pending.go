package positions

import (
	"time"

	"github.com/yourfin-enon/trading-sdk/orders"
	"github.com/yourfin-enon/trading-sdk/quotes"
	"github.com/yourfin-enon/trading-sdk/symbols"
)

// PendingPosition is a Limit order waiting for its desire price to be
// reached before it activates.
type PendingPosition struct {
	ID                 symbols.PositionID
	Order              *orders.Order
	OpenDate           time.Time
	OpenAssetPrices    map[symbols.AssetSymbol]float64
	CurrentPrice       float64
	CurrentAssetPrices map[symbols.AssetSymbol]float64
	LastUpdateDate     time.Time
	// TotalInvestAssets is always empty for a Pending position; margin is
	// not reserved until activation.
	TotalInvestAssets map[symbols.AssetSymbol]float64
}

func intoPending(id symbols.PositionID, order *orders.Order, bidask quotes.BidAsk, assetPrices map[symbols.AssetSymbol]float64) *PendingPosition {
	now := time.Now()
	snapshot := snapshotAssetPrices(order, assetPrices)

	return &PendingPosition{
		ID:                 id,
		Order:              order,
		OpenDate:           now,
		OpenAssetPrices:    snapshot,
		CurrentAssetPrices: cloneAssetPrices(snapshot),
		CurrentPrice:       bidask.OpenPrice(order.Side),
		LastUpdateDate:     now,
		TotalInvestAssets:  map[symbols.AssetSymbol]float64{},
	}
}

func cloneAssetPrices(src map[symbols.AssetSymbol]float64) map[symbols.AssetSymbol]float64 {
	dst := make(map[symbols.AssetSymbol]float64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func (p *PendingPosition) GetID() symbols.PositionID { return p.ID }
func (p *PendingPosition) GetOrder() *orders.Order { return p.Order }
func (p *PendingPosition) GetOpenDate() time.Time { return p.OpenDate }
func (p *PendingPosition) GetOpenAssetPrices() map[symbols.AssetSymbol]float64 {
	return p.OpenAssetPrices
}
func (p *PendingPosition) GetStatus() Status { return StatusPending }

// Update refreshes CurrentPrice and CurrentAssetPrices from bidask, if it
// matches the traded instrument or one of the invested-asset instruments.
func (p *PendingPosition) Update(bidask quotes.BidAsk) {
	p.tryUpdatePrice(bidask)
	p.tryUpdateAssetPrice(bidask)
	p.LastUpdateDate = time.Now()
}

func (p *PendingPosition) tryUpdatePrice(bidask quotes.BidAsk) {
	if p.Order.Instrument == bidask.Instrument {
		p.CurrentPrice = bidask.OpenPrice(p.Order.Side)
	}
}

func (p *PendingPosition) tryUpdateAssetPrice(bidask quotes.BidAsk) {
	for _, a := range p.Order.InvestAssets {
		instrument := symbols.Instrument(a.Symbol, p.Order.BaseAsset)
		if instrument == bidask.Instrument {
			p.CurrentAssetPrices[a.Symbol] = bidask.AssetPrice(a.Symbol, orders.Sell)
		}
	}
}

// CanActivate reports whether the order's desire price has been reached.
// Panics if called on an order without a desire price — that is a
// programmer error, since only Limit orders produce a PendingPosition.
func (p *PendingPosition) CanActivate() bool {
	if p.Order.DesirePrice == nil {
		panic("pending position without desire price")
	}
	desired := *p.Order.DesirePrice

	if p.Order.Side == orders.Sell {
		return p.CurrentPrice >= desired
	}
	return p.CurrentPrice <= desired
}

// TryActivate returns an ActivePosition if CanActivate holds, else p itself.
func (p *PendingPosition) TryActivate() Position {
	if p.CanActivate() {
		return p.IntoActive()
	}
	return p
}

// IntoActive promotes p to an ActivePosition, snapshotting Activate* fields
// from the current ones. Panics if CanActivate does not hold.
func (p *PendingPosition) IntoActive() *ActivePosition {
	if !p.CanActivate() {
		panic("can't activate position: desire price not reached")
	}

	now := time.Now()

	return &ActivePosition{
		ID:                  p.ID,
		Order:               p.Order,
		OpenDate:            p.OpenDate,
		OpenAssetPrices:     p.OpenAssetPrices,
		ActivatePrice:       p.CurrentPrice,
		ActivateDate:        now,
		ActivateAssetPrices: cloneAssetPrices(p.CurrentAssetPrices),
		CurrentPrice:        p.CurrentPrice,
		CurrentAssetPrices:  p.CurrentAssetPrices,
		LastUpdateDate:      now,
		TopUps:              nil,
		CurrentPnL:          0,
		CurrentLossPercent:  0,
		PrevLossPercent:     0,
		TopUpLocked:         false,
		TotalInvestAssets:   investAssetsToMap(p.Order),
		BonusInvestAssets:   map[symbols.AssetSymbol]float64{},
	}
}

// Close closes a Pending position (e.g. an admin cancel before activation).
func (p *PendingPosition) Close(reason CloseReason) *ClosedPosition {
	return &ClosedPosition{
		ID:               p.ID,
		Order:            p.Order,
		OpenDate:         p.OpenDate,
		OpenAssetPrices:  p.OpenAssetPrices,
		ClosePrice:       p.CurrentPrice,
		CloseDate:        time.Now(),
		CloseReason:      reason,
		CloseAssetPrices: cloneAssetPrices(p.CurrentAssetPrices),
	}
}

func investAssetsToMap(order *orders.Order) map[symbols.AssetSymbol]float64 {
	m := make(map[symbols.AssetSymbol]float64, len(order.InvestAssets))
	for _, a := range order.InvestAssets {
		m[a.Symbol] = a.Amount
	}
	return m
}
