package positions

import (
	"time"

	"github.com/yourfin-enon/trading-sdk/calc"
	"github.com/yourfin-enon/trading-sdk/orders"
	"github.com/yourfin-enon/trading-sdk/quotes"
	"github.com/yourfin-enon/trading-sdk/symbols"
)

// TopUp is one operator-approved addition of margin to an Active position.
type TopUp struct {
	Assets map[symbols.AssetSymbol]float64
	Date   time.Time
}

// CanceledTopUp records a TopUp that was cancelled after the price recovered
// favorably and the top-up had aged past the configured delay.
type CanceledTopUp struct {
	TopUp TopUp
}

func intoActive(id symbols.PositionID, order *orders.Order, bidask quotes.BidAsk, assetPrices map[symbols.AssetSymbol]float64) *ActivePosition {
	now := time.Now()
	snapshot := snapshotAssetPrices(order, assetPrices)

	return &ActivePosition{
		ID:                  id,
		Order:               order,
		OpenDate:            now,
		OpenAssetPrices:     snapshot,
		ActivatePrice:       bidask.OpenPrice(order.Side),
		ActivateDate:        now,
		ActivateAssetPrices: cloneAssetPrices(snapshot),
		CurrentPrice:        bidask.ClosePrice(order.Side),
		CurrentAssetPrices:  cloneAssetPrices(snapshot),
		LastUpdateDate:      now,
		TopUps:              nil,
		CurrentPnL:          0,
		CurrentLossPercent:  0,
		PrevLossPercent:     0,
		TopUpLocked:         false,
		TotalInvestAssets:   investAssetsToMap(order),
		BonusInvestAssets:   map[symbols.AssetSymbol]float64{},
	}
}

// ActivePosition is a live position accruing unrealized P&L against market
// prices.
type ActivePosition struct {
	ID                  symbols.PositionID
	Order               *orders.Order
	OpenDate            time.Time
	OpenAssetPrices     map[symbols.AssetSymbol]float64
	ActivatePrice       float64
	ActivateDate        time.Time
	ActivateAssetPrices map[symbols.AssetSymbol]float64
	CurrentPrice        float64
	CurrentAssetPrices  map[symbols.AssetSymbol]float64
	LastUpdateDate      time.Time

	TopUps             []TopUp
	CurrentPnL         float64
	CurrentLossPercent float64
	PrevLossPercent    float64
	TopUpLocked        bool
	TotalInvestAssets  map[symbols.AssetSymbol]float64
	BonusInvestAssets  map[symbols.AssetSymbol]float64
}

func (p *ActivePosition) GetID() symbols.PositionID { return p.ID }
func (p *ActivePosition) GetOrder() *orders.Order { return p.Order }
func (p *ActivePosition) GetOpenDate() time.Time { return p.OpenDate }
func (p *ActivePosition) GetOpenAssetPrices() map[symbols.AssetSymbol]float64 {
	return p.OpenAssetPrices
}
func (p *ActivePosition) GetStatus() Status { return StatusActive }

// Update refreshes prices, then recomputes pnl and loss-percent.
func (p *ActivePosition) Update(bidask quotes.BidAsk) {
	p.tryUpdatePrice(bidask)
	p.tryUpdateAssetPrice(bidask)
	p.recompute()
	p.LastUpdateDate = time.Now()
}

func (p *ActivePosition) tryUpdatePrice(bidask quotes.BidAsk) {
	if p.Order.Instrument == bidask.Instrument {
		p.CurrentPrice = bidask.ClosePrice(p.Order.Side)
	}
}

func (p *ActivePosition) tryUpdateAssetPrice(bidask quotes.BidAsk) {
	for _, a := range p.Order.InvestAssets {
		instrument := symbols.Instrument(a.Symbol, p.Order.BaseAsset)
		if instrument == bidask.Instrument {
			p.CurrentAssetPrices[a.Symbol] = bidask.AssetPrice(a.Symbol, orders.Sell)
		}
	}
}

func (p *ActivePosition) investAmount() float64 {
	return calc.TotalAmount(investAssetsToMap(p.Order), p.CurrentAssetPrices)
}

// CalculatePnL returns the pnl for investAmount at the current price versus
// the activate price.
func (p *ActivePosition) CalculatePnL(investAmount float64) float64 {
	volume := p.Order.CalculateVolume(investAmount)
	ratio := p.CurrentPrice/p.ActivatePrice - 1.0
	if p.Order.Side == orders.Sell {
		return -ratio * volume
	}
	return ratio * volume
}

func (p *ActivePosition) recompute() {
	investAmount := p.investAmount()
	pnl := p.CalculatePnL(investAmount)
	marginPercent := calc.MarginPercent(investAmount, pnl)

	p.CurrentPnL = pnl
	p.PrevLossPercent = p.CurrentLossPercent
	lossPercent := 100 - marginPercent
	if lossPercent < 0 {
		lossPercent = 0
	}
	p.CurrentLossPercent = lossPercent
}

// IsMarginCall reports whether the position-level margin call threshold has
// been reached. Re-evaluated and re-emitted every tick it holds; the caller
// does not need to debounce at the position level.
func (p *ActivePosition) IsMarginCall() bool {
	investAmount := p.investAmount()
	pnl := p.CalculatePnL(investAmount)
	marginPercent := calc.MarginPercent(investAmount, pnl)
	return 100-marginPercent >= p.Order.MarginCallPercent
}

func (p *ActivePosition) isStopOut() bool {
	investAmount := p.investAmount()
	pnl := p.CalculatePnL(investAmount)
	marginPercent := calc.MarginPercent(investAmount, pnl)
	return 100-marginPercent >= p.Order.StopOutPercent
}

func (p *ActivePosition) isStopLoss() bool {
	if p.Order.StopLoss == nil {
		return false
	}
	investAmount := p.investAmount()
	pnl := p.CalculatePnL(investAmount)
	return p.Order.StopLoss.IsTriggered(pnl, p.CurrentPrice, p.Order.Side)
}

func (p *ActivePosition) isTakeProfit() bool {
	if p.Order.TakeProfit == nil {
		return false
	}
	investAmount := p.investAmount()
	pnl := p.CalculatePnL(investAmount)
	return p.Order.TakeProfit.IsTriggered(pnl, p.CurrentPrice, p.Order.Side)
}

// DetermineCloseReason evaluates StopOut, StopLoss, TakeProfit in that
// order; the first match wins. Returns false if none apply (the position
// stays open absent an external ClientCommand/AdminCommand).
func (p *ActivePosition) DetermineCloseReason() (CloseReason, bool) {
	if p.isStopOut() {
		return StopOut, true
	}
	if p.isStopLoss() {
		return StopLoss, true
	}
	if p.isTakeProfit() {
		return TakeProfit, true
	}
	return 0, false
}

// TryClose closes the position if DetermineCloseReason finds a reason,
// returning the resulting Position (Closed) or p itself (Active) when none
// applies.
func (p *ActivePosition) TryClose(pnlAccuracy int) Position {
	reason, ok := p.DetermineCloseReason()
	if !ok {
		return p
	}
	return p.Close(reason, pnlAccuracy)
}

// CalculateAssetPnLs returns the per-asset pnl, each clamped below at
// -investAssets[a] (the isolated-trade floor: a single asset cannot lose
// more than what was posted against it).
func (p *ActivePosition) CalculateAssetPnLs() map[symbols.AssetSymbol]float64 {
	result := make(map[symbols.AssetSymbol]float64, len(p.Order.InvestAssets))
	for _, a := range p.Order.InvestAssets {
		pnl := p.CalculatePnL(a.Amount)
		maxLoss := -a.Amount
		if pnl < maxLoss {
			result[a.Symbol] = maxLoss
		} else {
			result[a.Symbol] = pnl
		}
	}
	return result
}

// Close finalizes the position, computing asset_pnls and the scalar pnl
// valued at CurrentAssetPrices. If pnlAccuracy is non-negative, the scalar
// pnl is rounded to that many decimal places.
func (p *ActivePosition) Close(reason CloseReason, pnlAccuracy int) *ClosedPosition {
	assetPnLs := p.CalculateAssetPnLs()
	pnl := calc.TotalAmount(assetPnLs, p.CurrentAssetPrices)
	if pnlAccuracy >= 0 {
		pnl = calc.Round(pnl, pnlAccuracy)
	}

	activatePrice := p.ActivatePrice
	activateDate := p.ActivateDate

	return &ClosedPosition{
		ID:                  p.ID,
		Order:               p.Order,
		OpenDate:            p.OpenDate,
		OpenAssetPrices:     p.OpenAssetPrices,
		ActivatePrice:       &activatePrice,
		ActivateDate:        &activateDate,
		ActivateAssetPrices: p.ActivateAssetPrices,
		ClosePrice:          p.CurrentPrice,
		CloseDate:           time.Now(),
		CloseReason:         reason,
		CloseAssetPrices:    cloneAssetPrices(p.CurrentAssetPrices),
		PnL:                 &pnl,
		AssetPnLs:           assetPnLs,
	}
}

// IsTopUp reports whether the position has entered the configured top-up
// loss band and is not already locked awaiting one.
func (p *ActivePosition) IsTopUp() bool {
	return p.Order.TopUpEnabled && !p.TopUpLocked && p.CurrentLossPercent >= p.Order.TopUpPercent
}

// AddTopUp appends an operator-approved top-up, folding its assets into
// TotalInvestAssets, and clears the top-up lock.
func (p *ActivePosition) AddTopUp(topUp TopUp) {
	p.TopUps = append(p.TopUps, topUp)
	for asset, amount := range topUp.Assets {
		p.TotalInvestAssets[asset] += amount
	}
	p.TopUpLocked = false
}

// TryCancelTopUps cancels top-ups that have aged past cancelDelay once the
// price has moved favorably by at least priceChangePercent since the
// top-up's activation reference (ActivatePrice). Cancelled top-ups are
// removed from TopUps and returned; TotalInvestAssets is unwound to match.
func (p *ActivePosition) TryCancelTopUps(priceChangePercent float64, cancelDelay time.Duration) []CanceledTopUp {
	if len(p.TopUps) == 0 {
		return nil
	}

	favorableMove := calc.Percent(p.ActivatePrice, p.CurrentPrice-p.ActivatePrice)
	if p.Order.Side == orders.Sell {
		favorableMove = -favorableMove
	}
	if favorableMove < priceChangePercent {
		return nil
	}

	now := time.Now()
	var canceled []CanceledTopUp
	remaining := p.TopUps[:0]
	for _, t := range p.TopUps {
		if now.Sub(t.Date) >= cancelDelay {
			canceled = append(canceled, CanceledTopUp{TopUp: t})
			for asset, amount := range t.Assets {
				p.TotalInvestAssets[asset] -= amount
			}
			continue
		}
		remaining = append(remaining, t)
	}
	p.TopUps = remaining

	return canceled
}
