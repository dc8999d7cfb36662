// Package orders defines the immutable trading intent (Order) that a
// position is opened from, along with its take-profit/stop-loss
// configuration and side-dependent trigger logic.
package orders

import (
	"fmt"
	"time"

	"github.com/yourfin-enon/trading-sdk/symbols"
)

// Side is the direction of a trade.
type Side int

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Buy {
		return "Buy"
	}
	return "Sell"
}

// Type distinguishes a market order (fills immediately) from a limit order
// (waits for DesirePrice to be reached).
type Type int

const (
	Market Type = iota
	Limit
)

// AssetAmount pairs an invested asset with the amount posted as margin.
type AssetAmount struct {
	Symbol symbols.AssetSymbol
	Amount float64
}

// AutoClosePositionUnit selects how a TakeProfitConfig/StopLossConfig value
// is interpreted.
type AutoClosePositionUnit int

const (
	// AssetAmountUnit interprets Value as a pnl threshold in invest-asset terms.
	AssetAmountUnit AutoClosePositionUnit = iota
	// PriceRateUnit interprets Value as a price level.
	PriceRateUnit
)

// TakeProfitConfig closes a position once it has reached a target profit.
type TakeProfitConfig struct {
	Value float64
	Unit  AutoClosePositionUnit
}

// IsTriggered reports whether the configured take-profit has been reached.
func (c TakeProfitConfig) IsTriggered(pnl, closePrice float64, side Side) bool {
	switch c.Unit {
	case AssetAmountUnit:
		return pnl >= c.Value
	case PriceRateUnit:
		if side == Buy {
			return c.Value <= closePrice
		}
		return c.Value >= closePrice
	default:
		return false
	}
}

// StopLossConfig closes a position once it has reached a tolerated loss.
type StopLossConfig struct {
	Value float64
	Unit  AutoClosePositionUnit
}

// IsTriggered reports whether the configured stop-loss has been reached.
func (c StopLossConfig) IsTriggered(pnl, closePrice float64, side Side) bool {
	switch c.Unit {
	case AssetAmountUnit:
		return pnl < 0 && -pnl >= c.Value
	case PriceRateUnit:
		if side == Buy {
			return c.Value >= closePrice
		}
		return c.Value <= closePrice
	default:
		return false
	}
}

// Order is immutable trading intent: once constructed, none of its fields
// are mutated in place. TP/SL configuration is the one exception: a caller
// may replace the whole TakeProfit or StopLoss config value.
type Order struct {
	ID                string
	TraderID          string
	WalletID          symbols.WalletID
	Instrument        symbols.InstrumentSymbol
	BaseAsset         symbols.AssetSymbol
	InvestAssets      []AssetAmount
	Leverage          float64
	CreatedDate       time.Time
	Side              Side
	TakeProfit        *TakeProfitConfig
	StopLoss          *StopLossConfig
	StopOutPercent    float64
	MarginCallPercent float64
	TopUpEnabled      bool
	TopUpPercent      float64
	FundingFeePeriod  *time.Duration
	DesirePrice       *float64
}

// GetType reports Market or Limit based on whether DesirePrice is set.
func (o *Order) GetType() Type {
	if o.DesirePrice != nil {
		return Limit
	}
	return Market
}

// GetInvestInstruments returns the instrument formed by pairing each
// invested asset with the order's base asset (not including the traded
// instrument itself).
func (o *Order) GetInvestInstruments() []symbols.InstrumentSymbol {
	result := make([]symbols.InstrumentSymbol, 0, len(o.InvestAssets))
	for _, a := range o.InvestAssets {
		result = append(result, symbols.Instrument(a.Symbol, o.BaseAsset))
	}
	return result
}

// GetInstruments returns every instrument this order must be indexed under:
// the traded instrument plus one per invested asset paired with the base
// asset.
func (o *Order) GetInstruments() []symbols.InstrumentSymbol {
	result := make([]symbols.InstrumentSymbol, 0, len(o.InvestAssets)+1)
	result = append(result, o.Instrument)
	result = append(result, o.GetInvestInstruments()...)
	return result
}

// InvestAssetAmount returns the posted amount for asset and whether it is present.
func (o *Order) InvestAssetAmount(asset symbols.AssetSymbol) (float64, bool) {
	for _, a := range o.InvestAssets {
		if a.Symbol == asset {
			return a.Amount, true
		}
	}
	return 0, false
}

// ValidateAssetPrices checks that every invested asset has a price entry,
// returning an error naming the first missing one. This is an invalid-input
// class failure, recoverable by the caller.
func (o *Order) ValidateAssetPrices(assetPrices map[symbols.AssetSymbol]float64) error {
	for _, a := range o.InvestAssets {
		if _, ok := assetPrices[a.Symbol]; !ok {
			return fmt.Errorf("no price found for asset %s", a.Symbol)
		}
	}
	return nil
}

// CalculateVolume scales an invest amount by leverage.
func (o *Order) CalculateVolume(investAmount float64) float64 {
	return investAmount * o.Leverage
}

// CalculateInvestAmount sums each invested asset valued at assetPrices.
// Panics if a price is missing — callers must validate first via
// ValidateAssetPrices.
func (o *Order) CalculateInvestAmount(assetPrices map[symbols.AssetSymbol]float64) float64 {
	var total float64
	for _, a := range o.InvestAssets {
		price, ok := assetPrices[a.Symbol]
		if !ok {
			panic(fmt.Sprintf("no price found for asset %s", a.Symbol))
		}
		total += price * a.Amount
	}
	return total
}
