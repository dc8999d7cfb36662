// Package calc holds the small set of pure numeric helpers shared by the
// position state machine and the wallet aggregator: margin/percent math and
// the fixed-precision rounding trio.
package calc

import (
	"math"

	"github.com/yourfin-enon/trading-sdk/symbols"
)

// MarginPercent returns (pnl + investAmount) / investAmount * 100.
func MarginPercent(investAmount, pnl float64) float64 {
	margin := pnl + investAmount
	return margin / investAmount * 100
}

// Percent returns number / fromNumber * 100.
func Percent(fromNumber, number float64) float64 {
	return number / fromNumber * 100
}

// TotalAmount sums each asset amount valued at its corresponding price.
// Panics if a price is missing — callers validate beforehand.
func TotalAmount(amounts map[symbols.AssetSymbol]float64, prices map[symbols.AssetSymbol]float64) float64 {
	var total float64
	for asset, amount := range amounts {
		price, ok := prices[asset]
		if !ok {
			panic("no price found for asset " + string(asset))
		}
		total += price * amount
	}
	return total
}

// Ceil rounds x up to precision decimal places.
func Ceil(x float64, precision int) float64 {
	y := math.Pow(10, float64(precision))
	return math.Ceil(x*y) / y
}

// Floor rounds x down to precision decimal places.
func Floor(x float64, precision int) float64 {
	y := math.Pow(10, float64(precision))
	return math.Floor(x*y) / y
}

// Round rounds x to the nearest value at precision decimal places.
func Round(x float64, precision int) float64 {
	y := math.Pow(10, float64(precision))
	return math.Round(x*y) / y
}
