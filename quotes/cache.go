package quotes

import (
	"github.com/yourfin-enon/trading-sdk/orders"
	"github.com/yourfin-enon/trading-sdk/symbols"
)

// Cache is the last-quote-per-instrument store. It is not safe for
// concurrent use; callers own serialization the same way the positions
// monitor does (single-threaded per shard).
type Cache struct {
	byInstrument map[symbols.InstrumentSymbol]BidAsk
}

// NewCache creates an empty cache sized to capacity.
func NewCache(capacity int) *Cache {
	return &Cache{byInstrument: make(map[symbols.InstrumentSymbol]BidAsk, capacity)}
}

// Update inserts or in-place replaces the stored quote for its instrument.
func (c *Cache) Update(q BidAsk) {
	c.byInstrument[q.Instrument] = q
}

// Get returns the last known quote for instrument, if any.
func (c *Cache) Get(instrument symbols.InstrumentSymbol) (BidAsk, bool) {
	q, ok := c.byInstrument[instrument]
	return q, ok
}

// Find returns the quotes for each asset paired against base, skipping any
// asset with no cached quote.
func (c *Cache) Find(base symbols.AssetSymbol, assets []symbols.AssetSymbol) []BidAsk {
	result := make([]BidAsk, 0, len(assets))
	for _, asset := range assets {
		instrument := symbols.Instrument(asset, base)
		if q, ok := c.byInstrument[instrument]; ok {
			result = append(result, q)
		}
	}
	return result
}

// FindPrices values each of fromAssets in toAsset terms. An asset equal to
// toAsset always prices at 1.0. An asset with no cached to/from quote is
// omitted from the result rather than erroring — this mirrors a wallet
// valuation pass that can legitimately be missing a quote for an
// infrequently-traded asset.
func (c *Cache) FindPrices(toAsset symbols.AssetSymbol, fromAssets []symbols.AssetSymbol) []AssetPrice {
	prices := make([]AssetPrice, 0, len(fromAssets))
	for _, asset := range fromAssets {
		if asset == toAsset {
			prices = append(prices, AssetPrice{Symbol: asset, Price: 1.0})
			continue
		}
		instrument := symbols.Instrument(asset, toAsset)
		if q, ok := c.byInstrument[instrument]; ok {
			price := q.AssetPrice(asset, orders.Sell)
			prices = append(prices, AssetPrice{Symbol: asset, Price: price})
		}
	}
	return prices
}
