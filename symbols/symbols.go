// Package symbols defines the compact, comparable key types shared across
// the positions monitor: asset and instrument symbols, wallet and position
// ids, and the stable sharding helper used to route a key to an engine shard.
package symbols

import (
	"strings"

	"github.com/google/uuid"
)

// AssetSymbol identifies a tradeable or estimation asset (e.g. "BTC", "USDT").
type AssetSymbol string

// InstrumentSymbol identifies an ordered asset pair, formed as base+quote
// (e.g. "BTCUSDT"). Instrument must always be built through Instrument below;
// ad-hoc concatenation elsewhere risks diverging from the canonical form.
type InstrumentSymbol string

// WalletID identifies a trader's wallet.
type WalletID string

// PositionID identifies a single position, unique across the cache.
type PositionID string

// Instrument builds the canonical InstrumentSymbol for an asset priced
// against a base (estimation) asset. This is the single source of truth for
// pairing an asset with a base; every other component must call this instead
// of concatenating strings itself.
func Instrument(asset, base AssetSymbol) InstrumentSymbol {
	return InstrumentSymbol(string(asset) + string(base))
}

// NewPositionID generates a fresh, globally unique position id.
func NewPositionID() PositionID {
	return PositionID(uuid.New().String())
}

// HasAssetPrefix reports whether the instrument is quoted starting with the
// given asset (e.g. "BTCUSDT" starts with "BTC"). Used to validate which
// side of a pair an asset price applies to before deriving it.
func (i InstrumentSymbol) HasAssetPrefix(asset AssetSymbol) bool {
	return strings.HasPrefix(string(i), string(asset))
}

// ShardIndex returns a stable shard index for id in [0, shardCount). The same
// id always maps to the same index for a fixed shardCount; distribution is
// approximately uniform across ids. Mirrors the byte-prefix hash used
// upstream for the equivalent routing decision.
func ShardIndex(id string, shardCount int) int {
	var result uint64
	b := []byte(id)
	if len(b) > 8 {
		b = b[:8]
	}
	for _, c := range b {
		result = (result << 8) | uint64(c)
	}
	return int(result % uint64(shardCount))
}
