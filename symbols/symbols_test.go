package symbols

import "testing"

func TestInstrumentConcatenatesAssetAndBase(t *testing.T) {
	got := Instrument("BTC", "USDT")
	if got != "BTCUSDT" {
		t.Fatalf("Instrument(BTC, USDT) = %q, want BTCUSDT", got)
	}
}

func TestHasAssetPrefix(t *testing.T) {
	inst := InstrumentSymbol("BTCUSDT")
	if !inst.HasAssetPrefix("BTC") {
		t.Fatalf("expected BTCUSDT to have prefix BTC")
	}
	if inst.HasAssetPrefix("USDT") {
		t.Fatalf("did not expect BTCUSDT to have prefix USDT")
	}
}

func TestShardIndexStableAndInRange(t *testing.T) {
	ids := []string{"wallet-1", "wallet-2", "a-very-long-wallet-identifier"}
	for _, id := range ids {
		first := ShardIndex(id, 7)
		second := ShardIndex(id, 7)
		if first != second {
			t.Fatalf("ShardIndex(%q) not stable: %d != %d", id, first, second)
		}
		if first < 0 || first >= 7 {
			t.Fatalf("ShardIndex(%q) = %d out of range [0,7)", id, first)
		}
	}
}

func TestShardIndexDistributesAcrossShards(t *testing.T) {
	seen := make(map[int]bool)
	for i := 0; i < 50; i++ {
		id := NewPositionID()
		seen[ShardIndex(string(id), 4)] = true
	}
	if len(seen) < 2 {
		t.Fatalf("expected ids to spread across more than one shard, got %d distinct shards", len(seen))
	}
}

func TestDetectCategory(t *testing.T) {
	cases := map[InstrumentSymbol]Category{
		"EURUSD":  CategoryForexMajor,
		"BTCUSDT": CategoryCrypto,
		"XAUUSD":  CategoryMetals,
		"US30USD": CategoryIndices,
	}
	for instrument, want := range cases {
		if got := DetectCategory(instrument); got != want {
			t.Errorf("DetectCategory(%q) = %v, want %v", instrument, got, want)
		}
	}
}
