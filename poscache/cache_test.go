package poscache

import (
	"testing"

	"github.com/yourfin-enon/trading-sdk/orders"
	"github.com/yourfin-enon/trading-sdk/positions"
	"github.com/yourfin-enon/trading-sdk/quotes"
	"github.com/yourfin-enon/trading-sdk/symbols"
)

func testOrder(id string, walletID symbols.WalletID) *orders.Order {
	return &orders.Order{
		ID:                id,
		TraderID:          "trader",
		WalletID:          walletID,
		Instrument:        "ATOMUSDT",
		BaseAsset:         "USDT",
		InvestAssets:      []orders.AssetAmount{{Symbol: "USDT", Amount: 100}},
		Leverage:          1,
		Side:              orders.Buy,
		StopOutPercent:    10,
		MarginCallPercent: 10,
	}
}

func mustOpen(t *testing.T, id symbols.PositionID, order *orders.Order) positions.Position {
	t.Helper()
	p, err := positions.OpenWithID(id, order, quotes.BidAsk{Instrument: "ATOMUSDT", Bid: 10, Ask: 10}, map[symbols.AssetSymbol]float64{"USDT": 1})
	if err != nil {
		t.Fatalf("OpenWithID() error: %v", err)
	}
	return p
}

func TestAddIsIdempotent(t *testing.T) {
	c := New(8)
	order := testOrder("o1", "wallet-1")
	p := mustOpen(t, "p1", order)

	c.Add(p)
	c.Add(p)

	if c.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", c.Count())
	}
	if len(c.GetByWallet("wallet-1", 0)) != 1 {
		t.Fatalf("expected exactly one position for wallet-1")
	}
}

func TestRemoveIsInverseOfAdd(t *testing.T) {
	c := New(8)
	order := testOrder("o1", "wallet-1")
	p := mustOpen(t, "p1", order)

	c.Add(p)
	c.Remove(p.GetID())

	if c.Count() != 0 {
		t.Fatalf("Count() = %d, want 0 after remove", c.Count())
	}
	if _, ok := c.Get("p1"); ok {
		t.Fatalf("expected p1 to be gone from the cache")
	}
	if got := c.GetByWallet("wallet-1", 0); len(got) != 0 {
		t.Fatalf("expected no positions left for wallet-1, got %d", len(got))
	}
}

func TestGetByWalletNeverPanicsOnMissingWallet(t *testing.T) {
	c := New(8)
	got := c.GetByWallet("does-not-exist", 10)
	if got != nil {
		t.Fatalf("expected nil for missing wallet, got %v", got)
	}
}

func TestGetByWalletRespectsLimit(t *testing.T) {
	c := New(8)
	for i := 0; i < 5; i++ {
		order := testOrder("o", "wallet-1")
		id := symbols.PositionID("p" + string(rune('a'+i)))
		c.Add(mustOpen(t, id, order))
	}

	got := c.GetByWallet("wallet-1", 2)
	if len(got) != 2 {
		t.Fatalf("GetByWallet(limit=2) returned %d positions, want 2", len(got))
	}
}

func TestRemoveLockedIsNotThisCachesConcern(t *testing.T) {
	// poscache has no notion of locking — that lives in the monitor. This
	// test simply documents that Remove on this layer is unconditional.
	c := New(8)
	order := testOrder("o1", "wallet-1")
	p := mustOpen(t, "p1", order)
	c.Add(p)
	c.Remove(p.GetID())
	c.Remove(p.GetID()) // second remove is a no-op, not a panic
	if c.Count() != 0 {
		t.Fatalf("Count() = %d, want 0", c.Count())
	}
}
