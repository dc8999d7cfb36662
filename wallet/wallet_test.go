package wallet

import (
	"math"
	"testing"

	"github.com/yourfin-enon/trading-sdk/quotes"
	"github.com/yourfin-enon/trading-sdk/symbols"
)

func almostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) <= epsilon
}

func TestAddBalanceRejectsWrongInstrument(t *testing.T) {
	w := New("w1", "trader", "USDT", 12)
	err := w.AddBalance(Balance{ID: "b1", Asset: "BTC", Amount: 1}, quotes.BidAsk{Instrument: "ETHUSDT", Bid: 1, Ask: 1})
	if err == nil {
		t.Fatal("expected an error for a balance priced against the wrong instrument")
	}
}

func TestAddBalanceValuesUnlockedTotal(t *testing.T) {
	w := New("w1", "trader", "USDT", 12)
	err := w.AddBalance(Balance{ID: "b1", Asset: "BTC", Amount: 2}, quotes.BidAsk{Instrument: "BTCUSDT", Bid: 20000, Ask: 20001})
	if err != nil {
		t.Fatalf("AddBalance() error: %v", err)
	}
	// Sell-side asset price is Ask for a BTCUSDT quote valued in USDT.
	if !almostEqual(w.TotalUnlockedBalance, 2*20001, 1e-9) {
		t.Errorf("TotalUnlockedBalance = %v, want %v", w.TotalUnlockedBalance, 2*20001.0)
	}
}

func TestAddBalanceLockedDoesNotCountTowardUnlockedTotal(t *testing.T) {
	w := New("w1", "trader", "USDT", 12)
	_ = w.AddBalance(Balance{ID: "b1", Asset: "BTC", Amount: 2, Locked: true}, quotes.BidAsk{Instrument: "BTCUSDT", Bid: 20000, Ask: 20001})
	if w.TotalUnlockedBalance != 0 {
		t.Errorf("TotalUnlockedBalance = %v, want 0 for a locked balance", w.TotalUnlockedBalance)
	}
}

func TestUpdateBalanceUsesAdditiveDelta(t *testing.T) {
	// Regression for the suspected bug: one source variant multiplied
	// TotalUnlockedBalance by the new estimate instead of applying the
	// amount delta. This test pins the additive form.
	w := New("w1", "trader", "USDT", 12)
	_ = w.AddBalance(Balance{ID: "b1", Asset: "BTC", Amount: 2}, quotes.BidAsk{Instrument: "BTCUSDT", Bid: 20000, Ask: 20000})

	if err := w.UpdateBalance(Balance{ID: "b1", Asset: "BTC", Amount: 3}); err != nil {
		t.Fatalf("UpdateBalance() error: %v", err)
	}
	if !almostEqual(w.TotalUnlockedBalance, 3*20000, 1e-9) {
		t.Errorf("TotalUnlockedBalance = %v, want %v", w.TotalUnlockedBalance, 3*20000.0)
	}
}

func TestSetBalanceLockIsIdempotent(t *testing.T) {
	w := New("w1", "trader", "USDT", 12)
	_ = w.AddBalance(Balance{ID: "b1", Asset: "BTC", Amount: 1}, quotes.BidAsk{Instrument: "BTCUSDT", Bid: 10000, Ask: 10000})

	if err := w.SetBalanceLock("b1", true); err != nil {
		t.Fatalf("SetBalanceLock() error: %v", err)
	}
	if w.TotalUnlockedBalance != 0 {
		t.Errorf("TotalUnlockedBalance = %v, want 0 after locking", w.TotalUnlockedBalance)
	}
	// Locking an already-locked balance is a no-op, not a double deduction.
	if err := w.SetBalanceLock("b1", true); err != nil {
		t.Fatalf("SetBalanceLock() error: %v", err)
	}
	if w.TotalUnlockedBalance != 0 {
		t.Errorf("TotalUnlockedBalance = %v, want 0 (idempotent lock)", w.TotalUnlockedBalance)
	}

	if err := w.SetBalanceLock("b1", false); err != nil {
		t.Fatalf("SetBalanceLock() error: %v", err)
	}
	if !almostEqual(w.TotalUnlockedBalance, 10000, 1e-9) {
		t.Errorf("TotalUnlockedBalance = %v, want 10000 after unlock", w.TotalUnlockedBalance)
	}
}

func TestSetTopUpReservedIsInsertOrUpdate(t *testing.T) {
	// Regression for the suspected bug: one source variant only updated an
	// existing entry, silently dropping a first-time reserve.
	w := New("w1", "trader", "USDT", 12)
	w.pricesByAsset["BTC"] = 20000

	w.SetTopUpReserved("BTCUSDT", map[symbols.AssetSymbol]float64{"BTC": 1})
	if !almostEqual(w.TotalTopUpReservedBalance, 20000, 1e-9) {
		t.Fatalf("TotalTopUpReservedBalance = %v, want 20000 on first reserve", w.TotalTopUpReservedBalance)
	}

	w.SetTopUpReserved("BTCUSDT", map[symbols.AssetSymbol]float64{"BTC": 2})
	if !almostEqual(w.TotalTopUpReservedBalance, 40000, 1e-9) {
		t.Fatalf("TotalTopUpReservedBalance = %v, want 40000 after update", w.TotalTopUpReservedBalance)
	}
}

func TestSetTopUpReservedSkipsMissingPrice(t *testing.T) {
	w := New("w1", "trader", "USDT", 12)
	w.SetTopUpReserved("ETHUSDT", map[symbols.AssetSymbol]float64{"ETH": 5})
	if w.TotalTopUpReservedBalance != 0 {
		t.Fatalf("TotalTopUpReservedBalance = %v, want 0 for an asset with no known price", w.TotalTopUpReservedBalance)
	}
}

func TestWalletMarginCallEdgeTriggered(t *testing.T) {
	w := New("w1", "trader", "USDT", 12)
	w.TotalUnlockedBalance = 1000

	w.SetTopUpPnL("ATOMUSDT", -100)
	w.UpdateLoss()
	if w.CurrentLossPercent != 10 {
		t.Fatalf("CurrentLossPercent = %v, want 10", w.CurrentLossPercent)
	}
	if w.IsMarginCall() {
		t.Fatal("did not expect margin call below threshold")
	}

	w.SetTopUpPnL("ATOMUSDT", -150)
	w.UpdateLoss()
	if w.CurrentLossPercent != 15 {
		t.Fatalf("CurrentLossPercent = %v, want 15", w.CurrentLossPercent)
	}
	if !w.IsMarginCall() {
		t.Fatal("expected margin call edge on crossing 12% from below")
	}

	// Next tick: still above threshold — no re-trigger.
	w.SetTopUpPnL("ATOMUSDT", -160)
	w.UpdateLoss()
	if w.IsMarginCall() {
		t.Fatal("did not expect a repeat margin call while staying above threshold")
	}

	// Drop back under, then cross again — re-armed.
	w.SetTopUpPnL("ATOMUSDT", -80)
	w.UpdateLoss()
	if w.IsMarginCall() {
		t.Fatal("did not expect margin call while below threshold")
	}

	w.SetTopUpPnL("ATOMUSDT", -150)
	w.UpdateLoss()
	if !w.IsMarginCall() {
		t.Fatal("expected margin call to re-arm after dropping below threshold and crossing again")
	}
}

func TestUpdatePriceRevaluesMatchingBalanceOnly(t *testing.T) {
	w := New("w1", "trader", "USDT", 12)
	_ = w.AddBalance(Balance{ID: "b1", Asset: "BTC", Amount: 1}, quotes.BidAsk{Instrument: "BTCUSDT", Bid: 20000, Ask: 20000})

	w.UpdatePrice(quotes.BidAsk{Instrument: "ETHUSDT", Bid: 1500, Ask: 1500})
	if !almostEqual(w.TotalUnlockedBalance, 20000, 1e-9) {
		t.Fatalf("unrelated instrument tick should not move the balance, got %v", w.TotalUnlockedBalance)
	}

	w.UpdatePrice(quotes.BidAsk{Instrument: "BTCUSDT", Bid: 21000, Ask: 21000})
	if !almostEqual(w.TotalUnlockedBalance, 21000, 1e-9) {
		t.Fatalf("TotalUnlockedBalance = %v, want 21000 after price update", w.TotalUnlockedBalance)
	}
}
