package orders

import (
	"testing"

	"github.com/yourfin-enon/trading-sdk/symbols"
)

func newTestOrder() *Order {
	return &Order{
		ID:                "o1",
		TraderID:          "t1",
		WalletID:          "w1",
		Instrument:        "ATOMUSDT",
		BaseAsset:         "USDT",
		InvestAssets:      []AssetAmount{{Symbol: "BTC", Amount: 100}},
		Leverage:          1,
		Side:              Buy,
		StopOutPercent:    10,
		MarginCallPercent: 10,
	}
}

func TestGetType(t *testing.T) {
	o := newTestOrder()
	if o.GetType() != Market {
		t.Fatalf("expected Market order without DesirePrice")
	}
	price := 10.0
	o.DesirePrice = &price
	if o.GetType() != Limit {
		t.Fatalf("expected Limit order with DesirePrice set")
	}
}

func TestGetInstruments(t *testing.T) {
	o := newTestOrder()
	got := o.GetInstruments()
	want := []symbols.InstrumentSymbol{"ATOMUSDT", "BTCUSDT"}
	if len(got) != len(want) {
		t.Fatalf("GetInstruments() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("GetInstruments()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestValidateAssetPricesMissing(t *testing.T) {
	o := newTestOrder()
	if err := o.ValidateAssetPrices(map[symbols.AssetSymbol]float64{}); err == nil {
		t.Fatal("expected error for missing BTC price")
	}
	if err := o.ValidateAssetPrices(map[symbols.AssetSymbol]float64{"BTC": 22300}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCalculateInvestAmount(t *testing.T) {
	o := newTestOrder()
	got := o.CalculateInvestAmount(map[symbols.AssetSymbol]float64{"BTC": 22300})
	want := 100.0 * 22300.0
	if got != want {
		t.Fatalf("CalculateInvestAmount() = %v, want %v", got, want)
	}
}

func TestTakeProfitPriceRateSell(t *testing.T) {
	tp := TakeProfitConfig{Value: 13.817, Unit: PriceRateUnit}
	if !tp.IsTriggered(0, 13.817, Sell) {
		t.Fatalf("expected take-profit triggered at matching price rate for Sell")
	}
	if tp.IsTriggered(0, 13.818, Sell) {
		t.Fatalf("did not expect take-profit triggered above target for Sell")
	}
}

func TestStopLossAssetAmount(t *testing.T) {
	sl := StopLossConfig{Value: 50, Unit: AssetAmountUnit}
	if !sl.IsTriggered(-50, 0, Buy) {
		t.Fatalf("expected stop-loss triggered at exact loss threshold")
	}
	if sl.IsTriggered(-49, 0, Buy) {
		t.Fatalf("did not expect stop-loss triggered below loss threshold")
	}
	if sl.IsTriggered(10, 0, Buy) {
		t.Fatalf("did not expect stop-loss triggered on positive pnl")
	}
}
