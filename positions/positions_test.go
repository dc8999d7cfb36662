package positions

import (
	"math"
	"testing"
	"time"

	"github.com/yourfin-enon/trading-sdk/orders"
	"github.com/yourfin-enon/trading-sdk/quotes"
	"github.com/yourfin-enon/trading-sdk/symbols"
)

func almostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) <= epsilon
}

func buyOrder() *orders.Order {
	return &orders.Order{
		ID:                "test",
		TraderID:          "test",
		WalletID:          "wallet",
		Instrument:        "ATOMUSDT",
		BaseAsset:         "USDT",
		InvestAssets:      []orders.AssetAmount{{Symbol: "BTC", Amount: 100}},
		Leverage:          1,
		Side:              orders.Buy,
		StopOutPercent:    10,
		MarginCallPercent: 10,
	}
}

func TestCloseActivePositionMatchesScenario1(t *testing.T) {
	order := buyOrder()
	prices := map[symbols.AssetSymbol]float64{"BTC": 22300}
	openQuote := quotes.BidAsk{Instrument: "ATOMUSDT", Bid: 14.748, Ask: 14.748}

	position, err := Open(order, openQuote, prices)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	active, ok := position.(*ActivePosition)
	if !ok {
		t.Fatalf("expected Market order to open Active, got %T", position)
	}

	active.CurrentPrice = 14.75
	closed := active.Close(ClientCommand, -1)

	if closed.PnL == nil {
		t.Fatal("expected pnl to be set")
	}
	if !almostEqual(*closed.PnL, 302.41388662883173, 1e-6) {
		t.Errorf("pnl = %v, want ~302.4138866", *closed.PnL)
	}
	assetPnL, ok := closed.AssetPnLs["BTC"]
	if !ok {
		t.Fatal("expected BTC asset pnl")
	}
	if !almostEqual(assetPnL, 0.01356116083537362, 1e-9) {
		t.Errorf("asset pnl = %v, want ~0.01356116083537362", assetPnL)
	}
	if *closed.PnL == assetPnL {
		t.Errorf("scalar pnl and asset pnl should not be equal")
	}
}

func TestTakeProfitPriceRateSellCloses(t *testing.T) {
	order := &orders.Order{
		ID:                "test",
		TraderID:          "test",
		WalletID:          "wallet",
		Instrument:        "ATOMUSDT",
		BaseAsset:         "USDT",
		InvestAssets:      []orders.AssetAmount{{Symbol: "USDT", Amount: 100342}},
		Leverage:          1,
		Side:              orders.Sell,
		StopOutPercent:    90,
		MarginCallPercent: 70,
	}
	prices := map[symbols.AssetSymbol]float64{"USDT": 1.0}
	openQuote := quotes.BidAsk{Instrument: "ATOMUSDT", Bid: 13.815, Ask: 13.815}

	position, err := Open(order, openQuote, prices)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	active := position.(*ActivePosition)

	tp := orders.TakeProfitConfig{Unit: orders.PriceRateUnit, Value: 13.817}
	active.Order.TakeProfit = &tp
	active.CurrentPrice = 13.817

	result := active.TryClose(-1)
	closed, ok := result.(*ClosedPosition)
	if !ok {
		t.Fatalf("expected position to close, got %T", result)
	}
	if closed.CloseReason != TakeProfit {
		t.Errorf("close reason = %v, want TakeProfit", closed.CloseReason)
	}
}

func TestPendingActivationScenario(t *testing.T) {
	desire := 10.0
	order := buyOrder()
	order.DesirePrice = &desire

	position, err := Open(order, quotes.BidAsk{Instrument: "ATOMUSDT", Bid: 10.5, Ask: 10.5}, map[symbols.AssetSymbol]float64{"BTC": 22300})
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	pending, ok := position.(*PendingPosition)
	if !ok {
		t.Fatalf("expected Limit order above desire price to stay Pending, got %T", position)
	}

	pending.Update(quotes.BidAsk{Instrument: "ATOMUSDT", Bid: 9.9, Ask: 9.9})
	activated := pending.TryActivate()
	active, ok := activated.(*ActivePosition)
	if !ok {
		t.Fatalf("expected activation once desire price reached, got %T", activated)
	}
	if active.ActivatePrice != 9.9 {
		t.Errorf("ActivatePrice = %v, want 9.9", active.ActivatePrice)
	}
}

func TestStopOutPrecedenceOverStopLoss(t *testing.T) {
	order := buyOrder()
	order.StopOutPercent = 10
	sl := orders.StopLossConfig{Unit: orders.AssetAmountUnit, Value: 1}
	order.StopLoss = &sl

	position, err := Open(order, quotes.BidAsk{Instrument: "ATOMUSDT", Bid: 14.748, Ask: 14.748}, map[symbols.AssetSymbol]float64{"BTC": 22300})
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	active := position.(*ActivePosition)

	// Drive a heavy loss so both stop-loss and stop-out would trigger.
	active.CurrentPrice = active.ActivatePrice * 0.5
	active.CurrentAssetPrices["BTC"] = 22300

	reason, ok := active.DetermineCloseReason()
	if !ok {
		t.Fatal("expected a close reason")
	}
	if reason != StopOut {
		t.Errorf("close reason = %v, want StopOut (precedence)", reason)
	}
}

func TestTryCancelTopUpsAfterDelayAndRecovery(t *testing.T) {
	order := buyOrder()
	order.TopUpEnabled = true
	order.TopUpPercent = 5

	position, err := Open(order, quotes.BidAsk{Instrument: "ATOMUSDT", Bid: 100, Ask: 100}, map[symbols.AssetSymbol]float64{"BTC": 1})
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	active := position.(*ActivePosition)

	oldTopUp := TopUp{Assets: map[symbols.AssetSymbol]float64{"BTC": 10}, Date: time.Now().Add(-time.Hour)}
	active.AddTopUp(oldTopUp)
	active.CurrentPrice = active.ActivatePrice * 1.10 // 10% favorable move for Buy

	canceled := active.TryCancelTopUps(5, 30*time.Minute)
	if len(canceled) != 1 {
		t.Fatalf("expected 1 cancelled top-up, got %d", len(canceled))
	}
	if len(active.TopUps) != 0 {
		t.Errorf("expected top-ups slice to be empty after cancellation")
	}
}
