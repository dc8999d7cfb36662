// Package monitor binds the positions cache, the wallet aggregator and the
// instrument/wallet secondary indexes into the hot path: Update(quote)
// visits every position touched by a tick, drives its state machine, keeps
// wallet-level cross-margin figures in step, and returns the resulting
// event batch for the caller to dispatch.
package monitor

import (
	"fmt"
	"time"

	"github.com/yourfin-enon/trading-sdk/logging"
	"github.com/yourfin-enon/trading-sdk/poscache"
	"github.com/yourfin-enon/trading-sdk/positions"
	"github.com/yourfin-enon/trading-sdk/quotes"
	"github.com/yourfin-enon/trading-sdk/symbols"
	"github.com/yourfin-enon/trading-sdk/wallet"
)

// idSet is the small set type used for both instrument->position-ids and
// instrument->wallet-ids secondary indexes.
type idSet[T comparable] map[T]struct{}

// Monitor is the per-shard owner of every index this package describes. It
// is single-threaded cooperative: a caller must run Update to completion
// before issuing the next one, matching the engine's concurrency model —
// parallelism is delegated to sharding one level up, not to locking here.
type Monitor struct {
	cache *poscache.Cache

	idsByInstrument       map[symbols.InstrumentSymbol]idSet[symbols.PositionID]
	walletIDsByInstrument map[symbols.InstrumentSymbol]idSet[symbols.WalletID]
	lockedIDs             idSet[symbols.PositionID]
	wallets               map[symbols.WalletID]*wallet.Wallet

	cancelTopUpDelay              time.Duration
	cancelTopUpPriceChangePercent float64
	pnlAccuracy                   int
	walletMonitoringEnabled       bool

	// CanReserve gates Pending->Active promotion once a Limit order's
	// desire price has been reached: the external margin-reservation
	// workflow is out of scope (§1), so this defaults to always-reservable.
	// Set it to model a reservation step that can say "not yet".
	CanReserve func(*positions.PendingPosition) bool

	// Log, when set, receives diagnostics from the update loop — currently
	// only dangling index entries being dropped. Nil disables logging.
	Log *logging.Logger

	// Reused-allocation scratch, cleared (capacity retained) at the tail
	// of every Update.
	topUpPnLsByWallet     map[symbols.WalletID]float64
	topUpReservedByWallet map[symbols.WalletID]map[symbols.AssetSymbol]float64

	events []Event
}

// New creates an empty Monitor. capacity sizes the positions cache; it is a
// hint, not a hard limit.
func New(capacity int, cancelTopUpDelay time.Duration, cancelTopUpPriceChangePercent float64, pnlAccuracy int, walletMonitoringEnabled bool) *Monitor {
	return &Monitor{
		cache: poscache.New(capacity),

		idsByInstrument:       make(map[symbols.InstrumentSymbol]idSet[symbols.PositionID]),
		walletIDsByInstrument: make(map[symbols.InstrumentSymbol]idSet[symbols.WalletID]),
		lockedIDs:             make(idSet[symbols.PositionID]),
		wallets:               make(map[symbols.WalletID]*wallet.Wallet),

		cancelTopUpDelay:              cancelTopUpDelay,
		cancelTopUpPriceChangePercent: cancelTopUpPriceChangePercent,
		pnlAccuracy:                   pnlAccuracy,
		walletMonitoringEnabled:       walletMonitoringEnabled,

		CanReserve: func(*positions.PendingPosition) bool { return true },

		topUpPnLsByWallet:     make(map[symbols.WalletID]float64),
		topUpReservedByWallet: make(map[symbols.WalletID]map[symbols.AssetSymbol]float64),

		events: make([]Event, 0, 16),
	}
}

// Count returns the number of positions currently cached.
func (m *Monitor) Count() int {
	return m.cache.Count()
}

// Add indexes position on every instrument its order touches and inserts
// it into the positions cache.
func (m *Monitor) Add(p positions.Position) {
	id := p.GetID()
	for _, instrument := range p.GetOrder().GetInstruments() {
		m.indexPosition(instrument, id)
	}
	m.cache.Add(p)
}

func (m *Monitor) indexPosition(instrument symbols.InstrumentSymbol, id symbols.PositionID) {
	set, ok := m.idsByInstrument[instrument]
	if !ok {
		set = make(idSet[symbols.PositionID])
		m.idsByInstrument[instrument] = set
	}
	set[id] = struct{}{}
}

func (m *Monitor) unindexPosition(instrument symbols.InstrumentSymbol, id symbols.PositionID) {
	set, ok := m.idsByInstrument[instrument]
	if !ok {
		return
	}
	delete(set, id)
	if len(set) == 0 {
		delete(m.idsByInstrument, instrument)
	}
}

// AddWallet indexes wallet on every instrument any of its balances are
// priced against, and inserts it into the wallets table.
func (m *Monitor) AddWallet(w *wallet.Wallet) {
	for _, instrument := range w.Instruments() {
		set, ok := m.walletIDsByInstrument[instrument]
		if !ok {
			set = make(idSet[symbols.WalletID])
			m.walletIDsByInstrument[instrument] = set
		}
		set[w.ID] = struct{}{}
	}
	m.wallets[w.ID] = w
}

func (m *Monitor) unindexWallet(w *wallet.Wallet) {
	for _, instrument := range w.Instruments() {
		set, ok := m.walletIDsByInstrument[instrument]
		if !ok {
			continue
		}
		delete(set, w.ID)
		if len(set) == 0 {
			delete(m.walletIDsByInstrument, instrument)
		}
	}
	delete(m.wallets, w.ID)
}

// GetWalletMut returns the stored wallet for direct mutation, if present.
func (m *Monitor) GetWalletMut(id symbols.WalletID) (*wallet.Wallet, bool) {
	w, ok := m.wallets[id]
	return w, ok
}

// ContainsWallet reports whether id is currently tracked.
func (m *Monitor) ContainsWallet(id symbols.WalletID) bool {
	_, ok := m.wallets[id]
	return ok
}

// UpdateWallet mutates the named wallet's balance entry and returns a copy
// of the applied balance on success. A wallet not present is a silent
// no-op, returning ok=false.
func (m *Monitor) UpdateWallet(walletID symbols.WalletID, balance wallet.Balance) (wallet.Balance, bool) {
	w, ok := m.wallets[walletID]
	if !ok {
		return wallet.Balance{}, false
	}
	if err := w.UpdateBalance(balance); err != nil {
		return wallet.Balance{}, false
	}
	return balance, true
}

// GetByWalletID returns up to limit positions owned by walletID.
func (m *Monitor) GetByWalletID(walletID symbols.WalletID, limit int) []positions.Position {
	return m.cache.GetByWallet(walletID, limit)
}

// GetMut returns the cached position for id, if present.
func (m *Monitor) GetMut(id symbols.PositionID) (positions.Position, bool) {
	return m.cache.Get(id)
}

// Remove deletes id from the cache and every instrument index. It refuses
// (returns false, a silent no-op) while id is locked. If the removed
// position was Active and its wallet still has other open positions, the
// wallet's aggregated pnl is corrected via DeductTopUpPnL; otherwise the
// wallet is evicted entirely.
func (m *Monitor) Remove(id symbols.PositionID) bool {
	if _, locked := m.lockedIDs[id]; locked {
		return false
	}
	p, ok := m.cache.Get(id)
	if !ok {
		return false
	}

	m.evict(p)
	return true
}

// evict removes p from the cache and every instrument index, adjusting the
// owning wallet's bookkeeping if wallet monitoring is enabled.
func (m *Monitor) evict(p positions.Position) {
	order := p.GetOrder()
	id := p.GetID()

	for _, instrument := range order.GetInstruments() {
		m.unindexPosition(instrument, id)
	}
	m.cache.Remove(id)

	if !m.walletMonitoringEnabled {
		return
	}
	active, wasActive := p.(*positions.ActivePosition)
	w, ok := m.wallets[order.WalletID]
	if !ok {
		return
	}
	if m.cache.WalletPositionCount(order.WalletID) > 0 {
		if wasActive {
			w.DeductTopUpPnL(order.Instrument, active.CurrentPnL)
		}
		return
	}
	m.unindexWallet(w)
}

// AddTopUp routes topUp into the Active position identified by positionID.
// It rejects a Closed or Pending position, and an unknown id, as an
// invalid-input error.
func (m *Monitor) AddTopUp(positionID symbols.PositionID, topUp positions.TopUp) error {
	p, ok := m.cache.Get(positionID)
	if !ok {
		return fmt.Errorf("no position found with id %s", positionID)
	}
	active, ok := p.(*positions.ActivePosition)
	if !ok {
		return fmt.Errorf("position %s is not active", positionID)
	}
	active.AddTopUp(topUp)
	return nil
}

// Unlock releases id from locked_ids. The caller is expected to have
// already persisted whatever state the lock was protecting.
func (m *Monitor) Unlock(id symbols.PositionID) {
	delete(m.lockedIDs, id)
}

// IsLocked reports whether id is currently awaiting an external decision.
func (m *Monitor) IsLocked(id symbols.PositionID) bool {
	_, ok := m.lockedIDs[id]
	return ok
}

func (m *Monitor) lock(id symbols.PositionID) {
	m.lockedIDs[id] = struct{}{}
}

// Update is the hot path: it visits every position indexed under
// quote.Instrument, drives each through its state machine, updates the
// owning wallets when wallet monitoring is enabled, and returns the batch
// of events produced this tick. A tick for an instrument with no indexed
// positions returns nil immediately — wallet updates ride along with a
// position-bearing instrument, never on their own.
func (m *Monitor) Update(quote quotes.BidAsk) []Event {
	m.events = m.events[:0]

	ids, ok := m.idsByInstrument[quote.Instrument]
	if !ok {
		return nil
	}

	for id := range ids {
		m.updateOne(quote, id, ids)
	}

	if m.walletMonitoringEnabled {
		m.updateWallets(quote)
	}

	m.clearScratch()
	return m.events
}

func (m *Monitor) updateOne(quote quotes.BidAsk, id symbols.PositionID, ids idSet[symbols.PositionID]) {
	if _, locked := m.lockedIDs[id]; locked {
		return
	}

	p, ok := m.cache.Get(id)
	if !ok {
		delete(ids, id)
		if m.Log != nil {
			m.Log.Warn("dropping dangling position id from instrument index",
				logging.PositionID(string(id)), logging.Instrument(string(quote.Instrument)))
		}
		return
	}

	switch v := p.(type) {
	case *positions.ClosedPosition:
		m.events = append(m.events, Event{Kind: PositionClosed, Closed: v})
		m.evict(v)
	case *positions.PendingPosition:
		m.updatePending(quote, v)
	case *positions.ActivePosition:
		m.updateActive(quote, v)
	}
}

func (m *Monitor) updatePending(quote quotes.BidAsk, p *positions.PendingPosition) {
	p.Update(quote)
	if !p.CanActivate() {
		return
	}
	if m.CanReserve != nil && !m.CanReserve(p) {
		m.lock(p.ID)
		m.events = append(m.events, Event{
			Kind: PositionLocked,
			Lock: &LockInfo{PositionID: p.ID, Reason: ActivationPending, Pending: p},
		})
		return
	}

	active := p.IntoActive()
	m.cache.Add(active)
	m.events = append(m.events, Event{Kind: PositionActivated, Activated: active})
}

func (m *Monitor) updateActive(quote quotes.BidAsk, p *positions.ActivePosition) {
	p.Update(quote)

	result := p.TryClose(m.pnlAccuracy)
	if closed, didClose := result.(*positions.ClosedPosition); didClose {
		m.cache.Add(closed)
		return
	}

	order := p.GetOrder()

	if p.IsMarginCall() {
		m.events = append(m.events, Event{Kind: PositionMarginCall, MarginCall: p})
	}

	if canceled := p.TryCancelTopUps(m.cancelTopUpPriceChangePercent, m.cancelTopUpDelay); len(canceled) > 0 {
		m.lock(p.ID)
		m.events = append(m.events, Event{
			Kind: PositionLocked,
			Lock: &LockInfo{PositionID: p.ID, Reason: TopUpsCanceled, Active: p, Canceled: canceled},
		})
	}

	if p.IsTopUp() {
		p.TopUpLocked = true
		m.lock(p.ID)
		m.events = append(m.events, Event{
			Kind: PositionLocked,
			Lock: &LockInfo{PositionID: p.ID, Reason: TopUp, Active: p},
		})
	}

	if order.TopUpEnabled {
		m.topUpPnLsByWallet[order.WalletID] += p.CurrentPnL
		reserved := m.topUpReservedByWallet[order.WalletID]
		if reserved == nil {
			reserved = make(map[symbols.AssetSymbol]float64, len(p.TotalInvestAssets))
			m.topUpReservedByWallet[order.WalletID] = reserved
		}
		for asset, amount := range p.TotalInvestAssets {
			reserved[asset] += amount
		}
	}
}

func (m *Monitor) updateWallets(quote quotes.BidAsk) {
	if wallets, ok := m.walletIDsByInstrument[quote.Instrument]; ok {
		for walletID := range wallets {
			if w, ok := m.wallets[walletID]; ok {
				w.UpdatePrice(quote)
			}
		}
	}

	for walletID, reserved := range m.topUpReservedByWallet {
		if w, ok := m.wallets[walletID]; ok {
			w.SetTopUpReserved(quote.Instrument, reserved)
		}
	}

	for walletID, pnl := range m.topUpPnLsByWallet {
		w, ok := m.wallets[walletID]
		if !ok {
			continue
		}
		w.SetTopUpPnL(quote.Instrument, pnl)
		w.UpdateLoss()
		if w.IsMarginCall() {
			var totalPnL float64
			for _, p := range w.TopUpPnLsByInstrument() {
				totalPnL += p
			}
			m.events = append(m.events, Event{
				Kind: WalletMarginCall,
				Wallet: &WalletMarginCallInfo{
					WalletID:    w.ID,
					TraderID:    w.TraderID,
					LossPercent: w.CurrentLossPercent,
					PnL:         totalPnL,
				},
			})
		}
	}
}

func (m *Monitor) clearScratch() {
	for k := range m.topUpPnLsByWallet {
		delete(m.topUpPnLsByWallet, k)
	}
	for k := range m.topUpReservedByWallet {
		delete(m.topUpReservedByWallet, k)
	}
}
