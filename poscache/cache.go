// Package poscache is the positions arena: a lookup by position id plus a
// secondary index by wallet id. It holds no instrument indexing — that is
// the positions monitor's job, since only the monitor knows which
// instruments a position is indexed under.
package poscache

import (
	"github.com/yourfin-enon/trading-sdk/positions"
	"github.com/yourfin-enon/trading-sdk/symbols"
)

// Cache looks up positions by id and by owning wallet. It is not safe for
// concurrent use, matching the monitor's single-threaded-per-shard model.
type Cache struct {
	byID        map[symbols.PositionID]positions.Position
	idsByWallet map[symbols.WalletID]map[symbols.PositionID]struct{}
}

// New creates an empty cache sized to capacity.
func New(capacity int) *Cache {
	return &Cache{
		byID:        make(map[symbols.PositionID]positions.Position, capacity),
		idsByWallet: make(map[symbols.WalletID]map[symbols.PositionID]struct{}),
	}
}

// Count returns the number of cached positions.
func (c *Cache) Count() int {
	return len(c.byID)
}

// Add inserts p into both indexes. Re-adding an id already present
// overwrites it in place; if the position's wallet changed between the two
// adds (not expected in practice), the old wallet entry is cleaned up too.
func (c *Cache) Add(p positions.Position) {
	id := p.GetID()
	walletID := p.GetOrder().WalletID

	if old, ok := c.byID[id]; ok {
		oldWallet := old.GetOrder().WalletID
		if oldWallet != walletID {
			c.removeFromWalletIndex(oldWallet, id)
		}
	}

	c.byID[id] = p
	c.addToWalletIndex(walletID, id)
}

func (c *Cache) addToWalletIndex(walletID symbols.WalletID, id symbols.PositionID) {
	set, ok := c.idsByWallet[walletID]
	if !ok {
		set = make(map[symbols.PositionID]struct{})
		c.idsByWallet[walletID] = set
	}
	set[id] = struct{}{}
}

func (c *Cache) removeFromWalletIndex(walletID symbols.WalletID, id symbols.PositionID) {
	set, ok := c.idsByWallet[walletID]
	if !ok {
		return
	}
	delete(set, id)
	if len(set) == 0 {
		delete(c.idsByWallet, walletID)
	}
}

// Remove deletes id from both indexes. A no-op if id is not present.
func (c *Cache) Remove(id symbols.PositionID) {
	p, ok := c.byID[id]
	if !ok {
		return
	}
	delete(c.byID, id)
	c.removeFromWalletIndex(p.GetOrder().WalletID, id)
}

// Get returns the position for id, if present.
func (c *Cache) Get(id symbols.PositionID) (positions.Position, bool) {
	p, ok := c.byID[id]
	return p, ok
}

// Contains reports whether id is present without allocating a return value.
func (c *Cache) Contains(id symbols.PositionID) bool {
	_, ok := c.byID[id]
	return ok
}

// GetByWallet returns up to limit positions owned by walletID, in
// unspecified order. Never panics on a missing wallet; returns nil.
func (c *Cache) GetByWallet(walletID symbols.WalletID, limit int) []positions.Position {
	set, ok := c.idsByWallet[walletID]
	if !ok {
		return nil
	}
	if limit <= 0 || limit > len(set) {
		limit = len(set)
	}
	result := make([]positions.Position, 0, limit)
	for id := range set {
		if len(result) >= limit {
			break
		}
		if p, ok := c.byID[id]; ok {
			result = append(result, p)
		}
	}
	return result
}

// WalletPositionCount returns the number of positions currently indexed
// under walletID.
func (c *Cache) WalletPositionCount(walletID symbols.WalletID) int {
	return len(c.idsByWallet[walletID])
}
