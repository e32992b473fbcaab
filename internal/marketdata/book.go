// Package marketdata implements the market-data engine: listen-key
// lifecycle management and the two order-book synchronisers (L2 and the
// id-keyed L3 variant) that reconcile a REST snapshot against a live
// WebSocket diff stream.
package marketdata

import (
	"sort"

	"github.com/0xtitan6/binancefutures/internal/wire"
)

// PriceQty is a single (price, quantity) level, returned from Book.Snapshot
// as a caller-owned copy.
type PriceQty struct {
	Price float64
	Qty   float64
}

// Book is a live-maintained L2 order book keyed by fixed-point price. It is
// owned exclusively by its synchroniser's goroutine — per the concurrency
// model, external callers must go through Snapshot, never touch the maps
// directly.
type Book struct {
	precision int
	bids      map[wire.PriceKey]float64
	asks      map[wire.PriceKey]float64
}

// NewBook creates an empty book for a symbol at the given price precision
// (discovered from /fapi/v1/exchangeInfo).
func NewBook(precision int) *Book {
	return &Book{
		precision: precision,
		bids:      make(map[wire.PriceKey]float64),
		asks:      make(map[wire.PriceKey]float64),
	}
}

// Reset clears both sides, used before a full resync.
func (b *Book) Reset() {
	b.bids = make(map[wire.PriceKey]float64)
	b.asks = make(map[wire.PriceKey]float64)
}

// upsertBid applies a (price, qty) pair to the bid side: qty == 0 deletes
// (no-op if absent), qty > 0 inserts or overwrites.
func (b *Book) upsertBid(price, qty float64) {
	upsert(b.bids, wire.NewPriceKey(price, b.precision), qty)
}

func (b *Book) upsertAsk(price, qty float64) {
	upsert(b.asks, wire.NewPriceKey(price, b.precision), qty)
}

func upsert(side map[wire.PriceKey]float64, key wire.PriceKey, qty float64) {
	if qty == 0 {
		delete(side, key)
		return
	}
	side[key] = qty
}

// LoadSnapshot replaces the book's contents with a REST snapshot's levels.
func (b *Book) LoadSnapshot(bids, asks []PriceQty) {
	b.Reset()
	for _, lvl := range bids {
		b.upsertBid(lvl.Price, lvl.Qty)
	}
	for _, lvl := range asks {
		b.upsertAsk(lvl.Price, lvl.Qty)
	}
}

// ApplyDiff upserts every (price, qty) pair in a depth update onto both
// sides.
func (b *Book) ApplyDiff(bids, asks []PriceQty) {
	for _, lvl := range bids {
		b.upsertBid(lvl.Price, lvl.Qty)
	}
	for _, lvl := range asks {
		b.upsertAsk(lvl.Price, lvl.Qty)
	}
}

// BestBid returns the highest bid price and its quantity, or ok=false if
// the bid side is empty.
func (b *Book) BestBid() (price, qty float64, ok bool) {
	var best wire.PriceKey
	found := false
	for k := range b.bids {
		if !found || k > best {
			best, found = k, true
		}
	}
	if !found {
		return 0, 0, false
	}
	return best.Float(b.precision), b.bids[best], true
}

// BestAsk returns the lowest ask price and its quantity, or ok=false if
// the ask side is empty.
func (b *Book) BestAsk() (price, qty float64, ok bool) {
	var best wire.PriceKey
	found := false
	for k := range b.asks {
		if !found || k < best {
			best, found = k, true
		}
	}
	if !found {
		return 0, 0, false
	}
	return best.Float(b.precision), b.asks[best], true
}

// Snapshot returns a caller-owned copy of both sides, bids sorted
// descending by price and asks ascending — the external-observer
// copy-out accessor the concurrency model requires.
func (b *Book) Snapshot() (bids, asks []PriceQty) {
	bids = make([]PriceQty, 0, len(b.bids))
	for k, qty := range b.bids {
		bids = append(bids, PriceQty{Price: k.Float(b.precision), Qty: qty})
	}
	sort.Slice(bids, func(i, j int) bool { return bids[i].Price > bids[j].Price })

	asks = make([]PriceQty, 0, len(b.asks))
	for k, qty := range b.asks {
		asks = append(asks, PriceQty{Price: k.Float(b.precision), Qty: qty})
	}
	sort.Slice(asks, func(i, j int) bool { return asks[i].Price < asks[j].Price })
	return bids, asks
}

// Clean reports the book-cleanliness invariant: no zero-quantity entries
// (guaranteed by upsert's delete-on-zero) and, when both sides are
// non-empty, the best bid strictly below the best ask.
func (b *Book) Clean() bool {
	bp, _, bok := b.BestBid()
	ap, _, aok := b.BestAsk()
	if bok && aok && bp >= ap {
		return false
	}
	return true
}
