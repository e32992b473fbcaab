package marketdata

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/0xtitan6/binancefutures/internal/wire"
)

// L3Side is the resting side of an L3 order.
type L3Side int

const (
	L3Buy L3Side = iota
	L3Sell
)

// L3EventType names the four event kinds the L3 feed produces.
type L3EventType int

const (
	L3Received L3EventType = iota
	L3Open
	L3Done
	L3Match
)

// L3Event is one message from the order-keyed event feed, each carrying a
// monotonically increasing Sequence.
type L3Event struct {
	Type     L3EventType
	OrderID  string
	Side     L3Side
	Price    float64
	Size     float64 // received: initial size; open: remaining size; match: traded size
	Sequence int64
}

// L3Order is a single resting order, referenced from both the id map and
// its side's price-keyed multimap.
type L3Order struct {
	ID    string
	Side  L3Side
	Price wire.PriceKey
	Size  float64
}

// L3SnapshotOrder is one entry of a REST snapshot seeding the book.
type L3SnapshotOrder struct {
	ID    string
	Side  L3Side
	Price float64
	Size  float64
}

// L3Snapshot is the REST snapshot L3Book seeds from: a sequence
// high-water mark plus the live order set at that point.
type L3Snapshot struct {
	Sequence int64
	Orders   []L3SnapshotOrder
}

// L3Book is an id-keyed order book: every order lives in exactly one side
// multimap and in the id map; deletions remove from both.
type L3Book struct {
	precision int
	byID      map[string]*L3Order
	bids      map[wire.PriceKey][]*L3Order
	asks      map[wire.PriceKey][]*L3Order
	logger    *slog.Logger
}

// NewL3Book creates an empty L3 book at the given price precision.
func NewL3Book(precision int, logger *slog.Logger) *L3Book {
	if logger == nil {
		logger = slog.Default()
	}
	return &L3Book{
		precision: precision,
		byID:      make(map[string]*L3Order),
		bids:      make(map[wire.PriceKey][]*L3Order),
		asks:      make(map[wire.PriceKey][]*L3Order),
		logger:    logger.With("component", "l3book"),
	}
}

func (b *L3Book) sideMap(side L3Side) map[wire.PriceKey][]*L3Order {
	if side == L3Buy {
		return b.bids
	}
	return b.asks
}

// Seed resets the book and loads a REST snapshot's orders.
func (b *L3Book) Seed(snap L3Snapshot) {
	b.byID = make(map[string]*L3Order)
	b.bids = make(map[wire.PriceKey][]*L3Order)
	b.asks = make(map[wire.PriceKey][]*L3Order)

	for _, so := range snap.Orders {
		o := &L3Order{ID: so.ID, Side: so.Side, Price: wire.NewPriceKey(so.Price, b.precision), Size: so.Size}
		b.byID[o.ID] = o
		m := b.sideMap(o.Side)
		m[o.Price] = append(m[o.Price], o)
	}
}

// Apply resolves one event against the id-map:
//   - received: creates a provisional order carrying the event's size, with
//     side and price still unknown.
//   - open: binds a provisional order's side/price/size and inserts it
//     into the matching side map; an open for an order_id with no prior
//     received creates the order from the open event itself.
//   - done: removes the order from its side map and the id map.
//   - match: decrements the resting order's remaining size, removing it at
//     zero remaining.
//
// done and match events referencing an unknown order_id are logged and
// dropped — expected for orders that predate the snapshot's coverage.
func (b *L3Book) Apply(evt L3Event) {
	switch evt.Type {
	case L3Received:
		b.byID[evt.OrderID] = &L3Order{ID: evt.OrderID, Size: evt.Size}

	case L3Open:
		o, ok := b.byID[evt.OrderID]
		if !ok {
			o = &L3Order{ID: evt.OrderID}
			b.byID[evt.OrderID] = o
		}
		o.Side = evt.Side
		o.Price = wire.NewPriceKey(evt.Price, b.precision)
		o.Size = evt.Size
		m := b.sideMap(o.Side)
		m[o.Price] = append(m[o.Price], o)

	case L3Done:
		o, ok := b.byID[evt.OrderID]
		if !ok {
			b.logger.Debug("done event for unknown order", "order_id", evt.OrderID)
			return
		}
		b.removeFromSide(o)
		delete(b.byID, evt.OrderID)

	case L3Match:
		o, ok := b.byID[evt.OrderID]
		if !ok {
			b.logger.Debug("match event for unknown order", "order_id", evt.OrderID)
			return
		}
		o.Size -= evt.Size
		if o.Size <= 0 {
			b.removeFromSide(o)
			delete(b.byID, evt.OrderID)
		}
	}
}

func (b *L3Book) removeFromSide(o *L3Order) {
	m := b.sideMap(o.Side)
	levels := m[o.Price]
	for i, cand := range levels {
		if cand.ID == o.ID {
			m[o.Price] = append(levels[:i], levels[i+1:]...)
			break
		}
	}
	if len(m[o.Price]) == 0 {
		delete(m, o.Price)
	}
}

// AggregatedLevel is a price level's total resting size, returned by
// BidLevels/AskLevels.
type AggregatedLevel struct {
	Price float64
	Size  float64
}

// BidLevels returns aggregated bid levels sorted descending by price.
func (b *L3Book) BidLevels() []AggregatedLevel {
	return aggregateLevels(b.bids, b.precision, false)
}

// AskLevels returns aggregated ask levels sorted ascending by price.
func (b *L3Book) AskLevels() []AggregatedLevel {
	return aggregateLevels(b.asks, b.precision, true)
}

func aggregateLevels(side map[wire.PriceKey][]*L3Order, precision int, ascending bool) []AggregatedLevel {
	out := make([]AggregatedLevel, 0, len(side))
	for k, orders := range side {
		var total float64
		for _, o := range orders {
			total += o.Size
		}
		if total <= 0 {
			continue
		}
		out = append(out, AggregatedLevel{Price: k.Float(precision), Size: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if ascending {
			return out[i].Price < out[j].Price
		}
		return out[i].Price > out[j].Price
	})
	return out
}

// L3Sync drives the cold-start buffer → snapshot → replay → steady-state
// protocol over an injected event source and snapshot fetcher — the
// component is deliberately source-agnostic since Binance futures names no
// concrete L3 REST/WS binding.
type L3Sync struct {
	book          *L3Book
	events        <-chan L3Event
	fetchSnapshot func(ctx context.Context) (L3Snapshot, error)
	coldStartSize int
	logger        *slog.Logger

	mu sync.RWMutex
}

// NewL3Sync creates a synchroniser reading events from the given channel
// and using fetchSnapshot to retrieve the REST snapshot once the
// cold-start buffer fills.
func NewL3Sync(book *L3Book, events <-chan L3Event, fetchSnapshot func(ctx context.Context) (L3Snapshot, error)) *L3Sync {
	return &L3Sync{
		book:          book,
		events:        events,
		fetchSnapshot: fetchSnapshot,
		coldStartSize: 10,
		logger:        slog.Default().With("component", "l3sync"),
	}
}

// Run buffers coldStartSize events, fetches a snapshot, seeds the book,
// replays buffered events newer than the snapshot, then applies events
// directly until ctx is cancelled.
func (s *L3Sync) Run(ctx context.Context) error {
	buffer := make([]L3Event, 0, s.coldStartSize)
	for len(buffer) < s.coldStartSize {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt := <-s.events:
			buffer = append(buffer, evt)
		}
	}

	snap, err := s.fetchSnapshot(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.book.Seed(snap)
	s.mu.Unlock()

	for _, evt := range buffer {
		if evt.Sequence > snap.Sequence {
			s.mu.Lock()
			s.book.Apply(evt)
			s.mu.Unlock()
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt := <-s.events:
			s.mu.Lock()
			s.book.Apply(evt)
			s.mu.Unlock()
		}
	}
}

// BidLevels returns a copy of the current aggregated bid levels.
func (s *L3Sync) BidLevels() []AggregatedLevel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.book.BidLevels()
}

// AskLevels returns a copy of the current aggregated ask levels.
func (s *L3Sync) AskLevels() []AggregatedLevel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.book.AskLevels()
}
