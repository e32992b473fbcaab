package marketdata

import "testing"

func TestBookUpsertZeroQtyRemoves(t *testing.T) {
	t.Parallel()
	b := NewBook(2)
	b.upsertBid(10.0, 1.0)
	if _, _, ok := b.BestBid(); !ok {
		t.Fatal("expected a bid after insert")
	}
	b.upsertBid(10.0, 0)
	if _, _, ok := b.BestBid(); ok {
		t.Fatal("expected no bid after zero-qty upsert")
	}
}

func TestBookUpsertZeroQtyOnMissingIsNoop(t *testing.T) {
	t.Parallel()
	b := NewBook(2)
	b.upsertBid(10.0, 0)
	if len(b.bids) != 0 {
		t.Errorf("len(bids) = %d, want 0", len(b.bids))
	}
}

func TestBookRepeatedUpsertEqualsLatest(t *testing.T) {
	t.Parallel()
	a := NewBook(2)
	a.upsertBid(10.0, 1.0)
	a.upsertBid(10.0, 2.0)

	b := NewBook(2)
	b.upsertBid(10.0, 2.0)

	_, qa, _ := a.BestBid()
	_, qb, _ := b.BestBid()
	if qa != qb {
		t.Errorf("repeated upsert = %v, isolated upsert = %v, want equal", qa, qb)
	}
}

func TestBookCleanlinessInvariant(t *testing.T) {
	t.Parallel()
	b := NewBook(2)
	b.LoadSnapshot([]PriceQty{{Price: 10.0, Qty: 1.0}}, []PriceQty{{Price: 11.0, Qty: 1.0}})
	if !b.Clean() {
		t.Error("expected book to be clean with bid < ask")
	}

	b.upsertAsk(9.0, 1.0) // crosses the bid — book temporarily dirty
	if b.Clean() {
		t.Error("expected book to be dirty once ask crosses bid")
	}
}

func TestBookSnapshotOrdering(t *testing.T) {
	t.Parallel()
	b := NewBook(2)
	b.LoadSnapshot(
		[]PriceQty{{Price: 9.0, Qty: 1}, {Price: 10.0, Qty: 1}, {Price: 8.0, Qty: 1}},
		[]PriceQty{{Price: 12.0, Qty: 1}, {Price: 11.0, Qty: 1}},
	)
	bids, asks := b.Snapshot()
	if len(bids) != 3 || bids[0].Price != 10.0 || bids[2].Price != 8.0 {
		t.Errorf("bids not sorted descending: %+v", bids)
	}
	if len(asks) != 2 || asks[0].Price != 11.0 || asks[1].Price != 12.0 {
		t.Errorf("asks not sorted ascending: %+v", asks)
	}
}
