package wire

import "testing"

func TestArgListInsertionOrder(t *testing.T) {
	t.Parallel()
	a := NewArgList()
	a.Set("symbol", ArgString("BTCUSDT"))
	a.Set("timestamp", ArgInt64(1700000000000))

	got := a.BuildQuery()
	want := "symbol=BTCUSDT&timestamp=1700000000000"
	if got != want {
		t.Errorf("BuildQuery() = %q, want %q", got, want)
	}
}

func TestArgListOverwriteNeverAppends(t *testing.T) {
	t.Parallel()
	a := NewArgList()
	a.Set("symbol", ArgString("BTCUSDT"))
	a.Set("limit", ArgInt64(100))
	a.Set("symbol", ArgString("ETHUSDT")) // second insert overwrites in place

	if a.Len() != 2 {
		t.Fatalf("Len() = %d, want 2 (overwrite must not append)", a.Len())
	}
	want := "symbol=ETHUSDT&limit=100"
	if got := a.BuildQuery(); got != want {
		t.Errorf("BuildQuery() = %q, want %q", got, want)
	}
}

func TestArgListEmptyStringOmitted(t *testing.T) {
	t.Parallel()
	a := NewArgList()
	a.Set("symbol", ArgString("BTCUSDT"))
	a.Set("recvWindow", ArgString(""))
	a.Set("timestamp", ArgInt64(5))

	want := "symbol=BTCUSDT&timestamp=5"
	if got := a.BuildQuery(); got != want {
		t.Errorf("BuildQuery() = %q, want %q (empty string must be omitted)", got, want)
	}
}

func TestArgListPathSegments(t *testing.T) {
	t.Parallel()
	a := NewArgList()
	a.Set("", ArgString("42"))
	a.Set("side", ArgString("BUY"))
	a.Set("", ArgString("extra"))

	segs := a.PathSegments()
	if len(segs) != 2 || segs[0] != "42" || segs[1] != "extra" {
		t.Errorf("PathSegments() = %v, want [42 extra]", segs)
	}
	want := "side=BUY"
	if got := a.BuildQuery(); got != want {
		t.Errorf("BuildQuery() = %q, want %q", got, want)
	}
}

func TestArgListCanonicalIsDeterministic(t *testing.T) {
	t.Parallel()
	a := NewArgList()
	a.Set("symbol", ArgString("BTCUSDT"))
	a.Set("limit", ArgInt64(1000))
	a.Set("reduceOnly", ArgBool(true))
	a.Set("price", ArgFloat64(43210.5))

	q1 := a.BuildQuery()

	b := NewArgList()
	b.Set("symbol", ArgString("BTCUSDT"))
	b.Set("limit", ArgInt64(1000))
	b.Set("reduceOnly", ArgBool(true))
	b.Set("price", ArgFloat64(43210.5))
	q2 := b.BuildQuery()

	if q1 != q2 {
		t.Errorf("canonical(A) not stable across equivalent insertion: %q vs %q", q1, q2)
	}
}
