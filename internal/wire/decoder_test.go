package wire

import (
	"testing"
	"time"
)

func TestAssignStringMissingKeyLeavesUntouched(t *testing.T) {
	t.Parallel()
	dst := "default"
	ok := D.AssignString([]byte(`{"a":"b"}`), "missing", &dst)
	if ok {
		t.Error("AssignString on missing key returned true")
	}
	if dst != "default" {
		t.Errorf("dst = %q, want unchanged %q", dst, "default")
	}
}

func TestAssignFloatCoercesStringAndNumber(t *testing.T) {
	t.Parallel()
	var f float64
	if !D.AssignFloat([]byte(`{"price":"43210.50"}`), "price", &f) {
		t.Fatal("AssignFloat(string) returned false")
	}
	if f != 43210.50 {
		t.Errorf("f = %v, want 43210.50", f)
	}

	var g float64
	if !D.AssignFloat([]byte(`{"price":43210.50}`), "price", &g) {
		t.Fatal("AssignFloat(number) returned false")
	}
	if g != 43210.50 {
		t.Errorf("g = %v, want 43210.50", g)
	}
}

func TestAssignInt64AcceptsStringOrNumber(t *testing.T) {
	t.Parallel()
	var a int64
	if !D.AssignInt64([]byte(`{"id":"123456789"}`), "id", &a) {
		t.Fatal("AssignInt64(string) returned false")
	}
	if a != 123456789 {
		t.Errorf("a = %d, want 123456789", a)
	}

	var b int64
	if !D.AssignInt64([]byte(`{"id":123456789}`), "id", &b) {
		t.Fatal("AssignInt64(number) returned false")
	}
	if b != 123456789 {
		t.Errorf("b = %d, want 123456789", b)
	}
}

func TestAssignTimeMillis(t *testing.T) {
	t.Parallel()
	var tm time.Time
	if !D.AssignTimeMillis([]byte(`{"E":1700000000000}`), "E", &tm) {
		t.Fatal("AssignTimeMillis returned false")
	}
	if tm.UnixMilli() != 1700000000000 {
		t.Errorf("UnixMilli() = %d, want 1700000000000", tm.UnixMilli())
	}
}

func TestCodeAbsentMeansSuccess(t *testing.T) {
	t.Parallel()
	_, present := D.Code([]byte(`{"symbol":"BTCUSDT"}`))
	if present {
		t.Error("Code() reported present on a body without a code field")
	}
}

func TestCodePresentNonZero(t *testing.T) {
	t.Parallel()
	code, present := D.Code([]byte(`{"code":-1121,"msg":"Invalid symbol."}`))
	if !present {
		t.Fatal("Code() reported absent on a body with a code field")
	}
	if code != -1121 {
		t.Errorf("code = %d, want -1121", code)
	}
	if msg := D.Message([]byte(`{"code":-1121,"msg":"Invalid symbol."}`)); msg != "Invalid symbol." {
		t.Errorf("Message() = %q, want %q", msg, "Invalid symbol.")
	}
}

func TestArrayElementAccessors(t *testing.T) {
	t.Parallel()
	kline := []byte(`[1700000000000,"43000.00","43500.00","42900.00","43200.50","120.5",1700000059999,"5190000.0",1500,"60.1","2595000.0","0"]`)

	openTime, ok := D.ArrayElementFloat(kline, 0)
	if !ok || openTime != 1700000000000 {
		t.Errorf("openTime = %v, ok=%v, want 1700000000000", openTime, ok)
	}
	open, ok := D.ArrayElementFloat(kline, 1)
	if !ok || open != 43000.00 {
		t.Errorf("open = %v, ok=%v, want 43000.00", open, ok)
	}
}
