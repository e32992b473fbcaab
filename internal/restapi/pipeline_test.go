package restapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/0xtitan6/binancefutures/internal/wire"
	"github.com/0xtitan6/binancefutures/pkg/types"
)

func newTestPipeline(t *testing.T, handler http.HandlerFunc) *Pipeline {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p := NewPipeline(srv.URL, wire.Credentials{Key: "testkey", Secret: "testsecret"})
	if err := p.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(p.Close)
	return p
}

func TestPingRoundTrip(t *testing.T) {
	t.Parallel()
	p := newTestPipeline(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/fapi/v1/ping" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{}`))
	})

	done := make(chan error, 1)
	Ping(context.Background(), p, func(_ *types.PingResponse, err error) {
		done <- err
	})
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Ping callback error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Ping callback never fired")
	}
}

func TestPlaceOrderSignsAndDecodes(t *testing.T) {
	t.Parallel()
	var gotHeader string
	p := newTestPipeline(t, func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("X-MBX-APIKEY")
		if err := r.ParseForm(); err != nil {
			t.Fatalf("ParseForm: %v", err)
		}
		if !r.Form.Has("signature") {
			t.Error("missing signature in signed request body")
		}
		if !r.Form.Has("timestamp") {
			t.Error("missing timestamp in signed request body")
		}
		json.NewEncoder(w).Encode(map[string]any{
			"orderId": 123, "symbol": "BTCUSDT", "status": "NEW",
			"side": "BUY", "type": "LIMIT", "timeInForce": "GTC", "positionSide": "BOTH",
			"price": "100", "origQty": "1", "executedQty": "0", "avgPrice": "0", "cumQuote": "0",
		})
	})

	done := make(chan *types.OrderAck, 1)
	PlaceOrder(context.Background(), p, OrderRequest{
		Symbol: "BTCUSDT", Side: types.BUY, Type: types.OrderTypeLimit,
		TimeInForce: types.GTC, Quantity: 1, Price: 100,
	}, func(ack *types.OrderAck, err error) {
		if err != nil {
			t.Errorf("PlaceOrder error: %v", err)
		}
		done <- ack
	})

	select {
	case ack := <-done:
		if ack == nil || ack.OrderID != 123 {
			t.Fatalf("ack = %+v", ack)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("PlaceOrder callback never fired")
	}
	if gotHeader != "testkey" {
		t.Errorf("X-MBX-APIKEY = %q, want testkey", gotHeader)
	}
}

func TestCallbacksFireInEnqueueOrder(t *testing.T) {
	t.Parallel()
	p := newTestPipeline(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	const n = 20
	order := make(chan int, n)
	for i := 0; i < n; i++ {
		i := i
		Ping(context.Background(), p, func(_ *types.PingResponse, _ error) {
			order <- i
		})
	}
	for i := 0; i < n; i++ {
		select {
		case got := <-order:
			if got != i {
				t.Fatalf("callback #%d fired with index %d, want FIFO order", i, got)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for callback #%d", i)
		}
	}
}

func TestAPIErrorSurfacedFromNonZeroCode(t *testing.T) {
	t.Parallel()
	p := newTestPipeline(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":-2010,"msg":"Account has insufficient balance"}`))
	})

	done := make(chan error, 1)
	PlaceOrder(context.Background(), p, OrderRequest{
		Symbol: "BTCUSDT", Side: types.BUY, Type: types.OrderTypeMarket, Quantity: 1,
	}, func(_ *types.OrderAck, err error) {
		done <- err
	})

	select {
	case err := <-done:
		apiErr, ok := err.(*APIError)
		if !ok {
			t.Fatalf("error type = %T, want *APIError", err)
		}
		if apiErr.Code != -2010 {
			t.Errorf("Code = %d, want -2010", apiErr.Code)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("callback never fired")
	}
}

func TestEnqueueAfterCloseReturnsPipelineClosed(t *testing.T) {
	t.Parallel()
	p := newTestPipeline(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})
	p.Close()

	done := make(chan error, 1)
	Ping(context.Background(), p, func(_ *types.PingResponse, err error) {
		done <- err
	})
	select {
	case err := <-done:
		if _, ok := err.(ErrPipelineClosed); !ok {
			t.Errorf("error = %v, want ErrPipelineClosed", err)
		}
	case <-time.After(time.Second):
		t.Fatal("callback never fired")
	}
}
