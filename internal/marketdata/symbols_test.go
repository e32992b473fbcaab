package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/0xtitan6/binancefutures/internal/restapi"
	"github.com/0xtitan6/binancefutures/internal/wire"
)

func TestSymbolCacheRefreshAndPricePrecision(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"symbols":[{"symbol":"BTCUSDT","status":"TRADING","pricePrecision":2,"quantityPrecision":3,"filters":[]}]}`))
	}))
	defer srv.Close()

	p := restapi.NewPipeline(srv.URL, wire.Credentials{})
	if err := p.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer p.Close()

	c := NewSymbolCache(p)
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	prec, err := c.PricePrecision("BTCUSDT")
	if err != nil {
		t.Fatalf("PricePrecision: %v", err)
	}
	if prec != 2 {
		t.Errorf("PricePrecision = %d, want 2", prec)
	}
}

func TestSymbolCachePricePrecisionUnknownSymbol(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"symbols":[]}`))
	}))
	defer srv.Close()

	p := restapi.NewPipeline(srv.URL, wire.Credentials{})
	if err := p.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer p.Close()

	c := NewSymbolCache(p)
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if _, err := c.PricePrecision("ETHUSDT"); err == nil {
		t.Error("expected an error for an unknown symbol")
	}
}
