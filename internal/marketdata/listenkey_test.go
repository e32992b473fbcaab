package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/0xtitan6/binancefutures/internal/restapi"
	"github.com/0xtitan6/binancefutures/internal/wire"
)

func newListenKeyTestPipeline(t *testing.T, handler http.HandlerFunc) *restapi.Pipeline {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p := restapi.NewPipeline(srv.URL, wire.Credentials{Key: "key", Secret: "secret"})
	if err := p.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(p.Close)
	return p
}

func TestListenKeyManagerAcquireStoresKey(t *testing.T) {
	t.Parallel()
	p := newListenKeyTestPipeline(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"listenKey":"abc123"}`))
	})

	m := NewListenKeyManager(p, nil)
	key, err := m.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if key != "abc123" {
		t.Errorf("key = %q, want %q", key, "abc123")
	}
	if m.Key() != "abc123" {
		t.Errorf("Key() = %q, want %q", m.Key(), "abc123")
	}
}

func TestListenKeyManagerRenewSendsSignedPut(t *testing.T) {
	t.Parallel()
	var renewals atomic.Int32
	var method atomic.Value
	var query atomic.Value
	p := newListenKeyTestPipeline(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			renewals.Add(1)
			method.Store(r.Method)
			if err := r.ParseForm(); err == nil {
				query.Store(r.PostForm.Encode())
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"listenKey":"abc123"}`))
	})

	m := NewListenKeyManager(p, nil)
	if _, err := m.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	if err := m.renew(context.Background()); err != nil {
		t.Fatalf("renew: %v", err)
	}
	if renewals.Load() != 1 {
		t.Errorf("renewals = %d, want 1", renewals.Load())
	}
	if v, _ := method.Load().(string); v != http.MethodPut {
		t.Errorf("renewal method = %q, want PUT", v)
	}
	if v, _ := query.Load().(string); !strings.Contains(v, "signature=") {
		t.Errorf("renewal form body = %q, want a signature= parameter (USER_DATA class)", v)
	}
}

func TestListenKeyManagerAcquirePropagatesAPIError(t *testing.T) {
	t.Parallel()
	p := newListenKeyTestPipeline(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":-1121,"msg":"invalid symbol"}`))
	})

	m := NewListenKeyManager(p, nil)
	_, err := m.Acquire(context.Background())
	if err == nil {
		t.Fatal("expected an error from Acquire")
	}
	apiErr, ok := err.(*restapi.APIError)
	if !ok {
		t.Fatalf("error type = %T, want *restapi.APIError", err)
	}
	if apiErr.Code != -1121 {
		t.Errorf("Code = %d, want -1121", apiErr.Code)
	}
}

func TestListenKeyManagerRunStopsOnContextCancel(t *testing.T) {
	t.Parallel()
	p := newListenKeyTestPipeline(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"listenKey":"abc123"}`))
	})

	m := NewListenKeyManager(p, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Run() error = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after context cancel")
	}
}
