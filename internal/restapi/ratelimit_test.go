package restapi

import (
	"context"
	"testing"
	"time"
)

func TestRateLimiterAllowsUpToLimit(t *testing.T) {
	t.Parallel()
	rl := NewRateLimiter(2, time.Second)
	defer rl.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	for i := 0; i < 2; i++ {
		if err := rl.Wait(ctx); err != nil {
			t.Fatalf("Wait() #%d returned error: %v", i, err)
		}
	}
	if rl.Count() != 2 {
		t.Errorf("Count() = %d, want 2", rl.Count())
	}
}

func TestRateLimiterBlocksThenResets(t *testing.T) {
	t.Parallel()
	// limit=2, window=150ms (scaled down for test speed). R1, R2 dispatch
	// immediately; R3 waits for the window to reset.
	rl := NewRateLimiter(2, 150*time.Millisecond)
	defer rl.Close()

	ctx := context.Background()
	if err := rl.Wait(ctx); err != nil {
		t.Fatal(err)
	}
	if err := rl.Wait(ctx); err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	start := time.Now()
	go func() {
		_ = rl.Wait(ctx)
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("third Wait() returned before the window reset")
	case <-time.After(50 * time.Millisecond):
	}

	select {
	case <-done:
		if elapsed := time.Since(start); elapsed < 100*time.Millisecond {
			t.Errorf("third Wait() returned too early: %v", elapsed)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("third Wait() never returned after window reset")
	}
}

func TestRateLimiterDisabledWhenNonPositive(t *testing.T) {
	t.Parallel()
	rl := NewRateLimiter(0, time.Second)
	defer rl.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	for i := 0; i < 1000; i++ {
		if err := rl.Wait(ctx); err != nil {
			t.Fatalf("Wait() #%d returned error with disabled limiter: %v", i, err)
		}
	}
}

func TestRateLimiterContextCancellation(t *testing.T) {
	t.Parallel()
	rl := NewRateLimiter(1, time.Hour)
	defer rl.Close()

	ctx := context.Background()
	if err := rl.Wait(ctx); err != nil {
		t.Fatal(err)
	}

	cctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := rl.Wait(cctx); err == nil {
		t.Error("Wait() should have returned context error")
	}
}
