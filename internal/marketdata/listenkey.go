package marketdata

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/0xtitan6/binancefutures/internal/restapi"
	"github.com/0xtitan6/binancefutures/pkg/types"
)

const listenKeyRenewInterval = 59 * time.Minute

// ListenKeyManager owns a user-data-stream listen key: it acquires one,
// renews it on a fixed interval for as long as Run is active, and exposes
// the current key for binding into a wsstream.Stream's URL.
type ListenKeyManager struct {
	rest   *restapi.Pipeline
	logger *slog.Logger

	mu  sync.RWMutex
	key string
}

// NewListenKeyManager creates a manager bound to rest for acquiring and
// renewing listen keys.
func NewListenKeyManager(rest *restapi.Pipeline, logger *slog.Logger) *ListenKeyManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &ListenKeyManager{rest: rest, logger: logger.With("component", "listenkey")}
}

// Acquire issues POST /fapi/v1/listenKey and stores the returned key.
func (m *ListenKeyManager) Acquire(ctx context.Context) (string, error) {
	resultCh := make(chan struct {
		key string
		err error
	}, 1)
	restapi.StartUserDataStream(ctx, m.rest, func(resp *types.ListenKeyResponse, err error) {
		if err != nil {
			resultCh <- struct {
				key string
				err error
			}{err: err}
			return
		}
		resultCh <- struct {
			key string
			err error
		}{key: resp.ListenKey}
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-resultCh:
		if res.err != nil {
			return "", res.err
		}
		m.mu.Lock()
		m.key = res.key
		m.mu.Unlock()
		return res.key, nil
	}
}

// Key returns the current listen key, or "" if none has been acquired.
func (m *ListenKeyManager) Key() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.key
}

// Run renews the listen key every 59 minutes (one minute inside the
// exchange's 60-minute expiry window) until ctx is cancelled. Renewal
// failures are logged, not fatal — the key remains valid until its
// original deadline, giving the caller one more cycle to recover.
func (m *ListenKeyManager) Run(ctx context.Context) error {
	ticker := time.NewTicker(listenKeyRenewInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := m.renew(ctx); err != nil {
				m.logger.Warn("listen key renewal failed", "error", err)
			}
		}
	}
}

func (m *ListenKeyManager) renew(ctx context.Context) error {
	errCh := make(chan error, 1)
	restapi.KeepAliveUserDataStream(ctx, m.rest, func(_ *types.ListenKeyResponse, err error) {
		errCh <- err
	})
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}
