package marketdata

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/0xtitan6/binancefutures/internal/restapi"
	"github.com/0xtitan6/binancefutures/pkg/types"
)

const defaultSymbolRefreshInterval = 1 * time.Hour

// SymbolCache polls GET /fapi/v1/exchangeInfo on an interval and caches each
// symbol's price precision, the figure L2Sync/L3Sync need to build
// PriceKeys — an order book started against a stale precision would
// misround every level, so callers resolve it here rather than hardcoding
// it per symbol.
type SymbolCache struct {
	rest   *restapi.Pipeline
	logger *slog.Logger
	period time.Duration

	mu   sync.RWMutex
	info map[string]types.SymbolInfo
}

// SymbolCacheOption configures a SymbolCache at construction time.
type SymbolCacheOption func(*SymbolCache)

// WithSymbolRefreshInterval overrides the default hourly poll period.
func WithSymbolRefreshInterval(d time.Duration) SymbolCacheOption {
	return func(c *SymbolCache) { c.period = d }
}

// WithSymbolCacheLogger attaches a structured logger.
func WithSymbolCacheLogger(l *slog.Logger) SymbolCacheOption {
	return func(c *SymbolCache) { c.logger = l }
}

// NewSymbolCache creates a cache bound to rest. Call Refresh once before
// using PricePrecision, then Run to keep it current.
func NewSymbolCache(rest *restapi.Pipeline, opts ...SymbolCacheOption) *SymbolCache {
	c := &SymbolCache{
		rest:   rest,
		logger: slog.Default().With("component", "symbolcache"),
		period: defaultSymbolRefreshInterval,
		info:   make(map[string]types.SymbolInfo),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run performs an immediate refresh, then one every period until ctx is
// cancelled.
func (c *SymbolCache) Run(ctx context.Context) error {
	if err := c.Refresh(ctx); err != nil {
		c.logger.Error("initial exchange info fetch failed", "error", err)
	}

	ticker := time.NewTicker(c.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := c.Refresh(ctx); err != nil {
				c.logger.Warn("exchange info refresh failed", "error", err)
			}
		}
	}
}

// Refresh fetches exchangeInfo once and replaces the cached symbol table.
func (c *SymbolCache) Refresh(ctx context.Context) error {
	resultCh := make(chan struct {
		info *types.ExchangeInfo
		err  error
	}, 1)
	restapi.GetExchangeInfo(ctx, c.rest, func(info *types.ExchangeInfo, err error) {
		resultCh <- struct {
			info *types.ExchangeInfo
			err  error
		}{info, err}
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-resultCh:
		if res.err != nil {
			return res.err
		}
		table := make(map[string]types.SymbolInfo, len(res.info.Symbols))
		for _, s := range res.info.Symbols {
			table[s.Symbol] = s
		}
		c.mu.Lock()
		c.info = table
		c.mu.Unlock()
		c.logger.Info("exchange info refreshed", "symbols", len(table))
		return nil
	}
}

// PricePrecision returns the cached price precision for symbol.
func (c *SymbolCache) PricePrecision(symbol string) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.info[symbol]
	if !ok {
		return 0, fmt.Errorf("binance: symbol %q not present in exchange info cache", symbol)
	}
	return s.PricePrecision, nil
}

// Symbol returns the cached SymbolInfo for symbol.
func (c *SymbolCache) Symbol(symbol string) (types.SymbolInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.info[symbol]
	return s, ok
}
