// Package binancefutures is a client for the Binance USDT-M futures REST
// and WebSocket APIs.
//
// Client wires together the REST pipeline (internal/restapi), WebSocket
// streams (internal/wsstream) and the market-data synchronisers
// (internal/marketdata) into a single New() → Start() → Stop() lifecycle,
// the same shape polymarket-mm's engine.Engine uses to orchestrate its
// exchange client, scanner and WebSocket feeds.
package binancefutures

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/0xtitan6/binancefutures/internal/config"
	"github.com/0xtitan6/binancefutures/internal/marketdata"
	"github.com/0xtitan6/binancefutures/internal/restapi"
	"github.com/0xtitan6/binancefutures/internal/runtime"
	"github.com/0xtitan6/binancefutures/internal/wire"
	"github.com/0xtitan6/binancefutures/internal/wsstream"
)

// Client is the top-level handle applications hold: it owns the REST
// pipeline, the symbol/precision cache, and one order-book synchroniser
// per symbol configured with MaintainBook.
type Client struct {
	cfg    *config.Config
	logger *slog.Logger

	rest      *restapi.Pipeline
	symbols   *marketdata.SymbolCache
	listenKey *marketdata.ListenKeyManager

	mu         sync.RWMutex
	books      map[string]*marketdata.L2Sync
	userStream *wsstream.Stream

	group *runtime.Group
}

// New creates a Client from cfg. It does not connect — call Start for that.
func New(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	creds := wire.Credentials{Key: cfg.API.Key, Secret: cfg.API.Secret}
	restOpts := []restapi.Option{
		restapi.WithLogger(logger),
		restapi.WithRateLimit(cfg.RateLimit.RequestsPerWindow, cfg.RateLimit.Window),
	}
	if cfg.API.InsecureSkip {
		restOpts = append(restOpts, restapi.WithInsecureSkipVerify())
	}
	rest := restapi.NewPipeline(cfg.API.RESTBaseURL, creds, restOpts...)

	return &Client{
		cfg:       cfg,
		logger:    logger,
		rest:      rest,
		symbols:   marketdata.NewSymbolCache(rest, marketdata.WithSymbolRefreshInterval(cfg.RateLimit.SymbolRefreshInterval), marketdata.WithSymbolCacheLogger(logger)),
		listenKey: marketdata.NewListenKeyManager(rest, logger),
		books:     make(map[string]*marketdata.L2Sync),
	}, nil
}

// Rest returns the underlying REST pipeline, for callers that need the
// typed request facade in internal/restapi directly (order placement,
// account queries, and so on).
func (c *Client) Rest() *restapi.Pipeline {
	return c.rest
}

// Book returns the L2 synchroniser for symbol, if it was configured with
// maintain_book: true.
func (c *Client) Book(symbol string) (*marketdata.L2Sync, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.books[strings.ToUpper(symbol)]
	return b, ok
}

// UserDataFrames returns the raw frame channel of the user-data stream
// bound to the acquired listen key, or false if no API credentials were
// configured. Decoding frames into UserOrderUpdate/AccountUpdate is the
// caller's job, same as every other wsstream.Stream.
func (c *Client) UserDataFrames() (<-chan wsstream.Frame, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.userStream == nil {
		return nil, false
	}
	return c.userStream.Frames(), true
}

// Start connects the REST pipeline, fetches exchange info, opens one
// WebSocket stream per tracked symbol, and runs every background loop
// under a shared supervisor until ctx is cancelled or Stop is called.
// Start blocks until those loops exit; run it in its own goroutine.
func (c *Client) Start(ctx context.Context) error {
	if err := c.rest.Connect(ctx); err != nil {
		return fmt.Errorf("connect rest pipeline: %w", err)
	}
	if err := c.symbols.Refresh(ctx); err != nil {
		return fmt.Errorf("initial exchange info fetch: %w", err)
	}

	c.group = runtime.New(ctx)
	c.group.Go(func(ctx context.Context) error { return c.symbols.Run(ctx) })

	if c.cfg.API.Key != "" && c.cfg.API.Secret != "" {
		if err := c.startUserStream(ctx); err != nil {
			return fmt.Errorf("start user data stream: %w", err)
		}
		c.group.Go(func(ctx context.Context) error { return c.listenKey.Run(ctx) })
	}

	for _, sc := range c.cfg.Symbols {
		if !sc.MaintainBook {
			continue
		}
		if err := c.startBook(sc.Symbol); err != nil {
			return err
		}
	}

	return c.group.Wait()
}

// startUserStream acquires a listen key and binds a WebSocket stream to
// /ws/<listenKey> for account/order events. listenKey.Run only renews an
// already-acquired key, so Acquire must run first.
func (c *Client) startUserStream(ctx context.Context) error {
	key, err := c.listenKey.Acquire(ctx)
	if err != nil {
		return err
	}

	stream := wsstream.New(c.cfg.API.WSBaseURL+"/ws/"+key, wsstream.WithLogger(c.logger))
	c.mu.Lock()
	c.userStream = stream
	c.mu.Unlock()

	c.group.Go(func(ctx context.Context) error { return stream.Run(ctx) })
	return nil
}

func (c *Client) startBook(symbol string) error {
	symbol = strings.ToUpper(symbol)
	precision, err := c.symbols.PricePrecision(symbol)
	if err != nil {
		return fmt.Errorf("start book for %s: %w", symbol, err)
	}

	stream := wsstream.New(c.cfg.API.WSBaseURL+"/ws", wsstream.WithLogger(c.logger))
	sync := marketdata.NewL2Sync(symbol, precision, c.rest, stream, marketdata.WithL2Logger(c.logger))

	c.mu.Lock()
	c.books[symbol] = sync
	c.mu.Unlock()

	c.group.Go(func(ctx context.Context) error { return stream.Run(ctx) })
	c.group.Go(func(ctx context.Context) error { return sync.Run(ctx) })
	return nil
}

// Stop cancels every background loop and closes the REST pipeline.
// Safe to call even if Start never returned.
func (c *Client) Stop() {
	if c.group != nil {
		c.group.Cancel()
	}
	c.rest.Close()
}
