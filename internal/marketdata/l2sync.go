package marketdata

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/0xtitan6/binancefutures/internal/restapi"
	"github.com/0xtitan6/binancefutures/internal/wire"
	"github.com/0xtitan6/binancefutures/internal/wsstream"
	"github.com/0xtitan6/binancefutures/pkg/types"
)

const defaultDepthLimit = 1000

// L2Sync composes a REST pipeline and a WebSocket stream to maintain a
// live L2 order book: subscribe to the diff stream, fetch a REST snapshot,
// buffer diffs received in the interim, reconcile, then apply further
// diffs in steady state until a sequence gap forces a full resync.
type L2Sync struct {
	symbol     string
	precision  int
	depthLimit int
	rest       *restapi.Pipeline
	stream     *wsstream.Stream
	logger     *slog.Logger

	mu     sync.RWMutex
	book   *Book
	cursor int64
}

// L2SyncOption configures an L2Sync at construction time.
type L2SyncOption func(*L2Sync)

// WithL2Logger attaches a structured logger; defaults to slog.Default().
func WithL2Logger(l *slog.Logger) L2SyncOption {
	return func(s *L2Sync) { s.logger = l }
}

// WithDepthLimit overrides the REST snapshot depth (default 1000).
func WithDepthLimit(limit int) L2SyncOption {
	return func(s *L2Sync) { s.depthLimit = limit }
}

// NewL2Sync creates a synchroniser for symbol, using precision (from
// exchangeInfo) for the book's fixed-point price keys.
func NewL2Sync(symbol string, precision int, rest *restapi.Pipeline, stream *wsstream.Stream, opts ...L2SyncOption) *L2Sync {
	s := &L2Sync{
		symbol:     symbol,
		precision:  precision,
		depthLimit: defaultDepthLimit,
		rest:       rest,
		stream:     stream,
		logger:     slog.Default().With("component", "l2sync", "symbol", symbol),
		book:       NewBook(precision),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns a copy of the current book — the external-observer
// accessor the concurrency model requires.
func (s *L2Sync) Snapshot() (bids, asks []PriceQty) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.book.Snapshot()
}

// Cursor returns the last applied final_id, for diagnostics/tests.
func (s *L2Sync) Cursor() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cursor
}

// Run drives the synchroniser until ctx is cancelled: it resubscribes and
// resynchronises from a fresh snapshot every time steady-state detects a
// sequence gap.
func (s *L2Sync) Run(ctx context.Context) error {
	for {
		err := s.syncOnce(ctx)
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.logger.Warn("sequence gap detected, resynchronising")
	}
}

// syncOnce performs one subscribe→snapshot→reconcile→steady-state cycle.
// It returns nil when steady state breaks on a gap (caller resyncs) and a
// non-nil error only when ctx is done, the subscribe request cannot be sent
// or queued, or the snapshot fetch itself fails.
func (s *L2Sync) syncOnce(ctx context.Context) error {
	topic := wsstream.DepthTopic(s.symbol, 0)
	if err := s.stream.Subscribe([]string{topic}); err != nil {
		return err
	}

	var pending []types.DepthUpdate
	snapCh := make(chan *types.DepthSnapshot, 1)
	errCh := make(chan error, 1)

	restapi.Depth(ctx, s.rest, s.symbol, s.depthLimit, func(snap *types.DepthSnapshot, err error) {
		if err != nil {
			errCh <- err
			return
		}
		snapCh <- snap
	})

	var snap *types.DepthSnapshot
collect:
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errCh:
			return err
		case snap = <-snapCh:
			break collect
		case f := <-s.stream.Frames():
			if du, ok := s.decodeDepthUpdate(f); ok {
				pending = append(pending, du)
			}
		}
	}

	s.mu.Lock()
	s.book.LoadSnapshot(toPriceQty(snap.Bids), toPriceQty(snap.Asks))
	s.cursor = snap.LastUpdateID
	s.mu.Unlock()

	sort.Slice(pending, func(i, j int) bool { return pending[i].FinalUpdateID < pending[j].FinalUpdateID })
	for _, du := range pending {
		if du.FinalUpdateID < s.cursor {
			continue
		}
		s.applyDiff(du)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case f := <-s.stream.Frames():
			du, ok := s.decodeDepthUpdate(f)
			if !ok {
				continue
			}
			s.mu.RLock()
			cursor := s.cursor
			s.mu.RUnlock()
			if du.FinalUpdateID <= cursor {
				continue
			}
			if du.PrevFinalUpdateID != cursor {
				return nil
			}
			s.applyDiff(du)
		}
	}
}

func (s *L2Sync) applyDiff(du types.DepthUpdate) {
	s.mu.Lock()
	s.book.ApplyDiff(toPriceQty(du.Bids), toPriceQty(du.Asks))
	s.cursor = du.FinalUpdateID
	s.mu.Unlock()
}

// decodeDepthUpdate unwraps a combined-stream envelope if present, decodes
// a depthUpdate event, and filters out frames for other symbols or
// subscribe/unsubscribe acknowledgments.
func (s *L2Sync) decodeDepthUpdate(f wsstream.Frame) (types.DepthUpdate, bool) {
	if f.IsAck() {
		return types.DepthUpdate{}, false
	}
	raw := f.Data
	if payload, found, err := wire.RawObject(raw, "data"); err == nil && found {
		raw = payload
	}
	var eventType string
	wire.D.AssignString(raw, "e", &eventType)
	if eventType != "" && eventType != "depthUpdate" {
		return types.DepthUpdate{}, false
	}
	var du types.DepthUpdate
	if err := du.AssignFrom(raw); err != nil {
		return types.DepthUpdate{}, false
	}
	if du.Symbol != "" && !strings.EqualFold(du.Symbol, s.symbol) {
		return types.DepthUpdate{}, false
	}
	return du, true
}

func toPriceQty(levels []types.DepthLevel) []PriceQty {
	out := make([]PriceQty, len(levels))
	for i, l := range levels {
		out[i] = PriceQty{Price: l.Price, Qty: l.Qty}
	}
	return out
}
