// Package restapi implements the REST request pipeline: one
// keep-alive HTTP client per endpoint family, a FIFO of pending requests
// served by a single dispatcher goroutine, HMAC signing via internal/wire,
// a local sliding-window rate gate, and a keep-alive ping timer.
package restapi

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/0xtitan6/binancefutures/internal/wire"
	"github.com/0xtitan6/binancefutures/pkg/types"
)

// State is the pipeline's connection lifecycle. Because a single
// dispatcher goroutine is the only mutator, no locking is needed around
// reads from within that goroutine; external readers use State() (atomic).
type State int32

const (
	Disconnected State = iota
	Connecting
	Idle
	Writing
	Reading
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "DISCONNECTED"
	case Connecting:
		return "CONNECTING"
	case Idle:
		return "IDLE"
	case Writing:
		return "WRITING"
	case Reading:
		return "READING"
	default:
		return "UNKNOWN"
	}
}

const (
	requestDeadline   = 15 * time.Second
	keepAlivePeriod   = 15 * time.Second
	defaultQueueDepth = 256
)

// Option configures a Pipeline at construction time.
type Option func(*Pipeline)

// WithInsecureSkipVerify disables TLS peer verification. Per DESIGN.md's
// resolution of the corresponding Open Question, this is opt-out: the
// default is secure, and callers must explicitly ask for test-environment
// behavior.
func WithInsecureSkipVerify() Option {
	return func(p *Pipeline) { p.insecureSkipVerify = true }
}

// WithRateLimit sets the local advisory dispatch gate. A
// non-positive limit disables it.
func WithRateLimit(limit int, window time.Duration) Option {
	return func(p *Pipeline) { p.rlLimit, p.rlWindow = limit, window }
}

// WithLogger attaches a structured logger; defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// Pipeline is a REST request pipeline bound to a single base URL (e.g. the
// USDT-M futures REST host). One Pipeline multiplexes every request over a
// single keep-alive HTTP connection pool, serialized through one dispatcher
// goroutine.
type Pipeline struct {
	baseURL string
	creds   wire.Credentials
	logger  *slog.Logger

	insecureSkipVerify bool
	rlLimit            int
	rlWindow           time.Duration

	http *resty.Client
	dns  *dnsCache
	rl   *RateLimiter

	state atomic.Int32

	queue    chan *pendingRequest
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	reqCount atomic.Int64
}

// NewPipeline creates a pipeline targeting baseURL (e.g.
// "https://fapi.binance.com"). Call Connect before dispatching requests.
func NewPipeline(baseURL string, creds wire.Credentials, opts ...Option) *Pipeline {
	p := &Pipeline{
		baseURL:  baseURL,
		creds:    creds,
		logger:   slog.Default(),
		rlLimit:  0,
		rlWindow: time.Second,
		queue:    make(chan *pendingRequest, defaultQueueDepth),
		stopCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.rl = NewRateLimiter(p.rlLimit, p.rlWindow)
	p.state.Store(int32(Disconnected))
	return p
}

// State returns the pipeline's current state.
func (p *Pipeline) State() State { return State(p.state.Load()) }

// Connect opens the keep-alive HTTP client and starts the dispatcher and
// keep-alive ping goroutines. Safe to call again after a close to
// reconnect.
func (p *Pipeline) Connect(ctx context.Context) error {
	p.state.Store(int32(Connecting))

	p.dns = newDNSCache()
	dialer := &net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}
	transport := &http.Transport{
		DialContext:         p.dns.dialContext(dialer),
		TLSClientConfig:     &tls.Config{InsecureSkipVerify: p.insecureSkipVerify}, //nolint:gosec // opt-in only
		MaxIdleConnsPerHost: 1,
		IdleConnTimeout:     90 * time.Second,
	}

	p.http = resty.New().
		SetBaseURL(p.baseURL).
		SetTransport(transport).
		SetTimeout(requestDeadline)

	p.stopCh = make(chan struct{})
	p.stopOnce = sync.Once{}
	p.rl.Close()
	p.rl = NewRateLimiter(p.rlLimit, p.rlWindow)
	p.state.Store(int32(Idle))

	p.wg.Add(2)
	go p.dispatchLoop()
	go p.keepAliveLoop()

	p.logger.Info("rest pipeline connected", "base_url", p.baseURL)
	return nil
}

// Close stops the dispatcher and keep-alive goroutines and marks the
// pipeline DISCONNECTED. The queue is left intact —, callers
// must Connect again to resume.
func (p *Pipeline) Close() {
	p.stopOnce.Do(func() {
		close(p.stopCh)
	})
	p.wg.Wait()
	p.state.Store(int32(Disconnected))
	if p.dns != nil {
		p.dns.Close()
	}
	p.rl.Close()
}

// enqueue appends a signed request to the FIFO. If the pipeline is
// DISCONNECTED, ErrPipelineClosed is returned immediately and the request
// is not queued — the caller must resend after reconnecting.
func (p *Pipeline) enqueue(req *pendingRequest) error {
	if p.State() == Disconnected {
		return ErrPipelineClosed{}
	}
	select {
	case p.queue <- req:
		return nil
	default:
		return fmt.Errorf("binance: rest pipeline queue full (depth %d)", defaultQueueDepth)
	}
}

// dispatchLoop is the single consumer of the FIFO: at most one request is
// ever in flight, and because this goroutine is the only one invoking
// callbacks, callbacks fire in strictly the order requests were enqueued
//.
func (p *Pipeline) dispatchLoop() {
	defer p.wg.Done()
	for {
		select {
		case <-p.stopCh:
			return
		case req := <-p.queue:
			p.serve(req)
		}
	}
}

func (p *Pipeline) serve(req *pendingRequest) {
	reqCtx := req.ctx
	if reqCtx == nil {
		reqCtx = context.Background()
	}

	if req.class != wire.Public {
		if err := p.rl.Wait(reqCtx); err != nil {
			req.complete(0, nil, "", err)
			return
		}
	}

	p.state.Store(int32(Writing))
	r := p.http.R().SetContext(reqCtx)
	for k, v := range req.signed.Headers {
		r.SetHeader(k, v)
	}
	if req.signed.Body != "" {
		r.SetBody(req.signed.Body)
	}

	p.state.Store(int32(Reading))
	p.reqCount.Add(1)

	resp, err := p.execute(r, req.verb, req.signed.Path)

	if err != nil {
		p.logger.Warn("rest pipeline transport error, closing", "error", err, "path", req.signed.Path)
		p.state.Store(int32(Disconnected))
		req.complete(0, nil, "", err)
		return
	}

	connHeader := resp.Header().Get("Connection")
	p.state.Store(int32(Idle))
	req.complete(resp.StatusCode(), resp.Body(), connHeader, nil)

	if connHeader == "close" {
		p.logger.Info("server requested connection close, reconnecting")
		p.http.GetClient().CloseIdleConnections()
	}
}

func (p *Pipeline) execute(r *resty.Request, verb wire.Verb, path string) (*resty.Response, error) {
	switch verb {
	case wire.GET:
		return r.Get(path)
	case wire.POST:
		return r.Post(path)
	case wire.PUT:
		return r.Put(path)
	case wire.DELETE:
		return r.Delete(path)
	default:
		return nil, fmt.Errorf("binance: unsupported verb %q", verb)
	}
}

// keepAliveLoop issues an unauthenticated GET /fapi/v1/ping whenever the
// pipeline is otherwise idle. If a write
// looks to be in progress the tick is simply skipped — the next tick will
// retry, which is the reschedule-on-busy behavior is required.
func (p *Pipeline) keepAliveLoop() {
	defer p.wg.Done()
	ticker := time.NewTicker(keepAlivePeriod)
	defer ticker.Stop()
	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			if p.State() != Idle {
				continue
			}
			Ping(context.Background(), p, func(_ *types.PingResponse, err error) {
				if err != nil {
					p.logger.Debug("keep-alive ping failed", "error", err)
				}
			})
		}
	}
}
