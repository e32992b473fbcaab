// Package wsstream implements the WebSocket stream client: a single
// connection carrying zero or more subscribed topics, delivering raw
// frames to the caller and reconnecting with backoff on failure.
//
// Binance multiplexes many topics over one socket via the combined-stream
// endpoint, so a Stream here is topic-agnostic rather than tied to a fixed
// set of feeds: callers Subscribe/Unsubscribe to
// arbitrary topic strings (e.g. "btcusdt@depth", "btcusdt@markPrice") and
// read frames off one channel, demultiplexing by the frame's own "stream"
// field if attached via a combined-stream URL, or treating every frame as
// belonging to the single raw stream if connected directly to
// "/ws/<topic>".
package wsstream

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	readTimeout      = 10 * time.Minute // Binance pings every ~3 min; this is generous slack
	maxReconnectWait = 30 * time.Second
	writeTimeout     = 10 * time.Second
	frameBufferSize  = 1024
	outboundQueueCap = 64
)

// Frame is one inbound message, handed to the caller unparsed — decoding
// into a concrete event type is the market-data engine's job, not
// this package's.
type Frame struct {
	Data []byte
}

// controlMessage is a SUBSCRIBE/UNSUBSCRIBE request sent to the server.
// Binance echoes the id back in the {"result":null,"id":N} acknowledgment.
type controlMessage struct {
	Method string   `json:"method"`
	Params []string `json:"params"`
	ID     int64    `json:"id"`
}

// Stream manages a single WebSocket connection. It reconnects with
// exponential backoff and replays every currently-subscribed topic on
// reconnect.
type Stream struct {
	url    string
	logger *slog.Logger

	connMu sync.Mutex
	conn   *websocket.Conn

	topicsMu sync.RWMutex
	topics   map[string]bool

	frameCh chan Frame

	nextID atomic.Int64

	// outbound queues control messages written before the first connect
	// completes, flushed in order once the connection is established.
	outboundMu sync.Mutex
	outbound   []controlMessage
}

// Option configures a Stream at construction time.
type Option func(*Stream)

// WithLogger attaches a structured logger; defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Stream) { s.logger = l }
}

// New creates a Stream targeting wsURL (e.g.
// "wss://fstream.binance.com/stream" for the combined endpoint, or
// "wss://fstream.binance.com/ws/<listenKey>" for a single raw stream).
func New(wsURL string, opts ...Option) *Stream {
	s := &Stream{
		url:     wsURL,
		logger:  slog.Default(),
		topics:  make(map[string]bool),
		frameCh: make(chan Frame, frameBufferSize),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Frames returns a read-only channel of inbound frames.
func (s *Stream) Frames() <-chan Frame { return s.frameCh }

// Run connects and maintains the connection with auto-reconnect. Blocks
// until ctx is cancelled.
func (s *Stream) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		err := s.connectAndRead(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		s.logger.Warn("websocket stream disconnected, reconnecting", "error", err, "backoff", backoff)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > maxReconnectWait {
			backoff = maxReconnectWait
		}
	}
}

// Subscribe adds topics and, once connected, sends a SUBSCRIBE control
// message with a monotonically increasing request id.
func (s *Stream) Subscribe(topics []string) error {
	s.topicsMu.Lock()
	for _, t := range topics {
		s.topics[t] = true
	}
	s.topicsMu.Unlock()
	return s.send(controlMessage{Method: "SUBSCRIBE", Params: topics, ID: s.nextID.Add(1)})
}

// Unsubscribe removes topics and sends an UNSUBSCRIBE control message.
func (s *Stream) Unsubscribe(topics []string) error {
	s.topicsMu.Lock()
	for _, t := range topics {
		delete(s.topics, t)
	}
	s.topicsMu.Unlock()
	return s.send(controlMessage{Method: "UNSUBSCRIBE", Params: topics, ID: s.nextID.Add(1)})
}

// Close sends a normal-closure close frame and closes the underlying
// connection, if any.
func (s *Stream) Close() error {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	if s.conn != nil {
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeTimeout))
		return s.conn.Close()
	}
	return nil
}

// send writes a control message if connected, otherwise queues it for
// replay once connectAndRead establishes a connection. Requests are
// always written in the order Subscribe/Unsubscribe was called — the
// single connMu-guarded write path is this package's single-owner-
// goroutine-equivalent serialization point for outbound frames.
func (s *Stream) send(msg controlMessage) error {
	s.connMu.Lock()
	conn := s.conn
	s.connMu.Unlock()

	if conn == nil {
		s.outboundMu.Lock()
		if len(s.outbound) >= outboundQueueCap {
			s.outboundMu.Unlock()
			return fmt.Errorf("binance: websocket outbound queue full")
		}
		s.outbound = append(s.outbound, msg)
		s.outboundMu.Unlock()
		return nil
	}
	return s.writeJSON(conn, msg)
}

func (s *Stream) connectAndRead(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}

	conn.SetPingHandler(func(appData string) error {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		deadline := time.Now().Add(writeTimeout)
		return conn.WriteControl(websocket.PongMessage, nil, deadline)
	})

	s.connMu.Lock()
	s.conn = conn
	s.connMu.Unlock()

	defer func() {
		s.connMu.Lock()
		conn.Close()
		s.conn = nil
		s.connMu.Unlock()
	}()

	if err := s.resubscribeAll(conn); err != nil {
		return fmt.Errorf("resubscribe: %w", err)
	}
	if err := s.flushOutbound(conn); err != nil {
		return fmt.Errorf("flush outbound: %w", err)
	}

	s.logger.Info("websocket stream connected", "url", s.url)

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		s.deliver(data)
	}
}

func (s *Stream) resubscribeAll(conn *websocket.Conn) error {
	s.topicsMu.RLock()
	topics := make([]string, 0, len(s.topics))
	for t := range s.topics {
		topics = append(topics, t)
	}
	s.topicsMu.RUnlock()
	if len(topics) == 0 {
		return nil
	}
	return s.writeJSON(conn, controlMessage{Method: "SUBSCRIBE", Params: topics, ID: s.nextID.Add(1)})
}

func (s *Stream) flushOutbound(conn *websocket.Conn) error {
	s.outboundMu.Lock()
	pending := s.outbound
	s.outbound = nil
	s.outboundMu.Unlock()

	for _, msg := range pending {
		if err := s.writeJSON(conn, msg); err != nil {
			return err
		}
	}
	return nil
}

func (s *Stream) deliver(data []byte) {
	select {
	case s.frameCh <- Frame{Data: data}:
	default:
		s.logger.Warn("frame channel full, dropping message")
	}
}

func (s *Stream) writeJSON(conn *websocket.Conn, v any) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	if conn != s.conn {
		return fmt.Errorf("binance: websocket not connected")
	}
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteJSON(v)
}

// isAck reports whether a raw frame is a SUBSCRIBE/UNSUBSCRIBE
// acknowledgment rather than a data event, so callers can filter them out
// of the frame stream before decoding.
func isAck(data []byte) bool {
	var envelope struct {
		ID *int64 `json:"id"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return false
	}
	return envelope.ID != nil
}

// IsAck reports whether frame is a SUBSCRIBE/UNSUBSCRIBE acknowledgment.
func (f Frame) IsAck() bool { return isAck(f.Data) }
