package restapi

import (
	"context"

	"github.com/0xtitan6/binancefutures/internal/wire"
)

// Decodable is implemented by every typed response record. AssignFrom walks
// a fixed list of (json key, field, coercion) assignments out of the raw
// response body.
type Decodable interface {
	AssignFrom(buf []byte) error
}

// pendingRequest is the FIFO-queued unit of work. It carries everything the
// dispatcher goroutine needs to put the request on the wire and deliver the
// reply, without the dispatcher itself knowing the concrete response type —
// that type is closed over in complete, built by dispatch[T] at Enqueue
// time.
type pendingRequest struct {
	ctx      context.Context
	verb     wire.Verb
	class    wire.SecurityClass
	signed   wire.SignedRequest
	complete func(statusCode int, body []byte, connHeader string, transportErr error)
}
