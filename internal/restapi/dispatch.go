package restapi

import (
	"context"
	"time"

	"github.com/0xtitan6/binancefutures/internal/wire"
)

// recvWindowDefault is the signature validity window Binance allows by
// default, carried on every TRADE/USER_DATA request via the recvWindow
// argument.
const recvWindowDefault = 5000

// dispatch signs and enqueues a request, decoding the reply into a fresh
// *T on success and invoking cb from the dispatcher goroutine — exactly
// where every other callback fires, preserving the FIFO callback order
//. PT is constrained to "*T that implements
// Decodable" so callers get back a concrete typed pointer with no
// reflection or intermediate map involved, the generics-based stand-in for
// a dispatch-by-response-type design.
func dispatch[T any, PT interface {
	*T
	Decodable
}](ctx context.Context, p *Pipeline, verb wire.Verb, basePath string, args *wire.ArgList, class wire.SecurityClass, cb func(PT, error)) {
	if !p.creds.CanDispatch(class) {
		cb(nil, &ErrCredentialsRequired{Class: class.String()})
		return
	}

	if class.RequiresSignature() {
		args.Set("timestamp", wire.ArgInt64(time.Now().UnixMilli()))
		if !args.Has("recvWindow") {
			args.Set("recvWindow", wire.ArgInt64(recvWindowDefault))
		}
	}

	signed := wire.Sign(verb, basePath, args, class, p.creds)

	req := &pendingRequest{
		ctx:    ctx,
		verb:   verb,
		class:  class,
		signed: signed,
	}
	req.complete = func(statusCode int, body []byte, connHeader string, transportErr error) {
		if transportErr != nil {
			cb(nil, transportErr)
			return
		}
		if apiErr := checkAPIError(statusCode, body); apiErr != nil {
			cb(nil, apiErr)
			return
		}
		var zero T
		ptr := PT(&zero)
		if err := ptr.AssignFrom(body); err != nil {
			cb(nil, err)
			return
		}
		cb(ptr, nil)
	}

	if err := p.enqueue(req); err != nil {
		cb(nil, err)
	}
}

// checkAPIError reports the structured protocol error Binance returns on
// failure: an HTTP status outside 2xx, or a JSON body whose "code" field is
// present and non-zero.
func checkAPIError(statusCode int, body []byte) error {
	code, present := wire.D.Code(body)
	if present && code != 0 {
		return &APIError{HTTPStatus: statusCode, Code: code, Message: wire.D.Message(body), Body: string(body)}
	}
	if statusCode < 200 || statusCode >= 300 {
		return &APIError{HTTPStatus: statusCode, Body: string(body)}
	}
	return nil
}
