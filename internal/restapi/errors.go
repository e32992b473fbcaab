package restapi

import "fmt"

// APIError is Binance's structured protocol error: an HTTP status outside 2xx,
// or a JSON body whose "code" field is present and non-zero. It does not
// disable the pipeline — only the in-flight request is aborted.
type APIError struct {
	HTTPStatus int
	Code       int64
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("binance: http %d code %d: %s", e.HTTPStatus, e.Code, e.Message)
	}
	return fmt.Sprintf("binance: http %d: %s", e.HTTPStatus, e.Body)
}

// ErrPipelineClosed is delivered to a request's callback when the pipeline
// is not connected. Callers must call Connect again to resume.
type ErrPipelineClosed struct{}

func (ErrPipelineClosed) Error() string { return "binance: rest pipeline is closed" }

// ErrCredentialsRequired is returned when a request's security class
// requires credentials the pipeline was not given.
type ErrCredentialsRequired struct {
	Class string
}

func (e *ErrCredentialsRequired) Error() string {
	return fmt.Sprintf("binance: security class %s requires credentials", e.Class)
}
