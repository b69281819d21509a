package gateway

import "fmt"

type ErrorKind int

const (
	// StartFailed: the call-creation request was rejected or never
	// reached the gateway.
	StartFailed ErrorKind = iota + 1
	// FetchFailed: the call-details lookup returned a non-success
	// status or did not complete within the fetch bound.
	FetchFailed
	// DecodeFailed: the lookup succeeded but the body was not valid
	// JSON.
	DecodeFailed
)

func (k ErrorKind) String() string {
	switch k {
	case StartFailed:
		return "start_failed"
	case FetchFailed:
		return "fetch_failed"
	case DecodeFailed:
		return "decode_failed"
	}
	return "unknown"
}

// Error is the gateway failure taxonomy. Status and Body are set when
// the gateway answered; cause when the request itself broke.
type Error struct {
	Kind   ErrorKind
	Status int
	Body   string
	cause  error
}

func (e *Error) Error() string {
	switch {
	case e.cause != nil:
		return fmt.Sprintf("gateway %s: %v", e.Kind, e.cause)
	case e.Body != "":
		return fmt.Sprintf("gateway %s: http %d: %s", e.Kind, e.Status, e.Body)
	default:
		return fmt.Sprintf("gateway %s: http %d", e.Kind, e.Status)
	}
}

func (e *Error) Unwrap() error { return e.cause }
