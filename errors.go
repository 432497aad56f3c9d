package client

import (
	"errors"
	"fmt"
)

// ErrorKind tells whether an [Error] is authoritative for the whole request
// or only for the host that produced it.
type ErrorKind int

const (
	// KindTransport marks a failure local to one host: connection errors,
	// timeouts and unexpected statuses. The dispatcher moves on to the
	// next host.
	KindTransport ErrorKind = iota

	// KindService marks an answer from the service itself (400, 403, 404,
	// unparsable body) or the exhaustion of every host. It stops failover.
	KindService
)

func (k ErrorKind) String() string {
	switch k {
	case KindService:
		return "service"
	case KindTransport:
		return "transport"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Sentinel errors wrapped by [Error]. Match them with errors.Is.
var (
	ErrHostsUnreachable  = errors.New("hosts unreachable")
	ErrBadRequest        = errors.New("bad request")
	ErrUnauthorized      = errors.New("invalid application id or api key")
	ErrNotFound          = errors.New("resource does not exist")
	ErrMalformedResponse = errors.New("malformed response")
	ErrUnexpectedStatus  = errors.New("unexpected status")
	ErrUnsupportedMethod = errors.New("unsupported method")
	ErrCategoryCycle     = errors.New("category ancestry contains a cycle")
)

// Error is the error returned by [Client.Request] and the resource methods.
type Error struct {
	Kind ErrorKind

	// Host is the host entry that produced the error. Empty for
	// ErrHostsUnreachable.
	Host   string
	Method string
	URL    string

	// StatusCode is zero when no HTTP response was received.
	StatusCode int

	// Message is the server provided message or a default for the status.
	Message string

	// Body holds the raw response body for unexpected statuses.
	Body []byte

	Err error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.StatusCode != 0:
		return fmt.Sprintf("%d: %s", e.StatusCode, e.Body)
	case e.Err != nil && e.URL != "":
		return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Kind.String() + " error"
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsServiceError reports whether err carries an [Error] of kind
// [KindService].
func IsServiceError(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindService
}

// IsTransportError reports whether err carries an [Error] of kind
// [KindTransport].
func IsTransportError(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindTransport
}

func serviceError(message string, sentinel error) *Error {
	return &Error{Kind: KindService, Message: message, Err: sentinel}
}
