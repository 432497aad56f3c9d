package client

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/http/httpguts"
)

const (
	defaultConnectTimeout = 15 * time.Second
	defaultTimeout        = 8 * time.Second
	defaultUserAgent      = "Goodhill for Go"

	minTimeout = 100 * time.Millisecond
	maxTimeout = 5 * time.Minute
)

// protectedHeaders are part of the signed request and cannot be set with
// [WithRequestHeader].
var protectedHeaders = []string{
	"Content-Type",
	"Date",
	"Authorization",
	"X-Auth-Signedheaders",
	"Host",
}

type Option func(*Options)

type Options struct {
	connectTimeout time.Duration
	timeout        time.Duration
	requestLogger  RequestLogger
	requestHeaders map[string]string
	caBundlePath   string
	caCertificates []byte
	transport      http.RoundTripper
	clock          func() time.Time
}

func newClientOptions() *Options {
	return &Options{
		connectTimeout: defaultConnectTimeout,
		timeout:        defaultTimeout,
		requestLogger:  &NoopLogger{},
		requestHeaders: map[string]string{
			"User-Agent": defaultUserAgent,
		},
		clock: time.Now,
	}
}

// WithConnectTimeout sets how long a single attempt may spend establishing
// the connection (TCP and TLS) to a host. Values below 100ms are ignored.
func WithConnectTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		if timeout >= minTimeout {
			o.connectTimeout = timeout
		}
	}
}

// WithTimeout sets the total time budget of a single attempt against one
// host. Values below 100ms are ignored.
func WithTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		if timeout >= minTimeout {
			o.timeout = timeout
		}
	}
}

func WithRequestLogger(logger RequestLogger) Option {
	return func(o *Options) {
		if logger != nil {
			o.requestLogger = logger
		}
	}
}

// WithRequestHeader adds a header to every request. Invalid names or values
// and the headers covered by the signature are ignored.
func WithRequestHeader(header, value string) Option {
	return func(o *Options) {
		header = http.CanonicalHeaderKey(strings.TrimSpace(header))

		if header == "" || !httpguts.ValidHeaderFieldName(header) || !httpguts.ValidHeaderFieldValue(value) {
			return
		}

		for _, protected := range protectedHeaders {
			if strings.EqualFold(header, protected) {
				return
			}
		}

		o.requestHeaders[header] = value
	}
}

func WithUserAgent(userAgent string) Option {
	return WithRequestHeader("User-Agent", userAgent)
}

// WithCABundle trusts the PEM certificates in the file at path instead of
// the system roots.
func WithCABundle(path string) Option {
	return func(o *Options) {
		o.caBundlePath = strings.TrimSpace(path)
	}
}

// WithCACertificates trusts the given PEM certificates instead of the system
// roots. They are combined with [WithCABundle] when both are set.
func WithCACertificates(pemCerts []byte) Option {
	return func(o *Options) {
		if len(pemCerts) > 0 {
			o.caCertificates = append(o.caCertificates, pemCerts...)
		}
	}
}

// WithTransport replaces the round tripper used for every attempt. The
// connect timeout and TLS settings only apply to the default transport.
func WithTransport(transport http.RoundTripper) Option {
	return func(o *Options) {
		if transport != nil {
			o.transport = transport
		}
	}
}

// WithClock sets the time source used for the Date header.
func WithClock(clock func() time.Time) Option {
	return func(o *Options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

func (o *Options) Validate() error {
	if o.connectTimeout < minTimeout {
		return fmt.Errorf("connectTimeout must be at least %v", minTimeout)
	}

	if o.connectTimeout > maxTimeout {
		return fmt.Errorf("connectTimeout must not exceed %v", maxTimeout)
	}

	if o.timeout < minTimeout {
		return fmt.Errorf("timeout must be at least %v", minTimeout)
	}

	if o.timeout > maxTimeout {
		return fmt.Errorf("timeout must not exceed %v", maxTimeout)
	}

	if o.requestLogger == nil {
		return errors.New("requestLogger must not be nil")
	}

	if o.clock == nil {
		return errors.New("clock must not be nil")
	}

	return nil
}
