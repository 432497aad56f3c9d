package client

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
)

// newRestyClient builds the HTTP client shared by every attempt. Retries are
// disabled: each host gets exactly one attempt and failover is handled by
// [Client.Request].
func newRestyClient(o *Options) (*resty.Client, error) {
	transport := o.transport
	if transport == nil {
		tlsConfig, err := newTLSConfig(o)
		if err != nil {
			return nil, err
		}

		transport = &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   o.connectTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSClientConfig:     tlsConfig,
			TLSHandshakeTimeout: o.connectTimeout,
			ForceAttemptHTTP2:   true,
			MaxIdleConns:        10,
			IdleConnTimeout:     90 * time.Second,
		}
	}

	return resty.New().
		SetTransport(transport).
		SetTimeout(o.timeout).
		SetRetryCount(0).
		SetRedirectPolicy(noRedirects).
		SetLogger(o.requestLogger), nil
}

// noRedirects hands 3xx answers back to the caller unfollowed, so they are
// classified like any other unexpected status and the next host is tried.
var noRedirects = resty.RedirectPolicyFunc(func(_ *http.Request, _ []*http.Request) error {
	return http.ErrUseLastResponse
})

// newTLSConfig returns a TLS configuration that verifies the server
// certificate chain against the configured roots but not the server name.
// The service is reached through several host names and addresses that its
// certificate does not all list.
func newTLSConfig(o *Options) (*tls.Config, error) {
	roots, err := loadRoots(o)
	if err != nil {
		return nil, err
	}

	return &tls.Config{
		MinVersion: tls.VersionTLS12,
		RootCAs:    roots,
		// Chain verification happens in VerifyConnection.
		InsecureSkipVerify: true, //nolint:gosec
		VerifyConnection: func(cs tls.ConnectionState) error {
			return verifyChain(cs, roots)
		},
	}, nil
}

// loadRoots returns nil (system roots) unless CA material was configured.
func loadRoots(o *Options) (*x509.CertPool, error) {
	if o.caBundlePath == "" && len(o.caCertificates) == 0 {
		return nil, nil
	}

	pool := x509.NewCertPool()

	if o.caBundlePath != "" {
		bundle, err := os.ReadFile(o.caBundlePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA bundle: %w", err)
		}

		if !pool.AppendCertsFromPEM(bundle) {
			return nil, fmt.Errorf("no certificates found in CA bundle %s", o.caBundlePath)
		}
	}

	if len(o.caCertificates) > 0 && !pool.AppendCertsFromPEM(o.caCertificates) {
		return nil, errors.New("no certificates found in CA certificates")
	}

	return pool, nil
}

func verifyChain(cs tls.ConnectionState, roots *x509.CertPool) error {
	if len(cs.PeerCertificates) == 0 {
		return errors.New("tls: server presented no certificates")
	}

	intermediates := x509.NewCertPool()
	for _, cert := range cs.PeerCertificates[1:] {
		intermediates.AddCert(cert)
	}

	_, err := cs.PeerCertificates[0].Verify(x509.VerifyOptions{
		Roots:         roots,
		Intermediates: intermediates,
	})

	return err
}
