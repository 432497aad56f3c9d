// Package client provides an HTTP client for the Goodhill search and
// catalog API.
//
// The client wraps [github.com/go-resty/resty/v2] with HMAC request signing
// and ordered failover across a list of hosts.
//
// # Basic Usage
//
//	c, err := client.New("my-key", "my-secret",
//	    []string{"api1.goodhill-solutions.com", "api2.goodhill-solutions.com"},
//	    client.WithCABundle("/etc/goodhill/ca-bundle.pem"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	resp, err := c.Search(ctx, map[string]any{"q": "resistor"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Failover
//
// Every request tries the hosts in the order given to [New], one attempt
// per host, without backoff. A host is skipped when it cannot be reached,
// times out, answers 503, answers a JSON null or answers with any other
// unexpected status. Redirects are not followed. An answer that the service
// itself rejected (400, 403, 404 or a body that is not valid JSON) ends the
// request immediately: another host would give the same answer. Use [IsServiceError] and [IsTransportError] to tell the two
// apart.
//
// # Signing
//
// Requests carry an "Authorization: HMAC <key>:<signature>" header. The
// signature covers the method, path, query, content type, date, host and a
// SHA-256 hash of the body; see [Sign] and [CanonicalString]. It is
// computed again for every host because the host is part of it.
//
// # TLS
//
// The server certificate chain is verified against the system roots or the
// certificates supplied with [WithCABundle] and [WithCACertificates]. The
// server name is not checked against the certificate.
//
// # Logging
//
// Implement [RequestLogger] and supply it via [WithRequestLogger] to
// integrate with your logging library. The default [NoopLogger] discards
// all log output. Secrets and signatures are never logged.
package client
