package client

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

const (
	// SignedHeaders is the fixed list of headers covered by a request
	// signature. It is sent verbatim in the X-Auth-SignedHeaders header.
	SignedHeaders = "content-type;date;host"

	// DateFormat is the layout of the Date header and of the date line in
	// the canonical request.
	DateFormat = time.RFC1123Z

	contentTypeJSON = "application/json"
)

// Sign computes the hex encoded HMAC-SHA256 signature of a request, keyed
// with secret. host must be the host string exactly as the request URL was
// built from it, since it is removed from fullURL to recover the path.
//
// The same date string must be sent in the Date header.
func Sign(secret, method, host, fullURL, date string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(CanonicalString(method, host, fullURL, date, body)))

	return hex.EncodeToString(mac.Sum(nil))
}

// CanonicalString returns the newline separated string that [Sign] hashes.
//
// Only a leading "http://" is removed from host. A leading "https://" stays
// part of the host line; the server computes the same string.
func CanonicalString(method, host, fullURL, date string, body []byte) string {
	remainder := strings.ReplaceAll(fullURL, host, "")
	path, query, _ := strings.Cut(remainder, "?")

	bodyHash := sha256.Sum256(body)

	return strings.Join([]string{
		strings.ToUpper(method),
		path,
		query,
		"content-type:" + contentTypeJSON,
		"date:" + date,
		"host:" + strings.TrimPrefix(host, "http://"),
		SignedHeaders,
		hex.EncodeToString(bodyHash[:]),
	}, "\n")
}

// authorization returns the Authorization header value for a signature.
func authorization(apiKey, signature string) string {
	return "HMAC " + apiKey + ":" + signature
}
