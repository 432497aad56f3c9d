package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-resty/resty/v2"
)

// Client is a Goodhill API client. It is safe for concurrent use; nothing
// in it changes after [New] returns.
type Client struct {
	apiKey    string
	apiSecret string
	hosts     []string
	options   *Options
	resty     *resty.Client
}

// Response is a successful answer from one host.
type Response struct {
	// Host is the host entry that served the request.
	Host       string
	StatusCode int

	// Body is the raw JSON body.
	Body json.RawMessage

	// Data is the body decoded into generic JSON values (maps, slices,
	// float64, string, bool and nil).
	Data any
}

// Decode unmarshals the response body into v.
func (r *Response) Decode(v any) error {
	if r == nil {
		return errors.New("response is nil")
	}

	return json.Unmarshal(r.Body, v)
}

// New creates a client for the given credentials and hosts. Hosts are tried
// in the order given on every request. A host without a scheme is reached
// over https.
func New(apiKey, apiSecret string, hosts []string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("api key must be set")
	}

	if apiSecret == "" {
		return nil, errors.New("api secret must be set")
	}

	if len(hosts) == 0 {
		return nil, errors.New("at least one host must be set")
	}

	for i, host := range hosts {
		if strings.TrimSpace(host) == "" {
			return nil, fmt.Errorf("host at index %d is empty", i)
		}
	}

	options := newClientOptions()
	for _, opt := range opts {
		opt(options)
	}

	if err := options.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	restyClient, err := newRestyClient(options)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	return &Client{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		hosts:     append([]string(nil), hosts...),
		options:   options,
		resty:     restyClient,
	}, nil
}

// Hosts returns a copy of the host list in failover order.
func (c *Client) Hosts() []string {
	return append([]string(nil), c.hosts...)
}

// Request sends a signed request to the first host able to serve it.
//
// Hosts are tried in order, once each. A host that cannot be reached, times
// out, answers 503, answers a JSON null or answers with an unexpected status
// (redirects included) is skipped. A service error (400, 403, 404 or an
// unparsable body) is returned at once without trying the remaining hosts. When every host fails the last
// transport error is returned, or a service error wrapping
// [ErrHostsUnreachable] if no host produced one.
//
// params is sent as the query string. data is JSON encoded as the body of
// POST and PUT requests.
func (c *Client) Request(ctx context.Context, method, path string, params url.Values, data any) (*Response, error) {
	if c == nil {
		return nil, errors.New("goodhill client is nil")
	}

	method = strings.ToUpper(method)
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMethod, method)
	}

	body, err := encodeBody(method, data)
	if err != nil {
		return nil, err
	}

	rlog := newRequestLog(c.options.requestLogger, method, path)

	var lastErr *Error

	for i, host := range c.hosts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rlog.attempt(host, i, len(c.hosts))

		resp, apiErr := c.doRequest(ctx, rlog, method, host, path, params, body)

		switch {
		case apiErr == nil && resp != nil:
			return resp, nil
		case apiErr == nil:
			continue
		case apiErr.Kind == KindService:
			rlog.rejected(host, apiErr)
			return nil, apiErr
		default:
			rlog.failed(host, apiErr)
			lastErr = apiErr
		}
	}

	rlog.exhausted(len(c.hosts))

	if lastErr == nil {
		return nil, serviceError("Hosts unreachable", ErrHostsUnreachable)
	}

	return nil, lastErr
}

// doRequest performs one signed attempt against host. It returns (nil, nil)
// when the host could not serve the request and the next one should be
// tried.
func (c *Client) doRequest(ctx context.Context, rlog *requestLog, method, host, path string, params url.Values, body []byte) (*Response, *Error) {
	fullURL := requestURL(host, path, params)
	date := c.options.clock().Format(DateFormat)
	signature := Sign(c.apiSecret, method, host, fullURL, date, body)

	req := c.resty.R().
		SetContext(ctx).
		SetHeaders(c.options.requestHeaders).
		SetHeader("Content-type", contentTypeJSON).
		SetHeader("Date", date).
		SetHeader("Authorization", authorization(c.apiKey, signature)).
		SetHeader("X-Auth-SignedHeaders", SignedHeaders)

	if len(body) > 0 {
		req.SetBody(body)
	}

	restyResp, err := req.Execute(method, fullURL)

	resp, apiErr := classify(restyResp, err)
	if apiErr != nil {
		apiErr.Host = host
		apiErr.Method = method
		apiErr.URL = fullURL
		return nil, apiErr
	}

	if resp == nil {
		rlog.unavailable(host, restyResp.StatusCode(), serverMessage(restyResp.Body()))
		return nil, nil
	}

	resp.Host = host

	return resp, nil
}

// requestURL builds the attempt URL. Hosts with an http:// or https://
// scheme are used as given; anything else is reached over https.
func requestURL(host, path string, params url.Values) string {
	base := host
	if !hasHTTPScheme(host) {
		base = "https://" + host
	}

	fullURL := base + path
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	return fullURL
}

func hasHTTPScheme(host string) bool {
	lower := strings.ToLower(host)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// encodeBody returns the JSON body for POST and PUT requests. Empty data
// (nil, empty map, slice or string) produces no body.
func encodeBody(method string, data any) ([]byte, error) {
	if method != http.MethodPost && method != http.MethodPut {
		return nil, nil
	}

	if isEmptyData(data) {
		return nil, nil
	}

	if raw, ok := data.(json.RawMessage); ok {
		return raw, nil
	}

	body, err := json.Marshal(data)
	if err != nil {
		return nil, &Error{Kind: KindService, Method: method, Message: "failed to encode request body: " + err.Error(), Err: err}
	}

	return body, nil
}

func isEmptyData(data any) bool {
	if data == nil {
		return true
	}

	v := reflect.ValueOf(data)
	switch v.Kind() {
	case reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return v.IsNil()
	default:
		return false
	}
}
