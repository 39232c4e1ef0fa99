// Copyright 2021 The reconn Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package reconn

import (
	"context"
	"net/url"
	"sync"

	"github.com/gogama/reconn/request"
	"github.com/gogama/reconn/transport"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// A Response is a fully-buffered HTTP response.
type Response = request.Response

// A Client is an HTTP client bound to a single origin. It keeps one
// long-lived connection to the origin and, when a request fails
// because the connection is stale or was closed by the server, it
// rebuilds the connection and retries the request, up to a configured
// bound.
//
// Create Clients with NewClient. Clients hold a live connection, so
// they should be reused rather than created as needed, and closed when
// no longer needed. Client is safe for concurrent use by multiple
// goroutines.
//
// On top of the underlying transport, Client adds the following
// features:
//
// • Client builds requests from a path, headers and params under a
// strict conflict policy, so that misuse is detected before any
// network activity;
//
// • Client merges default headers, set at construction or with
// SetDefaultHeaders, into every request;
//
// • Client retries transport failures, rebuilding the connection
// before each retry, and enforces an overall deadline spanning all
// attempts; and
//
// • Client invokes user-provided handler functions at designated
// plug-in points within the attempt/rebuild loop.
//
// Responses with 4XX and 5XX status codes are returned as ordinary
// responses, not errors.
type Client struct {
	name     string
	endpoint transport.Endpoint
	logger   *zap.Logger
	conns    *connManager
	exec     *executor

	mu       sync.RWMutex
	defaults map[string]string
}

// NewClient returns a Client for the origin named by endpoint, which
// must be an http or https URI such as "https://api.example.com:8443".
// Any path in endpoint is ignored.
//
// NewClient validates cfg and opens the initial connection. It returns
// a *ConfigurationError if the endpoint or configuration is invalid,
// and a *ConnectionError if the connection cannot be opened.
func NewClient(endpoint string, cfg Config) (*Client, error) {
	cfg = cfg.withDefaults()
	logger := cfg.Logger.With(zap.String("client", cfg.Name))

	ep, err := transport.ParseEndpoint(endpoint)
	if err != nil {
		return nil, err
	}
	logger = logger.With(zap.Stringer("endpoint", ep))
	if u, _ := url.Parse(endpoint); u != nil && u.Path != "" && u.Path != "/" {
		logger.Warn("ignoring endpoint path", zap.String("path", u.Path))
	}

	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	defaults, _ := request.Normalize(cfg.DefaultHeaders)

	conns, err := newConnManager(cfg.Opener, ep, cfg.settings(), logger)
	if err != nil {
		return nil, err
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	}

	c := &Client{
		name:     cfg.Name,
		endpoint: ep,
		logger:   logger,
		conns:    conns,
		defaults: defaults,
		exec: &executor{
			conns:    conns,
			policy:   cfg.retryPolicy(),
			timeout:  cfg.RequestTimeout,
			limiter:  limiter,
			handlers: cfg.Handlers,
			logger:   logger,
		},
	}
	logger.Debug("client created")
	return c, nil
}

// Name returns the client name.
func (c *Client) Name() string {
	return c.name
}

// Endpoint returns the endpoint the client is bound to.
func (c *Client) Endpoint() transport.Endpoint {
	return c.endpoint
}

// Do builds a request and executes it, retrying transport failures
// according to the client configuration.
//
// For GET and HEAD, params are encoded into the query string. For POST,
// PUT, PATCH and DELETE they are encoded into the body: as a form if
// the content-type header is application/x-www-form-urlencoded,
// verbatim if params is a string or []byte, and as JSON otherwise. The
// content type defaults to application/json when there is a body. The
// params may be nil, a string, a []byte, a request.Params, a
// url.Values, a map[string]string, or (for a JSON body) any value
// encoding/json can marshal.
//
// The returned error is nil if a response was received, whatever its
// status code. Otherwise it is one of:
//
// • *ArgumentError, if the request could not be built;
//
// • *ConfigurationError, if the host header does not match the
// endpoint or the client is closed;
//
// • *ConnectionError, if a transport failure persisted after all
// retries, or the connection could not be rebuilt;
//
// • *RequestTimeoutError, if the configured request timeout, or the
// deadline of ctx, passed; or
//
// • the error of ctx, if ctx was canceled, or any other error from the
// transport, unchanged.
func (c *Client) Do(ctx context.Context, method, path string, header map[string]string, params interface{}) (*Response, error) {
	if c.exec == nil {
		return nil, &ConfigurationError{Msg: "client not created with NewClient"}
	}
	if c.conns.isClosed() {
		return nil, closedError()
	}
	b := request.Builder{Defaults: c.DefaultHeaders(), Host: c.endpoint.Host}
	r, err := b.Build(method, path, header, params)
	if err != nil {
		return nil, err
	}
	e, err := c.exec.execute(ctx, r)
	if err != nil {
		return nil, err
	}
	return e.Response, nil
}

// Get issues a GET, using the same policies followed by Do.
func (c *Client) Get(ctx context.Context, path string, header map[string]string, params interface{}) (*Response, error) {
	return Get(ctx, c, path, header, params)
}

// Head issues a HEAD, using the same policies followed by Do.
func (c *Client) Head(ctx context.Context, path string, header map[string]string, params interface{}) (*Response, error) {
	return Head(ctx, c, path, header, params)
}

// Post issues a POST, using the same policies followed by Do.
func (c *Client) Post(ctx context.Context, path string, header map[string]string, params interface{}) (*Response, error) {
	return Post(ctx, c, path, header, params)
}

// Put issues a PUT, using the same policies followed by Do.
func (c *Client) Put(ctx context.Context, path string, header map[string]string, params interface{}) (*Response, error) {
	return Put(ctx, c, path, header, params)
}

// Patch issues a PATCH, using the same policies followed by Do.
func (c *Client) Patch(ctx context.Context, path string, header map[string]string, params interface{}) (*Response, error) {
	return Patch(ctx, c, path, header, params)
}

// Delete issues a DELETE, using the same policies followed by Do.
func (c *Client) Delete(ctx context.Context, path string, header map[string]string, params interface{}) (*Response, error) {
	return Delete(ctx, c, path, header, params)
}

// SetDefaultHeaders replaces the default headers. The old defaults are
// discarded, not merged. The new headers are normalized, and an
// *ArgumentError is returned, leaving the defaults unchanged, if two
// keys differ only by case or a header is invalid.
func (c *Client) SetDefaultHeaders(h map[string]string) error {
	n, err := request.Normalize(h)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.defaults = n
	c.mu.Unlock()
	return nil
}

// DefaultHeaders returns a copy of the default headers.
func (c *Client) DefaultHeaders() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return request.Merge(c.defaults, nil)
}

// Close releases the connection without rebuilding it. Close is
// terminal: any later request fails with a *ConfigurationError
// wrapping ErrClosed. Closing a closed Client does nothing.
func (c *Client) Close() error {
	if c.conns == nil {
		return nil
	}
	err := c.conns.close()
	if err != nil {
		c.logger.Warn("error closing connection", zap.Error(err))
	}
	return err
}

// IsAlive issues a GET to path with a "connection: close" header and
// reports whether a 2XX response was received. It never returns an
// error: any failure is logged and reported as false. An empty path
// means "/".
func (c *Client) IsAlive(ctx context.Context, path string) bool {
	if path == "" {
		path = "/"
	}
	r, err := c.Get(ctx, path, map[string]string{"connection": "close"}, nil)
	if err != nil {
		c.logger.Warn("liveness check failed", zap.String("path", path), zap.Error(err))
		return false
	}
	if r.StatusCode < 200 || r.StatusCode > 299 {
		c.logger.Warn("liveness check failed", zap.String("path", path), zap.Int("status", r.StatusCode))
		return false
	}
	return true
}

// GetJSON issues a GET and parses the response body as JSON. Use the
// gjson path syntax on the result to extract values.
//
// A response with a non-2XX status code is not an error, provided its
// body is valid JSON. A body which is not valid JSON results in a
// *ResponseFormatError.
func (c *Client) GetJSON(ctx context.Context, path string, header map[string]string, params interface{}) (gjson.Result, error) {
	r, err := c.Get(ctx, path, header, params)
	if err != nil {
		return gjson.Result{}, err
	}
	if !gjson.ValidBytes(r.Body) {
		return gjson.Result{}, &ResponseFormatError{
			StatusCode: r.StatusCode,
			Body:       r.Body,
			Msg:        "response body is not valid JSON",
		}
	}
	return gjson.ParseBytes(r.Body), nil
}
