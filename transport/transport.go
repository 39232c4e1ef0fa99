// Copyright 2021 The reconn Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/gogama/reconn/request"
)

// A Conn is a live, reusable handle to a transport bound to one
// endpoint.
//
// Send may be called repeatedly. Send must return a non-nil Response
// with a non-nil Body whenever it returns a nil error. Errors which
// indicate the connection is broken should wrap the underlying network
// error so that package transient can categorize them.
type Conn interface {
	Send(ctx context.Context, r *request.Request) (*request.Response, error)
	Close() error
}

// An Opener opens new Conns.
type Opener interface {
	Open(ep Endpoint, s Settings) (Conn, error)
}

// The OpenerFunc type is an adapter to allow the use of ordinary
// functions as Openers.
type OpenerFunc func(ep Endpoint, s Settings) (Conn, error)

// Open calls f(ep, s).
func (f OpenerFunc) Open(ep Endpoint, s Settings) (Conn, error) {
	return f(ep, s)
}

// Settings holds the connection-level configuration applied when a
// Conn is opened. Zero durations mean no timeout.
type Settings struct {
	// Name identifies the client, for example in logs.
	Name string
	// OpenTimeout bounds establishing a connection, including the TLS
	// handshake.
	OpenTimeout time.Duration
	// ReadTimeout bounds waiting for response headers after the request
	// is written.
	ReadTimeout time.Duration
	// IdleTimeout is how long an idle keep-alive connection is kept
	// before being closed.
	IdleTimeout time.Duration
	// PoolSize limits the number of connections to the endpoint. Zero
	// means no limit.
	PoolSize int
	// DisableHTTP2 prevents HTTP/2 negotiation on https endpoints.
	DisableHTTP2 bool
	// TLS holds the TLS settings, used only for https endpoints.
	TLS TLSSettings
}

// An Endpoint is the parsed base URI of the single origin a client
// talks to.
type Endpoint struct {
	// Scheme is "http" or "https".
	Scheme string
	// Host is the host, plus the port if one was given.
	Host string
}

// ParseEndpoint parses a base URI such as "https://api.example.com".
//
// The scheme must be http or https and a host is required. Any path,
// query or fragment is discarded. An empty port ("host:") is removed.
func ParseEndpoint(rawURL string) (Endpoint, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Endpoint{}, &request.ConfigurationError{Msg: "invalid endpoint", Err: err}
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return Endpoint{}, &request.ConfigurationError{Msg: fmt.Sprintf("unsupported endpoint scheme %q", u.Scheme)}
	}
	if u.Hostname() == "" {
		return Endpoint{}, &request.ConfigurationError{Msg: fmt.Sprintf("endpoint %q has no host", rawURL)}
	}
	return Endpoint{
		Scheme: scheme,
		Host:   strings.ToLower(strings.TrimSuffix(u.Host, ":")),
	}, nil
}

// Secure reports whether the endpoint uses TLS.
func (ep Endpoint) Secure() bool {
	return ep.Scheme == "https"
}

// Hostname returns the host without any port.
func (ep Endpoint) Hostname() string {
	if h, _, err := net.SplitHostPort(ep.Host); err == nil {
		return h
	}
	return strings.Trim(ep.Host, "[]")
}

// Port returns the explicit port, or the default port for the scheme.
func (ep Endpoint) Port() string {
	if _, p, err := net.SplitHostPort(ep.Host); err == nil {
		return p
	}
	if ep.Secure() {
		return "443"
	}
	return "80"
}

// URL returns the absolute URL for a request target such as
// "/path?query".
func (ep Endpoint) URL(target string) string {
	return ep.Scheme + "://" + ep.Host + target
}

// String returns the endpoint base URI.
func (ep Endpoint) String() string {
	return ep.Scheme + "://" + ep.Host
}
