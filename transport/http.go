// Copyright 2021 The reconn Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gogama/reconn/request"
	"golang.org/x/net/http2"
)

// HTTP is the default Opener. Each Conn it opens owns a dedicated
// http.Transport, so closing the Conn drops exactly the connections
// opened for it.
var HTTP Opener = OpenerFunc(openHTTP)

const keepAlive = 30 * time.Second

func openHTTP(ep Endpoint, s Settings) (Conn, error) {
	dialer := &net.Dialer{
		Timeout:   s.OpenTimeout,
		KeepAlive: keepAlive,
	}
	t := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   s.OpenTimeout,
		ResponseHeaderTimeout: s.ReadTimeout,
		IdleConnTimeout:       s.IdleTimeout,
		MaxConnsPerHost:       s.PoolSize,
		MaxIdleConnsPerHost:   s.PoolSize,
		ExpectContinueTimeout: time.Second,
	}
	if ep.Secure() {
		cfg, err := s.TLS.Config(ep.Hostname())
		if err != nil {
			return nil, err
		}
		t.TLSClientConfig = cfg
		if !s.DisableHTTP2 {
			if err = http2.ConfigureTransport(t); err != nil {
				return nil, err
			}
		}
	}

	return &httpConn{
		endpoint:  ep,
		transport: t,
		client: &http.Client{
			Transport: t,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}, nil
}

type httpConn struct {
	endpoint  Endpoint
	transport *http.Transport
	client    *http.Client
}

func (c *httpConn) Send(ctx context.Context, r *request.Request) (*request.Response, error) {
	var body io.Reader
	if b := r.Body(); len(b) > 0 {
		body = bytes.NewReader(b)
	}
	u := c.endpoint.URL(r.Target())
	req, err := http.NewRequestWithContext(ctx, r.Method(), u, body)
	if err != nil {
		return nil, err
	}
	for k, v := range r.Header() {
		switch k {
		case request.HostHeader:
			req.Host = v
		case "connection":
			if strings.EqualFold(v, "close") {
				req.Close = true
			} else {
				req.Header.Set(k, v)
			}
		default:
			req.Header.Set(k, v)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &url.Error{Op: urlErrorOp(r.Method()), URL: u, Err: err}
	}
	if b == nil {
		b = []byte{}
	}

	return &request.Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       b,
	}, nil
}

func (c *httpConn) Close() error {
	c.transport.CloseIdleConnections()
	return nil
}

// urlErrorOp is lifted verbatim from net/http/client.go
func urlErrorOp(method string) string {
	if method == "" {
		return "Get"
	}
	return method[:1] + strings.ToLower(method[1:])
}
