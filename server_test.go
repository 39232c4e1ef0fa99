// Copyright 2021 The reconn Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package reconn

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gogama/reconn/request"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echo is the body written by echoHandler.
type echo struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Query       string `json:"query"`
	ContentType string `json:"content_type"`
	Body        string `json:"body"`
	Close       bool   `json:"close"`
	Proto       string `json:"proto"`
}

func echoHandler(w http.ResponseWriter, req *http.Request) {
	b, _ := io.ReadAll(req.Body)
	e := echo{
		Method:      req.Method,
		Path:        req.URL.Path,
		Query:       req.URL.RawQuery,
		ContentType: req.Header.Get("Content-Type"),
		Body:        string(b),
		Close:       req.Close,
		Proto:       req.Proto,
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(&e)
}

// dropHandler closes the connection without responding to the first
// n requests, then echoes.
func dropHandler(n int32, hits *int32) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if atomic.AddInt32(hits, 1) <= n {
			hj, ok := w.(http.Hijacker)
			if !ok {
				panic("w does not implement Hijacker")
			}
			conn, _, err := hj.Hijack()
			if err != nil {
				panic(err)
			}
			_ = conn.Close()
			return
		}
		echoHandler(w, req)
	}
}

func TestClientServer(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(echoHandler))
		defer server.Close()
		cl, err := NewClient(server.URL, Config{RequestTimeout: 5 * time.Second})
		require.NoError(t, err)
		defer func() { _ = cl.Close() }()

		res, err := cl.GetJSON(context.Background(), "/users", nil, request.P("limit", "10", "q", "a b"))
		require.NoError(t, err)
		assert.Equal(t, "GET", res.Get("method").String())
		assert.Equal(t, "/users", res.Get("path").String())
		assert.Equal(t, "limit=10&q=a+b", res.Get("query").String())

		resp, err := cl.Post(context.Background(), "/users", nil, request.P("name", "Jo", "age", "7"))
		require.NoError(t, err)
		var e echo
		require.NoError(t, json.Unmarshal(resp.Body, &e))
		assert.Equal(t, "POST", e.Method)
		assert.Equal(t, "application/json", e.ContentType)
		assert.Equal(t, `{"name":"Jo","age":"7"}`, e.Body)
		assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

		resp, err = cl.Put(context.Background(), "/form", map[string]string{"Content-Type": "application/x-www-form-urlencoded"}, url.Values{"k": {"v"}})
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(resp.Body, &e))
		assert.Equal(t, "k=v", e.Body)
	})
	t.Run("status codes are not errors", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, "nope")
		}))
		defer server.Close()
		cl, err := NewClient(server.URL, Config{})
		require.NoError(t, err)

		resp, err := cl.Get(context.Background(), "/missing", nil, nil)

		require.NoError(t, err)
		assert.Equal(t, 404, resp.StatusCode)
		assert.Equal(t, "nope", string(resp.Body))
		assert.False(t, cl.IsAlive(context.Background(), "/missing"))
	})
	t.Run("server closes connection", func(t *testing.T) {
		var hits int32
		server := httptest.NewServer(dropHandler(1, &hits))
		defer server.Close()
		handlers := &HandlerGroup{}
		tr := addTraceHandlers(handlers)
		cl, err := NewClient(server.URL, Config{Handlers: handlers})
		require.NoError(t, err)

		resp, err := cl.Get(context.Background(), "/", nil, nil)

		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
		assert.Contains(t, tr.calls, "BeforeRebuild")
	})
	t.Run("server always closes connection", func(t *testing.T) {
		var hits int32
		server := httptest.NewServer(dropHandler(1000, &hits))
		defer server.Close()
		cl, err := NewClient(server.URL, Config{MaxRetries: Retries(1)})
		require.NoError(t, err)

		_, err = cl.Get(context.Background(), "/", nil, nil)

		var connErr *ConnectionError
		require.ErrorAs(t, err, &connErr)
		assert.Equal(t, 2, connErr.Attempts)
		var urlErr *url.Error
		assert.ErrorAs(t, err, &urlErr)
	})
	t.Run("request timeout", func(t *testing.T) {
		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			select {
			case <-release:
			case <-req.Context().Done():
			}
		}))
		defer server.Close()
		defer close(release)
		cl, err := NewClient(server.URL, Config{
			RequestTimeout: 50 * time.Millisecond,
			MaxRetries:     Retries(3),
		})
		require.NoError(t, err)

		_, err = cl.Get(context.Background(), "/slow", nil, nil)

		var timeoutErr *RequestTimeoutError
		require.ErrorAs(t, err, &timeoutErr)
		assert.Equal(t, 1, timeoutErr.Attempts)
	})
	t.Run("read timeout is retried", func(t *testing.T) {
		var hits int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if atomic.AddInt32(&hits, 1) == 1 {
				select {
				case <-time.After(time.Second):
				case <-req.Context().Done():
				}
				return
			}
			echoHandler(w, req)
		}))
		defer server.Close()
		cl, err := NewClient(server.URL, Config{ReadTimeout: 50 * time.Millisecond})
		require.NoError(t, err)

		resp, err := cl.Get(context.Background(), "/", nil, nil)

		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
	})
	t.Run("is alive", func(t *testing.T) {
		var sawClose int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if req.Close && req.URL.Path == "/" {
				atomic.StoreInt32(&sawClose, 1)
			}
		}))
		defer server.Close()
		cl, err := NewClient(server.URL, Config{})
		require.NoError(t, err)

		assert.True(t, cl.IsAlive(context.Background(), ""))
		assert.Equal(t, int32(1), atomic.LoadInt32(&sawClose))

		server.Close()
		assert.False(t, cl.IsAlive(context.Background(), "/"))
	})
	t.Run("TLS", func(t *testing.T) {
		server := httptest.NewTLSServer(http.HandlerFunc(echoHandler))
		defer server.Close()

		cl, err := NewClient(server.URL, Config{MaxRetries: Retries(3)})
		require.NoError(t, err)
		_, err = cl.Get(context.Background(), "/", nil, nil)
		require.Error(t, err)
		var connErr *ConnectionError
		assert.False(t, errors.As(err, &connErr), "certificate failures are not retried")

		cl, err = NewClient(server.URL, Config{InsecureSkipVerify: true})
		require.NoError(t, err)
		resp, err := cl.Get(context.Background(), "/", nil, nil)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})
	t.Run("HTTP/2", func(t *testing.T) {
		server := httptest.NewUnstartedServer(http.HandlerFunc(echoHandler))
		server.EnableHTTP2 = true
		server.StartTLS()
		defer server.Close()

		cl, err := NewClient(server.URL, Config{InsecureSkipVerify: true})
		require.NoError(t, err)
		res, err := cl.GetJSON(context.Background(), "/", nil, nil)
		require.NoError(t, err)
		assert.Equal(t, "HTTP/2.0", res.Get("proto").String())

		cl, err = NewClient(server.URL, Config{InsecureSkipVerify: true, DisableHTTP2: true})
		require.NoError(t, err)
		res, err = cl.GetJSON(context.Background(), "/", nil, nil)
		require.NoError(t, err)
		assert.Equal(t, "HTTP/1.1", res.Get("proto").String())
	})
}
