// Copyright 2021 The reconn Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogama/reconn/request"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		switch req.URL.Path {
		case "/health":
			w.WriteHeader(http.StatusOK)
		case "/down":
			w.WriteHeader(http.StatusServiceUnavailable)
		case "/users":
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"users":[{"name":"Jo"},{"name":"Al"}],"query":"`+req.URL.RawQuery+`","team":"`+req.Header.Get("X-Team")+`"}`)
		default:
			b, _ := io.ReadAll(req.Body)
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write(append([]byte(req.Method+" "), b...))
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func execute(args ...string) (string, error) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestGet(t *testing.T) {
	server := newTestServer(t)
	t.Run("body", func(t *testing.T) {
		out, err := execute("get", server.URL, "/users", "-p", "b=2", "-p", "a=1", "-H", "X-Team: core")
		require.NoError(t, err)
		assert.Contains(t, out, `"query":"b=2&a=1"`)
		assert.Contains(t, out, `"team":"core"`)
	})
	t.Run("json path", func(t *testing.T) {
		out, err := execute("get", server.URL, "/users", "--json", "users.1.name")
		require.NoError(t, err)
		assert.Equal(t, "Al\n", out)
	})
	t.Run("status", func(t *testing.T) {
		out, err := execute("get", server.URL, "/health", "-s")
		require.NoError(t, err)
		assert.Regexp(t, `^200 \(\d+m?s\)`, out)
	})
	t.Run("bad param", func(t *testing.T) {
		_, err := execute("get", server.URL, "/users", "-p", "novalue")
		assert.EqualError(t, err, `invalid param "novalue", want key=value`)
	})
	t.Run("bad header", func(t *testing.T) {
		_, err := execute("get", server.URL, "/users", "-H", "nocolon")
		assert.Error(t, err)
	})
	t.Run("repeated header", func(t *testing.T) {
		_, err := execute("get", server.URL, "/users", "-H", "X-Team: core", "-H", "X-Team: edge")
		assert.EqualError(t, err, `duplicate header "X-Team"`)
	})
	t.Run("query conflict", func(t *testing.T) {
		_, err := execute("get", server.URL, "/users?x=1", "-p", "a=1")
		var argErr *request.ArgumentError
		assert.ErrorAs(t, err, &argErr)
	})
}

func TestDo(t *testing.T) {
	server := newTestServer(t)
	t.Run("raw data", func(t *testing.T) {
		out, err := execute("do", "post", server.URL, "/echo", "-d", "hello", "-H", "Content-Type: text/plain")
		require.NoError(t, err)
		assert.Equal(t, "POST hello\n", out)
	})
	t.Run("params as JSON", func(t *testing.T) {
		out, err := execute("do", "PUT", server.URL, "/echo", "-p", "z=1", "-p", "a=2")
		require.NoError(t, err)
		assert.Equal(t, `PUT {"z":"1","a":"2"}`+"\n", out)
	})
	t.Run("data and params", func(t *testing.T) {
		_, err := execute("do", "POST", server.URL, "/echo", "-d", "x", "-p", "a=1")
		assert.Error(t, err)
	})
}

func TestAlive(t *testing.T) {
	server := newTestServer(t)
	out, err := execute("alive", server.URL, "/health")
	require.NoError(t, err)
	assert.Equal(t, "alive\n", out)

	out, err = execute("alive", server.URL, "/down", "--retries", "0")
	assert.ErrorIs(t, err, errNotAlive)
	assert.Equal(t, "dead\n", out)
}

func TestConfigFile(t *testing.T) {
	server := newTestServer(t)
	path := filepath.Join(t.TempDir(), "client.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: cli\ndefault_headers:\n  X-Team: from-config\nfuture_option: 1\n"), 0o600))

	out, err := execute("get", server.URL, "/users", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"team":"from-config"`)

	_, err = execute("get", server.URL, "/users", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseHeaders(t *testing.T) {
	h, err := parseHeaders([]string{"Accept: application/json", " X-Team :core "})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Accept": "application/json", "X-Team": "core"}, h)

	for _, raw := range [][]string{
		{"X-Team: a", "X-Team: b"},
		{"X-Team: a", "x-team: b"},
	} {
		_, err = parseHeaders(raw)
		assert.EqualError(t, err, `duplicate header "`+raw[1][:6]+`"`, raw[1])
	}
}

func TestParseParams(t *testing.T) {
	ps, err := parseParams([]string{"b=2", "a=x=y"})
	require.NoError(t, err)
	assert.Equal(t, request.P("b", "2", "a", "x=y"), ps)
	_, err = parseParams([]string{"=1"})
	assert.Error(t, err)
}
