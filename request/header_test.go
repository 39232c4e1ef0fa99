// Copyright 2021 The reconn Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		n, err := Normalize(nil)
		require.NoError(t, err)
		assert.NotNil(t, n)
		assert.Empty(t, n)
	})
	t.Run("lowercases keys", func(t *testing.T) {
		n, err := Normalize(map[string]string{"X-Trace-Id": "abc", "Accept": "text/plain"})
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"x-trace-id": "abc", "accept": "text/plain"}, n)
	})
	t.Run("duplicate after normalization", func(t *testing.T) {
		_, err := Normalize(map[string]string{"X-A": "1", "x-a": "2"})
		var argErr *ArgumentError
		require.ErrorAs(t, err, &argErr)
		assert.Contains(t, argErr.Error(), "duplicate header")
	})
	t.Run("invalid name", func(t *testing.T) {
		_, err := Normalize(map[string]string{"bad key": "1"})
		var argErr *ArgumentError
		assert.ErrorAs(t, err, &argErr)
	})
	t.Run("invalid value", func(t *testing.T) {
		_, err := Normalize(map[string]string{"host": "evil\r\nx-injected: 1"})
		var argErr *ArgumentError
		assert.ErrorAs(t, err, &argErr)
	})
}

func TestMerge(t *testing.T) {
	base := map[string]string{"x-a": "1", "x-b": "1"}
	override := map[string]string{"x-a": "2", "x-c": "2"}
	m := Merge(base, override)
	assert.Equal(t, map[string]string{"x-a": "2", "x-b": "1", "x-c": "2"}, m)
	assert.Equal(t, "1", base["x-a"], "Merge must not modify its inputs")
	assert.Empty(t, Merge(nil, nil))
}

func TestValidateHost(t *testing.T) {
	t.Run("injects when absent", func(t *testing.T) {
		h := map[string]string{}
		require.NoError(t, ValidateHost(h, "api.example.com"))
		assert.Equal(t, "api.example.com", h["host"])
	})
	t.Run("matching", func(t *testing.T) {
		for _, v := range []string{"api.example.com", "API.example.com", "api.example.com:8443"} {
			h := map[string]string{"host": v}
			assert.NoError(t, ValidateHost(h, "api.example.com:8443"), v)
			assert.Equal(t, v, h["host"])
		}
	})
	t.Run("mismatch", func(t *testing.T) {
		h := map[string]string{"host": "other.example.com"}
		err := ValidateHost(h, "api.example.com")
		var cfgErr *ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Contains(t, err.Error(), "other.example.com")
	})
	t.Run("port mismatch", func(t *testing.T) {
		for _, testCase := range []struct{ header, endpoint string }{
			{"api.example.com:8443", "api.example.com"},
			{"api.example.com:9000", "api.example.com:8443"},
			{"[::2]", "[::1]:8080"},
		} {
			h := map[string]string{"host": testCase.header}
			var cfgErr *ConfigurationError
			assert.ErrorAs(t, ValidateHost(h, testCase.endpoint), &cfgErr, testCase.header)
		}
	})
	t.Run("ipv6 endpoint", func(t *testing.T) {
		for _, v := range []string{"[::1]", "[::1]:8080"} {
			h := map[string]string{"host": v}
			assert.NoError(t, ValidateHost(h, "[::1]:8080"), v)
		}
	})
}
