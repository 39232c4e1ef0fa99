// Copyright 2021 The reconn Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"errors"
	"net/url"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecution_StatusCode(t *testing.T) {
	e := &Execution{}
	t.Run("no Response", func(t *testing.T) {
		require.Nil(t, e.Response)
		assert.Equal(t, 0, e.StatusCode())
	})
	t.Run("with Response", func(t *testing.T) {
		e.Response = &Response{StatusCode: 503}
		assert.Equal(t, 503, e.StatusCode())
	})
}

func TestExecution_TimeMethods(t *testing.T) {
	t.Run("not started", func(t *testing.T) {
		e := &Execution{}
		assert.False(t, e.Started())
		assert.False(t, e.Ended())
		assert.Equal(t, time.Duration(0), e.Duration())
		assert.Equal(t, 0, e.Attempts())
	})
	t.Run("started but not ended", func(t *testing.T) {
		e := &Execution{}
		e.Start = time.Now()
		assert.True(t, e.Started())
		assert.False(t, e.Ended())
		assert.Equal(t, 1, e.Attempts())
		time.Sleep(2*time.Millisecond + 50*time.Microsecond)
		d := e.Duration()
		assert.LessOrEqual(t, d, time.Since(e.Start))
		assert.GreaterOrEqual(t, d, 2*time.Millisecond)
	})
	t.Run("ended", func(t *testing.T) {
		e := &Execution{}
		e.Start = time.Now()
		time.Sleep(2*time.Millisecond + 50*time.Microsecond)
		e.End = time.Now()
		e.Attempt = 2
		d := e.Duration()
		assert.Greater(t, d, 2*time.Millisecond)
		assert.True(t, e.Ended())
		assert.Equal(t, 3, e.Attempts())
		time.Sleep(2*time.Millisecond + 50*time.Microsecond)
		assert.Equal(t, d, e.Duration())
	})
}

func TestExecution_Timeout(t *testing.T) {
	t.Run("no error", func(t *testing.T) {
		e := &Execution{}
		assert.False(t, e.Timeout())
	})
	t.Run("generic error not timeout", func(t *testing.T) {
		e := &Execution{Err: errors.New("foo")}
		assert.False(t, e.Timeout())
	})
	t.Run("direct timeout", func(t *testing.T) {
		e := &Execution{Err: syscall.ETIMEDOUT}
		assert.True(t, e.Timeout())
	})
	t.Run("indirect timeout", func(t *testing.T) {
		e := &Execution{Err: &url.Error{Err: syscall.ETIMEDOUT}}
		assert.True(t, e.Timeout())
	})
}

func TestExecution_Value(t *testing.T) {
	e := &Execution{}
	assert.Nil(t, e.Value(funKey{}))
	e.SetValue(funKey{}, "ham")
	e.SetValue(funkyKey{}, "eggs")
	assert.Equal(t, "ham", e.Value(funKey{}))
	assert.Equal(t, "eggs", e.Value(funkyKey{}))
	e.SetValue(funKey{}, "spam")
	assert.Equal(t, "spam", e.Value(funKey{}))
	assert.Equal(t, "eggs", e.Value(funkyKey{}))
}

type funKey struct{}

type funkyKey struct{}
