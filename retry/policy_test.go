// Copyright 2021 The reconn Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"errors"
	"syscall"
	"testing"
	"time"

	"github.com/gogama/reconn/request"

	"github.com/stretchr/testify/assert"
)

func TestDefault(t *testing.T) {
	assert.True(t, DefaultPolicy.Decide(&request.Execution{Err: syscall.ECONNRESET}))
	assert.False(t, DefaultPolicy.Decide(&request.Execution{Attempt: DefaultTimes, Err: syscall.ECONNRESET}))
	assert.False(t, DefaultPolicy.Decide(&request.Execution{Err: errors.New("bad response")}))
	assert.Equal(t, time.Duration(0), DefaultPolicy.Wait(&request.Execution{Attempt: 3}))
}

func TestNever(t *testing.T) {
	assert.False(t, Never.Decide(&request.Execution{Err: syscall.ECONNRESET}))
}

func TestBounded(t *testing.T) {
	t.Run("nil waiter", func(t *testing.T) {
		p := Bounded(3, nil)
		for i := 0; i < 3; i++ {
			assert.True(t, p.Decide(&request.Execution{Attempt: i, Err: syscall.ECONNREFUSED}))
		}
		assert.False(t, p.Decide(&request.Execution{Attempt: 3, Err: syscall.ECONNREFUSED}))
		assert.Equal(t, time.Duration(0), p.Wait(&request.Execution{}))
	})
	t.Run("custom waiter", func(t *testing.T) {
		p := Bounded(1, Backoff(time.Millisecond, time.Second, nil))
		assert.Equal(t, time.Millisecond, p.Wait(&request.Execution{}))
		assert.Equal(t, 4*time.Millisecond, p.Wait(&request.Execution{Attempt: 2}))
	})
}

func TestNewPolicy(t *testing.T) {
	p := &testPolicy{}
	t.Run("Bad Args", func(t *testing.T) {
		assert.PanicsWithValue(t, "reconn/retry: nil decider", func() { NewPolicy(nil, p) })
		assert.PanicsWithValue(t, "reconn/retry: nil waiter", func() { NewPolicy(p, nil) })
	})
	t.Run("Normal", func(t *testing.T) {
		P := NewPolicy(p, p)
		assert.True(t, P.Decide(&request.Execution{}))
		assert.Equal(t, 1, p.d)
		assert.Equal(t, time.Second, P.Wait(&request.Execution{}))
		assert.Equal(t, 1, p.w)
	})
}

type testPolicy struct {
	d int
	w int
}

func (p *testPolicy) Decide(_ *request.Execution) bool {
	p.d++
	return true
}

func (p *testPolicy) Wait(_ *request.Execution) time.Duration {
	p.w++
	return time.Second
}
