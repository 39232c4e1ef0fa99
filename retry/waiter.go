// Copyright 2021 The reconn Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"math/rand"
	"sync"
	"time"

	"github.com/gogama/reconn/request"
)

// A Waiter says how long to pause between a transport failure and the
// connection rebuild which precedes the retry. It is only consulted
// after the Decider has allowed the retry.
//
// Implementations of Waiter must be safe for concurrent use by multiple
// goroutines.
type Waiter interface {
	Wait(e *request.Execution) time.Duration
}

// The WaiterFunc type is an adapter to allow the use of ordinary
// functions as retry waiters.
type WaiterFunc func(e *request.Execution) time.Duration

// Wait calls f(e).
func (f WaiterFunc) Wait(e *request.Execution) time.Duration {
	return f(e)
}

// NoWait retries immediately.
var NoWait Waiter = WaiterFunc(func(_ *request.Execution) time.Duration { return 0 })

// Backoff returns a Waiter whose wait ceiling starts at base for the
// first retry and doubles with each further failed attempt, never
// exceeding max. The wait is drawn uniformly from [0, ceiling) using
// rnd, or is the ceiling itself if rnd is nil.
//
// A non-positive base yields NoWait, and a max below base is raised to
// base.
func Backoff(base, max time.Duration, rnd *rand.Rand) Waiter {
	if base <= 0 {
		return NoWait
	}
	if max < base {
		max = base
	}
	return &backoff{base: base, max: max, rnd: rnd}
}

type backoff struct {
	base, max time.Duration

	mu  sync.Mutex
	rnd *rand.Rand
}

func (b *backoff) Wait(e *request.Execution) time.Duration {
	ceil := b.ceiling(e.Attempt)
	if b.rnd == nil {
		return ceil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return time.Duration(b.rnd.Int63n(int64(ceil)))
}

func (b *backoff) ceiling(attempt int) time.Duration {
	if attempt < 0 || attempt >= 63 {
		return b.max
	}
	d := b.base << uint(attempt)
	if d>>uint(attempt) != b.base || d > b.max {
		return b.max
	}
	return d
}
