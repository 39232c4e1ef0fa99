// Copyright 2021 The reconn Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"time"

	"github.com/gogama/reconn/request"
)

// A Policy controls if and how retries are done after a transport
// failure. It is composed of the Decider and Waiter interfaces.
//
// Implementations of Policy must be safe for concurrent use by multiple
// goroutines.
type Policy interface {
	Decider
	Waiter
}

// DefaultPolicy retries once, immediately, after a transport failure.
var DefaultPolicy Policy = policy{DefaultDecider, NoWait}

// Never is a policy that never retries.
var Never Policy = policy{Times(0), NoWait}

type policy struct {
	decider Decider
	waiter  Waiter
}

// NewPolicy composes a Decider and a Waiter into a retry Policy.
func NewPolicy(d Decider, w Waiter) Policy {
	if d == nil {
		panic("reconn/retry: nil decider")
	}
	if w == nil {
		panic("reconn/retry: nil waiter")
	}
	return policy{decider: d, waiter: w}
}

// Bounded returns a policy allowing up to n retries after transport
// failures, waiting according to w between attempts. If w is nil,
// NoWait is used.
func Bounded(n int, w Waiter) Policy {
	if w == nil {
		w = NoWait
	}
	return policy{decider: Times(n).And(TransientErr), waiter: w}
}

func (p policy) Decide(e *request.Execution) bool {
	return p.decider.Decide(e)
}

func (p policy) Wait(e *request.Execution) time.Duration {
	return p.waiter.Wait(e)
}
