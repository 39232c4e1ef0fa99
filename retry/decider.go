// Copyright 2021 The reconn Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"github.com/gogama/reconn/request"
	"github.com/gogama/reconn/transient"
)

// A Decider decides if a retry should be done.
//
// Implementations of Decider must be safe for concurrent use by
// multiple goroutines.
type Decider interface {
	Decide(e *request.Execution) bool
}

// The DeciderFunc type is an adapter to allow the use of ordinary
// functions as retry deciders. It implements the Decider interface, and
// also provides the logical composition methods And and Or.
type DeciderFunc func(e *request.Execution) bool

// DefaultTimes is the number of retries allowed when Config.MaxRetries
// is not set.
const DefaultTimes = 1

// DefaultDecider allows up to DefaultTimes retries after a transport
// failure.
var DefaultDecider = Times(DefaultTimes).And(TransientErr)

// TransientErr is a decider that indicates a retry if the current
// error is a transport failure according to transient.Categorize.
// Application errors and successful responses, whatever their status
// code, are never retried.
var TransientErr DeciderFunc = transientErr

// Decide returns true if a retry should be done, and false otherwise,
// after examining the current execution state.
func (f DeciderFunc) Decide(e *request.Execution) bool {
	return f(e)
}

// And composes two retry deciders into a new decider which returns true
// if both sub-deciders return true, and false otherwise.
//
// Short-circuit logic is used, so g will not be evaluated if f returns
// false.
func (f DeciderFunc) And(g DeciderFunc) DeciderFunc {
	return func(e *request.Execution) bool {
		return f(e) && g(e)
	}
}

// Or composes two retry deciders into a new decider which returns
// true if either of the two sub-deciders returns true, but false if
// they both return false.
//
// Short-circuit logic is used, so g will not be evaluated if f returns
// true.
func (f DeciderFunc) Or(g DeciderFunc) DeciderFunc {
	return func(e *request.Execution) bool {
		return f(e) || g(e)
	}
}

// Times constructs a retry decider which allows up to n retries. The
// returned decider returns true while the execution attempt index
// e.Attempt is less than n, and false otherwise. Times panics if n is
// negative.
func Times(n int) DeciderFunc {
	if n < 0 {
		panic("reconn/retry: negative retry count")
	}
	return func(e *request.Execution) bool {
		return e.Attempt < n
	}
}

func transientErr(e *request.Execution) bool {
	return transient.IsTransport(e.Err)
}
