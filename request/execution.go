// Copyright 2021 The reconn Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"context"
	"net/http"
	"time"

	"github.com/gogama/reconn/transient"
)

// A Response is a fully-buffered HTTP response.
//
// Status codes in the 4XX and 5XX ranges are ordinary responses, not
// errors. Interpreting them is left to the caller.
type Response struct {
	// StatusCode is the HTTP response status code.
	StatusCode int
	// Header contains the response headers.
	Header http.Header
	// Body is the complete response body. It may be empty but is
	// never nil in a response returned by the client.
	Body []byte
	// Duration is the time from the start of the logical request,
	// including any retries, until the response was received.
	Duration time.Duration
}

// An Execution represents the state of a single logical request
// execution, including any retries.
//
// An Execution is created when a request is executed and updated as
// the execution progresses. It is handed to retry policies and event
// handlers, which should treat its exported fields as read-only.
type Execution struct {
	// Request is the request being executed. It is the same for every
	// attempt.
	Request *Request

	// Start is the start time of the execution.
	Start time.Time

	// End is the end time of the execution. It is the zero time until
	// the execution ends.
	End time.Time

	// Attempt is the zero-based number of the current attempt. It is
	// zero on the initial attempt, one on the first retry, and so on.
	Attempt int

	// Rebuilds counts how many times the connection was rebuilt
	// during the execution.
	Rebuilds int

	// Response is the response received in the most recent attempt,
	// or nil if the attempt ended in error or has not finished.
	Response *Response

	// Err is the error from the most recent attempt, or nil if the
	// attempt succeeded or has not finished. After the execution ends,
	// Err holds the same error returned to the caller.
	Err error

	data context.Context
}

// StatusCode returns the status code of the response from the most
// recent attempt, or 0 if there is none.
func (e *Execution) StatusCode() int {
	if e.Response == nil {
		return 0
	}

	return e.Response.StatusCode
}

// Duration returns the duration of the execution. It is zero before
// the execution starts, grows while it is in-flight, and is fixed at
// End minus Start once it ends.
func (e *Execution) Duration() time.Duration {
	if !e.Started() {
		return time.Duration(0)
	} else if !e.Ended() {
		return time.Since(e.Start)
	}

	return e.End.Sub(e.Start)
}

// Started indicates whether the execution has started.
func (e *Execution) Started() bool {
	return e.Start != (time.Time{})
}

// Ended indicates whether the execution has ended.
func (e *Execution) Ended() bool {
	return e.End != (time.Time{})
}

// Attempts returns the number of attempts made so far, counting the
// initial attempt.
func (e *Execution) Attempts() int {
	if !e.Started() {
		return 0
	}
	return e.Attempt + 1
}

// Timeout indicates whether Err is a timeout, either a transport-level
// timeout or an overall request timeout.
func (e *Execution) Timeout() bool {
	return transient.Categorize(e.Err) == transient.Timeout
}

// SetValue allows event handlers to store arbitrary data in the
// execution. The key follows the same rules as the key parameter in
// context.WithValue.
func (e *Execution) SetValue(key, value interface{}) {
	ctx := e.data
	if ctx == nil {
		ctx = context.Background()
	}

	e.data = context.WithValue(ctx, key, value)
}

// Value returns the data value associated with this execution for key,
// or nil if there is no value associated with key.
func (e *Execution) Value(key interface{}) interface{} {
	ctx := e.data
	if ctx == nil {
		return nil
	}

	return ctx.Value(key)
}
