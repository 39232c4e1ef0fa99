// Copyright 2021 The reconn Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package reconn

import (
	"errors"
	"fmt"
	"time"

	"github.com/gogama/reconn/request"
)

// An ArgumentError indicates caller misuse, such as conflicting query
// sources or duplicate header keys. It is detected before any network
// activity and is never retried.
type ArgumentError = request.ArgumentError

// A ConfigurationError indicates invalid client configuration, a host
// header which does not match the endpoint, or use of a closed client.
type ConfigurationError = request.ConfigurationError

// ErrClosed is wrapped by the ConfigurationError returned when a
// closed Client is used.
var ErrClosed = errors.New("reconn: client closed")

func closedError() error {
	return &ConfigurationError{Msg: "client is closed", Err: ErrClosed}
}

// A ConnectionError is a terminal transport failure. It is returned
// when the retry budget is exhausted, in which case Err is the
// transport failure from the final attempt, or when the connection
// could not be rebuilt.
type ConnectionError struct {
	// Attempts is the number of send attempts made, including the
	// initial attempt.
	Attempts int
	// Elapsed is the time spent on the request, including retries.
	Elapsed time.Duration
	// Err is the underlying failure.
	Err error
}

func (err *ConnectionError) Error() string {
	return fmt.Sprintf("reconn: connection failed after %d attempt(s) in %s: %v", err.Attempts, err.Elapsed, err.Err)
}

// Unwrap returns the underlying failure.
func (err *ConnectionError) Unwrap() error {
	return err.Err
}

// A RequestTimeoutError indicates the overall request deadline passed.
// The deadline spans the initial attempt and every retry, so a request
// which times out is never retried.
type RequestTimeoutError struct {
	// Limit is the configured request timeout, or zero if only the
	// caller's context carried a deadline.
	Limit time.Duration
	// Elapsed is the time spent on the request.
	Elapsed time.Duration
	// Attempts is the number of send attempts started.
	Attempts int
	// Err is the error observed when the deadline passed.
	Err error
}

func (err *RequestTimeoutError) Error() string {
	return fmt.Sprintf("reconn: request timed out after %s (%d attempt(s)): %v", err.Elapsed, err.Attempts, err.Err)
}

// Unwrap returns the error observed when the deadline passed.
func (err *RequestTimeoutError) Unwrap() error {
	return err.Err
}

// Timeout always returns true.
func (err *RequestTimeoutError) Timeout() bool {
	return true
}

// A ResponseFormatError indicates a response body could not be parsed
// in the expected format.
type ResponseFormatError struct {
	StatusCode int
	Body       []byte
	Msg        string
}

func (err *ResponseFormatError) Error() string {
	return fmt.Sprintf("reconn: %s (status %d, %d body bytes)", err.Msg, err.StatusCode, len(err.Body))
}
