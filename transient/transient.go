// Copyright 2021 The reconn Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transient

import (
	"errors"
	"io"
	"syscall"

	"golang.org/x/net/http2"
)

// A Category is the transience category of a particular error, as
// reported by function Categorize().
//
// The category Not means the error is not a transport failure. All
// other categories identify a transport failure, after which the
// connection should be rebuilt before retrying.
type Category int

const (
	// Not indicates any error which is not a transport failure,
	// including the nil error.
	Not Category = iota
	// Timeout indicates a transport-level timeout, such as a dial
	// timeout or a read timeout waiting for response headers.
	//
	// Function Categorize() will return Timeout if the error or any of
	// its wrapped causes has a Timeout() function that reports true.
	Timeout
	// ConnRefused indicates the remote host refused the connection, and
	// corresponds to the POSIX error code ECONNREFUSED. It is typical
	// while the remote service is restarting.
	ConnRefused
	// ConnReset indicates the remote host reset a previously active
	// connection (ECONNRESET), or the local side wrote to a connection
	// the remote host had already closed (EPIPE). This is the usual
	// symptom of a stale keep-alive connection.
	ConnReset
	// Protocol indicates the persistent connection broke at the
	// protocol level: the server closed it before a complete response
	// was read (io.EOF or io.ErrUnexpectedEOF), or an HTTP/2 connection
	// was torn down by GOAWAY or a connection error.
	Protocol
)

var categoryNames = []string{
	"Not",
	"Timeout",
	"ConnRefused",
	"ConnReset",
	"Protocol",
}

// String returns the name of the category.
func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "Unknown"
	}
	return categoryNames[c]
}

// Categorize returns the transience category of the given error. A nil
// error, and an error that is not a transport failure, both produce the
// return value Not.
//
// In assessing transience, Categorize looks at wrapped cause errors
// contained within err, not just err itself. Timeout takes precedence
// over the other categories. Categorize never checks if an error has a
// Temporary() function that returns true, as the semantics of
// Temporary() aren't entirely clear.
func Categorize(err error) Category {
	if err == nil {
		return Not
	}

	var hasTimeout hasTimeout
	if errors.As(err, &hasTimeout) && hasTimeout.Timeout() {
		return Timeout
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.ECONNRESET, syscall.EPIPE:
			return ConnReset
		case syscall.ECONNREFUSED:
			return ConnRefused
		}
	}

	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return Protocol
	}

	var goAway http2.GoAwayError
	if errors.As(err, &goAway) {
		return Protocol
	}
	var connErr http2.ConnectionError
	if errors.As(err, &connErr) {
		return Protocol
	}

	return Not
}

// IsTransport reports whether err is a transport failure, that is,
// whether Categorize(err) is anything other than Not.
func IsTransport(err error) bool {
	return Categorize(err) != Not
}

type hasTimeout interface {
	Timeout() bool
}
