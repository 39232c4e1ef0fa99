// Copyright 2021 The reconn Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

// An ArgumentError indicates the caller misused the request building
// API, for example by supplying query parameters in both the path and
// the params argument, or by supplying two header keys which differ
// only by case.
//
// An ArgumentError is always detected before any network activity and
// is never retried.
type ArgumentError struct {
	Msg string
}

func (err *ArgumentError) Error() string {
	return "reconn: " + err.Msg
}

// A ConfigurationError indicates a client configuration problem, such
// as a Host header that does not match the client endpoint, an invalid
// configuration value, or use of a client which has been closed.
type ConfigurationError struct {
	Msg string
	// Err is an optional underlying cause.
	Err error
}

func (err *ConfigurationError) Error() string {
	if err.Err != nil {
		return "reconn: " + err.Msg + ": " + err.Err.Error()
	}
	return "reconn: " + err.Msg
}

// Unwrap returns the underlying cause, if any.
func (err *ConfigurationError) Unwrap() error {
	return err.Err
}
