// Copyright 2021 The reconn Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package transport defines the boundary between the client and the
layer which actually moves bytes: an Opener opens a Conn to an
Endpoint using connection Settings, and a Conn sends built requests and
returns buffered responses.

The default Opener, HTTP, is backed by the standard library
http.Transport, configured with the open, read and idle timeouts, pool
size and TLS settings from Settings. For https endpoints it enables
HTTP/2 via golang.org/x/net/http2 unless Settings.DisableHTTP2 is set.

	conn, err := transport.HTTP.Open(ep, transport.Settings{
		OpenTimeout: 2 * time.Second,
		ReadTimeout: 10 * time.Second,
	})

Custom Openers are useful for tests and for exotic transports. A Conn
must honor context cancellation if it can; if it cannot, the client
abandons the in-flight Send when the overall request deadline passes
and discards its eventual result.
*/
package transport
