// Copyright 2021 The reconn Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package reconn provides an HTTP client bound to a single origin, which
keeps a long-lived connection to the origin and transparently recovers
when that connection goes stale or is closed by the server.

Create a Client to begin making requests.

	client, err := reconn.NewClient("https://api.example.com", reconn.Config{
		DefaultHeaders: map[string]string{"accept": "application/json"},
		RequestTimeout: 10 * time.Second,
	})
	...
	defer client.Close()
	resp, err := client.Get(ctx, "/users", nil, request.P("limit", "10"))
	...
	resp, err := client.Post(ctx, "/users", nil, map[string]string{"name": "Jo"})

When a request fails because of a transport failure (connection reset
or refused, a protocol error, or a transport-level timeout) the client
discards its connection, opens a new one, and sends the same request
again, up to Config.MaxRetries times. The optional Config.RequestTimeout
spans the initial attempt and every retry. Application-level failures,
including responses with 4XX and 5XX status codes, are never retried.

For control over the wait between retries, set Config.RetryBackoff:

	client, err := reconn.NewClient(endpoint, reconn.Config{
		MaxRetries:   reconn.Retries(3),
		RetryBackoff: reconn.Backoff{Base: 100 * time.Millisecond, Max: 2 * time.Second},
	})

Configuration may also be loaded from a YAML file with LoadConfig.

To hook into the fine-grained details of the client's request execution
logic, install a handler into the appropriate handler chain:

	handlers := &reconn.HandlerGroup{}
	handlers.PushBack(reconn.BeforeRebuild, reconn.HandlerFunc(
		func(_ reconn.Event, e *request.Execution) {
			log.Printf("Rebuilding after attempt %d of %s: %v", e.Attempt, e.Request, e.Err)
		}),
	)
	client, err := reconn.NewClient(endpoint, reconn.Config{Handlers: handlers})

Package metrics uses handlers to export Prometheus metrics.

Package reconn provides an interface for the Do method of the client
(Doer); a combined interface that composes Do and all the verb methods
(Executor); and utility functions for working with a Doer (Inflate,
Get, Head, Post, Put, Patch and Delete).
*/
package reconn
