// Copyright 2021 The reconn Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package retry provides the retry decision and wait policies used by
// the client when a request attempt ends in a transport failure.
//
// A retry policy answers two questions after every failed attempt:
// whether to rebuild the connection and retry (the Decider) and how
// long to pause before doing so (the Waiter). The client builds its
// policy from Config.MaxRetries and Config.RetryBackoff:
//
//	retry.Bounded(n, retry.Backoff(base, max, rnd))
//
// Any wait is bounded by the overall request deadline, if one is set.
package retry
