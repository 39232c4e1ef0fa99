// Copyright 2021 The reconn Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package reconn

// An Event identifies the event type when installing or running a
// Handler. Install event handlers in a Client to extend it with custom
// functionality, such as metrics.
type Event int

const (
	// BeforeExecutionStart identifies the event that occurs before the
	// request execution starts.
	//
	// When Client fires BeforeExecutionStart, the execution is
	// non-nil but the only field that has been set is the request.
	BeforeExecutionStart Event = iota
	// BeforeAttempt identifies the event that occurs before each send
	// attempt, including the initial attempt and every retry.
	//
	// When Client fires BeforeAttempt, the execution's Response and
	// Err fields are nil.
	BeforeAttempt
	// AfterAttemptTimeout identifies the event that occurs after a
	// send attempt failed because of a transport-level timeout, such
	// as the read timeout.
	AfterAttemptTimeout
	// AfterAttempt identifies the event that occurs after every send
	// attempt, regardless of whether it succeeded.
	//
	// When Client fires AfterAttempt, exactly one of the execution's
	// Response and Err fields is non-nil. AfterAttempt runs before the
	// retry policy is consulted.
	AfterAttempt
	// BeforeRebuild identifies the event that occurs after the retry
	// policy decided to retry a transport failure, and after the retry
	// wait, but before the connection is rebuilt.
	//
	// When Client fires BeforeRebuild, the execution's Err field holds
	// the transport failure that triggered the rebuild.
	BeforeRebuild
	// AfterRequestTimeout identifies the event that occurs when the
	// overall request deadline passes. It may be detected during an
	// attempt, while rate limited, or during the retry wait.
	//
	// When Client fires AfterRequestTimeout, the execution's Err
	// field is a *RequestTimeoutError.
	AfterRequestTimeout
	// AfterExecutionEnd identifies the event that occurs after the
	// request execution ends.
	//
	// When Client fires AfterExecutionEnd, the execution's End field
	// is set and its Err field holds the error returned to the caller,
	// if any.
	AfterExecutionEnd
	// eventSentinel provides the total number of events typed as an
	// Event.
	eventSentinel

	// numEvents provides the total number of events types as an int.
	numEvents = int(eventSentinel)
)

var eventNames = []string{
	"BeforeExecutionStart",
	"BeforeAttempt",
	"AfterAttemptTimeout",
	"AfterAttempt",
	"BeforeRebuild",
	"AfterRequestTimeout",
	"AfterExecutionEnd",
}

// Events returns a slice containing all events which can occur in a
// request execution by Client, in the order in which they would occur.
func Events() []Event {
	return []Event{
		BeforeExecutionStart,
		BeforeAttempt,
		AfterAttemptTimeout,
		AfterAttempt,
		BeforeRebuild,
		AfterRequestTimeout,
		AfterExecutionEnd,
	}
}

// Name returns the name of the event.
func (evt Event) Name() string {
	return eventNames[int(evt)]
}

// String returns the name of the event.
func (evt Event) String() string {
	return evt.Name()
}
