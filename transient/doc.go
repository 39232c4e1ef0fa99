// Copyright 2021 The reconn Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package transient classifies errors from sending an HTTP request over
// a persistent connection as transport failures or application errors.
//
// A transport failure (any Category other than Not) means the
// connection itself is suspect: it timed out, was refused or reset, or
// broke mid-exchange. The client responds to a transport failure by
// discarding the connection, opening a new one, and retrying. Every
// other error is an application error and is returned to the caller
// untouched.
package transient
