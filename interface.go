// Copyright 2021 The reconn Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package reconn

import (
	"context"
)

// Doer is the interface that wraps the basic Do method.
//
// Do builds a request from method, path, header and params, executes
// it, and returns the final response (or error). Client implements the
// Doer interface, and any other Doer implementation must behave
// substantially the same as Client.Do.
//
// Any Doer can be used to emulate the verb methods via the package
// functions Get, Head, Post, Put, Patch and Delete.
type Doer interface {
	Do(ctx context.Context, method, path string, header map[string]string, params interface{}) (*Response, error)
}

// Getter is the interface that wraps the basic Get method.
type Getter interface {
	Get(ctx context.Context, path string, header map[string]string, params interface{}) (*Response, error)
}

// Poster is the interface that wraps the basic Post method.
type Poster interface {
	Post(ctx context.Context, path string, header map[string]string, params interface{}) (*Response, error)
}

// Executor is the interface that groups Do with every verb method.
type Executor interface {
	Doer
	Getter
	Poster
	Head(ctx context.Context, path string, header map[string]string, params interface{}) (*Response, error)
	Put(ctx context.Context, path string, header map[string]string, params interface{}) (*Response, error)
	Patch(ctx context.Context, path string, header map[string]string, params interface{}) (*Response, error)
	Delete(ctx context.Context, path string, header map[string]string, params interface{}) (*Response, error)
}

// Get uses the specified Doer to issue a GET. The params are encoded
// into the query string.
func Get(ctx context.Context, d Doer, path string, header map[string]string, params interface{}) (*Response, error) {
	return d.Do(ctx, "GET", path, header, params)
}

// Head uses the specified Doer to issue a HEAD. The params are encoded
// into the query string.
func Head(ctx context.Context, d Doer, path string, header map[string]string, params interface{}) (*Response, error) {
	return d.Do(ctx, "HEAD", path, header, params)
}

// Post uses the specified Doer to issue a POST. The params are encoded
// into the body according to the content type, which defaults to
// application/json.
func Post(ctx context.Context, d Doer, path string, header map[string]string, params interface{}) (*Response, error) {
	return d.Do(ctx, "POST", path, header, params)
}

// Put uses the specified Doer to issue a PUT, encoding params as Post
// does.
func Put(ctx context.Context, d Doer, path string, header map[string]string, params interface{}) (*Response, error) {
	return d.Do(ctx, "PUT", path, header, params)
}

// Patch uses the specified Doer to issue a PATCH, encoding params as
// Post does.
func Patch(ctx context.Context, d Doer, path string, header map[string]string, params interface{}) (*Response, error) {
	return d.Do(ctx, "PATCH", path, header, params)
}

// Delete uses the specified Doer to issue a DELETE, encoding params as
// Post does.
func Delete(ctx context.Context, d Doer, path string, header map[string]string, params interface{}) (*Response, error) {
	return d.Do(ctx, "DELETE", path, header, params)
}

// Inflate converts any non-nil Doer into an Executor.
func Inflate(d Doer) Executor {
	if d == nil {
		panic("reconn: nil doer")
	}

	if e, ok := d.(Executor); ok {
		return e
	}

	return inflated{d}
}

type inflated struct {
	doer Doer
}

func (i inflated) Do(ctx context.Context, method, path string, header map[string]string, params interface{}) (*Response, error) {
	return i.doer.Do(ctx, method, path, header, params)
}

func (i inflated) Get(ctx context.Context, path string, header map[string]string, params interface{}) (*Response, error) {
	return Get(ctx, i.doer, path, header, params)
}

func (i inflated) Head(ctx context.Context, path string, header map[string]string, params interface{}) (*Response, error) {
	return Head(ctx, i.doer, path, header, params)
}

func (i inflated) Post(ctx context.Context, path string, header map[string]string, params interface{}) (*Response, error) {
	return Post(ctx, i.doer, path, header, params)
}

func (i inflated) Put(ctx context.Context, path string, header map[string]string, params interface{}) (*Response, error) {
	return Put(ctx, i.doer, path, header, params)
}

func (i inflated) Patch(ctx context.Context, path string, header map[string]string, params interface{}) (*Response, error) {
	return Patch(ctx, i.doer, path, header, params)
}

func (i inflated) Delete(ctx context.Context, path string, header map[string]string, params interface{}) (*Response, error) {
	return Delete(ctx, i.doer, path, header, params)
}
