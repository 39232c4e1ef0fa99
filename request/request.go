// Copyright 2021 The reconn Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"fmt"
	"strings"
)

// Content types recognized by Builder.
const (
	ContentTypeJSON = "application/json"
	ContentTypeForm = "application/x-www-form-urlencoded"
)

const contentTypeHeader = "content-type"

// A Request is an immutable outbound HTTP request built by a Builder.
//
// A Request is built once per logical call and is reused unchanged by
// every attempt made for that call, including attempts made after the
// client rebuilds its connection.
type Request struct {
	method string
	target string
	header map[string]string
	body   []byte
}

// Method returns the HTTP method, one of HEAD, GET, POST, PUT, DELETE,
// or PATCH.
func (r *Request) Method() string {
	return r.method
}

// Target returns the request target: the path plus any query string.
func (r *Request) Target() string {
	return r.target
}

// Header returns a copy of the request headers. Keys are lowercase.
func (r *Request) Header() map[string]string {
	h := make(map[string]string, len(r.header))
	for k, v := range r.header {
		h[k] = v
	}
	return h
}

// HeaderValue returns the value of the header with the given name,
// which is matched case-insensitively, and whether it was present.
func (r *Request) HeaderValue(name string) (string, bool) {
	v, ok := r.header[strings.ToLower(name)]
	return v, ok
}

// Host returns the value of the host header.
func (r *Request) Host() string {
	return r.header[HostHeader]
}

// Body returns the request body, which is nil if the request has no
// body. The caller must not modify the returned slice.
func (r *Request) Body() []byte {
	return r.body
}

// String returns the method and target, for example "GET /x?a=1".
func (r *Request) String() string {
	return r.method + " " + r.target
}

// A Builder assembles Requests for a single endpoint.
//
// Builder is a value type: a zero Builder has no default headers, and
// because Build never modifies the Builder, a Builder snapshot may be
// used concurrently.
type Builder struct {
	// Defaults holds the normalized default headers applied to every
	// request unless overridden by a per-call header.
	Defaults map[string]string
	// Host is the endpoint host, including the port if it is not the
	// default port for the scheme.
	Host string
}

// Build constructs a Request. Build performs no I/O.
//
// Parameter params may be nil, a string or []byte (used verbatim),
// Params, url.Values, map[string]string, or, for mutating methods
// only, any value which can be serialized as JSON.
//
// For HEAD and GET, non-empty params are form-url-encoded and
// appended to path as the query string. For POST, PUT, PATCH, and
// DELETE, non-empty params become the request body: if no content-type
// header is set, it defaults to application/json; a string or []byte
// is sent verbatim; with a form-url-encoded content-type the params are
// form-url-encoded; otherwise they are serialized as JSON.
//
// Build returns an ArgumentError if path contains a '?' and params is
// non-empty, if the method is not supported, or if the headers are
// invalid. It returns a ConfigurationError if a host header disagrees
// with b.Host.
func (b Builder) Build(method, path string, header map[string]string, params interface{}) (*Request, error) {
	if !validMethod(method) {
		return nil, &ArgumentError{Msg: fmt.Sprintf("unsupported method %q", method)}
	}
	hasParams := !emptyParams(params)
	if hasParams && strings.Contains(path, "?") {
		return nil, &ArgumentError{Msg: fmt.Sprintf("path %q already has a query and params were also given", path)}
	}
	n, err := Normalize(header)
	if err != nil {
		return nil, err
	}
	h := Merge(b.Defaults, n)
	if err = ValidateHost(h, b.Host); err != nil {
		return nil, err
	}

	r := &Request{
		method: method,
		target: normalizePath(path),
		header: h,
	}
	if !hasParams {
		return r, nil
	}

	if !mutating(method) {
		q, err := formEncode(params)
		if err != nil {
			return nil, err
		}
		r.target += "?" + q
		return r, nil
	}

	ct, ok := h[contentTypeHeader]
	if !ok {
		ct = ContentTypeJSON
		h[contentTypeHeader] = ct
	}
	switch x := params.(type) {
	case string:
		r.body = []byte(x)
	case []byte:
		r.body = append([]byte(nil), x...)
	default:
		if isForm(ct) {
			var s string
			s, err = formEncode(params)
			r.body = []byte(s)
		} else {
			r.body, err = jsonEncode(params)
		}
		if err != nil {
			return nil, err
		}
	}
	return r, nil
}

func normalizePath(path string) string {
	if !strings.HasPrefix(path, "/") {
		return "/" + path
	}
	return path
}

func isForm(contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	return strings.HasPrefix(ct, ContentTypeForm)
}

func mutating(method string) bool {
	switch method {
	case "POST", "PUT", "PATCH", "DELETE":
		return true
	default:
		return false
	}
}

func validMethod(method string) bool {
	switch method {
	case "HEAD", "GET", "POST", "PUT", "PATCH", "DELETE":
		return true
	default:
		return false
	}
}
