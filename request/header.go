// Copyright 2021 The reconn Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"fmt"
	"net"
	"strings"

	"golang.org/x/net/http/httpguts"
)

// HostHeader is the normalized key of the Host header.
const HostHeader = "host"

// Normalize returns a copy of h with every key lowercased.
//
// Normalize returns an ArgumentError if two distinct keys in h
// normalize to the same lowercase key (for example "X-Id" and "x-id"),
// or if any key is not a valid HTTP header field name, or any value is
// not a valid header field value. A nil or empty h produces an empty,
// non-nil map.
func Normalize(h map[string]string) (map[string]string, error) {
	n := make(map[string]string, len(h))
	orig := make(map[string]string, len(h))
	for k, v := range h {
		if !httpguts.ValidHeaderFieldName(k) {
			return nil, &ArgumentError{Msg: fmt.Sprintf("invalid header name %q", k)}
		}
		if !httpguts.ValidHeaderFieldValue(v) {
			return nil, &ArgumentError{Msg: fmt.Sprintf("invalid value for header %q", k)}
		}
		lk := strings.ToLower(k)
		if prev, ok := orig[lk]; ok {
			return nil, &ArgumentError{Msg: fmt.Sprintf("duplicate header %q and %q", prev, k)}
		}
		orig[lk] = k
		n[lk] = v
	}
	return n, nil
}

// Merge returns a new map containing every entry of base overlaid with
// every entry of override. Where both contain a key, the value from
// override wins. Both inputs are expected to be normalized already.
func Merge(base, override map[string]string) map[string]string {
	m := make(map[string]string, len(base)+len(override))
	for k, v := range base {
		m[k] = v
	}
	for k, v := range override {
		m[k] = v
	}
	return m
}

// ValidateHost checks the host entry of the normalized header map h
// against the endpoint host.
//
// If h has no host entry, ValidateHost adds one with the value
// endpointHost. If h has a host entry which does not match endpointHost,
// a ConfigurationError is returned. A host entry matches if it equals
// endpointHost case-insensitively, either in full or ignoring the port
// of endpointHost.
func ValidateHost(h map[string]string, endpointHost string) error {
	v, ok := h[HostHeader]
	if !ok {
		h[HostHeader] = endpointHost
		return nil
	}
	if strings.EqualFold(v, endpointHost) {
		return nil
	}
	if name, _, err := net.SplitHostPort(endpointHost); err == nil && strings.EqualFold(strings.Trim(v, "[]"), name) {
		return nil
	}
	return &ConfigurationError{
		Msg: fmt.Sprintf("host header %q does not match endpoint host %q", v, endpointHost),
	}
}
