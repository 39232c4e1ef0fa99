// Copyright 2021 The reconn Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package request contains the core types Request (an immutable outbound
HTTP request), Builder (which assembles Requests), Response (a buffered
HTTP response) and Execution (the state of one logical request
execution, including retries).

Build a request against an endpoint host:

	b := request.Builder{Host: "api.example.com"}
	r, err := b.Build("GET", "/users", nil, request.P("limit", "10"))
	...
	r.Target() // "/users?limit=10"

Header keys are normalized to lowercase. Supplying two keys which
differ only by case is an ArgumentError, as is supplying query
parameters both in the path and in params. A host header which does
not match the Builder host is a ConfigurationError. Building is pure,
so every such error is detected before any network activity.

The package also provides the HeaderSet helpers Normalize, Merge and
ValidateHost used by Builder.
*/
package request
