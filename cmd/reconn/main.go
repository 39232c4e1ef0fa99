// Copyright 2021 The reconn Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Command reconn issues one-off requests and liveness probes through a
// reconn.Client.
//
//	reconn get https://api.example.com /users -p limit=10
//	reconn get https://api.example.com /users --json 'users.#.name'
//	reconn do POST https://api.example.com /users -p name=Jo
//	reconn alive https://api.example.com /health
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
