// Copyright 2021 The reconn Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"

	"github.com/gogama/reconn/request"
)

// TLSSettings holds certificate verification settings. The zero value
// verifies the peer certificate chain against the system roots,
// verifies the hostname, and requires at least TLS 1.2.
type TLSSettings struct {
	// CAFile is an optional path to a PEM file whose certificates
	// replace the system roots.
	CAFile string
	// InsecureSkipVerify disables all peer certificate verification.
	InsecureSkipVerify bool
	// SkipHostnameVerification verifies the peer certificate chain but
	// not that it was issued for the endpoint host.
	SkipHostnameVerification bool
	// MinVersion is the minimum TLS version, such as tls.VersionTLS13.
	// Zero means tls.VersionTLS12.
	MinVersion uint16
}

// Config builds a tls.Config for connecting to serverName.
//
// A CAFile which cannot be read, or which contains no certificates,
// produces a request.ConfigurationError.
func (s TLSSettings) Config(serverName string) (*tls.Config, error) {
	cfg := &tls.Config{
		ServerName: serverName,
		MinVersion: s.MinVersion,
	}
	if cfg.MinVersion == 0 {
		cfg.MinVersion = tls.VersionTLS12
	}

	if s.CAFile != "" {
		pem, err := os.ReadFile(s.CAFile)
		if err != nil {
			return nil, &request.ConfigurationError{Msg: "cannot read CA file", Err: err}
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, &request.ConfigurationError{Msg: fmt.Sprintf("no certificates found in CA file %q", s.CAFile)}
		}
		cfg.RootCAs = pool
	}

	if s.InsecureSkipVerify {
		cfg.InsecureSkipVerify = true
	} else if s.SkipHostnameVerification {
		// Chain verification is done by hand since the standard
		// verifier always checks the hostname too.
		cfg.InsecureSkipVerify = true
		cfg.VerifyConnection = verifyChain(cfg.RootCAs)
	}

	return cfg, nil
}

func verifyChain(roots *x509.CertPool) func(tls.ConnectionState) error {
	return func(cs tls.ConnectionState) error {
		if len(cs.PeerCertificates) == 0 {
			return errors.New("reconn/transport: no peer certificates")
		}
		opts := x509.VerifyOptions{
			Roots:         roots,
			Intermediates: x509.NewCertPool(),
		}
		for _, cert := range cs.PeerCertificates[1:] {
			opts.Intermediates.AddCert(cert)
		}
		_, err := cs.PeerCertificates[0].Verify(opts)
		return err
	}
}
