// Copyright 2021 The reconn Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package reconn

import (
	"errors"
	"sync"
	"time"

	"github.com/gogama/reconn/transport"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// A connManager owns the client's single live connection and rebuilds
// it on demand.
//
// Each connection built is stamped with a generation number. A caller
// which saw a connection fail passes its generation to rebuild, so that
// when several goroutines observe the same broken connection only the
// first of them replaces it.
type connManager struct {
	opener   transport.Opener
	endpoint transport.Endpoint
	settings transport.Settings
	logger   *zap.Logger

	mu     sync.Mutex
	conn   transport.Conn
	gen    int
	closed *atomic.Bool
}

func newConnManager(opener transport.Opener, ep transport.Endpoint, s transport.Settings, logger *zap.Logger) (*connManager, error) {
	m := &connManager{
		opener:   opener,
		endpoint: ep,
		settings: s,
		logger:   logger,
		closed:   atomic.NewBool(false),
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.open(); err != nil {
		return nil, err
	}
	return m, nil
}

// current returns the live connection and its generation, opening a
// connection if the previous rebuild failed.
func (m *connManager) current() (transport.Conn, int, error) {
	if m.closed.Load() {
		return nil, 0, closedError()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed.Load() {
		return nil, 0, closedError()
	}
	if m.conn == nil {
		if err := m.open(); err != nil {
			return nil, 0, err
		}
	}
	return m.conn, m.gen, nil
}

// rebuild discards the connection of generation gen and opens a new
// one. If the connection has already been replaced, rebuild returns
// without doing anything.
func (m *connManager) rebuild(gen int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed.Load() {
		return closedError()
	}
	if gen != m.gen && m.conn != nil {
		return nil
	}
	m.discard()
	return m.open()
}

// close closes the live connection. It is idempotent, and once closed
// the manager never opens another connection.
func (m *connManager) close() error {
	if !m.closed.CAS(false, true) {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conn == nil {
		return nil
	}
	err := m.conn.Close()
	m.conn = nil
	return err
}

func (m *connManager) isClosed() bool {
	return m.closed.Load()
}

func (m *connManager) discard() {
	if m.conn == nil {
		return
	}
	if err := m.conn.Close(); err != nil {
		m.logger.Debug("error closing connection", zap.Int("generation", m.gen), zap.Error(err))
	}
	m.conn = nil
}

func (m *connManager) open() error {
	start := time.Now()
	conn, err := m.opener.Open(m.endpoint, m.settings)
	if err != nil {
		var cfgErr *ConfigurationError
		if errors.As(err, &cfgErr) {
			return err
		}
		return &ConnectionError{Elapsed: time.Since(start), Err: err}
	}
	if conn == nil {
		return &ConnectionError{Elapsed: time.Since(start), Err: errors.New("opener returned nil connection")}
	}
	m.conn = conn
	m.gen++
	m.logger.Debug("connection opened", zap.Int("generation", m.gen), zap.Duration("elapsed", time.Since(start)))
	return nil
}
