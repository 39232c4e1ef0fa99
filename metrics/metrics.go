// Copyright 2021 The reconn Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package metrics exports Prometheus metrics for a reconn.Client by
// installing event handlers into the client's handler group.
//
//	reg := prometheus.NewRegistry()
//	handlers := &reconn.HandlerGroup{}
//	metrics.New(reg, "billing").Install(handlers)
//	client, err := reconn.NewClient(endpoint, reconn.Config{
//		Name:     "billing",
//		Handlers: handlers,
//	})
package metrics

import (
	"context"
	"errors"

	"github.com/gogama/reconn"
	"github.com/gogama/reconn/request"
	"github.com/gogama/reconn/transient"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace prefixes every metric name.
const Namespace = "reconn"

// Request outcomes, used as the "outcome" label of the requests
// counter.
const (
	OutcomeSuccess         = "success"
	OutcomeConnectionError = "connection_error"
	OutcomeTimeout         = "timeout"
	OutcomeCanceled        = "canceled"
	OutcomeError           = "error"
)

// Metrics holds the Prometheus collectors for one client.
type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge
	AttemptsTotal    *prometheus.CounterVec
	RebuildsTotal    prometheus.Counter
	TimeoutsTotal    prometheus.Counter
}

// New creates the collectors for the named client and registers them
// with reg. If reg is nil, prometheus.DefaultRegisterer is used.
//
// The client name is attached to every metric as the constant label
// "client", so several clients may share one registry.
func New(reg prometheus.Registerer, client string) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	labels := prometheus.Labels{"client": client}
	return &Metrics{
		RequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   Namespace,
				Name:        "requests_total",
				Help:        "Total number of logical requests by method and outcome",
				ConstLabels: labels,
			},
			[]string{"method", "outcome"},
		),
		RequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   Namespace,
				Name:        "request_duration_seconds",
				Help:        "Logical request latency, including retries",
				Buckets:     prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to ~16s
				ConstLabels: labels,
			},
			[]string{"method"},
		),
		RequestsInFlight: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace:   Namespace,
				Name:        "requests_in_flight",
				Help:        "Current number of logical requests being executed",
				ConstLabels: labels,
			},
		),
		AttemptsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   Namespace,
				Name:        "attempts_total",
				Help:        "Total number of send attempts by transport failure category",
				ConstLabels: labels,
			},
			[]string{"category"},
		),
		RebuildsTotal: f.NewCounter(
			prometheus.CounterOpts{
				Namespace:   Namespace,
				Name:        "rebuilds_total",
				Help:        "Total number of connection rebuilds",
				ConstLabels: labels,
			},
		),
		TimeoutsTotal: f.NewCounter(
			prometheus.CounterOpts{
				Namespace:   Namespace,
				Name:        "request_timeouts_total",
				Help:        "Total number of logical requests which exceeded the overall deadline",
				ConstLabels: labels,
			},
		),
	}
}

// Install adds the handlers which update m to g.
func (m *Metrics) Install(g *reconn.HandlerGroup) {
	g.PushBack(reconn.BeforeExecutionStart, reconn.HandlerFunc(m.start))
	g.PushBack(reconn.AfterAttempt, reconn.HandlerFunc(m.attempt))
	g.PushBack(reconn.BeforeRebuild, reconn.HandlerFunc(m.rebuild))
	g.PushBack(reconn.AfterRequestTimeout, reconn.HandlerFunc(m.timeout))
	g.PushBack(reconn.AfterExecutionEnd, reconn.HandlerFunc(m.end))
}

func (m *Metrics) start(_ reconn.Event, _ *request.Execution) {
	m.RequestsInFlight.Inc()
}

func (m *Metrics) attempt(_ reconn.Event, e *request.Execution) {
	m.AttemptsTotal.WithLabelValues(transient.Categorize(e.Err).String()).Inc()
}

func (m *Metrics) rebuild(_ reconn.Event, _ *request.Execution) {
	m.RebuildsTotal.Inc()
}

func (m *Metrics) timeout(_ reconn.Event, _ *request.Execution) {
	m.TimeoutsTotal.Inc()
}

func (m *Metrics) end(_ reconn.Event, e *request.Execution) {
	m.RequestsInFlight.Dec()
	method := e.Request.Method()
	m.RequestsTotal.WithLabelValues(method, Outcome(e.Err)).Inc()
	m.RequestDuration.WithLabelValues(method).Observe(e.Duration().Seconds())
}

// Outcome classifies the error returned by a client request.
func Outcome(err error) string {
	var connErr *reconn.ConnectionError
	var timeoutErr *reconn.RequestTimeoutError
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.As(err, &timeoutErr):
		return OutcomeTimeout
	case errors.As(err, &connErr):
		return OutcomeConnectionError
	case errors.Is(err, context.Canceled):
		return OutcomeCanceled
	default:
		return OutcomeError
	}
}
