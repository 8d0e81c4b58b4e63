// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package jsonrpc2 holds the JSON-RPC instrumentation shared by the server.
package jsonrpc2

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// MeterName is the instrumentation scope of the RPC metrics.
const MeterName = "github.com/go-a2a/research-agent/internal/jsonrpc2"

// Metrics records per method RPC counters and latency.
type Metrics struct {
	started       metric.Int64Counter
	finished      metric.Int64Counter
	receivedBytes metric.Int64Histogram
	sentBytes     metric.Int64Histogram
	latency       metric.Float64Histogram
}

// NewMetrics creates the RPC instruments on m. Instruments that fail to register
// are replaced by no-ops and the error is passed to [otel.Handle].
func NewMetrics(m metric.Meter) *Metrics {
	if m == nil {
		m = otel.GetMeterProvider().Meter(MeterName)
	}

	var (
		ms  Metrics
		err error
	)

	ms.started, err = m.Int64Counter("rpc.server.started",
		metric.WithDescription("Count of started RPCs"),
	)
	if err != nil {
		otel.Handle(err)
		ms.started = noop.Int64Counter{}
	}

	ms.finished, err = m.Int64Counter("rpc.server.finished",
		metric.WithDescription("Count of finished RPCs by error code"),
	)
	if err != nil {
		otel.Handle(err)
		ms.finished = noop.Int64Counter{}
	}

	ms.receivedBytes, err = m.Int64Histogram("rpc.server.request.size",
		metric.WithDescription("Bytes received"),
		metric.WithUnit("By"),
	)
	if err != nil {
		otel.Handle(err)
		ms.receivedBytes = noop.Int64Histogram{}
	}

	ms.sentBytes, err = m.Int64Histogram("rpc.server.response.size",
		metric.WithDescription("Bytes sent"),
		metric.WithUnit("By"),
	)
	if err != nil {
		otel.Handle(err)
		ms.sentBytes = noop.Int64Histogram{}
	}

	ms.latency, err = m.Float64Histogram("rpc.server.duration",
		metric.WithDescription("RPC latency"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		otel.Handle(err)
		ms.latency = noop.Float64Histogram{}
	}

	return &ms
}

// Started records the start of an RPC.
func (m *Metrics) Started(ctx context.Context, method string, received int) {
	attrs := metric.WithAttributes(attribute.String("rpc.method", method))
	m.started.Add(ctx, 1, attrs)
	m.receivedBytes.Record(ctx, int64(received), attrs)
}

// Finished records the outcome of an RPC. code is zero on success.
func (m *Metrics) Finished(ctx context.Context, method string, code int, sent int, elapsed time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("rpc.method", method),
		attribute.Int("rpc.jsonrpc.error_code", code),
	)
	m.finished.Add(ctx, 1, attrs)
	m.sentBytes.Record(ctx, int64(sent), attrs)
	m.latency.Record(ctx, float64(elapsed)/float64(time.Millisecond), attrs)
}
