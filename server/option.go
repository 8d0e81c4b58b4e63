// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"log/slog"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-a2a/research-agent/auth"
)

// Option represents an option for configuring the [Server].
type Option func(*Server)

// WithEndpoint sets the path of the JSON-RPC endpoint for the [Server].
func WithEndpoint(endpoint string) Option {
	return func(s *Server) {
		s.endpoint = endpoint
	}
}

// WithLogger sets the [*slog.Logger] for the [Server].
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithTracer sets the [trace.Tracer] for the [Server].
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Server) {
		s.tracer = tracer
	}
}

// WithMeter sets the [metric.Meter] recording RPC metrics for the [Server].
func WithMeter(meter metric.Meter) Option {
	return func(s *Server) {
		s.meter = meter
	}
}

// WithAuthenticator requires callers of the JSON-RPC endpoint to authenticate.
// The agent card stays public.
func WithAuthenticator(a auth.Authenticator) Option {
	return func(s *Server) {
		s.authenticator = a
	}
}

// WithMaxBodyBytes limits the size of JSON-RPC request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}
