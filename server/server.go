// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package server serves the A2A JSON-RPC protocol over HTTP.
package server

import (
	"errors"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-a2a/research-agent/a2a"
	"github.com/go-a2a/research-agent/auth"
	"github.com/go-a2a/research-agent/internal/jsonrpc2"
)

// DefaultMaxBodyBytes is the default limit on JSON-RPC request bodies.
const DefaultMaxBodyBytes = 1 << 20

// Server implements the A2A protocol server.
type Server struct {
	taskManager   TaskManager
	agentCard     *a2a.AgentCard
	mux           *http.ServeMux
	endpoint      string
	logger        *slog.Logger
	tracer        trace.Tracer
	meter         metric.Meter
	metrics       *jsonrpc2.Metrics
	authenticator auth.Authenticator
	maxBodyBytes  int64
}

// Config holds configuration for the A2A server.
type Config struct {
	// AgentCard is served at the well-known agent card path.
	AgentCard *a2a.AgentCard
	// TaskManager handles the task methods.
	TaskManager TaskManager
}

// NewServer creates a new A2A server instance with the provided configuration.
func NewServer(cfg Config, opts ...Option) (*Server, error) {
	if cfg.AgentCard == nil {
		return nil, errors.New("agent card is required")
	}
	if cfg.TaskManager == nil {
		return nil, errors.New("task manager is required")
	}

	s := &Server{
		taskManager:  cfg.TaskManager,
		agentCard:    cfg.AgentCard,
		mux:          http.NewServeMux(),
		endpoint:     "/",
		logger:       slog.Default(),
		tracer:       otel.GetTracerProvider().Tracer("github.com/go-a2a/research-agent/server"),
		maxBodyBytes: DefaultMaxBodyBytes,
	}
	for _, o := range opts {
		o(s)
	}
	s.metrics = jsonrpc2.NewMetrics(s.meter)

	s.mux.HandleFunc("GET "+a2a.AgentCardPath, s.handleAgentCard)
	s.mux.Handle("POST "+s.endpoint, s.authenticate(http.HandlerFunc(s.handleRPC)))

	return s, nil
}

// ServeHTTP implements [http.Handler].
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// AgentCard returns the served agent card.
func (s *Server) AgentCard() *a2a.AgentCard {
	return s.agentCard
}

func (s *Server) handleAgentCard(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.agentCard)
}

// authenticate places the caller on the request context, rejecting requests
// that fail authentication when an authenticator is configured.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.authenticator == nil {
			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), auth.UnauthenticatedUser{})))
			return
		}

		user, err := s.authenticator.Authenticate(r)
		if err != nil {
			s.logger.WarnContext(r.Context(), "authentication failed", "remote_addr", r.RemoteAddr, "error", err)
			w.Header().Set("WWW-Authenticate", `Bearer realm="a2a"`)
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
	})
}
