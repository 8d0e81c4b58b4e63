// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package research runs the web research agent behind the A2A server.
//
// An [Executor] drives a chat model through a function calling loop with a web
// search tool, then splits the final answer into a summary and its sources.
package research

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-a2a/research-agent/internal/llm"
)

const tracerName = "github.com/go-a2a/research-agent/research"

var (
	// ErrStreamingUnsupported is returned by [Executor.Stream].
	ErrStreamingUnsupported = errors.New("streaming is not supported by the research agent")

	// ErrMaxIterations is reported when the model keeps calling tools past the iteration budget.
	ErrMaxIterations = errors.New("agent stopped after reaching the maximum number of iterations")

	// ErrEmptyOutput is reported when the model ends its turn without any text.
	ErrEmptyOutput = errors.New("agent returned an empty answer")
)

// Tool is a function the research agent may call.
type Tool interface {
	Definition() llm.ToolDefinition
	Call(ctx context.Context, arguments string) (string, error)
}

// Executor runs research queries.
type Executor struct {
	provider      llm.Provider
	tools         map[string]Tool
	defs          []llm.ToolDefinition
	timeout       time.Duration
	maxIterations int
	logger        *slog.Logger
	tracer        trace.Tracer
}

// Option configures an [Executor].
type Option func(*Executor)

// WithTool registers a tool the model can call.
func WithTool(t Tool) Option {
	return func(e *Executor) {
		def := t.Definition()
		e.tools[def.Name] = t
		e.defs = append(e.defs, def)
	}
}

// WithTimeout bounds a single invocation. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(e *Executor) {
		e.timeout = d
	}
}

// WithMaxIterations sets how many model turns one invocation may take.
func WithMaxIterations(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.maxIterations = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) {
		e.logger = l
	}
}

// WithTracer sets the tracer.
func WithTracer(t trace.Tracer) Option {
	return func(e *Executor) {
		e.tracer = t
	}
}

// NewExecutor returns an Executor backed by provider.
func NewExecutor(provider llm.Provider, opts ...Option) *Executor {
	e := &Executor{
		provider:      provider,
		tools:         make(map[string]Tool),
		timeout:       5 * time.Minute,
		maxIterations: 10,
		logger:        slog.Default(),
		tracer:        otel.GetTracerProvider().Tracer(tracerName),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

type outcome struct {
	text string
	err  error
}

// Invoke researches query and never returns an error: failures are reported as a [Failure].
//
// The agent runs on its own goroutine. When the timeout elapses or ctx is done,
// Invoke returns a Failure and the agent's context is canceled.
func (e *Executor) Invoke(ctx context.Context, query, sessionID string) Result {
	id := newResultID()

	ctx, span := e.tracer.Start(ctx, "research.Executor.Invoke", trace.WithAttributes(
		attribute.String("research.result_id", id),
		attribute.String("a2a.session_id", sessionID),
	))
	defer span.End()

	if strings.TrimSpace(query) == "" {
		return e.fail(ctx, span, id, errors.New("query is empty"))
	}

	var cancel context.CancelFunc
	if e.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	done := make(chan outcome, 1)
	go func() {
		text, err := e.run(ctx, query)
		done <- outcome{text: text, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			return e.fail(ctx, span, id, out.err)
		}
		content, sources := ParseOutput(out.text)
		span.SetAttributes(attribute.Int("research.sources", len(sources)))
		e.logger.InfoContext(ctx, "research completed", "result_id", id, "sources", len(sources))
		return Success{ID: id, Content: content, Sources: sources}

	case <-ctx.Done():
		return e.fail(ctx, span, id, ctx.Err())
	}
}

// Stream is not supported and always returns [ErrStreamingUnsupported].
func (e *Executor) Stream(ctx context.Context, query, sessionID string) (<-chan Result, error) {
	return nil, ErrStreamingUnsupported
}

func (e *Executor) fail(ctx context.Context, span trace.Span, id string, err error) Failure {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	e.logger.ErrorContext(ctx, "research failed", "result_id", id, "error", err)
	return Failure{ID: id, Message: fmt.Sprintf("Error performing research: %v", err)}
}

// run is the function calling loop. The last turn is offered no tools so the
// model has to answer.
func (e *Executor) run(ctx context.Context, query string) (string, error) {
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: SystemPrompt()},
		{Role: llm.RoleUser, Content: TaskPrompt(query)},
	}

	for i := range e.maxIterations {
		req := llm.ChatRequest{Messages: messages}
		if i < e.maxIterations-1 {
			req.Tools = e.defs
		}

		resp, err := e.provider.Chat(ctx, req)
		if err != nil {
			return "", err
		}

		msg := resp.Message
		if len(msg.ToolCalls) == 0 {
			if strings.TrimSpace(msg.Content) == "" {
				return "", ErrEmptyOutput
			}
			return msg.Content, nil
		}

		messages = append(messages, msg)
		for _, call := range msg.ToolCalls {
			messages = append(messages, llm.Message{
				Role:       llm.RoleTool,
				Content:    e.callTool(ctx, call),
				ToolCallID: call.ID,
				Name:       call.Name,
			})
		}
	}
	return "", ErrMaxIterations
}

// callTool runs call and renders tool errors as text for the model to react to.
func (e *Executor) callTool(ctx context.Context, call llm.ToolCall) string {
	ctx, span := e.tracer.Start(ctx, "research.Executor.callTool", trace.WithAttributes(
		attribute.String("research.tool", call.Name),
	))
	defer span.End()

	t, ok := e.tools[call.Name]
	if !ok {
		e.logger.WarnContext(ctx, "model called unknown tool", "tool", call.Name)
		return fmt.Sprintf("Error: unknown tool %q", call.Name)
	}

	out, err := t.Call(ctx, call.Arguments)
	if err != nil {
		span.RecordError(err)
		e.logger.WarnContext(ctx, "tool call failed", "tool", call.Name, "error", err)
		return fmt.Sprintf("Error: %v", err)
	}
	e.logger.DebugContext(ctx, "tool call succeeded", "tool", call.Name, "bytes", len(out))
	return out
}
