// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	json "github.com/bytedance/sonic"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-a2a/research-agent/a2a"
	"github.com/go-a2a/research-agent/auth"
	"github.com/go-a2a/research-agent/internal/pool"
)

// handleRPC decodes a JSON-RPC request, dispatches it by method and writes the response.
// JSON-RPC errors are reported with HTTP 200.
func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.finish(ctx, w, start, "", a2a.NewErrorResponse(nil, a2a.NewInvalidRequestError().WithData("request body too large")))
			return
		}
		s.finish(ctx, w, start, "", a2a.NewErrorResponse(nil, a2a.NewJSONParseError().WithData(err.Error())))
		return
	}

	var req a2a.JSONRPCRequest
	if err := json.ConfigStd.Unmarshal(body, &req); err != nil {
		s.finish(ctx, w, start, "", a2a.NewErrorResponse(nil, a2a.NewJSONParseError()))
		return
	}
	if req.Method == "" {
		s.finish(ctx, w, start, "", a2a.NewErrorResponse(req.ID, a2a.NewInvalidRequestError()))
		return
	}

	s.metrics.Started(ctx, req.Method, len(body))
	if req.JSONRPC != a2a.JSONRPCVersion {
		s.finish(ctx, w, start, req.Method, a2a.NewErrorResponse(req.ID, a2a.NewInvalidRequestError()))
		return
	}

	ctx, span := s.tracer.Start(ctx, "a2a.server."+req.Method, trace.WithAttributes(
		attribute.String("rpc.system", "jsonrpc"),
		attribute.String("rpc.method", req.Method),
		attribute.String("enduser.id", auth.UserFromContext(ctx).UserName()),
	))
	defer span.End()

	result, rpcErr := s.dispatch(ctx, &req)
	resp := &a2a.JSONRPCResponse{JSONRPCMessage: a2a.NewJSONRPCMessage(req.ID)}
	if rpcErr != nil {
		span.SetStatus(codes.Error, rpcErr.Message)
		span.SetAttributes(attribute.Int("rpc.jsonrpc.error_code", rpcErr.Code))
		resp.Error = rpcErr
	} else {
		resp.Result = result
	}
	s.finish(ctx, w, start, req.Method, resp)
}

func (s *Server) dispatch(ctx context.Context, req *a2a.JSONRPCRequest) (any, *a2a.JSONRPCError) {
	tm := s.taskManager

	switch req.Method {
	case a2a.MethodTasksSend:
		return handle(ctx, req, tm.OnSendTask)
	case a2a.MethodTasksSendSubscribe:
		return handle(ctx, req, tm.OnSendTaskSubscribe)
	case a2a.MethodTasksGet:
		return handle(ctx, req, tm.OnGetTask)
	case a2a.MethodTasksCancel:
		return handle(ctx, req, tm.OnCancelTask)
	case a2a.MethodTasksPushNotificationSet:
		return handle(ctx, req, tm.OnSetTaskPushNotification)
	case a2a.MethodTasksPushNotificationGet:
		return handle(ctx, req, tm.OnGetTaskPushNotification)
	case a2a.MethodTasksResubscribe:
		return handle(ctx, req, tm.OnResubscribeToTask)
	default:
		s.logger.InfoContext(ctx, "method not found", "method", req.Method)
		return nil, a2a.NewMethodNotFoundError().WithData(req.Method)
	}
}

// handle decodes the request params into P and calls fn.
func handle[P, R any](ctx context.Context, req *a2a.JSONRPCRequest, fn func(context.Context, P) (*R, *a2a.JSONRPCError)) (any, *a2a.JSONRPCError) {
	var params P
	if err := req.DecodeParams(&params); err != nil {
		return nil, a2a.NewInvalidParamsError().WithData(err.Error())
	}

	result, rpcErr := fn(ctx, params)
	if rpcErr != nil {
		return nil, rpcErr
	}
	return result, nil
}

func (s *Server) finish(ctx context.Context, w http.ResponseWriter, start time.Time, method string, resp *a2a.JSONRPCResponse) {
	code := 0
	if resp.Error != nil {
		code = resp.Error.Code
	}
	n := s.writeJSON(w, http.StatusOK, resp)
	if method != "" {
		s.metrics.Finished(ctx, method, code, n, time.Since(start))
	}
	s.logger.DebugContext(ctx, "rpc handled", "method", method, "code", code, "elapsed", time.Since(start))
}

// writeJSON encodes v into a pooled buffer and writes it, returning the bytes written.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) int {
	buf := pool.Bytes.Get()
	defer pool.Bytes.Put(buf)

	if err := json.ConfigStd.NewEncoder(buf).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return 0
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	n, _ := w.Write(buf.Bytes())
	return n
}
