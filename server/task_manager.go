// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-a2a/research-agent/a2a"
	"github.com/go-a2a/research-agent/research"
	"github.com/go-a2a/research-agent/server/task"
)

// TaskManager handles the A2A task methods. Errors are returned as JSON-RPC
// error values ready to be sent to the client.
type TaskManager interface {
	// OnSendTask runs a task to completion.
	OnSendTask(ctx context.Context, params a2a.TaskSendParams) (*a2a.Task, *a2a.JSONRPCError)

	// OnSendTaskSubscribe starts a streaming task.
	OnSendTaskSubscribe(ctx context.Context, params a2a.TaskSendParams) (*a2a.TaskStatusUpdateEvent, *a2a.JSONRPCError)

	// OnGetTask retrieves a task.
	OnGetTask(ctx context.Context, params a2a.TaskQueryParams) (*a2a.Task, *a2a.JSONRPCError)

	// OnCancelTask cancels a task.
	OnCancelTask(ctx context.Context, params a2a.TaskIDParams) (*a2a.Task, *a2a.JSONRPCError)

	// OnSetTaskPushNotification configures push notification for a task.
	OnSetTaskPushNotification(ctx context.Context, params a2a.TaskPushNotificationConfig) (*a2a.TaskPushNotificationConfig, *a2a.JSONRPCError)

	// OnGetTaskPushNotification retrieves push notification configuration for a task.
	OnGetTaskPushNotification(ctx context.Context, params a2a.TaskIDParams) (*a2a.TaskPushNotificationConfig, *a2a.JSONRPCError)

	// OnResubscribeToTask resubscribes to a task's updates.
	OnResubscribeToTask(ctx context.Context, params a2a.TaskQueryParams) (*a2a.TaskStatusUpdateEvent, *a2a.JSONRPCError)
}

// Researcher runs a research query. [*research.Executor] implements it.
type Researcher interface {
	Invoke(ctx context.Context, query, sessionID string) research.Result
}

// ResearchTaskManager is the [TaskManager] of the research agent.
//
// Each tasks/send runs the research synchronously and stores the formatted
// result as a text artifact.
type ResearchTaskManager struct {
	// Store keeps task state.
	Store task.TaskStore

	// Researcher answers the task queries.
	Researcher Researcher

	// Logger is the logger for the task manager.
	Logger *slog.Logger

	// Tracer is the tracer for the task manager.
	Tracer trace.Tracer
}

var _ TaskManager = (*ResearchTaskManager)(nil)

// NewResearchTaskManager creates a new ResearchTaskManager.
func NewResearchTaskManager(store task.TaskStore, researcher Researcher) *ResearchTaskManager {
	return &ResearchTaskManager{
		Store:      store,
		Researcher: researcher,
		Logger:     slog.Default(),
		Tracer:     otel.GetTracerProvider().Tracer("github.com/go-a2a/research-agent/task_manager"),
	}
}

// WithLogger sets the logger for the TaskManager.
func (tm *ResearchTaskManager) WithLogger(logger *slog.Logger) *ResearchTaskManager {
	tm.Logger = logger
	return tm
}

// WithTracer sets the tracer for the TaskManager.
func (tm *ResearchTaskManager) WithTracer(tracer trace.Tracer) *ResearchTaskManager {
	tm.Tracer = tracer
	return tm
}

func (tm *ResearchTaskManager) start(ctx context.Context, op, taskID string) (context.Context, trace.Span) {
	return tm.Tracer.Start(ctx, "a2a.task_manager."+op,
		trace.WithAttributes(attribute.String("a2a.task_id", taskID)))
}

// OnSendTask implements [TaskManager].
func (tm *ResearchTaskManager) OnSendTask(ctx context.Context, params a2a.TaskSendParams) (*a2a.Task, *a2a.JSONRPCError) {
	ctx, span := tm.start(ctx, "OnSendTask", params.ID)
	defer span.End()

	query, rpcErr := tm.validateSend(ctx, params)
	if rpcErr != nil {
		return nil, rpcErr
	}

	if _, err := tm.Store.Upsert(ctx, params); err != nil {
		return nil, tm.storeError(ctx, span, params.ID, err)
	}
	tm.Logger.InfoContext(ctx, "task submitted", "task_id", params.ID, "session_id", params.SessionID)

	result := tm.Researcher.Invoke(ctx, query, params.SessionID)
	status, artifacts := resultToUpdate(result)

	updated, err := tm.Store.Update(ctx, params.ID, status, artifacts)
	if err != nil {
		return nil, tm.storeError(ctx, span, params.ID, err)
	}

	span.SetAttributes(attribute.String("a2a.task_state", string(updated.Status.State)))
	tm.Logger.InfoContext(ctx, "task finished", "task_id", params.ID, "state", updated.Status.State, "result_id", result.ResultID())
	return task.WithHistory(updated, params.HistoryLength), nil
}

// OnSendTaskSubscribe implements [TaskManager]. The task is recorded but
// streaming generation is not supported.
func (tm *ResearchTaskManager) OnSendTaskSubscribe(ctx context.Context, params a2a.TaskSendParams) (*a2a.TaskStatusUpdateEvent, *a2a.JSONRPCError) {
	ctx, span := tm.start(ctx, "OnSendTaskSubscribe", params.ID)
	defer span.End()

	if _, rpcErr := tm.validateSend(ctx, params); rpcErr != nil {
		return nil, rpcErr
	}
	if _, err := tm.Store.Upsert(ctx, params); err != nil {
		return nil, tm.storeError(ctx, span, params.ID, err)
	}

	tm.Logger.WarnContext(ctx, "streaming requested but not supported", "task_id", params.ID)
	return nil, a2a.NewUnsupportedOperationError().WithData(research.ErrStreamingUnsupported.Error())
}

// OnGetTask implements [TaskManager].
func (tm *ResearchTaskManager) OnGetTask(ctx context.Context, params a2a.TaskQueryParams) (*a2a.Task, *a2a.JSONRPCError) {
	ctx, span := tm.start(ctx, "OnGetTask", params.ID)
	defer span.End()

	t, err := tm.Store.Get(ctx, params.ID, params.HistoryLength)
	if err != nil {
		return nil, tm.storeError(ctx, span, params.ID, err)
	}

	tm.Logger.InfoContext(ctx, "task retrieved", "task_id", params.ID, "state", t.Status.State)
	return t, nil
}

// OnCancelTask implements [TaskManager]. Research runs to completion within
// tasks/send, so an existing task can never be canceled.
func (tm *ResearchTaskManager) OnCancelTask(ctx context.Context, params a2a.TaskIDParams) (*a2a.Task, *a2a.JSONRPCError) {
	ctx, span := tm.start(ctx, "OnCancelTask", params.ID)
	defer span.End()

	t, err := tm.Store.Get(ctx, params.ID, nil)
	if err != nil {
		return nil, tm.storeError(ctx, span, params.ID, err)
	}

	tm.Logger.InfoContext(ctx, "task cannot be canceled", "task_id", params.ID, "state", t.Status.State)
	return nil, a2a.NewTaskNotCancelableError()
}

// OnSetTaskPushNotification implements [TaskManager].
func (tm *ResearchTaskManager) OnSetTaskPushNotification(ctx context.Context, params a2a.TaskPushNotificationConfig) (*a2a.TaskPushNotificationConfig, *a2a.JSONRPCError) {
	return nil, a2a.NewPushNotificationNotSupportedError()
}

// OnGetTaskPushNotification implements [TaskManager].
func (tm *ResearchTaskManager) OnGetTaskPushNotification(ctx context.Context, params a2a.TaskIDParams) (*a2a.TaskPushNotificationConfig, *a2a.JSONRPCError) {
	return nil, a2a.NewPushNotificationNotSupportedError()
}

// OnResubscribeToTask implements [TaskManager].
func (tm *ResearchTaskManager) OnResubscribeToTask(ctx context.Context, params a2a.TaskQueryParams) (*a2a.TaskStatusUpdateEvent, *a2a.JSONRPCError) {
	return nil, a2a.NewUnsupportedOperationError()
}

// validateSend checks the request before any state changes and returns the query text.
func (tm *ResearchTaskManager) validateSend(ctx context.Context, params a2a.TaskSendParams) (string, *a2a.JSONRPCError) {
	if !a2a.AreModalitiesCompatible(research.SupportedContentTypes, params.AcceptedOutputModes) {
		tm.Logger.WarnContext(ctx, "unsupported output mode",
			"task_id", params.ID,
			"accepted_output_modes", params.AcceptedOutputModes,
			"supported", research.SupportedContentTypes)
		return "", a2a.NewContentTypeNotSupportedError()
	}
	if params.ID == "" {
		return "", a2a.NewInvalidParamsError().WithData("task id is required")
	}
	query, ok := params.Message.Text()
	if !ok {
		return "", a2a.NewInvalidParamsError().WithData("first message part must be text")
	}
	return query, nil
}

// storeError maps a task store error to its JSON-RPC error.
func (tm *ResearchTaskManager) storeError(ctx context.Context, span trace.Span, taskID string, err error) *a2a.JSONRPCError {
	var verr task.TaskValidationError
	switch {
	case errors.Is(err, task.ErrTaskNotFound):
		tm.Logger.InfoContext(ctx, "task not found", "task_id", taskID)
		return a2a.NewTaskNotFoundError()
	case errors.As(err, &verr):
		return a2a.NewInvalidParamsError().WithData(verr.Error())
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	tm.Logger.ErrorContext(ctx, "task store failure", "task_id", taskID, "error", err)
	return a2a.NewInternalError().WithData(err.Error())
}

// resultToUpdate converts a research result into the terminal task update.
func resultToUpdate(r research.Result) (a2a.TaskStatus, []a2a.Artifact) {
	text := research.FormatResult(r)
	if _, ok := r.(research.Failure); ok {
		msg := &a2a.Message{Role: a2a.RoleAgent, Parts: a2a.Parts{a2a.NewTextPart(text)}}
		return a2a.NewTaskStatus(a2a.TaskStateFailed, msg), nil
	}
	return a2a.NewTaskStatus(a2a.TaskStateCompleted, nil), []a2a.Artifact{{
		Parts: a2a.Parts{a2a.NewTextPart(text)},
	}}
}
