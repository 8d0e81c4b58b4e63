// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/go-a2a/research-agent/a2a"
	"github.com/go-a2a/research-agent/research"
	"github.com/go-a2a/research-agent/server/task"
)

// fakeResearcher returns a fixed result and records the queries it receives.
type fakeResearcher struct {
	mu      sync.Mutex
	result  research.Result
	queries []string
}

func (f *fakeResearcher) Invoke(_ context.Context, query, _ string) research.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	return f.result
}

func (f *fakeResearcher) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestTaskManager(result research.Result) (*ResearchTaskManager, *task.InMemoryTaskStore, *fakeResearcher) {
	store := task.NewInMemoryTaskStore()
	r := &fakeResearcher{result: result}
	return NewResearchTaskManager(store, r).WithLogger(discardLogger), store, r
}

func sendParams(id, text string, modes ...string) a2a.TaskSendParams {
	return a2a.TaskSendParams{
		ID:                  id,
		SessionID:           "session-" + id,
		Message:             a2a.Message{Role: a2a.RoleUser, Parts: a2a.Parts{a2a.NewTextPart(text)}},
		AcceptedOutputModes: modes,
	}
}

func intPtr(n int) *int { return &n }

func TestOnSendTaskCompleted(t *testing.T) {
	t.Parallel()

	tm, _, r := newTestTaskManager(research.Success{
		ID:      "r1",
		Content: "Fusion is advancing.",
		Sources: []string{"https://example.com/fusion"},
	})

	params := sendParams("task-1", "fusion energy", "text")
	params.HistoryLength = intPtr(5)

	got, rpcErr := tm.OnSendTask(context.Background(), params)
	if rpcErr != nil {
		t.Fatalf("OnSendTask failed: %v", rpcErr)
	}

	want := &a2a.Task{
		ID:        "task-1",
		SessionID: "session-task-1",
		Status:    a2a.TaskStatus{State: a2a.TaskStateCompleted},
		Artifacts: []a2a.Artifact{{
			Parts: a2a.Parts{a2a.NewTextPart("Fusion is advancing.\n\nSources:\nhttps://example.com/fusion")},
		}},
		History: []a2a.Message{params.Message},
	}
	if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(a2a.TaskStatus{}, "Timestamp")); diff != "" {
		t.Errorf("task mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"fusion energy"}, r.queries); diff != "" {
		t.Errorf("queries mismatch (-want +got):\n%s", diff)
	}
}

func TestOnSendTaskFailed(t *testing.T) {
	t.Parallel()

	tm, store, _ := newTestTaskManager(research.Failure{ID: "r1", Message: "Error performing research: timeout"})

	got, rpcErr := tm.OnSendTask(context.Background(), sendParams("task-1", "fusion"))
	if rpcErr != nil {
		t.Fatalf("OnSendTask failed: %v", rpcErr)
	}
	if got.Status.State != a2a.TaskStateFailed {
		t.Errorf("state = %s, want %s", got.Status.State, a2a.TaskStateFailed)
	}
	if text, _ := got.Status.Message.Text(); text != "Error performing research: timeout" {
		t.Errorf("status message = %q", text)
	}
	if len(got.Artifacts) != 0 {
		t.Errorf("artifacts = %+v, want none", got.Artifacts)
	}
	if got.History != nil {
		t.Errorf("history = %+v, want omitted without historyLength", got.History)
	}

	stored, err := store.Get(context.Background(), "task-1", intPtr(10))
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	// the user message plus the agent failure message
	if len(stored.History) != 2 {
		t.Errorf("stored history length = %d, want 2", len(stored.History))
	}
}

func TestOnSendTaskRejectsWithoutMutation(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		params   a2a.TaskSendParams
		wantCode int
	}{
		"incompatible output modes": {
			params:   sendParams("task-1", "fusion", "image/png", "application/json"),
			wantCode: a2a.ContentTypeNotSupportedErrorCode,
		},
		"first part not text": {
			params: a2a.TaskSendParams{
				ID: "task-1",
				Message: a2a.Message{Role: a2a.RoleUser, Parts: a2a.Parts{
					a2a.DataPart{Type: "data", Data: map[string]any{"q": "fusion"}},
				}},
			},
			wantCode: a2a.InvalidParamsErrorCode,
		},
		"missing id": {
			params:   sendParams("", "fusion"),
			wantCode: a2a.InvalidParamsErrorCode,
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			tm, store, r := newTestTaskManager(research.Success{ID: "r1", Content: "unused"})

			_, rpcErr := tm.OnSendTask(context.Background(), tt.params)
			if rpcErr == nil || rpcErr.Code != tt.wantCode {
				t.Fatalf("OnSendTask error = %v, want code %d", rpcErr, tt.wantCode)
			}
			if n, _ := store.Len(context.Background()); n != 0 {
				t.Errorf("store holds %d tasks, want 0", n)
			}
			if r.calls() != 0 {
				t.Errorf("researcher invoked %d times, want 0", r.calls())
			}
		})
	}
}

func TestOnSendTaskSubscribe(t *testing.T) {
	t.Parallel()

	tm, store, r := newTestTaskManager(research.Success{ID: "r1", Content: "unused"})

	_, rpcErr := tm.OnSendTaskSubscribe(context.Background(), sendParams("task-1", "fusion"))
	if rpcErr == nil || rpcErr.Code != a2a.UnsupportedOperationErrorCode {
		t.Fatalf("OnSendTaskSubscribe error = %v, want unsupported operation", rpcErr)
	}
	if n, _ := store.Len(context.Background()); n != 1 {
		t.Errorf("store holds %d tasks, want 1", n)
	}
	if r.calls() != 0 {
		t.Errorf("researcher invoked %d times, want 0", r.calls())
	}
}

func TestOnGetAndCancelTask(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tm, _, _ := newTestTaskManager(research.Success{ID: "r1", Content: "summary"})
	if _, rpcErr := tm.OnSendTask(ctx, sendParams("task-1", "fusion")); rpcErr != nil {
		t.Fatalf("OnSendTask failed: %v", rpcErr)
	}

	got, rpcErr := tm.OnGetTask(ctx, a2a.TaskQueryParams{ID: "task-1", HistoryLength: intPtr(1)})
	if rpcErr != nil {
		t.Fatalf("OnGetTask failed: %v", rpcErr)
	}
	if got.Status.State != a2a.TaskStateCompleted || len(got.History) != 1 {
		t.Errorf("task = %+v, want completed with one history entry", got)
	}

	tests := map[string]struct {
		call     func() *a2a.JSONRPCError
		wantCode int
	}{
		"get missing": {
			call: func() *a2a.JSONRPCError {
				_, err := tm.OnGetTask(ctx, a2a.TaskQueryParams{ID: "missing"})
				return err
			},
			wantCode: a2a.TaskNotFoundErrorCode,
		},
		"cancel existing": {
			call: func() *a2a.JSONRPCError {
				_, err := tm.OnCancelTask(ctx, a2a.TaskIDParams{ID: "task-1"})
				return err
			},
			wantCode: a2a.TaskNotCancelableErrorCode,
		},
		"cancel missing": {
			call: func() *a2a.JSONRPCError {
				_, err := tm.OnCancelTask(ctx, a2a.TaskIDParams{ID: "missing"})
				return err
			},
			wantCode: a2a.TaskNotFoundErrorCode,
		},
		"set push notification": {
			call: func() *a2a.JSONRPCError {
				_, err := tm.OnSetTaskPushNotification(ctx, a2a.TaskPushNotificationConfig{ID: "task-1"})
				return err
			},
			wantCode: a2a.PushNotificationNotSupportedErrorCode,
		},
		"get push notification": {
			call: func() *a2a.JSONRPCError {
				_, err := tm.OnGetTaskPushNotification(ctx, a2a.TaskIDParams{ID: "task-1"})
				return err
			},
			wantCode: a2a.PushNotificationNotSupportedErrorCode,
		},
		"resubscribe": {
			call: func() *a2a.JSONRPCError {
				_, err := tm.OnResubscribeToTask(ctx, a2a.TaskQueryParams{ID: "task-1"})
				return err
			},
			wantCode: a2a.UnsupportedOperationErrorCode,
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if err := tt.call(); err == nil || err.Code != tt.wantCode {
				t.Errorf("error = %v, want code %d", err, tt.wantCode)
			}
		})
	}
}
