// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package task

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/go-a2a/research-agent/a2a"
)

var taskColumns = []string{"id", "session_id", "state", "status", "artifacts", "history", "metadata", "created_at", "updated_at"}

func newMockStore(t *testing.T) (*DatabaseTaskStore, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New failed: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		t.Fatalf("gorm.Open failed: %v", err)
	}

	s, err := NewDatabaseTaskStore(context.Background(), DatabaseTaskStoreConfig{DB: db})
	if err != nil {
		t.Fatalf("NewDatabaseTaskStore failed: %v", err)
	}
	return s, mock
}

func TestDatabaseTaskStoreGet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		t.Parallel()
		s, mock := newMockStore(t)

		now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		rows := sqlmock.NewRows(taskColumns).AddRow(
			"task-1",
			"session-1",
			"completed",
			`{"state":"completed","timestamp":"2025-01-01T00:00:00Z"}`,
			`[{"parts":[{"type":"text","text":"summary"}],"index":0}]`,
			`[{"role":"user","parts":[{"type":"text","text":"one"}]},{"role":"user","parts":[{"type":"text","text":"two"}]}]`,
			`{}`,
			now,
			now,
		)
		mock.ExpectQuery("SELECT \\* FROM `tasks` WHERE id = \\?").WillReturnRows(rows)

		got, err := s.Get(ctx, "task-1", intPtr(1))
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}

		want := &a2a.Task{
			ID:        "task-1",
			SessionID: "session-1",
			Status:    a2a.TaskStatus{State: a2a.TaskStateCompleted, Timestamp: now},
			Artifacts: []a2a.Artifact{{Parts: a2a.Parts{a2a.NewTextPart("summary")}}},
			History:   []a2a.Message{userMessage("two")},
		}
		if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("task mismatch (-want +got):\n%s", diff)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		s, mock := newMockStore(t)

		mock.ExpectQuery("SELECT \\* FROM `tasks` WHERE id = \\?").WillReturnRows(sqlmock.NewRows(taskColumns))

		if _, err := s.Get(ctx, "missing", nil); !errors.Is(err, ErrTaskNotFound) {
			t.Errorf("Get error = %v, want ErrTaskNotFound", err)
		}
	})

	t.Run("query failure", func(t *testing.T) {
		t.Parallel()
		s, mock := newMockStore(t)

		boom := errors.New("connection reset")
		mock.ExpectQuery("SELECT \\* FROM `tasks`").WillReturnError(boom)

		_, err := s.Get(ctx, "task-1", nil)
		var serr TaskStoreError
		if !errors.As(err, &serr) || !errors.Is(err, boom) {
			t.Errorf("Get error = %v, want TaskStoreError wrapping %v", err, boom)
		}
	})
}

func TestDatabaseTaskStoreUpdateUnknownTask(t *testing.T) {
	t.Parallel()
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `tasks` WHERE id = \\? .*FOR UPDATE").WillReturnRows(sqlmock.NewRows(taskColumns))
	mock.ExpectRollback()

	_, err := s.Update(context.Background(), "missing", a2a.NewTaskStatus(a2a.TaskStateCompleted, nil), nil)
	if !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("Update error = %v, want ErrTaskNotFound", err)
	}
	// no INSERT may follow the lookup
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestDatabaseTaskStoreUpsertCreates(t *testing.T) {
	t.Parallel()
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `tasks` WHERE id = \\? .*FOR UPDATE").WillReturnRows(sqlmock.NewRows(taskColumns))
	mock.ExpectExec("INSERT INTO `tasks`").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	got, err := s.Upsert(context.Background(), sendParams("task-1", "renewables"))
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if got.Status.State != a2a.TaskStateSubmitted {
		t.Errorf("state = %s, want %s", got.Status.State, a2a.TaskStateSubmitted)
	}
	if len(got.History) != 1 {
		t.Errorf("history length = %d, want 1", len(got.History))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

// historyJSON renders n user messages as the history column holds them.
func historyJSON(n int) string {
	msgs := make([]string, n)
	for i := range msgs {
		msgs[i] = fmt.Sprintf(`{"role":"user","parts":[{"type":"text","text":"turn %d"}]}`, i)
	}
	return "[" + strings.Join(msgs, ",") + "]"
}

func TestDatabaseTaskStoreUpsertAppends(t *testing.T) {
	t.Parallel()
	s, mock := newMockStore(t)
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	const n = 3
	for i := range n {
		mock.ExpectBegin()
		lookup := mock.ExpectQuery("SELECT \\* FROM `tasks` WHERE id = \\? .*FOR UPDATE")
		if i == 0 {
			lookup.WillReturnRows(sqlmock.NewRows(taskColumns))
			mock.ExpectExec("INSERT INTO `tasks`").WillReturnResult(sqlmock.NewResult(1, 1))
		} else {
			lookup.WillReturnRows(sqlmock.NewRows(taskColumns).AddRow(
				"task-1", "session-task-1", "completed",
				`{"state":"completed","timestamp":"2025-01-01T00:00:00Z"}`,
				`[]`, historyJSON(i), `{}`, now, now,
			))
			mock.ExpectExec("UPDATE `tasks` SET").WillReturnResult(sqlmock.NewResult(0, 1))
		}
		mock.ExpectCommit()

		got, err := s.Upsert(ctx, sendParams("task-1", fmt.Sprintf("turn %d", i)))
		if err != nil {
			t.Fatalf("Upsert %d failed: %v", i, err)
		}
		if len(got.History) != i+1 {
			t.Errorf("history length after %d upserts = %d, want %d", i+1, len(got.History), i+1)
		}
		if got.Status.State != a2a.TaskStateSubmitted {
			t.Errorf("state after upsert %d = %s, want %s", i, got.Status.State, a2a.TaskStateSubmitted)
		}
		if last := got.History[len(got.History)-1]; !cmp.Equal(last, userMessage(fmt.Sprintf("turn %d", i)), cmpopts.EquateEmpty()) {
			t.Errorf("last history message = %+v", last)
		}
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestDatabaseTaskStoreUpdate(t *testing.T) {
	t.Parallel()
	s, mock := newMockStore(t)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `tasks` WHERE id = \\? .*FOR UPDATE").WillReturnRows(sqlmock.NewRows(taskColumns).AddRow(
		"task-1", "session-1", "submitted",
		`{"state":"submitted","timestamp":"2025-01-01T00:00:00Z"}`,
		`[]`, historyJSON(1), `{}`, now, now,
	))
	mock.ExpectExec("UPDATE `tasks` SET").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	agentMsg := &a2a.Message{Role: a2a.RoleAgent, Parts: a2a.Parts{a2a.NewTextPart("done")}}
	status := a2a.TaskStatus{State: a2a.TaskStateCompleted, Message: agentMsg, Timestamp: now.Add(time.Minute)}
	artifacts := []a2a.Artifact{{Parts: a2a.Parts{a2a.NewTextPart("summary\n\nSources:\nhttps://example.com")}}}

	got, err := s.Update(context.Background(), "task-1", status, artifacts)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	want := &a2a.Task{
		ID:        "task-1",
		SessionID: "session-1",
		Status:    status,
		Artifacts: artifacts,
		History:   []a2a.Message{userMessage("turn 0"), *agentMsg},
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("task mismatch (-want +got):\n%s", diff)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestTaskModelRoundTrip(t *testing.T) {
	t.Parallel()

	task := &a2a.Task{
		ID:        "task-1",
		SessionID: "session-1",
		Status: a2a.TaskStatus{
			State:     a2a.TaskStateFailed,
			Message:   &a2a.Message{Role: a2a.RoleAgent, Parts: a2a.Parts{a2a.NewTextPart("Error performing research: timeout")}},
			Timestamp: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		History:  []a2a.Message{userMessage("fusion")},
		Metadata: map[string]any{"source": "cli"},
	}

	model, err := NewTaskModelFromTask(task)
	if err != nil {
		t.Fatalf("NewTaskModelFromTask failed: %v", err)
	}
	if model.State != "failed" {
		t.Errorf("model.State = %q, want %q", model.State, "failed")
	}

	scanned := TaskModel{
		ID:        model.ID,
		SessionID: model.SessionID,
		State:     model.State,
		Status:    roundTrip(t, model.Status),
		Artifacts: roundTrip(t, model.Artifacts),
		History:   roundTrip(t, model.History),
		Metadata:  roundTrip(t, model.Metadata),
	}

	got, err := scanned.ToTask()
	if err != nil {
		t.Fatalf("ToTask failed: %v", err)
	}
	if diff := cmp.Diff(task, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("task mismatch (-want +got):\n%s", diff)
	}
}

func TestTaskModelValidate(t *testing.T) {
	t.Parallel()

	tests := map[string]*a2a.Task{
		"empty id":    {Status: a2a.TaskStatus{State: a2a.TaskStateSubmitted}},
		"empty state": {ID: "task-1"},
	}
	for name, task := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var verr TaskValidationError
			if _, err := NewTaskModelFromTask(task); !errors.As(err, &verr) {
				t.Errorf("NewTaskModelFromTask error = %v, want TaskValidationError", err)
			}
		})
	}
}

// roundTrip passes a column through its driver encoding, as a database would.
func roundTrip[T any](t *testing.T, in JSONColumn[T]) JSONColumn[T] {
	t.Helper()

	v, err := in.Value()
	if err != nil {
		t.Fatalf("Value failed: %v", err)
	}
	var out JSONColumn[T]
	if err := out.Scan(v); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	return out
}
