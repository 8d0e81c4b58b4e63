// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package task holds the task stores that track the lifecycle of research tasks.
//
// A store keeps one record per task ID. Every mutation runs under a single store-wide
// lock, so a status write and its artifact append are observed together and tasks
// returned to callers are copies that never change underneath them.
package task

import (
	"context"
	"errors"
	"maps"
	"slices"

	"github.com/go-a2a/research-agent/a2a"
)

// TaskStore defines the interface for task persistence operations.
type TaskStore interface {
	// Upsert creates a submitted task for params.ID, or appends params.Message to the
	// history of the existing task and moves it back to submitted. It never creates two
	// records for one ID.
	Upsert(ctx context.Context, params a2a.TaskSendParams) (*a2a.Task, error)

	// Update replaces the status of an existing task, appends status.Message to its
	// history when set, and appends artifacts. It returns an error matching
	// ErrTaskNotFound, and creates nothing, when the task does not exist.
	Update(ctx context.Context, taskID string, status a2a.TaskStatus, artifacts []a2a.Artifact) (*a2a.Task, error)

	// Get returns a copy of the task with its history trimmed to historyLength.
	Get(ctx context.Context, taskID string, historyLength *int) (*a2a.Task, error)

	// Len returns the number of stored tasks.
	Len(ctx context.Context) (int, error)

	// Close releases the resources held by the store.
	Close(ctx context.Context) error
}

// validateParams checks the parameters of an upsert.
func validateParams(params a2a.TaskSendParams) error {
	if params.ID == "" {
		return NewTaskValidationError(params.ID, errors.New("task ID cannot be empty"))
	}
	if params.Message.Role == "" {
		return NewTaskValidationError(params.ID, errors.New("message role cannot be empty"))
	}
	return nil
}

// WithHistory returns a copy of task whose history holds only the last historyLength
// messages. A nil or non-positive historyLength drops the history entirely.
func WithHistory(task *a2a.Task, historyLength *int) *a2a.Task {
	if task == nil {
		return nil
	}
	t := *task
	if historyLength == nil || *historyLength <= 0 {
		t.History = nil
		return &t
	}
	if n := len(t.History); n > *historyLength {
		t.History = t.History[n-*historyLength:]
	}
	return &t
}

// cloneTask returns a deep copy of task.
func cloneTask(task *a2a.Task) *a2a.Task {
	if task == nil {
		return nil
	}
	t := *task
	t.Status.Message = cloneMessagePtr(task.Status.Message)
	t.Metadata = maps.Clone(task.Metadata)
	if task.History != nil {
		t.History = make([]a2a.Message, len(task.History))
		for i, m := range task.History {
			t.History[i] = cloneMessage(m)
		}
	}
	if task.Artifacts != nil {
		t.Artifacts = make([]a2a.Artifact, len(task.Artifacts))
		for i, a := range task.Artifacts {
			t.Artifacts[i] = cloneArtifact(a)
		}
	}
	return &t
}

func cloneArtifact(a a2a.Artifact) a2a.Artifact {
	a.Parts = slices.Clone(a.Parts)
	a.Metadata = maps.Clone(a.Metadata)
	return a
}

func cloneMessage(m a2a.Message) a2a.Message {
	m.Parts = slices.Clone(m.Parts)
	m.Metadata = maps.Clone(m.Metadata)
	return m
}

func cloneMessagePtr(m *a2a.Message) *a2a.Message {
	if m == nil {
		return nil
	}
	c := cloneMessage(*m)
	return &c
}
