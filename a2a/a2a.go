// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package a2a provides the Agent2Agent (A2A) v0.1 protocol types, JSON-RPC envelopes and client
// used by the research agent.
package a2a

// Version is the current version of the A2A protocol.
const Version = "0.1.0"

// TaskState represents the state of a Task.
type TaskState string

const (
	// TaskStateSubmitted indicates the task has been received but not yet started.
	TaskStateSubmitted TaskState = "submitted"
	// TaskStateWorking indicates the task is being worked on.
	TaskStateWorking TaskState = "working"
	// TaskStateInputRequired indicates the agent needs more input from the client.
	TaskStateInputRequired TaskState = "input-required"
	// TaskStateCompleted indicates the task has been completed.
	TaskStateCompleted TaskState = "completed"
	// TaskStateCanceled indicates the task has been canceled.
	TaskStateCanceled TaskState = "canceled"
	// TaskStateFailed indicates the task has failed.
	TaskStateFailed TaskState = "failed"
	// TaskStateUnknown indicates the task state cannot be determined.
	TaskStateUnknown TaskState = "unknown"
)

// IsTerminal reports whether the state is final. Tasks in a final state
// cannot be canceled or moved to another state.
func (s TaskState) IsTerminal() bool {
	switch s {
	case TaskStateCompleted, TaskStateCanceled, TaskStateFailed:
		return true
	default:
		return false
	}
}

// Role identifies the sender of a [Message].
type Role string

const (
	// RoleUser is the role of messages sent by the client.
	RoleUser Role = "user"
	// RoleAgent is the role of messages sent by the agent.
	RoleAgent Role = "agent"
)
