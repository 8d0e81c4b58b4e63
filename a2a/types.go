// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package a2a

import (
	"time"
)

// Part represents a part of a message or artifact. It can be text, a file, or structured data.
type Part interface {
	// PartType returns the "type" discriminator of the part.
	PartType() string
}

// TextPart represents a text segment within parts.
type TextPart struct {
	// Type is always "text".
	Type string `json:"type"`
	// Text is the text content.
	Text string `json:"text"`
	// Metadata associated with the part.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// NewTextPart returns a [TextPart] holding text.
func NewTextPart(text string) TextPart {
	return TextPart{Type: "text", Text: text}
}

// PartType implements [Part].
func (TextPart) PartType() string { return "text" }

// FileContent represents the content of a file, either as base64 encoded bytes or a URI.
//
// Exactly one of Bytes or URI should be set.
type FileContent struct {
	Name     string `json:"name,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
	Bytes    string `json:"bytes,omitempty"`
	URI      string `json:"uri,omitempty"`
}

// FilePart represents a file segment within parts.
type FilePart struct {
	// Type is always "file".
	Type     string         `json:"type"`
	File     FileContent    `json:"file"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// PartType implements [Part].
func (FilePart) PartType() string { return "file" }

// DataPart represents a structured data segment within parts.
type DataPart struct {
	// Type is always "data".
	Type     string         `json:"type"`
	Data     map[string]any `json:"data"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// PartType implements [Part].
func (DataPart) PartType() string { return "data" }

// Parts is a list of polymorphic parts. It decodes each element by its "type" field.
type Parts []Part

// Message represents a single communication turn between the client and the agent.
type Message struct {
	// Role is "user" for the client and "agent" for the agent.
	Role Role `json:"role"`
	// Parts is the content of the message.
	Parts Parts `json:"parts"`
	// Metadata associated with the message.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Text returns the text of the first part when it is a [TextPart].
func (m Message) Text() (string, bool) {
	if len(m.Parts) == 0 {
		return "", false
	}
	switch p := m.Parts[0].(type) {
	case TextPart:
		return p.Text, true
	case *TextPart:
		return p.Text, true
	default:
		return "", false
	}
}

// Artifact represents an output generated by the agent for a task.
type Artifact struct {
	Name        string         `json:"name,omitempty"`
	Description string         `json:"description,omitempty"`
	Parts       Parts          `json:"parts"`
	Index       int            `json:"index"`
	Append      bool           `json:"append,omitempty"`
	LastChunk   bool           `json:"lastChunk,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// TaskStatus is a TaskState and accompanying message.
type TaskStatus struct {
	// State is the current state of the task.
	State TaskState `json:"state"`
	// Message is an optional status update for the client.
	Message *Message `json:"message,omitempty"`
	// Timestamp is when the status was recorded.
	Timestamp time.Time `json:"timestamp"`
}

// NewTaskStatus returns a TaskStatus in state recorded at the current time.
func NewTaskStatus(state TaskState, message *Message) TaskStatus {
	return TaskStatus{
		State:     state,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}

// Task is the unit of work tracked by an agent.
type Task struct {
	// ID is the unique identifier of the task, chosen by the client.
	ID string `json:"id"`
	// SessionID groups related tasks.
	SessionID string `json:"sessionId,omitempty"`
	// Status is the current status of the task.
	Status TaskStatus `json:"status"`
	// Artifacts are the outputs produced for the task.
	Artifacts []Artifact `json:"artifacts,omitempty"`
	// History is the list of messages exchanged for the task.
	History []Message `json:"history,omitempty"`
	// Metadata associated with the task.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// TaskStatusUpdateEvent is sent by the server during sendSubscribe or resubscribe requests.
type TaskStatusUpdateEvent struct {
	ID       string         `json:"id"`
	Status   TaskStatus     `json:"status"`
	Final    bool           `json:"final"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// TaskArtifactUpdateEvent is sent by the server during sendSubscribe or resubscribe requests.
type TaskArtifactUpdateEvent struct {
	ID       string         `json:"id"`
	Artifact Artifact       `json:"artifact"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// AuthenticationInfo describes authentication requirements.
type AuthenticationInfo struct {
	Schemes     []string `json:"schemes"`
	Credentials string   `json:"credentials,omitempty"`
}

// PushNotificationConfig is the configuration for push notifications of task updates.
type PushNotificationConfig struct {
	URL            string              `json:"url"`
	Token          string              `json:"token,omitempty"`
	Authentication *AuthenticationInfo `json:"authentication,omitempty"`
}

// TaskPushNotificationConfig associates a [PushNotificationConfig] with a task.
type TaskPushNotificationConfig struct {
	ID                     string                 `json:"id"`
	PushNotificationConfig PushNotificationConfig `json:"pushNotificationConfig"`
}

// TaskIDParams holds parameters containing only a task ID.
type TaskIDParams struct {
	ID       string         `json:"id"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// TaskQueryParams holds parameters for querying a task.
type TaskQueryParams struct {
	ID string `json:"id"`
	// HistoryLength is the number of recent messages to return.
	HistoryLength *int           `json:"historyLength,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// TaskSendParams holds parameters for tasks/send and tasks/sendSubscribe.
type TaskSendParams struct {
	// ID is the task identifier.
	ID string `json:"id"`
	// SessionID groups related tasks.
	SessionID string `json:"sessionId,omitempty"`
	// Message is the message sent to the agent.
	Message Message `json:"message"`
	// AcceptedOutputModes are the content types the client accepts.
	AcceptedOutputModes []string `json:"acceptedOutputModes,omitempty"`
	// PushNotification requests push notifications for the task.
	PushNotification *PushNotificationConfig `json:"pushNotification,omitempty"`
	// HistoryLength is the number of recent messages to return.
	HistoryLength *int           `json:"historyLength,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// AgentProvider represents the service provider of an agent.
type AgentProvider struct {
	Organization string `json:"organization"`
	URL          string `json:"url,omitempty"`
}

// AgentCapabilities defines optional capabilities supported by an agent.
type AgentCapabilities struct {
	// Streaming is true if the agent supports SSE.
	Streaming bool `json:"streaming"`
	// PushNotifications is true if the agent can notify updates to the client.
	PushNotifications bool `json:"pushNotifications"`
	// StateTransitionHistory is true if the agent exposes status change history for tasks.
	StateTransitionHistory bool `json:"stateTransitionHistory"`
}

// AgentAuthentication describes the authentication schemes accepted by an agent.
type AgentAuthentication struct {
	Schemes     []string `json:"schemes"`
	Credentials string   `json:"credentials,omitempty"`
}

// AgentSkill represents a unit of capability that an agent can perform.
type AgentSkill struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Examples    []string `json:"examples,omitempty"`
	InputModes  []string `json:"inputModes,omitempty"`
	OutputModes []string `json:"outputModes,omitempty"`
}

// AgentCard conveys the key information about an agent: its identity, the skills it
// offers, its default modalities and its authentication requirements.
type AgentCard struct {
	Name               string               `json:"name"`
	Description        string               `json:"description,omitempty"`
	URL                string               `json:"url"`
	Provider           *AgentProvider       `json:"provider,omitempty"`
	Version            string               `json:"version"`
	DocumentationURL   string               `json:"documentationUrl,omitempty"`
	Capabilities       AgentCapabilities    `json:"capabilities"`
	Authentication     *AgentAuthentication `json:"authentication,omitempty"`
	DefaultInputModes  []string             `json:"defaultInputModes"`
	DefaultOutputModes []string             `json:"defaultOutputModes"`
	Skills             []AgentSkill         `json:"skills"`
}
