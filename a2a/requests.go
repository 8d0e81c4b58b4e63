// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package a2a

// A2A RPC method names
const (
	// MethodTasksSend is the method name for sending a task.
	MethodTasksSend = "tasks/send"
	// MethodTasksSendSubscribe is the method name for sending a task and subscribing to updates.
	MethodTasksSendSubscribe = "tasks/sendSubscribe"
	// MethodTasksGet is the method name for getting a task.
	MethodTasksGet = "tasks/get"
	// MethodTasksCancel is the method name for canceling a task.
	MethodTasksCancel = "tasks/cancel"
	// MethodTasksPushNotificationSet is the method name for setting push notification configuration.
	MethodTasksPushNotificationSet = "tasks/pushNotification/set"
	// MethodTasksPushNotificationGet is the method name for getting push notification configuration.
	MethodTasksPushNotificationGet = "tasks/pushNotification/get"
	// MethodTasksResubscribe is the method name for resubscribing to task updates.
	MethodTasksResubscribe = "tasks/resubscribe"
)

// NewJSONRPCMessage creates a new JSONRPCMessage with the given ID.
func NewJSONRPCMessage(id any) JSONRPCMessage {
	return JSONRPCMessage{
		JSONRPC: JSONRPCVersion,
		ID:      id,
	}
}

// Request is a JSON-RPC request with typed params.
type Request[P any] struct {
	JSONRPCMessage
	Method string `json:"method"`
	Params P      `json:"params"`
}

// Response is a JSON-RPC response with a typed result.
type Response[R any] struct {
	JSONRPCMessage
	// Result is set on success.
	Result *R `json:"result,omitempty"`
	// Error is set on failure.
	Error *JSONRPCError `json:"error,omitempty"`
}

// Err returns the response error as an error value, or nil.
func (r *Response[R]) Err() error {
	if r.Error == nil {
		return nil
	}
	return r.Error
}

type (
	// SendTaskRequest represents a request to initiate or continue a task.
	SendTaskRequest = Request[TaskSendParams]
	// SendTaskResponse represents a response to a SendTaskRequest.
	SendTaskResponse = Response[Task]

	// SendTaskStreamingRequest represents a request to send a task and subscribe to updates.
	SendTaskStreamingRequest = Request[TaskSendParams]

	// GetTaskRequest represents a request to retrieve the current state of a task.
	GetTaskRequest = Request[TaskQueryParams]
	// GetTaskResponse represents a response to a GetTaskRequest.
	GetTaskResponse = Response[Task]

	// CancelTaskRequest represents a request to cancel a running task.
	CancelTaskRequest = Request[TaskIDParams]
	// CancelTaskResponse represents a response to a CancelTaskRequest.
	CancelTaskResponse = Response[Task]

	// SetTaskPushNotificationRequest represents a request to set push notification configuration.
	SetTaskPushNotificationRequest = Request[TaskPushNotificationConfig]
	// SetTaskPushNotificationResponse represents a response to a SetTaskPushNotificationRequest.
	SetTaskPushNotificationResponse = Response[TaskPushNotificationConfig]

	// GetTaskPushNotificationRequest represents a request to retrieve push notification configuration.
	GetTaskPushNotificationRequest = Request[TaskIDParams]
	// GetTaskPushNotificationResponse represents a response to a GetTaskPushNotificationRequest.
	GetTaskPushNotificationResponse = Response[TaskPushNotificationConfig]

	// TaskResubscriptionRequest represents a request to resubscribe to task updates.
	TaskResubscriptionRequest = Request[TaskQueryParams]
)

// SendTaskStreamingResponse represents a streaming response event for a SendTaskStreamingRequest.
type SendTaskStreamingResponse struct {
	JSONRPCMessage
	// Result contains either a TaskStatusUpdateEvent or TaskArtifactUpdateEvent.
	Result any `json:"result,omitempty"`
	// Error contains error details if the request failed.
	Error *JSONRPCError `json:"error,omitempty"`
}

func newRequest[P any](id any, method string, params P) Request[P] {
	return Request[P]{
		JSONRPCMessage: NewJSONRPCMessage(id),
		Method:         method,
		Params:         params,
	}
}

// NewSendTaskRequest creates a new SendTaskRequest.
func NewSendTaskRequest(id any, params TaskSendParams) SendTaskRequest {
	return newRequest(id, MethodTasksSend, params)
}

// NewSendTaskStreamingRequest creates a new SendTaskStreamingRequest.
func NewSendTaskStreamingRequest(id any, params TaskSendParams) SendTaskStreamingRequest {
	return newRequest(id, MethodTasksSendSubscribe, params)
}

// NewGetTaskRequest creates a new GetTaskRequest.
func NewGetTaskRequest(id any, params TaskQueryParams) GetTaskRequest {
	return newRequest(id, MethodTasksGet, params)
}

// NewCancelTaskRequest creates a new CancelTaskRequest.
func NewCancelTaskRequest(id any, params TaskIDParams) CancelTaskRequest {
	return newRequest(id, MethodTasksCancel, params)
}

// NewSetTaskPushNotificationRequest creates a new SetTaskPushNotificationRequest.
func NewSetTaskPushNotificationRequest(id any, params TaskPushNotificationConfig) SetTaskPushNotificationRequest {
	return newRequest(id, MethodTasksPushNotificationSet, params)
}

// NewGetTaskPushNotificationRequest creates a new GetTaskPushNotificationRequest.
func NewGetTaskPushNotificationRequest(id any, params TaskIDParams) GetTaskPushNotificationRequest {
	return newRequest(id, MethodTasksPushNotificationGet, params)
}

// NewTaskResubscriptionRequest creates a new TaskResubscriptionRequest.
func NewTaskResubscriptionRequest(id any, params TaskQueryParams) TaskResubscriptionRequest {
	return newRequest(id, MethodTasksResubscribe, params)
}
