// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package a2a

import (
	"fmt"

	json "github.com/bytedance/sonic"
)

// JSONRPCVersion is the only JSON-RPC version spoken by A2A.
const JSONRPCVersion = "2.0"

// JSONRPCMessage is the base structure for all JSON-RPC 2.0 messages.
type JSONRPCMessage struct {
	// JSONRPC version, always "2.0".
	JSONRPC string `json:"jsonrpc"`
	// ID is a unique identifier for the request/response correlation.
	ID any `json:"id"` // string, number, or null
}

// JSONRPCRequest represents a JSON-RPC 2.0 request.
type JSONRPCRequest struct {
	JSONRPCMessage
	// Method identifies the operation to perform.
	Method string `json:"method"`
	// Params contains parameters for the method.
	Params any `json:"params,omitempty"`
}

// DecodeParams decodes the generic request params into v.
func (r *JSONRPCRequest) DecodeParams(v any) error {
	if r.Params == nil {
		return fmt.Errorf("missing params")
	}
	b, err := json.ConfigStd.Marshal(r.Params)
	if err != nil {
		return err
	}
	return json.ConfigStd.Unmarshal(b, v)
}

// JSONRPCResponse represents a JSON-RPC 2.0 response.
type JSONRPCResponse struct {
	JSONRPCMessage
	// Result contains the successful result data. Mutually exclusive with Error.
	Result any `json:"result,omitempty"`
	// Error contains an error object if the request failed. Mutually exclusive with Result.
	Error *JSONRPCError `json:"error,omitempty"`
}

// JSONRPCError represents a JSON-RPC 2.0 error.
//
// JSONRPCError implements error so the client can return it unchanged.
type JSONRPCError struct {
	// Code is the error code.
	Code int `json:"code"`
	// Message is a short description of the error.
	Message string `json:"message"`
	// Data contains optional additional error details.
	Data any `json:"data,omitempty"`
}

// Error implements error.
func (e *JSONRPCError) Error() string {
	if e.Data != nil {
		return fmt.Sprintf("jsonrpc error %d: %s (%v)", e.Code, e.Message, e.Data)
	}
	return fmt.Sprintf("jsonrpc error %d: %s", e.Code, e.Message)
}

// WithData returns a copy of e carrying data.
func (e *JSONRPCError) WithData(data any) *JSONRPCError {
	ne := *e
	ne.Data = data
	return &ne
}

// Standard JSON-RPC 2.0 error codes
const (
	// JSONParseErrorCode indicates invalid JSON payload.
	JSONParseErrorCode = -32700
	// InvalidRequestErrorCode indicates request payload validation error.
	InvalidRequestErrorCode = -32600
	// MethodNotFoundErrorCode indicates the method does not exist.
	MethodNotFoundErrorCode = -32601
	// InvalidParamsErrorCode indicates invalid method parameters.
	InvalidParamsErrorCode = -32602
	// InternalErrorCode indicates an internal server error.
	InternalErrorCode = -32603
)

// A2A specific error codes
const (
	// TaskNotFoundErrorCode indicates the specified task ID was not found.
	TaskNotFoundErrorCode = -32001
	// TaskNotCancelableErrorCode indicates the task cannot be canceled.
	TaskNotCancelableErrorCode = -32002
	// PushNotificationNotSupportedErrorCode indicates the agent does not support push notifications.
	PushNotificationNotSupportedErrorCode = -32003
	// UnsupportedOperationErrorCode indicates the requested operation is not supported.
	UnsupportedOperationErrorCode = -32004
	// ContentTypeNotSupportedErrorCode indicates a mismatch in supported content types.
	ContentTypeNotSupportedErrorCode = -32005
)

var errorMessages = map[int]string{
	JSONParseErrorCode:                    "Invalid JSON payload",
	InvalidRequestErrorCode:               "Request payload validation error",
	MethodNotFoundErrorCode:               "Method not found",
	InvalidParamsErrorCode:                "Invalid parameters",
	InternalErrorCode:                     "Internal error",
	TaskNotFoundErrorCode:                 "Task not found",
	TaskNotCancelableErrorCode:            "Task cannot be canceled",
	PushNotificationNotSupportedErrorCode: "Push Notification is not supported",
	UnsupportedOperationErrorCode:         "This operation is not supported",
	ContentTypeNotSupportedErrorCode:      "Incompatible content types",
}

// NewError returns a JSONRPCError for code with its standard message.
func NewError(code int) *JSONRPCError {
	msg, ok := errorMessages[code]
	if !ok {
		msg = "Unknown error"
	}
	return &JSONRPCError{Code: code, Message: msg}
}

// NewJSONParseError creates a new JSONParseError.
func NewJSONParseError() *JSONRPCError { return NewError(JSONParseErrorCode) }

// NewInvalidRequestError creates a new InvalidRequestError.
func NewInvalidRequestError() *JSONRPCError { return NewError(InvalidRequestErrorCode) }

// NewMethodNotFoundError creates a new MethodNotFoundError.
func NewMethodNotFoundError() *JSONRPCError { return NewError(MethodNotFoundErrorCode) }

// NewInvalidParamsError creates a new InvalidParamsError.
func NewInvalidParamsError() *JSONRPCError { return NewError(InvalidParamsErrorCode) }

// NewInternalError creates a new InternalError.
func NewInternalError() *JSONRPCError { return NewError(InternalErrorCode) }

// NewTaskNotFoundError creates a new TaskNotFoundError.
func NewTaskNotFoundError() *JSONRPCError { return NewError(TaskNotFoundErrorCode) }

// NewTaskNotCancelableError creates a new TaskNotCancelableError.
func NewTaskNotCancelableError() *JSONRPCError { return NewError(TaskNotCancelableErrorCode) }

// NewPushNotificationNotSupportedError creates a new PushNotificationNotSupportedError.
func NewPushNotificationNotSupportedError() *JSONRPCError {
	return NewError(PushNotificationNotSupportedErrorCode)
}

// NewUnsupportedOperationError creates a new UnsupportedOperationError.
func NewUnsupportedOperationError() *JSONRPCError { return NewError(UnsupportedOperationErrorCode) }

// NewContentTypeNotSupportedError creates a new ContentTypeNotSupportedError.
func NewContentTypeNotSupportedError() *JSONRPCError {
	return NewError(ContentTypeNotSupportedErrorCode)
}

// NewErrorResponse returns the response rejecting request id with err.
func NewErrorResponse(id any, err *JSONRPCError) *JSONRPCResponse {
	return &JSONRPCResponse{JSONRPCMessage: NewJSONRPCMessage(id), Error: err}
}

// NewIncompatibleTypesError returns the response rejecting request id because none
// of the client's accepted output modes can be produced.
func NewIncompatibleTypesError(id any) *JSONRPCResponse {
	return NewErrorResponse(id, NewContentTypeNotSupportedError())
}
