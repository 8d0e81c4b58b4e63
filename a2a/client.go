// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package a2a

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	json "github.com/bytedance/sonic"
	"github.com/google/uuid"
)

// AgentCardPath is the well-known path of the agent card.
const AgentCardPath = "/.well-known/agent.json"

// Client represents an A2A API client.
type Client struct {
	// BaseURL is the base URL for the A2A API.
	BaseURL *url.URL
	// HTTPClient is the HTTP client used for API requests.
	HTTPClient *http.Client
	// RequestTimeout is the timeout for API requests. Zero disables the timeout.
	RequestTimeout time.Duration
	// UserAgent is the user agent to use for API requests.
	UserAgent string
	// BearerToken, when set, is sent in the Authorization header of JSON-RPC requests.
	BearerToken string
}

// ClientOption configures a [Client].
type ClientOption func(*Client)

// WithHTTPClient sets the HTTP client used for API requests.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.HTTPClient = hc
	}
}

// WithRequestTimeout sets the per request timeout.
func WithRequestTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.RequestTimeout = d
	}
}

// WithBearerToken sets the token sent as "Authorization: Bearer <token>".
func WithBearerToken(token string) ClientOption {
	return func(c *Client) {
		c.BearerToken = token
	}
}

// NewClient creates a new A2A client with the given baseURL.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL: unsupported scheme %q", u.Scheme)
	}

	c := &Client{
		BaseURL:        u,
		HTTPClient:     http.DefaultClient,
		RequestTimeout: 5 * time.Minute,
		UserAgent:      "research-agent/" + Version,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// GetAgentCard fetches the agent card from the server.
func (c *Client) GetAgentCard(ctx context.Context) (*AgentCard, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	u := *c.BaseURL
	u.Path = AgentCardPath

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var card AgentCard
	if err := json.ConfigStd.NewDecoder(resp.Body).Decode(&card); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &card, nil
}

// SendRequest sends a JSON-RPC request to the server and decodes the reply into response.
func (c *Client) SendRequest(ctx context.Context, request, response any) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	body, err := json.ConfigStd.Marshal(request)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL.String(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.BearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.BearerToken)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.ConfigStd.NewDecoder(resp.Body).Decode(response); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// call sends request and returns the typed result. A JSON-RPC error is returned as *JSONRPCError.
func call[P, R any](ctx context.Context, c *Client, request Request[P]) (*R, error) {
	var response Response[R]
	if err := c.SendRequest(ctx, request, &response); err != nil {
		return nil, err
	}
	if err := response.Err(); err != nil {
		return nil, err
	}
	if response.Result == nil {
		return nil, fmt.Errorf("empty result for %s", request.Method)
	}
	return response.Result, nil
}

// SendTask sends a task to the server.
func (c *Client) SendTask(ctx context.Context, params TaskSendParams) (*Task, error) {
	return call[TaskSendParams, Task](ctx, c, NewSendTaskRequest(generateID(), params))
}

// SendTaskSubscribe sends a task and asks for streamed updates.
//
// Servers that do not stream reply with an error, which is returned as is.
func (c *Client) SendTaskSubscribe(ctx context.Context, params TaskSendParams) (*TaskStatusUpdateEvent, error) {
	return call[TaskSendParams, TaskStatusUpdateEvent](ctx, c, NewSendTaskStreamingRequest(generateID(), params))
}

// GetTask retrieves a task from the server.
func (c *Client) GetTask(ctx context.Context, id string, historyLength *int) (*Task, error) {
	params := TaskQueryParams{
		ID:            id,
		HistoryLength: historyLength,
	}
	return call[TaskQueryParams, Task](ctx, c, NewGetTaskRequest(generateID(), params))
}

// CancelTask cancels a task on the server.
func (c *Client) CancelTask(ctx context.Context, id string) (*Task, error) {
	return call[TaskIDParams, Task](ctx, c, NewCancelTaskRequest(generateID(), TaskIDParams{ID: id}))
}

// SetTaskPushNotification sets push notification configuration for a task.
func (c *Client) SetTaskPushNotification(ctx context.Context, taskID string, config PushNotificationConfig) (*TaskPushNotificationConfig, error) {
	params := TaskPushNotificationConfig{
		ID:                     taskID,
		PushNotificationConfig: config,
	}
	return call[TaskPushNotificationConfig, TaskPushNotificationConfig](ctx, c, NewSetTaskPushNotificationRequest(generateID(), params))
}

// GetTaskPushNotification retrieves push notification configuration for a task.
func (c *Client) GetTaskPushNotification(ctx context.Context, taskID string) (*TaskPushNotificationConfig, error) {
	return call[TaskIDParams, TaskPushNotificationConfig](ctx, c, NewGetTaskPushNotificationRequest(generateID(), TaskIDParams{ID: taskID}))
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.RequestTimeout)
}

// generateID returns a unique ID for JSON-RPC requests.
func generateID() string {
	return uuid.NewString()
}
