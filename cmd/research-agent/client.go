// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	json "github.com/bytedance/sonic"
	"github.com/google/uuid"

	"github.com/go-a2a/research-agent/a2a"
)

// AskCmd sends one research task to a running agent.
type AskCmd struct {
	URL     string        `default:"http://localhost:8099" help:"Agent base URL"`
	Session string        `help:"Session ID (random when empty)"`
	Token   string        `env:"A2A_TOKEN" help:"Bearer token for authenticated agents"`
	Timeout time.Duration `default:"5m" help:"Request timeout"`
	Query   []string      `arg:"" help:"Research query"`
}

// Run sends the query and prints the resulting text artifacts.
func (c *AskCmd) Run(kctx *kong.Context) error {
	client, err := newClient(c.URL, c.Token, c.Timeout)
	if err != nil {
		return err
	}

	session := c.Session
	if session == "" {
		session = uuid.NewString()
	}
	params := a2a.TaskSendParams{
		ID:                  uuid.NewString(),
		SessionID:           session,
		Message:             a2a.Message{Role: a2a.RoleUser, Parts: a2a.Parts{a2a.NewTextPart(strings.Join(c.Query, " "))}},
		AcceptedOutputModes: []string{"text"},
	}

	t, err := client.SendTask(context.Background(), params)
	if err != nil {
		return err
	}
	return printTask(kctx.Stdout, t)
}

// CardCmd prints the agent card of a running agent.
type CardCmd struct {
	URL string `default:"http://localhost:8099" help:"Agent base URL"`
}

// Run fetches and prints the agent card.
func (c *CardCmd) Run(kctx *kong.Context) error {
	client, err := newClient(c.URL, "", 30*time.Second)
	if err != nil {
		return err
	}
	card, err := client.GetAgentCard(context.Background())
	if err != nil {
		return err
	}

	b, err := json.ConfigStd.MarshalIndent(card, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(kctx.Stdout, string(b))
	return err
}

func newClient(url, token string, timeout time.Duration) (*a2a.Client, error) {
	opts := []a2a.ClientOption{a2a.WithRequestTimeout(timeout)}
	if token != "" {
		opts = append(opts, a2a.WithBearerToken(token))
	}
	return a2a.NewClient(url, opts...)
}

// printTask writes the text of every artifact, or the status message of a failed task.
func printTask(w io.Writer, t *a2a.Task) error {
	if t.Status.State == a2a.TaskStateFailed {
		if t.Status.Message != nil {
			if text, ok := t.Status.Message.Text(); ok {
				return errors.New(text)
			}
		}
		return fmt.Errorf("task %s failed", t.ID)
	}

	for _, artifact := range t.Artifacts {
		for _, p := range artifact.Parts {
			if tp, ok := p.(a2a.TextPart); ok {
				if _, err := fmt.Fprintln(w, tp.Text); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
