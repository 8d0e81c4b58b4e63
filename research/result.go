// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package research

import (
	"strings"

	"github.com/google/uuid"
)

// SourcesMarker separates the summary from the list of sources in the agent output.
const SourcesMarker = "Sources:"

// SupportedContentTypes lists the output modes the research agent can produce.
var SupportedContentTypes = []string{"text", "text/plain"}

// Result is the outcome of one research invocation: either a [Success] or a [Failure].
type Result interface {
	// ResultID returns the identifier generated for the invocation.
	ResultID() string

	isResult()
}

// Success is a completed research run.
type Success struct {
	ID      string
	Content string
	Sources []string
}

// ResultID implements [Result].
func (s Success) ResultID() string { return s.ID }

func (Success) isResult() {}

// Failure is a research run that could not produce a summary.
type Failure struct {
	ID      string
	Message string
}

// ResultID implements [Result].
func (f Failure) ResultID() string { return f.ID }

func (Failure) isResult() {}

var (
	_ Result = Success{}
	_ Result = Failure{}
)

// ParseOutput splits raw agent output at the first [SourcesMarker].
//
// The text before the marker is trimmed and returned as content, every non-empty
// line after it is a source. Without a marker the raw text is returned unchanged.
func ParseOutput(raw string) (content string, sources []string) {
	before, after, found := strings.Cut(raw, SourcesMarker)
	if !found {
		return raw, nil
	}

	for _, line := range strings.Split(after, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			sources = append(sources, line)
		}
	}
	return strings.TrimSpace(before), sources
}

// FormatResult renders r as the text delivered to the client.
func FormatResult(r Result) string {
	switch r := r.(type) {
	case Success:
		if len(r.Sources) == 0 {
			return r.Content
		}
		return r.Content + "\n\n" + SourcesMarker + "\n" + strings.Join(r.Sources, "\n")
	case Failure:
		return r.Message
	default:
		return ""
	}
}

func newResultID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
