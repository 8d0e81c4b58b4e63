// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-json-experiment/json"

	"github.com/go-a2a/research-agent/internal/llm"
)

// ToolName is the function name the model uses to call the search tool.
const ToolName = "duckduckgo_search"

// Tool exposes a [Searcher] as a model callable function.
type Tool struct {
	searcher Searcher
}

// NewTool returns a Tool searching with s.
func NewTool(s Searcher) *Tool {
	return &Tool{searcher: s}
}

// Definition returns the function definition advertised to the model.
func (t *Tool) Definition() llm.ToolDefinition {
	return llm.ToolDefinition{
		Name:        ToolName,
		Description: "Search the web for information about a specific topic.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "The search query",
				},
			},
			"required": []string{"query"},
		},
	}
}

// Call runs a search with the JSON encoded arguments and renders the results as text.
func (t *Tool) Call(ctx context.Context, arguments string) (string, error) {
	var args struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return "", fmt.Errorf("invalid %s arguments: %w", ToolName, err)
	}
	if strings.TrimSpace(args.Query) == "" {
		return "", errors.New("query is required")
	}

	results, err := t.searcher.Search(ctx, args.Query)
	if err != nil {
		return "", err
	}
	return FormatResults(args.Query, results), nil
}

// FormatResults renders results as plain text blocks.
func FormatResults(query string, results []Result) string {
	if len(results) == 0 {
		return fmt.Sprintf("No results found for %q.", query)
	}

	var sb strings.Builder
	for i, r := range results {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "Title: %s\nURL: %s", r.Title, r.URL)
		if r.Snippet != "" {
			fmt.Fprintf(&sb, "\nSnippet: %s", r.Snippet)
		}
	}
	return sb.String()
}
