// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Command research-agent serves a web research agent over the A2A protocol.
package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/alecthomas/kong"

	"github.com/go-a2a/research-agent/a2a"
	"github.com/go-a2a/research-agent/internal/config"
	"github.com/go-a2a/research-agent/research"
)

// Build-time variables (set via ldflags)
var version = "1.0.0"

// Globals are the flags shared by every command.
type Globals struct {
	Config  string   `short:"c" default:"research-agent.toml" type:"path" help:"Config file path"`
	EnvFile []string `name:"env-file" default:".env" help:"Environment files to load (repeatable)"`
}

// CLI defines the command-line interface.
type CLI struct {
	Globals

	Serve   ServeCmd   `cmd:"" default:"1" help:"Run the A2A research agent server"`
	Ask     AskCmd     `cmd:"" help:"Send a research task to a running agent"`
	Card    CardCmd    `cmd:"" help:"Print the agent card of a running agent"`
	Version VersionCmd `cmd:"" help:"Show version information"`
}

// VersionCmd shows version information.
type VersionCmd struct{}

// Run prints the version.
func (VersionCmd) Run(kctx *kong.Context) error {
	_, err := fmt.Fprintf(kctx.Stdout, "research-agent version %s (a2a %s)\n", version, a2a.Version)
	return err
}

// load reads the config file and the environment files.
func (g *Globals) load() (*config.Config, error) {
	if err := config.LoadEnv(g.EnvFile...); err != nil {
		return nil, err
	}
	return config.Load(g.Config)
}

func newLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

// agentCard describes the research agent served at url.
func agentCard(url string) *a2a.AgentCard {
	return &a2a.AgentCard{
		Name: "Research Agent",
		Description: "A powerful research assistant that can search the web for information " +
			"on any topic and provide comprehensive summaries with cited sources.",
		URL:     url,
		Version: version,
		Capabilities: a2a.AgentCapabilities{
			Streaming: false,
		},
		DefaultInputModes:  research.SupportedContentTypes,
		DefaultOutputModes: research.SupportedContentTypes,
		Skills: []a2a.AgentSkill{{
			ID:   "web_researcher",
			Name: "Web Researcher",
			Description: "Research topics on the web using DuckDuckGo search and provide " +
				"comprehensive summaries with relevant information and sources.",
			Tags: []string{"research", "web search", "information gathering"},
			Examples: []string{
				"Research the latest developments in quantum computing",
				"Find information about climate change solutions",
				"Gather data on renewable energy trends",
			},
		}},
	}
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("research-agent"),
		kong.Description("A2A research agent backed by an LLM and DuckDuckGo search."),
		kong.UsageOnError(),
	)
	kctx.FatalIfErrorf(kctx.Run(&cli.Globals))
}
