// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "research-agent.toml", `
[server]
port = 9000

[llm]
model = "qwen-max"

[research]
timeout = "90s"
max_iterations = 4

[store]
driver = "mysql"
dsn = "user:pass@tcp(localhost:3306)/a2a?parseTime=true"
task_ttl = "24h"

[log]
level = "debug"
format = "json"
`)

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	want := Default()
	want.Server.Port = 9000
	want.LLM.Model = "qwen-max"
	want.Research.Timeout = Duration{90 * time.Second}
	want.Research.MaxIterations = 4
	want.Store.Driver = "mysql"
	want.Store.DSN = "user:pass@tcp(localhost:3306)/a2a?parseTime=true"
	want.Store.TaskTTL = Duration{24 * time.Hour}
	want.Log = LogConfig{Level: "debug", Format: "json"}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
	if err := got.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
	if lvl, _ := got.SlogLevel(); lvl != slog.LevelDebug {
		t.Errorf("SlogLevel = %v, want debug", lvl)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	got, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if diff := cmp.Diff(Default(), got); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
	if got.Addr() != "localhost:8099" || got.URL() != "http://localhost:8099/" {
		t.Errorf("Addr = %q, URL = %q", got.Addr(), got.URL())
	}
}

func TestLoadInvalid(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"syntax":   "[server\nport = 1",
		"duration": "[research]\ntimeout = \"soon\"",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			if _, err := Load(writeFile(t, "bad.toml", content)); err == nil {
				t.Error("Load succeeded, want error")
			}
		})
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		mutate  func(*Config)
		wantErr string
	}{
		"port":           {mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: "server.port"},
		"host":           {mutate: func(c *Config) { c.Server.Host = "" }, wantErr: "server.host"},
		"model":          {mutate: func(c *Config) { c.LLM.Model = "" }, wantErr: "llm.model"},
		"iterations":     {mutate: func(c *Config) { c.Research.MaxIterations = 0 }, wantErr: "max_iterations"},
		"driver":         {mutate: func(c *Config) { c.Store.Driver = "redis" }, wantErr: "store.driver"},
		"mysql dsn":      {mutate: func(c *Config) { c.Store.Driver = "mysql" }, wantErr: "store.dsn"},
		"mysql capacity": {
			mutate: func(c *Config) {
				c.Store.Driver, c.Store.DSN, c.Store.MaxTasks = "mysql", "user:pass@tcp(db:3306)/agent", 100
			},
			wantErr: "store.max_tasks",
		},
		"negative capacity": {mutate: func(c *Config) { c.Store.MaxTasks = -1 }, wantErr: "store.max_tasks"},
		"log level":      {mutate: func(c *Config) { c.Log.Level = "loud" }, wantErr: "log.level"},
		"log format":     {mutate: func(c *Config) { c.Log.Format = "xml" }, wantErr: "log.format"},
		"negative delay": {mutate: func(c *Config) { c.Research.Timeout = Duration{-time.Second} }, wantErr: "timeout"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestAPIKey(t *testing.T) {
	cfg := Default()
	cfg.LLM.APIKeyEnv = "RESEARCH_AGENT_TEST_API_KEY"

	t.Setenv(cfg.LLM.APIKeyEnv, "")
	if _, err := cfg.APIKey(); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("APIKey error = %v, want ErrMissingAPIKey", err)
	}

	t.Setenv(cfg.LLM.APIKeyEnv, "sk-test")
	if key, err := cfg.APIKey(); err != nil || key != "sk-test" {
		t.Errorf("APIKey = %q, %v, want sk-test", key, err)
	}
}

func TestLoadEnv(t *testing.T) {
	const name = "RESEARCH_AGENT_TEST_BASE_URL"
	os.Unsetenv(name)
	t.Cleanup(func() { os.Unsetenv(name) })

	path := writeFile(t, ".env", name+"=https://dashscope.example.com/v1\n")
	if err := LoadEnv(path, filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("LoadEnv failed: %v", err)
	}

	cfg := Default()
	cfg.LLM.BaseURLEnv = name
	if got := cfg.BaseURL(); got != "https://dashscope.example.com/v1" {
		t.Errorf("BaseURL = %q", got)
	}
}
