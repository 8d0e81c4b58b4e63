// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the research agent configuration.
//
// Settings come from an optional TOML file. Secrets are never stored in the
// file: it names environment variables instead, which may be provided by a
// .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// ErrMissingAPIKey is returned when the model API key environment variable is unset.
var ErrMissingAPIKey = errors.New("config: model API key is not set")

// Config represents the agent configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	LLM      LLMConfig      `toml:"llm"`
	Research ResearchConfig `toml:"research"`
	Store    StoreConfig    `toml:"store"`
	Auth     AuthConfig     `toml:"auth"`
	Log      LogConfig      `toml:"log"`
}

// ServerConfig is the listen address of the A2A server.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// LLMConfig selects the chat model.
type LLMConfig struct {
	Model      string `toml:"model"`
	APIKeyEnv  string `toml:"api_key_env"`
	BaseURLEnv string `toml:"base_url_env"`
}

// ResearchConfig bounds a research run.
type ResearchConfig struct {
	Timeout       Duration `toml:"timeout"`
	MaxIterations int      `toml:"max_iterations"`
	MaxResults    int      `toml:"max_results"`
	SearchRate    float64  `toml:"search_rate"` // searches per second, 0 disables the limit
}

// StoreConfig selects the task store.
type StoreConfig struct {
	Driver        string   `toml:"driver"` // memory or mysql
	DSN           string   `toml:"dsn"`
	MaxTasks      int      `toml:"max_tasks"` // memory driver only
	TaskTTL       Duration `toml:"task_ttl"`
	SweepInterval Duration `toml:"sweep_interval"`
}

// AuthConfig enables bearer JWT authentication when the secret variable is set.
type AuthConfig struct {
	JWTSecretEnv string `toml:"jwt_secret_env"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // text or json
}

// Duration is a [time.Duration] written as a string such as "90s" in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements [encoding.TextMarshaler].
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 8099,
		},
		LLM: LLMConfig{
			Model:      "qwen-plus",
			APIKeyEnv:  "DASH_API_KEY",
			BaseURLEnv: "DASH_BASE_URL",
		},
		Research: ResearchConfig{
			Timeout:       Duration{5 * time.Minute},
			MaxIterations: 10,
			MaxResults:    5,
			SearchRate:    1,
		},
		Store: StoreConfig{
			Driver:        "memory",
			SweepInterval: Duration{time.Minute},
		},
		Auth: AuthConfig{
			JWTSecretEnv: "A2A_JWT_SECRET",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the TOML file at path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadEnv loads .env style files into the process environment without
// overriding variables that are already set. Missing files are skipped.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Server.Host == "":
		return errors.New("config: server.host is required")
	case c.Server.Port < 1 || c.Server.Port > 65535:
		return fmt.Errorf("config: server.port %d out of range", c.Server.Port)
	case c.LLM.Model == "":
		return errors.New("config: llm.model is required")
	case c.Research.MaxIterations < 1:
		return errors.New("config: research.max_iterations must be positive")
	case c.Research.Timeout.Duration < 0:
		return errors.New("config: research.timeout must not be negative")
	case c.Store.MaxTasks < 0:
		return errors.New("config: store.max_tasks must not be negative")
	}

	switch c.Store.Driver {
	case "memory":
	case "mysql":
		if c.Store.DSN == "" {
			return errors.New("config: store.dsn is required for the mysql driver")
		}
		if c.Store.MaxTasks != 0 {
			return errors.New("config: store.max_tasks applies to the memory driver only")
		}
	default:
		return fmt.Errorf("config: unknown store.driver %q", c.Store.Driver)
	}

	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("config: unknown log.format %q", c.Log.Format)
	}
	return nil
}

// Addr returns the host:port listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// URL returns the public URL advertised in the agent card.
func (c *Config) URL() string {
	return "http://" + c.Addr() + "/"
}

// APIKey returns the model API key, or [ErrMissingAPIKey].
func (c *Config) APIKey() (string, error) {
	key := os.Getenv(c.LLM.APIKeyEnv)
	if key == "" {
		return "", fmt.Errorf("%w: set %s", ErrMissingAPIKey, c.LLM.APIKeyEnv)
	}
	return key, nil
}

// BaseURL returns the model endpoint, empty for the provider default.
func (c *Config) BaseURL() string {
	if c.LLM.BaseURLEnv == "" {
		return ""
	}
	return os.Getenv(c.LLM.BaseURLEnv)
}

// JWTSecret returns the bearer token secret. Empty disables authentication.
func (c *Config) JWTSecret() []byte {
	if c.Auth.JWTSecretEnv == "" {
		return nil
	}
	return []byte(os.Getenv(c.Auth.JWTSecretEnv))
}

// SlogLevel parses the configured log level.
func (c *Config) SlogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("config: invalid log.level: %w", err)
	}
	return l, nil
}
