// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/go-a2a/research-agent/auth"
	"github.com/go-a2a/research-agent/internal/config"
	"github.com/go-a2a/research-agent/internal/llm"
	"github.com/go-a2a/research-agent/internal/search"
	"github.com/go-a2a/research-agent/research"
	"github.com/go-a2a/research-agent/server"
	"github.com/go-a2a/research-agent/server/task"
)

const shutdownTimeout = 15 * time.Second

// ServeCmd runs the A2A server. Flags override the config file.
type ServeCmd struct {
	Host string `help:"Host to bind (default from config: localhost)"`
	Port int    `help:"Port to bind (default from config: 8099)"`
}

// Run starts the server and blocks until SIGINT or SIGTERM.
func (c *ServeCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	if c.Host != "" {
		cfg.Server.Host = c.Host
	}
	if c.Port != 0 {
		cfg.Server.Port = c.Port
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	apiKey, err := cfg.APIKey()
	if err != nil {
		return err
	}
	provider, err := llm.NewOpenAI(llm.OpenAIConfig{
		APIKey:  apiKey,
		BaseURL: cfg.BaseURL(),
		Model:   cfg.LLM.Model,
	})
	if err != nil {
		return err
	}

	searcher := search.NewDuckDuckGo(
		search.WithMaxResults(cfg.Research.MaxResults),
		search.WithRateLimit(cfg.Research.SearchRate, 2),
	)
	executor := research.NewExecutor(provider,
		research.WithTool(search.NewTool(searcher)),
		research.WithTimeout(cfg.Research.Timeout.Duration),
		research.WithMaxIterations(cfg.Research.MaxIterations),
		research.WithLogger(logger),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close(context.Background())

	opts := []server.Option{server.WithLogger(logger)}
	if secret := cfg.JWTSecret(); len(secret) > 0 {
		authn, err := auth.NewJWTAuthenticator(secret)
		if err != nil {
			return err
		}
		opts = append(opts, server.WithAuthenticator(authn))
		logger.Info("bearer authentication enabled", "secret_env", cfg.Auth.JWTSecretEnv)
	}

	tm := server.NewResearchTaskManager(store, executor).WithLogger(logger)
	srv, err := server.NewServer(server.Config{AgentCard: agentCard(cfg.URL()), TaskManager: tm}, opts...)
	if err != nil {
		return err
	}

	httpSrv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.ListenAndServe()
	}()
	logger.Info("research agent listening", "addr", cfg.Addr(), "model", cfg.LLM.Model, "store", cfg.Store.Driver)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// openStore opens the configured task store and starts its expiry janitor.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (task.TaskStore, error) {
	ttl := cfg.Store.TaskTTL.Duration
	interval := cfg.Store.SweepInterval.Duration

	switch cfg.Store.Driver {
	case "mysql":
		db, err := gorm.Open(mysql.Open(cfg.Store.DSN), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Warn),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		s, err := task.NewDatabaseTaskStore(ctx, task.DatabaseTaskStoreConfig{DB: db, AutoMigrate: true, TTL: ttl})
		if err != nil {
			return nil, err
		}
		if ttl > 0 && interval > 0 {
			go sweepLoop(ctx, logger, interval, s.Sweep)
		}
		return s, nil

	default:
		s := task.NewInMemoryTaskStore(task.WithMaxTasks(cfg.Store.MaxTasks), task.WithTTL(ttl))
		if ttl > 0 && interval > 0 {
			go s.Run(ctx, interval)
		}
		return s, nil
	}
}

func sweepLoop(ctx context.Context, logger *slog.Logger, interval time.Duration, sweep func(context.Context) (int64, error)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sweep(ctx)
			if err != nil {
				logger.WarnContext(ctx, "task sweep failed", "error", err)
				continue
			}
			if n > 0 {
				logger.InfoContext(ctx, "expired tasks removed", "count", n)
			}
		}
	}
}
