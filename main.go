// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Command bogdan is a terminal chat client that dispatches messages to
// hosted language models through a multi-provider proxy, picking the model
// per query with a capability heuristic.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/bogdan-ai/bogdan-tui/internal/chat"
	"github.com/bogdan-ai/bogdan-tui/internal/cli"
	"github.com/bogdan-ai/bogdan-tui/internal/config"
	"github.com/bogdan-ai/bogdan-tui/internal/extract"
	"github.com/bogdan-ai/bogdan-tui/internal/proxy"
	"github.com/bogdan-ai/bogdan-tui/internal/session"
	"github.com/bogdan-ai/bogdan-tui/internal/store"
)

// hotClient lets the config watcher swap the proxy client without
// restarting the REPL.
type hotClient struct {
	mu     sync.RWMutex
	client *proxy.Client
}

func (h *hotClient) Send(ctx context.Context, req proxy.ChatRequest) (*proxy.ChatResponse, error) {
	h.mu.RLock()
	c := h.client
	h.mu.RUnlock()
	return c.Send(ctx, req)
}

func (h *hotClient) swap(c *proxy.Client) {
	h.mu.Lock()
	h.client = c
	h.mu.Unlock()
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "bogdan:", err)
		os.Exit(1)
	}
}

func run() error {
	log.SetFlags(0)
	log.SetOutput(os.Stderr)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	st, err := store.New(cfg.StateDir)
	if err != nil {
		return err
	}

	registry := extract.DefaultRegistry()
	if cfg.TranscriberEndpoint != "" {
		registry.Register(extract.NewTranscriber(cfg.TranscriberEndpoint))
	}

	client := &hotClient{client: proxy.NewClient(cfg.Endpoint, cfg.Timeout())}
	sessions := session.NewManager(st)
	orchestrator := chat.New(st, sessions, client, registry)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Endpoint and timeout follow config file edits while running.
	if dir, err := config.Dir(); err == nil {
		go func() {
			err := config.Watch(ctx, dir, func(updated config.Config) {
				client.swap(proxy.NewClient(updated.Endpoint, updated.Timeout()))
			})
			if err != nil && ctx.Err() == nil {
				log.Printf("config watcher stopped: %v", err)
			}
		}()
	}

	return cli.New(orchestrator, sessions, cfg.HistoryFile).Run(ctx)
}
