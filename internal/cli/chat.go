// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli is the interactive terminal front end: a line-editor REPL over
// the chat orchestrator with slash commands for sessions, providers,
// settings, and exports.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/peterh/liner"
	"golang.org/x/term"

	"github.com/bogdan-ai/bogdan-tui/internal/chat"
	"github.com/bogdan-ai/bogdan-tui/internal/model"
	"github.com/bogdan-ai/bogdan-tui/internal/session"
)

// ChatCLI runs the interactive loop.
type ChatCLI struct {
	orchestrator *chat.Orchestrator
	sessions     *session.Manager
	line         *liner.State
	renderer     *glamour.TermRenderer
	styles       Styles
	historyFile  string
	quit         bool
}

// New creates the CLI over an orchestrator and session manager.
func New(o *chat.Orchestrator, sessions *session.Manager, historyFile string) *ChatCLI {
	c := &ChatCLI{
		orchestrator: o,
		sessions:     sessions,
		styles:       DefaultStyles(),
		historyFile:  historyFile,
	}

	if term.IsTerminal(int(os.Stdout.Fd())) {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(100),
		)
		if err == nil {
			c.renderer = r
		} else {
			log.Printf("CLI: markdown renderer unavailable: %v", err)
		}
	}

	o.OnNotice(c.showNotice)
	return c
}

// Run starts the REPL and blocks until /quit or EOF.
func (c *ChatCLI) Run(ctx context.Context) error {
	c.line = liner.NewLiner()
	c.line.SetCtrlCAborts(true)
	defer c.close()

	c.loadHistory()
	c.printWelcome()
	c.printTranscript(c.sessions.Messages())

	for !c.quit {
		input, err := c.line.Prompt(c.styles.Prompt.Render("> "))
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				break
			}
			return fmt.Errorf("read input: %w", err)
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		c.line.AppendHistory(input)

		if strings.HasPrefix(input, "/") {
			c.handleCommand(ctx, input)
			continue
		}
		c.submit(ctx, input)
	}
	return nil
}

func (c *ChatCLI) close() {
	c.saveHistory()
	c.line.Close()
}

// submit dispatches a message and prints the reply.
func (c *ChatCLI) submit(ctx context.Context, text string, attachments ...string) {
	reply, err := c.orchestrator.Submit(ctx, text, attachments...)
	switch {
	case errors.Is(err, chat.ErrBusy):
		// Another answer is on the way; the input is simply dropped.
		return
	case errors.Is(err, chat.ErrNothingToSend):
		c.printNotice("Нечего отправлять.")
		return
	case err != nil:
		// The failure is already in the transcript and a notice was shown.
		if reply != nil {
			c.printMessage(*reply)
		}
		return
	}
	if reply != nil {
		c.printMessage(*reply)
	}
}

// ============================================================================
// OUTPUT
// ============================================================================

func (c *ChatCLI) printWelcome() {
	fmt.Println(c.styles.Assistant.Render("Богдан") + c.styles.Muted.Render(" — чат с ИИ. /help для списка команд."))
	fmt.Println()
}

func (c *ChatCLI) printTranscript(messages []model.Message) {
	for _, m := range messages {
		c.printMessage(m)
	}
}

func (c *ChatCLI) printMessage(m model.Message) {
	speaker := c.styles.Speaker
	if m.Role == model.RoleAssistant {
		speaker = c.styles.Assistant
	}

	header := m.Role.DisplayName()
	if m.Model != "" {
		header += c.styles.Muted.Render(" ["+m.Model+"]")
	}
	if m.Fallback {
		header += c.styles.Notice.Render(" (резерв)")
	}
	fmt.Println(speaker.Render(header) + ":")

	content := m.Content
	if m.Role == model.RoleAssistant && !m.Failed && c.renderer != nil {
		if rendered, err := c.renderer.Render(content); err == nil {
			content = strings.TrimRight(rendered, "\n")
		}
	}
	fmt.Println(content)

	for _, a := range m.Attachments {
		fmt.Println(c.styles.Muted.Render(fmt.Sprintf("  вложение: %s (%d байт)", a.Name, a.Size)))
	}
	if len(m.Reactions) > 0 {
		var parts []string
		for emoji, n := range m.Reactions {
			parts = append(parts, fmt.Sprintf("%s %d", emoji, n))
		}
		fmt.Println(c.styles.Muted.Render("  " + strings.Join(parts, "  ")))
	}
	fmt.Println()
}

func (c *ChatCLI) showNotice(n chat.Notice) {
	if n.Info {
		c.printNotice(n.Text)
		return
	}
	fmt.Println(c.styles.Error.Render("! " + n.Text))
}

func (c *ChatCLI) printNotice(text string) {
	fmt.Println(c.styles.Notice.Render("* " + text))
}

// ============================================================================
// INPUT HISTORY
// ============================================================================

func (c *ChatCLI) loadHistory() {
	if c.historyFile == "" {
		return
	}
	f, err := os.Open(c.historyFile)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.ReadHistory(f)
}

func (c *ChatCLI) saveHistory() {
	if c.historyFile == "" {
		return
	}
	f, err := os.Create(c.historyFile)
	if err != nil {
		log.Printf("CLI: save input history: %v", err)
		return
	}
	defer f.Close()
	c.line.WriteHistory(f)
}
