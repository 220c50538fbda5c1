// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Styles groups the terminal styles used by the REPL.
type Styles struct {
	Prompt    lipgloss.Style
	Speaker   lipgloss.Style
	Assistant lipgloss.Style
	Notice    lipgloss.Style
	Error     lipgloss.Style
	Muted     lipgloss.Style
}

// DefaultStyles builds the style set, degrading on dumb terminals.
func DefaultStyles() Styles {
	plain := termenv.ColorProfile() == termenv.Ascii
	if plain {
		s := lipgloss.NewStyle()
		return Styles{Prompt: s, Speaker: s, Assistant: s, Notice: s, Error: s, Muted: s}
	}
	return Styles{
		Prompt:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
		Speaker:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		Assistant: lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true),
		Notice:    lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		Muted:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}
