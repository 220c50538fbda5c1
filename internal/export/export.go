// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export renders conversations to shareable formats.
package export

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bogdan-ai/bogdan-tui/internal/model"
	"github.com/bogdan-ai/bogdan-tui/internal/util"
)

// TimestampLayout is the transcript timestamp format.
const TimestampLayout = "2006-01-02 15:04:05"

// Exporter renders one session into a particular format.
type Exporter interface {
	// Export renders the session.
	Export(s model.Session) ([]byte, error)
	// FileExtension returns the extension including the dot.
	FileExtension() string
	// MimeType returns the MIME type of the output.
	MimeType() string
}

// ============================================================================
// PLAIN TEXT
// ============================================================================

// TextExporter renders a "[timestamp] speaker: content" transcript.
type TextExporter struct{}

func (TextExporter) FileExtension() string { return ".txt" }
func (TextExporter) MimeType() string      { return "text/plain" }

func (TextExporter) Export(s model.Session) ([]byte, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", s.Name)
	fmt.Fprintf(&b, "Создано: %s\n\n", s.CreatedAt.Format(TimestampLayout))
	for _, m := range s.Messages {
		fmt.Fprintf(&b, "[%s] %s: %s\n",
			m.Timestamp.Format(TimestampLayout), m.Role.DisplayName(), m.Content)
		for _, a := range m.Attachments {
			fmt.Fprintf(&b, "    вложение: %s (%d байт)\n", a.Name, a.Size)
		}
	}
	return []byte(b.String()), nil
}

// ============================================================================
// MARKDOWN
// ============================================================================

// MarkdownExporter renders a Markdown transcript with per-message headers.
type MarkdownExporter struct{}

func (MarkdownExporter) FileExtension() string { return ".md" }
func (MarkdownExporter) MimeType() string      { return "text/markdown" }

func (MarkdownExporter) Export(s model.Session) ([]byte, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", s.Name)
	fmt.Fprintf(&b, "*Создано: %s*\n\n", s.CreatedAt.Format(TimestampLayout))
	for _, m := range s.Messages {
		fmt.Fprintf(&b, "### %s — %s\n\n", m.Role.DisplayName(),
			m.Timestamp.Format(TimestampLayout))
		if m.Model != "" {
			fmt.Fprintf(&b, "*модель: %s*\n\n", m.Model)
		}
		fmt.Fprintf(&b, "%s\n\n", m.Content)
	}
	return []byte(b.String()), nil
}

// ============================================================================
// JSON
// ============================================================================

// JSONExporter renders the session as pretty-printed JSON, the same shape
// the session import accepts inside its document wrapper.
type JSONExporter struct{}

func (JSONExporter) FileExtension() string { return ".json" }
func (JSONExporter) MimeType() string      { return "application/json" }

func (JSONExporter) Export(s model.Session) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// ============================================================================
// FILE HELPER
// ============================================================================

// ToFile renders the session and writes it atomically to path, appending the
// exporter's extension when path lacks one.
func ToFile(e Exporter, s model.Session, path string) (string, error) {
	data, err := e.Export(s)
	if err != nil {
		return "", fmt.Errorf("export session %q: %w", s.Name, err)
	}
	if !strings.HasSuffix(path, e.FileExtension()) {
		path += e.FileExtension()
	}
	if err := util.AtomicWriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write export to %q: %w", path, err)
	}
	return path, nil
}

// ByFormat returns the exporter for a format name.
func ByFormat(format string) (Exporter, error) {
	switch strings.ToLower(format) {
	case "txt", "text":
		return TextExporter{}, nil
	case "md", "markdown":
		return MarkdownExporter{}, nil
	case "json":
		return JSONExporter{}, nil
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}
}
