// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package extract turns user attachments into dispatchable text.
//
// A registry tries extractors in registration order; the first one that
// supports the file handles it. Extraction that yields no text is not an
// error: the attachment is still recorded on the message, it just adds
// nothing to the dispatch payload.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/bogdan-ai/bogdan-tui/internal/model"
)

// ErrTooLarge is returned when a file exceeds an extractor's size guard.
var ErrTooLarge = errors.New("attachment too large")

// Extractor converts one attachment's raw bytes into text.
type Extractor interface {
	// Supports reports whether this extractor handles the file, judged by
	// kind (a coarse category like "text" or "audio") and file name.
	Supports(kind, name string) bool
	// Extract returns the text content. An empty string with a nil error
	// means the file carried no extractable text.
	Extract(ctx context.Context, name string, data []byte) (string, error)
}

// ============================================================================
// PLAIN TEXT
// ============================================================================

// MaxTextSize is the plain-text extractor's size guard.
const MaxTextSize = 1 << 20 // 1 MiB

var textExtensions = map[string]bool{
	".txt": true, ".md": true, ".log": true, ".csv": true,
	".json": true, ".yaml": true, ".yml": true, ".toml": true,
	".go": true, ".py": true, ".js": true, ".ts": true,
}

// TextExtractor passes through UTF-8 text files.
type TextExtractor struct{}

func (TextExtractor) Supports(kind, name string) bool {
	if kind == "text" {
		return true
	}
	return textExtensions[strings.ToLower(filepath.Ext(name))]
}

func (TextExtractor) Extract(_ context.Context, name string, data []byte) (string, error) {
	if len(data) > MaxTextSize {
		return "", fmt.Errorf("%s (%d bytes): %w", name, len(data), ErrTooLarge)
	}
	if !utf8.Valid(data) {
		// Binary masquerading as text yields nothing rather than garbage.
		return "", nil
	}
	return string(data), nil
}

// ============================================================================
// REGISTRY
// ============================================================================

// Registry holds extractors in priority order.
type Registry struct {
	extractors []Extractor
}

// NewRegistry creates a registry with the given extractors, tried in order.
func NewRegistry(extractors ...Extractor) *Registry {
	return &Registry{extractors: extractors}
}

// DefaultRegistry returns the standard chain: plain text only. The audio
// transcriber is appended by the caller when an endpoint is configured.
func DefaultRegistry() *Registry {
	return NewRegistry(TextExtractor{})
}

// Register appends an extractor with the lowest priority.
func (r *Registry) Register(e Extractor) {
	r.extractors = append(r.extractors, e)
}

// ExtractFile reads a file and extracts its text. The returned Attachment
// records the file regardless of whether any text came out.
func (r *Registry) ExtractFile(ctx context.Context, path string) (model.Attachment, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Attachment{}, "", fmt.Errorf("read attachment: %w", err)
	}

	name := filepath.Base(path)
	att := model.Attachment{
		Name: name,
		Kind: kindOf(name),
		Size: int64(len(data)),
	}

	for _, e := range r.extractors {
		if !e.Supports(att.Kind, name) {
			continue
		}
		text, err := e.Extract(ctx, name, data)
		if err != nil {
			return att, "", fmt.Errorf("extract %q: %w", name, err)
		}
		return att, text, nil
	}

	log.Printf("EXTRACT: no extractor for %q (kind %s), recording without text", name, att.Kind)
	return att, "", nil
}

var audioExtensions = map[string]bool{
	".ogg": true, ".mp3": true, ".wav": true, ".m4a": true, ".opus": true,
}

// kindOf maps a file name to a coarse attachment kind.
func kindOf(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	switch {
	case textExtensions[ext]:
		return "text"
	case audioExtensions[ext]:
		return "audio"
	default:
		return "binary"
	}
}
