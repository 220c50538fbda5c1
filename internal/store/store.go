// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store persists application state as a small set of fixed-key JSON
// files in a state directory.
//
// Each key maps to one pretty-printed file so users can inspect and edit
// state by hand. Every mutation is an atomic write; every load falls back to
// documented defaults when the file is absent or unparseable. Load never
// fails the caller over bad data: losing state beats crashing on startup.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/bogdan-ai/bogdan-tui/internal/model"
	"github.com/bogdan-ai/bogdan-tui/internal/provider"
	"github.com/bogdan-ai/bogdan-tui/internal/settings"
	"github.com/bogdan-ai/bogdan-tui/internal/util"
)

// ============================================================================
// KEYS
// ============================================================================

// Fixed storage keys. Each key becomes "<key>.json" in the state directory.
const (
	KeyHistory  = "chat-history"
	KeyConfig   = "ai-config"
	KeySettings = "ai-settings"
	KeyStats    = "ai-stats"
	KeySessions = "chat-sessions"
)

// ============================================================================
// ERRORS
// ============================================================================

// ErrSaveFailed wraps any failure to persist a key.
var ErrSaveFailed = errors.New("save failed")

// StoreError carries the key and operation that failed.
type StoreError struct {
	Key string
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Is supports errors.Is(err, ErrSaveFailed).
func (e *StoreError) Is(target error) bool {
	return target == ErrSaveFailed && e.Op == "save"
}

// ============================================================================
// STORE
// ============================================================================

// Store reads and writes state files under a single directory.
type Store struct {
	dir string
}

// New creates a Store rooted at dir, creating the directory if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the state directory path.
func (s *Store) Dir() string { return s.dir }

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// save marshals v with indentation and writes it atomically.
func (s *Store) save(key string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return &StoreError{Key: key, Op: "save", Err: err}
	}
	if err := util.AtomicWriteFile(s.path(key), data, 0o644); err != nil {
		return &StoreError{Key: key, Op: "save", Err: err}
	}
	return nil
}

// load unmarshals the key's file into v. Returns false when the file is
// absent or corrupt, meaning the caller should use defaults. Corrupt files
// are logged but never propagated as errors.
func (s *Store) load(key string, v any) bool {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("STORE: read %q failed: %v, using defaults", key, err)
		}
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		log.Printf("STORE: parse %q failed: %v, using defaults", key, err)
		return false
	}
	return true
}

// ============================================================================
// TYPED ACCESSORS
// ============================================================================

// LoadHistory returns the persisted conversation, or a fresh greeting-seeded
// one. Message timestamps rehydrate into time.Time via the standard JSON
// encoding.
func (s *Store) LoadHistory() []model.Message {
	var messages []model.Message
	if !s.load(KeyHistory, &messages) || len(messages) == 0 {
		return []model.Message{model.NewGreetingMessage()}
	}
	return messages
}

// SaveHistory persists the conversation.
func (s *Store) SaveHistory(messages []model.Message) error {
	return s.save(KeyHistory, messages)
}

// LoadConfig returns the persisted provider configuration, or the first-run
// default where every provider is known but disabled.
func (s *Store) LoadConfig() provider.ConfigMap {
	var cfg provider.ConfigMap
	if !s.load(KeyConfig, &cfg) || cfg.Providers == nil {
		return provider.DefaultConfigMap()
	}
	// Providers added since the file was written still need entries.
	for _, p := range provider.All {
		if _, ok := cfg.Providers[p]; !ok {
			cfg.Set(p, provider.Config{})
		}
	}
	return cfg
}

// SaveConfig persists the provider configuration.
func (s *Store) SaveConfig(cfg provider.ConfigMap) error {
	return s.save(KeyConfig, cfg)
}

// LoadSettings returns the persisted generation settings, normalized, or the
// defaults.
func (s *Store) LoadSettings() settings.Settings {
	var st settings.Settings
	if !s.load(KeySettings, &st) {
		return settings.Default()
	}
	return st.Normalize()
}

// SaveSettings persists the generation settings.
func (s *Store) SaveSettings(st settings.Settings) error {
	return s.save(KeySettings, st)
}

// LoadStats returns the persisted usage statistics, or zero counters.
func (s *Store) LoadStats() Stats {
	var st Stats
	if !s.load(KeyStats, &st) || st.Messages == nil {
		return NewStats()
	}
	return st
}

// SaveStats persists the usage statistics.
func (s *Store) SaveStats(st Stats) error {
	return s.save(KeyStats, st)
}

// LoadSessions returns the persisted session list. An empty list is a valid
// state: the session manager creates a default session on demand.
func (s *Store) LoadSessions() []model.Session {
	var sessions []model.Session
	if !s.load(KeySessions, &sessions) {
		return nil
	}
	return sessions
}

// SaveSessions persists the session list.
func (s *Store) SaveSessions(sessions []model.Session) error {
	return s.save(KeySessions, sessions)
}
