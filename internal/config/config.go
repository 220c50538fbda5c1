// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads application configuration from disk with environment
// overrides.
//
// Lookup order: ~/.bogdan/config.toml, then ~/.bogdan/config.json, then
// built-in defaults. BOGDAN_* environment variables override file values.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultEndpoint is the hosted multi-provider chat proxy.
const DefaultEndpoint = "https://api.bogdan-ai.ru/v1/chat"

// Config is the application-level configuration. Provider credentials live
// in the state directory, not here; this file only points at infrastructure.
type Config struct {
	// Endpoint is the chat proxy URL.
	Endpoint string `toml:"endpoint" json:"endpoint"`
	// TimeoutSeconds is the per-dispatch deadline.
	TimeoutSeconds int `toml:"timeout_seconds" json:"timeout_seconds"`
	// StateDir holds the JSON state files. Empty means ~/.bogdan/state.
	StateDir string `toml:"state_dir" json:"state_dir"`
	// TranscriberEndpoint enables audio attachment transcription when set.
	TranscriberEndpoint string `toml:"transcriber_endpoint" json:"transcriber_endpoint"`
	// HistoryFile is the REPL input history location. Empty means
	// ~/.bogdan/history.
	HistoryFile string `toml:"history_file" json:"history_file"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Endpoint:       DefaultEndpoint,
		TimeoutSeconds: 25,
	}
}

// Dir returns the configuration directory (~/.bogdan).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".bogdan"), nil
}

// Load reads configuration from the default locations.
func Load() (Config, error) {
	dir, err := Dir()
	if err != nil {
		return Default(), err
	}
	return LoadFrom(dir)
}

// LoadFrom reads configuration from dir, trying TOML then JSON, and applies
// environment overrides. A missing file is not an error.
func LoadFrom(dir string) (Config, error) {
	cfg := Default()

	tomlPath := filepath.Join(dir, "config.toml")
	jsonPath := filepath.Join(dir, "config.json")
	switch {
	case fileExists(tomlPath):
		if _, err := toml.DecodeFile(tomlPath, &cfg); err != nil {
			return Default(), fmt.Errorf("parse %s: %w", tomlPath, err)
		}
	case fileExists(jsonPath):
		data, err := os.ReadFile(jsonPath)
		if err != nil {
			return Default(), fmt.Errorf("read %s: %w", jsonPath, err)
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Default(), fmt.Errorf("parse %s: %w", jsonPath, err)
		}
	}

	applyEnv(&cfg)
	fillDefaults(&cfg, dir)

	if err := cfg.Validate(); err != nil {
		return Default(), err
	}
	return cfg, nil
}

// applyEnv overlays BOGDAN_* environment variables.
func applyEnv(cfg *Config) {
	if v := os.Getenv("BOGDAN_ENDPOINT"); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv("BOGDAN_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.TimeoutSeconds = n
		}
	}
	if v := os.Getenv("BOGDAN_STATE_DIR"); v != "" {
		cfg.StateDir = v
	}
	if v := os.Getenv("BOGDAN_STT_ENDPOINT"); v != "" {
		cfg.TranscriberEndpoint = v
	}
}

func fillDefaults(cfg *Config, dir string) {
	if cfg.StateDir == "" {
		cfg.StateDir = filepath.Join(dir, "state")
	}
	if cfg.HistoryFile == "" {
		cfg.HistoryFile = filepath.Join(dir, "history")
	}
}

// Validate rejects configurations that cannot work.
func (c Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint must not be empty")
	}
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout_seconds must be positive, got %d", c.TimeoutSeconds)
	}
	return nil
}

// Timeout returns the dispatch deadline as a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
