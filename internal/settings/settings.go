// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package settings holds the user-tunable generation parameters sent with
// every dispatch.
package settings

import (
	"fmt"

	"golang.org/x/text/language"
)

// Settings is the generation parameter set. The zero value is not usable;
// always start from Default().
type Settings struct {
	Temperature       float64 `json:"temperature"`
	MaxTokens         int     `json:"max_tokens"`
	SystemPrompt      string  `json:"system_prompt"`
	ContextLength     int     `json:"context_length"`
	AutoSave          bool    `json:"auto_save"`
	Streaming         bool    `json:"streaming"`
	Language          string  `json:"language"`
	TopP              float64 `json:"top_p"`
	TopK              int     `json:"top_k"`
	FrequencyPenalty  float64 `json:"frequency_penalty"`
	PresencePenalty   float64 `json:"presence_penalty"`
	RepetitionPenalty float64 `json:"repetition_penalty"`
}

// Default returns the first-run settings.
func Default() Settings {
	return Settings{
		Temperature:       0.7,
		MaxTokens:         2048,
		SystemPrompt:      "",
		ContextLength:     10,
		AutoSave:          true,
		Streaming:         false,
		Language:          "ru",
		TopP:              1.0,
		TopK:              40,
		FrequencyPenalty:  0,
		PresencePenalty:   0,
		RepetitionPenalty: 1.0,
	}
}

// Validate checks ranges and returns a descriptive error for the first
// violation found.
func (s Settings) Validate() error {
	if s.Temperature < 0 || s.Temperature > 2 {
		return fmt.Errorf("temperature %.2f out of range [0, 2]", s.Temperature)
	}
	if s.MaxTokens < 1 {
		return fmt.Errorf("max_tokens must be positive, got %d", s.MaxTokens)
	}
	if s.ContextLength < 1 {
		return fmt.Errorf("context_length must be positive, got %d", s.ContextLength)
	}
	if s.TopP <= 0 || s.TopP > 1 {
		return fmt.Errorf("top_p %.2f out of range (0, 1]", s.TopP)
	}
	if s.TopK < 0 {
		return fmt.Errorf("top_k must not be negative, got %d", s.TopK)
	}
	return nil
}

// Normalize repairs a settings object loaded from disk: invalid language
// tags fall back to Russian, and out-of-range numeric fields snap back to
// their defaults. Used instead of Validate on the load path, where the
// contract is "never crash on bad data".
func (s Settings) Normalize() Settings {
	def := Default()

	if _, err := language.Parse(s.Language); err != nil {
		s.Language = def.Language
	}
	if s.Temperature < 0 || s.Temperature > 2 {
		s.Temperature = def.Temperature
	}
	if s.MaxTokens < 1 {
		s.MaxTokens = def.MaxTokens
	}
	if s.ContextLength < 1 {
		s.ContextLength = def.ContextLength
	}
	if s.TopP <= 0 || s.TopP > 1 {
		s.TopP = def.TopP
	}
	if s.TopK < 0 {
		s.TopK = def.TopK
	}
	if s.RepetitionPenalty <= 0 {
		s.RepetitionPenalty = def.RepetitionPenalty
	}
	return s
}
