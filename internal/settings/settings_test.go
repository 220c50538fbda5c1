// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package settings

import "testing"

func TestDefault(t *testing.T) {
	s := Default()

	if s.Temperature != 0.7 {
		t.Errorf("temperature = %.2f, expected 0.7", s.Temperature)
	}
	if s.MaxTokens != 2048 {
		t.Errorf("max_tokens = %d, expected 2048", s.MaxTokens)
	}
	if s.ContextLength != 10 {
		t.Errorf("context_length = %d, expected 10", s.ContextLength)
	}
	if !s.AutoSave {
		t.Error("auto_save should default to true")
	}
	if s.Streaming {
		t.Error("streaming should default to false")
	}
	if s.Language != "ru" {
		t.Errorf("language = %q, expected ru", s.Language)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("defaults failed validation: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr bool
	}{
		{"defaults", func(s *Settings) {}, false},
		{"temperature too high", func(s *Settings) { s.Temperature = 2.5 }, true},
		{"temperature negative", func(s *Settings) { s.Temperature = -0.1 }, true},
		{"zero max_tokens", func(s *Settings) { s.MaxTokens = 0 }, true},
		{"zero context_length", func(s *Settings) { s.ContextLength = 0 }, true},
		{"top_p zero", func(s *Settings) { s.TopP = 0 }, true},
		{"negative top_k", func(s *Settings) { s.TopK = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	s := Default()
	s.Language = "not-a-language-###"
	s.Temperature = 99
	s.MaxTokens = -5
	s.ContextLength = 0

	got := s.Normalize()

	if got.Language != "ru" {
		t.Errorf("language = %q, expected fallback ru", got.Language)
	}
	if got.Temperature != 0.7 {
		t.Errorf("temperature = %.2f, expected default 0.7", got.Temperature)
	}
	if got.MaxTokens != 2048 {
		t.Errorf("max_tokens = %d, expected default 2048", got.MaxTokens)
	}
	if got.ContextLength != 10 {
		t.Errorf("context_length = %d, expected default 10", got.ContextLength)
	}
}

func TestNormalizeKeepsValid(t *testing.T) {
	s := Default()
	s.Language = "en"
	s.Temperature = 1.2
	s.ContextLength = 25

	got := s.Normalize()

	if got.Language != "en" {
		t.Errorf("valid language tag was rewritten to %q", got.Language)
	}
	if got.Temperature != 1.2 {
		t.Errorf("valid temperature was rewritten to %.2f", got.Temperature)
	}
	if got.ContextLength != 25 {
		t.Errorf("valid context_length was rewritten to %d", got.ContextLength)
	}
}
