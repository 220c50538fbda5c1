// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		input    string
		expected Provider
		wantErr  bool
	}{
		{"gemini", Gemini, false},
		{"llama", Llama, false},
		{"gigachat", GigaChat, false},
		{"phi", Phi, false},
		{"qwen", Qwen, false},
		{"mistral", Mistral, false},
		{"gpt4", "", true},
		{"", "", true},
		{"GEMINI", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			p, err := Parse(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Parse(%q) expected error, got %s", tt.input, p)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.input, err)
			}
			if p != tt.expected {
				t.Errorf("Parse(%q) = %s, expected %s", tt.input, p, tt.expected)
			}
		})
	}
}

func TestCapabilityTableComplete(t *testing.T) {
	for _, p := range All {
		caps := CapabilitiesOf(p)
		if caps == (Capabilities{}) {
			t.Errorf("provider %s has no capability profile", p)
		}
		for name, v := range map[string]int{
			"speed":        caps.Speed,
			"accuracy":     caps.Accuracy,
			"creativity":   caps.Creativity,
			"code_quality": caps.CodeQuality,
			"context_size": caps.ContextSize,
		} {
			if v < 0 || v > 10 {
				t.Errorf("provider %s: %s score %d out of range", p, name, v)
			}
		}
	}
}

func TestConfigUsable(t *testing.T) {
	tests := []struct {
		name   string
		cfg    Config
		usable bool
	}{
		{"enabled with key", Config{Key: "sk-abc", Enabled: true}, true},
		{"enabled without key", Config{Enabled: true}, false},
		{"disabled with key", Config{Key: "sk-abc"}, false},
		{"zero value", Config{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.Usable(); got != tt.usable {
				t.Errorf("Usable() = %v, expected %v", got, tt.usable)
			}
		})
	}
}

func TestDefaultConfigMap(t *testing.T) {
	m := DefaultConfigMap()

	if !m.IsAuto() {
		t.Error("default config should start in automatic mode")
	}
	if len(m.Providers) != len(All) {
		t.Errorf("expected %d providers, got %d", len(All), len(m.Providers))
	}
	if usable := m.Usable(); len(usable) != 0 {
		t.Errorf("fresh config should have no usable providers, got %v", usable)
	}
}

func TestConfigMapUsableOrder(t *testing.T) {
	m := DefaultConfigMap()
	m.Set(Mistral, Config{Key: "k", Enabled: true})
	m.Set(Gemini, Config{Key: "k", Enabled: true})
	m.Set(Phi, Config{Key: "k", Enabled: true})

	usable := m.Usable()
	expected := []Provider{Gemini, Phi, Mistral}
	if len(usable) != len(expected) {
		t.Fatalf("expected %d usable providers, got %d", len(expected), len(usable))
	}
	for i, p := range expected {
		if usable[i] != p {
			t.Errorf("position %d: got %s, expected %s", i, usable[i], p)
		}
	}
}

func TestConfigMapPinned(t *testing.T) {
	m := DefaultConfigMap()

	if _, ok := m.Pinned(); ok {
		t.Error("auto mode should report no pinned provider")
	}

	m.Active = "llama"
	p, ok := m.Pinned()
	if !ok || p != Llama {
		t.Errorf("Pinned() = %s, %v; expected llama, true", p, ok)
	}

	m.Active = "nonsense"
	if _, ok := m.Pinned(); ok {
		t.Error("invalid pin should report no pinned provider")
	}

	m.Active = ""
	if !m.IsAuto() {
		t.Error("empty Active should mean automatic mode")
	}
}
