// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package provider defines the closed set of language-model providers the
// chat can dispatch to, along with their compiled-in capability profiles and
// per-provider runtime configuration (credential + enabled flag).
//
// Adding a provider means adding one enum case and one capability table row;
// selection logic never changes.
package provider

import "fmt"

// ============================================================================
// PROVIDER TYPE
// ============================================================================

// Provider identifies one configured backend language-model service.
type Provider string

const (
	Gemini   Provider = "gemini"
	Llama    Provider = "llama"
	GigaChat Provider = "gigachat"
	Phi      Provider = "phi"
	Qwen     Provider = "qwen"
	Mistral  Provider = "mistral"
)

// All lists every known provider in a stable order.
// The order matters: selection ties break toward earlier entries.
var All = []Provider{Gemini, Llama, GigaChat, Phi, Qwen, Mistral}

// Default returns the provider used when nothing else is available.
func Default() Provider {
	return Gemini
}

// String returns the provider identifier.
func (p Provider) String() string {
	return string(p)
}

// DisplayName returns a human-readable name for the provider.
func (p Provider) DisplayName() string {
	switch p {
	case Gemini:
		return "Gemini 2.0 Flash"
	case Llama:
		return "Llama 3.3 70B"
	case GigaChat:
		return "GigaChat"
	case Phi:
		return "Phi"
	case Qwen:
		return "Qwen"
	case Mistral:
		return "Mistral"
	default:
		return string(p)
	}
}

// IsValid returns true if the provider is one of the known set.
func (p Provider) IsValid() bool {
	_, ok := capabilities[p]
	return ok
}

// Parse converts an identifier string to a Provider.
func Parse(s string) (Provider, error) {
	p := Provider(s)
	if !p.IsValid() {
		return "", fmt.Errorf("unknown provider %q", s)
	}
	return p, nil
}

// ============================================================================
// CAPABILITY TABLE
// ============================================================================

// Capabilities holds the five fixed scores describing a provider's strengths.
// Scores are on a 0-10 scale and are consulted only by the heuristic selector.
type Capabilities struct {
	Speed       int `json:"speed"`
	Accuracy    int `json:"accuracy"`
	Creativity  int `json:"creativity"`
	CodeQuality int `json:"code_quality"`
	ContextSize int `json:"context_size"`
}

// capabilities is the compiled-in capability table.
var capabilities = map[Provider]Capabilities{
	Gemini:   {Speed: 9, Accuracy: 7, Creativity: 6, CodeQuality: 8, ContextSize: 8},
	Llama:    {Speed: 6, Accuracy: 9, Creativity: 7, CodeQuality: 9, ContextSize: 9},
	GigaChat: {Speed: 7, Accuracy: 7, Creativity: 9, CodeQuality: 6, ContextSize: 7},
	Phi:      {Speed: 8, Accuracy: 6, Creativity: 5, CodeQuality: 7, ContextSize: 6},
	Qwen:     {Speed: 8, Accuracy: 8, Creativity: 7, CodeQuality: 8, ContextSize: 8},
	Mistral:  {Speed: 9, Accuracy: 7, Creativity: 6, CodeQuality: 7, ContextSize: 7},
}

// CapabilitiesOf returns the capability profile for a provider.
// Unknown providers return the zero profile.
func CapabilitiesOf(p Provider) Capabilities {
	return capabilities[p]
}

// ============================================================================
// RUNTIME CONFIGURATION
// ============================================================================

// Config holds the mutable per-provider state: an opaque credential and an
// enabled flag. A provider with an empty credential or Enabled=false must
// never be selected or dispatched to.
type Config struct {
	Key     string `json:"key"`
	Enabled bool   `json:"enabled"`
}

// Usable reports whether the provider may receive traffic.
func (c Config) Usable() bool {
	return c.Enabled && c.Key != ""
}

// ConfigMap maps each provider to its runtime configuration, plus the active
// provider selector ("auto" or a pinned provider identifier).
type ConfigMap struct {
	Providers map[Provider]Config `json:"providers"`
	// Active is either "auto" or a provider identifier pinned by the user.
	Active string `json:"active"`
}

// ActiveAuto is the ConfigMap.Active value for automatic selection.
const ActiveAuto = "auto"

// DefaultConfigMap returns the first-run configuration: every provider known
// but disabled with an empty credential, automatic selection active.
func DefaultConfigMap() ConfigMap {
	m := ConfigMap{
		Providers: make(map[Provider]Config, len(All)),
		Active:    ActiveAuto,
	}
	for _, p := range All {
		m.Providers[p] = Config{}
	}
	return m
}

// Usable returns the providers that are enabled and credentialed, in the
// stable order of All.
func (m ConfigMap) Usable() []Provider {
	var out []Provider
	for _, p := range All {
		if m.Providers[p].Usable() {
			out = append(out, p)
		}
	}
	return out
}

// Set replaces the configuration for one provider.
func (m *ConfigMap) Set(p Provider, cfg Config) {
	if m.Providers == nil {
		m.Providers = make(map[Provider]Config, len(All))
	}
	m.Providers[p] = cfg
}

// IsAuto reports whether automatic selection is active.
func (m ConfigMap) IsAuto() bool {
	return m.Active == "" || m.Active == ActiveAuto
}

// Pinned returns the pinned provider when not in automatic mode.
func (m ConfigMap) Pinned() (Provider, bool) {
	if m.IsAuto() {
		return "", false
	}
	p := Provider(m.Active)
	if !p.IsValid() {
		return "", false
	}
	return p, true
}
