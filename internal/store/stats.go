// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

// Stats counts answered messages per provider. The provider credited is the
// one that actually produced the response, which differs from the requested
// provider when the proxy fell back.
type Stats struct {
	Messages  map[string]int `json:"messages"`
	Fallbacks int            `json:"fallbacks"`
}

// NewStats returns zeroed statistics.
func NewStats() Stats {
	return Stats{Messages: make(map[string]int)}
}

// Record credits one answered message to a provider.
func (s *Stats) Record(providerName string, fallback bool) {
	if s.Messages == nil {
		s.Messages = make(map[string]int)
	}
	s.Messages[providerName]++
	if fallback {
		s.Fallbacks++
	}
}

// Total returns the number of answered messages across all providers.
func (s Stats) Total() int {
	total := 0
	for _, n := range s.Messages {
		total += n
	}
	return total
}

// Reset zeroes all counters.
func (s *Stats) Reset() {
	s.Messages = make(map[string]int)
	s.Fallbacks = 0
}
