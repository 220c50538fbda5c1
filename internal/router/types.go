// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package router provides heuristic query classification and provider
// selection for chat dispatch.
//
// A query is classified into one of five intent categories by keyword
// matching, then each usable provider is scored with a category-specific
// weighted sum over its capability profile. The highest score wins.
package router

import (
	"fmt"

	"github.com/bogdan-ai/bogdan-tui/internal/provider"
)

// ============================================================================
// CATEGORY TYPE
// ============================================================================

// Category is the classified intent of a query.
type Category int

const (
	// CategoryGeneral is the default when no keyword set matches.
	CategoryGeneral Category = iota
	// CategoryCode covers programming and debugging queries.
	CategoryCode
	// CategoryCreative covers writing and idea-generation queries.
	CategoryCreative
	// CategoryAnalytical covers explanation and comparison queries.
	CategoryAnalytical
	// CategoryLongContext covers whole-document/whole-project queries,
	// or any query longer than LongQueryThreshold characters.
	CategoryLongContext
)

// String returns the human-readable name of the category.
func (c Category) String() string {
	switch c {
	case CategoryGeneral:
		return "general"
	case CategoryCode:
		return "code"
	case CategoryCreative:
		return "creative"
	case CategoryAnalytical:
		return "analytical"
	case CategoryLongContext:
		return "long-context"
	default:
		return fmt.Sprintf("Category(%d)", c)
	}
}

// Reason returns the human-readable rationale used when a provider is picked
// for this category.
func (c Category) Reason() string {
	switch c {
	case CategoryCode:
		return "code and technical precision"
	case CategoryCreative:
		return "creativity and idea generation"
	case CategoryAnalytical:
		return "detailed analysis"
	case CategoryLongContext:
		return "large context window"
	default:
		return "general-purpose balance"
	}
}

// weights returns the per-capability weight vector for the category.
// Each vector sums to 1.0 across its three relevant dimensions.
func (c Category) weights() weights {
	switch c {
	case CategoryCode:
		return weights{codeQuality: 0.5, accuracy: 0.3, speed: 0.2}
	case CategoryCreative:
		return weights{creativity: 0.6, speed: 0.3, accuracy: 0.1}
	case CategoryAnalytical:
		return weights{accuracy: 0.6, contextSize: 0.3, codeQuality: 0.1}
	case CategoryLongContext:
		return weights{contextSize: 0.7, accuracy: 0.2, speed: 0.1}
	default:
		return weights{speed: 0.4, accuracy: 0.3, creativity: 0.3}
	}
}

// weights holds one scoring weight per capability dimension.
type weights struct {
	speed       float64
	accuracy    float64
	creativity  float64
	codeQuality float64
	contextSize float64
}

// score computes the weighted sum over a capability profile.
func (w weights) score(cap provider.Capabilities) float64 {
	return float64(cap.Speed)*w.speed +
		float64(cap.Accuracy)*w.accuracy +
		float64(cap.Creativity)*w.creativity +
		float64(cap.CodeQuality)*w.codeQuality +
		float64(cap.ContextSize)*w.contextSize
}

// ============================================================================
// RESULT TYPES
// ============================================================================

// Classification is the ephemeral result of classifying one query.
// MatchedKeywords lists the trigger substrings found, for diagnostics.
type Classification struct {
	Category        Category `json:"category"`
	MatchedKeywords []string `json:"matched_keywords,omitempty"`
}

// Selection is the result of picking a provider for a query.
type Selection struct {
	Provider provider.Provider `json:"provider"`
	Reason   string            `json:"reason"`
}

// String returns a human-readable summary of the selection.
func (s Selection) String() string {
	return fmt.Sprintf("%s (%s)", s.Provider, s.Reason)
}
