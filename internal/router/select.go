// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ROUTER: Weighted capability scoring for automatic provider selection.
package router

import (
	"log"

	"github.com/bogdan-ai/bogdan-tui/internal/provider"
)

// classifyFunc lets tests observe whether classification runs.
type classifyFunc func(string) Classification

// SelectBestModel picks the best provider for a query from the enabled set.
//
// Short-circuits, checked before any classification work:
//   - empty enabled set: returns the default provider with a "no providers
//     available" reason (callers treat this as a configuration error);
//   - exactly one enabled provider: returns it immediately with an "only
//     available provider" reason. The classifier is NOT invoked in this case;
//     this is a contract, not just an optimization.
//
// Otherwise the query is classified and each enabled provider scored with the
// category's weight vector over its capability profile. The strictly highest
// score wins; ties break toward the first provider in the enabled list.
//
// SelectBestModel is pure and deterministic for identical inputs.
func SelectBestModel(query string, enabled []provider.Provider) Selection {
	return selectBestModel(query, enabled, Classify)
}

// selectBestModel is the injectable-classifier variant used by tests to
// assert the single-provider short-circuit performs no classification.
func selectBestModel(query string, enabled []provider.Provider, classify classifyFunc) Selection {
	if len(enabled) == 0 {
		return Selection{Provider: provider.Default(), Reason: "no providers available"}
	}
	if len(enabled) == 1 {
		return Selection{Provider: enabled[0], Reason: "only available provider"}
	}

	analysis := classify(query)
	w := analysis.Category.weights()

	best := enabled[0]
	bestScore := w.score(provider.CapabilitiesOf(enabled[0]))
	for _, p := range enabled[1:] {
		if s := w.score(provider.CapabilitiesOf(p)); s > bestScore {
			best = p
			bestScore = s
		}
	}

	log.Printf("SELECT: category=%s provider=%s score=%.2f keywords=%d",
		analysis.Category, best, bestScore, len(analysis.MatchedKeywords))

	return Selection{Provider: best, Reason: analysis.Category.Reason()}
}
