// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ROUTER: Rule-based intent classification over fixed keyword sets.
package router

import (
	"strings"
)

// LongQueryThreshold is the character length above which a query is treated
// as long-context even when no keyword matches.
const LongQueryThreshold = 500

// ============================================================================
// KEYWORD SETS
// ============================================================================

// The trigger sets mix Russian stems and English terms because the product's
// audience writes queries in both. Matching is substring containment on the
// lowercased query, so a stem like "исправ" catches "исправь" and "исправить".
var (
	codeKeywords = []string{
		"код", "функци", "класс", "компонент", "баг", "ошибка",
		"typescript", "javascript", "python", "react", "исправ",
		"debug", "api", "endpoint",
	}
	creativeKeywords = []string{
		"созда", "напиши", "придума", "идея", "дизайн", "текст",
		"история", "статья", "контент", "пост",
	}
	analyticalKeywords = []string{
		"анализ", "сравни", "объясни", "почему", "как работает",
		"причина", "следстви", "детально", "подробно",
	}
	longContextKeywords = []string{
		"весь", "все файлы", "целиком", "полностью", "проект", "документ",
	}
)

// matchKeywords returns the members of set contained in the lowercased query.
func matchKeywords(lowerQuery string, set []string) []string {
	var matched []string
	for _, kw := range set {
		if strings.Contains(lowerQuery, kw) {
			matched = append(matched, kw)
		}
	}
	return matched
}

// ============================================================================
// CLASSIFICATION
// ============================================================================

// Classify categorizes a free-text query by keyword matching.
//
// Precedence when multiple sets match (deliberate tie-break, first match
// wins — do not reorder):
//  1. code
//  2. creative
//  3. analytical
//  4. long-context (also forced for queries > LongQueryThreshold chars)
//  5. general
//
// An empty query classifies as general with no matched keywords. Classify is
// pure and deterministic.
func Classify(query string) Classification {
	lower := strings.ToLower(query)

	if kws := matchKeywords(lower, codeKeywords); len(kws) > 0 {
		return Classification{Category: CategoryCode, MatchedKeywords: kws}
	}
	if kws := matchKeywords(lower, creativeKeywords); len(kws) > 0 {
		return Classification{Category: CategoryCreative, MatchedKeywords: kws}
	}
	if kws := matchKeywords(lower, analyticalKeywords); len(kws) > 0 {
		return Classification{Category: CategoryAnalytical, MatchedKeywords: kws}
	}
	kws := matchKeywords(lower, longContextKeywords)
	if len(kws) > 0 || len(query) > LongQueryThreshold {
		return Classification{Category: CategoryLongContext, MatchedKeywords: kws}
	}

	return Classification{Category: CategoryGeneral}
}
