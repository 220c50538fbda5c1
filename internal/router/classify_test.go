// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package router

import (
	"strings"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected Category
	}{
		// Code queries
		{"russian code fix", "исправь баг в этой функции", CategoryCode},
		{"russian error", "почини ошибку в коде", CategoryCode},
		{"english debug", "help me debug this react component", CategoryCode},
		{"api endpoint", "add a new api endpoint", CategoryCode},
		{"typescript", "convert this to typescript", CategoryCode},

		// Creative queries
		{"russian write", "напиши стихотворение о весне", CategoryCreative},
		{"russian idea", "придумай идею для стартапа", CategoryCreative},
		{"russian article", "нужна статья про путешествия", CategoryCreative},
		{"russian post", "сделай пост для блога", CategoryCreative},

		// Analytical queries
		{"russian explain", "объясни квантовую механику", CategoryAnalytical},
		{"russian compare", "сравни два подхода", CategoryAnalytical},
		{"russian why", "почему небо голубое", CategoryAnalytical},
		{"how it works", "расскажи, как работает двигатель", CategoryAnalytical},

		// Long-context queries
		{"russian whole project", "проанализируй весь проект", CategoryLongContext},
		{"russian document", "прочитай документ целиком", CategoryLongContext},

		// General queries
		{"greeting", "привет", CategoryGeneral},
		{"small talk", "как дела?", CategoryGeneral},
		{"empty", "", CategoryGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Classify(tt.query)
			if result.Category != tt.expected {
				t.Errorf("Classify(%q) = %s, expected %s (matched %v)",
					tt.query, result.Category, tt.expected, result.MatchedKeywords)
			}
		})
	}
}

func TestClassifyPrecedence(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected Category
	}{
		// "напиши" is creative, "функци" is code: code wins.
		{"code beats creative", "напиши функцию сортировки", CategoryCode},
		// "объясни" is analytical, "код" is code: code wins.
		{"code beats analytical", "объясни этот код", CategoryCode},
		// "придума" is creative, "анализ" is analytical: creative wins.
		{"creative beats analytical", "придумай план анализа", CategoryCreative},
		// "объясни" is analytical, "весь" is long-context: analytical wins.
		{"analytical beats long-context", "объясни весь алгоритм", CategoryAnalytical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Classify(tt.query)
			if result.Category != tt.expected {
				t.Errorf("Classify(%q) = %s, expected %s",
					tt.query, result.Category, tt.expected)
			}
		})
	}
}

func TestClassifyLongQueryThreshold(t *testing.T) {
	// A keyword-free query over the threshold is forced to long-context.
	long := strings.Repeat("а", LongQueryThreshold+1)
	result := Classify(long)
	if result.Category != CategoryLongContext {
		t.Errorf("long query classified as %s, expected %s",
			result.Category, CategoryLongContext)
	}
	if len(result.MatchedKeywords) != 0 {
		t.Errorf("expected no matched keywords, got %v", result.MatchedKeywords)
	}

	// Exactly at the threshold stays general.
	atLimit := strings.Repeat("а", LongQueryThreshold)
	result = Classify(atLimit)
	if result.Category != CategoryGeneral {
		t.Errorf("threshold-length query classified as %s, expected %s",
			result.Category, CategoryGeneral)
	}

	// Keyword match still beats length.
	longCode := "исправь баг " + strings.Repeat("а", LongQueryThreshold)
	result = Classify(longCode)
	if result.Category != CategoryCode {
		t.Errorf("long code query classified as %s, expected %s",
			result.Category, CategoryCode)
	}
}

func TestClassifyCaseInsensitive(t *testing.T) {
	lower := Classify("исправь баг в функции")
	upper := Classify("ИСПРАВЬ БАГ В ФУНКЦИИ")
	if lower.Category != upper.Category {
		t.Errorf("case changed the category: %s vs %s", lower.Category, upper.Category)
	}
}

func TestClassifyDeterministic(t *testing.T) {
	query := "напиши функцию для анализа всего проекта"
	first := Classify(query)
	for i := 0; i < 10; i++ {
		got := Classify(query)
		if got.Category != first.Category {
			t.Fatalf("run %d: category %s differs from first run %s",
				i, got.Category, first.Category)
		}
		if len(got.MatchedKeywords) != len(first.MatchedKeywords) {
			t.Fatalf("run %d: matched keyword count changed", i)
		}
	}
}

func TestClassifyMatchedKeywords(t *testing.T) {
	result := Classify("исправь баг в коде")
	if result.Category != CategoryCode {
		t.Fatalf("expected code category, got %s", result.Category)
	}
	if len(result.MatchedKeywords) == 0 {
		t.Error("expected matched keywords to be reported")
	}
	for _, kw := range result.MatchedKeywords {
		if !strings.Contains("исправь баг в коде", kw) {
			t.Errorf("reported keyword %q not present in query", kw)
		}
	}
}

func TestCategoryString(t *testing.T) {
	tests := []struct {
		category Category
		expected string
	}{
		{CategoryGeneral, "general"},
		{CategoryCode, "code"},
		{CategoryCreative, "creative"},
		{CategoryAnalytical, "analytical"},
		{CategoryLongContext, "long-context"},
		{Category(99), "Category(99)"},
	}

	for _, tt := range tests {
		if got := tt.category.String(); got != tt.expected {
			t.Errorf("Category(%d).String() = %q, expected %q",
				tt.category, got, tt.expected)
		}
	}
}

func BenchmarkClassify(b *testing.B) {
	queries := []string{
		"исправь баг в этой функции",
		"напиши статью про путешествия",
		"объясни, как работает двигатель",
		"проанализируй весь проект",
		"привет, как дела?",
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Classify(queries[i%len(queries)])
	}
}
