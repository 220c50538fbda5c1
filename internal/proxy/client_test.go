// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bogdan-ai/bogdan-tui/internal/model"
	"github.com/bogdan-ai/bogdan-tui/internal/provider"
	"github.com/bogdan-ai/bogdan-tui/internal/settings"
)

func testConfig() provider.ConfigMap {
	cfg := provider.DefaultConfigMap()
	cfg.Set(provider.Gemini, provider.Config{Key: "gk", Enabled: true})
	cfg.Set(provider.Llama, provider.Config{Key: "lk", Enabled: true})
	return cfg
}

func testRequest() ChatRequest {
	history := []model.Message{
		model.NewUserMessage("привет"),
		model.NewAssistantMessage("Здравствуйте!", "gemini"),
	}
	return NewChatRequest("исправь баг", testConfig(), history, settings.Default(), "")
}

func TestSendSuccess(t *testing.T) {
	var received ChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(ChatResponse{Response: "Готово.", Model: "llama"})
	}))
	defer server.Close()

	c := NewClient(server.URL, 0)
	resp, err := c.Send(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if resp.Response != "Готово." || resp.Model != "llama" {
		t.Errorf("unexpected response %+v", resp)
	}

	if received.Message != "исправь баг" {
		t.Errorf("message not forwarded: %q", received.Message)
	}
	if len(received.Models) != len(provider.All) {
		t.Errorf("expected %d model entries, got %d", len(provider.All), len(received.Models))
	}
	if mc := received.Models["gemini"]; mc.Key != "gk" || !mc.Enabled {
		t.Errorf("gemini config not forwarded: %+v", mc)
	}
	if mc := received.Models["qwen"]; mc.Enabled {
		t.Error("disabled provider forwarded as enabled")
	}
	if len(received.History) != 2 || received.History[0].Role != "user" {
		t.Errorf("history not forwarded: %v", received.History)
	}
	if received.Settings.Temperature != 0.7 {
		t.Errorf("settings not forwarded: %+v", received.Settings)
	}
}

func TestSendPreferredModel(t *testing.T) {
	var received ChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&received)
		json.NewEncoder(w).Encode(ChatResponse{Response: "ok", Model: "qwen", FallbackUsed: true})
	}))
	defer server.Close()

	req := NewChatRequest("вопрос", testConfig(), nil, settings.Default(), provider.Llama)

	c := NewClient(server.URL, 0)
	resp, err := c.Send(context.Background(), req)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if received.PreferredModel != "llama" {
		t.Errorf("preferred model not forwarded: %q", received.PreferredModel)
	}
	if !resp.FallbackUsed {
		t.Error("fallback flag lost")
	}
}

func TestSendAuthErrorNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "bad credentials"})
	}))
	defer server.Close()

	c := NewClient(server.URL, 0)
	_, err := c.Send(context.Background(), testRequest())
	if !errors.Is(err, ErrAuthFailed) {
		t.Fatalf("expected ErrAuthFailed, got %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("auth failure retried %d times, expected 1 call", n)
	}

	var perr *Error
	if !errors.As(err, &perr) {
		t.Fatal("expected typed *Error")
	}
	if perr.Status != 401 || perr.Message != "bad credentials" {
		t.Errorf("envelope not preserved: %+v", perr)
	}
}

// The endpoint reports per-provider failures as a details array; it must
// survive into the typed error and its rendering.
func TestSendErrorDetailsArray(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": "all providers failed", "details": [
			{"model": "gemini", "error": "invalid key"},
			{"model": "llama", "error": "quota exceeded"}
		]}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, 0)
	_, err := c.Send(context.Background(), testRequest())
	if err == nil {
		t.Fatal("expected error")
	}

	var perr *Error
	if !errors.As(err, &perr) {
		t.Fatalf("expected typed *Error, got %v", err)
	}
	if len(perr.Details) != 2 {
		t.Fatalf("expected 2 detail entries, got %d", len(perr.Details))
	}
	if perr.Details[0].Model != "gemini" || perr.Details[0].Error != "invalid key" {
		t.Errorf("first detail not preserved: %+v", perr.Details[0])
	}
	msg := perr.Error()
	if !strings.Contains(msg, "gemini: invalid key") || !strings.Contains(msg, "llama: quota exceeded") {
		t.Errorf("details not rendered in message: %q", msg)
	}
}

func TestSendRetriesServerError(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(ChatResponse{Response: "восстановился", Model: "gemini"})
	}))
	defer server.Close()

	c := NewClient(server.URL, 30*time.Second)
	resp, err := c.Send(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if resp.Response != "восстановился" {
		t.Errorf("unexpected response %q", resp.Response)
	}
	if n := atomic.LoadInt32(&calls); n != 3 {
		t.Errorf("expected 3 calls, got %d", n)
	}
}

func TestSendRateLimitExhaustsRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]string{"error": "slow down"})
	}))
	defer server.Close()

	c := NewClient(server.URL, 30*time.Second)
	_, err := c.Send(context.Background(), testRequest())
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestSendTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer server.Close()

	c := NewClient(server.URL, 100*time.Millisecond)
	_, err := c.Send(context.Background(), testRequest())
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestSendContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	c := NewClient(server.URL, 30*time.Second)
	_, err := c.Send(ctx, testRequest())
	if err == nil {
		t.Fatal("expected error after cancellation")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestSendEmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ChatResponse{Model: "gemini"})
	}))
	defer server.Close()

	c := NewClient(server.URL, 0)
	_, err := c.Send(context.Background(), testRequest())
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestCalculateBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{1, 500 * time.Millisecond},
		{2, 1 * time.Second},
		{3, 2 * time.Second},
		{10, 10 * time.Second}, // cap
	}
	for _, tt := range tests {
		if got := calculateBackoff(tt.attempt); got != tt.expected {
			t.Errorf("calculateBackoff(%d) = %s, expected %s", tt.attempt, got, tt.expected)
		}
	}
}
