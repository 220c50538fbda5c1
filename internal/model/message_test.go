// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "testing"

func TestNewUserMessage(t *testing.T) {
	m := NewUserMessage("привет")

	if m.ID == "" {
		t.Error("expected non-empty id")
	}
	if m.Role != RoleUser {
		t.Errorf("expected role user, got %s", m.Role)
	}
	if m.Content != "привет" {
		t.Errorf("unexpected content %q", m.Content)
	}
	if m.Timestamp.IsZero() {
		t.Error("expected timestamp to be set")
	}
}

func TestNewFailedMessage(t *testing.T) {
	m := NewFailedMessage("Не удалось получить ответ")
	if m.Role != RoleAssistant {
		t.Errorf("expected assistant role, got %s", m.Role)
	}
	if !m.Failed {
		t.Error("expected Failed flag")
	}
}

func TestReact(t *testing.T) {
	m := NewAssistantMessage("ответ", "gemini")

	m.React("👍")
	m.React("👍")
	m.React("🔥")
	m.React("")

	if len(m.Reactions) != 2 {
		t.Fatalf("expected 2 reaction entries, got %d", len(m.Reactions))
	}
	if m.Reactions["👍"] != 2 {
		t.Errorf("expected tally 2 for 👍, got %d", m.Reactions["👍"])
	}
	if m.Reactions["🔥"] != 1 {
		t.Errorf("expected tally 1 for 🔥, got %d", m.Reactions["🔥"])
	}
}

func TestLastUserMessageBefore(t *testing.T) {
	messages := []Message{
		NewGreetingMessage(),            // 0
		NewUserMessage("первый вопрос"), // 1
		NewAssistantMessage("ответ", "gemini"), // 2
		NewUserMessage("второй вопрос"),        // 3
		NewAssistantMessage("ответ", "llama"),  // 4
	}

	tests := []struct {
		name     string
		index    int
		expected int
	}{
		{"before last assistant", 4, 3},
		{"before first assistant", 2, 1},
		{"before first user", 1, -1},
		{"before greeting", 0, -1},
		{"past the end", 99, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LastUserMessageBefore(messages, tt.index); got != tt.expected {
				t.Errorf("LastUserMessageBefore(_, %d) = %d, expected %d",
					tt.index, got, tt.expected)
			}
		})
	}
}

func TestWindow(t *testing.T) {
	messages := make([]Message, 5)
	for i := range messages {
		messages[i] = NewUserMessage("msg")
	}

	if got := Window(messages, 3); len(got) != 3 {
		t.Errorf("Window(5 msgs, 3) returned %d messages", len(got))
	}
	if got := Window(messages, 0); len(got) != 5 {
		t.Errorf("Window(5 msgs, 0) returned %d messages, expected all", len(got))
	}
	if got := Window(messages, 10); len(got) != 5 {
		t.Errorf("Window(5 msgs, 10) returned %d messages, expected all", len(got))
	}
}

func TestNewSession(t *testing.T) {
	s := NewSession("Сессия 1")

	if s.ID == "" {
		t.Error("expected non-empty session id")
	}
	if s.Name != "Сессия 1" {
		t.Errorf("unexpected name %q", s.Name)
	}
	if len(s.Messages) != 1 {
		t.Fatalf("expected greeting seed message, got %d messages", len(s.Messages))
	}
	if s.Messages[0].Content != Greeting {
		t.Errorf("unexpected seed content %q", s.Messages[0].Content)
	}
	if s.CreatedAt.IsZero() || s.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
}
