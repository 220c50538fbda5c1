// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model defines the conversation data model: messages with
// provider tags, reactions and attachments, and named sessions.
package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/bogdan-ai/bogdan-tui/internal/util"
)

// ============================================================================
// ROLES
// ============================================================================

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// DisplayName returns the transcript speaker label for the role.
// Labels are in Russian to match the product's primary audience.
func (r Role) DisplayName() string {
	if r == RoleUser {
		return "Вы"
	}
	return "Богдан"
}

// Greeting is the assistant message seeded into every fresh conversation.
const Greeting = "Здравствуйте! Чем могу помочь?"

// ============================================================================
// MESSAGE
// ============================================================================

// Attachment records a file the user attached to a message. Only metadata is
// kept on the message; extracted text travels in the dispatch payload and is
// never stored.
type Attachment struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
	Size int64  `json:"size"`
}

// Message is a single conversation turn.
//
// Model is set on assistant messages to the provider that actually produced
// the response, which may differ from the requested provider when the proxy
// fell back. Fallback marks that case. Failed marks synthetic assistant
// messages generated locally for dispatch failures.
type Message struct {
	ID          string         `json:"id"`
	Role        Role           `json:"role"`
	Content     string         `json:"content"`
	Timestamp   time.Time      `json:"timestamp"`
	Model       string         `json:"model,omitempty"`
	Fallback    bool           `json:"fallback,omitempty"`
	Failed      bool           `json:"failed,omitempty"`
	Reactions   map[string]int `json:"reactions,omitempty"`
	Attachments []Attachment   `json:"attachments,omitempty"`
}

// NewUserMessage creates a user message with a fresh id and timestamp.
func NewUserMessage(content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      RoleUser,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewAssistantMessage creates an assistant message tagged with the provider
// that produced it.
func NewAssistantMessage(content, model string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      RoleAssistant,
		Content:   content,
		Timestamp: time.Now(),
		Model:     model,
	}
}

// NewGreetingMessage creates the seed assistant message for a new
// conversation.
func NewGreetingMessage() Message {
	return NewAssistantMessage(Greeting, "")
}

// NewFailedMessage creates the synthetic assistant message recorded in the
// transcript when a dispatch fails. The user's message stays in the history;
// this entry explains what went wrong in their place.
func NewFailedMessage(content string) Message {
	m := NewAssistantMessage(content, "")
	m.Failed = true
	return m
}

// Preview returns a short single-line preview of the content.
func (m Message) Preview(maxRunes int) string {
	return util.TruncateRunes(m.Content, maxRunes)
}

// React increments the tally for an emoji on the message. Adding the same
// emoji twice yields a count of two, not two entries.
func (m *Message) React(emoji string) {
	if emoji == "" {
		return
	}
	if m.Reactions == nil {
		m.Reactions = make(map[string]int)
	}
	m.Reactions[emoji]++
}

// ============================================================================
// MESSAGE LIST HELPERS
// ============================================================================

// LastUserMessageBefore scans backward from index i-1 for the nearest user
// message. Returns -1 when none exists.
func LastUserMessageBefore(messages []Message, i int) int {
	if i > len(messages) {
		i = len(messages)
	}
	for j := i - 1; j >= 0; j-- {
		if messages[j].Role == RoleUser {
			return j
		}
	}
	return -1
}

// IndexByID returns the index of the message with the given id, or -1.
func IndexByID(messages []Message, id string) int {
	for i := range messages {
		if messages[i].ID == id {
			return i
		}
	}
	return -1
}

// Window returns the last n messages, or all of them when n <= 0 or the list
// is shorter. Used to build the dispatch history under the context_length
// setting.
func Window(messages []Message, n int) []Message {
	if n <= 0 || len(messages) <= n {
		return messages
	}
	return messages[len(messages)-n:]
}
