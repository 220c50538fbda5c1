// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"
)

// Session is a named conversation with its own message history.
type Session struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession creates a session seeded with the greeting message.
func NewSession(name string) Session {
	now := time.Now()
	return Session{
		ID:        uuid.NewString(),
		Name:      name,
		Messages:  []Message{NewGreetingMessage()},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch updates the modification timestamp.
func (s *Session) Touch() {
	s.UpdatedAt = time.Now()
}

// MessageCount returns the number of messages in the session.
func (s Session) MessageCount() int {
	return len(s.Messages)
}
