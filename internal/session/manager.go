// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session manages named conversations: creation, switching,
// renaming, deletion, and bulk export/import.
//
// The manager is safe for concurrent use. Exactly one session is active at
// any time; deleting the active session promotes another or creates a fresh
// default, so the active id never dangles.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/bogdan-ai/bogdan-tui/internal/model"
	"github.com/bogdan-ai/bogdan-tui/internal/store"
)

// ErrSessionNotFound is returned when an id does not match any session.
var ErrSessionNotFound = errors.New("session not found")

// DefaultNamePrefix is the prefix for auto-generated session names.
const DefaultNamePrefix = "Сессия"

// ============================================================================
// MANAGER
// ============================================================================

// Manager owns the session list and the active-session pointer.
type Manager struct {
	mu       sync.Mutex
	store    *store.Store
	sessions []model.Session
	activeID string
}

// NewManager loads persisted sessions and ensures one is active. A fresh
// state directory yields a single default session.
func NewManager(st *store.Store) *Manager {
	m := &Manager{
		store:    st,
		sessions: st.LoadSessions(),
	}
	if len(m.sessions) == 0 {
		m.sessions = append(m.sessions, model.NewSession(m.nextNameLocked()))
	}
	m.activeID = m.sessions[0].ID
	return m
}

// nextNameLocked generates the next free auto-name ("Сессия 1", "Сессия 2"...).
// Caller must hold mu (or be in single-threaded init).
func (m *Manager) nextNameLocked() string {
	taken := make(map[string]bool, len(m.sessions))
	for _, s := range m.sessions {
		taken[s.Name] = true
	}
	for n := len(m.sessions) + 1; ; n++ {
		name := fmt.Sprintf("%s %d", DefaultNamePrefix, n)
		if !taken[name] {
			return name
		}
	}
}

func (m *Manager) indexLocked(id string) int {
	for i := range m.sessions {
		if m.sessions[i].ID == id {
			return i
		}
	}
	return -1
}

func (m *Manager) persistLocked() {
	if err := m.store.SaveSessions(m.sessions); err != nil {
		log.Printf("SESSION: persist failed: %v", err)
	}
}

// ============================================================================
// QUERIES
// ============================================================================

// List returns a snapshot of all sessions.
func (m *Manager) List() []model.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Session, len(m.sessions))
	copy(out, m.sessions)
	return out
}

// Active returns a copy of the active session.
func (m *Manager) Active() model.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[m.indexLocked(m.activeID)]
}

// ActiveID returns the id of the active session.
func (m *Manager) ActiveID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeID
}

// Messages returns a snapshot of the active session's messages.
func (m *Manager) Messages() []model.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	src := m.sessions[m.indexLocked(m.activeID)].Messages
	out := make([]model.Message, len(src))
	copy(out, src)
	return out
}

// Count returns the number of sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// ============================================================================
// MUTATIONS
// ============================================================================

// SetMessages replaces the active session's message list and persists.
func (m *Manager) SetMessages(messages []model.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexLocked(m.activeID)
	m.sessions[i].Messages = messages
	m.sessions[i].Touch()
	m.persistLocked()
}

// Create adds a new session and makes it active. An empty name gets the next
// auto-generated one.
func (m *Manager) Create(name string) model.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if name == "" {
		name = m.nextNameLocked()
	}
	s := model.NewSession(name)
	m.sessions = append(m.sessions, s)
	m.activeID = s.ID
	m.persistLocked()
	log.Printf("SESSION: created %q (%s)", s.Name, s.ID)
	return s
}

// Switch makes the session with the given id active.
func (m *Manager) Switch(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.indexLocked(id) < 0 {
		return fmt.Errorf("switch to %q: %w", id, ErrSessionNotFound)
	}
	m.activeID = id
	return nil
}

// Rename changes a session's name.
func (m *Manager) Rename(id, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("rename %q: %w", id, ErrSessionNotFound)
	}
	m.sessions[i].Name = name
	m.sessions[i].Touch()
	m.persistLocked()
	return nil
}

// Delete removes a session. Deleting the active session promotes the first
// remaining one, or creates a fresh default when none remain.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("delete %q: %w", id, ErrSessionNotFound)
	}
	m.sessions = append(m.sessions[:i], m.sessions[i+1:]...)

	if m.activeID == id {
		if len(m.sessions) == 0 {
			m.sessions = append(m.sessions, model.NewSession(m.nextNameLocked()))
		}
		m.activeID = m.sessions[0].ID
	}
	m.persistLocked()
	return nil
}

// ============================================================================
// EXPORT / IMPORT
// ============================================================================

// Document is the bulk export format. Import accepts the same shape.
type Document struct {
	ExportedAt time.Time       `json:"exported_at"`
	Sessions   []model.Session `json:"sessions"`
}

// ExportAll serializes every session into a single JSON document.
func (m *Manager) ExportAll() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc := Document{
		ExportedAt: time.Now(),
		Sessions:   m.sessions,
	}
	return json.MarshalIndent(doc, "", "  ")
}

// Import merges a previously exported document into the session list.
// Sessions whose id already exists are skipped; everything else is appended
// with ids, names, messages and timestamps preserved. Returns the number of
// sessions added.
func (m *Manager) Import(data []byte) (int, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return 0, fmt.Errorf("parse import document: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	added := 0
	for _, s := range doc.Sessions {
		if s.ID == "" || m.indexLocked(s.ID) >= 0 {
			continue
		}
		m.sessions = append(m.sessions, s)
		added++
	}
	if added > 0 {
		m.persistLocked()
	}
	log.Printf("SESSION: imported %d of %d sessions", added, len(doc.Sessions))
	return added, nil
}
