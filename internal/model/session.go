// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// DefaultTitle is assigned to sessions that have no user turn yet.
	DefaultTitle = "Obrolan Baru"

	// TitleMaxRunes limits a derived session title before truncation.
	TitleMaxRunes = 50

	// DefaultGreeting opens every new session as the first assistant turn.
	DefaultGreeting = "Halo! Saya asisten AI Posyandu Menur. Saya siap membantu Anda dengan konsultasi kesehatan, terutama terkait kesehatan ibu dan anak, imunisasi, gizi, dan layanan posyandu lainnya. Ada yang bisa saya bantu hari ini? 😊"
)

// =============================================================================
// SESSION TYPE
// =============================================================================

// Session represents a chat session with its full turn history.
type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []*Turn   `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession creates a new session seeded with a greeting turn. An
// empty greeting falls back to DefaultGreeting.
func NewSession(greeting string) *Session {
	if greeting == "" {
		greeting = DefaultGreeting
	}
	now := time.Now()
	return &Session{
		ID:        uuid.New().String(),
		Title:     DefaultTitle,
		Messages:  []*Turn{NewAssistantTurn(greeting)},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SetMessages replaces the session history and refreshes metadata.
// The title is derived from the first user turn exactly once; after
// that it is stable even if the originating turn is edited or removed.
func (s *Session) SetMessages(turns []*Turn) {
	s.Messages = turns
	s.UpdatedAt = time.Now()
	s.deriveTitle()
}

// AppendTurn adds a turn to the history and refreshes metadata.
func (s *Session) AppendTurn(t *Turn) {
	s.Messages = append(s.Messages, t)
	s.UpdatedAt = time.Now()
	s.deriveTitle()
}

// TruncateFrom drops the turn at index i and everything after it.
// Out-of-range indices are ignored.
func (s *Session) TruncateFrom(i int) {
	if i < 0 || i >= len(s.Messages) {
		return
	}
	s.Messages = s.Messages[:i]
	s.UpdatedAt = time.Now()
}

// LastTurn returns the most recent turn, or nil for an empty session.
func (s *Session) LastTurn() *Turn {
	if len(s.Messages) == 0 {
		return nil
	}
	return s.Messages[len(s.Messages)-1]
}

// FirstUserTurn returns the earliest user turn, or nil if none exists.
func (s *Session) FirstUserTurn() *Turn {
	for _, t := range s.Messages {
		if t.Role == RoleUser {
			return t
		}
	}
	return nil
}

// TurnCount returns the number of turns in the session.
func (s *Session) TurnCount() int {
	return len(s.Messages)
}

// deriveTitle sets the title from the first user turn, once.
func (s *Session) deriveTitle() {
	if s.Title != DefaultTitle {
		return
	}
	first := s.FirstUserTurn()
	if first == nil {
		return
	}
	runes := []rune(first.Content)
	if len(runes) > TitleMaxRunes {
		s.Title = string(runes[:TitleMaxRunes]) + "..."
		return
	}
	s.Title = first.Content
}
