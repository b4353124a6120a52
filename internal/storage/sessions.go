// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/posyandu-tui/internal/model"
)

// HistoryKey is the fixed key the chat history blob lives under.
const HistoryKey = "posyandu_chat_history"

// =============================================================================
// HISTORY BLOB
// =============================================================================

// historyBlob is the on-disk shape of the whole chat history: every
// session plus the active-session pointer, serialized as one JSON
// document.
type historyBlob struct {
	Sessions  []*model.Session `json:"sessions"`
	CurrentID string           `json:"current_id"`
}

// =============================================================================
// SESSION STORE
// =============================================================================

// SessionStore manages durable chat sessions and the active-session
// pointer. Every mutation is written through to the KV store before
// returning, so a crash never loses an acknowledged change.
type SessionStore struct {
	kv     *KVStore
	logger *zap.Logger

	mu        sync.RWMutex
	sessions  []*model.Session
	currentID string
	lastWrite time.Time
}

// NewSessionStore creates a session store over kv and loads existing
// history. A missing or corrupt blob yields a fresh store with one new
// session rather than an error.
func NewSessionStore(kv *KVStore, logger *zap.Logger) (*SessionStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &SessionStore{kv: kv, logger: logger}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads history from the KV store, repairing whatever it
// finds: a corrupt blob is discarded, an empty session list gains a
// fresh session, and a dangling active pointer is re-aimed at the most
// recent session.
func (s *SessionStore) Reload() error {
	data, ok, err := s.kv.Get(HistoryKey)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var blob historyBlob
	if ok {
		if err := json.Unmarshal(data, &blob); err != nil {
			s.logger.Warn("chat history corrupt, starting fresh",
				zap.Error(err),
				zap.Int("bytes", len(data)))
			blob = historyBlob{}
		}
	}

	if len(blob.Sessions) == 0 {
		blob.Sessions = []*model.Session{model.NewSession("")}
		blob.CurrentID = blob.Sessions[0].ID
	}

	sortSessions(blob.Sessions)

	if findSession(blob.Sessions, blob.CurrentID) == nil {
		s.logger.Warn("active session pointer dangling, repairing",
			zap.String("current_id", blob.CurrentID))
		blob.CurrentID = blob.Sessions[0].ID
	}

	s.sessions = blob.Sessions
	s.currentID = blob.CurrentID
	return s.persistLocked()
}

// persistLocked writes the current state through to the KV store.
// Callers must hold s.mu.
func (s *SessionStore) persistLocked() error {
	blob := historyBlob{Sessions: s.sessions, CurrentID: s.currentID}
	data, err := json.Marshal(blob)
	if err != nil {
		return fmt.Errorf("failed to encode chat history: %w", err)
	}
	if err := s.kv.Set(HistoryKey, data); err != nil {
		return err
	}
	s.lastWrite = time.Now()
	return nil
}

// WroteWithin reports whether the store itself wrote within the given
// window. The file watcher uses this to ignore our own writes.
func (s *SessionStore) WroteWithin(window time.Duration) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Since(s.lastWrite) < window
}

// =============================================================================
// READ OPERATIONS
// =============================================================================

// Sessions returns all sessions, most recently updated first.
func (s *SessionStore) Sessions() []*model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Session, len(s.sessions))
	copy(out, s.sessions)
	return out
}

// Current returns the active session.
func (s *SessionStore) Current() *model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return findSession(s.sessions, s.currentID)
}

// Get returns the session with the given ID.
func (s *SessionStore) Get(id string) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sess := findSession(s.sessions, id); sess != nil {
		return sess, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
}

// FindByPrefix resolves a session by ID prefix. The session list
// prints shortened ids, so lookups must accept them back; the prefix
// has to match exactly one session.
func (s *SessionStore) FindByPrefix(prefix string) (*model.Session, error) {
	if prefix == "" {
		return nil, fmt.Errorf("%w: empty id", ErrSessionNotFound)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if sess := findSession(s.sessions, prefix); sess != nil {
		return sess, nil
	}

	var match *model.Session
	for _, sess := range s.sessions {
		if strings.HasPrefix(sess.ID, prefix) {
			if match != nil {
				return nil, fmt.Errorf("%w: %s", ErrAmbiguousID, prefix)
			}
			match = sess
		}
	}
	if match == nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, prefix)
	}
	return match, nil
}

// Count returns the number of stored sessions.
func (s *SessionStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Search returns sessions whose title or turn content contains the
// query, case-insensitively. An empty query matches everything.
func (s *SessionStore) Search(query string) []*model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		out := make([]*model.Session, len(s.sessions))
		copy(out, s.sessions)
		return out
	}

	var matches []*model.Session
	for _, sess := range s.sessions {
		if strings.Contains(strings.ToLower(sess.Title), query) {
			matches = append(matches, sess)
			continue
		}
		for _, t := range sess.Messages {
			if strings.Contains(strings.ToLower(t.Content), query) {
				matches = append(matches, sess)
				break
			}
		}
	}
	return matches
}

// =============================================================================
// WRITE OPERATIONS
// =============================================================================

// CreateSession creates a new session seeded with the greeting, makes
// it active, and persists.
func (s *SessionStore) CreateSession(greeting string) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := model.NewSession(greeting)
	s.sessions = append([]*model.Session{sess}, s.sessions...)
	s.currentID = sess.ID

	if err := s.persistLocked(); err != nil {
		return nil, err
	}
	s.logger.Info("session created", zap.String("session_id", sess.ID))
	return sess, nil
}

// SwitchSession makes the session with the given ID active.
func (s *SessionStore) SwitchSession(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if findSession(s.sessions, id) == nil {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	s.currentID = id
	return s.persistLocked()
}

// UpdateMessages replaces the turn history of a session and persists.
// The session title is derived from the first user turn exactly once.
func (s *SessionStore) UpdateMessages(id string, turns []*model.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := findSession(s.sessions, id)
	if sess == nil {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	sess.SetMessages(turns)
	sortSessions(s.sessions)
	return s.persistLocked()
}

// AppendTurn adds a turn to a session and persists.
func (s *SessionStore) AppendTurn(id string, turn *model.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := findSession(s.sessions, id)
	if sess == nil {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	sess.AppendTurn(turn)
	sortSessions(s.sessions)
	return s.persistLocked()
}

// DeleteSession removes a session. The store never drops to zero
// sessions: deleting the last one replaces it with a fresh session.
// Deleting the active session re-aims the pointer at the most recent
// survivor.
func (s *SessionStore) DeleteSession(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, sess := range s.sessions {
		if sess.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	s.sessions = append(s.sessions[:idx], s.sessions[idx+1:]...)

	if len(s.sessions) == 0 {
		fresh := model.NewSession("")
		s.sessions = []*model.Session{fresh}
		s.currentID = fresh.ID
	} else if s.currentID == id {
		s.currentID = s.sessions[0].ID
	}

	if err := s.persistLocked(); err != nil {
		return err
	}
	s.logger.Info("session deleted", zap.String("session_id", id))
	return nil
}

// ClearAll discards every session and starts over with one fresh
// session.
func (s *SessionStore) ClearAll() (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fresh := model.NewSession("")
	s.sessions = []*model.Session{fresh}
	s.currentID = fresh.ID

	if err := s.persistLocked(); err != nil {
		return nil, err
	}
	s.logger.Info("chat history cleared")
	return fresh, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// findSession returns the session with the given ID, or nil.
func findSession(sessions []*model.Session, id string) *model.Session {
	for _, sess := range sessions {
		if sess.ID == id {
			return sess
		}
	}
	return nil
}

// sortSessions orders sessions most recently updated first.
func sortSessions(sessions []*model.Session) {
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
	})
}
