// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/sera-tui/internal/model"
	"github.com/jeranaias/sera-tui/internal/util"
)

// =============================================================================
// IN-MEMORY STORE
// =============================================================================

// storedMessage is one message in a stored session.
type storedMessage struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// storedSession is one chat session with its attached document ids.
type storedSession struct {
	ID          string
	Messages    []storedMessage
	DocumentIDs []string
	CreatedAt   time.Time
	LastUpdated time.Time
}

// storedDocument is one uploaded document plus its extracted text.
type storedDocument struct {
	model.Document
	ChatID string
	Text   string
}

// Store holds all sessions and documents. Safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	sessions  map[string]*storedSession
	documents map[string]*storedDocument
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		sessions:  make(map[string]*storedSession),
		documents: make(map[string]*storedDocument),
	}
}

// GetOrCreateSession returns the session with the given id, creating a
// fresh one when id is empty or unknown-but-creatable is requested.
// ok is false when id was non-empty and not found.
func (s *Store) GetOrCreateSession(id string) (*storedSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != "" {
		sess, ok := s.sessions[id]
		return sess, ok
	}

	now := time.Now().UTC()
	sess := &storedSession{
		ID:          uuid.NewString(),
		CreatedAt:   now,
		LastUpdated: now,
	}
	s.sessions[sess.ID] = sess
	return sess, true
}

// Session returns a session by id.
func (s *Store) Session(id string) (*storedSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// AppendMessages appends messages to a session under the write lock.
func (s *Store) AppendMessages(id string, msgs ...storedMessage) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return false
	}
	sess.Messages = append(sess.Messages, msgs...)
	sess.LastUpdated = time.Now().UTC()
	return true
}

// AddDocument attaches a document to a session.
func (s *Store) AddDocument(chatID string, doc model.Document, text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[chatID]
	if !ok {
		return false
	}
	s.documents[doc.ID] = &storedDocument{Document: doc, ChatID: chatID, Text: text}
	sess.DocumentIDs = append(sess.DocumentIDs, doc.ID)
	sess.LastUpdated = time.Now().UTC()
	return true
}

// Documents returns the documents attached to a session, in upload order.
func (s *Store) Documents(chatID string) ([]model.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[chatID]
	if !ok {
		return nil, false
	}
	docs := make([]model.Document, 0, len(sess.DocumentIDs))
	for _, id := range sess.DocumentIDs {
		if d, ok := s.documents[id]; ok {
			docs = append(docs, d.Document)
		}
	}
	return docs, true
}

// DeleteSession removes a session and its documents.
func (s *Store) DeleteSession(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return false
	}
	for _, docID := range sess.DocumentIDs {
		delete(s.documents, docID)
	}
	delete(s.sessions, id)
	return true
}

// Summaries lists all sessions as history entries, newest first.
func (s *Store) Summaries() []model.ChatHistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]model.ChatHistoryEntry, 0, len(s.sessions))
	for _, sess := range s.sessions {
		preview := ""
		if n := len(sess.Messages); n > 0 {
			preview = util.TruncateRunes(util.FirstLine(sess.Messages[n-1].Content), 80)
		}
		entries = append(entries, model.ChatHistoryEntry{
			ID:                 sess.ID,
			CreatedAt:          sess.CreatedAt,
			LastUpdated:        sess.LastUpdated,
			MessageCount:       len(sess.Messages),
			DocumentCount:      len(sess.DocumentIDs),
			LastMessagePreview: preview,
		})
	}

	// Newest activity first.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].LastUpdated.After(entries[j].LastUpdated)
	})
	return entries
}

// Counts reports the store sizes for the health endpoint.
func (s *Store) Counts() (sessions, documents int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions), len(s.documents)
}
